package utils

import (
	"fmt"

	"github.com/ttacon/libphonenumber"
)

// NormalizePhoneNumber validates a number for the given default region and
// returns it in E.164 form.
func NormalizePhoneNumber(phoneNumber, region string) (string, error) {
	p, err := libphonenumber.Parse(phoneNumber, region)
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("phone number is not valid")
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}
