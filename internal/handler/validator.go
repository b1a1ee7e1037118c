package handler

import (
    "errors"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"
)

// RequestValidator adapts go-playground/validator to echo.Validator.
// Field names in messages are the JSON names.
type RequestValidator struct {
    v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
    v := validator.New()
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" || name == "" {
            return f.Name
        }
        return name
    })
    return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i any) error {
    return rv.v.Struct(i)
}

// validationMessage flattens validator errors to "field: tag" pairs.
func validationMessage(err error) string {
    var ves validator.ValidationErrors
    if !errors.As(err, &ves) {
        return err.Error()
    }
    parts := make([]string, 0, len(ves))
    for _, fe := range ves {
        parts = append(parts, fe.Field()+": "+fe.Tag())
    }
    return strings.Join(parts, "; ")
}

// bindValid binds the request into dst and runs the echo validator.  On
// failure it has already written the INVALID_FIELD envelope and returns
// false.
func bindValid(c echo.Context, dst any) (bool, error) {
    if err := c.Bind(dst); err != nil {
        return false, invalid(c, "Invalid request body")
    }
    if c.Echo().Validator != nil {
        if err := c.Validate(dst); err != nil {
            return false, invalid(c, validationMessage(err))
        }
    }
    return true, nil
}
