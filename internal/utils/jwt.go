package utils // package utils holds token, password and phone helpers shared by the handlers

import (
    "crypto/rand"
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret is returned when tokens would be signed with an empty key.
var ErrEmptySecret = errors.New("jwt secret is empty")

// AccessToken is a signed HS256 JWT and its expiry.
type AccessToken struct {
    Token string
    Exp   time.Time
}

// RefreshToken is the raw value handed to the member once.  Only its
// SHA‑256 hash (see HashRefreshRaw) is persisted.
type RefreshToken struct {
    Raw string
    Exp time.Time
}

// NewAccessToken signs a token for a member.  Claims: sub (member ID),
// role, exp and iat.
func NewAccessToken(secret string, memberID uint64, role string, ttlMin int) (AccessToken, error) {
    if secret == "" {
        return AccessToken{}, ErrEmptySecret
    }
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  memberID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken returns 96 hex chars of random data valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    raw, err := randomHex(48)
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// HashRefreshRaw is the hex SHA‑256 of a raw refresh token; this is the
// value stored in refresh_tokens.token_hash.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
