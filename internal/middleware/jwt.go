package middleware

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// JWTAuth validates a Bearer access token and stores the member ID (as
// uint64) and role in the context.  Read them with MemberID and Role.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return deny(c, http.StatusUnauthorized, "missing bearer token")
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return deny(c, http.StatusUnauthorized, "invalid token")
            }
            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return deny(c, http.StatusUnauthorized, "invalid claims")
            }
            id, ok := subject(claims["sub"])
            if !ok {
                return deny(c, http.StatusUnauthorized, "invalid subject")
            }
            role, _ := claims["role"].(string)

            c.Set(ctxMemberID, id)
            c.Set(ctxRole, role)
            return next(c)
        }
    }
}

// subject normalizes the sub claim, which decodes as float64 from JSON but
// may also arrive as a string.
func subject(v any) (uint64, bool) {
    switch t := v.(type) {
    case float64:
        if t <= 0 {
            return 0, false
        }
        return uint64(t), true
    case string:
        n, err := strconv.ParseUint(t, 10, 64)
        return n, err == nil && n > 0
    }
    return 0, false
}
