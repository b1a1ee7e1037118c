package middleware

// identity.go holds the context keys JWTAuth fills and the helpers that
// read them back for handlers, the cache and the rate limiter.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/visitor-register/internal/visitor"
)

const (
    ctxMemberID = "member_id"
    ctxRole     = "role"
)

// MemberID returns the authenticated member, if any.
func MemberID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ctxMemberID).(uint64)
    return id, ok && id != 0
}

// Role returns the authenticated member's role claim.
func Role(c echo.Context) string {
    r, _ := c.Get(ctxRole).(string)
    return r
}

// memberKey is the member ID as a cache/rate-limit key part, "anon" when
// the request is unauthenticated.
func memberKey(c echo.Context) string {
    if id, ok := MemberID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}

// deny writes the failure envelope shared with the handlers.
func deny(c echo.Context, httpStatus int, msg string) error {
    return c.JSON(httpStatus, echo.Map{
        "status":   int(visitor.CodeUnauthorized),
        "message":  msg,
        "response": nil,
    })
}

