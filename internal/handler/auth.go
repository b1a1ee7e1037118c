package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/visitor-register/internal/config"
    "github.com/iliyamo/visitor-register/internal/middleware"
    "github.com/iliyamo/visitor-register/internal/model"
    "github.com/iliyamo/visitor-register/internal/repository"
    "github.com/iliyamo/visitor-register/internal/utils"
    "github.com/iliyamo/visitor-register/internal/visitor"
)

const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg     config.Config
    Members *repository.MemberRepo
    Tokens  *repository.TokenRepo
    Logger  logrus.FieldLogger
}

func NewAuthHandler(cfg config.Config, m *repository.MemberRepo, t *repository.TokenRepo, logger logrus.FieldLogger) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Members: m, Tokens: t, Logger: logger}
}

// ----- DTOs -----

type registerReq struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required,min=6"`
    Name     string `json:"name" validate:"required,max=100"`
    MobileNo string `json:"mobile_no" validate:"required"`
    Package  string `json:"package" validate:"max=50"`
    Address  string `json:"address" validate:"max=255"`
}
type loginReq struct {
    Email    string `json:"email" validate:"required"`
    Password string `json:"password" validate:"required"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type memberPart struct {
    ID       uint64 `json:"id"`
    Email    string `json:"email"`
    Name     string `json:"name"`
    MobileNo string `json:"mobile_no"`
    Role     string `json:"role"`
}
type authResp struct {
    Member  memberPart `json:"member"`
    Access  tokenPart  `json:"access"`
    Refresh tokenPart  `json:"refresh"`
}

func memberOf(m model.Member) memberPart {
    return memberPart{ID: m.ID, Email: m.Email, Name: m.Name, MobileNo: m.MobileNo, Role: m.Role}
}

// Register creates a MEMBER account and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if ok, err := bindValid(c, &req); !ok {
        return err
    }
    mobile, err := utils.NormalizePhoneNumber(req.MobileNo, h.Cfg.PhoneRegion)
    if err != nil {
        return invalid(c, "mobile_no: invalid phone number")
    }
    hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, utils.ErrPasswordTooShort) {
            return invalid(c, "password: min")
        }
        return failErr(c, h.Logger, "auth", err)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    m := model.Member{
        Email:        req.Email,
        PasswordHash: hash,
        Name:         strings.TrimSpace(req.Name),
        MobileNo:     mobile,
        Package:      strings.TrimSpace(req.Package),
        Address:      strings.TrimSpace(req.Address),
    }
    if err := h.Members.Create(ctx, &m); err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, Envelope{Status: visitor.CodeGenericError, Message: "Email-Id already exist."})
        }
        return failErr(c, h.Logger, "auth", err)
    }

    resp, err := h.issue(ctx, m)
    if err != nil {
        return failErr(c, h.Logger, "auth", err)
    }
    return respond(c, http.StatusCreated, "Registration successful", resp)
}

// Login verifies credentials and returns a new token pair.  Inactive
// members are refused even with the right password.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if ok, err := bindValid(c, &req); !ok {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    m, err := h.Members.GetByEmail(ctx, req.Email)
    if err != nil && !errors.Is(err, repository.ErrMemberNotFound) {
        return failErr(c, h.Logger, "auth", err)
    }
    if err != nil || !utils.VerifyPassword(m.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, Envelope{Status: visitor.CodeGenericError, Message: "Invalid email or password"})
    }
    if !m.IsActive {
        return fail(c, visitor.CodeUnauthorized, "Account is inactive")
    }

    resp, err := h.issue(ctx, m)
    if err != nil {
        return failErr(c, h.Logger, "auth", err)
    }
    return respond(c, http.StatusOK, "Login successful", resp)
}

// Refresh validates by hash, revokes the old token and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return invalid(c, "refresh_token: required")
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    memberID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return fail(c, visitor.CodeUnauthorized, "invalid refresh token")
    }
    m, err := h.Members.GetByID(ctx, memberID)
    if err != nil {
        if errors.Is(err, repository.ErrMemberNotFound) {
            return fail(c, visitor.CodeUnauthorized, "invalid refresh token")
        }
        return failErr(c, h.Logger, "auth", err)
    }
    if !m.IsActive {
        return fail(c, visitor.CodeUnauthorized, "Account is inactive")
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return failErr(c, h.Logger, "auth", err)
    }

    resp, err := h.issue(ctx, m)
    if err != nil {
        return failErr(c, h.Logger, "auth", err)
    }
    return respond(c, http.StatusOK, "Token refreshed", resp)
}

// Logout revokes the given refresh token, or every token of the bearer
// when no refresh token is sent.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req)
    raw := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if raw != "" {
        hash := utils.HashRefreshRaw(raw)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return fail(c, visitor.CodeUnauthorized, "invalid refresh token")
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return failErr(c, h.Logger, "auth", err)
        }
        return respond(c, http.StatusOK, "Logged out", nil)
    }

    memberID, ok := h.bearerMember(c)
    if !ok {
        return invalid(c, "provide Authorization header or refresh_token")
    }
    if err := h.Tokens.RevokeAllForMember(ctx, memberID); err != nil {
        return failErr(c, h.Logger, "auth", err)
    }
    return respond(c, http.StatusOK, "Logged out of all sessions", nil)
}

// Me returns the authenticated member.
func (h *AuthHandler) Me(c echo.Context) error {
    id, ok := middleware.MemberID(c)
    if !ok {
        return fail(c, visitor.CodeUnauthorized, "unauthorized")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()
    m, err := h.Members.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrMemberNotFound) {
            return fail(c, visitor.CodeUnauthorized, "unauthorized")
        }
        return failErr(c, h.Logger, "auth", err)
    }
    return respond(c, http.StatusOK, "", memberOf(m))
}

func (h *AuthHandler) issue(ctx context.Context, m model.Member) (authResp, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, m.ID, m.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return authResp{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return authResp{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, m.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, err
    }
    return authResp{
        Member:  memberOf(m),
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
    }, nil
}

// bearerMember parses an optional Authorization header; logout is not
// behind JWTAuth so an expired access token can still send a refresh token.
func (h *AuthHandler) bearerMember(c echo.Context) (uint64, bool) {
    raw, found := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
    if !found {
        return 0, false
    }
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(h.Cfg.JWTSecret), nil
    })
    if err != nil || !tok.Valid {
        return 0, false
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, false
    }
    switch sub := claims["sub"].(type) {
    case float64:
        return uint64(sub), sub > 0
    case string:
        n, err := strconv.ParseUint(sub, 10, 64)
        return n, err == nil && n > 0
    }
    return 0, false
}
