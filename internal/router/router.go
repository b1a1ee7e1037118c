package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/visitor-register/internal/handler"
	"github.com/iliyamo/visitor-register/internal/middleware"
)

// Deps carries everything the route groups need.  Cache and RateLimit
// are built by the caller so tests can pass no-op middleware.
type Deps struct {
	DB        *sql.DB
	JWTSecret string
	MediaRoot string // served under /media when non-empty
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
	Auth      *handler.AuthHandler
	Workbooks *handler.WorkbookHandler
	Visitors  *handler.VisitorHandler
}

// New builds an echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(middleware.Metrics())

	RegisterRoutes(e, d.DB, d.MediaRoot)
	RegisterAuth(e, d.Auth, d.JWTSecret, d.RateLimit)
	RegisterPublic(e, d.Workbooks, d.Cache, d.RateLimit)
	RegisterMember(e, d.Workbooks, d.Visitors, d.JWTSecret, d.RateLimit)
	RegisterAdmin(e, d.Workbooks, d.JWTSecret)
	return e
}

// RegisterRoutes registers probes, metrics and local media.
func RegisterRoutes(e *echo.Echo, db *sql.DB, mediaRoot string) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if mediaRoot != "" {
		e.Static("/media", mediaRoot)
	}
}

// RegisterAuth registers the session endpoints under /v1/auth.  None of
// them need an access token; logout reads one when present.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", passThrough(limit))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers unauthenticated reads.  The workbook type
// listing changes rarely and is served through the response cache.
func RegisterPublic(e *echo.Echo, w *handler.WorkbookHandler, cache, limit echo.MiddlewareFunc) {
	e.GET("/v1/workbook-types", w.ListTypes, passThrough(limit), passThrough(cache))
}

func passThrough(m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if m != nil {
		return m
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
}
