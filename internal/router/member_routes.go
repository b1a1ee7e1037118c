package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/visitor-register/internal/handler"
	"github.com/iliyamo/visitor-register/internal/middleware"
	"github.com/iliyamo/visitor-register/internal/model"
)

// RegisterMember registers member-scoped endpoints under /v1.  All routes
// require a valid JWT; every read and write is scoped to the token's
// member inside the services.  The rate limiter runs after JWTAuth so it
// can key on the member.
func RegisterMember(e *echo.Echo, w *handler.WorkbookHandler, v *handler.VisitorHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleMember, model.RoleAdmin),
		passThrough(limit),
	)
	g.PUT("/workbook-types/:id/mandatory-fields", w.UpdateTypeFields)
	g.GET("/workbooks", w.ListWorkbooks)
	g.POST("/workbooks", w.CreateWorkbook)

	g.POST("/visitors", v.Register)
	g.GET("/visitors", v.List)
	g.GET("/visitors/search", v.Search)
	g.GET("/visitors/names", v.Names)
	g.GET("/visitors/export", v.Export)
}
