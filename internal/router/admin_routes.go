package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/visitor-register/internal/handler"
	"github.com/iliyamo/visitor-register/internal/middleware"
	"github.com/iliyamo/visitor-register/internal/model"
)

// RegisterAdmin registers catalog management that only ADMIN members may
// use.  The path is shared with the public listing, so the guards are
// attached per route rather than to a group.
func RegisterAdmin(e *echo.Echo, w *handler.WorkbookHandler, jwtSecret string) {
	e.POST("/v1/workbook-types", w.CreateType,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
}
