package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/visitor-register/internal/database"
)

// Health is the liveness probe: the process is up and serving.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready returns a readiness probe that pings the database.
func Ready(db *sql.DB) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := database.Ping(ctx, db); err != nil {
            return c.String(http.StatusServiceUnavailable, "db unavailable")
        }
        return c.String(http.StatusOK, "ready")
    }
}
