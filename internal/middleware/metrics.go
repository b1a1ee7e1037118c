package middleware

import (
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    httpRequestsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "visitor_http_requests_total",
            Help: "HTTP requests handled, by route template and status.",
        },
        []string{"method", "path", "status"},
    )

    httpRequestDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "visitor_http_request_duration_seconds",
            Help:    "HTTP request latency by route template.",
            Buckets: prometheus.DefBuckets,
        },
        []string{"method", "path"},
    )
)

// Metrics records request counts and latency.  Paths are echo route
// templates (e.g. /v1/workbook-types/:id/mandatory-fields) so label
// cardinality stays bounded.
func Metrics() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            path := c.Path()
            if path == "" {
                path = "unmatched"
            }
            method := c.Request().Method
            httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Response().Status)).Inc()
            httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
            return nil
        }
    }
}
