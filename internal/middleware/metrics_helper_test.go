package middleware

import (
    "testing"

    "github.com/prometheus/client_golang/prometheus"
    dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
    t.Helper()
    var m dto.Metric
    if err := c.Write(&m); err != nil {
        t.Fatal(err)
    }
    return m.GetCounter().GetValue()
}
