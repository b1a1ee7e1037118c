package service

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"

    "github.com/iliyamo/visitor-register/internal/visitor"
)

var intakeTotal = promauto.NewCounterVec(
    prometheus.CounterOpts{
        Name: "visitor_intake_total",
        Help: "Visitor registrations by outcome.",
    },
    []string{"result"},
)

// intakeResult labels an intake outcome: "ok", the failure kind, or "error".
func intakeResult(err error) string {
    if err == nil {
        return "ok"
    }
    ve, ok := visitor.AsError(err)
    if !ok {
        return "error"
    }
    switch ve.Kind {
    case visitor.KindMissingField:
        return "missing_field"
    case visitor.KindMissingAttachment:
        return "missing_attachment"
    case visitor.KindInvalidTimestamp:
        return "invalid_timestamp"
    case visitor.KindUnreadableImage:
        return "unreadable_image"
    case visitor.KindNotFound:
        return "not_found"
    }
    return "error"
}
