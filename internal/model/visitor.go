package model

import (
    "time"

    "github.com/iliyamo/visitor-register/internal/visitor"
)

// Visitor is one check-in row of the `visitors` table.  Scalar fields that
// were not supplied are stored as empty strings; Photo and Signature hold
// media object keys.
type Visitor struct {
    ID               uint64
    MemberID         uint64
    WorkbookID       uint64
    Name             string
    MobileNo         string
    VehicleNo        string
    FromPlace        string
    DestinationPlace string
    InTime           *time.Time
    OutTime          *time.Time
    Photo            string
    Signature        string
    IsActive         bool
    CreatedAt        time.Time
}

// Record is the projector's view of the visitor.
func (v Visitor) Record() visitor.Record {
    return visitor.Record{
        ID:               v.ID,
        Name:             v.Name,
        MobileNo:         v.MobileNo,
        VehicleNo:        v.VehicleNo,
        FromPlace:        v.FromPlace,
        DestinationPlace: v.DestinationPlace,
        InTime:           v.InTime,
        OutTime:          v.OutTime,
        Photo:            v.Photo,
        Signature:        v.Signature,
    }
}

// Records converts a slice for projection, preserving order.
func Records(vs []Visitor) []visitor.Record {
    out := make([]visitor.Record, len(vs))
    for i, v := range vs {
        out[i] = v.Record()
    }
    return out
}

// NewVisitor fills a Visitor from a validated intake plus stored media keys.
func NewVisitor(memberID, workbookID uint64, rec visitor.Record) Visitor {
    return Visitor{
        MemberID:         memberID,
        WorkbookID:       workbookID,
        Name:             rec.Name,
        MobileNo:         rec.MobileNo,
        VehicleNo:        rec.VehicleNo,
        FromPlace:        rec.FromPlace,
        DestinationPlace: rec.DestinationPlace,
        InTime:           rec.InTime,
        OutTime:          rec.OutTime,
        Photo:            rec.Photo,
        Signature:        rec.Signature,
        IsActive:         true,
    }
}
