package model

import (
    "time"

    "github.com/iliyamo/visitor-register/internal/visitor"
)

// WorkbookType is a category of register (e.g. "Office", "Society").  Its
// MandatoryFields apply to every workbook of the type, across members.
type WorkbookType struct {
    ID              uint64         // workbook_types.id
    Type            string         // workbook_types.type (unique)
    Icon            string         // workbook_types.icon, object key or URL
    MandatoryFields visitor.Schema // workbook_types.mandatory_fields (nullable, canonical list)
    CreatedAt       time.Time      // workbook_types.created_at
    UpdatedAt       time.Time      // workbook_types.updated_at
}

// Workbook is a member's register for one workbook type.  A member holds
// at most one workbook per type.
type Workbook struct {
    ID             uint64    // workbooks.id
    MemberID       uint64    // workbooks.member_id
    WorkbookTypeID uint64    // workbooks.workbook_type_id
    Name           string    // workbooks.name
    CreatedAt      time.Time // workbooks.created_at

    // Joined from workbook_types when listing.
    Type            string
    Icon            string
    MandatoryFields visitor.Schema
}
