package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/visitor-register/internal/model"
)

// VisitorSearchQuery is a conjunction of optional filters.  Empty strings
// and nil bounds impose no constraint.  MemberID is always applied.
type VisitorSearchQuery struct {
	MemberID         uint64
	WorkbookID       uint64 // 0 searches all of the member's workbooks
	Name             string // case-insensitive substring
	MobileNo         string
	VehicleNo        string
	FromPlace        string
	DestinationPlace string
	InFrom           *time.Time // in_time >= InFrom
	OutTo            *time.Time // out_time <= OutTo
	Limit            int
}

const maxSearchRows = 500

// Search returns the member's active visitors matching q, oldest first.
func (r *VisitorRepo) Search(ctx context.Context, q VisitorSearchQuery) ([]model.Visitor, error) {
	where := []string{"member_id = ?", "is_active = 1"}
	args := []any{q.MemberID}

	if q.WorkbookID != 0 {
		where = append(where, "workbook_id = ?")
		args = append(args, q.WorkbookID)
	}
	if s := strings.TrimSpace(q.Name); s != "" {
		where = append(where, `LOWER(name) LIKE ? ESCAPE '!'`)
		args = append(args, "%"+likeEscape(s)+"%")
	}
	exact := []struct {
		col string
		val string
	}{
		{"mobile_no", q.MobileNo},
		{"vehicle_no", q.VehicleNo},
		{"from_place", q.FromPlace},
		{"destination_place", q.DestinationPlace},
	}
	for _, f := range exact {
		if s := strings.TrimSpace(f.val); s != "" {
			where = append(where, f.col+" = ?")
			args = append(args, s)
		}
	}
	if q.InFrom != nil {
		where = append(where, "in_time >= ?")
		args = append(args, q.InFrom.UTC())
	}
	if q.OutTo != nil {
		where = append(where, "out_time <= ?")
		args = append(args, q.OutTo.UTC())
	}

	limit := q.Limit
	if limit <= 0 || limit > maxSearchRows {
		limit = maxSearchRows
	}
	args = append(args, limit)

	return r.query(ctx,
		`SELECT `+visitorColumns+` FROM visitors WHERE `+strings.Join(where, " AND ")+` ORDER BY id ASC LIMIT ?`,
		args...)
}

// likeEscape lower-cases s and escapes LIKE wildcards with '!', which
// needs no quoting in either MySQL or SQLite.
func likeEscape(s string) string {
	r := strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)
	return r.Replace(strings.ToLower(s))
}
