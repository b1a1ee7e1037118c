package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/visitor-register/internal/model"
)

// VisitorRepo stores visitor check-ins.  Every read is scoped to a member.
type VisitorRepo struct {
	db *sql.DB
}

func NewVisitorRepo(db *sql.DB) *VisitorRepo {
	return &VisitorRepo{db: db}
}

const visitorColumns = `id, member_id, workbook_id, name, mobile_no, vehicle_no, from_place,
	destination_place, in_time, out_time, photo, signature, is_active, created_at`

// Create inserts v and sets its ID and CreatedAt.
func (r *VisitorRepo) Create(ctx context.Context, v *model.Visitor) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO visitors (member_id, workbook_id, name, mobile_no, vehicle_no, from_place,
			destination_place, in_time, out_time, photo, signature, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.MemberID, v.WorkbookID, v.Name, v.MobileNo, v.VehicleNo, v.FromPlace,
		v.DestinationPlace, nullTime(v.InTime), nullTime(v.OutTime), v.Photo, v.Signature, true, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	v.IsActive = true
	v.CreatedAt = now
	return nil
}

// ListActiveByWorkbook returns the workbook's active visitors in insertion order.
func (r *VisitorRepo) ListActiveByWorkbook(ctx context.Context, memberID, workbookID uint64) ([]model.Visitor, error) {
	return r.query(ctx,
		`SELECT `+visitorColumns+` FROM visitors
		 WHERE member_id = ? AND workbook_id = ? AND is_active = 1
		 ORDER BY id ASC`,
		memberID, workbookID)
}

// NamesByPrefix returns up to limit distinct active visitor names starting
// with prefix, alphabetically.
func (r *VisitorRepo) NamesByPrefix(ctx context.Context, memberID uint64, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT name FROM visitors
		 WHERE member_id = ? AND is_active = 1 AND name <> '' AND LOWER(name) LIKE ? ESCAPE '!'
		 ORDER BY name ASC LIMIT ?`,
		memberID, likeEscape(prefix)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *VisitorRepo) query(ctx context.Context, q string, args ...any) ([]model.Visitor, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Visitor
	for rows.Next() {
		var (
			v         model.Visitor
			inT, outT sql.NullTime
		)
		if err := rows.Scan(&v.ID, &v.MemberID, &v.WorkbookID, &v.Name, &v.MobileNo, &v.VehicleNo,
			&v.FromPlace, &v.DestinationPlace, &inT, &outT, &v.Photo, &v.Signature, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, err
		}
		v.InTime = timePtr(inT)
		v.OutTime = timePtr(outT)
		out = append(out, v)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
