package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/visitor-register/internal/model"
	"github.com/iliyamo/visitor-register/internal/visitor"
)

// ErrWorkbookNotFound is returned when a workbook does not exist or is not
// owned by the requesting member.
var ErrWorkbookNotFound = errors.New("workbook not found")

// WorkbookRepo stores member workbooks.
type WorkbookRepo struct {
	db *sql.DB
}

func NewWorkbookRepo(db *sql.DB) *WorkbookRepo {
	return &WorkbookRepo{db: db}
}

const workbookSelect = `SELECT w.id, w.member_id, w.workbook_type_id, w.name, w.created_at,
		t.type, t.icon, t.mandatory_fields
	FROM workbooks w
	JOIN workbook_types t ON t.id = w.workbook_type_id`

// Create inserts w.  The (member, type) unique key backs up the service's
// duplicate check and surfaces as ErrConflict.
func (r *WorkbookRepo) Create(ctx context.Context, w *model.Workbook) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO workbooks (member_id, workbook_type_id, name, created_at) VALUES (?, ?, ?, ?)`,
		w.MemberID, w.WorkbookTypeID, w.Name, now)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	w.CreatedAt = now
	return nil
}

// ExistsForMemberType reports whether the member already has a workbook of
// the given type.
func (r *WorkbookRepo) ExistsForMemberType(ctx context.Context, memberID, typeID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workbooks WHERE member_id = ? AND workbook_type_id = ?`,
		memberID, typeID).Scan(&n)
	return n > 0, err
}

// GetByIDForMember returns a workbook scoped to its owner, with the type's
// current schema joined in.
func (r *WorkbookRepo) GetByIDForMember(ctx context.Context, id, memberID uint64) (*model.Workbook, error) {
	row := r.db.QueryRowContext(ctx, workbookSelect+` WHERE w.id = ? AND w.member_id = ?`, id, memberID)
	w, err := scanWorkbook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkbookNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListByMember returns the member's workbooks ordered by id.
func (r *WorkbookRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.Workbook, error) {
	rows, err := r.db.QueryContext(ctx, workbookSelect+` WHERE w.member_id = ? ORDER BY w.id ASC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Workbook
	for rows.Next() {
		w, err := scanWorkbook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func scanWorkbook(s rowScanner) (*model.Workbook, error) {
	var (
		w      model.Workbook
		fields sql.NullString
	)
	if err := s.Scan(&w.ID, &w.MemberID, &w.WorkbookTypeID, &w.Name, &w.CreatedAt,
		&w.Type, &w.Icon, &fields); err != nil {
		return nil, err
	}
	w.MandatoryFields = visitor.ParseSchema(fields.String)
	return &w, nil
}
