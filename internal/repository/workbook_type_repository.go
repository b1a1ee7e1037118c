package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/visitor-register/internal/model"
	"github.com/iliyamo/visitor-register/internal/visitor"
)

// ErrWorkbookTypeNotFound is returned when a workbook type lookup fails.
var ErrWorkbookTypeNotFound = errors.New("workbook type not found")

// WorkbookTypeRepo stores workbook types and their shared mandatory fields.
type WorkbookTypeRepo struct {
	db *sql.DB
}

func NewWorkbookTypeRepo(db *sql.DB) *WorkbookTypeRepo {
	return &WorkbookTypeRepo{db: db}
}

const workbookTypeColumns = "id, type, icon, mandatory_fields, created_at, updated_at"

// Create inserts t.  A taken type name yields ErrDuplicate.  An empty
// schema is stored as NULL.
func (r *WorkbookTypeRepo) Create(ctx context.Context, t *model.WorkbookType) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO workbook_types (type, icon, mandatory_fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t.Type, t.Icon, schemaValue(t.MandatoryFields), now, now)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.CreatedAt, t.UpdatedAt = now, now
	return nil
}

// GetByID returns the type with its current schema.
func (r *WorkbookTypeRepo) GetByID(ctx context.Context, id uint64) (*model.WorkbookType, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+workbookTypeColumns+` FROM workbook_types WHERE id = ?`, id)
	t, err := scanWorkbookType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkbookTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns all types ordered by id.
func (r *WorkbookTypeRepo) List(ctx context.Context) ([]model.WorkbookType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+workbookTypeColumns+` FROM workbook_types ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WorkbookType
	for rows.Next() {
		t, err := scanWorkbookType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// UpdateMandatoryFields replaces the whole schema of a type.  Concurrent
// callers race and the last write wins; there is no row lock.
func (r *WorkbookTypeRepo) UpdateMandatoryFields(ctx context.Context, id uint64, schema visitor.Schema) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE workbook_types SET mandatory_fields = ?, updated_at = ? WHERE id = ?`,
		schemaValue(schema), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	// MySQL reports zero affected rows when the value is unchanged.
	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM workbook_types WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrWorkbookTypeNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkbookType(s rowScanner) (*model.WorkbookType, error) {
	var (
		t      model.WorkbookType
		fields sql.NullString
	)
	if err := s.Scan(&t.ID, &t.Type, &t.Icon, &fields, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.MandatoryFields = visitor.ParseSchema(fields.String)
	return &t, nil
}

func schemaValue(s visitor.Schema) sql.NullString {
	if s.Empty() {
		return sql.NullString{}
	}
	return sql.NullString{String: s.String(), Valid: true}
}
