package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/visitor-register/internal/model"
)

var (
	ErrEmailExists    = errors.New("email already exists")
	ErrMemberNotFound = errors.New("member not found")
)

type MemberRepo struct{ DB *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

const memberColumns = "id,email,password_hash,name,mobile_no,package,address,role,is_active,created_at,updated_at"

// Create inserts m (PasswordHash already set) and fills its ID and timestamps.
func (r *MemberRepo) Create(ctx context.Context, m *model.Member) error {
	m.Email = normalizeEmail(m.Email)
	if m.Role == "" {
		m.Role = model.RoleMember
	}
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO members (email, password_hash, name, mobile_no, package, address, role, is_active, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?)",
		m.Email, m.PasswordHash, m.Name, m.MobileNo, m.Package, m.Address, m.Role, true, now, now)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	m.IsActive = true
	m.CreatedAt, m.UpdatedAt = now, now
	return nil
}

// GetByEmail fetches a member by normalized email.
func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (model.Member, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE email=? LIMIT 1", normalizeEmail(email)))
}

// GetByID fetches a member by id.
func (r *MemberRepo) GetByID(ctx context.Context, id uint64) (model.Member, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE id=? LIMIT 1", id))
}

// SetRole changes a member's role, used to promote admins.
func (r *MemberRepo) SetRole(ctx context.Context, id uint64, role string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE members SET role=?, updated_at=? WHERE id=?", role, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *MemberRepo) scanOne(row *sql.Row) (model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.Name, &m.MobileNo, &m.Package,
		&m.Address, &m.Role, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrMemberNotFound
	}
	return m, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
