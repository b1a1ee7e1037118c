package model

import "time"

// Roles a member can hold.  ADMIN may create workbook types; everything
// else is available to any active MEMBER.
const (
    RoleMember = "MEMBER"
    RoleAdmin  = "ADMIN"
)

// Member is an account that owns workbooks and registers visitors.  It is
// stored in the `members` table.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique, lower-cased login.
//  PasswordHash – bcrypt hash.
//  Name         – display name.
//  MobileNo     – contact number in E.164 form.
//  Package      – subscription package label.
//  Address      – postal address.
//  Role         – MEMBER or ADMIN.
//  IsActive     – inactive members cannot log in.
type Member struct {
    ID           uint64    // members.id
    Email        string    // members.email
    PasswordHash string    // members.password_hash
    Name         string    // members.name
    MobileNo     string    // members.mobile_no
    Package      string    // members.package
    Address      string    // members.address
    Role         string    // members.role
    IsActive     bool      // members.is_active
    CreatedAt    time.Time // members.created_at
    UpdatedAt    time.Time // members.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the token value is stored.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    MemberID  uint64     // refresh_tokens.member_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
