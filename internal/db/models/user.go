package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/uptrace/bun"
)

// DefaultRole is the role granted to every self-registered account.
const DefaultRole = "user"

// User represents an authentication principal with local credentials.
// PasswordHash holds the argon2id PHC string and must never appear in any
// outward-facing projection or log line.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk,type:uuid"`
	Username     string    `bun:"username,notnull"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Roles        RoleList  `bun:"roles,notnull,default:'[\"user\"]'"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// HasRole reports whether the user has been granted the named role.
func (u *User) HasRole(role string) bool {
	return u != nil && slices.Contains(u.Roles, role)
}

// RoleList is a JSON-encoded list of role names. Stored as text/jsonb so the
// column is portable across the PostgreSQL and SQLite backends.
type RoleList []string

// Scan implements sql.Scanner for reading from database
func (r *RoleList) Scan(value any) error {
	if value == nil {
		*r = RoleList{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan RoleList: expected []byte or string, got %T", value)
	}
	return json.Unmarshal(bytes, r)
}

// Value implements driver.Valuer for writing to database
func (r RoleList) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	bytes, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}
