package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Role          Role       `bun:"role,notnull" json:"role,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Authorities returns the authority labels granted by the user's role.
func (u *User) Authorities() []string {
	if u == nil {
		return nil
	}
	return AuthoritiesFor(u.Role)
}

// Identity exposes the user through the Identity interface.
func (u *User) Identity() Identity {
	return userIdentity{id: u.ID, username: u.Username, role: u.Role}
}

type userIdentity struct {
	id       int64
	username string
	role     Role
}

func (a userIdentity) ID() int64        { return a.id }
func (a userIdentity) Username() string { return a.username }
func (a userIdentity) Role() Role       { return a.role }

var _ Identity = userIdentity{}
