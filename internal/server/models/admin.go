package models

import "time"

type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleOrganizer || r == RoleAdmin
}

// Admin is an operator account. PasswordHash stays nil until the invite is
// accepted; only the sha256 of the invite token is kept.
type Admin struct {
	ID              string
	Name            string
	Email           string
	Role            Role
	PasswordHash    *string
	InviteTokenHash *string
	InviteExpiresAt *time.Time
	AcceptedAt      *time.Time
	LastLoginAt     *time.Time
	CreatedAt       time.Time
}

func (a *Admin) Accepted() bool {
	return a.AcceptedAt != nil
}
