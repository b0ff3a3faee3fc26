package user

import (
	"time"

	"github.com/elimuhub/elimu/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

var AllRoles = []string{RoleStudent, RoleAdmin}

// User is a profile synced from the third-party identity provider.
// UID is the provider's stable subject identifier and is unique across users.
type User struct {
	ID            string    `json:"id"`
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Avatar        string    `json:"avatar,omitempty"`
	Role          string    `json:"role"`
	EnrollmentIDs []string  `json:"enrollment_ids,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
	LastLogin     time.Time `json:"last_login"` // UTC
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// SyncUser contains the identity-provider profile to upsert.
type SyncUser struct {
	UID    string `json:"uid" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"required"`
	Avatar string `json:"avatar"`
}

func (su *SyncUser) Validate() error {
	su.UID = core.CleanString(su.UID)
	su.Email = core.CleanString(su.Email, true /* lower */)
	su.Name = core.CleanString(su.Name)
	return core.Validate.Struct(su)
}
