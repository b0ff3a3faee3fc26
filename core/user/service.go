package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrInvalidRole = errors.New("invalid role")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByUID(ctx context.Context, uid string) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		// UpdateUser replaces the mutable fields of the stored record; ID, UID
		// and CreatedAt are never overwritten.
		UpdateUser(ctx context.Context, usr User) (User, error)
		AppendUserEnrollment(ctx context.Context, id, enrollmentID string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Sync upserts the profile keyed by the identity provider's UID: mutable
// profile fields and LastLogin are refreshed if the user exists, otherwise a
// new record is inserted with the default role. Calling it twice with the same
// UID always resolves to the same record.
func (svc *Service) Sync(ctx context.Context, su SyncUser) (User, error) {
	now := time.Now().UTC()

	usr, err := svc.repo.GetUserByUID(ctx, su.UID)
	if err == nil {
		usr.Email = su.Email
		usr.Name = su.Name
		usr.Avatar = su.Avatar
		usr.LastLogin = now
		usr.UpdatedAt = now
		return svc.repo.UpdateUser(ctx, usr)
	}
	if err != ErrNotFound {
		return User{}, err
	}

	usr = User{
		ID:        uuid.New().String(),
		UID:       su.UID,
		Email:     su.Email,
		Name:      su.Name,
		Avatar:    su.Avatar,
		Role:      RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUID(ctx context.Context, uid string) (User, error) {
	return svc.repo.GetUserByUID(ctx, uid)
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

// AppendEnrollment links a submitted enrollment to the user's profile.
func (svc *Service) AppendEnrollment(ctx context.Context, userID, enrollmentID string) error {
	return svc.repo.AppendUserEnrollment(ctx, userID, enrollmentID)
}

// SetRole promotes or demotes a user; used by the admin CLI.
func (svc *Service) SetRole(ctx context.Context, id, role string) (User, error) {
	var valid bool
	for _, r := range AllRoles {
		if r == role {
			valid = true
			break
		}
	}
	if !valid {
		return User{}, ErrInvalidRole
	}

	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Role = role
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}
