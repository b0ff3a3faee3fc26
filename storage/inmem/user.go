package inmemdb

import (
	"context"

	"github.com/elimuhub/elimu/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if usr, ok := repo.db.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo userRepository) GetUserByUID(_ context.Context, uid string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, usr := range repo.db.users {
		if usr.UID == uid {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo userRepository) QueryAllUsers(_ context.Context) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		users = append(users, usr)
	}
	return users, nil
}

func (repo userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	stored, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.UID = stored.UID
	usr.CreatedAt = stored.CreatedAt
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo userRepository) AppendUserEnrollment(_ context.Context, id, enrollmentID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	usr, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.EnrollmentIDs = append(usr.EnrollmentIDs, enrollmentID)
	repo.db.users[id] = usr
	return nil
}
