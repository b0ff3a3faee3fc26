package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimuhub/elimu/core/user"
	inmemdb "github.com/elimuhub/elimu/storage/inmem"
)

func setup(t *testing.T) *user.Service {
	t.Helper()
	return user.NewService(inmemdb.NewUserRepository(inmemdb.Open()))
}

func TestService_Sync_createsOnFirstLogin(t *testing.T) {
	svc := setup(t)

	usr, err := svc.Sync(context.Background(), user.SyncUser{
		UID:    "goog-123",
		Email:  "jane@test.cd",
		Name:   "Jane",
		Avatar: "https://img.test.cd/jane.png",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, "goog-123", usr.UID)
	assert.Equal(t, user.RoleStudent, usr.Role)
	assert.False(t, usr.LastLogin.IsZero())
	assert.Equal(t, usr.CreatedAt, usr.UpdatedAt)
}

func TestService_Sync_isIdempotentPerUID(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	first, err := svc.Sync(ctx, user.SyncUser{UID: "goog-123", Email: "jane@test.cd", Name: "Jane"})
	require.NoError(t, err)

	// provider profile changed; same UID must resolve to the same record
	second, err := svc.Sync(ctx, user.SyncUser{UID: "goog-123", Email: "jane.doe@test.cd", Name: "Jane Doe"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "jane.doe@test.cd", second.Email)
	assert.Equal(t, "Jane Doe", second.Name)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.False(t, second.LastLogin.Before(first.LastLogin))

	all, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestService_Sync_roleSurvivesResync(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	usr, err := svc.Sync(ctx, user.SyncUser{UID: "goog-123", Email: "jane@test.cd", Name: "Jane"})
	require.NoError(t, err)

	usr, err = svc.SetRole(ctx, usr.ID, user.RoleAdmin)
	require.NoError(t, err)
	require.True(t, usr.IsAdmin())

	usr, err = svc.Sync(ctx, user.SyncUser{UID: "goog-123", Email: "jane@test.cd", Name: "Jane"})
	require.NoError(t, err)
	assert.True(t, usr.IsAdmin())
}

func TestService_SetRole(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	usr, err := svc.Sync(ctx, user.SyncUser{UID: "goog-123", Email: "jane@test.cd", Name: "Jane"})
	require.NoError(t, err)

	_, err = svc.SetRole(ctx, usr.ID, "superuser")
	assert.Equal(t, user.ErrInvalidRole, err)

	_, err = svc.SetRole(ctx, "nope", user.RoleAdmin)
	assert.Equal(t, user.ErrNotFound, err)

	usr, err = svc.SetRole(ctx, usr.ID, user.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, usr.Role)
}

func TestService_AppendEnrollment(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	usr, err := svc.Sync(ctx, user.SyncUser{UID: "goog-123", Email: "jane@test.cd", Name: "Jane"})
	require.NoError(t, err)

	require.NoError(t, svc.AppendEnrollment(ctx, usr.ID, "ENR-1"))
	require.NoError(t, svc.AppendEnrollment(ctx, usr.ID, "ENR-2"))

	usr, err = svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ENR-1", "ENR-2"}, usr.EnrollmentIDs)
}
