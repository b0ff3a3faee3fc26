package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimuhub/elimu/core/user"
)

func Test_authApi_login(t *testing.T) {
	env := setup(t)

	rec, _ := env.do(t, http.MethodGet, "/v1/auth/login", "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "accounts.google.com")
	assert.NotEmpty(t, rec.Header().Get("Set-Cookie"))
}

func Test_authApi_callback_badState(t *testing.T) {
	env := setup(t)

	// no state cookie round-tripped
	rec, resp := env.do(t, http.MethodGet, "/v1/auth/callback?state=forged&code=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "authentication failed", messageString(resp))
}

func Test_userApi_me(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "uid1", "jane@test.cd", "Jane", false)

	rec, resp := env.do(t, http.MethodGet, "/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)

	rec, resp = env.do(t, http.MethodGet, "/v1/users/me", getToken(t, usr), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	var got user.User
	decodeData(t, resp, &got)
	assert.Equal(t, usr.ID, got.ID)
	assert.Equal(t, "jane@test.cd", got.Email)
	assert.Equal(t, user.RoleStudent, got.Role)
}

func Test_userApi_query_adminOnly(t *testing.T) {
	env := setup(t)
	student := env.createUser(t, "uid1", "jane@test.cd", "Jane", false)
	admin := env.createUser(t, "uid2", "boss@test.cd", "Boss", true)

	rec, _ := env.do(t, http.MethodGet, "/v1/users", getToken(t, student), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := env.do(t, http.MethodGet, "/v1/users", getToken(t, admin), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []user.User
	decodeData(t, resp, &got)
	assert.Len(t, got, 2)
}

func Test_userApi_retrieve(t *testing.T) {
	env := setup(t)
	student := env.createUser(t, "uid1", "jane@test.cd", "Jane", false)
	admin := env.createUser(t, "uid2", "boss@test.cd", "Boss", true)

	rec, resp := env.do(t, http.MethodGet, "/v1/users/"+student.ID, getToken(t, admin), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got user.User
	decodeData(t, resp, &got)
	assert.Equal(t, student.ID, got.ID)

	rec, _ = env.do(t, http.MethodGet, "/v1/users/nope", getToken(t, admin), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
