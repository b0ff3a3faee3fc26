package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	echoapi "github.com/elimuhub/elimu/apps/api/echo"
	"github.com/elimuhub/elimu/core"
	"github.com/elimuhub/elimu/core/catalog"
	"github.com/elimuhub/elimu/core/enroll"
	"github.com/elimuhub/elimu/core/user"
	emailsvc "github.com/elimuhub/elimu/services/email"
	inmemdb "github.com/elimuhub/elimu/storage/inmem"
)

type testEnv struct {
	server     echoapi.Server
	usrSvc     *user.Service
	catalogSvc *catalog.Service
	enrollSvc  *enroll.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	emailsvc.ClearSentMessages()

	db := inmemdb.Open()
	usrSvc := user.NewService(inmemdb.NewUserRepository(db))
	catalogSvc := catalog.NewService(inmemdb.NewCatalogRepository(db))
	logger := core.NewStdLogger(log.New(io.Discard, "", 0))
	enrollSvc := enroll.NewService(
		inmemdb.NewEnrollmentRepository(db), usrSvc, emailsvc.NewConsoleServiceMock(), logger)

	server := echoapi.NewServer(&echoapi.Options{
		DisableReqLogs: true,
		UserSvc:        usrSvc,
		CatalogSvc:     catalogSvc,
		EnrollSvc:      enrollSvc,
		Logger:         logger,
	})
	return &testEnv{server: server, usrSvc: usrSvc, catalogSvc: catalogSvc, enrollSvc: enrollSvc}
}

func (env *testEnv) createUser(t *testing.T, uid, email, name string, admin bool) user.User {
	t.Helper()
	usr, err := env.usrSvc.Sync(context.Background(), user.SyncUser{UID: uid, Email: email, Name: name})
	require.NoError(t, err)
	if admin {
		usr, err = env.usrSvc.SetRole(context.Background(), usr.ID, user.RoleAdmin)
		require.NoError(t, err)
	}
	return usr
}

func (env *testEnv) createCourse(t *testing.T, title string) catalog.Course {
	t.Helper()
	course, err := env.catalogSvc.CreateCourse(context.Background(), catalog.NewCourse{Title: title, Price: 49.99})
	require.NoError(t, err)
	return course
}

// envelope mirrors the API response wrapper for assertions.
type envelope struct {
	Success bool            `json:"success"`
	Message json.RawMessage `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buff bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buff).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buff)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	var resp envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec, resp
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr))
	require.NoError(t, err)
	return token
}

func decodeData(t *testing.T, resp envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst))
}

func messageString(resp envelope) string {
	var s string
	_ = json.Unmarshal(resp.Message, &s)
	return s
}
