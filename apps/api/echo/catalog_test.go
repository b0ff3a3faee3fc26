package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimuhub/elimu/core/catalog"
)

func Test_catalogApi_createCourse(t *testing.T) {
	env := setup(t)
	student := env.createUser(t, "uid1", "jane@test.cd", "Jane", false)
	admin := env.createUser(t, "uid2", "boss@test.cd", "Boss", true)

	body := catalog.NewCourse{Title: "Intro to Go", Price: 49.99}

	rec, _ := env.do(t, http.MethodPost, "/v1/courses", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/v1/courses", getToken(t, student), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := env.do(t, http.MethodPost, "/v1/courses", getToken(t, admin), body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got catalog.Course
	decodeData(t, resp, &got)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Intro to Go", got.Title)
	assert.False(t, got.IsPublished)
}

func Test_catalogApi_createCourse_validation(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "uid2", "boss@test.cd", "Boss", true)

	rec, resp := env.do(t, http.MethodPost, "/v1/courses", getToken(t, admin), catalog.NewCourse{Price: 49.99})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)

	var fldErrs map[string]string
	require.NoError(t, json.Unmarshal(resp.Message, &fldErrs))
	assert.Contains(t, fldErrs, "title")
}

func Test_catalogApi_browse(t *testing.T) {
	env := setup(t)
	course := env.createCourse(t, "Intro to Go")

	// anyone can browse, no token needed
	rec, resp := env.do(t, http.MethodGet, "/v1/courses", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var courses []catalog.Course
	decodeData(t, resp, &courses)
	require.Len(t, courses, 1)

	rec, resp = env.do(t, http.MethodGet, "/v1/courses/"+course.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got catalog.Course
	decodeData(t, resp, &got)
	assert.Equal(t, course.ID, got.ID)

	rec, _ = env.do(t, http.MethodGet, "/v1/courses/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_catalogApi_modulesAndVideos(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "uid2", "boss@test.cd", "Boss", true)
	course := env.createCourse(t, "Intro to Go")
	token := getToken(t, admin)

	rec, resp := env.do(t, http.MethodPost, "/v1/modules", token, catalog.NewModule{CourseID: course.ID, Title: "Basics"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var mod catalog.Module
	decodeData(t, resp, &mod)
	assert.Equal(t, 1, mod.Order)

	rec, resp = env.do(t, http.MethodPost, "/v1/videos", token, catalog.NewVideo{
		ModuleID: mod.ID,
		Title:    "hello",
		URL:      "https://videos.test.cd/hello.mp4",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var vid catalog.Video
	decodeData(t, resp, &vid)
	assert.Equal(t, 1, vid.Order)

	// unknown parents yield 404
	rec, _ = env.do(t, http.MethodPost, "/v1/modules", token, catalog.NewModule{CourseID: "nope", Title: "Ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// full tree on course detail
	rec, resp = env.do(t, http.MethodGet, "/v1/courses/"+course.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got catalog.Course
	decodeData(t, resp, &got)
	require.Len(t, got.Modules, 1)
	require.Len(t, got.Modules[0].Videos, 1)

	// deletions cascade and resequence
	rec, _ = env.do(t, http.MethodDelete, "/v1/modules/"+mod.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, resp = env.do(t, http.MethodGet, "/v1/courses/"+course.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got = catalog.Course{} // fresh decode target: an empty modules list is omitted from the JSON
	decodeData(t, resp, &got)
	assert.Empty(t, got.Modules)
}
