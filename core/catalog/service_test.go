package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimuhub/elimu/core/catalog"
	inmemdb "github.com/elimuhub/elimu/storage/inmem"
)

func setup(t *testing.T) *catalog.Service {
	t.Helper()
	return catalog.NewService(inmemdb.NewCatalogRepository(inmemdb.Open()))
}

func createCourse(t *testing.T, svc *catalog.Service, title string) catalog.Course {
	t.Helper()
	course, err := svc.CreateCourse(context.Background(), catalog.NewCourse{Title: title, Price: 49.99})
	require.NoError(t, err)
	return course
}

func createModule(t *testing.T, svc *catalog.Service, courseID, title string) catalog.Module {
	t.Helper()
	mod, err := svc.CreateModule(context.Background(), catalog.NewModule{CourseID: courseID, Title: title})
	require.NoError(t, err)
	return mod
}

func createVideo(t *testing.T, svc *catalog.Service, moduleID, title string) catalog.Video {
	t.Helper()
	vid, err := svc.CreateVideo(context.Background(), catalog.NewVideo{
		ModuleID: moduleID,
		Title:    title,
		URL:      "https://videos.test.cd/" + title + ".mp4",
	})
	require.NoError(t, err)
	return vid
}

func TestService_CreateModule_assignsNextOrder(t *testing.T) {
	svc := setup(t)
	course := createCourse(t, svc, "Intro to Go")

	m1 := createModule(t, svc, course.ID, "Basics")
	m2 := createModule(t, svc, course.ID, "Structs")
	m3 := createModule(t, svc, course.ID, "Interfaces")

	assert.Equal(t, 1, m1.Order)
	assert.Equal(t, 2, m2.Order)
	assert.Equal(t, 3, m3.Order)

	// orders are scoped per course
	other := createCourse(t, svc, "Advanced Go")
	assert.Equal(t, 1, createModule(t, svc, other.ID, "Concurrency").Order)
}

func TestService_DeleteModule_resequencesSurvivors(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	course := createCourse(t, svc, "Intro to Go")

	createModule(t, svc, course.ID, "Basics")
	m2 := createModule(t, svc, course.ID, "Structs")
	createModule(t, svc, course.ID, "Interfaces")

	require.NoError(t, svc.DeleteModule(ctx, m2.ID))

	got, err := svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, got.Modules, 2)
	assert.Equal(t, "Basics", got.Modules[0].Title)
	assert.Equal(t, 1, got.Modules[0].Order)
	assert.Equal(t, "Interfaces", got.Modules[1].Title)
	assert.Equal(t, 2, got.Modules[1].Order)
}

func TestService_DeleteVideo_resequencesSurvivors(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	course := createCourse(t, svc, "Intro to Go")
	mod := createModule(t, svc, course.ID, "Basics")

	createVideo(t, svc, mod.ID, "hello")
	v2 := createVideo(t, svc, mod.ID, "variables")
	createVideo(t, svc, mod.ID, "loops")

	require.NoError(t, svc.DeleteVideo(ctx, v2.ID))

	got, err := svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, got.Modules, 1)
	require.Len(t, got.Modules[0].Videos, 2)
	assert.Equal(t, "hello", got.Modules[0].Videos[0].Title)
	assert.Equal(t, 1, got.Modules[0].Videos[0].Order)
	assert.Equal(t, "loops", got.Modules[0].Videos[1].Title)
	assert.Equal(t, 2, got.Modules[0].Videos[1].Order)
}

func TestService_GetCourse_returnsNestedTree(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	course := createCourse(t, svc, "Intro to Go")

	m1 := createModule(t, svc, course.ID, "Basics")
	m2 := createModule(t, svc, course.ID, "Structs")
	createVideo(t, svc, m1.ID, "hello")
	createVideo(t, svc, m1.ID, "variables")
	createVideo(t, svc, m2.ID, "methods")

	got, err := svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, got.Modules, 2)
	assert.Len(t, got.Modules[0].Videos, 2)
	assert.Len(t, got.Modules[1].Videos, 1)

	_, err = svc.GetCourse(ctx, "nope")
	assert.Equal(t, catalog.ErrCourseNotFound, err)
}

func TestService_nestedWritesTouchParents(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	course := createCourse(t, svc, "Intro to Go")
	mod := createModule(t, svc, course.ID, "Basics")

	before, err := svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)

	createVideo(t, svc, mod.ID, "hello")

	after, err := svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
	assert.False(t, after.Modules[0].UpdatedAt.Before(before.Modules[0].UpdatedAt))
}

func TestService_UpdateCourse(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	course := createCourse(t, svc, "Intro to Go")
	require.False(t, course.IsPublished)

	published := true
	price := 29.99
	got, err := svc.UpdateCourse(ctx, course.ID, catalog.UpdateCourse{
		Description: "From zero to gopher",
		Price:       &price,
		IsPublished: &published,
	})
	require.NoError(t, err)

	assert.Equal(t, "Intro to Go", got.Title) // untouched
	assert.Equal(t, "From zero to gopher", got.Description)
	assert.Equal(t, 29.99, got.Price)
	assert.True(t, got.IsPublished)

	_, err = svc.UpdateCourse(ctx, "nope", catalog.UpdateCourse{})
	assert.Equal(t, catalog.ErrCourseNotFound, err)
}

func TestService_DeleteCourse_cascades(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	course := createCourse(t, svc, "Intro to Go")
	mod := createModule(t, svc, course.ID, "Basics")
	createVideo(t, svc, mod.ID, "hello")

	require.NoError(t, svc.DeleteCourse(ctx, course.ID))

	_, err := svc.GetCourse(ctx, course.ID)
	assert.Equal(t, catalog.ErrCourseNotFound, err)

	// creating into the deleted course fails
	_, err = svc.CreateModule(ctx, catalog.NewModule{CourseID: course.ID, Title: "Ghost"})
	assert.Equal(t, catalog.ErrCourseNotFound, err)
}
