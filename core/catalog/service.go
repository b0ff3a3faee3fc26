package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrModuleNotFound = errors.New("module not found")
	ErrVideoNotFound  = errors.New("video not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, course Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		UpdateCourse(ctx context.Context, course Course) (Course, error)
		// DeleteCourse removes the course and cascades to its modules and videos.
		DeleteCourse(ctx context.Context, id string) error

		CreateModule(ctx context.Context, mod Module) (Module, error)
		GetModuleByID(ctx context.Context, id string) (Module, error)
		QueryModulesByCourse(ctx context.Context, courseID string) ([]Module, error) // sorted by Order
		CountModulesByCourse(ctx context.Context, courseID string) (int, error)
		UpdateModule(ctx context.Context, mod Module) (Module, error)
		DeleteModule(ctx context.Context, id string) error
		// ResequenceModules rewrites the Order of a course's surviving modules
		// to 1..n so deletions leave no gaps.
		ResequenceModules(ctx context.Context, courseID string) error

		CreateVideo(ctx context.Context, vid Video) (Video, error)
		GetVideoByID(ctx context.Context, id string) (Video, error)
		QueryVideosByModule(ctx context.Context, moduleID string) ([]Video, error) // sorted by Order
		CountVideosByModule(ctx context.Context, moduleID string) (int, error)
		UpdateVideo(ctx context.Context, vid Video) (Video, error)
		DeleteVideo(ctx context.Context, id string) error
		ResequenceVideos(ctx context.Context, moduleID string) error

		// TouchCourse bumps the course's UpdatedAt when a nested entity changes.
		TouchCourse(ctx context.Context, id string, at time.Time) error
		TouchModule(ctx context.Context, id string, at time.Time) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Courses

func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	course := Course{
		ID:          uuid.New().String(),
		Title:       nc.Title,
		Description: nc.Description,
		Thumbnail:   nc.Thumbnail,
		Price:       nc.Price,
		Currency:    nc.Currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, course)
}

func (svc *Service) QueryCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

// GetCourse returns the course with its full nested structure, modules and
// videos sorted by their Order.
func (svc *Service) GetCourse(ctx context.Context, id string) (Course, error) {
	course, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}

	mods, err := svc.repo.QueryModulesByCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	for i, mod := range mods {
		vids, err := svc.repo.QueryVideosByModule(ctx, mod.ID)
		if err != nil {
			return Course{}, err
		}
		mods[i].Videos = vids
	}
	course.Modules = mods
	return course, nil
}

func (svc *Service) UpdateCourse(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	course, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}

	if uc.Title != "" {
		course.Title = uc.Title
	}
	if uc.Description != "" {
		course.Description = uc.Description
	}
	if uc.Thumbnail != "" {
		course.Thumbnail = uc.Thumbnail
	}
	if uc.Price != nil {
		course.Price = *uc.Price
	}
	if uc.Currency != "" {
		course.Currency = uc.Currency
	}
	if uc.IsPublished != nil {
		course.IsPublished = *uc.IsPublished
	}
	course.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, course)
}

func (svc *Service) DeleteCourse(ctx context.Context, id string) error {
	if _, err := svc.repo.GetCourseByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteCourse(ctx, id)
}

// Modules

func (svc *Service) CreateModule(ctx context.Context, nm NewModule) (Module, error) {
	if _, err := svc.repo.GetCourseByID(ctx, nm.CourseID); err != nil {
		return Module{}, err
	}
	count, err := svc.repo.CountModulesByCourse(ctx, nm.CourseID)
	if err != nil {
		return Module{}, err
	}

	now := time.Now().UTC()
	mod := Module{
		ID:        uuid.New().String(),
		CourseID:  nm.CourseID,
		Title:     nm.Title,
		Order:     count + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	mod, err = svc.repo.CreateModule(ctx, mod)
	if err != nil {
		return Module{}, err
	}
	if err = svc.repo.TouchCourse(ctx, nm.CourseID, now); err != nil {
		return Module{}, err
	}
	return mod, nil
}

func (svc *Service) UpdateModule(ctx context.Context, id string, um UpdateModule) (Module, error) {
	mod, err := svc.repo.GetModuleByID(ctx, id)
	if err != nil {
		return Module{}, err
	}

	now := time.Now().UTC()
	mod.Title = um.Title
	mod.UpdatedAt = now
	mod, err = svc.repo.UpdateModule(ctx, mod)
	if err != nil {
		return Module{}, err
	}
	if err = svc.repo.TouchCourse(ctx, mod.CourseID, now); err != nil {
		return Module{}, err
	}
	return mod, nil
}

func (svc *Service) DeleteModule(ctx context.Context, id string) error {
	mod, err := svc.repo.GetModuleByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteModule(ctx, id); err != nil {
		return err
	}
	if err = svc.repo.ResequenceModules(ctx, mod.CourseID); err != nil {
		return err
	}
	return svc.repo.TouchCourse(ctx, mod.CourseID, time.Now().UTC())
}

// Videos

func (svc *Service) CreateVideo(ctx context.Context, nv NewVideo) (Video, error) {
	mod, err := svc.repo.GetModuleByID(ctx, nv.ModuleID)
	if err != nil {
		return Video{}, err
	}
	count, err := svc.repo.CountVideosByModule(ctx, nv.ModuleID)
	if err != nil {
		return Video{}, err
	}

	now := time.Now().UTC()
	vid := Video{
		ID:        uuid.New().String(),
		ModuleID:  nv.ModuleID,
		Title:     nv.Title,
		URL:       nv.URL,
		Duration:  nv.Duration,
		Order:     count + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	vid, err = svc.repo.CreateVideo(ctx, vid)
	if err != nil {
		return Video{}, err
	}
	if err = svc.touchParents(ctx, mod, now); err != nil {
		return Video{}, err
	}
	return vid, nil
}

func (svc *Service) UpdateVideo(ctx context.Context, id string, uv UpdateVideo) (Video, error) {
	vid, err := svc.repo.GetVideoByID(ctx, id)
	if err != nil {
		return Video{}, err
	}
	mod, err := svc.repo.GetModuleByID(ctx, vid.ModuleID)
	if err != nil {
		return Video{}, err
	}

	if uv.Title != "" {
		vid.Title = uv.Title
	}
	if uv.URL != "" {
		vid.URL = uv.URL
	}
	if uv.Duration != 0 {
		vid.Duration = uv.Duration
	}
	now := time.Now().UTC()
	vid.UpdatedAt = now
	vid, err = svc.repo.UpdateVideo(ctx, vid)
	if err != nil {
		return Video{}, err
	}
	if err = svc.touchParents(ctx, mod, now); err != nil {
		return Video{}, err
	}
	return vid, nil
}

func (svc *Service) DeleteVideo(ctx context.Context, id string) error {
	vid, err := svc.repo.GetVideoByID(ctx, id)
	if err != nil {
		return err
	}
	mod, err := svc.repo.GetModuleByID(ctx, vid.ModuleID)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteVideo(ctx, id); err != nil {
		return err
	}
	if err = svc.repo.ResequenceVideos(ctx, vid.ModuleID); err != nil {
		return err
	}
	return svc.touchParents(ctx, mod, time.Now().UTC())
}

// touchParents bumps UpdatedAt at every affected nesting level above a video.
func (svc *Service) touchParents(ctx context.Context, mod Module, at time.Time) error {
	if err := svc.repo.TouchModule(ctx, mod.ID, at); err != nil {
		return err
	}
	return svc.repo.TouchCourse(ctx, mod.CourseID, at)
}
