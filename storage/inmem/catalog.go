package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/elimuhub/elimu/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// Courses

func (repo catalogRepository) CreateCourse(_ context.Context, course catalog.Course) (catalog.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.courses[course.ID] = course
	return course, nil
}

func (repo catalogRepository) GetCourseByID(_ context.Context, id string) (catalog.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if course, ok := repo.db.courses[id]; ok {
		return course, nil
	}
	return catalog.Course{}, catalog.ErrCourseNotFound
}

func (repo catalogRepository) QueryAllCourses(_ context.Context) ([]catalog.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	courses := make([]catalog.Course, 0, len(repo.db.courses))
	for _, course := range repo.db.courses {
		courses = append(courses, course)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.Before(courses[j].CreatedAt) })
	return courses, nil
}

func (repo catalogRepository) UpdateCourse(_ context.Context, course catalog.Course) (catalog.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.courses[course.ID]; !ok {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	course.Modules = nil
	repo.db.courses[course.ID] = course
	return course, nil
}

func (repo catalogRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.courses[id]; !ok {
		return catalog.ErrCourseNotFound
	}
	delete(repo.db.courses, id)
	for mid, mod := range repo.db.modules {
		if mod.CourseID != id {
			continue
		}
		delete(repo.db.modules, mid)
		for vid, v := range repo.db.videos {
			if v.ModuleID == mid {
				delete(repo.db.videos, vid)
			}
		}
	}
	return nil
}

func (repo catalogRepository) TouchCourse(_ context.Context, id string, at time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	course, ok := repo.db.courses[id]
	if !ok {
		return catalog.ErrCourseNotFound
	}
	course.UpdatedAt = at
	repo.db.courses[id] = course
	return nil
}

// Modules

func (repo catalogRepository) CreateModule(_ context.Context, mod catalog.Module) (catalog.Module, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.modules[mod.ID] = mod
	return mod, nil
}

func (repo catalogRepository) GetModuleByID(_ context.Context, id string) (catalog.Module, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if mod, ok := repo.db.modules[id]; ok {
		return mod, nil
	}
	return catalog.Module{}, catalog.ErrModuleNotFound
}

func (repo catalogRepository) QueryModulesByCourse(_ context.Context, courseID string) ([]catalog.Module, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.modulesByCourse(courseID), nil
}

func (repo catalogRepository) CountModulesByCourse(_ context.Context, courseID string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.modulesByCourse(courseID)), nil
}

func (repo catalogRepository) UpdateModule(_ context.Context, mod catalog.Module) (catalog.Module, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.modules[mod.ID]; !ok {
		return catalog.Module{}, catalog.ErrModuleNotFound
	}
	mod.Videos = nil
	repo.db.modules[mod.ID] = mod
	return mod, nil
}

func (repo catalogRepository) DeleteModule(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.modules[id]; !ok {
		return catalog.ErrModuleNotFound
	}
	delete(repo.db.modules, id)
	for vid, v := range repo.db.videos {
		if v.ModuleID == id {
			delete(repo.db.videos, vid)
		}
	}
	return nil
}

func (repo catalogRepository) ResequenceModules(_ context.Context, courseID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for i, mod := range repo.modulesByCourse(courseID) {
		mod.Order = i + 1
		repo.db.modules[mod.ID] = mod
	}
	return nil
}

func (repo catalogRepository) TouchModule(_ context.Context, id string, at time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	mod, ok := repo.db.modules[id]
	if !ok {
		return catalog.ErrModuleNotFound
	}
	mod.UpdatedAt = at
	repo.db.modules[id] = mod
	return nil
}

// Videos

func (repo catalogRepository) CreateVideo(_ context.Context, vid catalog.Video) (catalog.Video, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.videos[vid.ID] = vid
	return vid, nil
}

func (repo catalogRepository) GetVideoByID(_ context.Context, id string) (catalog.Video, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if vid, ok := repo.db.videos[id]; ok {
		return vid, nil
	}
	return catalog.Video{}, catalog.ErrVideoNotFound
}

func (repo catalogRepository) QueryVideosByModule(_ context.Context, moduleID string) ([]catalog.Video, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.videosByModule(moduleID), nil
}

func (repo catalogRepository) CountVideosByModule(_ context.Context, moduleID string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.videosByModule(moduleID)), nil
}

func (repo catalogRepository) UpdateVideo(_ context.Context, vid catalog.Video) (catalog.Video, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.videos[vid.ID]; !ok {
		return catalog.Video{}, catalog.ErrVideoNotFound
	}
	repo.db.videos[vid.ID] = vid
	return vid, nil
}

func (repo catalogRepository) DeleteVideo(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.videos[id]; !ok {
		return catalog.ErrVideoNotFound
	}
	delete(repo.db.videos, id)
	return nil
}

func (repo catalogRepository) ResequenceVideos(_ context.Context, moduleID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for i, vid := range repo.videosByModule(moduleID) {
		vid.Order = i + 1
		repo.db.videos[vid.ID] = vid
	}
	return nil
}

// callers must hold db.mu
func (repo catalogRepository) modulesByCourse(courseID string) []catalog.Module {
	mods := make([]catalog.Module, 0)
	for _, mod := range repo.db.modules {
		if mod.CourseID == courseID {
			mods = append(mods, mod)
		}
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Order < mods[j].Order })
	return mods
}

func (repo catalogRepository) videosByModule(moduleID string) []catalog.Video {
	vids := make([]catalog.Video, 0)
	for _, vid := range repo.db.videos {
		if vid.ModuleID == moduleID {
			vids = append(vids, vid)
		}
	}
	sort.Slice(vids, func(i, j int) bool { return vids[i].Order < vids[j].Order })
	return vids
}
