package catalog

import (
	"time"

	"github.com/elimuhub/elimu/core"
)

// Course is the root of the catalog hierarchy; it owns an ordered list of
// modules, each of which owns an ordered list of videos.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency,omitempty"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC

	Modules []Module `json:"modules,omitempty"`
}

type Module struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC

	Videos []Video `json:"videos,omitempty"`
}

type Video struct {
	ID        string        `json:"id"`
	ModuleID  string        `json:"module_id"`
	Title     string        `json:"title"`
	URL       string        `json:"url"`
	Duration  time.Duration `json:"duration,omitempty"`
	Order     int           `json:"order"`
	CreatedAt time.Time     `json:"created_at"` // UTC
	UpdatedAt time.Time     `json:"updated_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Thumbnail   string  `json:"thumbnail" validate:"omitempty,url"`
	Price       float64 `json:"price" validate:"gte=0"`
	Currency    string  `json:"currency"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Currency = core.CleanString(nc.Currency, true /* lower */)
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing
// Course; zero-valued fields are left untouched.
type UpdateCourse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail" validate:"omitempty,url"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Currency    string   `json:"currency"`
	IsPublished *bool    `json:"is_published"`
}

func (uc *UpdateCourse) Validate() error {
	uc.Title = core.CleanString(uc.Title)
	uc.Description = core.CleanString(uc.Description)
	uc.Currency = core.CleanString(uc.Currency, true /* lower */)
	return core.Validate.Struct(uc)
}

type NewModule struct {
	CourseID string `json:"course_id" validate:"required"`
	Title    string `json:"title" validate:"required"`
}

func (nm *NewModule) Validate() error {
	nm.Title = core.CleanString(nm.Title)
	return core.Validate.Struct(nm)
}

type UpdateModule struct {
	Title string `json:"title" validate:"required"`
}

func (um *UpdateModule) Validate() error {
	um.Title = core.CleanString(um.Title)
	return core.Validate.Struct(um)
}

type NewVideo struct {
	ModuleID string        `json:"module_id" validate:"required"`
	Title    string        `json:"title" validate:"required"`
	URL      string        `json:"url" validate:"required,url"`
	Duration time.Duration `json:"duration"`
}

func (nv *NewVideo) Validate() error {
	nv.Title = core.CleanString(nv.Title)
	return core.Validate.Struct(nv)
}

type UpdateVideo struct {
	Title    string        `json:"title"`
	URL      string        `json:"url" validate:"omitempty,url"`
	Duration time.Duration `json:"duration"`
}

func (uv *UpdateVideo) Validate() error {
	uv.Title = core.CleanString(uv.Title)
	return core.Validate.Struct(uv)
}
