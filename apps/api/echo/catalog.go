package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elimuhub/elimu/core/catalog"
)

type catalogApi struct {
	svc *catalog.Service
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *catalog.Service) {
	api := catalogApi{svc: svc}

	cg := g.Group("/courses")

	// admin-only mutations
	ag := cg.Group("", jwt, adminMiddleware())
	ag.POST("", api.createCourse)
	ag.PUT("/:id", api.updateCourse)
	ag.DELETE("/:id", api.destroyCourse)

	// un-authed endpoints: anyone can browse the catalog; registered after the
	// admin group so they override the catch-all routes its middleware adds
	cg.GET("", api.queryCourses)
	cg.GET("/:id", api.retrieveCourse)

	mg := g.Group("/modules", jwt, adminMiddleware())
	mg.POST("", api.createModule)
	mg.PUT("/:id", api.updateModule)
	mg.DELETE("/:id", api.destroyModule)

	vg := g.Group("/videos", jwt, adminMiddleware())
	vg.POST("", api.createVideo)
	vg.PUT("/:id", api.updateVideo)
	vg.DELETE("/:id", api.destroyVideo)
}

// Courses

func (api *catalogApi) createCourse(ctx echo.Context) error {
	var data catalog.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	course, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return jsonData(ctx, http.StatusCreated, course)
}

func (api *catalogApi) queryCourses(ctx echo.Context) error {
	courses, err := api.svc.QueryCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	return jsonData(ctx, http.StatusOK, courses)
}

func (api *catalogApi) retrieveCourse(ctx echo.Context) error {
	course, err := api.svc.GetCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == catalog.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by ID")
	}
	return jsonData(ctx, http.StatusOK, course)
}

func (api *catalogApi) updateCourse(ctx echo.Context) error {
	var data catalog.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	course, err := api.svc.UpdateCourse(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == catalog.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating course")
	}
	return jsonData(ctx, http.StatusOK, course)
}

func (api *catalogApi) destroyCourse(ctx echo.Context) error {
	if err := api.svc.DeleteCourse(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == catalog.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Modules

func (api *catalogApi) createModule(ctx echo.Context) error {
	var data catalog.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	mod, err := api.svc.CreateModule(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == catalog.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating module")
	}
	return jsonData(ctx, http.StatusCreated, mod)
}

func (api *catalogApi) updateModule(ctx echo.Context) error {
	var data catalog.UpdateModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateModule")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	mod, err := api.svc.UpdateModule(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == catalog.ErrModuleNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating module")
	}
	return jsonData(ctx, http.StatusOK, mod)
}

func (api *catalogApi) destroyModule(ctx echo.Context) error {
	if err := api.svc.DeleteModule(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == catalog.ErrModuleNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Videos

func (api *catalogApi) createVideo(ctx echo.Context) error {
	var data catalog.NewVideo
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVideo")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	vid, err := api.svc.CreateVideo(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == catalog.ErrModuleNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating video")
	}
	return jsonData(ctx, http.StatusCreated, vid)
}

func (api *catalogApi) updateVideo(ctx echo.Context) error {
	var data catalog.UpdateVideo
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateVideo")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	vid, err := api.svc.UpdateVideo(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == catalog.ErrVideoNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating video")
	}
	return jsonData(ctx, http.StatusOK, vid)
}

func (api *catalogApi) destroyVideo(ctx echo.Context) error {
	if err := api.svc.DeleteVideo(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == catalog.ErrVideoNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting video")
	}
	return ctx.NoContent(http.StatusNoContent)
}
