package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elimuhub/elimu/core"
	"github.com/elimuhub/elimu/core/catalog"
	"github.com/elimuhub/elimu/core/enroll"
	"github.com/elimuhub/elimu/core/user"
)

type enrollApi struct {
	svc        *enroll.Service
	catalogSvc *catalog.Service
	userSvc    *user.Service
}

func registerEnrollAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *enroll.Service,
	catalogSvc *catalog.Service,
	userSvc *user.Service,
) {
	api := enrollApi{svc: svc, catalogSvc: catalogSvc, userSvc: userSvc}

	eg := g.Group("/enrollments", jwt)
	eg.POST("", api.submit)
	eg.GET("", api.query)
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id/review", api.review, adminMiddleware())

	mg := g.Group("/me", jwt)
	mg.GET("/courses", api.myCourses)
	mg.POST("/courses/:id/open", api.openCourse)
}

// submit records a pending enrollment for the authenticated user.
func (api *enrollApi) submit(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data enroll.NewEnrollment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	data.UserID = usr.ID
	if err = data.Validate(); err != nil {
		return err
	}

	course, err := api.catalogSvc.GetCourse(ctx.Request().Context(), data.CourseID)
	if err != nil {
		if errors.Cause(err) == catalog.ErrCourseNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: "course not found"})
		}
		return errors.Wrap(err, "finding course by ID")
	}

	res, err := api.svc.Submit(
		ctx.Request().Context(),
		enroll.UserRef{ID: usr.ID, Email: usr.Email, Name: usr.Name},
		enroll.CourseRef{ID: course.ID, Name: course.Title},
		data,
	)
	if err != nil {
		return errors.Wrap(err, "submitting enrollment")
	}
	return jsonData(ctx, http.StatusCreated, res)
}

// query lists enrollments. Admins see everything and may filter; everyone
// else only ever sees their own submissions.
func (api *enrollApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(enroll.QueryFilter)
	if err = ctx.Bind(filter); err != nil {
		return jsonData(ctx, http.StatusOK, []enroll.Enrollment{})
	}
	if !claims.IsAdmin {
		filter.UserID = claims.Subject
	}

	enrs, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrs == nil {
		enrs = []enroll.Enrollment{}
	}
	return jsonData(ctx, http.StatusOK, enrs)
}

// retrieve returns a single enrollment; owners and admins only. Others get a
// 404 so IDs cannot be probed.
func (api *enrollApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	enr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == enroll.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding enrollment by ID")
	}
	if !claims.IsAdmin && enr.User.ID != claims.Subject {
		return errHttpNotFound
	}
	return jsonData(ctx, http.StatusOK, enr)
}

// review applies the admin decision on a pending enrollment.
func (api *enrollApi) review(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data enroll.ReviewEnrollment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewEnrollment")
	}
	data.ReviewedBy = claims.Subject
	if err = data.Validate(); err != nil {
		return err
	}

	res, err := api.svc.Review(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		switch errors.Cause(err) {
		case enroll.ErrNotFound:
			return errHttpNotFound
		case enroll.ErrInvalidDecision:
			return core.NewValidationError(nil, core.FieldError{Field: "decision", Error: enroll.ErrInvalidDecision.Error()})
		case enroll.ErrAlreadyReviewed:
			return echo.NewHTTPError(http.StatusConflict, enroll.ErrAlreadyReviewed.Error())
		}
		return errors.Wrap(err, "reviewing enrollment")
	}
	return jsonData(ctx, http.StatusOK, res)
}

// myCourses lists the authenticated user's course access grants.
func (api *enrollApi) myCourses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	accesses, err := api.svc.CourseAccessesForUser(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying course accesses")
	}
	if accesses == nil {
		accesses = []enroll.CourseAccess{}
	}
	return jsonData(ctx, http.StatusOK, accesses)
}

// openCourse stamps LastAccessedAt on one of the user's grants.
func (api *enrollApi) openCourse(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	accesses, err := api.svc.CourseAccessesForUser(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying course accesses")
	}
	for _, access := range accesses {
		if access.ID == ctx.Param("id") {
			if err = api.svc.TouchAccess(ctx.Request().Context(), access.ID); err != nil {
				return errors.Wrap(err, "touching course access")
			}
			return jsonMessage(ctx, http.StatusOK, "course opened")
		}
	}
	return errHttpNotFound
}
