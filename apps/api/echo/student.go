package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/student"
)

type studentApi struct {
	svc       *student.Service
	schoolSvc *school.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := studentApi{svc: opts.StudentSvc, schoolSvc: opts.SchoolSvc}

	sg := g.Group("/schools/:"+schoolIDParam+"/students", jwt, schoolScopeMiddleware())
	sg.POST("", api.onboard, adminMiddleware())
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update, adminMiddleware())
	sg.DELETE("/:id", api.destroy, adminMiddleware())

	sg.POST("/:id/enrollments", api.enroll, adminMiddleware())
	sg.GET("/:id/enrollments", api.queryEnrollments)

	sg.POST("/:id/leaderships", api.assignLeadership, adminMiddleware())
	sg.GET("/:id/leaderships", api.queryLeaderships)
	sg.DELETE("/:id/leaderships/:leadershipID", api.revokeLeadership, adminMiddleware())
}

// onboard creates the student, a user account with a one-time temporary
// password and the initial enrollment atomically.
func (api *studentApi) onboard(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	res, err := api.svc.Onboard(ctx.Request().Context(), ctx.Param(schoolIDParam), data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, "student onboarded", res)
}

func (api *studentApi) query(ctx echo.Context) error {
	students, pagination, err := api.svc.List(ctx.Request().Context(), ctx.Param(schoolIDParam), bindListParams(ctx))
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	return respondList(ctx, "students retrieved", students, pagination)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	st, err := api.svc.Get(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}
	payload, err := withSchool(ctx, api.schoolSvc, st.SchoolID, "student", st)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "student retrieved", payload)
}

func (api *studentApi) update(ctx echo.Context) error {
	orig, err := api.svc.Get(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(orig); err != nil {
		return err
	}

	st, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return respond(ctx, http.StatusOK, "student updated", st)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Enrollments

type EnrollRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	ArmID     string `json:"arm_id" validate:"required"`
}

func (api *studentApi) enroll(ctx echo.Context) error {
	var data EnrollRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if err := validateStruct(&data); err != nil {
		return err
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"), data.SessionID, data.ArmID)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, "student enrolled", enr)
}

func (api *studentApi) queryEnrollments(ctx echo.Context) error {
	enrs, err := api.svc.ListEnrollments(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing enrollments")
	}
	return respond(ctx, http.StatusOK, "enrollments retrieved", enrs)
}

// Leaderships

func (api *studentApi) assignLeadership(ctx echo.Context) error {
	var data student.NewLeadership
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLeadership")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	l, err := api.svc.AssignLeadership(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, "leadership assigned", l)
}

func (api *studentApi) queryLeaderships(ctx echo.Context) error {
	ls, err := api.svc.ListLeaderships(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing leaderships")
	}
	return respond(ctx, http.StatusOK, "leaderships retrieved", ls)
}

func (api *studentApi) revokeLeadership(ctx echo.Context) error {
	if err := api.svc.RevokeLeadership(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("leadershipID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
