package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/teacher"
)

type teacherApi struct {
	svc       *teacher.Service
	schoolSvc *school.Service
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := teacherApi{svc: opts.TeacherSvc, schoolSvc: opts.SchoolSvc}

	sg := g.Group("/schools/:"+schoolIDParam+"/teachers", jwt, schoolScopeMiddleware())
	sg.POST("", api.onboard, adminMiddleware())
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update, adminMiddleware())
	sg.DELETE("/:id", api.destroy, adminMiddleware())
}

// onboard creates the teacher, a user account with a one-time temporary
// password and the primary-subject links atomically.
func (api *teacherApi) onboard(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	res, err := api.svc.Onboard(ctx.Request().Context(), ctx.Param(schoolIDParam), data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, "teacher onboarded", res)
}

func (api *teacherApi) query(ctx echo.Context) error {
	teachers, pagination, err := api.svc.List(ctx.Request().Context(), ctx.Param(schoolIDParam), bindListParams(ctx))
	if err != nil {
		return errors.Wrap(err, "listing teachers")
	}
	return respondList(ctx, "teachers retrieved", teachers, pagination)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.Get(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}
	payload, err := withSchool(ctx, api.schoolSvc, t.SchoolID, "teacher", t)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "teacher retrieved", payload)
}

func (api *teacherApi) update(ctx echo.Context) error {
	orig, err := api.svc.Get(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data teacher.UpdateTeacher
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	if err = data.Validate(orig); err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return respond(ctx, http.StatusOK, "teacher updated", t)
}

func (api *teacherApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
