package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/academic"
)

type academicApi struct {
	svc *academic.Service
}

func registerAcademicAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := academicApi{svc: opts.AcademicSvc}

	sg := g.Group("/schools/:"+schoolIDParam, jwt, schoolScopeMiddleware())

	sg.POST("/levels", api.createLevel, adminMiddleware())
	sg.GET("/levels", api.queryLevels)
	sg.GET("/levels/:id", api.retrieveLevel)
	sg.PUT("/levels/:id", api.updateLevel, adminMiddleware())
	sg.DELETE("/levels/:id", api.destroyLevel, adminMiddleware())

	sg.POST("/arms", api.createArm, adminMiddleware())
	sg.GET("/arms", api.queryArms)
	sg.GET("/arms/:id", api.retrieveArm)
	sg.PUT("/arms/:id", api.updateArm, adminMiddleware())
	sg.DELETE("/arms/:id", api.destroyArm, adminMiddleware())
	sg.GET("/arms/:id/subjects", api.queryClassSubjects)

	sg.POST("/subjects", api.createSubject, adminMiddleware())
	sg.GET("/subjects", api.querySubjects)
	sg.GET("/subjects/:id", api.retrieveSubject)
	sg.PUT("/subjects/:id", api.updateSubject, adminMiddleware())
	sg.DELETE("/subjects/:id", api.destroySubject, adminMiddleware())

	sg.POST("/class-subjects", api.assignClassSubject, adminMiddleware())
	sg.DELETE("/class-subjects/:id", api.unassignClassSubject, adminMiddleware())

	sg.POST("/leadership-roles", api.createLeadershipRole, adminMiddleware())
	sg.GET("/leadership-roles", api.queryLeadershipRoles)
	sg.GET("/leadership-roles/:id", api.retrieveLeadershipRole)
	sg.DELETE("/leadership-roles/:id", api.destroyLeadershipRole, adminMiddleware())
}

// Class levels

func (api *academicApi) createLevel(ctx echo.Context) error {
	var data academic.NewClassLevel
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassLevel")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	lvl, err := api.svc.CreateLevel(ctx.Request().Context(), ctx.Param(schoolIDParam), data)
	if err != nil {
		return errors.Wrap(err, "creating class level")
	}
	return respond(ctx, http.StatusCreated, "class level created", lvl)
}

func (api *academicApi) queryLevels(ctx echo.Context) error {
	levels, pagination, err := api.svc.ListLevels(ctx.Request().Context(), ctx.Param(schoolIDParam), bindListParams(ctx))
	if err != nil {
		return errors.Wrap(err, "listing class levels")
	}
	return respondList(ctx, "class levels retrieved", levels, pagination)
}

func (api *academicApi) retrieveLevel(ctx echo.Context) error {
	lvl, err := api.svc.GetLevel(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "class level retrieved", lvl)
}

func (api *academicApi) updateLevel(ctx echo.Context) error {
	orig, err := api.svc.GetLevel(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data academic.NewClassLevel
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassLevel")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	lvl, err := api.svc.UpdateLevel(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating class level")
	}
	return respond(ctx, http.StatusOK, "class level updated", lvl)
}

func (api *academicApi) destroyLevel(ctx echo.Context) error {
	if err := api.svc.DeleteLevel(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Class arms

func (api *academicApi) createArm(ctx echo.Context) error {
	var data academic.NewClassArm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassArm")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	arm, err := api.svc.CreateArm(ctx.Request().Context(), ctx.Param(schoolIDParam), data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, "class arm created", arm)
}

func (api *academicApi) queryArms(ctx echo.Context) error {
	arms, pagination, err := api.svc.ListArms(ctx.Request().Context(), ctx.Param(schoolIDParam), bindListParams(ctx))
	if err != nil {
		return errors.Wrap(err, "listing class arms")
	}
	return respondList(ctx, "class arms retrieved", arms, pagination)
}

func (api *academicApi) retrieveArm(ctx echo.Context) error {
	arm, err := api.svc.GetArm(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "class arm retrieved", arm)
}

func (api *academicApi) updateArm(ctx echo.Context) error {
	orig, err := api.svc.GetArm(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data academic.NewClassArm
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassArm")
	}
	data.LevelID = orig.LevelID
	if err = data.Validate(); err != nil {
		return err
	}

	arm, err := api.svc.UpdateArm(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating class arm")
	}
	return respond(ctx, http.StatusOK, "class arm updated", arm)
}

func (api *academicApi) destroyArm(ctx echo.Context) error {
	if err := api.svc.DeleteArm(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Subjects

func (api *academicApi) createSubject(ctx echo.Context) error {
	var data academic.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(ctx.Request().Context(), ctx.Param(schoolIDParam), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return respond(ctx, http.StatusCreated, "subject created", sub)
}

func (api *academicApi) querySubjects(ctx echo.Context) error {
	subjects, pagination, err := api.svc.ListSubjects(ctx.Request().Context(), ctx.Param(schoolIDParam), bindListParams(ctx))
	if err != nil {
		return errors.Wrap(err, "listing subjects")
	}
	return respondList(ctx, "subjects retrieved", subjects, pagination)
}

func (api *academicApi) retrieveSubject(ctx echo.Context) error {
	sub, err := api.svc.GetSubject(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "subject retrieved", sub)
}

func (api *academicApi) updateSubject(ctx echo.Context) error {
	orig, err := api.svc.GetSubject(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data academic.NewSubject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.UpdateSubject(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return respond(ctx, http.StatusOK, "subject updated", sub)
}

func (api *academicApi) destroySubject(ctx echo.Context) error {
	if err := api.svc.DeleteSubject(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Class subjects

func (api *academicApi) assignClassSubject(ctx echo.Context) error {
	var data academic.NewClassSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassSubject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cs, err := api.svc.AssignClassSubject(ctx.Request().Context(), ctx.Param(schoolIDParam), data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, "subject assigned", cs)
}

func (api *academicApi) queryClassSubjects(ctx echo.Context) error {
	subjects, err := api.svc.ListClassSubjects(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing class subjects")
	}
	return respond(ctx, http.StatusOK, "class subjects retrieved", subjects)
}

func (api *academicApi) unassignClassSubject(ctx echo.Context) error {
	if err := api.svc.UnassignClassSubject(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Leadership roles

func (api *academicApi) createLeadershipRole(ctx echo.Context) error {
	var data academic.NewLeadershipRole
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLeadershipRole")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	role, err := api.svc.CreateLeadershipRole(ctx.Request().Context(), ctx.Param(schoolIDParam), data)
	if err != nil {
		return errors.Wrap(err, "creating leadership role")
	}
	return respond(ctx, http.StatusCreated, "leadership role created", role)
}

func (api *academicApi) queryLeadershipRoles(ctx echo.Context) error {
	roles, pagination, err := api.svc.ListLeadershipRoles(ctx.Request().Context(), ctx.Param(schoolIDParam), bindListParams(ctx))
	if err != nil {
		return errors.Wrap(err, "listing leadership roles")
	}
	return respondList(ctx, "leadership roles retrieved", roles, pagination)
}

func (api *academicApi) retrieveLeadershipRole(ctx echo.Context) error {
	role, err := api.svc.GetLeadershipRole(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "leadership role retrieved", role)
}

func (api *academicApi) destroyLeadershipRole(ctx echo.Context) error {
	if err := api.svc.DeleteLeadershipRole(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
