package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

type schoolApi struct {
	svc *school.Service
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := schoolApi{svc: opts.SchoolSvc}

	// tenant management is platform-admin territory
	sg := g.Group("/schools", jwt)
	sg.POST("", api.create, platformAdminMiddleware())
	sg.GET("", api.query, platformAdminMiddleware())
	sg.DELETE("/:"+schoolIDParam, api.destroy, platformAdminMiddleware())

	dg := sg.Group("/:"+schoolIDParam, schoolScopeMiddleware())
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())

	// academic calendar, scoped to the school in the path
	dg.POST("/sessions", api.createSession, adminMiddleware())
	dg.GET("/sessions", api.querySessions)
	dg.GET("/sessions/active", api.retrieveActiveSession)
	dg.GET("/sessions/:id", api.retrieveSession)
	dg.PUT("/sessions/:id", api.updateSession, adminMiddleware())
	dg.POST("/sessions/:id/activate", api.activateSession, adminMiddleware())
	dg.DELETE("/sessions/:id", api.destroySession, adminMiddleware())

	dg.POST("/terms", api.createTerm, adminMiddleware())
	dg.GET("/terms", api.queryTerms)
	dg.GET("/terms/active", api.retrieveActiveTerm)
	dg.GET("/terms/:id", api.retrieveTerm)
	dg.PUT("/terms/:id", api.updateTerm, adminMiddleware())
	dg.DELETE("/terms/:id", api.destroyTerm, adminMiddleware())
}

// Schools

func (api *schoolApi) create(ctx echo.Context) error {
	var data school.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	sch, err := api.svc.CreateSchool(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating school")
	}
	return respond(ctx, http.StatusCreated, "school created", sch)
}

func (api *schoolApi) query(ctx echo.Context) error {
	schools, pagination, err := api.svc.ListSchools(ctx.Request().Context(), bindListParams(ctx))
	if err != nil {
		return errors.Wrap(err, "listing schools")
	}
	return respondList(ctx, "schools retrieved", schools, pagination)
}

func (api *schoolApi) retrieve(ctx echo.Context) error {
	sch, err := api.svc.GetSchool(ctx.Request().Context(), ctx.Param(schoolIDParam))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "school retrieved", sch)
}

func (api *schoolApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetSchool(ctx.Request().Context(), ctx.Param(schoolIDParam))
	if err != nil {
		return err
	}

	var data school.UpdateSchool
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchool")
	}
	if err = data.Validate(orig, api.svc); err != nil {
		return err
	}

	sch, err := api.svc.UpdateSchool(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating school")
	}
	return respond(ctx, http.StatusOK, "school updated", sch)
}

func (api *schoolApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteSchool(ctx.Request().Context(), ctx.Param(schoolIDParam)); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Sessions

func (api *schoolApi) createSession(ctx echo.Context) error {
	var data school.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sess, err := api.svc.CreateSession(ctx.Request().Context(), ctx.Param(schoolIDParam), data)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return respond(ctx, http.StatusCreated, "session created", sess)
}

func (api *schoolApi) querySessions(ctx echo.Context) error {
	sessions, pagination, err := api.svc.ListSessions(ctx.Request().Context(), ctx.Param(schoolIDParam), bindListParams(ctx))
	if err != nil {
		return errors.Wrap(err, "listing sessions")
	}
	return respondList(ctx, "sessions retrieved", sessions, pagination)
}

func (api *schoolApi) retrieveActiveSession(ctx echo.Context) error {
	sess, err := api.svc.GetActiveSession(ctx.Request().Context(), ctx.Param(schoolIDParam))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "active session retrieved", sess)
}

func (api *schoolApi) retrieveSession(ctx echo.Context) error {
	sess, err := api.svc.GetSession(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}
	payload, err := withSchool(ctx, api.svc, sess.SchoolID, "session", sess)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "session retrieved", payload)
}

func (api *schoolApi) updateSession(ctx echo.Context) error {
	orig, err := api.svc.GetSession(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data school.UpdateSession
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}
	if err = data.Validate(orig); err != nil {
		return err
	}

	sess, err := api.svc.UpdateSession(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	return respond(ctx, http.StatusOK, "session updated", sess)
}

func (api *schoolApi) activateSession(ctx echo.Context) error {
	sess, err := api.svc.ActivateSession(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "session activated", sess)
}

func (api *schoolApi) destroySession(ctx echo.Context) error {
	if err := api.svc.DeleteSession(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Terms

func (api *schoolApi) createTerm(ctx echo.Context) error {
	var data school.NewTerm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTerm")
	}

	// term dates are validated against the owning session
	sess, err := api.svc.GetSession(ctx.Request().Context(), ctx.Param(schoolIDParam), data.SessionID)
	if err != nil {
		return err
	}
	if err = data.Validate(sess); err != nil {
		return err
	}

	term, err := api.svc.CreateTerm(ctx.Request().Context(), ctx.Param(schoolIDParam), data)
	if err != nil {
		return errors.Wrap(err, "creating term")
	}
	return respond(ctx, http.StatusCreated, "term created", term)
}

func (api *schoolApi) queryTerms(ctx echo.Context) error {
	terms, pagination, err := api.svc.ListTerms(ctx.Request().Context(), ctx.Param(schoolIDParam), bindListParams(ctx))
	if err != nil {
		return errors.Wrap(err, "listing terms")
	}
	return respondList(ctx, "terms retrieved", terms, pagination)
}

func (api *schoolApi) retrieveActiveTerm(ctx echo.Context) error {
	term, err := api.svc.GetActiveTerm(ctx.Request().Context(), ctx.Param(schoolIDParam))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "active term retrieved", term)
}

func (api *schoolApi) retrieveTerm(ctx echo.Context) error {
	term, err := api.svc.GetTerm(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "term retrieved", term)
}

func (api *schoolApi) updateTerm(ctx echo.Context) error {
	orig, err := api.svc.GetTerm(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data school.NewTerm
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTerm")
	}
	data.SessionID = orig.SessionID

	sess, err := api.svc.GetSession(ctx.Request().Context(), ctx.Param(schoolIDParam), orig.SessionID)
	if err != nil {
		return err
	}
	if err = data.Validate(sess); err != nil {
		return err
	}

	term, err := api.svc.UpdateTerm(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating term")
	}
	return respond(ctx, http.StatusOK, "term updated", term)
}

func (api *schoolApi) destroyTerm(ctx echo.Context) error {
	if err := api.svc.DeleteTerm(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
