package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/announce"
)

type announcementApi struct {
	svc *announce.Service
}

func registerAnnouncementAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := announcementApi{svc: opts.AnnounceSvc}

	sg := g.Group("/schools/:"+schoolIDParam+"/announcements", jwt, schoolScopeMiddleware())
	sg.POST("", api.create, adminMiddleware())
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update, adminMiddleware())
	sg.POST("/:id/publish", api.publish, adminMiddleware())
	sg.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *announcementApi) create(ctx echo.Context) error {
	var data announce.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), ctx.Param(schoolIDParam), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return respond(ctx, http.StatusCreated, "announcement created", a)
}

func (api *announcementApi) query(ctx echo.Context) error {
	announcements, pagination, err := api.svc.List(ctx.Request().Context(), ctx.Param(schoolIDParam), bindListParams(ctx))
	if err != nil {
		return errors.Wrap(err, "listing announcements")
	}
	return respondList(ctx, "announcements retrieved", announcements, pagination)
}

func (api *announcementApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.Get(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "announcement retrieved", a)
}

func (api *announcementApi) update(ctx echo.Context) error {
	orig, err := api.svc.Get(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data announce.NewAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	a, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating announcement")
	}
	return respond(ctx, http.StatusOK, "announcement updated", a)
}

func (api *announcementApi) publish(ctx echo.Context) error {
	a, err := api.svc.Publish(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "announcement published", a)
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param(schoolIDParam), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
