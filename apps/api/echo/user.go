package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

var errNoPermsToSetRoles = "not enough rights to set these roles"

type userApi struct {
	svc *user.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := userApi{svc: opts.UserSvc}

	sg := g.Group("/schools/:"+schoolIDParam+"/users", jwt, schoolScopeMiddleware(), adminMiddleware())
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.GET("/roles", api.queryRoles)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	schoolID := ctx.Param(schoolIDParam)
	data.SchoolID = &schoolID
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	// ctxUser cannot set a role > their own max role
	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if user.MaxRolePriority(data.Roles) > user.MaxRolePriority(ctxUsr.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return respond(ctx, http.StatusCreated, "user created", usr)
}

func (api *userApi) query(ctx echo.Context) error {
	users, pagination, err := api.svc.List(ctx.Request().Context(), ctx.Param(schoolIDParam), bindListParams(ctx))
	if err != nil {
		return errors.Wrap(err, "listing users")
	}
	return respondList(ctx, "users retrieved", users, pagination)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return respond(ctx, http.StatusOK, "roles retrieved", user.Roles)
}

// getScopedUser loads the target user and enforces the tenant boundary; a user
// from another school is a 404, never a hint that the ID exists.
func (api *userApi) getScopedUser(ctx echo.Context) (user.User, error) {
	usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return user.User{}, err
	}
	if !usr.BelongsTo(ctx.Param(schoolIDParam)) {
		return user.User{}, errHttpNotFound
	}
	return usr, nil
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := api.getScopedUser(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "user retrieved", usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, err := api.getScopedUser(ctx)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err = data.Validate(usr, api.svc); err != nil {
		return err
	}

	// ctxUser cannot set a role > their own max role
	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if user.MaxRolePriority(data.Roles) > user.MaxRolePriority(ctxUsr.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return respond(ctx, http.StatusOK, "user updated", usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	usr, err := api.getScopedUser(ctx)
	if err != nil {
		return err
	}

	// ctxUser cannot delete themselves
	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if usr.ID == ctxUsr.ID {
		return errHttpForbidden
	}

	if err = api.svc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}
