package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

type authApi struct {
	svc       *user.Service
	schoolSvc *school.Service
	conf      *core.Config
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := authApi{svc: opts.UserSvc, schoolSvc: opts.SchoolSvc, conf: opts.Conf}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	// refresh authenticates off the cookie: the bearer token is typically
	// expired by the time a client renews it
	ag.POST("/refresh", api.refresh, newRefreshJWTMiddleware(opts.Conf))

	authed := ag.Group("", jwt)
	authed.POST("/logout", api.logout)
	authed.GET("/me", api.me)
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return core.Validate.Struct(lr)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Username, data.Password, api.svc, api.conf)
	if err != nil {
		return err
	}
	token, err := generateToken(api.conf, claims)
	if err != nil {
		return err
	}
	refresh, err := generateRefreshToken(api.conf, claims)
	if err != nil {
		return err
	}
	setRefreshCookie(ctx, api.conf, refresh)

	return respond(ctx, http.StatusOK, "login successful", TokenResponse{Token: token})
}

func (api *authApi) refresh(ctx echo.Context) error {
	token, refresh, err := refreshToken(ctx, api.svc, api.conf)
	if err != nil {
		return err
	}
	setRefreshCookie(ctx, api.conf, refresh)
	return respond(ctx, http.StatusOK, "token refreshed", TokenResponse{Token: token})
}

func (api *authApi) logout(ctx echo.Context) error {
	clearRefreshCookie(ctx, api.conf)
	return respond(ctx, http.StatusOK, "logged out", nil)
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}

	payload := interface{}(usr)
	if usr.SchoolID != nil {
		if payload, err = withSchool(ctx, api.schoolSvc, *usr.SchoolID, "user", usr); err != nil {
			return err
		}
	}
	return respond(ctx, http.StatusOK, "authenticated user", payload)
}
