package echoapi

import (
	"github.com/labstack/echo/v4"
)

const schoolIDParam = "schoolID"

// adminMiddleware lets admins through, optionally restricted to specific roles.
func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// platformAdminMiddleware guards tenant management; only admins not bound to
// any school pass.
func platformAdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.IsAdmin && claims.SchoolID == "" {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// schoolScopeMiddleware enforces the tenant boundary: the token must belong to
// the school in the path, or to a platform admin. A valid token for the wrong
// school is a 403, not a 404.
func schoolScopeMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			schoolID := ctx.Param(schoolIDParam)
			if claims.SchoolID == schoolID || (claims.IsAdmin && claims.SchoolID == "") {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
