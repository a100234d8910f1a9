package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core/guardian"
)

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHTTPForbidden
		}
	}
}

// ctxGuardianOrAdminMiddleware allows access to the :id detail routes only for
// the account itself or an admin, and stashes the target account in context.
func ctxGuardianOrAdminMiddleware(svc guardian.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxGdn, err := getContextGuardian(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context guardian")
			}

			if ctx.Param("id") == ctxGdn.ID || ctxGdn.IsAdmin {
				if g, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err == nil {
					ctx.Set("object", g)
					return next(ctx)
				} else if errors.Cause(err) != guardian.ErrNotFound {
					return errors.Wrap(err, "finding guardian by ID")
				}
			}
			return errHTTPNotFound
		}
	}
}
