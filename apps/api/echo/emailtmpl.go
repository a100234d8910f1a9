package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/emailtmpl"
)

type emailTemplateApi struct {
	conf *core.Config
	svc  emailtmpl.Service
}

func registerEmailTemplateAPI(g *echo.Group, jwt echo.MiddlewareFunc, conf *core.Config, svc emailtmpl.Service) {
	api := emailTemplateApi{conf: conf, svc: svc}

	// the whole template surface is admin-only
	tg := g.Group("/email-templates", jwt, adminMiddleware())
	tg.POST("", api.create)
	tg.GET("", api.query)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
	tg.POST("/:id/send", api.send)
}

// Handlers

func (api *emailTemplateApi) create(ctx echo.Context) error {
	var data emailtmpl.NewTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTemplate")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating email template")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *emailTemplateApi) query(ctx echo.Context) error {
	ts, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying email templates")
	}
	if ts == nil {
		ts = []emailtmpl.Template{}
	}
	return ctx.JSON(http.StatusOK, ts)
}

func (api *emailTemplateApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == emailtmpl.ErrNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "finding email template")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *emailTemplateApi) update(ctx echo.Context) error {
	var data emailtmpl.UpdateTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTemplate")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == emailtmpl.ErrNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "updating email template")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *emailTemplateApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting email template")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *emailTemplateApi) send(ctx echo.Context) error {
	var data emailtmpl.SendTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendTemplate")
	}
	data.TemplateID = ctx.Param("id")
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.Send(ctx.Request().Context(), data); err != nil {
		switch errors.Cause(err) {
		case emailtmpl.ErrNotFound:
			return errHTTPNotFound
		case emailtmpl.ErrInactive:
			return core.NewValidationError(emailtmpl.ErrInactive)
		}
		return errors.Wrap(err, "sending email template")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Email sent."})
}
