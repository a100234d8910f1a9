package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/guardian"
)

var errGdnNotFoundInCtx = errors.New("guardian object not found in echo.Context")

type guardianApi struct {
	conf *core.Config
	svc  guardian.Service
}

func registerGuardianAPI(g *echo.Group, jwt echo.MiddlewareFunc, conf *core.Config, svc guardian.Service) {
	api := guardianApi{conf: conf, svc: svc}

	// un-authed endpoints
	g.POST("/login", api.login)
	g.POST("/register", api.register)
	g.POST("/password-reset", api.resetPassword)
	g.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	gg := g.Group("/guardians", jwt)
	gg.POST("/token-refresh", api.refreshToken)
	gg.GET("", api.query, adminMiddleware())

	// detail endpoints
	dg := gg.Group("/:id", ctxGuardianOrAdminMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

// Handlers

func (api *guardianApi) login(ctx echo.Context) error {
	var data guardian.Login
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Login")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Email, data.Password, api.conf, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(api.conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, GuardianID: claims.Subject})
}

func (api *guardianApi) register(ctx echo.Context) error {
	var data guardian.NewGuardian
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGuardian")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	g, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating guardian")
	}

	claims := GetGuardianClaims(api.conf, g)
	token, err := GenerateToken(api.conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusCreated, RegisterResponse{Token: token, Guardian: g})
}

func (api *guardianApi) resetPassword(ctx echo.Context) error {
	var data guardian.ResetPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); err != nil {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *guardianApi) confirmPasswordReset(ctx echo.Context) error {
	var data guardian.ConfirmPasswordReset
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConfirmPasswordReset")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.ConfirmPasswordReset(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *guardianApi) query(ctx echo.Context) error {
	filter := new(guardian.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []guardian.Guardian{})
	}

	var gs []guardian.Guardian
	var err error
	if filter.IsEmpty() {
		gs, err = api.svc.QueryAll(ctx.Request().Context())
	} else {
		gs, err = api.svc.Filter(ctx.Request().Context(), *filter)
	}
	if err != nil {
		return errors.Wrap(err, "querying guardians")
	}
	if gs == nil {
		gs = []guardian.Guardian{}
	}
	return ctx.JSON(http.StatusOK, gs)
}

func (api *guardianApi) retrieve(ctx echo.Context) error {
	g, ok := ctx.Get("object").(guardian.Guardian)
	if !ok {
		return errors.Wrap(errGdnNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *guardianApi) update(ctx echo.Context) error {
	g, ok := ctx.Get("object").(guardian.Guardian)
	if !ok {
		return errors.Wrap(errGdnNotFoundInCtx, "retrieving object from context")
	}

	var data guardian.UpdateGuardian
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGuardian")
	}
	if err := data.Validate(g); err != nil {
		return err
	}

	g, err := api.svc.Update(ctx.Request().Context(), g.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating guardian")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *guardianApi) destroy(ctx echo.Context) error {
	g, ok := ctx.Get("object").(guardian.Guardian)
	if !ok {
		return errors.Wrap(errGdnNotFoundInCtx, "retrieving object from context")
	}

	// admins cannot delete themselves
	ctxGdn, err := getContextGuardian(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context guardian")
	}
	if g.ID == ctxGdn.ID {
		return errHTTPForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), g.ID); err != nil {
		return errors.Wrap(err, "deleting guardian")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *guardianApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

type (
	LoginResponse struct {
		Token      string `json:"token"`
		GuardianID string `json:"parentId,omitempty"`
	}

	RegisterResponse struct {
		Token    string            `json:"token"`
		Guardian guardian.Guardian `json:"parent"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)
