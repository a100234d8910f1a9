package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/guardian"
	"github.com/fastbreakhq/fastbreak/core/payment"
	"github.com/fastbreakhq/fastbreak/core/player"
	"github.com/fastbreakhq/fastbreak/core/season"
)

type paymentApi struct {
	conf        *core.Config
	svc         payment.Service
	guardianSvc guardian.Service
	playerSvc   player.Service
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, conf *core.Config, svc payment.Service, guardianSvc guardian.Service, playerSvc player.Service) {
	api := paymentApi{conf: conf, svc: svc, guardianSvc: guardianSvc, playerSvc: playerSvc}

	pg := g.Group("/payments", jwt)
	pg.POST("/square", api.capture)
	pg.POST("/update-players", api.updatePlayers, adminMiddleware())
	pg.GET("/guardian/:id", api.queryByGuardian)
	pg.GET("/:id", api.retrieve)
}

// UpdatePlayersRequest marks players paid out of band, the admin path for
// checks and cash payments taken at the gym.
type UpdatePlayersRequest struct {
	PlayerIDs   []string      `json:"playerIds" validate:"required,min=1"`
	Season      season.Season `json:"season" validate:"required"`
	Year        int           `json:"year" validate:"required"`
	PackageType string        `json:"packageType" validate:"required,oneof=1 2 3"`
}

// Handlers

func (api *paymentApi) capture(ctx echo.Context) error {
	var data payment.CapturePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CapturePayment")
	}

	ctxGdn, err := getContextGuardian(ctx, api.guardianSvc)
	if err != nil {
		return errors.Wrap(err, "getting context guardian")
	}
	// non-admins can only pay for their own account
	if data.GuardianID == "" || !ctxGdn.IsAdmin {
		data.GuardianID = ctxGdn.ID
	}

	if err := data.Validate(); err != nil {
		return err
	}

	rec, err := api.svc.Capture(ctx.Request().Context(), data)
	if err != nil {
		switch errors.Cause(err) {
		case payment.ErrChargeFailed:
			return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
		case payment.ErrUnknownPlayer:
			return core.NewValidationError(nil, core.FieldError{Field: "playerIds", Error: err.Error()})
		}
		return errors.Wrap(err, "capturing payment")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *paymentApi) updatePlayers(ctx echo.Context) error {
	var data UpdatePlayersRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePlayersRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	price, ok := payment.PriceCents(data.PackageType)
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "packageType", Error: "unknown package"})
	}

	ps, err := api.playerSvc.MarkPaid(ctx.Request().Context(), data.PlayerIDs, data.Season, data.Year, data.PackageType, price)
	if err != nil {
		return errors.Wrap(err, "marking players paid")
	}
	return ctx.JSON(http.StatusOK, ps)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	ctxGdn, err := getContextGuardian(ctx, api.guardianSvc)
	if err != nil {
		return errors.Wrap(err, "getting context guardian")
	}

	rec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == payment.ErrNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "finding payment")
	}
	if rec.GuardianID != ctxGdn.ID && !ctxGdn.IsAdmin {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *paymentApi) queryByGuardian(ctx echo.Context) error {
	ctxGdn, err := getContextGuardian(ctx, api.guardianSvc)
	if err != nil {
		return errors.Wrap(err, "getting context guardian")
	}
	if ctx.Param("id") != ctxGdn.ID && !ctxGdn.IsAdmin {
		return errHTTPNotFound
	}

	recs, err := api.svc.QueryByGuardian(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if recs == nil {
		recs = []payment.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}
