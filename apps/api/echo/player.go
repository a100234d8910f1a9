package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/guardian"
	"github.com/fastbreakhq/fastbreak/core/player"
	"github.com/fastbreakhq/fastbreak/core/season"
)

type playerApi struct {
	conf        *core.Config
	svc         player.Service
	guardianSvc guardian.Service
}

func registerPlayerAPI(g *echo.Group, jwt echo.MiddlewareFunc, conf *core.Config, svc player.Service, guardianSvc guardian.Service) {
	api := playerApi{conf: conf, svc: svc, guardianSvc: guardianSvc}

	pg := g.Group("/players", jwt)
	pg.GET("", api.query)
	pg.POST("/register", api.register)
	pg.POST("/update-seasons", api.updateSeasons)

	dg := pg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.POST("/seasons", api.appendSeason)
	dg.DELETE("", api.destroy, adminMiddleware())
}

type (
	// RegisterPlayersRequest enrolls one or more players for an account and
	// a (season, year) pair in a single submission.
	RegisterPlayersRequest struct {
		GuardianID string             `json:"parentId"`
		Season     season.Season      `json:"season"`
		Year       int                `json:"year"`
		Players    []player.NewPlayer `json:"players" validate:"required,min=1"`
	}

	// SeasonEntryRequest appends a pending season entry to a player.
	SeasonEntryRequest struct {
		Season      season.Season `json:"season" validate:"required"`
		Year        int           `json:"year" validate:"required"`
		PackageType string        `json:"packageType" validate:"omitempty,oneof=1 2 3"`
	}

	// UpdateSeasonsRequest appends pending entries to several players at once,
	// the step-one path for an account with players already on file.
	UpdateSeasonsRequest struct {
		PlayerIDs   []string      `json:"playerIds" validate:"required,min=1"`
		Season      season.Season `json:"season" validate:"required"`
		Year        int           `json:"year" validate:"required"`
		PackageType string        `json:"packageType" validate:"omitempty,oneof=1 2 3"`
	}
)

// Handlers

func (api *playerApi) query(ctx echo.Context) error {
	ctxGdn, err := getContextGuardian(ctx, api.guardianSvc)
	if err != nil {
		return errors.Wrap(err, "getting context guardian")
	}

	var ps []player.Player
	if ctxGdn.IsAdmin && ctx.QueryParam("all") == "true" {
		ps, err = api.svc.QueryAll(ctx.Request().Context())
	} else {
		ps, err = api.svc.QueryByGuardian(ctx.Request().Context(), ctxGdn.ID)
	}
	if err != nil {
		return errors.Wrap(err, "querying players")
	}
	if ps == nil {
		ps = []player.Player{}
	}
	return ctx.JSON(http.StatusOK, ps)
}

func (api *playerApi) register(ctx echo.Context) error {
	var data RegisterPlayersRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterPlayersRequest")
	}

	ctxGdn, err := getContextGuardian(ctx, api.guardianSvc)
	if err != nil {
		return errors.Wrap(err, "getting context guardian")
	}
	// non-admins can only enroll their own players
	if data.GuardianID == "" || !ctxGdn.IsAdmin {
		data.GuardianID = ctxGdn.ID
	}

	if len(data.Players) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "players", Error: "at least one player is required"})
	}
	var flds []core.FieldError
	for i := range data.Players {
		flds = append(flds, data.Players[i].FieldErrors()...)
	}
	if len(flds) > 0 {
		return core.NewValidationError(player.ErrInvalidInput, flds...)
	}

	s, year := data.Season, data.Year
	if s == "" {
		s, year = season.NextAt(time.Now())
	}

	entry := player.SeasonRegistration{Season: s, Year: year, PaymentStatus: player.PaymentPending}
	ps, err := api.svc.Register(ctx.Request().Context(), data.GuardianID, data.Players, entry)
	if err != nil {
		return errors.Wrap(err, "registering players")
	}

	if _, err = api.guardianSvc.TrackSeason(ctx.Request().Context(), data.GuardianID, guardian.SeasonYear{Season: s, Year: year}); err != nil {
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "tracking season"))
	}
	return ctx.JSON(http.StatusCreated, ps)
}

func (api *playerApi) retrieve(ctx echo.Context) error {
	p, err := api.getOwnedPlayer(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *playerApi) update(ctx echo.Context) error {
	p, err := api.getOwnedPlayer(ctx)
	if err != nil {
		return err
	}

	var data player.UpdatePlayer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePlayer")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err = api.svc.Update(ctx.Request().Context(), p.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating player")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *playerApi) appendSeason(ctx echo.Context) error {
	p, err := api.getOwnedPlayer(ctx)
	if err != nil {
		return err
	}

	var data SeasonEntryRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SeasonEntryRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	entry := player.SeasonRegistration{
		Season:        data.Season,
		Year:          data.Year,
		PaymentStatus: player.PaymentPending,
		PackageType:   data.PackageType,
	}
	p, err = api.svc.AppendSeason(ctx.Request().Context(), p.ID, entry)
	if err != nil {
		if errors.Cause(err) == player.ErrSeasonExists {
			return core.NewValidationError(nil, core.FieldError{Field: "season", Error: err.Error()})
		}
		return errors.Wrap(err, "appending season")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *playerApi) updateSeasons(ctx echo.Context) error {
	var data UpdateSeasonsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSeasonsRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	ctxGdn, err := getContextGuardian(ctx, api.guardianSvc)
	if err != nil {
		return errors.Wrap(err, "getting context guardian")
	}

	entry := player.SeasonRegistration{
		Season:        data.Season,
		Year:          data.Year,
		PaymentStatus: player.PaymentPending,
		PackageType:   data.PackageType,
	}
	ps := make([]player.Player, 0, len(data.PlayerIDs))
	for _, id := range data.PlayerIDs {
		p, err := api.svc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			return errors.Wrap(err, "finding player")
		}
		if p.GuardianID != ctxGdn.ID && !ctxGdn.IsAdmin {
			return errHTTPNotFound
		}
		p, err = api.svc.AppendSeason(ctx.Request().Context(), id, entry)
		if err != nil {
			if errors.Cause(err) == player.ErrSeasonExists {
				return core.NewValidationError(nil, core.FieldError{Field: "season", Error: err.Error()})
			}
			return errors.Wrap(err, "appending season")
		}
		ps = append(ps, p)
	}

	if _, err = api.guardianSvc.TrackSeason(ctx.Request().Context(), ctxGdn.ID, guardian.SeasonYear{Season: data.Season, Year: data.Year}); err != nil {
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "tracking season"))
	}
	return ctx.JSON(http.StatusOK, ps)
}

func (api *playerApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting player")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getOwnedPlayer loads the :id player and hides other families' players from
// non-admin accounts.
func (api *playerApi) getOwnedPlayer(ctx echo.Context) (player.Player, error) {
	ctxGdn, err := getContextGuardian(ctx, api.guardianSvc)
	if err != nil {
		return player.Player{}, errors.Wrap(err, "getting context guardian")
	}

	p, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == player.ErrNotFound {
			return player.Player{}, errHTTPNotFound
		}
		return player.Player{}, errors.Wrap(err, "finding player")
	}
	if p.GuardianID != ctxGdn.ID && !ctxGdn.IsAdmin {
		return player.Player{}, errHTTPNotFound
	}
	return p, nil
}
