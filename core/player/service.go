package player

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/season"
)

var (
	// errors
	ErrNotFound     = errors.New("player not found")
	ErrSeasonExists = errors.New("player already registered for this season")
	ErrInvalidInput = errors.New("invalid input")
)

type (
	Repository interface {
		CreatePlayer(ctx context.Context, p Player) (Player, error)
		GetPlayerByID(ctx context.Context, id string) (Player, error)
		QueryAllPlayers(ctx context.Context) ([]Player, error)
		QueryPlayersByGuardian(ctx context.Context, guardianID string) ([]Player, error)
		UpdatePlayer(ctx context.Context, p Player) (Player, error)
		DeletePlayersByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Register(ctx context.Context, guardianID string, nps []NewPlayer, entry SeasonRegistration) ([]Player, error)
		GetByID(ctx context.Context, id string) (Player, error)
		QueryAll(ctx context.Context) ([]Player, error)
		QueryByGuardian(ctx context.Context, guardianID string) ([]Player, error)
		AppendSeason(ctx context.Context, id string, entry SeasonRegistration) (Player, error)
		// MarkPaid flips the (season, year) entry of each player to paid,
		// recording the package and the per-player amount in cents.
		MarkPaid(ctx context.Context, ids []string, s season.Season, year int, packageType string, amountCents int) ([]Player, error)
		Update(ctx context.Context, id string, up UpdatePlayer) (Player, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo   Repository
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, logger core.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (svc *service) Register(ctx context.Context, guardianID string, nps []NewPlayer, entry SeasonRegistration) ([]Player, error) {
	if entry.PaymentStatus == "" {
		entry.PaymentStatus = PaymentPending
	}
	now := time.Now().UTC()
	players := make([]Player, 0, len(nps))
	for _, np := range nps {
		p := Player{
			ID:             uuid.NewString(),
			GuardianID:     guardianID,
			FullName:       np.FullName,
			Gender:         np.Gender,
			DateOfBirth:    np.DOB,
			School:         np.School,
			Grade:          np.Grade,
			HealthConcerns: np.HealthConcerns,
			AAUNumber:      np.AAUNumber,
			Seasons:        []SeasonRegistration{entry},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		p, err := svc.repo.CreatePlayer(ctx, p)
		if err != nil {
			return players, errors.Wrap(err, "creating player")
		}
		players = append(players, p)
	}
	return players, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Player, error) {
	return svc.repo.GetPlayerByID(ctx, id)
}

func (svc *service) QueryAll(ctx context.Context) ([]Player, error) {
	return svc.repo.QueryAllPlayers(ctx)
}

func (svc *service) QueryByGuardian(ctx context.Context, guardianID string) ([]Player, error) {
	return svc.repo.QueryPlayersByGuardian(ctx, guardianID)
}

func (svc *service) AppendSeason(ctx context.Context, id string, entry SeasonRegistration) (Player, error) {
	p, err := svc.repo.GetPlayerByID(ctx, id)
	if err != nil {
		return Player{}, err
	}
	if p.RegisteredFor(entry.Season, entry.Year) {
		return Player{}, ErrSeasonExists
	}
	if entry.PaymentStatus == "" {
		entry.PaymentStatus = PaymentPending
	}
	p.Seasons = append(p.Seasons, entry)
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePlayer(ctx, p)
}

func (svc *service) MarkPaid(ctx context.Context, ids []string, s season.Season, year int, packageType string, amountCents int) ([]Player, error) {
	updated := make([]Player, 0, len(ids))
	for _, id := range ids {
		p, err := svc.repo.GetPlayerByID(ctx, id)
		if err != nil {
			return updated, err
		}
		var found bool
		for i, sr := range p.Seasons {
			if sr.Season == s && sr.Year == year {
				p.Seasons[i].PaymentStatus = PaymentPaid
				p.Seasons[i].PackageType = packageType
				p.Seasons[i].AmountPaid = amountCents
				found = true
				break
			}
		}
		if !found {
			// payment may land before the season entry on legacy records
			p.Seasons = append(p.Seasons, SeasonRegistration{
				Season:        s,
				Year:          year,
				PaymentStatus: PaymentPaid,
				PackageType:   packageType,
				AmountPaid:    amountCents,
			})
		}
		if p.PaymentComplete != nil {
			paid := true
			p.PaymentComplete = &paid
		}
		p.UpdatedAt = time.Now().UTC()
		p, err = svc.repo.UpdatePlayer(ctx, p)
		if err != nil {
			return updated, err
		}
		updated = append(updated, p)
	}
	return updated, nil
}

func (svc *service) Update(ctx context.Context, id string, up UpdatePlayer) (Player, error) {
	p, err := svc.repo.GetPlayerByID(ctx, id)
	if err != nil {
		return Player{}, err
	}
	if up.FullName != "" {
		p.FullName = up.FullName
	}
	if up.Gender != "" {
		p.Gender = up.Gender
	}
	if up.School != "" {
		p.School = up.School
	}
	if up.Grade != 0 {
		p.Grade = up.Grade
	}
	if up.HealthConcerns != "" {
		p.HealthConcerns = up.HealthConcerns
	}
	if up.AAUNumber != "" {
		p.AAUNumber = up.AAUNumber
	}
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePlayer(ctx, p)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeletePlayersByID(ctx, ids...)
}
