package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/guardian"
	"github.com/fastbreakhq/fastbreak/core/player"
	"github.com/fastbreakhq/fastbreak/core/season"
)

var (
	// errors
	ErrNotFound      = errors.New("payment not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrChargeFailed  = errors.New("payment was declined")
	ErrUnknownPlayer = errors.New("player does not belong to this account")
)

type (
	// ChargeRequest is what gets submitted to the card processor.
	ChargeRequest struct {
		SourceID    string
		AmountCents int
		Currency    string
		BuyerEmail  string
		ReferenceID string
		Note        string
	}

	// ChargeResult reports a successful charge.
	ChargeResult struct {
		PaymentID  string
		ReceiptURL string
	}

	// CardProcessor is the server side of the tokenized card flow: it turns a
	// single-use token from the widget into a completed charge.
	CardProcessor interface {
		Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
	}

	Repository interface {
		CreatePayment(ctx context.Context, rec Record) (Record, error)
		GetPaymentByID(ctx context.Context, id string) (Record, error)
		QueryPaymentsByGuardian(ctx context.Context, guardianID string) ([]Record, error)
	}

	Service interface {
		// Capture charges a tokenized card for the given players and package,
		// marks the players paid for the (season, year) pair and records the
		// payment. The amount is recomputed server-side; on processor failure
		// nothing is marked paid and no record is stored.
		Capture(ctx context.Context, cp CapturePayment) (Record, error)
		GetByID(ctx context.Context, id string) (Record, error)
		QueryByGuardian(ctx context.Context, guardianID string) ([]Record, error)
	}

	service struct {
		repo        Repository
		processor   CardProcessor
		playerSvc   player.Service
		guardianSvc guardian.Service
		logger      core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	processor CardProcessor,
	playerSvc player.Service,
	guardianSvc guardian.Service,
	logger core.Logger,
) Service {
	return &service{
		repo:        repo,
		processor:   processor,
		playerSvc:   playerSvc,
		guardianSvc: guardianSvc,
		logger:      logger,
	}
}

func (svc *service) Capture(ctx context.Context, cp CapturePayment) (Record, error) {
	if cp.Season == "" {
		cp.Season = season.Current()
	}
	if cp.Year == 0 {
		cp.Year = time.Now().Year()
	}

	// never trust a client-side total
	perPlayer, _ := PriceCents(cp.PackageType)
	total, ok := TotalCents(cp.PackageType, len(cp.PlayerIDs))
	if !ok {
		return Record{}, core.NewValidationError(ErrInvalidInput,
			core.FieldError{Field: "packageType", Error: "unknown package"})
	}

	// all players must belong to the paying guardian
	for _, id := range cp.PlayerIDs {
		p, err := svc.playerSvc.GetByID(ctx, id)
		if err != nil {
			return Record{}, err
		}
		if p.GuardianID != cp.GuardianID {
			return Record{}, ErrUnknownPlayer
		}
	}

	refID := uuid.NewString()
	result, err := svc.processor.Charge(ctx, ChargeRequest{
		SourceID:    cp.SourceID,
		AmountCents: total,
		Currency:    "USD",
		BuyerEmail:  cp.BuyerEmail,
		ReferenceID: refID,
		Note:        "Camp registration - " + string(cp.Season),
	})
	if err != nil {
		return Record{}, errors.Wrap(ErrChargeFailed, err.Error())
	}

	if _, err = svc.playerSvc.MarkPaid(ctx, cp.PlayerIDs, cp.Season, cp.Year, cp.PackageType, perPlayer); err != nil {
		// the charge went through; surface the inconsistency loudly
		svc.logger.Error("payment captured but players not marked paid", err,
			map[string]interface{}{"paymentId": result.PaymentID, "guardianId": cp.GuardianID})
		return Record{}, errors.Wrap(err, "marking players paid")
	}
	if _, err = svc.guardianSvc.TrackSeason(ctx, cp.GuardianID, guardian.SeasonYear{Season: cp.Season, Year: cp.Year}); err != nil {
		svc.logger.Warn("tracking guardian season failed", err)
	}

	rec := Record{
		ID:          refID,
		GuardianID:  cp.GuardianID,
		PlayerIDs:   cp.PlayerIDs,
		Season:      cp.Season,
		Year:        cp.Year,
		PackageType: cp.PackageType,
		AmountCents: total,
		BuyerEmail:  cp.BuyerEmail,
		Card:        cp.Card,
		ProcessorID: result.PaymentID,
		ReceiptURL:  result.ReceiptURL,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreatePayment(ctx, rec)
}

func (svc *service) GetByID(ctx context.Context, id string) (Record, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *service) QueryByGuardian(ctx context.Context, guardianID string) ([]Record, error) {
	return svc.repo.QueryPaymentsByGuardian(ctx, guardianID)
}
