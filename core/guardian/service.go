package guardian

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core"
)

var (
	// errors
	ErrNotFound     = errors.New("guardian not found")
	ErrEmailExists  = errors.New("an account with this email already exists")
	ErrInvalidInput = errors.New("invalid input")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excluded ...Guardian) error
		CreateGuardian(ctx context.Context, g Guardian) (Guardian, error)
		QueryAllGuardians(ctx context.Context) ([]Guardian, error)
		GetGuardianByID(ctx context.Context, id string) (Guardian, error)
		GetGuardianByEmail(ctx context.Context, email string) (Guardian, error)
		// FilterGuardians applies AND on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on name or email.
		FilterGuardians(ctx context.Context, filter QueryFilter) ([]Guardian, error)
		UpdateGuardian(ctx context.Context, g Guardian) (Guardian, error)
		DeleteGuardiansByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		CheckUniqueness(email string, excluded ...Guardian) error
		Create(ctx context.Context, ng NewGuardian) (Guardian, error)
		QueryAll(ctx context.Context) ([]Guardian, error)
		GetByID(ctx context.Context, id string) (Guardian, error)
		GetByEmail(ctx context.Context, email string) (Guardian, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Guardian, error)
		Update(ctx context.Context, id string, ug UpdateGuardian) (Guardian, error)
		TrackSeason(ctx context.Context, id string, sy SeasonYear) (Guardian, error)
		SetLastLogin(ctx context.Context, g Guardian) (Guardian, error)
		Delete(ctx context.Context, ids ...string) error
		RequestPasswordReset(ctx context.Context, email string) error
		ConfirmPasswordReset(ctx context.Context, cp ConfirmPasswordReset) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config, logger core.Logger) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
		logger:  logger,
	}
}

func (svc *service) CheckUniqueness(email string, excluded ...Guardian) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, excluded...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ng NewGuardian) (Guardian, error) {
	now := time.Now().UTC()
	g := Guardian{
		ID:                  uuid.NewString(),
		Email:               ng.Email,
		FullName:            ng.FullName,
		Phone:               ng.Phone,
		Address:             ng.ParsedAddress,
		Relationship:        ng.Relationship,
		IsCoach:             ng.IsCoach,
		AAUNumber:           ng.AAUNumber,
		AdditionalGuardians: ng.AdditionalGuardians,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := g.SetPassword(ng.Password); err != nil {
		return Guardian{}, errors.Wrap(err, "setting password")
	}
	g, err := svc.repo.CreateGuardian(ctx, g)
	if err != nil {
		return Guardian{}, err
	}

	// welcome email is best-effort; a send failure never blocks the account
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: g.FullName, Address: g.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "welcome",
		TemplateData: struct{ FullName string }{g.FullName},
	})
	return g, nil
}

func (svc *service) QueryAll(ctx context.Context) ([]Guardian, error) {
	return svc.repo.QueryAllGuardians(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Guardian, error) {
	return svc.repo.GetGuardianByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (Guardian, error) {
	return svc.repo.GetGuardianByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Guardian, error) {
	filter.Clean()
	return svc.repo.FilterGuardians(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id string, ug UpdateGuardian) (Guardian, error) {
	g, err := svc.repo.GetGuardianByID(ctx, id)
	if err != nil {
		return Guardian{}, err
	}
	g.FullName = ug.FullName
	g.Phone = ug.Phone
	g.Address = ug.ParsedAddress
	if ug.Relationship != "" {
		g.Relationship = ug.Relationship
	}
	if ug.AAUNumber != "" {
		g.AAUNumber = ug.AAUNumber
	}
	if ug.AdditionalGuardians != nil {
		g.AdditionalGuardians = ug.AdditionalGuardians
	}
	if ug.DismissNotice != "" {
		g.DismissedNotices = appendUnique(g.DismissedNotices, ug.DismissNotice)
	}
	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGuardian(ctx, g)
}

func (svc *service) TrackSeason(ctx context.Context, id string, sy SeasonYear) (Guardian, error) {
	g, err := svc.repo.GetGuardianByID(ctx, id)
	if err != nil {
		return Guardian{}, err
	}
	if g.HasSeason(sy.Season, sy.Year) {
		return g, nil
	}
	g.Seasons = append(g.Seasons, sy)
	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGuardian(ctx, g)
}

func (svc *service) SetLastLogin(ctx context.Context, g Guardian) (Guardian, error) {
	g.LastLogin = time.Now().UTC()
	return svc.repo.UpdateGuardian(ctx, g)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteGuardiansByID(ctx, ids...)
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	g, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrNotFound {
			// do not leak which emails have accounts
			return nil
		}
		return err
	}
	token, err := MakeToken(svc.conf, g)
	if err != nil {
		return errors.Wrap(err, "making reset token")
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: g.FullName, Address: g.Email}},
		Subject:      "Password reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			FullName string
			UID      string
			Token    string
		}{g.FullName, EncodeUID(g), token},
	})
	return nil
}

func (svc *service) ConfirmPasswordReset(ctx context.Context, cp ConfirmPasswordReset) error {
	id, err := decodeUID(cp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken, core.FieldError{Field: "uid", Error: errInvalidToken.Error()})
	}
	g, err := svc.repo.GetGuardianByID(ctx, id)
	if err != nil {
		return err
	}
	if err = verifyToken(svc.conf, g, cp.Token); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}
	if passwordTooSimilar(cp.Password, g.FullName, g.Email) {
		return core.NewValidationError(ErrInvalidInput,
			core.FieldError{Field: "password", Error: "password cannot be similar to account details"})
	}
	if err = g.SetPassword(cp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	g.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateGuardian(ctx, g)
	return err
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
