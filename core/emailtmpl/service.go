package emailtmpl

import (
	"context"
	"net/mail"
	"strconv"
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
	ErrNotFound     = errors.New("email template not found")
	ErrInactive     = errors.New("email template is not active")
	ErrInvalidInput = errors.New("invalid input")
)

type (
	Repository interface {
		CreateTemplate(ctx context.Context, t Template) (Template, error)
		QueryAllTemplates(ctx context.Context) ([]Template, error)
		GetTemplateByID(ctx context.Context, id string) (Template, error)
		UpdateTemplate(ctx context.Context, t Template) (Template, error)
		DeleteTemplatesByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, nt NewTemplate) (Template, error)
		QueryAll(ctx context.Context) ([]Template, error)
		GetByID(ctx context.Context, id string) (Template, error)
		Update(ctx context.Context, id string, ut UpdateTemplate) (Template, error)
		Delete(ctx context.Context, ids ...string) error
		// Send renders the template against guardian/player context and
		// dispatches it to the guardian's address.
		Send(ctx context.Context, st SendTemplate) error
	}

	service struct {
		repo        Repository
		guardianSvc guardian.Service
		playerSvc   player.Service
		mailSvc     core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, guardianSvc guardian.Service, playerSvc player.Service, mailSvc core.EmailService) Service {
	return &service{
		repo:        repo,
		guardianSvc: guardianSvc,
		playerSvc:   playerSvc,
		mailSvc:     mailSvc,
	}
}

func (svc *service) Create(ctx context.Context, nt NewTemplate) (Template, error) {
	now := time.Now().UTC()
	t := Template{
		ID:        uuid.NewString(),
		Title:     nt.Title,
		Subject:   nt.Subject,
		HTML:      nt.HTML,
		Active:    nt.Active,
		Category:  nt.Category,
		Tags:      nt.Tags,
		Variables: nt.Variables,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateTemplate(ctx, t)
}

func (svc *service) QueryAll(ctx context.Context) ([]Template, error) {
	return svc.repo.QueryAllTemplates(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Template, error) {
	return svc.repo.GetTemplateByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, ut UpdateTemplate) (Template, error) {
	t, err := svc.repo.GetTemplateByID(ctx, id)
	if err != nil {
		return Template{}, err
	}
	if ut.Title != "" {
		t.Title = ut.Title
	}
	if ut.Subject != "" {
		t.Subject = ut.Subject
	}
	if ut.HTML != "" {
		t.HTML = ut.HTML
	}
	if ut.Active != nil {
		t.Active = *ut.Active
	}
	if ut.Category != "" {
		t.Category = ut.Category
	}
	if ut.Tags != nil {
		t.Tags = ut.Tags
	}
	if ut.Variables != nil {
		t.Variables = ut.Variables
	}
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTemplate(ctx, t)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTemplatesByID(ctx, ids...)
}

func (svc *service) Send(ctx context.Context, st SendTemplate) error {
	t, err := svc.repo.GetTemplateByID(ctx, st.TemplateID)
	if err != nil {
		return err
	}
	if !t.Active {
		return ErrInactive
	}
	g, err := svc.guardianSvc.GetByID(ctx, st.GuardianID)
	if err != nil {
		return errors.Wrap(err, "finding guardian")
	}

	vars := map[string]string{
		"parentName": g.FullName,
		"season":     string(season.Current()),
		"year":       strconv.Itoa(time.Now().Year()),
	}
	if st.PlayerID != "" {
		p, err := svc.playerSvc.GetByID(ctx, st.PlayerID)
		if err != nil {
			return errors.Wrap(err, "finding player")
		}
		vars["playerName"] = p.FullName
		vars["grade"] = strconv.Itoa(p.Grade)
	}

	subject, html := t.Render(vars)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Name: g.FullName, Address: g.Email}},
		Subject:     subject,
		HTMLContent: html,
		TextContent: subject,
	})
	return nil
}
