package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core/emailtmpl"
)

type emailTemplateRepository struct {
	db *sqlx.DB
}

func NewEmailTemplateRepository(db *sqlx.DB) emailtmpl.Repository {
	return &emailTemplateRepository{db: db}
}

type emailTemplateRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Subject   string    `db:"subject"`
	HTML      string    `db:"html"`
	Active    bool      `db:"active"`
	Category  string    `db:"category"`
	Tags      []byte    `db:"tags"`
	Variables []byte    `db:"variables"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row emailTemplateRow) toTemplate() (emailtmpl.Template, error) {
	t := emailtmpl.Template{
		ID:        row.ID,
		Title:     row.Title,
		Subject:   row.Subject,
		HTML:      row.HTML,
		Active:    row.Active,
		Category:  row.Category,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if err := unmarshalInto(row.Tags, &t.Tags); err != nil {
		return emailtmpl.Template{}, err
	}
	if err := unmarshalInto(row.Variables, &t.Variables); err != nil {
		return emailtmpl.Template{}, err
	}
	return t, nil
}

const emailTemplateColumns = `id, title, subject, html, active, category, tags, variables,
	created_at, updated_at`

func (repo *emailTemplateRepository) CreateTemplate(ctx context.Context, t emailtmpl.Template) (emailtmpl.Template, error) {
	q := `
	INSERT INTO email_template (` + emailTemplateColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, q,
		t.ID, t.Title, t.Subject, t.HTML, t.Active, t.Category,
		jsonb{t.Tags}, jsonb{t.Variables}, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return emailtmpl.Template{}, errors.Wrap(err, "inserting email template")
	}
	return t, nil
}

func (repo *emailTemplateRepository) QueryAllTemplates(ctx context.Context) ([]emailtmpl.Template, error) {
	var rows []emailTemplateRow
	q := `SELECT ` + emailTemplateColumns + ` FROM email_template ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying email templates")
	}
	ts := make([]emailtmpl.Template, 0, len(rows))
	for _, row := range rows {
		t, err := row.toTemplate()
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, nil
}

func (repo *emailTemplateRepository) GetTemplateByID(ctx context.Context, id string) (emailtmpl.Template, error) {
	var row emailTemplateRow
	q := `SELECT ` + emailTemplateColumns + ` FROM email_template WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return emailtmpl.Template{}, emailtmpl.ErrNotFound
		}
		return emailtmpl.Template{}, errors.Wrap(err, "getting email template")
	}
	return row.toTemplate()
}

func (repo *emailTemplateRepository) UpdateTemplate(ctx context.Context, t emailtmpl.Template) (emailtmpl.Template, error) {
	q := `
	UPDATE email_template
	SET title = $2, subject = $3, html = $4, active = $5, category = $6,
		tags = $7, variables = $8, updated_at = $9
	WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		t.ID, t.Title, t.Subject, t.HTML, t.Active, t.Category,
		jsonb{t.Tags}, jsonb{t.Variables}, t.UpdatedAt,
	)
	if err != nil {
		return emailtmpl.Template{}, errors.Wrap(err, "updating email template")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return emailtmpl.Template{}, emailtmpl.ErrNotFound
	}
	return t, nil
}

func (repo *emailTemplateRepository) DeleteTemplatesByID(ctx context.Context, ids ...string) error {
	q, args, err := sqlx.In(`DELETE FROM email_template WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting email templates")
	}
	return nil
}
