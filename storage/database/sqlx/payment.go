package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core/payment"
	"github.com/fastbreakhq/fastbreak/core/season"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) payment.Repository {
	return &paymentRepository{db: db}
}

type paymentRow struct {
	ID          string    `db:"id"`
	GuardianID  string    `db:"guardian_id"`
	PlayerIDs   []byte    `db:"player_ids"`
	Season      string    `db:"season"`
	Year        int       `db:"year"`
	PackageType string    `db:"package_type"`
	AmountCents int       `db:"amount_cents"`
	BuyerEmail  string    `db:"buyer_email"`
	Card        []byte    `db:"card"`
	ProcessorID string    `db:"processor_id"`
	ReceiptURL  string    `db:"receipt_url"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row paymentRow) toRecord() (payment.Record, error) {
	rec := payment.Record{
		ID:          row.ID,
		GuardianID:  row.GuardianID,
		Season:      season.Season(row.Season),
		Year:        row.Year,
		PackageType: row.PackageType,
		AmountCents: row.AmountCents,
		BuyerEmail:  row.BuyerEmail,
		ProcessorID: row.ProcessorID,
		ReceiptURL:  row.ReceiptURL,
		CreatedAt:   row.CreatedAt.UTC(),
	}
	if err := unmarshalInto(row.PlayerIDs, &rec.PlayerIDs); err != nil {
		return payment.Record{}, err
	}
	if err := unmarshalInto(row.Card, &rec.Card); err != nil {
		return payment.Record{}, err
	}
	return rec, nil
}

const paymentColumns = `id, guardian_id, player_ids, season, year, package_type, amount_cents,
	buyer_email, card, processor_id, receipt_url, created_at`

func (repo *paymentRepository) CreatePayment(ctx context.Context, rec payment.Record) (payment.Record, error) {
	q := `
	INSERT INTO payment (` + paymentColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := repo.db.ExecContext(ctx, q,
		rec.ID, rec.GuardianID, jsonb{rec.PlayerIDs}, string(rec.Season), rec.Year,
		rec.PackageType, rec.AmountCents, rec.BuyerEmail, jsonb{rec.Card},
		rec.ProcessorID, rec.ReceiptURL, rec.CreatedAt,
	)
	if err != nil {
		return payment.Record{}, errors.Wrap(err, "inserting payment")
	}
	return rec, nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id string) (payment.Record, error) {
	var row paymentRow
	q := `SELECT ` + paymentColumns + ` FROM payment WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payment.Record{}, payment.ErrNotFound
		}
		return payment.Record{}, errors.Wrap(err, "getting payment")
	}
	return row.toRecord()
}

func (repo *paymentRepository) QueryPaymentsByGuardian(ctx context.Context, guardianID string) ([]payment.Record, error) {
	var rows []paymentRow
	q := `SELECT ` + paymentColumns + ` FROM payment WHERE guardian_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q, guardianID); err != nil {
		return nil, errors.Wrap(err, "querying payments by guardian")
	}
	recs := make([]payment.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
