package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core/player"
)

type playerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) player.Repository {
	return &playerRepository{db: db}
}

type playerRow struct {
	ID                   string       `db:"id"`
	GuardianID           string       `db:"guardian_id"`
	FullName             string       `db:"full_name"`
	Gender               string       `db:"gender"`
	DateOfBirth          time.Time    `db:"date_of_birth"`
	School               string       `db:"school"`
	Grade                int          `db:"grade"`
	HealthConcerns       string       `db:"health_concerns"`
	AAUNumber            string       `db:"aau_number"`
	Seasons              []byte       `db:"seasons"`
	RegistrationComplete sql.NullBool `db:"registration_complete"`
	PaymentComplete      sql.NullBool `db:"payment_complete"`
	CreatedAt            time.Time    `db:"created_at"`
	UpdatedAt            time.Time    `db:"updated_at"`
}

func (row playerRow) toPlayer() (player.Player, error) {
	p := player.Player{
		ID:             row.ID,
		GuardianID:     row.GuardianID,
		FullName:       row.FullName,
		Gender:         row.Gender,
		DateOfBirth:    row.DateOfBirth.UTC(),
		School:         row.School,
		Grade:          row.Grade,
		HealthConcerns: row.HealthConcerns,
		AAUNumber:      row.AAUNumber,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
	if err := unmarshalInto(row.Seasons, &p.Seasons); err != nil {
		return player.Player{}, err
	}
	if row.RegistrationComplete.Valid {
		p.RegistrationComplete = &row.RegistrationComplete.Bool
	}
	if row.PaymentComplete.Valid {
		p.PaymentComplete = &row.PaymentComplete.Bool
	}
	return p, nil
}

func toPlayers(rows []playerRow) ([]player.Player, error) {
	ps := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		p, err := row.toPlayer()
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}

const playerColumns = `id, guardian_id, full_name, gender, date_of_birth, school, grade,
	health_concerns, aau_number, seasons, registration_complete, payment_complete,
	created_at, updated_at`

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func (repo *playerRepository) CreatePlayer(ctx context.Context, p player.Player) (player.Player, error) {
	q := `
	INSERT INTO player (` + playerColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := repo.db.ExecContext(ctx, q,
		p.ID, p.GuardianID, p.FullName, p.Gender, p.DateOfBirth, p.School, p.Grade,
		p.HealthConcerns, p.AAUNumber, jsonb{p.Seasons},
		nullBool(p.RegistrationComplete), nullBool(p.PaymentComplete),
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return player.Player{}, errors.Wrap(err, "inserting player")
	}
	return p, nil
}

func (repo *playerRepository) GetPlayerByID(ctx context.Context, id string) (player.Player, error) {
	var row playerRow
	q := `SELECT ` + playerColumns + ` FROM player WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return player.Player{}, player.ErrNotFound
		}
		return player.Player{}, errors.Wrap(err, "getting player")
	}
	return row.toPlayer()
}

func (repo *playerRepository) QueryAllPlayers(ctx context.Context) ([]player.Player, error) {
	var rows []playerRow
	q := `SELECT ` + playerColumns + ` FROM player ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying players")
	}
	return toPlayers(rows)
}

func (repo *playerRepository) QueryPlayersByGuardian(ctx context.Context, guardianID string) ([]player.Player, error) {
	var rows []playerRow
	q := `SELECT ` + playerColumns + ` FROM player WHERE guardian_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q, guardianID); err != nil {
		return nil, errors.Wrap(err, "querying players by guardian")
	}
	return toPlayers(rows)
}

func (repo *playerRepository) UpdatePlayer(ctx context.Context, p player.Player) (player.Player, error) {
	q := `
	UPDATE player
	SET full_name = $2, gender = $3, date_of_birth = $4, school = $5, grade = $6,
		health_concerns = $7, aau_number = $8, seasons = $9,
		registration_complete = $10, payment_complete = $11, updated_at = $12
	WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		p.ID, p.FullName, p.Gender, p.DateOfBirth, p.School, p.Grade,
		p.HealthConcerns, p.AAUNumber, jsonb{p.Seasons},
		nullBool(p.RegistrationComplete), nullBool(p.PaymentComplete), p.UpdatedAt,
	)
	if err != nil {
		return player.Player{}, errors.Wrap(err, "updating player")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return player.Player{}, player.ErrNotFound
	}
	return p, nil
}

func (repo *playerRepository) DeletePlayersByID(ctx context.Context, ids ...string) error {
	q, args, err := sqlx.In(`DELETE FROM player WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting players")
	}
	return nil
}
