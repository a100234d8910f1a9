package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core/address"
	"github.com/fastbreakhq/fastbreak/core/guardian"
)

type guardianRepository struct {
	db *sqlx.DB
}

func NewGuardianRepository(db *sqlx.DB) guardian.Repository {
	return &guardianRepository{db: db}
}

type guardianRow struct {
	ID                  string    `db:"id"`
	Email               string    `db:"email"`
	FullName            string    `db:"full_name"`
	Phone               string    `db:"phone"`
	Address             []byte    `db:"address"`
	Relationship        string    `db:"relationship"`
	IsAdmin             bool      `db:"is_admin"`
	IsCoach             bool      `db:"is_coach"`
	AAUNumber           string    `db:"aau_number"`
	AdditionalGuardians []byte    `db:"additional_guardians"`
	Seasons             []byte    `db:"seasons"`
	DismissedNotices    []byte    `db:"dismissed_notices"`
	PasswordHash        []byte    `db:"password_hash"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
	LastLogin           time.Time `db:"last_login"`
}

func (row guardianRow) toGuardian() (guardian.Guardian, error) {
	g := guardian.Guardian{
		ID:           row.ID,
		Email:        row.Email,
		FullName:     row.FullName,
		Phone:        row.Phone,
		Relationship: row.Relationship,
		IsAdmin:      row.IsAdmin,
		IsCoach:      row.IsCoach,
		AAUNumber:    row.AAUNumber,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		LastLogin:    row.LastLogin.UTC(),
	}
	var addr address.Address
	if err := unmarshalInto(row.Address, &addr); err != nil {
		return guardian.Guardian{}, err
	}
	g.Address = addr
	if err := unmarshalInto(row.AdditionalGuardians, &g.AdditionalGuardians); err != nil {
		return guardian.Guardian{}, err
	}
	if err := unmarshalInto(row.Seasons, &g.Seasons); err != nil {
		return guardian.Guardian{}, err
	}
	if err := unmarshalInto(row.DismissedNotices, &g.DismissedNotices); err != nil {
		return guardian.Guardian{}, err
	}
	return g, nil
}

func toGuardians(rows []guardianRow) ([]guardian.Guardian, error) {
	gs := make([]guardian.Guardian, 0, len(rows))
	for _, row := range rows {
		g, err := row.toGuardian()
		if err != nil {
			return nil, err
		}
		gs = append(gs, g)
	}
	return gs, nil
}

const guardianColumns = `id, email, full_name, phone, address, relationship, is_admin, is_coach,
	aau_number, additional_guardians, seasons, dismissed_notices, password_hash,
	created_at, updated_at, last_login`

func (repo *guardianRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...guardian.Guardian) error {
	q := `SELECT COUNT(*) FROM guardian WHERE LOWER(email) = LOWER($1)`
	args := []interface{}{email}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, g := range excluded {
			ids = append(ids, g.ID)
		}
		q += ` AND NOT (id = ANY($2))`
		args = append(args, pq.Array(ids))
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return guardian.ErrEmailExists
	}
	return nil
}

func (repo *guardianRepository) CreateGuardian(ctx context.Context, g guardian.Guardian) (guardian.Guardian, error) {
	q := `
	INSERT INTO guardian (` + guardianColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := repo.db.ExecContext(ctx, q,
		g.ID, g.Email, g.FullName, g.Phone, jsonb{g.Address}, g.Relationship, g.IsAdmin, g.IsCoach,
		g.AAUNumber, jsonb{g.AdditionalGuardians}, jsonb{g.Seasons}, jsonb{g.DismissedNotices},
		g.PasswordHash, g.CreatedAt, g.UpdatedAt, g.LastLogin,
	)
	if err != nil {
		return guardian.Guardian{}, errors.Wrap(err, "inserting guardian")
	}
	return g, nil
}

func (repo *guardianRepository) QueryAllGuardians(ctx context.Context) ([]guardian.Guardian, error) {
	var rows []guardianRow
	q := `SELECT ` + guardianColumns + ` FROM guardian ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying guardians")
	}
	return toGuardians(rows)
}

func (repo *guardianRepository) GetGuardianByID(ctx context.Context, id string) (guardian.Guardian, error) {
	var row guardianRow
	q := `SELECT ` + guardianColumns + ` FROM guardian WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return guardian.Guardian{}, guardian.ErrNotFound
		}
		return guardian.Guardian{}, errors.Wrap(err, "getting guardian")
	}
	return row.toGuardian()
}

func (repo *guardianRepository) GetGuardianByEmail(ctx context.Context, email string) (guardian.Guardian, error) {
	var row guardianRow
	q := `SELECT ` + guardianColumns + ` FROM guardian WHERE LOWER(email) = LOWER($1)`
	if err := repo.db.GetContext(ctx, &row, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return guardian.Guardian{}, guardian.ErrNotFound
		}
		return guardian.Guardian{}, errors.Wrap(err, "getting guardian by email")
	}
	return row.toGuardian()
}

func (repo *guardianRepository) FilterGuardians(ctx context.Context, filter guardian.QueryFilter) ([]guardian.Guardian, error) {
	q := `SELECT ` + guardianColumns + ` FROM guardian WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if s := filter.Search; s != "" {
		p := arg("%" + s + "%")
		q += ` AND (full_name ILIKE ` + p + ` OR email ILIKE ` + p + `)`
	}
	if filter.IsCoach != nil {
		q += ` AND is_coach = ` + arg(*filter.IsCoach)
	}
	if filter.IsAdmin != nil {
		q += ` AND is_admin = ` + arg(*filter.IsAdmin)
	}
	q += ` ORDER BY created_at`

	var rows []guardianRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering guardians")
	}
	return toGuardians(rows)
}

func (repo *guardianRepository) UpdateGuardian(ctx context.Context, g guardian.Guardian) (guardian.Guardian, error) {
	q := `
	UPDATE guardian
	SET email = $2, full_name = $3, phone = $4, address = $5, relationship = $6,
		is_admin = $7, is_coach = $8, aau_number = $9, additional_guardians = $10,
		seasons = $11, dismissed_notices = $12, password_hash = $13,
		updated_at = $14, last_login = $15
	WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		g.ID, g.Email, g.FullName, g.Phone, jsonb{g.Address}, g.Relationship,
		g.IsAdmin, g.IsCoach, g.AAUNumber, jsonb{g.AdditionalGuardians},
		jsonb{g.Seasons}, jsonb{g.DismissedNotices}, g.PasswordHash,
		g.UpdatedAt, g.LastLogin,
	)
	if err != nil {
		return guardian.Guardian{}, errors.Wrap(err, "updating guardian")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return guardian.Guardian{}, guardian.ErrNotFound
	}
	return g, nil
}

func (repo *guardianRepository) DeleteGuardiansByID(ctx context.Context, ids ...string) error {
	q, args, err := sqlx.In(`DELETE FROM guardian WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting guardians")
	}
	return nil
}
