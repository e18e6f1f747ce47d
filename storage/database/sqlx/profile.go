package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasahub/darasa/core/profile"
)

type profileRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	Age  int    `db:"age"`
	Role string `db:"role"`
}

type profileRepository struct {
	db *sqlx.DB
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *sqlx.DB) profile.Repository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) GetProfile(ctx context.Context, identityID string) (profile.Profile, error) {
	var row profileRow
	err := repo.db.GetContext(ctx, &row, `SELECT id, name, age, role FROM users WHERE id = $1`, identityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, errors.Wrap(err, "sqlxrepos.GetProfile")
	}
	return profile.Profile{Name: row.Name, Age: row.Age, Role: row.Role}, nil
}

func (repo *profileRepository) SetProfile(ctx context.Context, identityID string, p profile.Profile) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO users (id, name, age, role) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, age = EXCLUDED.age, role = EXCLUDED.role`,
		identityID, p.Name, p.Age, p.Role,
	)
	return errors.Wrap(err, "sqlxrepos.SetProfile")
}
