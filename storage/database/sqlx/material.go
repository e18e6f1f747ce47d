package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasahub/darasa/core/material"
)

type materialRow struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	URL         string `db:"url"`
	OwnerID     string `db:"owner_id"`
}

func (row materialRow) toMaterial() material.Material {
	return material.Material{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		URL:         row.URL,
		OwnerID:     row.OwnerID,
	}
}

type materialRepository struct {
	db *sqlx.DB
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *sqlx.DB) material.Repository {
	return &materialRepository{db: db}
}

func (repo *materialRepository) QueryMaterials(ctx context.Context, scope material.Scope) ([]material.Material, error) {
	var rows []materialRow
	var err error
	if ownerID, ok := scope.OwnerID(); ok {
		err = repo.db.SelectContext(ctx, &rows, `
			SELECT id, title, description, url, owner_id FROM study_materials
			WHERE owner_id = $1 ORDER BY seq`, ownerID)
	} else {
		err = repo.db.SelectContext(ctx, &rows, `
			SELECT id, title, description, url, owner_id FROM study_materials ORDER BY seq`)
	}
	if err != nil {
		return nil, errors.Wrap(err, "sqlxrepos.QueryMaterials")
	}

	items := make([]material.Material, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toMaterial())
	}
	return items, nil
}

func (repo *materialRepository) CreateMaterial(ctx context.Context, m material.Material) (material.Material, error) {
	m.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO study_materials (id, title, description, url, owner_id)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.Title, m.Description, m.URL, m.OwnerID,
	)
	if err != nil {
		return material.Material{}, errors.Wrap(err, "sqlxrepos.CreateMaterial")
	}
	return m, nil
}

func (repo *materialRepository) UpdateMaterial(ctx context.Context, actorID, id string, d material.Draft) (material.Material, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE study_materials SET title = $1, description = $2, url = $3
		WHERE id = $4 AND owner_id = $5`,
		d.Title, d.Description, d.URL, id, actorID,
	)
	if err != nil {
		return material.Material{}, errors.Wrap(err, "sqlxrepos.UpdateMaterial")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return material.Material{}, repo.missOrForbidden(ctx, id)
	}

	var row materialRow
	if err := repo.db.GetContext(ctx, &row,
		`SELECT id, title, description, url, owner_id FROM study_materials WHERE id = $1`, id); err != nil {
		return material.Material{}, errors.Wrap(err, "sqlxrepos.UpdateMaterial")
	}
	return row.toMaterial(), nil
}

func (repo *materialRepository) DeleteMaterial(ctx context.Context, actorID, id string) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM study_materials WHERE id = $1 AND owner_id = $2`, id, actorID)
	if err != nil {
		return errors.Wrap(err, "sqlxrepos.DeleteMaterial")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repo.missOrForbidden(ctx, id)
	}
	return nil
}

// missOrForbidden disambiguates a zero-row write: the row either does not
// exist at all, or belongs to a different owner.
func (repo *materialRepository) missOrForbidden(ctx context.Context, id string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM study_materials WHERE id = $1)`, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(err, "sqlxrepos.missOrForbidden")
	}
	if !exists {
		return material.ErrNotFound
	}
	return material.ErrForbidden
}
