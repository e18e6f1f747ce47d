package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/darasahub/darasa/core/material"
)

type materialRepository struct {
	db *studyTable
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *DB) material.Repository {
	return &materialRepository{db: db.study}
}

func (repo *materialRepository) QueryMaterials(ctx context.Context, scope material.Scope) ([]material.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ownerID, restricted := scope.OwnerID()
	items := make([]material.Material, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		m := repo.db.table[id]
		if restricted && m.OwnerID != ownerID {
			continue
		}
		items = append(items, *m)
	}
	return items, nil
}

func (repo *materialRepository) CreateMaterial(ctx context.Context, m material.Material) (material.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	m.ID = uuid.New().String()
	repo.db.table[m.ID] = &m
	repo.db.order = append(repo.db.order, m.ID)
	return m, nil
}

func (repo *materialRepository) UpdateMaterial(ctx context.Context, actorID, id string, d material.Draft) (material.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	m, ok := repo.db.table[id]
	if !ok {
		return material.Material{}, material.ErrNotFound
	}
	if m.OwnerID != actorID {
		return material.Material{}, material.ErrForbidden
	}
	m.Title = d.Title
	m.Description = d.Description
	m.URL = d.URL
	return *m, nil
}

func (repo *materialRepository) DeleteMaterial(ctx context.Context, actorID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	m, ok := repo.db.table[id]
	if !ok {
		return material.ErrNotFound
	}
	if m.OwnerID != actorID {
		return material.ErrForbidden
	}
	delete(repo.db.table, id)
	for i, oid := range repo.db.order {
		if oid == id {
			repo.db.order = append(repo.db.order[:i], repo.db.order[i+1:]...)
			break
		}
	}
	return nil
}
