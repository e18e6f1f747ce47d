package dummydb

import (
	"context"

	"github.com/darasahub/darasa/core/profile"
)

type profileRepository struct {
	db *userTable
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *DB) profile.Repository {
	return &profileRepository{db: db.users}
}

func (repo *profileRepository) GetProfile(ctx context.Context, identityID string) (profile.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[identityID]; ok {
		return *p, nil
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) SetProfile(ctx context.Context, identityID string, p profile.Profile) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[identityID] = &p
	return nil
}
