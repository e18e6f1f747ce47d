package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/darasahub/darasa/core/profile"
)

type profileDoc struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
	Age  int    `bson:"age,omitempty"`
	Role string `bson:"role"`
}

type profileRepository struct {
	db *DB
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *DB) profile.Repository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) GetProfile(ctx context.Context, identityID string) (profile.Profile, error) {
	var doc profileDoc
	err := repo.db.users().FindOne(ctx, bson.M{"_id": identityID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, errors.Wrap(err, "mongodb.GetProfile")
	}
	return profile.Profile{Name: doc.Name, Age: doc.Age, Role: doc.Role}, nil
}

func (repo *profileRepository) SetProfile(ctx context.Context, identityID string, p profile.Profile) error {
	doc := profileDoc{ID: identityID, Name: p.Name, Age: p.Age, Role: p.Role}
	_, err := repo.db.users().ReplaceOne(ctx, bson.M{"_id": identityID}, doc, options.Replace().SetUpsert(true))
	return errors.Wrap(err, "mongodb.SetProfile")
}
