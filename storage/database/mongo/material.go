package mongodb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/darasahub/darasa/core/material"
)

type materialDoc struct {
	ID          string `bson:"_id"`
	Title       string `bson:"title"`
	Description string `bson:"description"`
	URL         string `bson:"url"`
	OwnerID     string `bson:"ownerId"`
}

func (doc materialDoc) toMaterial() material.Material {
	return material.Material{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		URL:         doc.URL,
		OwnerID:     doc.OwnerID,
	}
}

type materialRepository struct {
	db *DB
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *DB) material.Repository {
	return &materialRepository{db: db}
}

func (repo *materialRepository) QueryMaterials(ctx context.Context, scope material.Scope) ([]material.Material, error) {
	filter := bson.M{}
	if ownerID, ok := scope.OwnerID(); ok {
		filter["ownerId"] = ownerID
	}

	// natural (insertion/arrival) order; no secondary sort
	cursor, err := repo.db.study().Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "mongodb.QueryMaterials")
	}
	var docs []materialDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "mongodb.QueryMaterials")
	}

	items := make([]material.Material, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.toMaterial())
	}
	return items, nil
}

func (repo *materialRepository) CreateMaterial(ctx context.Context, m material.Material) (material.Material, error) {
	m.ID = uuid.New().String()
	doc := materialDoc{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		URL:         m.URL,
		OwnerID:     m.OwnerID,
	}
	if _, err := repo.db.study().InsertOne(ctx, doc); err != nil {
		return material.Material{}, errors.Wrap(err, "mongodb.CreateMaterial")
	}
	return m, nil
}

func (repo *materialRepository) UpdateMaterial(ctx context.Context, actorID, id string, d material.Draft) (material.Material, error) {
	res, err := repo.db.study().UpdateOne(ctx,
		bson.M{"_id": id, "ownerId": actorID},
		bson.M{"$set": bson.M{"title": d.Title, "description": d.Description, "url": d.URL}},
	)
	if err != nil {
		return material.Material{}, errors.Wrap(err, "mongodb.UpdateMaterial")
	}
	if res.MatchedCount == 0 {
		return material.Material{}, repo.missOrForbidden(ctx, id)
	}

	var doc materialDoc
	if err := repo.db.study().FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return material.Material{}, errors.Wrap(err, "mongodb.UpdateMaterial")
	}
	return doc.toMaterial(), nil
}

func (repo *materialRepository) DeleteMaterial(ctx context.Context, actorID, id string) error {
	res, err := repo.db.study().DeleteOne(ctx, bson.M{"_id": id, "ownerId": actorID})
	if err != nil {
		return errors.Wrap(err, "mongodb.DeleteMaterial")
	}
	if res.DeletedCount == 0 {
		return repo.missOrForbidden(ctx, id)
	}
	return nil
}

// missOrForbidden disambiguates a zero-match write: the document either does
// not exist at all, or exists under a different owner.
func (repo *materialRepository) missOrForbidden(ctx context.Context, id string) error {
	err := repo.db.study().FindOne(ctx, bson.M{"_id": id}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return material.ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "mongodb.missOrForbidden")
	}
	return material.ErrForbidden
}
