// Package mongodb backs the repositories with the deployed document store:
// the `users` collection keyed by identity id and the `study` collection of
// materials carrying an `ownerId` reference.
package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/darasahub/darasa/core"
)

const (
	usersCollection = "users"
	studyCollection = "study"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(conf.Database.MongoURI))
	if err != nil {
		return nil, errors.Wrap(err, "mongodb.Connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "mongodb.Ping")
	}
	return &DB{client: client, db: client.Database(conf.Database.MongoName)}, nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

func (db *DB) users() *mongo.Collection { return db.db.Collection(usersCollection) }
func (db *DB) study() *mongo.Collection { return db.db.Collection(studyCollection) }
