// Package sqlxrepos is the relational variant of the repositories, for
// deployments that keep the catalogue in Postgres instead of the document
// store. Semantics match the mongo adapter: global read, owner-scoped write.
package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/darasahub/darasa/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id   TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    age  INTEGER NOT NULL DEFAULT 0,
    role TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS study_materials (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    url         TEXT NOT NULL DEFAULT '',
    owner_id    TEXT NOT NULL,
    seq         BIGSERIAL -- arrival order for unsorted reads
);
`

func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", conf.Database.PostgresURL)
	if err != nil {
		return nil, errors.Wrap(err, "sqlxrepos.Open")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "sqlxrepos.Ping")
	}
	return db, nil
}

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return errors.Wrap(err, "sqlxrepos.EnsureSchema")
}
