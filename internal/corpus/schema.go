package corpus

import (
	"context"
	"fmt"
)

// %s is the raw-bytes column type: BLOB on SQLite, BYTEA on PostgreSQL.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS repository (
	owner   TEXT NOT NULL,
	name    TEXT NOT NULL,
	license TEXT,
	PRIMARY KEY (owner, name)
);

CREATE TABLE IF NOT EXISTS source_file (
	hash   TEXT PRIMARY KEY,
	source %s NOT NULL
);

CREATE TABLE IF NOT EXISTS repository_source (
	hash  TEXT NOT NULL REFERENCES source_file (hash),
	owner TEXT NOT NULL,
	name  TEXT NOT NULL,
	path  TEXT NOT NULL,
	PRIMARY KEY (hash, owner, name, path),
	FOREIGN KEY (owner, name) REFERENCES repository (owner, name)
);

CREATE TABLE IF NOT EXISTS source_summary (
	hash     TEXT PRIMARY KEY REFERENCES source_file (hash),
	n_tokens INTEGER NOT NULL,
	sloc     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS failure (
	hash        TEXT PRIMARY KEY REFERENCES source_file (hash),
	reason      TEXT NOT NULL,
	recorded_at TIMESTAMP NOT NULL
);
`

func (c *Corpus) migrate(ctx context.Context) error {
	blobType := "BLOB"
	if c.driver == driverPostgres {
		blobType = "BYTEA"
	}
	_, err := c.db.ExecContext(ctx, fmt.Sprintf(schemaTemplate, blobType))
	return err
}
