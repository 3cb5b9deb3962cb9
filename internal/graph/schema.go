// Package graph loads an RDF document into an in-memory SQLite triple index.
package graph

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS triples (
	subject      TEXT    NOT NULL,
	subject_kind INTEGER NOT NULL,
	predicate    TEXT    NOT NULL,
	object       TEXT    NOT NULL,
	object_kind  INTEGER NOT NULL,
	datatype     TEXT    NOT NULL DEFAULT '',
	lang         TEXT    NOT NULL DEFAULT '',
	UNIQUE(subject, subject_kind, predicate, object, object_kind, datatype, lang)
);

CREATE INDEX IF NOT EXISTS idx_triples_predicate_object ON triples(predicate, object);
`

// openMemory opens a private in-memory database and applies the schema.
// Each call gets its own named database, so graphs never share state.
func openMemory() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:graph-%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("graph: open db: %w", err)
	}
	// The database lives as long as one connection does.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("graph: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("graph: apply schema: %w", err)
	}
	return conn, nil
}
