package graph

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knakk/rdf"

	"github.com/starford/tgaquery/internal/apperr"
	"github.com/starford/tgaquery/internal/checksum"
)

// Term kinds as stored in the index.
const (
	kindIRI = iota
	kindBlank
	kindLiteral
)

// Graph is a read-only handle on one loaded RDF document.
// It is populated once by Load and never mutated afterwards.
type Graph struct {
	conn     *sql.DB
	source   string
	checksum string
	size     int
}

// LoadOptions controls how a document is read.
type LoadOptions struct {
	// Syntax forces a serialization; empty means detect from the file extension.
	Syntax string
}

// Load reads the RDF document at path into a new in-memory graph.
// Every failure is classified as apperr.ErrLoad.
func Load(ctx context.Context, path string, opts LoadOptions) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", path, apperr.ErrLoad, err)
	}

	syntax := opts.Syntax
	if syntax == "" {
		syntax = DetectSyntax(path)
	}
	format, err := ParseSyntax(syntax)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrLoad, err)
	}

	conn, err := openMemory()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrLoad, err)
	}

	g := &Graph{conn: conn, source: path, checksum: checksum.Sum(data)}
	if err := g.ingest(ctx, rdf.NewTripleDecoder(bytes.NewReader(data), format)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("parse %s as %s: %w: %w", path, syntax, apperr.ErrLoad, err)
	}
	if g.size == 0 {
		conn.Close()
		return nil, fmt.Errorf("%s: %w: document contains no triples", path, apperr.ErrLoad)
	}
	return g, nil
}

// ingest decodes every triple and inserts it inside one transaction.
// Duplicate statements collapse, since a graph is a set.
func (g *Graph) ingest(ctx context.Context, dec rdf.TripleDecoder) error {
	tx, err := g.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO triples
		(subject, subject_kind, predicate, object, object_kind, datatype, lang)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		t, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		subj, subjKind := termValue(t.Subj)
		obj, objKind := termValue(t.Obj)
		var datatype, lang string
		if lit, ok := t.Obj.(rdf.Literal); ok {
			datatype = lit.DataType.String()
			lang = lit.Lang()
		}
		if _, err := stmt.ExecContext(ctx, subj, subjKind, t.Pred.String(), obj, objKind, datatype, lang); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return g.conn.QueryRowContext(ctx, `SELECT count(*) FROM triples`).Scan(&g.size)
}

func termValue(t rdf.Term) (string, int) {
	switch t.Type() {
	case rdf.TermBlank:
		return strings.TrimPrefix(t.String(), "_:"), kindBlank
	case rdf.TermLiteral:
		return t.String(), kindLiteral
	default:
		return t.String(), kindIRI
	}
}

// Source returns the path the graph was loaded from.
func (g *Graph) Source() string { return g.source }

// Checksum returns the SHA-256 of the loaded document.
func (g *Graph) Checksum() string { return g.checksum }

// Len returns the number of distinct triples.
func (g *Graph) Len() int { return g.size }

// Close releases the in-memory index.
func (g *Graph) Close() error {
	return g.conn.Close()
}
