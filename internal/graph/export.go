package graph

import (
	"context"
	"fmt"
	"io"

	"github.com/knakk/rdf"

	"github.com/starford/tgaquery/internal/ontology"
)

// WriteNTriples serializes the whole graph to w as N-Triples.
func (g *Graph) WriteNTriples(ctx context.Context, w io.Writer) error {
	rows, err := g.conn.QueryContext(ctx, `SELECT subject, subject_kind, predicate, object, object_kind, datatype, lang
		FROM triples ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("graph: select triples: %w", err)
	}
	defer rows.Close()

	enc := rdf.NewTripleEncoder(w, rdf.NTriples)
	for rows.Next() {
		var (
			subj, pred, obj, datatype, lang string
			subjKind, objKind               int
		)
		if err := rows.Scan(&subj, &subjKind, &pred, &obj, &objKind, &datatype, &lang); err != nil {
			return fmt.Errorf("graph: scan triple: %w", err)
		}
		t, err := buildTriple(subj, subjKind, pred, obj, objKind, datatype, lang)
		if err != nil {
			return fmt.Errorf("graph: rebuild triple: %w", err)
		}
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("graph: encode triple: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("graph: iterate triples: %w", err)
	}
	return enc.Close()
}

func buildTriple(subj string, subjKind int, pred, obj string, objKind int, datatype, lang string) (rdf.Triple, error) {
	var t rdf.Triple

	if subjKind == kindBlank {
		b, err := rdf.NewBlank(subj)
		if err != nil {
			return t, err
		}
		t.Subj = b
	} else {
		iri, err := rdf.NewIRI(subj)
		if err != nil {
			return t, err
		}
		t.Subj = iri
	}

	p, err := rdf.NewIRI(pred)
	if err != nil {
		return t, err
	}
	t.Pred = p

	switch objKind {
	case kindBlank:
		b, err := rdf.NewBlank(obj)
		if err != nil {
			return t, err
		}
		t.Obj = b
	case kindLiteral:
		if lang != "" {
			lit, err := rdf.NewLangLiteral(obj, lang)
			if err != nil {
				return t, err
			}
			t.Obj = lit
			break
		}
		if datatype == "" {
			datatype = ontology.XSDString
		}
		dt, err := rdf.NewIRI(datatype)
		if err != nil {
			return t, err
		}
		t.Obj = rdf.NewTypedLiteral(obj, dt)
	default:
		iri, err := rdf.NewIRI(obj)
		if err != nil {
			return t, err
		}
		t.Obj = iri
	}
	return t, nil
}
