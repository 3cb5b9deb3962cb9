package graph

import (
	"context"
	"fmt"

	"github.com/starford/tgaquery/internal/ontology"
)

// Stats summarises a loaded graph for logging.
type Stats struct {
	Triples  int
	Subjects int
	// Instances maps ontology class local names to their instance counts.
	Instances map[string]int
}

// Stats counts triples, distinct subjects and instances of the ontology classes.
func (g *Graph) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Triples: g.size, Instances: make(map[string]int, len(ontology.Classes))}

	if err := g.conn.QueryRowContext(ctx,
		`SELECT count(DISTINCT subject) FROM triples`).Scan(&st.Subjects); err != nil {
		return Stats{}, fmt.Errorf("graph: count subjects: %w", err)
	}

	for _, class := range ontology.Classes {
		var n int
		err := g.conn.QueryRowContext(ctx,
			`SELECT count(DISTINCT subject) FROM triples WHERE predicate = ? AND object = ? AND object_kind = ?`,
			ontology.RDFType, ontology.IRI(class), kindIRI).Scan(&n)
		if err != nil {
			return Stats{}, fmt.Errorf("graph: count %s instances: %w", class, err)
		}
		st.Instances[class] = n
	}
	return st, nil
}
