package sparql

import "context"

// Dataset is the handle every query goes through: one graph, published to
// one engine, shared read-only for the rest of the run.
type Dataset struct {
	endpoint *Endpoint
	source   string
	triples  int
}

var _ Querier = (*Dataset)(nil)

// Select evaluates query against the dataset, preserving the engine's row order.
func (d *Dataset) Select(ctx context.Context, query string) (*Table, error) {
	return d.endpoint.selectQuery(ctx, query)
}

// Source returns the path of the document the dataset was built from.
func (d *Dataset) Source() string { return d.source }

// Triples returns the number of triples published.
func (d *Dataset) Triples() int { return d.triples }
