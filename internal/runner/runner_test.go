package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tgaquery/internal/apperr"
	"github.com/starford/tgaquery/internal/metrics"
	"github.com/starford/tgaquery/internal/queries"
	"github.com/starford/tgaquery/internal/report"
	"github.com/starford/tgaquery/internal/sparql"
)

// fakeQuerier answers by query text and records the order of calls.
type fakeQuerier struct {
	tables map[string]*sparql.Table
	fail   map[string]error
	seen   []string
}

func (f *fakeQuerier) Select(_ context.Context, query string) (*sparql.Table, error) {
	f.seen = append(f.seen, query)
	if err, ok := f.fail[query]; ok {
		return nil, err
	}
	if t, ok := f.tables[query]; ok {
		return t, nil
	}
	return &sparql.Table{Vars: []string{"x"}}, nil
}

type recordingWriter struct {
	titles []string
	tables []*sparql.Table
	err    error
}

func (w *recordingWriter) Section(title string, t *sparql.Table) error {
	if w.err != nil {
		return w.err
	}
	w.titles = append(w.titles, title)
	w.tables = append(w.tables, t)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRunFollowsCatalogOrder(t *testing.T) {
	specs := queries.Catalog()
	q := &fakeQuerier{}
	out := &recordingWriter{}

	require.NoError(t, New(q, quietLogger(), nil).Run(context.Background(), specs, out))

	require.Len(t, q.seen, len(specs))
	for i, s := range specs {
		assert.Equal(t, s.Text, q.seen[i])
		assert.Equal(t, s.Title, out.titles[i])
	}
}

func TestRunKeepsEngineRowOrder(t *testing.T) {
	spec := queries.Spec{Name: "q", Title: "Q", Text: "SELECT ?n WHERE {} ORDER BY DESC(?n)"}
	rows := []sparql.Row{
		{"n": &sparql.Value{Kind: sparql.KindLiteral, Lexical: "b"}},
		{"n": &sparql.Value{Kind: sparql.KindLiteral, Lexical: "c"}},
		{"n": &sparql.Value{Kind: sparql.KindLiteral, Lexical: "a"}},
	}
	q := &fakeQuerier{tables: map[string]*sparql.Table{spec.Text: {Vars: []string{"n"}, Rows: rows}}}
	out := &recordingWriter{}

	require.NoError(t, New(q, quietLogger(), nil).Run(context.Background(), []queries.Spec{spec}, out))
	require.Len(t, out.tables, 1)
	assert.Equal(t, rows, out.tables[0].Rows)
}

func TestRunStopsAtQueryError(t *testing.T) {
	specs := queries.Catalog()
	broken := specs[2]
	q := &fakeQuerier{fail: map[string]error{broken.Text: fmt.Errorf("%w: parse error", apperr.ErrQuery)}}
	out := &recordingWriter{}
	rec := metrics.New()

	err := New(q, quietLogger(), rec).Run(context.Background(), specs, out)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrQuery)
	assert.Contains(t, err.Error(), broken.Name)
	assert.Len(t, out.titles, 2)
	assert.Len(t, q.seen, 3)
}

func TestRunStopsAtWriteError(t *testing.T) {
	q := &fakeQuerier{}
	out := &recordingWriter{err: fmt.Errorf("%w: disk full", apperr.ErrWrite)}

	err := New(q, quietLogger(), nil).Run(context.Background(), queries.Catalog(), out)
	assert.True(t, errors.Is(err, apperr.ErrWrite))
	assert.Len(t, q.seen, 1)
}

func TestRunIntoReport(t *testing.T) {
	var buf bytes.Buffer
	w := report.NewWriter(&buf)
	require.NoError(t, New(&fakeQuerier{}, quietLogger(), nil).Run(context.Background(), queries.Catalog(), w))
	require.NoError(t, w.Close())

	for _, s := range queries.Catalog() {
		assert.Contains(t, buf.String(), "=== "+s.Title+" ===\nx  \n\n---\n\n")
	}
	assert.Equal(t, 6, strings.Count(buf.String(), "=== "))
}
