// Package runner evaluates the report queries in order and hands each result to the report.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/tgaquery/internal/metrics"
	"github.com/starford/tgaquery/internal/queries"
	"github.com/starford/tgaquery/internal/sparql"
)

// SectionWriter receives one rendered section per query.
type SectionWriter interface {
	Section(title string, t *sparql.Table) error
}

// Runner executes query specs one at a time against a single dataset.
type Runner struct {
	querier sparql.Querier
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// New creates a Runner. rec may be nil.
func New(q sparql.Querier, logger *slog.Logger, rec *metrics.Recorder) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{querier: q, logger: logger, metrics: rec}
}

// Run evaluates specs in declared order and writes each result as it arrives.
// Rows are passed on in the order the engine returned them. The first query
// or write error stops the run; sections already written stay in place.
func (r *Runner) Run(ctx context.Context, specs []queries.Spec, out SectionWriter) error {
	for _, spec := range specs {
		start := time.Now()
		table, err := r.querier.Select(ctx, spec.Text)
		if err != nil {
			return fmt.Errorf("query %s: %w", spec.Name, err)
		}
		took := time.Since(start)

		if r.metrics != nil {
			r.metrics.ObserveQuery(spec.Name, took, len(table.Rows))
		}
		r.logger.Info("query evaluated",
			slog.String("query", spec.Name),
			slog.Int("rows", len(table.Rows)),
			slog.Duration("took", took))

		if err := out.Section(spec.Title, table); err != nil {
			return fmt.Errorf("section %s: %w", spec.Name, err)
		}
	}
	return nil
}
