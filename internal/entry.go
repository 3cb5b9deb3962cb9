// Package internal wires the report pipeline: load the ontology, publish it to
// the SPARQL engine, run the fixed queries and write the report.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/tgaquery/internal/checksum"
	"github.com/starford/tgaquery/internal/graph"
	"github.com/starford/tgaquery/internal/metrics"
	"github.com/starford/tgaquery/internal/queries"
	"github.com/starford/tgaquery/internal/report"
	"github.com/starford/tgaquery/internal/runner"
	"github.com/starford/tgaquery/internal/sparql"
	"github.com/starford/tgaquery/internal/watch"
)

// Run produces the report once, or keeps regenerating it in watch mode
// until ctx is cancelled or the process is signalled.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
		slog.SetDefault(logger)
	}

	logger.Info("Configuration loaded",
		slog.String("input", cfg.Report.Input),
		slog.String("output", cfg.Report.Output),
		slog.String("query_url", cfg.SPARQL.QueryURL),
		slog.Bool("publish", cfg.SPARQL.Publish),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	endpoint, err := sparql.NewEndpoint(sparql.Options{
		QueryURL: cfg.SPARQL.QueryURL,
		DataURL:  cfg.SPARQL.DataURL,
		Timeout:  cfg.SPARQL.Timeout,
		Username: cfg.SPARQL.Username,
		Password: cfg.SPARQL.Password,
	})
	if err != nil {
		return fmt.Errorf("init endpoint: %w", err)
	}

	p := &pipeline{cfg: cfg, endpoint: endpoint, metrics: metrics.New(), logger: logger}

	if !cfg.Watch.Enabled {
		_, err := p.generate(ctx)
		return err
	}
	return p.watch(ctx)
}

// pipeline holds what survives between report runs.
type pipeline struct {
	cfg      *Config
	endpoint *sparql.Endpoint
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

// generate performs one complete run and returns the checksum of the document
// it loaded. Any error aborts the run.
func (p *pipeline) generate(ctx context.Context) (sum string, err error) {
	logger := p.logger.With(slog.String("run_id", uuid.NewString()))
	start := time.Now()

	defer func() {
		p.metrics.RunFinished(err, time.Now())
		if path := p.cfg.Metrics.Textfile; path != "" {
			if mErr := p.metrics.WriteTextfile(path); mErr != nil {
				logger.Warn("metrics textfile not written", slog.String("error", mErr.Error()))
			}
		}
	}()

	g, err := graph.Load(ctx, p.cfg.Report.Input, graph.LoadOptions{Syntax: p.cfg.Report.Format})
	if err != nil {
		return "", err
	}
	defer g.Close()
	sum = g.Checksum()

	stats, err := g.Stats(ctx)
	if err != nil {
		return sum, err
	}
	p.metrics.SetGraphTriples(stats.Triples)
	logger.Info("Graph loaded",
		slog.String("path", g.Source()),
		slog.String("checksum", sum),
		slog.Int("triples", stats.Triples),
		slog.Int("subjects", stats.Subjects),
		slog.Any("instances", stats.Instances))

	ds, err := p.endpoint.Bind(ctx, g, p.cfg.SPARQL.Publish)
	if err != nil {
		return sum, err
	}
	logger.Debug("Dataset bound", slog.Int("triples", ds.Triples()), slog.Bool("published", p.cfg.SPARQL.Publish))

	out, err := report.Create(p.cfg.Report.Output)
	if err != nil {
		return sum, err
	}
	runErr := runner.New(ds, logger, p.metrics).Run(ctx, queries.Catalog(), out)
	closeErr := out.Close()
	if runErr != nil {
		return sum, runErr
	}
	if closeErr != nil {
		return sum, closeErr
	}

	logger.Info("Report written",
		slog.String("path", out.Path()),
		slog.Int("sections", out.Sections()),
		slog.Duration("took", time.Since(start)))
	return sum, nil
}

// watch runs the report once and again after every content change of the
// input document. Failed runs are logged; only watcher failures end the loop.
func (p *pipeline) watch(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sum, err := p.generate(ctx)
	if err != nil {
		p.logger.Error("Report failed", slog.String("error", err.Error()))
		if sum == "" {
			sum, _ = checksum.File(p.cfg.Report.Input)
		}
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watch.File(gCtx, p.cfg.Report.Input, watch.Options{
			Debounce: p.cfg.Watch.Debounce,
			Initial:  sum,
		}, p.logger, func(ctx context.Context, _ string) {
			if _, err := p.generate(ctx); err != nil {
				p.logger.Error("Report failed", slog.String("error", err.Error()))
			}
		})
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			p.logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
		}
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("watch %s: %w", p.cfg.Report.Input, err)
	}
	p.logger.Info("Watcher stopped")
	return nil
}
