package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tgaquery/internal/apperr"
	"github.com/starford/tgaquery/internal/ontology"
	"github.com/starford/tgaquery/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, srv *testutil.SPARQLServer) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Report.Input = testutil.Fixture(t, "mini.rdf")
	cfg.Report.Output = filepath.Join(t.TempDir(), "query_results.txt")
	cfg.SPARQL.QueryURL = srv.QueryURL()
	cfg.SPARQL.DataURL = srv.DataURL()
	cfg.SPARQL.Timeout = 5 * time.Second
	require.NoError(t, cfg.Validate())
	return cfg
}

// respondAll registers answers for the six report queries over mini.rdf.
func respondAll(srv *testutil.SPARQLServer) {
	event := testutil.Binding{
		"event": testutil.URI(ontology.IRI("TGA2020")),
		"host":  testutil.URI(ontology.IRI("Geoff_Keighley")),
		"date":  testutil.Typed("2020-12-10T00:00:00", ontology.XSDDateTime),
	}
	srv.Respond("OPTIONAL { ?event :Host", []string{"event", "host", "date"}, event)
	srv.Respond("FILTER(BOUND(?host)", []string{"event", "host", "date"}, event)
	srv.Respond("GROUP BY ?game", []string{"game", "awardCount"}, testutil.Binding{
		"game":       testutil.URI(ontology.IRI("The_Last_of_Us_Part_II")),
		"awardCount": testutil.Typed("2", ontology.XSDInteger),
	})
	srv.Respond("FILTER NOT EXISTS", []string{"category"}, testutil.Binding{
		"category": testutil.URI(ontology.IRI("Best_Score_and_Music")),
	})
	srv.Respond("GROUP BY ?developer", []string{"developer", "awardCount"}, testutil.Binding{
		"developer":  testutil.Literal("Naughty Dog"),
		"awardCount": testutil.Typed("1", ontology.XSDInteger),
	})
	srv.Respond("GROUP BY ?genre", []string{"genre", "winCount"}, testutil.Binding{
		"genre":    testutil.Literal("Action-adventure"),
		"winCount": testutil.Typed("1", ontology.XSDInteger),
	})
}

// sections splits a report into title -> body.
func sections(t *testing.T, report string) (titles []string, bodies map[string]string) {
	t.Helper()
	bodies = make(map[string]string)
	for _, chunk := range strings.Split(report, "=== ")[1:] {
		title, body, ok := strings.Cut(chunk, " ===\n")
		require.True(t, ok, "malformed section %q", chunk)
		titles = append(titles, title)
		bodies[title] = body
	}
	return titles, bodies
}

func TestRun_WritesAllSections(t *testing.T) {
	srv := testutil.NewSPARQLServer(t)
	respondAll(srv)
	cfg := testConfig(t, srv)
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "tgaquery.prom")

	err := Run(context.Background(), WithConfig(cfg), WithLogger(discardLogger()))
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.Report.Output)
	require.NoError(t, err)

	titles, bodies := sections(t, string(data))
	assert.Equal(t, []string{
		"All Award Events with Optional Hosts and Dates",
		"Award Events with Known Hosts and Dates",
		"Query for most awarded game in 2020",
		"Categories Not Presented in 2020",
		"Developer with Most Awards",
		"Genre with Highest Number of Award-Winning Titles",
	}, titles)

	// With a single fully described event both event queries print the same table.
	assert.Equal(t, bodies[titles[0]], bodies[titles[1]])
	assert.Contains(t, bodies[titles[0]], "TGA2020  Geoff_Keighley  2020-12-10T00:00:00  \n")
	assert.Contains(t, bodies[titles[2]], "The_Last_of_Us_Part_II           2  \n")
	assert.Contains(t, bodies[titles[3]], "Best_Score_and_Music  \n")
	assert.Contains(t, bodies[titles[4]], "Naughty Dog           1  \n")
	assert.Contains(t, bodies[titles[5]], "Action-adventure         1  \n")

	uploads := srv.Uploads()
	require.Len(t, uploads, 1)
	assert.Contains(t, uploads[0], "<"+ontology.IRI("The_Last_of_Us_Part_II")+">")
	assert.Len(t, srv.Queries(), 6)

	prom, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `tgaquery_runs_total{outcome="ok"} 1`)
	assert.Contains(t, string(prom), "tgaquery_graph_triples 14")
}

func TestRun_QueryOnly(t *testing.T) {
	srv := testutil.NewSPARQLServer(t)
	respondAll(srv)
	cfg := testConfig(t, srv)
	cfg.SPARQL.Publish = false

	require.NoError(t, Run(context.Background(), WithConfig(cfg), WithLogger(discardLogger())))
	assert.Empty(t, srv.Uploads())
	assert.Len(t, srv.Queries(), 6)
}

func TestRun_MissingInputWritesNothing(t *testing.T) {
	srv := testutil.NewSPARQLServer(t)
	cfg := testConfig(t, srv)
	cfg.Report.Input = filepath.Join(t.TempDir(), "absent.rdf")

	err := Run(context.Background(), WithConfig(cfg), WithLogger(discardLogger()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrLoad))

	_, statErr := os.Stat(cfg.Report.Output)
	assert.True(t, os.IsNotExist(statErr), "report must not be created")
	assert.Empty(t, srv.Queries())
}

func TestRun_RejectedQueryKeepsEarlierSections(t *testing.T) {
	srv := testutil.NewSPARQLServer(t)
	event := testutil.Binding{"event": testutil.URI(ontology.IRI("TGA2021"))}
	srv.Respond("OPTIONAL { ?event :Host", []string{"event", "host", "date"}, event)
	srv.Respond("FILTER(BOUND(?host)", []string{"event", "host", "date"})
	cfg := testConfig(t, srv)

	err := Run(context.Background(), WithConfig(cfg), WithLogger(discardLogger()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrQuery))

	data, err := os.ReadFile(cfg.Report.Output)
	require.NoError(t, err)
	titles, bodies := sections(t, string(data))
	require.Len(t, titles, 2)
	assert.Contains(t, bodies[titles[0]], "TGA2021  null  null  \n")
	assert.Equal(t, "event  host  date  \n\n-------------------\n\n", bodies[titles[1]])
}

func TestRun_RequiresConfig(t *testing.T) {
	err := Run(context.Background(), WithLogger(discardLogger()))
	require.Error(t, err)
}

func TestRun_WatchRegeneratesOnChange(t *testing.T) {
	srv := testutil.NewSPARQLServer(t)
	respondAll(srv)
	cfg := testConfig(t, srv)

	src, err := os.ReadFile(cfg.Report.Input)
	require.NoError(t, err)
	cfg.Report.Input = filepath.Join(t.TempDir(), "TGAOntology.rdf")
	require.NoError(t, os.WriteFile(cfg.Report.Input, src, 0o644))
	cfg.Watch.Enabled = true
	cfg.Watch.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, WithConfig(cfg), WithLogger(discardLogger())) }()

	eventually(t, 5*time.Second, func() bool { return len(srv.Uploads()) == 1 })

	// Let the watcher subscribe before touching the file.
	time.Sleep(100 * time.Millisecond)
	changed := strings.Replace(string(src), "Naughty Dog", "Naughty Dog LLC", 1)
	require.NoError(t, os.WriteFile(cfg.Report.Input, []byte(changed), 0o644))

	eventually(t, 5*time.Second, func() bool { return len(srv.Uploads()) == 2 })
	assert.Contains(t, srv.Uploads()[1], "Naughty Dog LLC")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch mode did not stop after cancel")
	}
}

func eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestRun_AwardsRankingSections(t *testing.T) {
	srv := testutil.NewSPARQLServer(t)
	event := func(name, date string) testutil.Binding {
		return testutil.Binding{
			"event": testutil.URI(ontology.IRI(name)),
			"host":  testutil.URI(ontology.IRI("Geoff_Keighley")),
			"date":  testutil.Typed(date, ontology.XSDDateTime),
		}
	}
	events := []testutil.Binding{event("TGA2020", "2020-12-10T00:00:00"), event("TGA2021", "2021-12-09T00:00:00")}
	srv.Respond("OPTIONAL { ?event :Host", []string{"event", "host", "date"}, events...)
	srv.Respond("FILTER(BOUND(?host)", []string{"event", "host", "date"}, events...)
	srv.Respond("GROUP BY ?game", []string{"game", "awardCount"}, testutil.Binding{
		"game":       testutil.URI(ontology.IRI("The_Last_of_Us_Part_II")),
		"awardCount": testutil.Typed("3", ontology.XSDInteger),
	})
	srv.Respond("FILTER NOT EXISTS", []string{"category"}, testutil.Binding{
		"category": testutil.URI(ontology.IRI("Best_Score_and_Music")),
	})
	srv.Respond("GROUP BY ?developer", []string{"developer", "awardCount"}, testutil.Binding{
		"developer":  testutil.Literal("Naughty Dog"),
		"awardCount": testutil.Typed("2", ontology.XSDInteger),
	})
	srv.Respond("GROUP BY ?genre", []string{"genre", "winCount"}, testutil.Binding{
		"genre":    testutil.Literal("Action-adventure"),
		"winCount": testutil.Typed("2", ontology.XSDInteger),
	})

	cfg := testConfig(t, srv)
	cfg.Report.Input = testutil.Fixture(t, "awards2020.rdf")
	require.NoError(t, Run(context.Background(), WithConfig(cfg), WithLogger(discardLogger())))

	uploads := srv.Uploads()
	require.Len(t, uploads, 1)
	assert.Contains(t, uploads[0], "<"+ontology.IRI("Hades")+">")

	data, err := os.ReadFile(cfg.Report.Output)
	require.NoError(t, err)
	titles, bodies := sections(t, string(data))
	require.Len(t, titles, 6)

	assert.Equal(t, bodies[titles[0]], bodies[titles[1]])
	assert.Equal(t, "game                    awardCount  \n\n"+
		"------------------------------------\n"+
		"The_Last_of_Us_Part_II           3  \n\n", bodies[titles[2]])
	assert.Equal(t, "category              \n\n"+
		"----------------------\n"+
		"Best_Score_and_Music  \n\n", bodies[titles[3]])
	assert.Equal(t, "developer    awardCount  \n\n"+
		"-------------------------\n"+
		"Naughty Dog           2  \n\n", bodies[titles[4]])
	assert.Equal(t, "genre             winCount  \n\n"+
		"----------------------------\n"+
		"Action-adventure         2  \n\n", bodies[titles[5]])
}
