package sparql

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/knakk/digest"
	knsparql "github.com/knakk/sparql"

	"github.com/starford/tgaquery/internal/apperr"
)

// Options configures an Endpoint.
type Options struct {
	// QueryURL is the SPARQL 1.1 Protocol query service.
	QueryURL string
	// DataURL is the SPARQL 1.1 Graph Store Protocol service.
	DataURL string
	Timeout time.Duration
	// Username and Password enable digest authentication when set.
	Username string
	Password string
}

// Endpoint is an HTTP connection to a SPARQL engine such as Fuseki.
type Endpoint struct {
	repo    *knsparql.Repo
	dataURL string
	client  *http.Client
}

// NewEndpoint prepares a client for the given services. No request is made.
func NewEndpoint(opts Options) (*Endpoint, error) {
	if opts.QueryURL == "" {
		return nil, fmt.Errorf("sparql: query url is required")
	}

	repoOpts := []func(*knsparql.Repo) error{knsparql.Timeout(opts.Timeout)}
	client := &http.Client{Timeout: opts.Timeout}
	if opts.Username != "" {
		repoOpts = append(repoOpts, knsparql.DigestAuth(opts.Username, opts.Password))
		client.Transport = digest.NewTransport(opts.Username, opts.Password)
	}

	repo, err := knsparql.NewRepo(opts.QueryURL, repoOpts...)
	if err != nil {
		return nil, fmt.Errorf("sparql: %w", err)
	}
	return &Endpoint{repo: repo, dataURL: opts.DataURL, client: client}, nil
}

// Source is a graph that can serialize itself as N-Triples.
type Source interface {
	Source() string
	Len() int
	WriteNTriples(ctx context.Context, w io.Writer) error
}

// Bind returns the dataset handle for src. With publish set, the engine's
// default graph is first replaced by src through the Graph Store Protocol;
// otherwise the engine is assumed to hold src already.
// Publication failures are classified as apperr.ErrLoad.
func (e *Endpoint) Bind(ctx context.Context, src Source, publish bool) (*Dataset, error) {
	if publish {
		if err := e.replaceDefaultGraph(ctx, src); err != nil {
			return nil, fmt.Errorf("publish %s: %w: %w", src.Source(), apperr.ErrLoad, err)
		}
	}
	return &Dataset{endpoint: e, source: src.Source(), triples: src.Len()}, nil
}

func (e *Endpoint) replaceDefaultGraph(ctx context.Context, src Source) error {
	if e.dataURL == "" {
		return fmt.Errorf("sparql: data url is required to publish a graph")
	}

	var body bytes.Buffer
	if err := src.WriteNTriples(ctx, &body); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, defaultGraphURL(e.dataURL), &body)
	if err != nil {
		return fmt.Errorf("sparql: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/n-triples")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("sparql: put graph: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sparql: put graph: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
}

func defaultGraphURL(dataURL string) string {
	if strings.Contains(dataURL, "?") {
		return dataURL + "&default"
	}
	return dataURL + "?default"
}

// selectQuery evaluates query on the engine. Every failure is an apperr.ErrQuery.
func (e *Endpoint) selectQuery(ctx context.Context, query string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrQuery, err)
	}
	res, err := e.repo.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrQuery, err)
	}
	return tableOf(res), nil
}

func tableOf(res *knsparql.Results) *Table {
	t := &Table{
		Vars: append([]string(nil), res.Head.Vars...),
		Rows: make([]Row, 0, len(res.Results.Bindings)),
	}
	for _, b := range res.Results.Bindings {
		row := make(Row, len(b))
		for name, term := range b {
			row[name] = valueOf(term.Type, term.Value, term.DataType, term.Lang)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
