// Package testutil provides a fake SPARQL engine and fixture helpers for tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Term is one bound value in a canned SPARQL JSON result.
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// URI returns an IRI term.
func URI(v string) Term { return Term{Type: "uri", Value: v} }

// Literal returns a plain literal term.
func Literal(v string) Term { return Term{Type: "literal", Value: v} }

// Typed returns a literal term with a datatype.
func Typed(v, datatype string) Term { return Term{Type: "literal", Value: v, Datatype: datatype} }

// Binding is one result row.
type Binding map[string]Term

type resultsDoc struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

type canned struct {
	match string
	doc   resultsDoc
}

// SPARQLServer is an httptest server speaking just enough of the SPARQL 1.1
// Protocol and Graph Store Protocol for the report pipeline. Queries are
// answered from canned results matched by substring, in registration order.
type SPARQLServer struct {
	*httptest.Server

	mu      sync.Mutex
	canned  []canned
	queries []string
	uploads []string
	// UploadStatus overrides the status returned for graph uploads when non-zero.
	UploadStatus int
}

// NewSPARQLServer starts a fake engine that is closed when the test ends.
func NewSPARQLServer(t *testing.T) *SPARQLServer {
	t.Helper()
	s := &SPARQLServer{}

	r := chi.NewRouter()
	r.Get("/tga/query", s.handleQuery)
	r.Post("/tga/query", s.handleQuery)
	r.Put("/tga/data", s.handleUpload)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// QueryURL returns the query service address.
func (s *SPARQLServer) QueryURL() string { return s.URL + "/tga/query" }

// DataURL returns the graph store address.
func (s *SPARQLServer) DataURL() string { return s.URL + "/tga/data" }

// Respond registers the result returned for any query containing match.
func (s *SPARQLServer) Respond(match string, vars []string, rows ...Binding) {
	var doc resultsDoc
	doc.Head.Vars = vars
	doc.Results.Bindings = append([]Binding{}, rows...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned = append(s.canned, canned{match: match, doc: doc})
}

// Queries returns every query text received, in order.
func (s *SPARQLServer) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// Uploads returns every graph body received, in order.
func (s *SPARQLServer) Uploads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads...)
}

func (s *SPARQLServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	query := r.FormValue("query")
	if query == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/sparql-query") {
		body, _ := io.ReadAll(r.Body)
		query = string(body)
	}

	s.mu.Lock()
	s.queries = append(s.queries, query)
	var doc *resultsDoc
	for i := range s.canned {
		if strings.Contains(query, s.canned[i].match) {
			doc = &s.canned[i].doc
			break
		}
	}
	s.mu.Unlock()

	if doc == nil {
		http.Error(w, "Parse error: no canned result for query", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/sparql-results+json")
	_ = json.NewEncoder(w).Encode(doc)
}

func (s *SPARQLServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.URL.Query()["default"]; !ok {
		http.Error(w, "only the default graph is supported", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.uploads = append(s.uploads, string(body))
	status := s.UploadStatus
	s.mu.Unlock()

	if status == 0 {
		status = http.StatusNoContent
	}
	w.WriteHeader(status)
}

// Fixture returns the absolute path of a file under internal/graph/testdata.
func Fixture(t *testing.T, name string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("testutil: cannot locate fixtures")
	}
	path := filepath.Join(filepath.Dir(file), "..", "graph", "testdata", name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("testutil: fixture %s: %v", name, err)
	}
	return path
}
