// Package sparql talks to the external RDF/SPARQL engine and models its results.
package sparql

import (
	"context"

	"github.com/starford/tgaquery/internal/ontology"
)

// Kind classifies a bound result value.
type Kind int

const (
	KindIRI Kind = iota
	KindLiteral
	KindTypedLiteral
	KindBlank
)

// Value is one bound result term as the engine reported it.
type Value struct {
	Kind     Kind
	Lexical  string
	Datatype string
	Lang     string
}

// String renders the value the way the engine prints terms:
// IRIs verbatim, blank nodes as _:label, plain literals as their lexical form
// (with @lang when tagged) and typed literals as lexical^^datatype.
func (v Value) String() string {
	switch v.Kind {
	case KindBlank:
		return "_:" + v.Lexical
	case KindTypedLiteral:
		return v.Lexical + "^^" + v.Datatype
	case KindLiteral:
		if v.Lang != "" {
			return v.Lexical + "@" + v.Lang
		}
		return v.Lexical
	default:
		return v.Lexical
	}
}

// Row maps variable names to values. Unbound variables are absent or nil.
type Row map[string]*Value

// Get returns the value bound to name, if any.
func (r Row) Get(name string) (*Value, bool) {
	v, ok := r[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Table is the ordered result of one SELECT query.
// Vars is the query's projection in declared order; Rows keep engine order.
type Table struct {
	Vars []string
	Rows []Row
}

// Querier evaluates SELECT queries against one loaded graph.
type Querier interface {
	Select(ctx context.Context, query string) (*Table, error)
}

// valueOf builds a Value from a SPARQL JSON results term.
func valueOf(kind, value, datatype, lang string) *Value {
	switch kind {
	case "uri":
		return &Value{Kind: KindIRI, Lexical: value}
	case "bnode":
		return &Value{Kind: KindBlank, Lexical: value}
	}
	if lang != "" {
		return &Value{Kind: KindLiteral, Lexical: value, Lang: lang}
	}
	if datatype == "" || datatype == ontology.XSDString {
		return &Value{Kind: KindLiteral, Lexical: value}
	}
	return &Value{Kind: KindTypedLiteral, Lexical: value, Datatype: datatype}
}
