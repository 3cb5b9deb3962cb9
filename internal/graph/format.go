package graph

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knakk/rdf"
)

// Syntax names accepted by ParseSyntax and the report.format setting.
const (
	SyntaxRDFXML   = "rdfxml"
	SyntaxTurtle   = "turtle"
	SyntaxNTriples = "ntriples"
)

// Syntaxes lists every supported syntax name.
var Syntaxes = []string{SyntaxRDFXML, SyntaxTurtle, SyntaxNTriples}

// ParseSyntax maps a syntax name to its decoder format.
func ParseSyntax(name string) (rdf.Format, error) {
	switch strings.ToLower(name) {
	case SyntaxRDFXML:
		return rdf.RDFXML, nil
	case SyntaxTurtle:
		return rdf.Turtle, nil
	case SyntaxNTriples:
		return rdf.NTriples, nil
	default:
		return 0, fmt.Errorf("graph: unsupported syntax %q", name)
	}
}

// DetectSyntax picks a syntax name from the document's file extension.
// Unknown extensions fall back to RDF/XML, the ontology's native serialization.
func DetectSyntax(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl":
		return SyntaxTurtle
	case ".nt":
		return SyntaxNTriples
	default:
		return SyntaxRDFXML
	}
}
