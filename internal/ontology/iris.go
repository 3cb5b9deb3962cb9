// Package ontology holds the vocabulary of The Game Awards 2020-2024 ontology.
package ontology

import (
	"strings"
)

// Namespace is the base IRI of the awards-ceremony ontology.
const Namespace = "http://www.semanticweb.org/lukas/ontologies/2025/4/TheGameAwards2020-2024#"

// FragmentMarker identifies IRIs minted in Namespace when only their
// textual form is available.
const FragmentMarker = "TheGameAwards2020-2024#"

// Standard namespaces referenced by the queries.
const (
	RDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSD = "http://www.w3.org/2001/XMLSchema#"

	RDFType     = RDF + "type"
	XSDString   = XSD + "string"
	XSDInteger  = XSD + "integer"
	XSDDateTime = XSD + "dateTime"
)

// Class local names.
const (
	// ClassTGA is one yearly award ceremony.
	ClassTGA = "TGA"
	// ClassGame is a nominated or winning title.
	ClassGame = "Game"
	// ClassCategory is an award category presented at a ceremony.
	ClassCategory = "Category"
)

// Property local names.
const (
	PropHost        = "Host"
	PropEventDate   = "TGAEventDate"
	PropHasCategory = "hasCategory"
	PropWon         = "won"
	PropDeveloper   = "Developer"
	PropGenre       = "Genre"
)

// Classes lists the ontology classes reported in load statistics.
var Classes = []string{ClassTGA, ClassGame, ClassCategory}

// IRI expands a local name into a full ontology IRI.
func IRI(local string) string {
	return Namespace + local
}

// LocalName returns the part of iri after its final '#' when iri belongs to
// the ontology, and iri unchanged otherwise.
func LocalName(iri string) string {
	if !InNamespace(iri) {
		return iri
	}
	return iri[strings.LastIndex(iri, "#")+1:]
}

// InNamespace reports whether iri was minted in the ontology namespace.
func InNamespace(iri string) bool {
	return strings.Contains(iri, FragmentMarker)
}

// Prologue returns the SPARQL prefix declarations every query starts with:
// the default prefix bound to Namespace and xsd bound to XSD.
func Prologue() string {
	var sb strings.Builder
	sb.WriteString("PREFIX : <" + Namespace + ">\n")
	sb.WriteString("PREFIX xsd: <" + XSD + ">\n")
	return sb.String()
}
