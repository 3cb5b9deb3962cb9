// Package report renders query results as fixed-width text tables.
package report

import (
	"regexp"
	"strings"

	"github.com/starford/tgaquery/internal/ontology"
	"github.com/starford/tgaquery/internal/sparql"
)

// Null is printed for unbound variables.
const Null = "null"

var numericPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// IsNumeric reports whether s is an integer or decimal and is therefore right-aligned.
func IsNumeric(s string) bool {
	return numericPattern.MatchString(s)
}

// Clean applies the textual cleanup rules to a term's printed form:
// ontology IRIs keep only the part after the last '#', a datatype annotation
// starting at "^^" is dropped, and one pair of enclosing double quotes is removed.
func Clean(s string) string {
	s = ontology.LocalName(s)
	if i := strings.Index(s, "^^"); i >= 0 {
		s = s[:i]
	}
	return unquote(s)
}

// Display renders a result value as it appears in the report: the cleaned
// form of its Jena-style text. nil renders as Null.
func Display(v *sparql.Value) string {
	if v == nil {
		return Null
	}
	return Clean(v.String())
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
