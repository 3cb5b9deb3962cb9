// Package queries declares the fixed questions the report asks of the ontology.
package queries

import (
	"github.com/starford/tgaquery/internal/ontology"
)

// Spec is one titled query of the report.
type Spec struct {
	// Name is a stable identifier used in logs and metrics.
	Name  string
	Title string
	Text  string
}

// Query names, in report order.
const (
	AllEvents          = "all_events"
	KnownHostsAndDates = "known_hosts_and_dates"
	MostAwardedGame    = "most_awarded_game_2020"
	MissingCategories  = "categories_missing_2020"
	TopDeveloper       = "top_developer"
	TopGenre           = "top_genre"
)

// The calendar-year window of the 2020 questions, as xsd:dateTime literals.
const (
	windowStart = `"2020-01-01T00:00:00"^^xsd:dateTime`
	windowEnd   = `"2021-01-01T00:00:00"^^xsd:dateTime`
)

const yearFilter = "FILTER(?date >= " + windowStart + " && ?date < " + windowEnd + ")"

// Catalog returns the six report queries in the order they are run.
// Every query carries an ORDER BY, so callers must keep the engine's row order.
func Catalog() []Spec {
	return []Spec{
		{
			Name:  AllEvents,
			Title: "All Award Events with Optional Hosts and Dates",
			Text: build(`SELECT ?event ?host ?date
WHERE {
  ?event a :TGA .
  OPTIONAL { ?event :Host ?host . }
  OPTIONAL { ?event :TGAEventDate ?date . }
}
ORDER BY ?event
`),
		},
		{
			Name:  KnownHostsAndDates,
			Title: "Award Events with Known Hosts and Dates",
			Text: build(`SELECT ?event ?host ?date
WHERE {
  ?event a :TGA .
  ?event :Host ?host .
  ?event :TGAEventDate ?date .
  FILTER(BOUND(?host) && BOUND(?date))
}
ORDER BY ?event
`),
		},
		{
			Name:  MostAwardedGame,
			Title: "Query for most awarded game in 2020",
			Text: build(`SELECT ?game (COUNT(?category) AS ?awardCount)
WHERE {
  ?game a :Game ;
        :won ?category .
  ?event a :TGA ;
       :TGAEventDate ?date ;
       :hasCategory ?category .
  ` + yearFilter + `
}
GROUP BY ?game
ORDER BY DESC(?awardCount)
LIMIT 1
`),
		},
		{
			Name:  MissingCategories,
			Title: "Categories Not Presented in 2020",
			Text: build(`SELECT ?category
WHERE {
  ?category a :Category .
  FILTER NOT EXISTS {
    ?tga a :TGA ;
         :TGAEventDate ?date ;
         :hasCategory ?category .
    ` + yearFilter + `
  }
}
ORDER BY ?category
`),
		},
		{
			Name:  TopDeveloper,
			Title: "Developer with Most Awards",
			Text: build(`SELECT ?developer (COUNT(DISTINCT ?game) AS ?awardCount)
WHERE {
  ?game a :Game ;
        :won ?category ;
        :Developer ?developerValue .
  BIND(str(?developerValue) AS ?developer)
}
GROUP BY ?developer
ORDER BY DESC(?awardCount)
LIMIT 1
`),
		},
		{
			Name:  TopGenre,
			Title: "Genre with Highest Number of Award-Winning Titles",
			Text: build(`SELECT ?genre (COUNT(DISTINCT ?game) AS ?winCount)
WHERE {
  ?game a :Game ;
        :won ?category ;
        :Genre ?genreValue .
  BIND(str(?genreValue) AS ?genre)
}
GROUP BY ?genre
ORDER BY DESC(?winCount)
LIMIT 1
`),
		},
	}
}

func build(body string) string {
	return ontology.Prologue() + body
}
