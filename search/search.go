// Package search implements the substring search over a fetched snapshot.
package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Result is a matched cell and the index of the snapshot row it came from.
type Result struct {
	Text string `json:"text"`
	Row  int    `json:"row"`
}

// Search returns every string cell containing the query, ignoring case, in row-major order.
// A row contributes one result per matching cell. Non-string cells never match and an empty
// query matches every string cell.
func Search(rows [][]any, query string) []Result {
	fold := cases.Lower(language.Und)
	q := fold.String(query)

	results := []Result{}
	for row, cells := range rows {
		for _, cell := range cells {
			if text, ok := cell.(string); ok && strings.Contains(fold.String(text), q) {
				results = append(results, Result{
					Text: text,
					Row:  row,
				})
			}
		}
	}

	return results
}

// PeopleCount returns the query for a people-count option e.g. "5" => "5人". An empty
// selection yields the empty query.
func PeopleCount(n string) string {
	if n = strings.TrimSpace(n); n == "" {
		return ""
	}

	return n + "人"
}
