// Package render projects search results and the checked state of their rows onto a page.
package render

import (
	"io"
	"time"

	"github.com/sheetsearch/sheets-search/search"
	"github.com/sheetsearch/sheets-search/state"
)

// TimeFormat is the layout of the 'last searched' label.
const TimeFormat = "2006/1/2 15:04:05"

// Row is a single displayed result. Row is the snapshot row index the checkbox is bound to.
type Row struct {
	Text    string
	Row     int
	Checked bool
}

// Page is everything needed to draw the search page.
type Page struct {
	Authenticated bool
	Ready         bool
	Loaded        bool
	Query         string
	People        string
	PeopleCounts  []string
	Searched      bool
	Rows          []Row
	SearchedAt    string
}

// Renderer draws a page to a writer.
type Renderer interface {
	Render(w io.Writer, page Page) error
}

// Rows builds one display row per result, in result order, with the checked state read from
// the store. Results that share a row index all show the same stored state.
func Rows(results []search.Result, store *state.Store) []Row {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, Row{
			Text:    r.Text,
			Row:     r.Row,
			Checked: store.Checked(r.Row),
		})
	}

	return rows
}

// Timestamp formats the time of a search for the 'last searched' label.
func Timestamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}

	if loc == nil {
		loc = time.Local
	}

	return t.In(loc).Format(TimeFormat)
}
