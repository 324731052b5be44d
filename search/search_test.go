package search

import (
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var snapshot = [][]any{
	{"Alice", "3人"},
	{"Bob", "5人"},
}

func TestSearch(t *testing.T) {
	expected := []Result{
		{Text: "3人", Row: 0},
	}

	results := Search(snapshot, "3人")

	if !reflect.DeepEqual(results, expected) {
		t.Errorf("Incorrect search results\n   expected: %v\n   got:      %v\n", expected, results)
	}
}

func TestSearchWithPeopleCount(t *testing.T) {
	expected := []Result{
		{Text: "5人", Row: 1},
	}

	query := PeopleCount("5")
	if query != "5人" {
		t.Fatalf("Incorrect people count query - expected:%v, got:%v", "5人", query)
	}

	results := Search(snapshot, query)

	if !reflect.DeepEqual(results, expected) {
		t.Errorf("Incorrect search results\n   expected: %v\n   got:      %v\n", expected, results)
	}
}

func TestSearchWithEmptyQuery(t *testing.T) {
	expected := []Result{
		{Text: "Alice", Row: 0},
		{Text: "3人", Row: 0},
		{Text: "Bob", Row: 1},
		{Text: "5人", Row: 1},
	}

	results := Search(snapshot, "")

	if !reflect.DeepEqual(results, expected) {
		t.Errorf("Incorrect search results\n   expected: %v\n   got:      %v\n", expected, results)
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	rows := [][]any{
		{"ALICE", "alice", "Alicia", "Bob"},
		{"Malice"},
	}

	expected := []Result{
		{Text: "ALICE", Row: 0},
		{Text: "alice", Row: 0},
		{Text: "Malice", Row: 1},
	}

	results := Search(rows, "aLiCe")

	if !reflect.DeepEqual(results, expected) {
		t.Errorf("Incorrect search results\n   expected: %v\n   got:      %v\n", expected, results)
	}
}

func TestSearchIgnoresNonStringCells(t *testing.T) {
	rows := [][]any{
		{float64(3), "3人", nil, true},
		{},
		{float64(33), "33"},
	}

	expected := []Result{
		{Text: "3人", Row: 0},
		{Text: "33", Row: 2},
	}

	results := Search(rows, "3")

	if !reflect.DeepEqual(results, expected) {
		t.Errorf("Incorrect search results\n   expected: %v\n   got:      %v\n", expected, results)
	}

	if results := Search(rows, ""); len(results) != 2 {
		t.Errorf("Expected empty query to match only string cells, got %v", results)
	}
}

func TestSearchWithNoMatches(t *testing.T) {
	results := Search(snapshot, "Carol")

	if results == nil || len(results) != 0 {
		t.Errorf("Expected empty result set, got %#v", results)
	}

	if results := Search(nil, "Carol"); len(results) != 0 {
		t.Errorf("Expected empty result set for empty snapshot, got %v", results)
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	for _, q := range []string{"", "3", "人", "b", "Z"} {
		first := Search(snapshot, q)
		second := Search(snapshot, q)

		if !reflect.DeepEqual(first, second) {
			t.Errorf("Search(%q) not idempotent\n   first:  %v\n   second: %v\n", q, first, second)
		}
	}
}

func TestSearchResultsContainQuery(t *testing.T) {
	fold := cases.Lower(language.Und)
	rows := [][]any{
		{"Tokyo", "3人", "tokyo tower"},
		{"Osaka", float64(2), "2人", "KYOTO"},
		{"Kyoto", "5人"},
	}

	for _, q := range []string{"to", "KYO", "人", "o", ""} {
		for _, r := range Search(rows, q) {
			if r.Row < 0 || r.Row >= len(rows) {
				t.Fatalf("Search(%q) returned invalid row index %v", q, r.Row)
			}

			if !strings.Contains(fold.String(r.Text), fold.String(q)) {
				t.Errorf("Search(%q) returned non-matching text %q", q, r.Text)
			}
		}
	}
}

func TestPeopleCount(t *testing.T) {
	tests := map[string]string{
		"":   "",
		" ":  "",
		"1":  "1人",
		"10": "10人",
	}

	for n, expected := range tests {
		if q := PeopleCount(n); q != expected {
			t.Errorf("Incorrect query for %q - expected:%q, got:%q", n, expected, q)
		}
	}
}
