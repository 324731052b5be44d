package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zapcore"

	"github.com/sheetsearch/sheets-search/config"
	"github.com/sheetsearch/sheets-search/render"
	"github.com/sheetsearch/sheets-search/sheet"
)

type stub struct {
	snapshot *sheet.Snapshot
	err      error
}

func (s stub) Fetch(ctx context.Context) (*sheet.Snapshot, error) {
	return s.snapshot, s.err
}

var snapshot = sheet.Snapshot{
	Range: "sheet1!A2:C4",
	Rows: [][]any{
		{"Alice", "3人", "Tokyo"},
		{"Bob", "5人"},
		{"Carol", "13人", 42.0},
	},
}

func TestConfigureWithOverrides(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sheets-search.yaml")
	yaml := `
google:
  credentials: /etc/sheets-search/credentials.json
sheet:
  url: 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms
  range: "sheet1!A2:Z"
`
	if err := os.WriteFile(file, []byte(yaml), 0600); err != nil {
		t.Fatalf("%v", err)
	}

	cmd := command{
		credentials: "local.json",
		area:        "people!B2:D",
	}

	cfg, err := cmd.configure(&Options{Config: file, Debug: true})
	if err != nil {
		t.Fatalf("Unexpected error (%v)", err)
	}

	if cfg.Google.Credentials != "local.json" {
		t.Errorf("Incorrect credentials - expected:%v, got:%v", "local.json", cfg.Google.Credentials)
	}

	if cfg.Sheet.Range != "people!B2:D" {
		t.Errorf("Incorrect range - expected:%v, got:%v", "people!B2:D", cfg.Sheet.Range)
	}

	if cfg.Sheet.URL != "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" {
		t.Errorf("Incorrect URL - expected:%v, got:%v", "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms", cfg.Sheet.URL)
	}

	if !cmd.debug {
		t.Errorf("Expected --debug to be set")
	}

	if !sugar.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("Expected --debug to enable the command logger")
	}
}

func TestConfigureWithInvalidRange(t *testing.T) {
	cmd := command{area: "A2:Z"}

	if _, err := cmd.configure(&Options{Config: config.DefaultConfig}); err == nil {
		t.Errorf("Expected error for range without sheet name")
	}
}

func TestConfigureWithMissingConfigFile(t *testing.T) {
	cmd := command{}

	if _, err := cmd.configure(&Options{Config: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Errorf("Expected error for missing configuration file")
	}
}

func TestFetcherWithoutURL(t *testing.T) {
	cmd := command{}
	cfg := config.Default()

	if _, err := cmd.fetcher(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "--url") {
		t.Errorf("Expected --url error, got %v", err)
	}
}

func TestGet(t *testing.T) {
	expected := "Alice\t3人\tTokyo\nBob\t5人\t\nCarol\t13人\t42\n"

	file := filepath.Join(t.TempDir(), "data", "people.tsv")
	cmd := Get{}

	if err := cmd.get(context.Background(), stub{snapshot: &snapshot}, file); err != nil {
		t.Fatalf("Unexpected error (%v)", err)
	}

	bytes, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("Error reading TSV file (%v)", err)
	}

	if string(bytes) != expected {
		t.Errorf("Incorrect TSV file\n   expected: %q\n   got:      %q", expected, string(bytes))
	}
}

func TestGetWithEmptyRange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "people.tsv")
	cmd := Get{}

	err := cmd.get(context.Background(), stub{err: sheet.ErrEmptyResult}, file)
	if !errors.Is(err, sheet.ErrEmptyResult) {
		t.Errorf("Expected ErrEmptyResult, got %v", err)
	}

	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("Expected no files after failed get, got %v", entries)
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		query    string
		people   string
		expected string
	}{
		{"3人", "", "Text\tRow\tChecked\n3人\t0\tfalse\n13人\t2\tfalse\n"},
		{"", "5", "Text\tRow\tChecked\n5人\t1\tfalse\n"},
		{"ALICE", "", "Text\tRow\tChecked\nAlice\t0\tfalse\n"},
		{"xyz", "", "Text\tRow\tChecked\n"},
	}

	for _, test := range tests {
		cmd := Search{query: test.query, people: test.people}

		var b bytes.Buffer
		if err := cmd.search(context.Background(), stub{snapshot: &snapshot}, render.TSV{}, &b, time.Now()); err != nil {
			t.Fatalf("Unexpected error (%v)", err)
		}

		if b.String() != test.expected {
			t.Errorf("query:%q people:%q\n   expected: %q\n   got:      %q", test.query, test.people, test.expected, b.String())
		}
	}
}

func TestSearchToXLSX(t *testing.T) {
	cmd := Search{people: "3"}
	now := time.Date(2024, time.March, 5, 10, 2, 3, 0, time.UTC)

	var b bytes.Buffer
	if err := cmd.search(context.Background(), stub{snapshot: &snapshot}, render.XLSX{Sheet: "Search"}, &b, now); err != nil {
		t.Fatalf("Unexpected error (%v)", err)
	}

	f, err := excelize.OpenReader(&b)
	if err != nil {
		t.Fatalf("Error reading workbook (%v)", err)
	}

	defer f.Close()

	rows, err := f.GetRows("Search")
	if err != nil {
		t.Fatalf("Error reading worksheet (%v)", err)
	}

	texts := []string{}
	for _, row := range rows[1:] {
		texts = append(texts, row[0])
	}

	if !reflect.DeepEqual(texts, []string{"3人", "13人"}) {
		t.Errorf("Incorrect results\n   expected: %v\n   got:      %v", []string{"3人", "13人"}, texts)
	}

	if v, _ := f.GetCellValue("Search", "F2"); v != "2024/3/5 10:02:03" {
		t.Errorf("Incorrect search time - expected:%v, got:%v", "2024/3/5 10:02:03", v)
	}
}

func TestSearchWithFetchFailure(t *testing.T) {
	cmd := Search{query: "Alice"}

	err := cmd.search(context.Background(), stub{err: sheet.ErrFetchFailure}, render.TSV{}, &bytes.Buffer{}, time.Now())
	if !errors.Is(err, sheet.ErrFetchFailure) {
		t.Errorf("Expected ErrFetchFailure, got %v", err)
	}
}

func TestConfigureWithBind(t *testing.T) {
	tests := []struct {
		yaml     string
		redirect string
	}{
		{"http:\n  bind: localhost:8080\n", "http://0.0.0.0:9000/auth/callback"},
		{"sheet:\n  range: \"sheet1!A2:Z\"\n", "http://0.0.0.0:9000/auth/callback"},
		{"google:\n  redirect_url: https://search.example.com/auth/callback\n", "https://search.example.com/auth/callback"},
	}

	for _, test := range tests {
		file := filepath.Join(t.TempDir(), "sheets-search.yaml")
		if err := os.WriteFile(file, []byte(test.yaml), 0600); err != nil {
			t.Fatalf("%v", err)
		}

		cmd := command{bind: "0.0.0.0:9000"}

		cfg, err := cmd.configure(&Options{Config: file})
		if err != nil {
			t.Fatalf("Unexpected error (%v)", err)
		}

		if cfg.HTTP.Bind != "0.0.0.0:9000" {
			t.Errorf("Incorrect bind address - expected:%v, got:%v", "0.0.0.0:9000", cfg.HTTP.Bind)
		}

		if cfg.Google.RedirectURL != test.redirect {
			t.Errorf("Incorrect redirect URL - expected:%v, got:%v", test.redirect, cfg.Google.RedirectURL)
		}
	}
}
