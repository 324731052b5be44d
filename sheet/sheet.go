package sheet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	// SHEETS is the read-only OAuth2 scope needed to fetch a range.
	SHEETS = "https://www.googleapis.com/auth/spreadsheets.readonly"

	// DefaultRange excludes the header row: row 2 through the last populated row, columns A-Z.
	DefaultRange = "sheet1!A2:Z"

	FormattedValue   = "FORMATTED_VALUE"
	UnformattedValue = "UNFORMATTED_VALUE"
)

var (
	ErrEmptyResult  = errors.New("no values found")
	ErrFetchFailure = errors.New("fetch failed")
)

var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/([a-zA-Z0-9_-]+)(?:[/?#].*)?$`)
var spreadsheetID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
var area = regexp.MustCompile(`^(.+?)![a-zA-Z]+[0-9]*(?::[a-zA-Z]+[0-9]*)?$`)

// Snapshot is the block of cell values retrieved by a single fetch. Cells are string, float64,
// bool or nil as decoded from the Sheets API response. A snapshot is never modified after it
// has been fetched.
type Snapshot struct {
	Range   string    `json:"range"`
	Rows    [][]any   `json:"rows"`
	Fetched time.Time `json:"fetched"`
}

// Len returns the number of rows in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}

	return len(s.Rows)
}

// Fetcher reads a fixed range from a fixed spreadsheet.
type Fetcher struct {
	google      *sheets.Service
	spreadsheet string
	area        string
	render      string
}

// NewFetcher creates a Sheets client for the spreadsheet using the (already authorised) HTTP
// client. Additional client options are appended after the HTTP client option.
func NewFetcher(ctx context.Context, client *http.Client, spreadsheet, area, render string, opts ...option.ClientOption) (*Fetcher, error) {
	if err := ValidateRange(area); err != nil {
		return nil, err
	}

	if render == "" {
		render = FormattedValue
	}

	options := append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	google, err := sheets.NewService(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%v)", err)
	}

	return &Fetcher{
		google:      google,
		spreadsheet: spreadsheet,
		area:        area,
		render:      render,
	}, nil
}

// Fetch performs exactly one read of the configured range. An empty range is reported as
// ErrEmptyResult and any API or network failure as ErrFetchFailure.
func (f *Fetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	response, err := f.google.Spreadsheets.Values.
		Get(f.spreadsheet, f.area).
		ValueRenderOption(f.render).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}

	if response == nil || len(response.Values) == 0 {
		return nil, ErrEmptyResult
	}

	return &Snapshot{
		Range:   response.Range,
		Rows:    response.Values,
		Fetched: time.Now(),
	}, nil
}

// ParseURL extracts the spreadsheet ID from a Google Sheets URL. A bare spreadsheet ID is
// returned unchanged.
func ParseURL(url string) (string, error) {
	url = strings.TrimSpace(url)

	if match := spreadsheetURL.FindStringSubmatch(url); len(match) > 1 && match[1] != "" {
		return match[1], nil
	}

	if spreadsheetID.MatchString(url) {
		return url, nil
	}

	return "", fmt.Errorf("invalid spreadsheet URL - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'")
}

// ValidateRange checks that a range is in A1 notation with a sheet name e.g. 'sheet1!A2:Z'.
func ValidateRange(r string) error {
	if !area.MatchString(strings.TrimSpace(r)) {
		return fmt.Errorf("invalid range '%s' - expected something like '%s'", r, DefaultRange)
	}

	return nil
}
