package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sheetsearch/sheets-search/render"
	"github.com/sheetsearch/sheets-search/search"
	"github.com/sheetsearch/sheets-search/state"
)

var SearchCmd = Search{
	command: command{},
	query:   "",
	people:  "",
	xlsx:    "",
}

// Search fetches the configured range once and prints the cells matching a query.
type Search struct {
	command
	query  string
	people string
	xlsx   string
}

func (cmd *Search) Name() string {
	return "search"
}

func (cmd *Search) Description() string {
	return "Searches a Google Sheets worksheet range for matching cells"
}

func (cmd *Search) Usage() string {
	return "--url <url> [--query <text> | --people <count>] [--xlsx <file>]"
}

func (cmd *Search) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] search [options] --url <URL> [--query <text> | --people <count>]\n", APP)
	fmt.Println()
	fmt.Println("  Prints the cells containing the (case insensitive) query text as TSV. --people <N> searches")
	fmt.Println("  for 'N人'. An empty query matches every text cell.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s search --url \"https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms\" --people 3\n", APP)
	fmt.Println()
}

func (cmd *Search) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("search")

	flagset.StringVar(&cmd.query, "query", cmd.query, "Search text")
	flagset.StringVar(&cmd.people, "people", cmd.people, "People count preset e.g. 3 (searches for '3人')")
	flagset.StringVar(&cmd.xlsx, "xlsx", cmd.xlsx, "Writes the results to an Excel workbook instead of stdout")

	return flagset
}

func (cmd *Search) Execute(args ...any) error {
	options := args[0].(*Options)

	cfg, err := cmd.configure(options)
	if err != nil {
		return err
	}

	if cmd.query != "" && cmd.people != "" {
		return fmt.Errorf("--query and --people are mutually exclusive")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	f, err := cmd.fetcher(ctx, cfg)
	if err != nil {
		return err
	}

	var renderer render.Renderer = render.TSV{}
	var w io.Writer = os.Stdout

	if cmd.xlsx != "" {
		if err := os.MkdirAll(filepath.Dir(cmd.xlsx), 0770); err != nil {
			return err
		}

		file, err := os.Create(cmd.xlsx)
		if err != nil {
			return err
		}

		defer file.Close()

		renderer = render.XLSX{Sheet: "Search"}
		w = file
	}

	return cmd.search(ctx, f, renderer, w, time.Now().In(loc))
}

func (cmd *Search) search(ctx context.Context, f fetcher, renderer render.Renderer, w io.Writer, now time.Time) error {
	query := cmd.query
	if people := strings.TrimSpace(cmd.people); people != "" {
		query = search.PeopleCount(people)
	}

	snapshot, err := f.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("unable to retrieve data from sheet (%w)", err)
	}

	results := search.Search(snapshot.Rows, query)
	debugf("search '%s' - %v results", query, len(results))

	page := render.Page{
		Authenticated: true,
		Ready:         true,
		Loaded:        true,
		Query:         query,
		People:        cmd.people,
		Searched:      true,
		Rows:          render.Rows(results, state.New(snapshot.Len())),
		SearchedAt:    render.Timestamp(now, now.Location()),
	}

	return renderer.Render(w, page)
}
