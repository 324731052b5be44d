package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sheetsearch/sheets-search/sheet"
)

var GetCmd = Get{
	command: command{
		credentials: "",
		workdir:     "",
		url:         "",
		area:        "",
		debug:       false,
	},

	file: time.Now().Format("2006-01-02T150405.tsv"),
}

// Get downloads the configured range to a TSV file.
type Get struct {
	command
	file string
}

type fetcher interface {
	Fetch(ctx context.Context) (*sheet.Snapshot, error)
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Retrieves the search range from a Google Sheets worksheet and stores it to a local file"
}

func (cmd *Get) Usage() string {
	return "--credentials <file> --url <url> --file <file>"
}

func (cmd *Get) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] get [options] --url <URL> --range <range> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads a Google Sheets worksheet range to a TSV file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s --debug get --credentials \"credentials.json\" \\\n", APP)
	fmt.Println(`                          --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                          --range "sheet1!A2:Z" \`)
	fmt.Println(`                          --file "example.tsv"`)
	fmt.Println()
}

func (cmd *Get) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("get")

	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to '<yyyy-mm-ddTHHmmss>.tsv'")

	return flagset
}

func (cmd *Get) Execute(args ...any) error {
	options := args[0].(*Options)

	cfg, err := cmd.configure(options)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	ctx, cancel := interruptible()
	defer cancel()

	f, err := cmd.fetcher(ctx, cfg)
	if err != nil {
		return err
	}

	return cmd.get(ctx, f, cmd.file)
}

// get writes the snapshot to a temporary file and then renames it to the destination file, so
// that a failed fetch never leaves a partial file behind.
func (cmd *Get) get(ctx context.Context, f fetcher, file string) error {
	snapshot, err := f.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("unable to retrieve data from sheet (%w)", err)
	}

	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".sheets-search-*.tsv")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := sheet.WriteTSV(tmp, snapshot); err != nil {
		return fmt.Errorf("error creating TSV file (%v)", err)
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), file); err != nil {
		return err
	}

	infof("Retrieved %v rows (%s) to file %s", snapshot.Len(), snapshot.Range, file)

	return nil
}
