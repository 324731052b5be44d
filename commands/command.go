package commands

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/sheetsearch/sheets-search/auth"
	"github.com/sheetsearch/sheets-search/config"
	"github.com/sheetsearch/sheets-search/logger"
	"github.com/sheetsearch/sheets-search/sheet"
)

const APP = "sheets-search"

// Options holds the global command line options.
type Options struct {
	Config string
	Debug  bool
}

// command holds the options common to the commands that read a spreadsheet. Empty values
// fall back to the configuration file.
type command struct {
	credentials string
	workdir     string
	url         string
	area        string
	bind        string
	debug       bool
}

var sugar = zap.NewNop().Sugar()

func (cmd *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path for the 'credentials.json' file")
	flagset.StringVar(&cmd.workdir, "workdir", cmd.workdir, "Directory for working files (tokens, etc)")
	flagset.StringVar(&cmd.url, "url", cmd.url, "Spreadsheet URL")
	flagset.StringVar(&cmd.area, "range", cmd.area, "Spreadsheet range e.g. 'sheet1!A2:Z'")

	return flagset
}

// configure loads the configuration file, applies the command line overrides and initialises
// logging.
func (cmd *command) configure(options *Options) (config.Config, error) {
	cmd.debug = options.Debug

	cfg, err := config.Load(options.Config)
	if err != nil {
		return config.Config{}, err
	}

	if v := strings.TrimSpace(cmd.credentials); v != "" {
		cfg.Google.Credentials = v
	}

	if v := strings.TrimSpace(cmd.workdir); v != "" {
		cfg.Google.Workdir = v
	}

	if v := strings.TrimSpace(cmd.url); v != "" {
		cfg.Sheet.URL = v
	}

	if v := strings.TrimSpace(cmd.area); v != "" {
		cfg.Sheet.Range = v
	}

	if v := strings.TrimSpace(cmd.bind); v != "" {
		cfg.SetBind(v)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	if err := initLogging(cfg, cmd.debug); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// fetcher creates a Sheets fetcher authorised with the token cached by the 'authorise'
// command.
func (cmd *command) fetcher(ctx context.Context, cfg config.Config) (*sheet.Fetcher, error) {
	if strings.TrimSpace(cfg.Sheet.URL) == "" {
		return nil, fmt.Errorf("--url is a required option")
	}

	spreadsheet, err := sheet.ParseURL(cfg.Sheet.URL)
	if err != nil {
		return nil, err
	}

	debugf("Spreadsheet - ID:%s  range:%s", spreadsheet, cfg.Sheet.Range)

	client, err := authorize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("authentication/authorization error (%v)", err)
	}

	return sheet.NewFetcher(ctx, client, spreadsheet, cfg.Sheet.Range, cfg.Sheet.ValueRender)
}

func authorize(ctx context.Context, cfg config.Config) (*http.Client, error) {
	broker, err := auth.NewBrokerFromFile(cfg.Google.Credentials, "", sheet.SHEETS)
	if err != nil {
		return nil, err
	}

	tokens := auth.TokenFile(cfg.Google.Credentials, cfg.Google.Workdir)
	token, err := auth.LoadToken(tokens)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w - run '%s authorise' first", auth.ErrNoToken, APP)
	} else if err != nil {
		return nil, err
	}

	return broker.Client(ctx, token), nil
}

// interruptible returns a context that is cancelled on CTRL-C or SIGTERM.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func initLogging(cfg config.Config, debug bool) error {
	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}

	l, err := logger.NewLogger(cfg.Logging.Format, level)
	if err != nil {
		return err
	}

	sugar = l.Sugar()

	return nil
}

func helpOptions(flagset *flag.FlagSet) {
	count := 0
	flag.VisitAll(func(f *flag.Flag) {
		count++
	})

	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})

	if count > 0 {
		fmt.Println()
		fmt.Println("  Options:")
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
		})
	}
}

func debugf(format string, args ...any) {
	sugar.Debugf(format, args...)
}

func infof(format string, args ...any) {
	sugar.Infof(format, args...)
}

func warnf(format string, args ...any) {
	sugar.Warnf(format, args...)
}
