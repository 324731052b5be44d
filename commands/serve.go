package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sheetsearch/sheets-search/auth"
	"github.com/sheetsearch/sheets-search/config"
	"github.com/sheetsearch/sheets-search/logger"
	"github.com/sheetsearch/sheets-search/session"
	"github.com/sheetsearch/sheets-search/sheet"
	"github.com/sheetsearch/sheets-search/web"
)

var ServeCmd = Serve{
	command: command{
		bind: "",
	},
}

// Serve runs the search web application.
type Serve struct {
	command
}

func (cmd *Serve) Name() string {
	return "serve"
}

func (cmd *Serve) Description() string {
	return "Runs the search page web server"
}

func (cmd *Serve) Usage() string {
	return "[--bind <address>] [--url <url>]"
}

func (cmd *Serve) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] serve [options]\n", APP)
	fmt.Println()
	fmt.Println("  Serves the search page until interrupted. Each browser signs in with its own Google account,")
	fmt.Println("  the worksheet range is fetched once per sign in and searched from memory.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s --config sheets-search.yaml serve --bind 0.0.0.0:8080\n", APP)
	fmt.Println()
}

func (cmd *Serve) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("serve")

	flagset.StringVar(&cmd.bind, "bind", cmd.bind, "HTTP server address e.g. 'localhost:8080'")

	return flagset
}

func (cmd *Serve) Execute(args ...any) error {
	options := args[0].(*Options)

	cfg, err := cmd.configure(options)
	if err != nil {
		return err
	}

	log := sugar.Desugar()
	defer log.Sync()

	ctx, cancel := interruptible()
	defer cancel()

	return cmd.serve(logger.ContextWithLogger(ctx, log), cfg)
}

func (cmd *Serve) serve(ctx context.Context, cfg config.Config) error {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(cfg.Sheet.URL) == "" {
		return fmt.Errorf("sheet.url (or --url) is required")
	}

	spreadsheet, err := sheet.ParseURL(cfg.Sheet.URL)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	gate := session.NewGate(func() {
		log.Info("sign in enabled")
	})

	broker, err := auth.NewBrokerFromFile(cfg.Google.Credentials, cfg.Google.RedirectURL, sheet.SHEETS)
	if err != nil {
		return fmt.Errorf("invalid credentials (%v)", err)
	}

	if cfg.Google.RevokeURL != "" {
		broker = broker.WithRevokeURL(cfg.Google.RevokeURL)
	}

	log.Info("OAuth2 client configured", zap.String("redirect", cfg.Google.RedirectURL))
	gate.OAuthReady()

	fetcher := func(ctx context.Context, client *http.Client) (web.Fetcher, error) {
		return sheet.NewFetcher(ctx, client, spreadsheet, cfg.Sheet.Range, cfg.Sheet.ValueRender)
	}

	// ... verify the Sheets client can be created before offering sign in
	if _, err := fetcher(ctx, http.DefaultClient); err != nil {
		return err
	}

	log.Info("Sheets client configured", zap.String("spreadsheet", spreadsheet), zap.String("range", cfg.Sheet.Range))
	gate.SheetsReady()

	store, err := newSessionStore(cfg.Session)
	if err != nil {
		return err
	}

	sessions := session.NewManager(store, cfg.SessionTTL())
	defer sessions.Close()

	server, err := web.NewServer(broker, fetcher, sessions, gate, log, web.Options{
		PeopleCounts:  cfg.Search.PeopleCounts,
		Location:      loc,
		SecureCookies: cfg.HTTP.SecureCookies,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Bind,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("address", cfg.HTTP.Bind), zap.String("session", cfg.Session.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err

	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdown, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdown); err != nil {
		return fmt.Errorf("shutdown (%v)", err)
	}

	return nil
}

func newSessionStore(cfg config.SessionConfig) (session.Store, error) {
	switch cfg.Driver {
	case "redis":
		return session.NewRedisStore(session.RedisConfig{
			Addrs:     cfg.Addrs,
			Password:  cfg.Password,
			KeyPrefix: cfg.KeyPrefix,
		})

	default:
		return session.NewMemoryStore(), nil
	}
}
