package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/sheetsearch/sheets-search/auth"
	"github.com/sheetsearch/sheets-search/sheet"
)

var AuthoriseCmd = Authorise{
	command: command{
		credentials: "",
		workdir:     "",
		debug:       false,
	},
	listen: "localhost:8081",
	force:  false,
}

// Authorise runs the OAuth2 consent flow from the command line and caches the token for the
// other commands.
type Authorise struct {
	command
	listen string
	force  bool
}

type authorisation struct {
	token *oauth2.Token
	err   error
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises sheets-search to access a Google Sheets worksheet"
}

func (cmd *Authorise) Usage() string {
	return "--credentials <file> [--bind <address>]"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] authorise [options]\n", APP)
	fmt.Println()
	fmt.Println("  Authorises sheets-search to read Google Sheets worksheets and saves the access token to the")
	fmt.Println("  working directory. The credentials must allow http://<bind>/ as a redirect URI.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s authorise --credentials \"credentials.json\"\n", APP)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("authorise", flag.ExitOnError)

	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path for the 'credentials.json' file")
	flagset.StringVar(&cmd.workdir, "workdir", cmd.workdir, "Directory for working files (tokens, etc)")
	flagset.StringVar(&cmd.listen, "bind", cmd.listen, "Local address for the authorisation callback")
	flagset.BoolVar(&cmd.force, "consent", cmd.force, "Always show the consent screen")

	return flagset
}

func (cmd *Authorise) Execute(args ...any) error {
	options := args[0].(*Options)

	cfg, err := cmd.configure(options)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cmd.listen) == "" {
		return fmt.Errorf("--bind is a required option")
	}

	broker, err := auth.NewBrokerFromFile(cfg.Google.Credentials, fmt.Sprintf("http://%s/", cmd.listen), sheet.SHEETS)
	if err != nil {
		return fmt.Errorf("invalid credentials (%v)", err)
	}

	tokens := auth.TokenFile(cfg.Google.Credentials, cfg.Google.Workdir)
	existing := cached(tokens)

	ctx, cancel := interruptible()
	defer cancel()

	token, err := cmd.authorise(ctx, broker, existing)
	if err != nil {
		return fmt.Errorf("authorisation error (%v)", err)
	}

	if err := auth.SaveToken(tokens, token); err != nil {
		return fmt.Errorf("unable to save token (%v)", err)
	}

	infof("Saved access token to %s", tokens)

	return nil
}

// authorise starts an HTTP server on the bind address to receive the authorisation code and
// waits for the consent flow to complete (or be cancelled).
func (cmd *Authorise) authorise(ctx context.Context, broker *auth.Broker, existing *oauth2.Token) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", cmd.listen)
	if err != nil {
		return nil, err
	}

	state := uuid.NewString()
	authorised := make(chan authorisation, 1)

	srv := &http.Server{
		Handler:           callback(ctx, broker, state, authorised),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			warnf("%v", err)
		}
	}()

	defer func() {
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdown); err != nil {
			warnf("%v", err)
		}
	}()

	consent := broker.RequestAccess(state, existing, cmd.force)

	if err := browse(consent); err != nil {
		fmt.Println("Could not open the authorisation page in your browser - please open the following URL manually:")
		fmt.Println()
		fmt.Printf("    %s\n", consent)
		fmt.Println()
	}

	select {
	case <-ctx.Done():
		fmt.Printf("\n.. cancelled\n\n")
		return nil, ctx.Err()

	case result := <-authorised:
		return result.token, result.err
	}
}

// callback completes the consent request on the redirect and reports the outcome once.
func callback(ctx context.Context, broker *auth.Broker, state string, authorised chan<- authorisation) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, rq *http.Request) {
		query := rq.URL.Query()
		if !query.Has("code") && !query.Has("error") {
			http.NotFound(w, rq)
			return
		}

		debugf("authorisation callback - state:%v  scope:%v", query.Get("state"), query.Get("scope"))

		token, err := broker.Callback(ctx, state, query)
		if err != nil {
			http.Error(w, "Authorisation failed - you can close this window", http.StatusUnauthorized)
		} else {
			fmt.Fprintln(w, "Authorised - you can close this window")
		}

		select {
		case authorised <- authorisation{token, err}:
		default:
		}
	})
}

// cached returns the previously saved token, if any. An unreadable token file is reported and
// otherwise treated as no token.
func cached(file string) *oauth2.Token {
	token, err := auth.LoadToken(file)
	if err != nil {
		if !os.IsNotExist(err) {
			warnf("ignoring unreadable token file %s (%v)", file, err)
		}

		return nil
	}

	return token
}

func browse(url string) error {
	var command *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		command = exec.Command("open", url)
	case "windows":
		command = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		command = exec.Command("xdg-open", url)
	}

	return command.Start()
}
