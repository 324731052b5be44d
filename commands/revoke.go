package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/sheetsearch/sheets-search/auth"
	"github.com/sheetsearch/sheets-search/sheet"
)

var RevokeCmd = Revoke{
	command: command{},
}

// Revoke invalidates the cached access token and deletes the token file.
type Revoke struct {
	command
}

func (cmd *Revoke) Name() string {
	return "revoke"
}

func (cmd *Revoke) Description() string {
	return "Revokes the access token saved by 'authorise'"
}

func (cmd *Revoke) Usage() string {
	return "--credentials <file>"
}

func (cmd *Revoke) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] revoke [options]\n", APP)
	fmt.Println()
	fmt.Println("  Revokes the access token saved by 'authorise' and deletes the token file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
}

func (cmd *Revoke) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("revoke", flag.ExitOnError)

	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path for the 'credentials.json' file")
	flagset.StringVar(&cmd.workdir, "workdir", cmd.workdir, "Directory for working files (tokens, etc)")

	return flagset
}

func (cmd *Revoke) Execute(args ...any) error {
	options := args[0].(*Options)

	cfg, err := cmd.configure(options)
	if err != nil {
		return err
	}

	broker, err := auth.NewBrokerFromFile(cfg.Google.Credentials, "", sheet.SHEETS)
	if err != nil {
		return fmt.Errorf("invalid credentials (%v)", err)
	}

	if cfg.Google.RevokeURL != "" {
		broker = broker.WithRevokeURL(cfg.Google.RevokeURL)
	}

	ctx, cancel := interruptible()
	defer cancel()

	tokens := auth.TokenFile(cfg.Google.Credentials, cfg.Google.Workdir)
	token, err := auth.LoadToken(tokens)
	if os.IsNotExist(err) {
		infof("No access token (%s)", tokens)
		return nil
	} else if err != nil {
		return err
	}

	if err := broker.Revoke(ctx, token); err != nil {
		warnf("%v", err)
	}

	if err := auth.DeleteToken(tokens); err != nil {
		return err
	}

	infof("Revoked access token %s", tokens)

	return nil
}
