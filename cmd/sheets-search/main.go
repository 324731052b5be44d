package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	lib "github.com/uhppoted/uhppoted-lib/command"

	"github.com/sheetsearch/sheets-search/commands"
	"github.com/sheetsearch/sheets-search/config"
)

var cli = []lib.Command{
	&commands.ServeCmd,
	&commands.AuthoriseCmd,
	&commands.RevokeCmd,
	&commands.GetCmd,
	&commands.SearchCmd,
	&commands.VersionCmd,
}

var options = commands.Options{
	Config: config.DefaultConfig,
	Debug:  false,
}

var help = lib.NewHelp(commands.APP, cli, nil)

func main() {
	// .env is optional
	_ = godotenv.Load()

	flag.StringVar(&options.Config, "config", options.Config, "Configuration file")
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Parse()

	cmd, err := lib.Parse(cli, nil, help)
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	if cmd == nil {
		help.Execute()
		os.Exit(1)
	}

	if err = cmd.Execute(&options); err != nil {
		fmt.Fprintf(os.Stderr, "\n   ERROR: %v\n\n", err)
		os.Exit(1)
	}
}
