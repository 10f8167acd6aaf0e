package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/campaigner/internal/cli"
	"github.com/mrlokans/campaigner/internal/config"
	"github.com/mrlokans/campaigner/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		if err := entrypoint.Run(cfg, Version+" ("+Commit+")"); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	switch name {
	case "import":
		cfg := config.NewConfig()
		cmd := cli.NewCampaignImportCommand()
		cmd.DatabasePath = cfg.Database.Path
		cmd.DefaultCampaignTitle = cfg.Import.DefaultCampaignTitle
		cmd.MaxEntryBytes = cfg.Import.MaxEntryBytes()
		run(cmd, args)

	case "create-user":
		cfg := config.NewConfig()
		cmd := cli.NewCreateUserCommand()
		cmd.DatabasePath = cfg.Database.Path
		cmd.Auth = cfg.Auth
		run(cmd, args)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}
}

func run(cmd command, args []string) {
	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve         Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  import        Import campaigns from a .json document or .zip archive\n")
	fmt.Fprintf(os.Stderr, "  create-user   Create a local user account\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
