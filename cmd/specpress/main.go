package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/specpress/specpress/internal/config"
	"github.com/specpress/specpress/internal/db"
	"github.com/specpress/specpress/internal/digest"
	"github.com/specpress/specpress/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "0.1.0"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"digest": true, "metrics": true, "history": true, "preview": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
                           _ __  _ __ ___  ___ ___
                          | '_ \| '__/ _ \/ __/ __|
     ___ _ __   ___  ___  | |_) | | |  __/\__ \__ \
    / __| '_ \ / _ \/ __| | .__/|_|  \___||___/___/
    \__ \ |_) |  __/ (__  |_|
    |___/ .__/ \___|\___|
        |_|

  Token-efficient digests for specification files

  Usage: specpress <command> [options]
         specpress --help

  MCP server mode requires piped input.`)
}

func main() {
	digest.GeneratorVersion = Version

	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before config and DB init
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// History is best-effort: a broken database disables recording but
	// never blocks digest generation.
	var database *sql.DB
	if cfg.HistoryDatabase != "" {
		database, err = db.Init(cfg.HistoryDatabase)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: history database unavailable: %v\n", err)
			database = nil
		} else {
			defer database.Close()
		}
	}

	if isCLIMode() {
		app := newCLIApp(database, cfg)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(exitCode(err))
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'specpress --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(database, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
