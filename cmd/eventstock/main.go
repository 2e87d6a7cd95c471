package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/erazemk/eventstock/internal/config"
)

const usage = `Usage: eventstock <command> [flags]

Commands:
  init    create the database and the first admin account
  serve   run the HTTP API and the scheduled jobs
  demo    seed sample items and events and write a snapshot file

Flags:
  -d, -db <path>          SQLite database path (default: eventstock.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        admin username on first run (default: Admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -b, -backend <name>     snapshot backend: file, sqlite or mongo (default: file)
  -s, -snapshot <path>    snapshot file for the file backend (default: stock_data.json)
  -h, -help               show this help and exit

Every flag can also be set through the environment (EVENTSTOCK_*) or a .env file.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	if cmd == "-h" || cmd == "-help" || cmd == "--help" || cmd == "help" {
		fmt.Fprint(os.Stdout, usage)
		return
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := parseFlags(cmd, cfg, os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case "init":
		err = runInit(cfg)
	case "serve":
		err = runServe(cfg)
	case "demo":
		err = runDemo(cfg, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", cmd, usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags overrides cfg with any flags given on the command line.
func parseFlags(cmd string, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("eventstock "+cmd, flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }

	fs.StringVar(&cfg.Storage.DBPath, "db", cfg.Storage.DBPath, "")
	fs.StringVar(&cfg.Storage.DBPath, "d", cfg.Storage.DBPath, "")
	fs.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "")
	fs.StringVar(&cfg.Server.Addr, "a", cfg.Server.Addr, "")
	fs.StringVar(&cfg.AdminUser, "user", cfg.AdminUser, "")
	fs.StringVar(&cfg.AdminUser, "u", cfg.AdminUser, "")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "")
	fs.StringVar(&cfg.Storage.SnapshotBackend, "backend", cfg.Storage.SnapshotBackend, "")
	fs.StringVar(&cfg.Storage.SnapshotBackend, "b", cfg.Storage.SnapshotBackend, "")
	fs.StringVar(&cfg.Storage.SnapshotFile, "snapshot", cfg.Storage.SnapshotFile, "")
	fs.StringVar(&cfg.Storage.SnapshotFile, "s", cfg.Storage.SnapshotFile, "")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return nil
}
