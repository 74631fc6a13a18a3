package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/corvusHold/outreach/internal/config"
	"github.com/corvusHold/outreach/internal/version"
	"github.com/corvusHold/outreach/migrations"
)

const (
	exitOK      = 0
	exitUsage   = 2
	exitConfig  = 3
	exitMigrate = 4
)

// migrateTimeout bounds one migrate invocation.
const migrateTimeout = 5 * time.Minute

var (
	migrateRunner           = realMigrateRunner
	osExit                  = os.Exit
	stdout        io.Writer = os.Stdout
)

// handleCLICommand runs a maintenance subcommand and reports whether args named one.
// Anything else falls through to the API server.
func handleCLICommand(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "migrate":
		osExit(runMigrate(args[1:]))
	case "version":
		fmt.Fprintln(stdout, version.String())
		osExit(exitOK)
	case "help", "-h", "--help":
		printHelp(stdout)
		osExit(exitOK)
	default:
		return false
	}
	return true
}

func runMigrate(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "missing migrate subcommand (up|down|status)")
		return exitUsage
	}
	subcmd := args[0]
	if subcmd != "up" && subcmd != "down" && subcmd != "status" {
		fmt.Fprintf(os.Stderr, "unknown migrate subcommand: %s\n", subcmd)
		return exitUsage
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return exitConfig
	}
	if err := migrateRunner(subcmd, cfg.DatabaseURL); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s failed: %v\n", subcmd, err)
		return exitMigrate
	}
	return exitOK
}

// realMigrateRunner applies the SQL migrations embedded in the binary.
func realMigrateRunner(subcmd, databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	switch subcmd {
	case "up":
		results, err := p.Up(ctx)
		for _, r := range results {
			fmt.Fprintf(stdout, "applied %s (%s)\n", r.Source.Path, r.Duration.Round(time.Millisecond))
		}
		return err
	case "down":
		r, err := p.Down(ctx)
		if r != nil {
			fmt.Fprintf(stdout, "rolled back %s\n", r.Source.Path)
		}
		return err
	case "status":
		statuses, err := p.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			applied := "-"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.UTC().Format(time.RFC3339)
			}
			fmt.Fprintf(stdout, "%-8s %-25s %s\n", s.State, applied, s.Source.Path)
		}
		return nil
	default:
		return fmt.Errorf("unsupported migrate subcommand %q", subcmd)
	}
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `Outreach API

Usage:
  outreach                 Start API server
  outreach migrate up      Apply all pending migrations
  outreach migrate down    Roll back the latest migration
  outreach migrate status  Show migration status
  outreach version         Print the build version
`)
}
