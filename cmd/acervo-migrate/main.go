// Package main is the entry point for the Acervo database migration tool.
// It applies the embedded schema migrations against the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/acervo-dev/acervo/internal/config"
	"github.com/acervo-dev/acervo/internal/repository/postgres"
	"github.com/acervo-dev/acervo/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "version":
		fmt.Println("Acervo Migration Tool")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		runMigrations(*configPath, true)

	case "status":
		runMigrations(*configPath, false)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

// runMigrations connects to the configured database and either applies
// pending migrations or just reports the current version.
func runMigrations(configPath string, apply bool) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		if apply {
			if err := db.Migrate(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("migrations applied")
			return
		}
		fmt.Printf("driver: sqlite path: %s\n", cfg.Database.Path)

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		if apply {
			if err := db.Migrate(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("migrations applied")
			return
		}

		version, err := db.MigrationVersion(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read migration version: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("driver: postgres database: %s version: %d\n", cfg.Database.Database, version)

	default:
		fmt.Fprintf(os.Stderr, "unsupported database driver: %s\n", cfg.Database.Driver)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Acervo Migration Tool

Usage:
  acervo-migrate [-config path] <command>

Commands:
  up          Apply all pending migrations
  status      Show current migration status
  version     Print version information
  help        Show this help message

Configuration is read the same way as the server: a YAML file plus
ACERVO_-prefixed environment variables (e.g. ACERVO_DATABASE_DRIVER).

Examples:
  acervo-migrate up
  acervo-migrate -config ./configs/config.yaml status`)
}
