// Package main is the entry point for the Emblem schema migration tool.
// It applies embedded migrations against the configured driver.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/halcyon-labs/emblem/internal/config"
	"github.com/halcyon-labs/emblem/internal/repository/postgres"
	"github.com/halcyon-labs/emblem/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// migrator is the driver-independent slice of the DB wrappers this
// tool needs.
type migrator interface {
	Migrate(ctx context.Context) error
	MigrationVersion(ctx context.Context) (int, error)
	Close() error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Emblem Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up", "status":
		if err := run(command); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func run(command string) error {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("EMBLEM_CONFIG"))
	if err != nil {
		return err
	}
	logger := zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()

	var db migrator
	if cfg.Database.IsEmbedded() {
		db, err = sqlite.NewDB(ctx, cfg.Database, logger)
	} else {
		db, err = postgres.NewDB(ctx, cfg.Database, logger)
	}
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case "up":
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		version, err := db.MigrationVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Migrations applied; schema at version %d\n", version)
		return nil

	case "status":
		version, err := db.MigrationVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Driver: %s\n", cfg.Database.Driver)
		fmt.Printf("Schema version: %d\n", version)
		return nil
	}

	return fmt.Errorf("unknown command %q", command)
}

func printUsage() {
	fmt.Println(`Emblem Migration Tool

Usage:
  emblem-migrate <command>

Commands:
  up          Apply all pending migrations
  status      Show the current schema version
  version     Print version information
  help        Show this help message

Configuration is read the same way as the server (config.yaml or
EMBLEM_-prefixed environment variables); set EMBLEM_CONFIG to point at
an explicit config file.`)
}
