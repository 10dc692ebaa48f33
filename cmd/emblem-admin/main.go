// Package main is the entry point for the Emblem admin CLI.
// This tool manages the badge catalog, awards, and certification
// tracks, none of which have public write endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/halcyon-labs/emblem/internal/cache/memory"
	"github.com/halcyon-labs/emblem/internal/config"
	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/repository"
	"github.com/halcyon-labs/emblem/internal/repository/postgres"
	"github.com/halcyon-labs/emblem/internal/repository/sqlite"
	"github.com/halcyon-labs/emblem/internal/service"
	"github.com/halcyon-labs/emblem/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "version":
		fmt.Printf("Emblem Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user", "badge", "cert", "award":
		if err := runCommand(command, args); err != nil {
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

// env holds everything a subcommand needs.
type env struct {
	cfg      *config.Config
	repos    *repository.Repositories
	accounts *service.AccountService
	badges   *service.BadgeService
	certs    *service.CertificationService
	close    func()
}

func runCommand(command string, args []string) error {
	ctx := context.Background()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	switch command {
	case "user":
		return runUser(ctx, e, args)
	case "badge":
		return runBadge(ctx, e, args)
	case "cert":
		return runCert(ctx, e, args)
	case "award":
		return runAward(ctx, e, args)
	}
	return fmt.Errorf("unknown command %q", command)
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(os.Getenv("EMBLEM_CONFIG"))
	if err != nil {
		return nil, err
	}
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

	var repos *repository.Repositories
	var db repository.DatabaseHealth
	if cfg.Database.IsEmbedded() {
		sqliteDB, err := sqlite.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := sqliteDB.Migrate(ctx); err != nil {
			sqliteDB.Close()
			return nil, err
		}
		repos = sqlite.NewRepositories(sqliteDB)
		db = sqliteDB
	} else {
		pgDB, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		repos = postgres.NewRepositories(pgDB)
		db = pgDB
	}

	var icons storage.IconStore
	if cfg.Storage.Backend == "s3" {
		icons, err = storage.NewS3Store(ctx, cfg.Storage.S3, logger)
	} else {
		icons, err = storage.NewFilesystemStore(cfg.Storage.DataDir, cfg.Storage.BaseURL, logger)
	}
	if err != nil {
		db.Close()
		return nil, err
	}

	cache := memory.NewCache()

	return &env{
		cfg:      cfg,
		repos:    repos,
		accounts: service.NewAccountService(repos.User, logger),
		badges:   service.NewBadgeService(repos.Badge, repos.Achievement, cache, icons, logger),
		certs:    service.NewCertificationService(repos.Certification, repos.User, logger),
		close: func() {
			cache.Stop()
			db.Close()
		},
	}, nil
}

func runUser(ctx context.Context, e *env, args []string) error {
	if len(args) < 1 || args[0] != "list" {
		return fmt.Errorf("usage: emblem-admin user list [--limit N] [--offset N]")
	}

	fs := flag.NewFlagSet("user list", flag.ExitOnError)
	limit := fs.Int("limit", 20, "maximum users to list")
	offset := fs.Int("offset", 0, "users to skip")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	output, err := e.accounts.List(ctx, service.ListAccountsInput{Limit: *limit, Offset: *offset})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tFULL NAME\tCREATED")
	for _, u := range output.Users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			u.ID, u.Username, strOrDash(u.Email), strOrDash(u.FullName),
			u.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	fmt.Printf("\n%d of %d users\n", len(output.Users), output.TotalCount)
	return nil
}

func runBadge(ctx context.Context, e *env, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: emblem-admin badge <create|list|set-icon> [arguments]")
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("badge create", flag.ExitOnError)
		name := fs.String("name", "", "badge name (required)")
		description := fs.String("description", "", "badge description")
		criteria := fs.String("criteria", "", "criteria for earning the badge")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		badge, err := e.badges.Create(ctx, service.CreateBadgeInput{
			Name:        *name,
			Description: *description,
			Criteria:    *criteria,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created badge %d: %s\n", badge.ID, badge.Name)
		return nil

	case "list":
		badges, err := e.badges.List(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tICON\tDESCRIPTION")
		for _, b := range badges {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", b.ID, b.Name, dashIfEmpty(b.IconURL), b.Description)
		}
		return w.Flush()

	case "set-icon":
		fs := flag.NewFlagSet("badge set-icon", flag.ExitOnError)
		badgeID := fs.Int64("id", 0, "badge ID (required)")
		file := fs.String("file", "", "path to icon image (required)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *badgeID == 0 || *file == "" {
			return fmt.Errorf("both --id and --file are required")
		}

		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()

		contentType := mime.TypeByExtension(filepath.Ext(*file))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		iconURL, err := e.badges.SetIcon(ctx, *badgeID, filepath.Base(*file), contentType, f)
		if err != nil {
			return err
		}
		fmt.Printf("Badge %d icon set: %s\n", *badgeID, iconURL)
		return nil
	}

	return fmt.Errorf("unknown badge subcommand %q", args[0])
}

func runCert(ctx context.Context, e *env, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: emblem-admin cert <create|list|set-progress> [arguments]")
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("cert create", flag.ExitOnError)
		name := fs.String("name", "", "certification name (required)")
		description := fs.String("description", "", "certification description")
		required := fs.Int("required-badges", 0, "number of badges required")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		cert, err := e.certs.Create(ctx, service.CreateCertificationInput{
			Name:           *name,
			Description:    *description,
			RequiredBadges: *required,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created certification %d: %s\n", cert.ID, cert.Name)
		return nil

	case "list":
		certs, err := e.certs.List(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tREQUIRED BADGES\tDESCRIPTION")
		for _, c := range certs {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", c.ID, c.Name, c.RequiredBadges, c.Description)
		}
		return w.Flush()

	case "set-progress":
		fs := flag.NewFlagSet("cert set-progress", flag.ExitOnError)
		userID := fs.Int64("user", 0, "user ID (required)")
		certID := fs.Int64("cert", 0, "certification ID (required)")
		status := fs.String("status", "", "in_progress or completed (required)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *userID == 0 || *certID == 0 || *status == "" {
			return fmt.Errorf("--user, --cert, and --status are required")
		}

		if err := e.certs.SetProgress(ctx, *userID, *certID, domain.CertStatus(*status)); err != nil {
			return err
		}
		fmt.Printf("User %d progress on certification %d set to %s\n", *userID, *certID, *status)
		return nil
	}

	return fmt.Errorf("unknown cert subcommand %q", args[0])
}

func runAward(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("award", flag.ExitOnError)
	userID := fs.Int64("user", 0, "user ID (required)")
	badgeID := fs.Int64("badge", 0, "badge ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == 0 || *badgeID == 0 {
		return fmt.Errorf("both --user and --badge are required")
	}

	achievement, err := e.badges.Award(ctx, *userID, *badgeID)
	if err != nil {
		return err
	}
	fmt.Printf("Awarded badge %d to user %d (share token %s)\n",
		*badgeID, *userID, achievement.ShareToken)
	return nil
}

func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printUsage() {
	fmt.Println(`Emblem Admin CLI

Usage:
  emblem-admin <command> [arguments]

Commands:
  user        Manage users (list)
  badge       Manage the badge catalog (create, list, set-icon)
  cert        Manage certifications (create, list, set-progress)
  award       Award a badge to a user
  version     Print version information
  help        Show this help message

Examples:
  emblem-admin user list --limit 50
  emblem-admin badge create --name "Go Novice" --criteria "Finish the basics track"
  emblem-admin badge set-icon --id 1 --file ./novice.png
  emblem-admin award --user 1 --badge 1
  emblem-admin cert create --name "Gopher" --required-badges 3
  emblem-admin cert set-progress --user 1 --cert 1 --status completed

Configuration is read the same way as the server (config.yaml or
EMBLEM_-prefixed environment variables); set EMBLEM_CONFIG to point at
an explicit config file.`)
}
