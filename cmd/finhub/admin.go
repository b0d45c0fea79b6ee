package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aliuyar1234/finhub/internal/app"
	"github.com/aliuyar1234/finhub/internal/audit"
	"github.com/aliuyar1234/finhub/internal/auth"
	"github.com/aliuyar1234/finhub/internal/db"
	"github.com/aliuyar1234/finhub/internal/retention"
	"github.com/aliuyar1234/finhub/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func runAdmin(args []string) int {
	if len(args) == 0 {
		printAdminUsage()
		return 2
	}

	_ = godotenv.Load()
	app.SetupLogger(envOr("FH_LOG_LEVEL", "info"))

	switch args[0] {
	case "migrate":
		return runMigrate(args[1:], false)
	case "migrate-status":
		return runMigrate(args[1:], true)
	case "purge-invites":
		return runPurgeInvites(args[1:])
	case "issue-token":
		return runIssueToken(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown admin command: %s\n", args[0])
		printAdminUsage()
		return 2
	}
}

func printAdminUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  finhub admin migrate [--db-dsn <dsn>]")
	fmt.Fprintln(os.Stderr, "  finhub admin migrate-status [--db-dsn <dsn>]")
	fmt.Fprintln(os.Stderr, "  finhub admin purge-invites [--db-dsn <dsn>]")
	fmt.Fprintln(os.Stderr, "  finhub admin issue-token --user-id <uuid> --email user@example.com [--ttl 24h] [--secret <s>]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Notes:")
	fmt.Fprintln(os.Stderr, "  - --db-dsn defaults to FH_DB_DSN.")
	fmt.Fprintln(os.Stderr, "  - --secret defaults to FH_JWT_SECRET.")
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// parseFlags returns a non-negative exit code when the command should stop.
func parseFlags(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	return -1
}

func connectAdmin(ctx context.Context, dbDSN string) (*pgxpool.Pool, int) {
	if dbDSN == "" {
		dbDSN = envOr("FH_DB_DSN", "")
	}
	if dbDSN == "" {
		fmt.Fprintln(os.Stderr, "--db-dsn is required (or set FH_DB_DSN)")
		return nil, 2
	}

	pool, err := db.Connect(ctx, dbDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return nil, 1
	}
	return pool, 0
}

func runMigrate(args []string, statusOnly bool) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var dbDSN string
	fs.StringVar(&dbDSN, "db-dsn", "", "Postgres DSN (defaults to FH_DB_DSN)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	ctx := context.Background()
	pool, code := connectAdmin(ctx, dbDSN)
	if pool == nil {
		return code
	}
	defer db.Close(pool)

	if statusOnly {
		err := db.MigrationStatus(ctx, pool)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read migration status: %v\n", err)
			return 1
		}
		return 0
	}

	if err := db.RunMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		return 1
	}
	return 0
}

func runPurgeInvites(args []string) int {
	fs := flag.NewFlagSet("purge-invites", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var dbDSN string
	fs.StringVar(&dbDSN, "db-dsn", "", "Postgres DSN (defaults to FH_DB_DSN)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	ctx := context.Background()
	pool, code := connectAdmin(ctx, dbDSN)
	if pool == nil {
		return code
	}
	defer db.Close(pool)

	job := retention.NewJob(store.NewInviteStore(pool), nil, audit.NewWriter(pool))
	deleted, err := job.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invite purge failed: %v\n", err)
		return 1
	}

	fmt.Printf("Deleted %d expired invite(s)\n", deleted)
	return 0
}

func runIssueToken(args []string) int {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var userID string
	var email string
	var secret string
	var ttl time.Duration

	fs.StringVar(&userID, "user-id", "", "Profile ID placed in the token subject")
	fs.StringVar(&email, "email", "", "Verified email of the profile")
	fs.StringVar(&secret, "secret", "", "Signing secret (defaults to FH_JWT_SECRET)")
	fs.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	id, err := uuid.Parse(strings.TrimSpace(userID))
	if err != nil {
		fmt.Fprintln(os.Stderr, "--user-id must be a UUID")
		return 2
	}

	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Fprintln(os.Stderr, "--email is required")
		return 2
	}

	if secret == "" {
		secret = os.Getenv("FH_JWT_SECRET")
	}
	if secret == "" {
		fmt.Fprintln(os.Stderr, "--secret is required (or set FH_JWT_SECRET)")
		return 2
	}

	if ttl <= 0 {
		fmt.Fprintln(os.Stderr, "--ttl must be positive")
		return 2
	}

	token, err := auth.CreateToken(id, email, secret, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		return 1
	}

	fmt.Println(token)
	return 0
}
