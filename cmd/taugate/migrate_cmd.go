package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"

	_ "github.com/lib/pq"

	"github.com/taugate/kernel/pkg/store"
)

// runMigrateCmd creates the receipts and commit_outbox tables in a
// Postgres database. Idempotent: safe to run against an already
// migrated database.
func runMigrateCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("migrate", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var dbURL string
	cmd.StringVar(&dbURL, "db", "", "Postgres connection string (REQUIRED)")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if dbURL == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --db is required")
		return 2
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: open db: %v\n", err)
		return 2
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	receipts := store.NewPostgresReceiptStore(db)
	if err := receipts.Migrate(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: migrate receipts table: %v\n", err)
		return 2
	}
	_, _ = fmt.Fprintln(stdout, "receipts table ready")

	outbox := store.NewPostgresCommitOutboxStore(db)
	if err := outbox.Migrate(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: migrate commit_outbox table: %v\n", err)
		return 2
	}
	_, _ = fmt.Fprintln(stdout, "commit_outbox table ready")

	return 0
}
