package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/taugate/kernel/pkg/taugate/types"
)

// OutboxStatus tracks a scheduled commit effect through execution.
type OutboxStatus string

const (
	OutboxPending OutboxStatus = "PENDING"
	OutboxDone    OutboxStatus = "DONE"
)

// OutboxRecord is a durably scheduled tool effect awaiting execution,
// decoupling Commit's durable bookkeeping from the executor actually
// running (which may crash or be retried independently).
type OutboxRecord struct {
	ID        string
	Proposal  *types.Proposal
	Scheduled time.Time
	Status    OutboxStatus
}

// CommitOutboxStore durably schedules committed proposals for
// execution, so a crash between Commit's event-log append and the
// executor call can be recovered by replaying pending records.
type CommitOutboxStore interface {
	Schedule(ctx context.Context, proposal *types.Proposal) error
	GetPending(ctx context.Context) ([]*OutboxRecord, error)
	MarkDone(ctx context.Context, proposalID string) error
}

// PostgresCommitOutboxStore is a durable SQL-based CommitOutboxStore.
type PostgresCommitOutboxStore struct {
	db *sql.DB
}

func NewPostgresCommitOutboxStore(db *sql.DB) *PostgresCommitOutboxStore {
	return &PostgresCommitOutboxStore{db: db}
}

// Migrate creates the commit_outbox table if it does not already exist.
func (s *PostgresCommitOutboxStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS commit_outbox (
			id            TEXT PRIMARY KEY,
			proposal_json JSONB NOT NULL,
			scheduled_at  TIMESTAMPTZ NOT NULL,
			status        TEXT NOT NULL
		)
	`)
	return err
}

func (s *PostgresCommitOutboxStore) Schedule(ctx context.Context, proposal *types.Proposal) error {
	proposalJSON, err := json.Marshal(proposal)
	if err != nil {
		return fmt.Errorf("store: marshal proposal: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO commit_outbox (id, proposal_json, scheduled_at, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, proposal.ID, proposalJSON, time.Now(), OutboxPending)
	if err != nil {
		return fmt.Errorf("store: schedule commit effect: %w", err)
	}
	return nil
}

func (s *PostgresCommitOutboxStore) GetPending(ctx context.Context) ([]*OutboxRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, proposal_json, scheduled_at, status
		FROM commit_outbox WHERE status = $1 ORDER BY scheduled_at ASC
	`, OutboxPending)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []*OutboxRecord
	for rows.Next() {
		var id, status string
		var proposalJSON []byte
		var scheduledAt time.Time

		if err := rows.Scan(&id, &proposalJSON, &scheduledAt, &status); err != nil {
			return nil, err
		}

		var proposal types.Proposal
		if err := json.Unmarshal(proposalJSON, &proposal); err != nil {
			return nil, fmt.Errorf("store: corrupt proposal JSON in outbox record %s: %w", id, err)
		}

		results = append(results, &OutboxRecord{
			ID:        id,
			Proposal:  &proposal,
			Scheduled: scheduledAt,
			Status:    OutboxStatus(status),
		})
	}
	return results, rows.Err()
}

func (s *PostgresCommitOutboxStore) MarkDone(ctx context.Context, proposalID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE commit_outbox SET status = $1 WHERE id = $2`, OutboxDone, proposalID)
	return err
}
