// Package store provides durable SQL-backed persistence for the
// kernel's receipt chain, alongside the in-memory hash chain in
// pkg/receipt that remains the process's fast path.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/taugate/kernel/pkg/taugate/types"
)

// ReceiptStore persists issued receipts so a restarted process can
// rebuild pkg/receipt.Chain from durable storage instead of memory.
type ReceiptStore interface {
	Store(ctx context.Context, r *types.Receipt) error
	Get(ctx context.Context, receiptID string) (*types.Receipt, error)
	List(ctx context.Context, limit int) ([]*types.Receipt, error)
	// GetLastForMandate returns the most recently issued receipt under
	// mandateID, or nil if none exists yet.
	GetLastForMandate(ctx context.Context, mandateID string) (*types.Receipt, error)
}

// PostgresReceiptStore is a durable SQL-based ReceiptStore.
type PostgresReceiptStore struct {
	db *sql.DB
}

// NewPostgresReceiptStore wraps an already-open *sql.DB (open it with
// database/sql.Open("postgres", dsn) — github.com/lib/pq registers the
// "postgres" driver).
func NewPostgresReceiptStore(db *sql.DB) *PostgresReceiptStore {
	return &PostgresReceiptStore{db: db}
}

// Migrate creates the receipts table if it does not already exist.
func (s *PostgresReceiptStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS receipts (
			receipt_id        TEXT PRIMARY KEY,
			mandate_id        TEXT NOT NULL,
			actor             TEXT NOT NULL,
			action            TEXT NOT NULL,
			request_hash      TEXT NOT NULL,
			response_hash     TEXT NOT NULL,
			provider_metadata JSONB,
			timestamp         TIMESTAMPTZ NOT NULL,
			mirror_ref        TEXT NOT NULL,
			signature         TEXT NOT NULL
		)
	`)
	return err
}

func (s *PostgresReceiptStore) Store(ctx context.Context, r *types.Receipt) error {
	meta, err := json.Marshal(r.ProviderMetadata)
	if err != nil {
		return fmt.Errorf("store: marshal provider metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO receipts (receipt_id, mandate_id, actor, action, request_hash, response_hash, provider_metadata, timestamp, mirror_ref, signature)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (receipt_id) DO NOTHING
	`,
		r.ReceiptID, r.MandateID, string(r.Actor), r.Action, r.RequestHash, r.ResponseHash,
		meta, r.Timestamp, r.MirrorRef, r.Signature,
	)
	if err != nil {
		return fmt.Errorf("store: insert receipt: %w", err)
	}
	return nil
}

func (s *PostgresReceiptStore) Get(ctx context.Context, receiptID string) (*types.Receipt, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT receipt_id, mandate_id, actor, action, request_hash, response_hash, provider_metadata, timestamp, mirror_ref, signature
		FROM receipts WHERE receipt_id = $1
	`, receiptID)
	return scanReceipt(row)
}

func (s *PostgresReceiptStore) List(ctx context.Context, limit int) ([]*types.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT receipt_id, mandate_id, actor, action, request_hash, response_hash, provider_metadata, timestamp, mirror_ref, signature
		FROM receipts ORDER BY timestamp DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list receipts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanReceiptRows(rows)
}

func (s *PostgresReceiptStore) GetLastForMandate(ctx context.Context, mandateID string) (*types.Receipt, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT receipt_id, mandate_id, actor, action, request_hash, response_hash, provider_metadata, timestamp, mirror_ref, signature
		FROM receipts WHERE mandate_id = $1 ORDER BY timestamp DESC LIMIT 1
	`, mandateID)
	r, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

type rowsScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanReceipt(row rowScanner) (*types.Receipt, error) {
	var r types.Receipt
	var actor string
	var meta []byte
	if err := row.Scan(&r.ReceiptID, &r.MandateID, &actor, &r.Action, &r.RequestHash, &r.ResponseHash, &meta, &r.Timestamp, &r.MirrorRef, &r.Signature); err != nil {
		return nil, err
	}
	r.Actor = types.ActorId(actor)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &r.ProviderMetadata); err != nil {
			return nil, fmt.Errorf("store: unmarshal provider metadata: %w", err)
		}
	}
	return &r, nil
}

func scanReceiptRows(rows rowsScanner) ([]*types.Receipt, error) {
	var out []*types.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
