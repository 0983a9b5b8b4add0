package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/taugate/kernel/pkg/taugate/types"

	_ "modernc.org/sqlite"
)

// SQLiteReceiptStore is a single-file ReceiptStore for local dev and
// single-node deployments, using modernc.org/sqlite (cgo-free).
type SQLiteReceiptStore struct {
	db *sql.DB
}

func NewSQLiteReceiptStore(db *sql.DB) (*SQLiteReceiptStore, error) {
	s := &SQLiteReceiptStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteReceiptStore) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS receipts (
        receipt_id TEXT PRIMARY KEY,
        mandate_id TEXT NOT NULL,
        actor TEXT NOT NULL,
        action TEXT NOT NULL,
        request_hash TEXT NOT NULL,
        response_hash TEXT NOT NULL,
        provider_metadata JSON,
        timestamp TEXT NOT NULL,
        mirror_ref TEXT NOT NULL,
        signature TEXT NOT NULL
    );`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *SQLiteReceiptStore) Get(ctx context.Context, receiptID string) (*types.Receipt, error) {
	query := `
        SELECT receipt_id, mandate_id, actor, action, request_hash, response_hash, provider_metadata, timestamp, mirror_ref, signature
        FROM receipts WHERE receipt_id = ?
    `
	return s.queryOne(ctx, query, receiptID)
}

func (s *SQLiteReceiptStore) List(ctx context.Context, limit int) ([]*types.Receipt, error) {
	query := `
        SELECT receipt_id, mandate_id, actor, action, request_hash, response_hash, provider_metadata, timestamp, mirror_ref, signature
        FROM receipts ORDER BY timestamp DESC LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var receipts []*types.Receipt
	for rows.Next() {
		r, err := scanSQLiteReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

func (s *SQLiteReceiptStore) Store(ctx context.Context, r *types.Receipt) error {
	query := `INSERT INTO receipts (
		receipt_id, mandate_id, actor, action, request_hash, response_hash, provider_metadata, timestamp, mirror_ref, signature
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (receipt_id) DO NOTHING`

	metaJSON, err := json.Marshal(r.ProviderMetadata)
	if err != nil {
		return fmt.Errorf("store: marshal provider metadata: %w", err)
	}
	timestamp := r.Timestamp.UTC().Format(time.RFC3339Nano)

	_, err = s.db.ExecContext(ctx, query,
		r.ReceiptID, r.MandateID, string(r.Actor), r.Action, r.RequestHash, r.ResponseHash,
		string(metaJSON), timestamp, r.MirrorRef, r.Signature,
	)
	if err != nil {
		return fmt.Errorf("store: insert receipt: %w", err)
	}
	return nil
}

// GetLastForMandate returns the most recently issued receipt under
// mandateID, or nil if none exists yet.
func (s *SQLiteReceiptStore) GetLastForMandate(ctx context.Context, mandateID string) (*types.Receipt, error) {
	query := `
        SELECT receipt_id, mandate_id, actor, action, request_hash, response_hash, provider_metadata, timestamp, mirror_ref, signature
        FROM receipts WHERE mandate_id = ? ORDER BY timestamp DESC LIMIT 1
    `
	r, err := s.queryOne(ctx, query, mandateID)
	if err != nil {
		if err.Error() == "store: receipt not found" {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

func (s *SQLiteReceiptStore) queryOne(ctx context.Context, query string, arg any) (*types.Receipt, error) {
	row := s.db.QueryRowContext(ctx, query, arg)
	r, err := scanSQLiteReceipt(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("store: receipt not found")
		}
		return nil, err
	}
	return r, nil
}

func scanSQLiteReceipt(row rowScanner) (*types.Receipt, error) {
	var (
		receiptID, mandateID, actor, action string
		requestHash, responseHash           string
		metaJSON                            sql.NullString
		timestamp                           string
		mirrorRef, signature                string
	)
	if err := row.Scan(&receiptID, &mandateID, &actor, &action, &requestHash, &responseHash, &metaJSON, &timestamp, &mirrorRef, &signature); err != nil {
		return nil, err
	}

	var meta map[string]interface{}
	if metaJSON.Valid && metaJSON.String != "" {
		if err := json.Unmarshal([]byte(metaJSON.String), &meta); err != nil {
			return nil, fmt.Errorf("store: unmarshal provider metadata: %w", err)
		}
	}

	return &types.Receipt{
		ReceiptID:        receiptID,
		MandateID:        mandateID,
		Actor:            types.ActorId(actor),
		Action:           action,
		RequestHash:      requestHash,
		ResponseHash:     responseHash,
		ProviderMetadata: meta,
		Timestamp:        parseTime(timestamp),
		MirrorRef:        mirrorRef,
		Signature:        signature,
	}, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
