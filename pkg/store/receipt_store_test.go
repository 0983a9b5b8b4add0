package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/taugate/kernel/pkg/taugate/types"
)

func receiptColumns() []string {
	return []string{"receipt_id", "mandate_id", "actor", "action", "request_hash", "response_hash", "provider_metadata", "timestamp", "mirror_ref", "signature"}
}

func TestPostgresReceiptStore_StoreAndGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresReceiptStore(db)
	ctx := context.Background()
	ts := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO receipts")).
		WithArgs("r1", "m1", "agent:alice", "fetch_url", "req-hash", "resp-hash", sqlmock.AnyArg(), ts, "mirror-1", "sig").
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := &types.Receipt{
		ReceiptID: "r1", MandateID: "m1", Actor: types.ActorId("agent:alice"),
		Action: "fetch_url", RequestHash: "req-hash", ResponseHash: "resp-hash",
		Timestamp: ts, MirrorRef: "mirror-1", Signature: "sig",
	}
	require.NoError(t, store.Store(ctx, r))

	rows := sqlmock.NewRows(receiptColumns()).
		AddRow("r1", "m1", "agent:alice", "fetch_url", "req-hash", "resp-hash", []byte("{}"), ts, "mirror-1", "sig")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT receipt_id, mandate_id, actor, action, request_hash, response_hash, provider_metadata, timestamp, mirror_ref, signature\n\t\tFROM receipts WHERE receipt_id = $1")).
		WithArgs("r1").
		WillReturnRows(rows)

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "r1", got.ReceiptID)
	require.Equal(t, types.ActorId("agent:alice"), got.Actor)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReceiptStore_GetLastForMandate_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresReceiptStore(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT receipt_id, mandate_id, actor, action, request_hash, response_hash, provider_metadata, timestamp, mirror_ref, signature\n\t\tFROM receipts WHERE mandate_id = $1 ORDER BY timestamp DESC LIMIT 1")).
		WithArgs("m-missing").
		WillReturnError(sql.ErrNoRows)

	got, err := store.GetLastForMandate(ctx, "m-missing")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPostgresReceiptStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresReceiptStore(db)
	ctx := context.Background()
	ts := time.Now().UTC()

	rows := sqlmock.NewRows(receiptColumns()).
		AddRow("r2", "m1", "agent:alice", "fetch_url", "rh", "rh2", []byte(`{"k":"v"}`), ts, "mirror-2", "sig2").
		AddRow("r1", "m1", "agent:alice", "fetch_url", "rh", "rh2", nil, ts, "mirror-1", "sig1")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT receipt_id, mandate_id, actor, action, request_hash, response_hash, provider_metadata, timestamp, mirror_ref, signature\n\t\tFROM receipts ORDER BY timestamp DESC LIMIT $1")).
		WithArgs(10).
		WillReturnRows(rows)

	got, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "v", got[0].ProviderMetadata["k"])
}
