package subscriptions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextcommerce/storedash/pkg/observability"
)

func sampleRequest() Request {
	return Request{
		UserID:          "merchant-1",
		UserName:        "Amina",
		Price:           1500,
		Orders:          "290",
		OfferTitle:      "Growth Plan",
		PaymentProofURL: "https://cdn.example.com/payment-proofs/sha256/abc.png",
	}
}

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock, *observability.Metrics) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	store := NewSQLStore(db, metrics)
	store.newID = func() string { return "req-1" }
	store.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return store, mock, metrics
}

func TestSQLStore_Submit(t *testing.T) {
	store, mock, metrics := newMockStore(t)
	req := sampleRequest()

	mock.ExpectExec("INSERT INTO subscription_requests").
		WithArgs("req-1", "merchant-1", "Amina", int64(1500), "290", "Growth Plan", req.PaymentProofURL, StatusPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ack, err := store.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "req-1", ack.ID)
	assert.Equal(t, StatusPending, ack.Status)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), ack.ReceivedAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SubmissionsTotal.WithLabelValues("Growth Plan", "success")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SubmitError(t *testing.T) {
	store, mock, metrics := newMockStore(t)

	mock.ExpectExec("INSERT INTO subscription_requests").WillReturnError(errors.New("connection reset"))

	_, err := store.Submit(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmission)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SubmissionsTotal.WithLabelValues("Growth Plan", "error")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ListByUser(t *testing.T) {
	store, mock, _ := newMockStore(t)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "user_id", "user_name", "price", "orders", "offer_title", "payment_proof_url", "status", "created_at"}).
		AddRow("req-2", "merchant-1", "Amina", int64(1900), "5000", "Scale Plan", "https://cdn/x.png", "pending", created).
		AddRow("req-1", "merchant-1", "Amina", int64(990), "150", "Starter Plan", "https://cdn/y.png", "approved", created.Add(-time.Hour))
	mock.ExpectQuery("SELECT (.+) FROM subscription_requests WHERE user_id = ").
		WithArgs("merchant-1", 20).
		WillReturnRows(rows)

	list, err := store.ListByUser(context.Background(), "merchant-1", 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "req-2", list[0].ID)
	assert.Equal(t, int64(1900), list[0].Price)
	assert.Equal(t, StatusApproved, list[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SetStatus(t *testing.T) {
	store, mock, _ := newMockStore(t)

	mock.ExpectExec("UPDATE subscription_requests SET status").
		WithArgs(StatusApproved, "req-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE subscription_requests SET status").
		WithArgs(StatusRejected, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.SetStatus(context.Background(), "req-1", StatusApproved))
	assert.Error(t, store.SetStatus(context.Background(), "missing", StatusRejected))
	assert.Error(t, store.SetStatus(context.Background(), "req-1", "lost"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SQLiteRoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, "sqlite3"))

	store := NewSQLStore(db, nil)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	first := sampleRequest()
	first.Date = base
	ack1, err := store.Submit(ctx, first)
	require.NoError(t, err)

	second := sampleRequest()
	second.OfferTitle = "Scale Plan"
	second.Price = 1900
	second.Orders = "5000"
	second.Date = base.Add(time.Hour)
	ack2, err := store.Submit(ctx, second)
	require.NoError(t, err)

	list, err := store.ListByUser(ctx, "merchant-1", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ack2.ID, list[0].ID)
	assert.Equal(t, ack1.ID, list[1].ID)

	require.NoError(t, store.SetStatus(ctx, ack1.ID, StatusApproved))

	pending, err := store.ListPending(ctx, base.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Scale Plan", pending[0].OfferTitle)
	assert.True(t, pending[0].Date.Equal(second.Date))

	require.NoError(t, RunMigrations(ctx, db, "sqlite3", "down"))
}

func TestRequest_Validate(t *testing.T) {
	req := sampleRequest()
	req.Status = StatusPending
	assert.NoError(t, req.Validate())

	req.PaymentProofURL = ""
	req.Price = 0
	assert.Error(t, req.Validate())
}
