package subscriptions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextcommerce/storedash/pkg/observability"
)

const selectColumns = `id, user_id, user_name, price, orders, offer_title, payment_proof_url, status, created_at`

// SQLStore records subscription requests in the service's own database
type SQLStore struct {
	db      *sql.DB
	metrics *observability.Metrics
	now     func() time.Time
	newID   func() string
}

// NewSQLStore creates a store on db. metrics may be nil.
func NewSQLStore(db *sql.DB, metrics *observability.Metrics) *SQLStore {
	return &SQLStore{
		db:      db,
		metrics: metrics,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *SQLStore) span(ctx context.Context, name string) (context.Context, trace.Span) {
	return observability.Tracer("subscriptions").Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", "sql")),
	)
}

// Submit implements Submitter
func (s *SQLStore) Submit(ctx context.Context, req Request) (Ack, error) {
	ctx, span := s.span(ctx, "subscriptions.Submit")
	defer span.End()

	if req.ID == "" {
		req.ID = s.newID()
	}
	if req.Status == "" {
		req.Status = StatusPending
	}
	if req.Date.IsZero() {
		req.Date = s.now()
	}
	req.Date = req.Date.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscription_requests (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, req.ID, req.UserID, req.UserName, req.Price, req.Orders, req.OfferTitle, req.PaymentProofURL, req.Status, req.Date)
	s.observe(req.OfferTitle, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return Ack{}, fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	return Ack{ID: req.ID, Status: req.Status, ReceivedAt: req.Date}, nil
}

func (s *SQLStore) observe(plan string, err error) {
	if s.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	s.metrics.SubmissionsTotal.WithLabelValues(plan, result).Inc()
}

// ListByUser implements Lister, newest first
func (s *SQLStore) ListByUser(ctx context.Context, userID string, limit int) ([]Request, error) {
	ctx, span := s.span(ctx, "subscriptions.ListByUser")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM subscription_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// ListPending returns pending requests created at or after since, oldest first
func (s *SQLStore) ListPending(ctx context.Context, since time.Time) ([]Request, error) {
	ctx, span := s.span(ctx, "subscriptions.ListPending")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM subscription_requests
		WHERE status = $1 AND created_at >= $2
		ORDER BY created_at ASC
	`, StatusPending, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// SetStatus records a reviewer's decision
func (s *SQLStore) SetStatus(ctx context.Context, id, status string) error {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		return fmt.Errorf("invalid status %q", status)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE subscription_requests SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("subscription request %s not found", id)
	}
	return nil
}

func scanRequests(rows *sql.Rows) ([]Request, error) {
	var out []Request
	for rows.Next() {
		var r Request
		if err := rows.Scan(&r.ID, &r.UserID, &r.UserName, &r.Price, &r.Orders, &r.OfferTitle, &r.PaymentProofURL, &r.Status, &r.Date); err != nil {
			return nil, fmt.Errorf("failed to scan subscription request: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subscription requests: %w", err)
	}
	return out, nil
}
