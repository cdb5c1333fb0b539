package subscriptions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nextcommerce/storedash/pkg/auth"
	"github.com/nextcommerce/storedash/pkg/contextkeys"
	"github.com/nextcommerce/storedash/pkg/observability"
)

// HTTPSubmitter records requests through the upstream offers API
type HTTPSubmitter struct {
	baseURL string
	client  *http.Client
	metrics *observability.Metrics
}

// NewHTTPSubmitter creates a submitter for the API at baseURL. metrics may be nil.
func NewHTTPSubmitter(baseURL string, timeout time.Duration, metrics *observability.Metrics) *HTTPSubmitter {
	return &HTTPSubmitter{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		metrics: metrics,
	}
}

type offerResponse struct {
	ID      string `json:"_id"`
	AltID   string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Submit implements Submitter
func (s *HTTPSubmitter) Submit(ctx context.Context, req Request) (Ack, error) {
	if req.Status == "" {
		req.Status = StatusPending
	}
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Ack{}, fmt.Errorf("%w: failed to encode request: %v", ErrSubmission, err)
	}

	var out offerResponse
	err = s.do(ctx, http.MethodPost, "/offers", bytes.NewReader(body), &out)
	s.observe(req.OfferTitle, err)
	if err != nil {
		return Ack{}, fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	id := out.ID
	if id == "" {
		id = out.AltID
	}
	status := out.Status
	if status == "" {
		status = req.Status
	}
	return Ack{ID: id, Status: status, ReceivedAt: req.Date}, nil
}

// ListByUser implements Lister
func (s *HTTPSubmitter) ListByUser(ctx context.Context, userID string, limit int) ([]Request, error) {
	var out []Request
	path := "/offers/user/" + url.PathEscape(userID) + "?limit=" + strconv.Itoa(limit)
	if err := s.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list subscription requests: %w", err)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *HTTPSubmitter) do(ctx context.Context, method, path string, body io.Reader, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if merchant := auth.FromContext(ctx); merchant != nil && merchant.Token != "" {
		req.Header.Set("Authorization", "Bearer "+merchant.Token)
	}
	if requestID := contextkeys.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (s *HTTPSubmitter) observe(plan string, err error) {
	if s.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	s.metrics.SubmissionsTotal.WithLabelValues(plan, result).Inc()
}
