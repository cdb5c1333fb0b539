package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

var (
	// ErrNotFound is returned when the upstream API answers 404
	ErrNotFound = errors.New("not found")
	// ErrUpstream is returned for transport failures and unexpected statuses
	ErrUpstream = errors.New("store API request failed")
)

// StatusError carries the upstream status code
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream returned %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: upstream returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return ErrUpstream
}

// Client talks to the store API on behalf of the authenticated merchant
type Client struct {
	baseURL        string
	client         *http.Client
	metrics        *observability.Metrics
	freeOrderLimit int
}

// NewClient creates a client for the API at baseURL. freeOrderLimit is the
// order allowance assumed when the account carries none. metrics may be nil.
func NewClient(baseURL string, timeout time.Duration, freeOrderLimit int, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		metrics:        metrics,
		freeOrderLimit: freeOrderLimit,
	}
}

// get fetches path and decodes the JSON body into dest. endpoint labels the
// call in metrics.
func (c *Client) get(ctx context.Context, endpoint, path string, dest interface{}) error {
	start := time.Now()
	status, err := c.do(ctx, endpoint, path, dest)
	c.observe(endpoint, status, time.Since(start))
	return err
}

func (c *Client) do(ctx context.Context, endpoint, path string, dest interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if merchant := auth.FromContext(ctx); merchant != nil && merchant.Token != "" {
		req.Header.Set("Authorization", "Bearer "+merchant.Token)
	}
	if requestID := contextkeys.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUpstream, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %s: failed to decode response: %v", ErrUpstream, endpoint, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) observe(endpoint string, status int, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	c.metrics.StoreAPIRequestsTotal.WithLabelValues(endpoint, label).Inc()
	c.metrics.StoreAPIRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func storePath(prefix, storeID string) string {
	return prefix + url.PathEscape(storeID)
}
