package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextcommerce/storedash/pkg/auth"
	"github.com/nextcommerce/storedash/pkg/httputil"
	"github.com/nextcommerce/storedash/pkg/middleware"
	"github.com/nextcommerce/storedash/pkg/orders"
	"github.com/nextcommerce/storedash/pkg/plans"
	"github.com/nextcommerce/storedash/pkg/proof"
	"github.com/nextcommerce/storedash/pkg/quota"
	"github.com/nextcommerce/storedash/pkg/storeapi"
	"github.com/nextcommerce/storedash/pkg/subscriptions"
	"github.com/nextcommerce/storedash/pkg/upgrade"
)

const merchantHeader = "X-Merchant-ID"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

type fakeDashboard struct {
	d   *storeapi.Dashboard
	err error
}

func (f *fakeDashboard) Dashboard(_ context.Context, storeID string) (*storeapi.Dashboard, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.d, nil
}

type fakeUsage struct {
	usage quota.Usage
	err   error
}

func (f *fakeUsage) Usage(context.Context, *auth.Merchant) (quota.Usage, error) {
	return f.usage, f.err
}

type fakeUploader struct{ err error }

func (f *fakeUploader) Upload(_ context.Context, img proof.Image) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + img.Key(), nil
}

type fakeBackend struct {
	mu   sync.Mutex
	err  error
	reqs []subscriptions.Request
}

func (f *fakeBackend) Submit(_ context.Context, req subscriptions.Request) (subscriptions.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return subscriptions.Ack{}, f.err
	}
	f.reqs = append(f.reqs, req)
	return subscriptions.Ack{ID: "req-1", Status: req.Status, ReceivedAt: req.Date}, nil
}

func (f *fakeBackend) ListByUser(_ context.Context, userID string, limit int) ([]subscriptions.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []subscriptions.Request
	for _, r := range f.reqs {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type testEnv struct {
	server    *Server
	dashboard *fakeDashboard
	usage     *fakeUsage
	uploader  *fakeUploader
	backend   *fakeBackend
}

func newTestEnv(t *testing.T, limiter middleware.Limiter) *testEnv {
	t.Helper()
	env := &testEnv{
		dashboard: &fakeDashboard{d: &storeapi.Dashboard{
			Store:        storeapi.Store{ID: "s1", Name: "Dar El Khir"},
			ProductCount: 4,
			Orders: []orders.Order{
				{ID: "1", Status: "confirmed", Price: decimal.NewFromInt(1500)},
				{ID: "2", Status: "pending", Price: decimal.NewFromInt(900)},
				{ID: "3", Status: "cancelled", Price: decimal.NewFromInt(400)},
			},
		}},
		usage:    &fakeUsage{usage: quota.Usage{Used: 150, Limit: 150}},
		uploader: &fakeUploader{},
		backend:  &fakeBackend{},
	}

	catalog := plans.DefaultCatalog()
	cfg := upgrade.DefaultConfig()
	cfg.Payment = upgrade.PaymentInfo{Phone: "213698320894"}
	wf := upgrade.NewWorkflow(catalog, upgrade.NewMemoryStore(), env.uploader, env.backend, cfg, nil)

	var limit *middleware.RateLimitMiddleware
	if limiter != nil {
		limit = middleware.NewRateLimitMiddleware(limiter)
	}

	env.server = NewServer(Config{
		Catalog:       catalog,
		Workflow:      wf,
		Dashboard:     env.dashboard,
		Requests:      env.backend,
		Auth:          auth.NewMiddleware(auth.NewHeaderAuthenticator(merchantHeader), false),
		Quota:         quota.NewMiddleware(env.usage, nil),
		WriteLimit:    limit,
		MaxProofBytes: 1 << 10,
	})
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set(merchantHeader, "merchant-1")
	req.Header.Set("X-Merchant-Name", "Amina")
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func proofRequest(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(ProofField, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upgrade/checkout/proof", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func TestServer_RegistersRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/plans"},
		{"GET", "/api/v1/plans/growth"},
		{"GET", "/api/v1/stores/s1/overview"},
		{"GET", "/api/v1/quota"},
		{"POST", "/api/v1/upgrade/intent"},
		{"GET", "/api/v1/upgrade/checkout"},
		{"POST", "/api/v1/upgrade/checkout/proof"},
		{"POST", "/api/v1/upgrade/checkout/confirm"},
		{"GET", "/api/v1/subscriptions"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			var match mux.RouteMatch
			assert.True(t, env.server.Router().Match(req, &match), "Route %s %s should be registered", tt.method, tt.path)
		})
	}
}

func TestServer_PlansArePublic(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/plans", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []plans.Plan
	decode(t, rec, &list)
	require.Len(t, list, 3)
	assert.Equal(t, "growth", list[1].ID)
	assert.True(t, list[1].IsPopular)

	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/plans/enterprise", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RequiresMerchant(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/quota", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_Overview(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, httptest.NewRequest("GET", "/api/v1/stores/s1/overview", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "150", rec.Header().Get(quota.HeaderUsed))
	assert.Equal(t, "true", rec.Header().Get(quota.HeaderReached))

	var overview Overview
	decode(t, rec, &overview)
	assert.Equal(t, "Dar El Khir", overview.Store.Name)
	assert.Equal(t, 4, overview.Stats.SoldProducts)
	assert.Equal(t, 1, overview.Stats.NewOrders)
	assert.Equal(t, "1,500 DA", overview.Stats.EarningsDisplay)
	assert.Equal(t, 3, overview.Summary.GrandTotal)
	assert.False(t, overview.Empty)
	require.NotNil(t, overview.Quota)
	assert.True(t, overview.Quota.LimitReached)
}

func TestServer_OverviewUpstreamErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	env.dashboard.err = storeapi.ErrNotFound
	rec := env.do(t, httptest.NewRequest("GET", "/api/v1/stores/s9/overview", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.dashboard.err = storeapi.ErrUpstream
	rec = env.do(t, httptest.NewRequest("GET", "/api/v1/stores/s1/overview", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestServer_QuotaSurvivesUsageFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.usage.err = storeapi.ErrUpstream

	// The overview is still served without quota
	rec := env.do(t, httptest.NewRequest("GET", "/api/v1/stores/s1/overview", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var overview Overview
	decode(t, rec, &overview)
	assert.Nil(t, overview.Quota)

	rec = env.do(t, httptest.NewRequest("GET", "/api/v1/quota", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestServer_CheckoutWithoutIntentRedirects(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, httptest.NewRequest("GET", "/api/v1/upgrade/checkout", nil))
	require.Equal(t, http.StatusConflict, rec.Code)

	var body httputil.ErrorResponse
	decode(t, rec, &body)
	assert.Equal(t, quota.UpgradePath, body.Redirect)
}

func TestServer_UpgradeFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, jsonRequest("POST", "/api/v1/upgrade/intent", SelectPlanRequest{PlanID: "growth"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, httptest.NewRequest("GET", "/api/v1/upgrade/checkout", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var checkout upgrade.Checkout
	decode(t, rec, &checkout)
	assert.Equal(t, "Growth Plan", checkout.Summary.Title)
	assert.Equal(t, "290", checkout.Summary.Orders)
	assert.Contains(t, checkout.DeepLink, "wa.me/213698320894")

	rec = env.do(t, proofRequest(t, "receipt.png", pngBytes))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session upgrade.Session
	decode(t, rec, &session)
	assert.Equal(t, upgrade.StateProofCaptured, session.State)

	rec = env.do(t, jsonRequest("POST", "/api/v1/upgrade/checkout/confirm", nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, env.backend.reqs, 1)
	assert.Equal(t, int64(1500), env.backend.reqs[0].Price)
	assert.Equal(t, "290", env.backend.reqs[0].Orders)
	assert.Equal(t, "Amina", env.backend.reqs[0].UserName)

	rec = env.do(t, httptest.NewRequest("GET", "/api/v1/subscriptions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []subscriptions.Request
	decode(t, rec, &list)
	assert.Len(t, list, 1)

	// Checkout is closed after submission
	rec = env.do(t, httptest.NewRequest("GET", "/api/v1/upgrade/checkout", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_SelectPlanValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, jsonRequest("POST", "/api/v1/upgrade/intent", SelectPlanRequest{}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body httputil.ErrorResponse
	decode(t, rec, &body)
	assert.Equal(t, "this field is required", body.Details["plan_id"])

	rec = env.do(t, jsonRequest("POST", "/api/v1/upgrade/intent", SelectPlanRequest{PlanID: "platinum"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, jsonRequest("POST", "/api/v1/upgrade/intent", map[string]string{"plan": "growth"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func openCheckout(t *testing.T, env *testEnv) {
	t.Helper()
	rec := env.do(t, jsonRequest("POST", "/api/v1/upgrade/intent", SelectPlanRequest{PlanID: "starter"}))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, httptest.NewRequest("GET", "/api/v1/upgrade/checkout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_ProofRejections(t *testing.T) {
	env := newTestEnv(t, nil)
	openCheckout(t, env)

	rec := env.do(t, proofRequest(t, "receipt.txt", []byte("just some text")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, proofRequest(t, "huge.png", append(pngBytes, make([]byte, 2<<10)...)))
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge}, rec.Code)

	rec = env.do(t, jsonRequest("POST", "/api/v1/upgrade/checkout/proof", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_UpstreamFailures(t *testing.T) {
	env := newTestEnv(t, nil)
	openCheckout(t, env)

	env.uploader.err = errors.New("bucket unreachable")
	rec := env.do(t, proofRequest(t, "receipt.png", pngBytes))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	// Confirm before a proof is captured
	rec = env.do(t, jsonRequest("POST", "/api/v1/upgrade/checkout/confirm", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.uploader.err = nil
	rec = env.do(t, proofRequest(t, "receipt.png", pngBytes))
	require.Equal(t, http.StatusOK, rec.Code)

	env.backend.err = errors.New("connection refused")
	rec = env.do(t, jsonRequest("POST", "/api/v1/upgrade/checkout/confirm", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	env.backend.err = nil
	rec = env.do(t, jsonRequest("POST", "/api/v1/upgrade/checkout/confirm", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestServer_CheckoutWritesAreRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(&middleware.RateLimitConfig{
		RequestsPerWindow: 1,
		WindowDuration:    time.Hour,
		BurstSize:         0,
	})
	env := newTestEnv(t, limiter)

	rec := env.do(t, jsonRequest("POST", "/api/v1/upgrade/intent", SelectPlanRequest{PlanID: "growth"}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, jsonRequest("POST", "/api/v1/upgrade/intent", SelectPlanRequest{PlanID: "scale"}))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Reads are not limited
	rec = env.do(t, httptest.NewRequest("GET", "/api/v1/upgrade/checkout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_ListSubscriptionsLimit(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, httptest.NewRequest("GET", "/api/v1/subscriptions?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, httptest.NewRequest("GET", "/api/v1/subscriptions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
