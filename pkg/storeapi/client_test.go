package storeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextcommerce/storedash/pkg/auth"
	"github.com/nextcommerce/storedash/pkg/contextkeys"
	"github.com/nextcommerce/storedash/pkg/observability"
)

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/store/s1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_id":"s1","storeName":"Dar El Khir"}`))
	})
	mux.HandleFunc("/orders/store/s1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"_id":"o1","status":"confirmed","price":1500},
			{"_id":"o2","status":"pending","price":900},
			{"_id":"o3","status":"Connection failed 2","price":null}
		]`))
	})
	mux.HandleFunc("/products/store/s1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"p1"},{"_id":"p2"},{"_id":"p3"},{"_id":"p4"}]`))
	})
	mux.HandleFunc("/user/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"_id":"m1","isPaid":false,"ordersCount":151,"maxOrders":0}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func merchantContext() context.Context {
	return auth.WithMerchant(context.Background(), &auth.Merchant{ID: "m1", Token: "tok-1"})
}

func TestClient_Dashboard(t *testing.T) {
	srv := newUpstream(t)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	c := NewClient(srv.URL, 5*time.Second, 150, metrics)

	d, err := c.Dashboard(merchantContext(), "s1")
	require.NoError(t, err)

	assert.Equal(t, "Dar El Khir", d.Store.Name)
	assert.Equal(t, 4, d.ProductCount)
	require.Len(t, d.Orders, 3)
	assert.Equal(t, "o1", d.Orders[0].ID)
	assert.True(t, decimal.NewFromInt(1500).Equal(d.Orders[0].Price))
	assert.True(t, d.Orders[2].Price.IsZero())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreAPIRequestsTotal.WithLabelValues("orders", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreAPIRequestsTotal.WithLabelValues("products", "200")))
}

func TestClient_DashboardFailsWhenAnyCallFails(t *testing.T) {
	srv := newUpstream(t)
	c := NewClient(srv.URL, 5*time.Second, 150, nil)

	_, err := c.Dashboard(merchantContext(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_ForwardsCredentials(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"_id":"s1"}`))
	}))
	defer srv.Close()

	ctx := contextkeys.WithRequestID(merchantContext(), "req-42")
	_, err := NewClient(srv.URL, time.Second, 150, nil).Store(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "req-42", gotRequestID)
}

func TestClient_UpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/store/broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second, 150, nil)

	_, err := c.Store(context.Background(), "broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "boom")

	_, err = c.Orders(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestClient_Usage(t *testing.T) {
	srv := newUpstream(t)
	c := NewClient(srv.URL, time.Second, 150, nil)

	ctx := merchantContext()
	usage, err := c.Usage(ctx, auth.FromContext(ctx))
	require.NoError(t, err)
	assert.Equal(t, 151, usage.Used)
	assert.Equal(t, 150, usage.Limit, "missing limit falls back to the free allowance")
	assert.False(t, usage.IsPaid)

	_, err = c.Usage(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUpstream)
}
