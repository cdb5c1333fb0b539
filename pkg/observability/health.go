package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
)

// PingFunc checks a single dependency
type PingFunc func(ctx context.Context) error

type dependency struct {
	name     string
	critical bool
	ping     PingFunc
}

// HealthChecker provides health check functionality
type HealthChecker struct {
	db      *sql.DB
	redis   *redis.Client
	extra   []dependency
	version string
}

// NewHealthChecker creates a new health checker. Either client may be nil.
func NewHealthChecker(db *sql.DB, redis *redis.Client) *HealthChecker {
	return &HealthChecker{
		db:      db,
		redis:   redis,
		version: "dev",
	}
}

// WithVersion sets the version reported in health responses
func (h *HealthChecker) WithVersion(version string) *HealthChecker {
	h.version = version
	return h
}

// AddDependency registers an additional dependency probe. A failing critical
// dependency makes the service unhealthy; a non-critical one only degrades it.
func (h *HealthChecker) AddDependency(name string, critical bool, ping PingFunc) {
	h.extra = append(h.extra, dependency{name: name, critical: critical, ping: ping})
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Version      string                      `json:"version,omitempty"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus represents the health of a single dependency
type DependencyStatus struct {
	Status    string        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Latency   time.Duration `json:"latency_ms,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Liveness returns 200 as long as the process is serving
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    StatusHealthy,
		"timestamp": time.Now(),
	})
}

// Readiness checks all dependencies and answers 503 when unhealthy
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if status.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(status)
}

// Check probes every configured dependency
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Version:      h.version,
		Dependencies: make(map[string]DependencyStatus),
	}

	deps := make([]dependency, 0, len(h.extra)+2)
	if h.db != nil {
		deps = append(deps, dependency{name: "database", critical: true, ping: h.pingDatabase})
	}
	// The intent store falls back to memory, so Redis only degrades
	if h.redis != nil {
		deps = append(deps, dependency{name: "redis", critical: false, ping: func(ctx context.Context) error {
			return h.redis.Ping(ctx).Err()
		}})
	}
	deps = append(deps, h.extra...)
	sort.SliceStable(deps, func(i, j int) bool { return deps[i].name < deps[j].name })

	for _, dep := range deps {
		depStatus := probe(ctx, dep.ping)
		status.Dependencies[dep.name] = depStatus
		if depStatus.Status != StatusUnhealthy {
			continue
		}
		if dep.critical {
			status.Status = StatusUnhealthy
		} else if status.Status != StatusUnhealthy {
			status.Status = StatusDegraded
		}
	}

	return status
}

func (h *HealthChecker) pingDatabase(ctx context.Context) error {
	if err := h.db.PingContext(ctx); err != nil {
		return err
	}
	var one int
	return h.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

func probe(ctx context.Context, ping PingFunc) DependencyStatus {
	start := time.Now()
	err := ping(ctx)
	status := DependencyStatus{
		Status:    StatusHealthy,
		Latency:   time.Since(start),
		Timestamp: time.Now(),
	}
	if err != nil {
		status.Status = StatusUnhealthy
		status.Message = err.Error()
	}
	return status
}

// RegisterHealthRoutes registers health check endpoints
func RegisterHealthRoutes(mux *http.ServeMux, checker *HealthChecker) {
	mux.HandleFunc("/health", checker.Readiness)
	mux.HandleFunc("/health/live", checker.Liveness)
	mux.HandleFunc("/health/ready", checker.Readiness)
}
