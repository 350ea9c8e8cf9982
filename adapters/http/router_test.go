package http_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	rpchttp "github.com/artpar/rpcgate/adapters/http"
	"github.com/artpar/rpcgate/adapters/metrics"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

type seqIDs struct{}

func (seqIDs) New() string { return "id-1" }

func newRouter(t *testing.T, cfg rpchttp.RouterConfig, checker rpchttp.HealthChecker) http.Handler {
	t.Helper()
	return rpchttp.NewRouter(newHandler(t), rpchttp.NewHealthHandler(checker), zerolog.Nop(), cfg)
}

func TestRouter_Healthz(t *testing.T) {
	router := newRouter(t, rpchttp.RouterConfig{}, nil)

	w := get(router, "/healthz")

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestRouter_Readiness(t *testing.T) {
	healthy := rpchttp.CheckerFunc(func(ctx context.Context) error { return nil })
	router := newRouter(t, rpchttp.RouterConfig{}, healthy)

	if w := get(router, "/healthz/ready"); w.Code != http.StatusOK {
		t.Errorf("healthy status = %d", w.Code)
	}

	sick := rpchttp.CheckerFunc(func(ctx context.Context) error { return errors.New("db gone") })
	router = newRouter(t, rpchttp.RouterConfig{}, sick)

	w := get(router, "/healthz/ready")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "db gone") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	router := newRouter(t, rpchttp.RouterConfig{
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}, nil)

	// Drive one dispatch through the full stack first.
	if w := get(router, "/add?a=1&b=1"); w.Code != http.StatusOK {
		t.Fatalf("dispatch status = %d", w.Code)
	}

	w := get(router, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "rpcgate_requests_in_flight") {
		t.Error("expected rpcgate metrics in exposition")
	}
}

func TestRouter_DispatchCatchAll(t *testing.T) {
	router := newRouter(t, rpchttp.RouterConfig{}, nil)

	if w := get(router, "/add?a=2&b=3"); w.Code != http.StatusOK || w.Body.String() != "5" {
		t.Errorf("status = %d, body = %q", w.Code, w.Body.String())
	}

	// Root path serves descriptors.
	if w := get(router, "/"); w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "[") {
		t.Errorf("root status = %d, body = %q", w.Code, w.Body.String())
	}
}
