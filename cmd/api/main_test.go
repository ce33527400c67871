package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appconfig "github.com/inkwell-tutoring/inkwell-platform/internal/config"
	"github.com/inkwell-tutoring/inkwell-platform/internal/leads"
	"github.com/inkwell-tutoring/inkwell-platform/internal/observability/metrics"
	"github.com/inkwell-tutoring/inkwell-platform/pkg/logging"
)

func TestSetupLeadsRepositoryMemoryDefault(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{LeadsBackend: "memory"}

	repo, cleanup, err := setupLeadsRepository(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup != nil {
		t.Error("memory backend needs no cleanup")
	}
	if _, ok := repo.(*leads.InMemoryRepository); !ok {
		t.Fatalf("expected in-memory repository, got %T", repo)
	}
}

func TestSetupLeadMetricsExposesMetrics(t *testing.T) {
	handler, m := setupLeadMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveSubmission(metrics.StatusAccepted)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "inkwell_leads_submissions_total") {
		t.Fatalf("expected submissions counter to be exported")
	}
}

func TestSetupLeadAlerterDisabledByDefault(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{}

	if alerter := setupLeadAlerter(context.Background(), cfg, logger); alerter != nil {
		t.Fatalf("expected alerts disabled without a provider, got %T", alerter)
	}
}

func TestSetupLeadAlerterStubProvider(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{
		NotifyProvider: "stub",
		NotifyToEmail:  "tutor@inkwell.example",
	}

	if alerter := setupLeadAlerter(context.Background(), cfg, logger); alerter == nil {
		t.Fatal("expected stub alerter")
	}
}

func TestSetupLeadAlerterStubWithoutDestination(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{NotifyProvider: "stub"}

	if alerter := setupLeadAlerter(context.Background(), cfg, logger); alerter != nil {
		t.Fatal("expected alerts disabled without a destination address")
	}
}
