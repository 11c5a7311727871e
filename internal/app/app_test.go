package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/config"
	"github.com/riskibarqy/nhl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nhl-pickem/internal/platform/resilience"
)

func memoryConfig() config.Config {
	return config.Config{
		ServiceName:        "nhl-pickem-test",
		HTTPAddr:           ":0",
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		Location:           time.UTC,
		StoreBackend:       config.StoreMemory,
		ScheduleMode:       config.ScheduleModeManual,
		IdentityProvider:   config.IdentityMemory,
		OutcomeWorkers:     2,
		CacheEnabled:       true,
		CacheTTL:           time.Minute,
		CORSAllowedOrigins: []string{"*"},
		InternalJobToken:   "job-secret",
		ScheduleFeedRetry:  resilience.RetryConfig{MaxAttempts: 1},
	}
}

func TestNew_MemoryManualServesRoutes(t *testing.T) {
	t.Parallel()

	a, err := New(t.Context(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	for _, path := range []string{"/healthz", "/v1/weeks/current", "/v1/outcomes/any-game", "/v1/leaderboards/all-time"} {
		rec := httptest.NewRecorder()
		a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d (%s)", path, rec.Code, rec.Body.String())
		}
	}
}

func TestNew_FeedModeHidesOutcomeRoutes(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.ScheduleMode = config.ScheduleModeFeed
	cfg.ScheduleFeedBaseURL = "http://127.0.0.1:1"
	cfg.ScheduleFeedTimeout = time.Second

	a, err := New(t.Context(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/outcomes/2025020001", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 in feed mode, got %d", rec.Code)
	}
}

func TestNew_ScheduleTable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.csv")
	csv := "date,game_id,home_team,away_team\n2025-01-12,g1,Boston Bruins,Toronto Maple Leafs\n"
	if err := os.WriteFile(path, []byte(csv), 0o600); err != nil {
		t.Fatalf("write schedule: %v", err)
	}

	cfg := memoryConfig()
	cfg.ScheduleTablePath = path
	if _, err := New(t.Context(), cfg, logging.NewNop()); err != nil {
		t.Fatalf("build app with schedule table: %v", err)
	}

	cfg.ScheduleTablePath = filepath.Join(dir, "missing.csv")
	if _, err := New(t.Context(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for a missing schedule table")
	}
}
