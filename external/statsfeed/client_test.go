package statsfeed

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/platform/resilience"
	"github.com/riskibarqy/nhl-pickem/internal/usecase"
)

const weekPayload = `{
  "totalGames": 3,
  "dates": [
    {
      "date": "2025-01-12",
      "games": [
        {
          "gamePk": 2024020650,
          "status": {"abstractGameState": "Final", "detailedState": "Final"},
          "teams": {
            "away": {"score": 2, "team": {"id": 10, "name": "Toronto Maple Leafs"}},
            "home": {"score": 4, "team": {"id": 6, "name": "Boston Bruins"}}
          }
        },
        {
          "gamePk": 2024020651,
          "status": {"abstractGameState": "Live", "detailedState": "In Progress"},
          "teams": {
            "away": {"score": 1, "team": {"id": 25, "name": "Dallas Stars"}},
            "home": {"score": 1, "team": {"id": 19, "name": "St. Louis Blues"}}
          }
        }
      ]
    },
    {
      "date": "2025-01-14",
      "games": [
        {
          "gamePk": 2024020670,
          "status": {"abstractGameState": "Preview", "detailedState": "Scheduled"},
          "teams": {
            "away": {"team": {"id": 3, "name": "New York Rangers"}},
            "home": {"team": {"id": 4, "name": "Philadelphia Flyers"}}
          }
        }
      ]
    }
  ]
}`

func TestClient_ListByDateRange(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schedule" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(weekPayload))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})
	start := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	games, err := client.ListByDateRange(t.Context(), start, start.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("list games: %v", err)
	}

	if gotQuery != "endDate=2025-01-18&startDate=2025-01-12" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if len(games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(games))
	}

	first := games[0]
	if first.ID != "2024020650" || first.HomeTeam != "Boston Bruins" || first.AwayTeam != "Toronto Maple Leafs" {
		t.Fatalf("unexpected first game %+v", first)
	}
	if first.Status != game.StatusFinal || first.HomeScore == nil || *first.HomeScore != 4 {
		t.Fatalf("unexpected first game result %+v", first)
	}
	if games[1].Status != game.StatusLive {
		t.Fatalf("expected live game, got %s", games[1].Status)
	}
	if games[2].HomeScore != nil || !games[2].Date.Equal(time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected scheduled game %+v", games[2])
	}
}

func TestClient_ListByDate_UsesDateParam(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("date"); got != "2025-01-12" {
			t.Errorf("unexpected date param %q", got)
		}
		_, _ = w.Write([]byte(`{"totalGames":0,"dates":[]}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})
	games, err := client.ListByDate(t.Context(), time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 0 {
		t.Fatalf("expected no games, got %d", len(games))
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"dates":[]}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		Retry:   resilience.RetryConfig{MaxAttempts: 2, Backoff: time.Millisecond},
	})
	if _, err := client.ListByDate(t.Context(), time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		Retry:   resilience.RetryConfig{MaxAttempts: 3},
	})
	if _, err := client.ListByDate(t.Context(), time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Fatalf("expected error for 400")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestClient_OpenBreakerReportsDependencyUnavailable(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
		},
	})
	day := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)

	if _, err := client.ListByDate(t.Context(), day); err == nil {
		t.Fatalf("expected upstream error")
	}
	_, err := client.ListByDate(t.Context(), day)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("open breaker must not reach upstream, got %d calls", calls.Load())
	}
}

func TestMapStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Final":                  game.StatusFinal,
		"Final/OT":               game.StatusLive,
		"In Progress - Critical": game.StatusLive,
		"Postponed":              game.StatusPostponed,
		"Pre-Game":               game.StatusScheduled,
		"":                       game.StatusScheduled,
	}
	for input, want := range cases {
		if got := mapStatus(input); got != want {
			t.Fatalf("mapStatus(%q) = %s, want %s", input, got, want)
		}
	}
}
