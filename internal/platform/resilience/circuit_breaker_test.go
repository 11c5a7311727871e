package resilience

import (
	"errors"
	"testing"
	"time"
)

func newTestBreaker(now *time.Time) *CircuitBreaker {
	b := NewCircuitBreaker("statsfeed", CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   1,
	})
	b.now = func() time.Time { return *now }
	return b
}

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 11, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)

	var transitions []CircuitState
	b.OnStateChange(func(_ string, _, to CircuitState) { transitions = append(transitions, to) })

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe to be rejected, got %v", err)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}

	want := []CircuitState{CircuitStateOpen, CircuitStateHalfOpen, CircuitStateClosed}
	if len(transitions) != len(want) {
		t.Fatalf("unexpected transitions %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transition %d: want %s got %s", i, want[i], transitions[i])
		}
	}
}

func TestCircuitBreaker_ExecuteSkipsNonFailures(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 11, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)

	clientErr := errors.New("bad request")
	isFailure := func(err error) bool { return !errors.Is(err, clientErr) }

	for range 5 {
		if err := b.Execute(func() error { return clientErr }, isFailure); !errors.Is(err, clientErr) {
			t.Fatalf("expected client error passthrough, got %v", err)
		}
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("client errors must not open the breaker, got %s", state)
	}

	upstream := errors.New("502")
	_ = b.Execute(func() error { return upstream }, isFailure)
	_ = b.Execute(func() error { return upstream }, isFailure)
	if err := b.Execute(func() error { return nil }, isFailure); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open breaker, got %v", err)
	}
}

func TestCircuitBreaker_DisabledIsNil(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker("identity", CircuitBreakerConfig{Enabled: false})
	if b != nil {
		t.Fatalf("expected nil breaker when disabled")
	}
	if err := b.Execute(func() error { return nil }, nil); err != nil {
		t.Fatalf("nil breaker should allow calls: %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("nil breaker reports closed, got %s", state)
	}
}

func TestRetryConfig_Delay(t *testing.T) {
	t.Parallel()

	cfg := RetryConfig{MaxAttempts: 0, Backoff: 100 * time.Millisecond}.Normalize()
	if cfg.MaxAttempts != 1 {
		t.Fatalf("expected at least one attempt, got %d", cfg.MaxAttempts)
	}
	if got := cfg.Delay(1); got != 0 {
		t.Fatalf("first attempt has no delay, got %s", got)
	}
	if got := cfg.Delay(3); got != 200*time.Millisecond {
		t.Fatalf("unexpected third attempt delay %s", got)
	}
}
