package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fastConfig keeps backoff waits in the low-millisecond range so the
// suite stays quick.
func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		r := New(nil)
		if r.config.MaxRetries != 5 {
			t.Errorf("MaxRetries = %d, want 5", r.config.MaxRetries)
		}
		if r.config.InitialInterval != time.Second {
			t.Errorf("InitialInterval = %v, want 1s", r.config.InitialInterval)
		}
	})

	t.Run("zero values", func(t *testing.T) {
		r := New(&Config{MaxRetries: 2})
		if r.config.InitialInterval != time.Second {
			t.Errorf("InitialInterval = %v, want 1s", r.config.InitialInterval)
		}
		if r.config.MaxInterval != 30*time.Second {
			t.Errorf("MaxInterval = %v, want 30s", r.config.MaxInterval)
		}
		if r.config.Multiplier != 2.0 {
			t.Errorf("Multiplier = %f, want 2.0", r.config.Multiplier)
		}
	})

	t.Run("jitter clamped", func(t *testing.T) {
		r := New(&Config{JitterFactor: 2.5})
		if r.config.JitterFactor != 1 {
			t.Errorf("JitterFactor = %f, want 1", r.config.JitterFactor)
		}
	})
}

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	result := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if calls != 1 {
		t.Errorf("operation ran %d times, want 1", calls)
	}
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	result := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("attempt %d failed", calls)
		}
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
}

func TestDo_MaxRetriesExceeded(t *testing.T) {
	opErr := errors.New("backend down")
	calls := 0
	result := Do(context.Background(), fastConfig(2), func(ctx context.Context) error {
		calls++
		return opErr
	})

	if !errors.Is(result.Err, ErrMaxRetriesExceeded) {
		t.Errorf("Err = %v, want ErrMaxRetriesExceeded", result.Err)
	}
	if !errors.Is(result.LastError, opErr) {
		t.Errorf("LastError = %v, want the operation's error", result.LastError)
	}
	// 1 initial + 2 retries
	if calls != 3 {
		t.Errorf("operation ran %d times, want 3", calls)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	t.Run("before first attempt", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		result := Do(ctx, fastConfig(3), func(ctx context.Context) error {
			calls++
			return nil
		})

		if !errors.Is(result.Err, ErrContextCanceled) {
			t.Errorf("Err = %v, want ErrContextCanceled", result.Err)
		}
		if calls != 0 {
			t.Errorf("operation ran %d times, want 0", calls)
		}
	})

	t.Run("during backoff wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		cfg := &Config{MaxRetries: 3, InitialInterval: time.Minute}
		result := Do(ctx, cfg, func(ctx context.Context) error {
			cancel()
			return errors.New("fail once")
		})

		if !errors.Is(result.Err, ErrContextCanceled) {
			t.Errorf("Err = %v, want ErrContextCanceled", result.Err)
		}
		if result.Attempts != 1 {
			t.Errorf("Attempts = %d, want 1", result.Attempts)
		}
	})
}

func TestDoWithCallback_ReportsEachRetry(t *testing.T) {
	type retryReport struct {
		attempt  int
		interval time.Duration
	}
	var reports []retryReport

	opErr := errors.New("still failing")
	result := DoWithCallback(context.Background(), fastConfig(2),
		func(ctx context.Context) error {
			return opErr
		},
		func(attempt int, err error, next time.Duration) {
			if !errors.Is(err, opErr) {
				t.Errorf("callback err = %v, want the operation's error", err)
			}
			reports = append(reports, retryReport{attempt: attempt, interval: next})
		})

	if !errors.Is(result.Err, ErrMaxRetriesExceeded) {
		t.Fatalf("Err = %v, want ErrMaxRetriesExceeded", result.Err)
	}

	// Callback fires before each wait, so the final attempt gets none.
	if len(reports) != 2 {
		t.Fatalf("callback fired %d times, want 2", len(reports))
	}
	for i, report := range reports {
		if report.attempt != i+1 {
			t.Errorf("report %d attempt = %d, want %d", i, report.attempt, i+1)
		}
		if report.interval <= 0 {
			t.Errorf("report %d interval = %v, want > 0", i, report.interval)
		}
	}
}

func TestInterval_GrowsAndCaps(t *testing.T) {
	r := New(&Config{
		MaxRetries:      10,
		InitialInterval: time.Second,
		MaxInterval:     8 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0, // deterministic
	})

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		8 * time.Second, // capped
	}
	for attempt, expected := range want {
		if got := r.interval(attempt); got != expected {
			t.Errorf("interval(%d) = %v, want %v", attempt, got, expected)
		}
	}
}

func TestInterval_JitterStaysBounded(t *testing.T) {
	r := New(&Config{
		MaxRetries:      3,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	})

	for i := 0; i < 100; i++ {
		got := r.interval(0)
		if got < 900*time.Millisecond || got > 1100*time.Millisecond {
			t.Fatalf("interval(0) = %v, want within ±10%% of 1s", got)
		}
	}
}
