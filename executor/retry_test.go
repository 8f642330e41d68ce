package executor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testPolicy(delays *[]time.Duration) Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			*delays = append(*delays, d)
			return nil
		},
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	var delays []time.Duration
	p := testPolicy(&delays)

	attempt := 0
	err := p.Do(context.Background(), "lookup", func(ctx context.Context) error {
		attempt++
		if attempt < 3 {
			return &StatusError{Code: 503, Body: "unavailable"}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempt != 3 {
		t.Errorf("attempts = %d, want 3", attempt)
	}
	// Backoff grows with the attempt index: (0+2)*2s then (1+2)*2s.
	want := []time.Duration{4 * time.Second, 6 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay %d = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	var delays []time.Duration
	p := testPolicy(&delays)

	attempt := 0
	err := p.Do(context.Background(), "lookup", func(ctx context.Context) error {
		attempt++
		return &ValidationError{Reason: "missing abstract"}
	})

	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if attempt != 3 {
		t.Errorf("attempts = %d, want 3", attempt)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("exhaustion should wrap the last error, got %v", err)
	}
}

func TestDoAbortsOnFatalError(t *testing.T) {
	var delays []time.Duration
	p := testPolicy(&delays)

	fatal := errors.New("nil pointer in handler")
	attempt := 0
	err := p.Do(context.Background(), "score", func(ctx context.Context) error {
		attempt++
		return fatal
	})

	if !errors.Is(err, fatal) {
		t.Fatalf("got %v, want fatal error", err)
	}
	if attempt != 1 {
		t.Errorf("attempts = %d, want 1 (fatal aborts immediately)", attempt)
	}
	if len(delays) != 0 {
		t.Errorf("fatal error slept %v, want no sleep", delays)
	}
}

func TestIsRetryableClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status", &StatusError{Code: 500}, true},
		{"validation", &ValidationError{Reason: "missing keys"}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"programming", errors.New("index out of range"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
