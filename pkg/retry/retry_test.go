package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ekaya-inc/proposal-relay/pkg/apperrors"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:   maxRetries,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", cfg.MaxRetries)
	}
	if cfg.InitialDelay != 100*time.Millisecond {
		t.Errorf("expected InitialDelay=100ms, got %v", cfg.InitialDelay)
	}
	if cfg.MaxDelay != 5*time.Second {
		t.Errorf("expected MaxDelay=5s, got %v", cfg.MaxDelay)
	}
}

func TestConflictConfig(t *testing.T) {
	tests := []struct {
		attempts int
		retries  int
	}{
		{5, 4},
		{1, 0},
		{0, 0},
		{-3, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempts=%d", tt.attempts), func(t *testing.T) {
			if got := ConflictConfig(tt.attempts).MaxRetries; got != tt.retries {
				t.Errorf("expected MaxRetries=%d, got %d", tt.retries, got)
			}
		})
	}
}

type declaredErr struct{ retry bool }

func (e declaredErr) Error() string     { return "declared" }
func (e declaredErr) IsRetryable() bool { return e.retry }

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"conflict", apperrors.ErrConflict, true},
		{"wrapped conflict", fmt.Errorf("swap feedbacks: %w", apperrors.ErrConflict), true},
		{"declared retryable", declaredErr{retry: true}, true},
		{"declared permanent", declaredErr{retry: false}, false},
		{"wrapped declared", fmt.Errorf("x: %w", declaredErr{retry: true}), true},
		{"connection refused", errors.New("dial tcp: Connection Refused"), true},
		{"connection reset", errors.New("connection reset by peer"), true},
		{"i/o timeout", errors.New("read tcp: i/o timeout"), true},
		{"throttled", errors.New("ThrottlingException: Rate exceeded"), true},
		{"deadlock", errors.New("deadlock detected"), true},
		{"not found", apperrors.ErrNotFound, false},
		{"classified store error", apperrors.Wrap(apperrors.KindStore, errors.New("connection refused")), false},
		{"auth error", errors.New("authentication failed"), false},
		{"serialization", errors.New("invalid character 'x' looking for beginning of value"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestDoIfRetryable_ConflictThenSuccess(t *testing.T) {
	callCount := 0
	err := DoIfRetryable(context.Background(), fastConfig(3), func() error {
		callCount++
		if callCount < 3 {
			return apperrors.ErrConflict
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error after retries, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestDoIfRetryable_NonRetryableError(t *testing.T) {
	expectedErr := errors.New("authentication failed")
	callCount := 0
	err := DoIfRetryable(context.Background(), fastConfig(3), func() error {
		callCount++
		return expectedErr
	})

	if err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call (no retries), got %d", callCount)
	}
}

func TestDoIfRetryable_ExhaustedReturnsConflict(t *testing.T) {
	callCount := 0
	err := DoIfRetryable(context.Background(), fastConfig(2), func() error {
		callCount++
		return apperrors.ErrConflict
	})

	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestDoIfRetryable_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{
		MaxRetries:   5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	callCount := 0
	err := DoIfRetryable(ctx, cfg, func() error {
		callCount++
		return apperrors.ErrConflict
	})

	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestApplyJitter_Bounds(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		got := applyJitter(base, 0.5)
		if got < 50*time.Millisecond || got > 150*time.Millisecond {
			t.Fatalf("jittered delay %v outside +/-50%%", got)
		}
	}
	if got := applyJitter(base, 0); got != base {
		t.Errorf("expected no jitter, got %v", got)
	}
}

func TestDoIfRetryable_NilConfig(t *testing.T) {
	callCount := 0
	err := DoIfRetryable(context.Background(), nil, func() error {
		callCount++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error with nil config, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}
