package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:        maxRetries,
		BaseDelay:         0.001,
		MaxDelay:          0.01,
		BackoffMultiplier: 2.0,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastPolicy(3), func(_ context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &ServerError{ProviderError: ProviderError{
				SDKError: SDKError{Message: "overloaded"}, Retryable: true,
			}}
		}
		return "done", nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "done" {
		t.Errorf("result = %q", result)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(5), func(_ context.Context) (string, error) {
		calls++
		return "", &AuthenticationError{ProviderError: ProviderError{
			SDKError: SDKError{Message: "bad key"},
		}}
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on auth failure)", calls)
	}
}

func TestRetryExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(2), func(_ context.Context) (string, error) {
		calls++
		return "", &NetworkError{SDKError: SDKError{Message: "reset"}}
	})

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
}

func TestRetryHonorsRetryAfterCap(t *testing.T) {
	retryAfter := 300.0 // beyond MaxDelay
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(3), func(_ context.Context) (string, error) {
		calls++
		return "", &RateLimitError{ProviderError: ProviderError{
			SDKError:   SDKError{Message: "slow down"},
			Retryable:  true,
			RetryAfter: &retryAfter,
		}}
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (retry-after beyond cap aborts)", calls)
	}
}

func TestRetryAbortsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: 10, MaxDelay: 60, BackoffMultiplier: 2}

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Retry(ctx, policy, func(_ context.Context) (string, error) {
			calls++
			return "", &NetworkError{SDKError: SDKError{Message: "reset"}}
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		var abort *AbortError
		if !errors.As(err, &abort) {
			t.Errorf("error = %T, want *AbortError", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Retry did not return after cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDelayGrowth(t *testing.T) {
	policy := RetryPolicy{BaseDelay: 1, MaxDelay: 4, BackoffMultiplier: 2}

	if got := policy.Delay(0); got != time.Second {
		t.Errorf("Delay(0) = %v", got)
	}
	if got := policy.Delay(1); got != 2*time.Second {
		t.Errorf("Delay(1) = %v", got)
	}
	// Capped at MaxDelay.
	if got := policy.Delay(10); got != 4*time.Second {
		t.Errorf("Delay(10) = %v", got)
	}
}

func TestDelayJitterBounds(t *testing.T) {
	policy := RetryPolicy{BaseDelay: 1, MaxDelay: 60, BackoffMultiplier: 2, Jitter: true}
	for i := 0; i < 100; i++ {
		d := policy.Delay(0)
		if d < 500*time.Millisecond || d > 1500*time.Millisecond {
			t.Fatalf("jittered delay out of bounds: %v", d)
		}
	}
}
