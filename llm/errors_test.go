package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFromStatusCode(t *testing.T) {
	tests := []struct {
		status        int
		wantType      string
		wantRetryable bool
	}{
		{400, "*llm.InvalidRequestError", false},
		{401, "*llm.AuthenticationError", false},
		{403, "*llm.AccessDeniedError", false},
		{404, "*llm.NotFoundError", false},
		{408, "*llm.RequestTimeoutError", true},
		{413, "*llm.ContextLengthError", false},
		{422, "*llm.InvalidRequestError", false},
		{429, "*llm.RateLimitError", true},
		{500, "*llm.ServerError", true},
		{503, "*llm.ServerError", true},
		{418, "*llm.ProviderError", true},
	}

	for _, tc := range tests {
		err := ErrorFromStatusCode(tc.status, "boom", "openai", nil)
		if got := fmt.Sprintf("%T", err); got != tc.wantType {
			t.Errorf("status %d: type = %s, want %s", tc.status, got, tc.wantType)
		}
		if got := IsRetryable(err); got != tc.wantRetryable {
			t.Errorf("status %d: retryable = %v, want %v", tc.status, got, tc.wantRetryable)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("nil error reported retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error reported retryable")
	}
	if IsRetryable(&ConfigurationError{SDKError: SDKError{Message: "bad config"}}) {
		t.Error("configuration error reported retryable")
	}
	if !IsRetryable(&NetworkError{SDKError: SDKError{Message: "connection reset"}}) {
		t.Error("network error reported not retryable")
	}
	if !IsRetryable(&ProviderError{SDKError: SDKError{Message: "overloaded"}, Retryable: true}) {
		t.Error("retryable provider error reported not retryable")
	}
	if IsRetryable(&ProviderError{SDKError: SDKError{Message: "nope"}}) {
		t.Error("non-retryable provider error reported retryable")
	}
}

func TestSDKErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &SDKError{Message: "wrapper", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("Unwrap chain broken")
	}
	if err.Error() != "wrapper: root cause" {
		t.Errorf("Error() = %q", err.Error())
	}

	bare := &SDKError{Message: "no cause"}
	if bare.Error() != "no cause" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestProviderErrorMessage(t *testing.T) {
	err := &ProviderError{
		SDKError:   SDKError{Message: "rate limited"},
		Provider:   "kimi",
		StatusCode: 429,
		Retryable:  true,
	}
	want := "[kimi] rate limited (status=429, retryable=true)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
