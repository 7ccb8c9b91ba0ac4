package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// stubAdapter records requests and returns a canned response or error.
type stubAdapter struct {
	name  string
	resp  *Response
	err   error
	calls int
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Complete(_ context.Context, _ Request) (*Response, error) {
	s.calls++
	return s.resp, s.err
}

func TestClientRoutesToDefaultProvider(t *testing.T) {
	adapter := &stubAdapter{name: "stub", resp: &Response{Message: AssistantMessage("hi")}}
	client := NewClient(WithProvider("stub", adapter))

	resp, err := client.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "hi" {
		t.Errorf("text = %q", resp.Text())
	}
	if adapter.calls != 1 {
		t.Errorf("calls = %d, want 1", adapter.calls)
	}
}

func TestClientExplicitProviderSelection(t *testing.T) {
	first := &stubAdapter{name: "first", resp: &Response{Message: AssistantMessage("from first")}}
	second := &stubAdapter{name: "second", resp: &Response{Message: AssistantMessage("from second")}}
	client := NewClient(
		WithProvider("first", first),
		WithProvider("second", second),
		WithDefaultProvider("first"),
	)

	resp, err := client.Complete(context.Background(), Request{Provider: "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "from second" {
		t.Errorf("text = %q", resp.Text())
	}
	if first.calls != 0 {
		t.Errorf("default provider called %d times, want 0", first.calls)
	}
}

func TestClientUnknownProvider(t *testing.T) {
	client := NewClient(WithProvider("stub", &stubAdapter{name: "stub"}))

	_, err := client.Complete(context.Background(), Request{Provider: "missing"})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %T, want *ConfigurationError", err)
	}
}

func TestClientNoDefaultAmongMultiple(t *testing.T) {
	client := NewClient(
		WithProvider("a", &stubAdapter{name: "a"}),
		WithProvider("b", &stubAdapter{name: "b"}),
	)

	_, err := client.Complete(context.Background(), Request{})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %T, want *ConfigurationError", err)
	}
}

func TestClientMiddlewareOrder(t *testing.T) {
	adapter := &stubAdapter{name: "stub", resp: &Response{Message: AssistantMessage("done")}}

	var trace []string
	mark := func(name string) Middleware {
		return func(ctx context.Context, req Request, next func(context.Context, Request) (*Response, error)) (*Response, error) {
			trace = append(trace, name+":before")
			resp, err := next(ctx, req)
			trace = append(trace, name+":after")
			return resp, err
		}
	}

	client := NewClient(
		WithProvider("stub", adapter),
		WithMiddleware(mark("outer"), mark("inner")),
	)

	if _, err := client.Complete(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"outer:before", "inner:before", "inner:after", "outer:after"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v", trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("trace[%d] = %q, want %q", i, trace[i], want[i])
		}
	}
}

func TestClientRetryMiddlewareIntegration(t *testing.T) {
	calls := 0
	adapter := &flakyAdapter{fail: 2, onCall: func() { calls++ }}

	client := NewClient(
		WithProvider("flaky", adapter),
		WithMiddleware(RetryMiddleware(fastPolicy(3))),
	)

	resp, err := client.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "recovered" {
		t.Errorf("text = %q", resp.Text())
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

// flakyAdapter fails the first n calls with a retryable error.
type flakyAdapter struct {
	fail   int
	seen   int
	onCall func()
}

func (f *flakyAdapter) Name() string { return "flaky" }

func (f *flakyAdapter) Complete(_ context.Context, _ Request) (*Response, error) {
	f.onCall()
	f.seen++
	if f.seen <= f.fail {
		return nil, &ServerError{ProviderError: ProviderError{
			SDKError: SDKError{Message: fmt.Sprintf("failure %d", f.seen)}, Retryable: true,
		}}
	}
	return &Response{Message: AssistantMessage("recovered")}, nil
}
