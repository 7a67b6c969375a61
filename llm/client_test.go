// ABOUTME: Tests for the Client infrastructure, middleware chain, env detection, and provider routing.
// ABOUTME: Uses real test doubles (testAdapter) implementing ProviderAdapter to verify behavior.

package llm

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
)

// testAdapter is a ProviderAdapter that returns pre-configured values and
// records the requests it receives.
type testAdapter struct {
	name          string
	completeResp  *Response
	completeErr   error
	completeCalls []Request
	closed        bool
	closeErr      error
	mu            sync.Mutex
}

func newTestAdapter(name string) *testAdapter {
	return &testAdapter{
		name: name,
		completeResp: &Response{
			ID:           "resp-" + name,
			Model:        "test-model",
			Provider:     name,
			Messages:     []Message{AssistantMessage("hello from " + name)},
			FinishReason: FinishReason{Reason: FinishStop},
		},
	}
}

func (a *testAdapter) Name() string { return a.name }

func (a *testAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.completeCalls = append(a.completeCalls, req)
	if a.completeErr != nil {
		return nil, a.completeErr
	}
	return a.completeResp, nil
}

func (a *testAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return a.closeErr
}

func envFrom(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestClientRoutesToDefaultProvider(t *testing.T) {
	first := newTestAdapter("first")
	second := newTestAdapter("second")
	c := NewClient(WithProvider("first", first), WithProvider("second", second))

	resp, err := c.Complete(context.Background(), Request{Messages: []Message{UserMessage("hi")}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.TextContent() != "hello from first" {
		t.Errorf("TextContent = %q", resp.TextContent())
	}
	if len(second.completeCalls) != 0 {
		t.Error("second provider should not be called")
	}
}

func TestClientRoutesByRequestProvider(t *testing.T) {
	first := newTestAdapter("first")
	second := newTestAdapter("second")
	c := NewClient(WithProvider("first", first), WithProvider("second", second))

	resp, err := c.Complete(context.Background(), Request{Provider: "second"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Provider != "second" {
		t.Errorf("Provider = %q, want second", resp.Provider)
	}
}

func TestClientExplicitDefaultProvider(t *testing.T) {
	c := NewClient(
		WithProvider("first", newTestAdapter("first")),
		WithProvider("second", newTestAdapter("second")),
		WithDefaultProvider("second"),
	)
	if c.DefaultProvider() != "second" {
		t.Errorf("DefaultProvider = %q, want second", c.DefaultProvider())
	}
}

func TestClientUnknownProvider(t *testing.T) {
	c := NewClient(WithProvider("first", newTestAdapter("first")))
	_, err := c.Complete(context.Background(), Request{Provider: "missing"})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
}

func TestClientNoProviders(t *testing.T) {
	c := NewClient()
	_, err := c.Complete(context.Background(), Request{})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	record := func(name string) Middleware {
		return func(ctx context.Context, req Request, next NextFunc) (*Response, error) {
			order = append(order, name+":before")
			resp, err := next(ctx, req)
			order = append(order, name+":after")
			return resp, err
		}
	}

	c := NewClient(
		WithProvider("p", newTestAdapter("p")),
		WithMiddleware(record("outer"), record("inner")),
	)
	if _, err := c.Complete(context.Background(), Request{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	want := []string{"outer:before", "inner:before", "inner:after", "outer:after"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	ok := newTestAdapter("ok")
	c := NewClient(WithProvider("ok", ok), WithMiddleware(LoggingMiddleware(logger)))
	if _, err := c.Complete(context.Background(), Request{Model: "m"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.Contains(buf.String(), "component=llm action=complete status=ok provider=ok") {
		t.Errorf("unexpected log output: %q", buf.String())
	}

	buf.Reset()
	failing := newTestAdapter("bad")
	failing.completeErr = ErrorFromStatusCode(503, "unavailable", "bad", "")
	c = NewClient(WithProvider("bad", failing), WithMiddleware(LoggingMiddleware(logger)))
	if _, err := c.Complete(context.Background(), Request{Provider: "bad"}); err == nil {
		t.Fatal("expected error")
	}
	out := buf.String()
	if !strings.Contains(out, "status=error") || !strings.Contains(out, "transient=true") {
		t.Errorf("unexpected log output: %q", out)
	}
}

func TestClientClose(t *testing.T) {
	a := newTestAdapter("a")
	b := newTestAdapter("b")
	b.closeErr = errors.New("boom")
	c := NewClient(WithProvider("a", a), WithProvider("b", b))

	err := c.Close()
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected combined close error, got %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("expected both adapters closed")
	}
}

func TestLookupToken(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		wantToken  string
		wantSource string
	}{
		{"none", map[string]string{}, "", ""},
		{"github token", map[string]string{"GITHUB_TOKEN": "a"}, "a", "GITHUB_TOKEN"},
		{"gh token fallback", map[string]string{"GH_TOKEN": "b"}, "b", "GH_TOKEN"},
		{"github token wins", map[string]string{"GITHUB_TOKEN": "a", "GH_TOKEN": "b"}, "a", "GITHUB_TOKEN"},
		{"empty primary falls through", map[string]string{"GITHUB_TOKEN": "", "GH_TOKEN": "b"}, "b", "GH_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, source := LookupToken(envFrom(tt.env))
			if token != tt.wantToken || source != tt.wantSource {
				t.Errorf("LookupToken = (%q, %q), want (%q, %q)", token, source, tt.wantToken, tt.wantSource)
			}
		})
	}
}

func TestFromEnvNoCredentials(t *testing.T) {
	_, err := FromEnv(EnvOptions{Getenv: envFrom(nil)})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
}

func TestFromEnvPrefersGitHub(t *testing.T) {
	c, err := FromEnv(EnvOptions{Getenv: envFrom(map[string]string{
		"GH_TOKEN":       "gho_x",
		"OPENAI_API_KEY": "sk-x",
	})})
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.DefaultProvider() != ProviderGitHub {
		t.Errorf("DefaultProvider = %q, want %q", c.DefaultProvider(), ProviderGitHub)
	}
	gh, ok := c.providers[ProviderGitHub].(*OpenAICompatAdapter)
	if !ok {
		t.Fatalf("github adapter has type %T", c.providers[ProviderGitHub])
	}
	if gh.baseURL != GitHubModelsBaseURL {
		t.Errorf("baseURL = %q, want %q", gh.baseURL, GitHubModelsBaseURL)
	}
	if gh.Model() != DefaultGitHubModel {
		t.Errorf("Model = %q, want %q", gh.Model(), DefaultGitHubModel)
	}
	if _, ok := c.providers[ProviderOpenAI]; !ok {
		t.Error("expected openai provider registered too")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	c, err := FromEnv(EnvOptions{
		Getenv:  envFrom(map[string]string{"GITHUB_TOKEN": "ghp_x"}),
		Model:   "openai/gpt-4o",
		BaseURL: "https://example.test/inference",
	})
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	gh := c.providers[ProviderGitHub].(*OpenAICompatAdapter)
	if gh.Model() != "openai/gpt-4o" || gh.baseURL != "https://example.test/inference" {
		t.Errorf("overrides not applied: model=%q baseURL=%q", gh.Model(), gh.baseURL)
	}
}
