// ABOUTME: Client infrastructure for the completion client with provider routing and middleware.
// ABOUTME: Provides NewClient with functional options and env-based provider detection.

package llm

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"
)

// ProviderAdapter is the interface every provider backend implements.
type ProviderAdapter interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
	Close() error
}

// Middleware wraps a Complete call. Middleware executes in registration order
// for requests and reverse order for responses.
type Middleware func(ctx context.Context, req Request, next NextFunc) (*Response, error)

// NextFunc is the function signature passed to middleware to continue the chain.
type NextFunc func(ctx context.Context, req Request) (*Response, error)

// Client routes completion requests to registered provider adapters through
// the middleware chain.
type Client struct {
	providers       map[string]ProviderAdapter
	defaultProvider string
	middleware      []Middleware
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// WithProvider registers a ProviderAdapter under the given name. The first
// provider registered becomes the default unless one was set explicitly.
func WithProvider(name string, adapter ProviderAdapter) ClientOption {
	return func(c *Client) {
		c.providers[name] = adapter
		if c.defaultProvider == "" {
			c.defaultProvider = name
		}
	}
}

// WithDefaultProvider sets the provider used when a Request does not name one.
func WithDefaultProvider(name string) ClientOption {
	return func(c *Client) {
		c.defaultProvider = name
	}
}

// WithMiddleware appends middleware to the client's chain.
func WithMiddleware(mw ...Middleware) ClientOption {
	return func(c *Client) {
		c.middleware = append(c.middleware, mw...)
	}
}

// NewClient creates a new Client with the given options applied.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		providers: make(map[string]ProviderAdapter),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnvOptions tunes the adapters FromEnv constructs.
type EnvOptions struct {
	// Model overrides the per-provider default model.
	Model string
	// BaseURL overrides the per-provider endpoint.
	BaseURL string
	// Getenv reads the environment; os.Getenv when nil.
	Getenv func(string) string
	// Middleware is installed on the returned client.
	Middleware []Middleware
}

// TokenEnvVars are the environment variables holding a GitHub token, in
// lookup order.
var TokenEnvVars = []string{"GITHUB_TOKEN", "GH_TOKEN"}

// LookupToken returns the first non-empty GitHub token from TokenEnvVars and
// the variable it came from.
func LookupToken(getenv func(string) string) (token, source string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, key := range TokenEnvVars {
		if v := getenv(key); v != "" {
			return v, key
		}
	}
	return "", ""
}

// FromEnv creates a Client by detecting credentials in the environment. A
// GitHub token (GITHUB_TOKEN, then GH_TOKEN) registers the GitHub Models
// provider; OPENAI_API_KEY registers OpenAI. The GitHub provider is the
// default when both are present. Returns a ConfigurationError if nothing is
// found.
func FromEnv(opts EnvOptions) (*Client, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	var clientOpts []ClientOption
	if token, _ := LookupToken(getenv); token != "" {
		clientOpts = append(clientOpts, WithProvider(ProviderGitHub, NewOpenAICompatAdapter(
			ProviderGitHub, token,
			WithCompatBaseURL(firstNonEmpty(opts.BaseURL, GitHubModelsBaseURL)),
			WithCompatModel(firstNonEmpty(opts.Model, DefaultGitHubModel)),
		)))
	}
	if key := getenv("OPENAI_API_KEY"); key != "" {
		compat := []CompatOption{WithCompatModel(firstNonEmpty(opts.Model, DefaultOpenAIModel))}
		if len(clientOpts) == 0 && opts.BaseURL != "" {
			compat = append(compat, WithCompatBaseURL(opts.BaseURL))
		}
		clientOpts = append(clientOpts, WithProvider(ProviderOpenAI, NewOpenAICompatAdapter(ProviderOpenAI, key, compat...)))
	}

	if len(clientOpts) == 0 {
		return nil, &ConfigurationError{
			SDKError: SDKError{
				Message: "no credentials found in environment (checked GITHUB_TOKEN, GH_TOKEN, OPENAI_API_KEY)",
			},
		}
	}

	clientOpts = append(clientOpts, WithMiddleware(opts.Middleware...))
	return NewClient(clientOpts...), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveProvider picks the adapter for req, falling back to the default.
func (c *Client) resolveProvider(req Request) (ProviderAdapter, error) {
	name := req.Provider
	if name == "" {
		name = c.defaultProvider
	}
	if name == "" {
		return nil, &ConfigurationError{
			SDKError: SDKError{
				Message: "no provider specified and no default provider configured",
			},
		}
	}

	adapter, ok := c.providers[name]
	if !ok {
		return nil, &ConfigurationError{
			SDKError: SDKError{
				Message: fmt.Sprintf("provider %q not registered", name),
			},
		}
	}
	return adapter, nil
}

// DefaultProvider returns the name of the provider used for requests that do
// not specify one.
func (c *Client) DefaultProvider() string {
	return c.defaultProvider
}

// Complete sends a request through the middleware chain to the resolved
// provider adapter.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	handler := func(ctx context.Context, req Request) (*Response, error) {
		adapter, err := c.resolveProvider(req)
		if err != nil {
			return nil, err
		}
		return adapter.Complete(ctx, req)
	}

	// Wrap in reverse so the first registered middleware is outermost.
	chain := handler
	for i := len(c.middleware) - 1; i >= 0; i-- {
		mw := c.middleware[i]
		next := chain
		chain = func(ctx context.Context, req Request) (*Response, error) {
			return mw(ctx, req, next)
		}
	}

	return chain(ctx, req)
}

// Close shuts down all registered provider adapters.
func (c *Client) Close() error {
	var errs []error
	for name, adapter := range c.providers {
		if err := adapter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing provider %q: %w", name, err))
		}
	}
	if len(errs) > 0 {
		combined := errs[0]
		for _, e := range errs[1:] {
			combined = fmt.Errorf("%w; %v", combined, e)
		}
		return combined
	}
	return nil
}

// LoggingMiddleware logs every completion with its provider, latency, and
// outcome. A nil logger uses the standard logger.
func LoggingMiddleware(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(ctx context.Context, req Request, next NextFunc) (*Response, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			logger.Printf("component=llm action=complete status=error provider=%s model=%s elapsed=%s transient=%t err=%v",
				req.Provider, req.Model, elapsed, IsTransient(err), err)
			return nil, err
		}
		logger.Printf("component=llm action=complete status=ok provider=%s model=%s elapsed=%s output_tokens=%d",
			resp.Provider, resp.Model, elapsed, resp.Usage.OutputTokens)
		return resp, nil
	}
}
