// ABOUTME: OpenAI Chat Completions adapter with base URL support for compatible providers.
// ABOUTME: Serves both GitHub Models (token auth) and OpenAI proper through the openai-go SDK.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// ProviderGitHub is the provider name for GitHub Models.
	ProviderGitHub = "github"
	// ProviderOpenAI is the provider name for the OpenAI API.
	ProviderOpenAI = "openai"

	// GitHubModelsBaseURL is the OpenAI-compatible inference endpoint that
	// accepts GitHub tokens.
	GitHubModelsBaseURL = "https://models.github.ai/inference"

	DefaultGitHubModel = "openai/gpt-4.1-mini"
	DefaultOpenAIModel = "gpt-4.1-mini"

	defaultMaxTokens = 2048
)

// OpenAICompatAdapter implements ProviderAdapter over the Chat Completions
// endpoint, which every OpenAI-compatible provider supports.
type OpenAICompatAdapter struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	timeout    AdapterTimeout
	httpClient *http.Client
	client     openai.Client
}

// CompatOption is a functional option for configuring an OpenAICompatAdapter.
type CompatOption func(*OpenAICompatAdapter)

// WithCompatBaseURL sets the API base URL.
func WithCompatBaseURL(url string) CompatOption {
	return func(a *OpenAICompatAdapter) {
		a.baseURL = url
	}
}

// WithCompatModel sets the model used when a Request leaves Model empty.
func WithCompatModel(model string) CompatOption {
	return func(a *OpenAICompatAdapter) {
		a.model = model
	}
}

// WithCompatTimeout sets the adapter timeouts.
func WithCompatTimeout(timeout AdapterTimeout) CompatOption {
	return func(a *OpenAICompatAdapter) {
		a.timeout = timeout
	}
}

// WithCompatHTTPClient replaces the HTTP client, mainly for tests.
func WithCompatHTTPClient(c *http.Client) CompatOption {
	return func(a *OpenAICompatAdapter) {
		a.httpClient = c
	}
}

// NewOpenAICompatAdapter creates an adapter registered under name. The SDK's
// own retry loop is disabled: callers race a short deadline and never retry.
func NewOpenAICompatAdapter(name, apiKey string, opts ...CompatOption) *OpenAICompatAdapter {
	a := &OpenAICompatAdapter{
		name:    name,
		apiKey:  apiKey,
		model:   DefaultOpenAIModel,
		timeout: DefaultAdapterTimeout(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.httpClient == nil {
		a.httpClient = &http.Client{Timeout: a.timeout.Request}
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(a.httpClient),
		option.WithMaxRetries(0),
	}
	if a.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(a.baseURL))
	}
	a.client = openai.NewClient(reqOpts...)
	return a
}

// Name returns the provider name for this adapter.
func (a *OpenAICompatAdapter) Name() string { return a.name }

// Model returns the default model for this adapter.
func (a *OpenAICompatAdapter) Model() string { return a.model }

// Complete sends a single Chat Completions request.
func (a *OpenAICompatAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	if a.apiKey == "" {
		return nil, &ConfigurationError{SDKError: SDKError{Message: fmt.Sprintf("provider %q has no credential", a.name)}}
	}
	if req.Model == "" {
		req.Model = a.model
	}

	params := convertCompatRequest(req)
	requestID := uuid.NewString()
	resp, err := a.client.Chat.Completions.New(ctx, params, option.WithHeader("X-Request-Id", requestID))
	if err != nil {
		return nil, a.translateError(err)
	}
	return convertCompatResponse(a.name, resp), nil
}

// Close is a no-op; the SDK holds no resources beyond the HTTP client.
func (a *OpenAICompatAdapter) Close() error { return nil }

// translateError maps SDK errors onto this package's error hierarchy.
func (a *OpenAICompatAdapter) translateError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return ErrorFromStatusCode(apiErr.StatusCode, apiErr.Error(), a.name, "")
	}
	return ClassifyTransportError(a.name+" request failed", err)
}

// convertCompatRequest converts a Request to ChatCompletionNewParams.
func convertCompatRequest(req Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: req.Model,
	}

	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		maxTokens = *req.MaxTokens
	}
	params.MaxCompletionTokens = openai.Int(int64(maxTokens))

	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	params.Messages = messages

	return params
}

// convertCompatResponse converts a ChatCompletion to a Response.
func convertCompatResponse(provider string, resp *openai.ChatCompletion) *Response {
	out := &Response{
		ID:       resp.ID,
		Model:    resp.Model,
		Provider: provider,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}

	if len(resp.Choices) == 0 {
		out.FinishReason = FinishReason{Reason: FinishOther}
		return out
	}

	choice := resp.Choices[0]
	out.Messages = []Message{AssistantMessage(choice.Message.Content)}
	out.FinishReason = FinishReason{Reason: mapFinishReason(choice.FinishReason), Raw: choice.FinishReason}
	return out
}

func mapFinishReason(raw string) string {
	switch raw {
	case "stop":
		return FinishStop
	case "length":
		return FinishLength
	default:
		return FinishOther
	}
}
