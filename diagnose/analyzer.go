// ABOUTME: Narrow capability interface for the external failure analyzer and its shape adapters.
// ABOUTME: Normalizes Analyze, Request, and Diagnose style clients onto a single Analyze call.

package diagnose

import (
	"context"
	"strings"

	"github.com/jancsp3/GHCPCLI-Shekhar/llm"
)

// Analyzer turns an escalation prompt into a free-form analysis.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// AnalyzerFunc adapts a plain function to Analyzer.
type AnalyzerFunc func(ctx context.Context, prompt string) (string, error)

// Analyze calls f.
func (f AnalyzerFunc) Analyze(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// PromptRequest is the argument of Request-style clients.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// Requester is a client exposing a generic Request call.
type Requester interface {
	Request(ctx context.Context, req PromptRequest) (string, error)
}

// DiagnoseCaller is a client exposing a Diagnose call.
type DiagnoseCaller interface {
	Diagnose(ctx context.Context, prompt string) (string, error)
}

// Adapt returns an Analyzer for client using the first call shape it
// supports, in order: Analyze, Request, Diagnose. Returns nil when client
// supports none of them.
func Adapt(client any) Analyzer {
	switch c := client.(type) {
	case nil:
		return nil
	case Analyzer:
		return c
	case Requester:
		return AnalyzerFunc(func(ctx context.Context, prompt string) (string, error) {
			return c.Request(ctx, PromptRequest{Prompt: prompt})
		})
	case DiagnoseCaller:
		return AnalyzerFunc(c.Diagnose)
	default:
		return nil
	}
}

// Completer is the part of llm.Client that ClientAnalyzer uses.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// ClientAnalyzer exposes a completion client in the Analyze shape.
type ClientAnalyzer struct {
	Client Completer
	// Model overrides the provider's default model when set.
	Model string
	// System is the system prompt; AnalystSystemPrompt when empty.
	System string
}

// NewClientAnalyzer wraps client with the default system prompt.
func NewClientAnalyzer(client Completer, model string) *ClientAnalyzer {
	return &ClientAnalyzer{Client: client, Model: model, System: AnalystSystemPrompt}
}

// Analyze sends prompt as a single user turn and returns the reply text.
func (a *ClientAnalyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	system := a.System
	if system == "" {
		system = AnalystSystemPrompt
	}
	resp, err := a.Client.Complete(ctx, llm.Request{
		Model: a.Model,
		Messages: []llm.Message{
			llm.SystemMessage(system),
			llm.UserMessage(prompt),
		},
		Temperature: llm.Float64Ptr(0.2),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.TextContent()), nil
}
