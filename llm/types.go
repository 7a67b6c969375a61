// ABOUTME: Core request/response types for the completion client used by failure escalation.
// ABOUTME: Defines roles, text messages, usage accounting, and adapter timeout configuration.

package llm

import (
	"strings"
	"time"
)

// Role identifies who authored a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single text turn in a completion request or response.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage creates a system-role message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage creates a user-role message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage creates an assistant-role message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// FinishReason records why the provider stopped generating.
type FinishReason struct {
	Reason string `json:"reason"`
	Raw    string `json:"raw,omitempty"`
}

const (
	FinishStop   = "stop"
	FinishLength = "length"
	FinishOther  = "other"
)

// Usage tracks token consumption for a single call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Request is the unified input for Complete.
type Request struct {
	Model       string            `json:"model"`
	Messages    []Message         `json:"messages"`
	Provider    string            `json:"provider,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	MaxTokens   *int              `json:"max_tokens,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// IntPtr returns a pointer to an int value.
func IntPtr(v int) *int {
	return &v
}

// Float64Ptr returns a pointer to a float64 value.
func Float64Ptr(v float64) *float64 {
	return &v
}

// Response is the unified output from a Complete call.
type Response struct {
	ID           string       `json:"id"`
	Model        string       `json:"model"`
	Provider     string       `json:"provider"`
	Messages     []Message    `json:"messages"`
	FinishReason FinishReason `json:"finish_reason"`
	Usage        Usage        `json:"usage"`
}

// TextContent returns the concatenated assistant text of the response.
func (r *Response) TextContent() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, m := range r.Messages {
		if m.Role != RoleAssistant {
			continue
		}
		b.WriteString(m.Content)
	}
	return b.String()
}

// AdapterTimeout specifies timeout durations at the adapter level.
type AdapterTimeout struct {
	Connect time.Duration `json:"connect"`
	Request time.Duration `json:"request"`
}

// DefaultAdapterTimeout returns defaults for adapter timeouts. The request
// timeout is an outer bound only; callers racing a shorter deadline stop
// waiting long before it fires.
func DefaultAdapterTimeout() AdapterTimeout {
	return AdapterTimeout{
		Connect: 10 * time.Second,
		Request: 60 * time.Second,
	}
}
