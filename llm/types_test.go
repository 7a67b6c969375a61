// ABOUTME: Tests for the unified request/response types.
// ABOUTME: Covers message constructors, pointer helpers, and TextContent concatenation.

package llm

import "testing"

func TestMessageConstructors(t *testing.T) {
	tests := []struct {
		msg  Message
		role Role
	}{
		{SystemMessage("s"), RoleSystem},
		{UserMessage("u"), RoleUser},
		{AssistantMessage("a"), RoleAssistant},
	}
	for _, tt := range tests {
		if tt.msg.Role != tt.role {
			t.Errorf("role = %q, want %q", tt.msg.Role, tt.role)
		}
	}
}

func TestTextContentJoinsAssistantMessages(t *testing.T) {
	resp := &Response{Messages: []Message{
		UserMessage("ignored"),
		AssistantMessage("first "),
		AssistantMessage("second"),
	}}
	if got := resp.TextContent(); got != "first second" {
		t.Errorf("TextContent = %q", got)
	}
}

func TestTextContentNil(t *testing.T) {
	var resp *Response
	if got := resp.TextContent(); got != "" {
		t.Errorf("nil TextContent = %q", got)
	}
}

func TestPointerHelpers(t *testing.T) {
	if *IntPtr(7) != 7 || *Float64Ptr(0.2) != 0.2 {
		t.Error("pointer helpers returned wrong values")
	}
}
