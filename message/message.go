// Package message defines the conversation unit the budget engine operates
// on. Messages are owned by the caller; the engine only reads them and
// returns new slices, never mutating a caller's messages in place.
package message

import "strings"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ToolCall is an optional tool invocation attached to an assistant message.
type ToolCall struct {
	Name      string
	Arguments string
}

// Message is a single conversation turn.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolResult string
}

// Text flattens the message into the text that counts against the token
// budget: content plus any tool-call payloads and tool results.
func (m Message) Text() string {
	if len(m.ToolCalls) == 0 && m.ToolResult == "" {
		return m.Content
	}
	var sb strings.Builder
	sb.WriteString(m.Content)
	for _, tc := range m.ToolCalls {
		sb.WriteString("\n")
		sb.WriteString(tc.Name)
		sb.WriteString("(")
		sb.WriteString(tc.Arguments)
		sb.WriteString(")")
	}
	if m.ToolResult != "" {
		sb.WriteString("\n")
		sb.WriteString(m.ToolResult)
	}
	return sb.String()
}

// IsSystem reports whether the message carries the system role.
func (m Message) IsSystem() bool { return m.Role == RoleSystem }
