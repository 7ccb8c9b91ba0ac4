package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/samalabs/sama/llm"
)

// Message is one entry of the conversation log. Assistant messages that
// requested tools carry the original directives in ToolCalls so the model
// sees its own prior request on the next turn; tool messages carry
// ToolCallID and ToolName to correlate with a prior directive.
type Message struct {
	Role       llm.Role       `json:"role"`
	Content    string         `json:"content"`
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	ToolCalls  []llm.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolName   string         `json:"tool_name,omitempty"`
}

// ConversationMemory owns the ordered message log and the file-context table
// for one agent instance. It is not safe for concurrent use; all mutation
// happens on the single control-flow thread executing a run.
//
// There is at most one system message and it is always exported first.
// When the non-system message count exceeds the configured cap, the oldest
// non-system messages are evicted first-in-first-out.
type ConversationMemory struct {
	system      *Message
	messages    []Message
	maxMessages int
	files       *FileContextTable
}

// NewConversationMemory creates a memory bounded to maxMessages non-system
// messages. A cap of zero or less means unbounded.
func NewConversationMemory(maxMessages int) *ConversationMemory {
	return &ConversationMemory{
		maxMessages: maxMessages,
		files:       NewFileContextTable(),
	}
}

// SetSystemMessage replaces the system message. There is exactly one.
func (m *ConversationMemory) SetSystemMessage(text string) {
	m.system = &Message{
		Role:      llm.RoleSystem,
		Content:   text,
		Timestamp: time.Now(),
	}
}

// SystemMessage returns the current system message text, or "" if unset.
func (m *ConversationMemory) SystemMessage() string {
	if m.system == nil {
		return ""
	}
	return m.system.Content
}

// AddUserMessage appends a user message.
func (m *ConversationMemory) AddUserMessage(text string) {
	m.append(Message{Role: llm.RoleUser, Content: text, Timestamp: time.Now()})
}

// AddAssistantMessage appends an assistant message, optionally carrying the
// tool-call directives the assistant issued.
func (m *ConversationMemory) AddAssistantMessage(text string, calls ...llm.ToolCall) {
	m.append(Message{
		Role:      llm.RoleAssistant,
		Content:   text,
		Timestamp: time.Now(),
		ToolCalls: calls,
	})
}

// AddToolMessage appends a tool-result message correlated to a prior
// assistant directive.
func (m *ConversationMemory) AddToolMessage(toolCallID, toolName, content string) {
	m.append(Message{
		Role:       llm.RoleTool,
		Content:    content,
		Timestamp:  time.Now(),
		ToolCallID: toolCallID,
		ToolName:   toolName,
	})
}

func (m *ConversationMemory) append(msg Message) {
	m.messages = append(m.messages, msg)
	if m.maxMessages > 0 {
		for len(m.messages) > m.maxMessages {
			m.messages = m.messages[1:]
		}
	}
}

// Messages returns the full log in order, system message first.
func (m *ConversationMemory) Messages() []Message {
	out := make([]Message, 0, len(m.messages)+1)
	if m.system != nil {
		out = append(out, *m.system)
	}
	return append(out, m.messages...)
}

// ModelMessages renders the log in model-request form, system message first,
// with tool-call directives and correlation ids intact.
func (m *ConversationMemory) ModelMessages() []llm.Message {
	out := make([]llm.Message, 0, len(m.messages)+1)
	if m.system != nil {
		out = append(out, llm.SystemMessage(m.system.Content))
	}
	for _, msg := range m.messages {
		out = append(out, llm.Message{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCalls:  msg.ToolCalls,
			ToolCallID: msg.ToolCallID,
			ToolName:   msg.ToolName,
		})
	}
	return out
}

// Clear drops the non-system history. With keepSystem false the system
// message is dropped as well. The file-context table is untouched.
func (m *ConversationMemory) Clear(keepSystem bool) {
	m.messages = nil
	if !keepSystem {
		m.system = nil
	}
}

// Len returns the number of messages including the system message.
func (m *ConversationMemory) Len() int {
	n := len(m.messages)
	if m.system != nil {
		n++
	}
	return n
}

// ContextLength returns the total content length of all messages.
func (m *ConversationMemory) ContextLength() int {
	total := 0
	if m.system != nil {
		total += len(m.system.Content)
	}
	for _, msg := range m.messages {
		total += len(msg.Content)
	}
	return total
}

// Files returns the file-context table owned by this memory.
func (m *ConversationMemory) Files() *FileContextTable {
	return m.files
}

// RecentToolOperations renders a short digest of the last n tool-result
// messages for prompt injection.
func (m *ConversationMemory) RecentToolOperations(n int) string {
	var ops []string
	for i := len(m.messages) - 1; i >= 0 && len(ops) < n; i-- {
		msg := m.messages[i]
		if msg.Role != llm.RoleTool {
			continue
		}
		outcome := "ok"
		if strings.HasPrefix(msg.Content, "Error:") {
			outcome = "failed"
		}
		ops = append(ops, fmt.Sprintf("%s (%s)", msg.ToolName, outcome))
	}
	if len(ops) == 0 {
		return ""
	}
	// Restore chronological order.
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
	return strings.Join(ops, ", ")
}
