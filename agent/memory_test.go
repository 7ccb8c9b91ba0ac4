package agent

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/samalabs/sama/llm"
)

func TestMemorySystemMessageFirst(t *testing.T) {
	m := NewConversationMemory(0)
	m.AddUserMessage("hi")
	m.SetSystemMessage("you are a test")
	m.AddAssistantMessage("hello")

	messages := m.Messages()
	if len(messages) != 3 {
		t.Fatalf("len = %d, want 3", len(messages))
	}
	if messages[0].Role != llm.RoleSystem {
		t.Errorf("first role = %q, want system", messages[0].Role)
	}
	if messages[1].Role != llm.RoleUser || messages[2].Role != llm.RoleAssistant {
		t.Errorf("non-system ordering broken: %q, %q", messages[1].Role, messages[2].Role)
	}
}

func TestMemorySystemMessageReplaced(t *testing.T) {
	m := NewConversationMemory(0)
	m.SetSystemMessage("first")
	m.SetSystemMessage("second")

	messages := m.Messages()
	if len(messages) != 1 {
		t.Fatalf("len = %d, want 1", len(messages))
	}
	if messages[0].Content != "second" {
		t.Errorf("system content = %q, want %q", messages[0].Content, "second")
	}
}

func TestMemoryBoundedRetention(t *testing.T) {
	m := NewConversationMemory(3)
	m.SetSystemMessage("system")
	for _, text := range []string{"one", "two", "three", "four", "five"} {
		m.AddUserMessage(text)
	}

	messages := m.Messages()
	// System exempt, oldest non-system evicted first.
	if len(messages) != 4 {
		t.Fatalf("len = %d, want 4 (system + 3)", len(messages))
	}
	if messages[0].Role != llm.RoleSystem {
		t.Fatal("system message evicted")
	}
	got := []string{messages[1].Content, messages[2].Content, messages[3].Content}
	want := []string{"three", "four", "five"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMemoryModelMessagesRoundTrip(t *testing.T) {
	m := NewConversationMemory(0)
	m.SetSystemMessage("sys")
	m.AddUserMessage("do it")
	call := llm.ToolCall{ID: "c1", Name: "shell", Arguments: json.RawMessage(`{"command":"ls"}`)}
	m.AddAssistantMessage("running ls", call)
	m.AddToolMessage("c1", "shell", "file.txt")

	model := m.ModelMessages()
	if len(model) != 4 {
		t.Fatalf("len = %d, want 4", len(model))
	}

	assistant := model[2]
	if len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].ID != "c1" {
		t.Errorf("assistant directives not round-tripped: %+v", assistant.ToolCalls)
	}
	toolMsg := model[3]
	if toolMsg.ToolCallID != "c1" || toolMsg.ToolName != "shell" {
		t.Errorf("tool correlation lost: %+v", toolMsg)
	}
}

func TestMemoryClear(t *testing.T) {
	m := NewConversationMemory(0)
	m.SetSystemMessage("sys")
	m.AddUserMessage("hi")
	m.AddAssistantMessage("hello")

	m.Clear(true)
	if got := m.Messages(); len(got) != 1 || got[0].Role != llm.RoleSystem {
		t.Errorf("Clear(true) left %d messages", len(got))
	}

	m.Clear(false)
	if got := m.Messages(); len(got) != 0 {
		t.Errorf("Clear(false) left %d messages", len(got))
	}
}

func TestMemoryContextLength(t *testing.T) {
	m := NewConversationMemory(0)
	m.SetSystemMessage("abcd")
	m.AddUserMessage("efgh")

	if got := m.ContextLength(); got != 8 {
		t.Errorf("context length = %d, want 8", got)
	}
	if got := m.Len(); got != 2 {
		t.Errorf("len = %d, want 2", got)
	}
}

func TestMemoryRecentToolOperations(t *testing.T) {
	m := NewConversationMemory(0)
	if got := m.RecentToolOperations(5); got != "" {
		t.Errorf("empty memory digest = %q", got)
	}

	m.AddToolMessage("c1", "shell", "ok output")
	m.AddToolMessage("c2", "read_file", "Error: permission denied")
	m.AddToolMessage("c3", "calculator", "42")

	digest := m.RecentToolOperations(2)
	if strings.Contains(digest, "shell") {
		t.Errorf("digest exceeded requested window: %q", digest)
	}
	if !strings.Contains(digest, "read_file (failed)") {
		t.Errorf("digest missing failure marker: %q", digest)
	}
	if !strings.Contains(digest, "calculator (ok)") {
		t.Errorf("digest missing success entry: %q", digest)
	}
	// Chronological order preserved.
	if strings.Index(digest, "read_file") > strings.Index(digest, "calculator") {
		t.Errorf("digest out of order: %q", digest)
	}
}
