package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// TodoStatus is the lifecycle state of a todo item.
type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoCompleted  TodoStatus = "completed"
)

// TodoItem is a single tracked task.
type TodoItem struct {
	ID        int
	Content   string
	Status    TodoStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TodoStore holds todo items for one agent session. Each agent owns its
// own store, so concurrent sessions never see each other's tasks.
type TodoStore struct {
	mu     sync.Mutex
	items  map[int]*TodoItem
	nextID int
}

// NewTodoStore creates an empty store.
func NewTodoStore() *TodoStore {
	return &TodoStore{items: make(map[int]*TodoItem), nextID: 1}
}

// Add appends a new pending item and returns it.
func (s *TodoStore) Add(content string) TodoItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	item := &TodoItem{
		ID:        s.nextID,
		Content:   content,
		Status:    TodoPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.items[item.ID] = item
	s.nextID++
	return *item
}

// Update changes the status and/or content of an item.
func (s *TodoStore) Update(id int, status TodoStatus, content string) (TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return TodoItem{}, fmt.Errorf("todo %d not found", id)
	}
	if status != "" {
		item.Status = status
	}
	if content != "" {
		item.Content = content
	}
	item.UpdatedAt = time.Now()
	return *item, nil
}

// Delete removes an item.
func (s *TodoStore) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("todo %d not found", id)
	}
	delete(s.items, id)
	return nil
}

// List returns items sorted by ID, optionally filtered by status.
func (s *TodoStore) List(status TodoStatus) []TodoItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TodoItem, 0, len(s.items))
	for _, item := range s.items {
		if status != "" && item.Status != status {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reset removes all items and restarts ID numbering.
func (s *TodoStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[int]*TodoItem)
	s.nextID = 1
}

// TodoTool exposes a TodoStore to the model for task tracking across a
// multi-step session.
type TodoTool struct {
	store *TodoStore
}

// NewTodoTool wraps the given store. The store must not be nil.
func NewTodoTool(store *TodoStore) *TodoTool {
	return &TodoTool{store: store}
}

func (t *TodoTool) Name() string { return "todo" }

func (t *TodoTool) Description() string {
	return "Manage a task list for multi-step work. Actions: add (content), update (id, status, content), delete (id), list (status filter), clear. Statuses: pending, in_progress, completed."
}

func (t *TodoTool) Schema() map[string]any {
	return ObjectSchema(map[string]any{
		"action":  StringProp("Action to perform: add, update, delete, list, clear"),
		"content": StringProp("Task description (for add and update)"),
		"id":      IntProp("Task ID (for update and delete)"),
		"status":  StringProp("Task status: pending, in_progress, completed (for update, or as list filter)"),
	}, "action")
}

func (t *TodoTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	action, ok := StringArg(args, "action")
	if !ok || action == "" {
		return "", fmt.Errorf("action is required")
	}

	switch action {
	case "add":
		content, ok := StringArg(args, "content")
		if !ok || content == "" {
			return "", fmt.Errorf("content is required for add")
		}
		item := t.store.Add(content)
		return fmt.Sprintf("added todo %d: %s", item.ID, item.Content), nil

	case "update":
		id, ok := IntArg(args, "id")
		if !ok {
			return "", fmt.Errorf("id is required for update")
		}
		status, _ := StringArg(args, "status")
		if status != "" && !validTodoStatus(TodoStatus(status)) {
			return "", fmt.Errorf("invalid status %q, must be pending, in_progress or completed", status)
		}
		content, _ := StringArg(args, "content")
		item, err := t.store.Update(id, TodoStatus(status), content)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("updated todo %d: [%s] %s", item.ID, item.Status, item.Content), nil

	case "delete":
		id, ok := IntArg(args, "id")
		if !ok {
			return "", fmt.Errorf("id is required for delete")
		}
		if err := t.store.Delete(id); err != nil {
			return "", err
		}
		return fmt.Sprintf("deleted todo %d", id), nil

	case "list":
		status, _ := StringArg(args, "status")
		if status != "" && !validTodoStatus(TodoStatus(status)) {
			return "", fmt.Errorf("invalid status %q, must be pending, in_progress or completed", status)
		}
		items := t.store.List(TodoStatus(status))
		if len(items) == 0 {
			return "no todos", nil
		}
		var b strings.Builder
		for _, item := range items {
			fmt.Fprintf(&b, "%d. [%s] %s\n", item.ID, item.Status, item.Content)
		}
		return strings.TrimRight(b.String(), "\n"), nil

	case "clear":
		t.store.Reset()
		return "cleared all todos", nil

	default:
		return "", fmt.Errorf("unknown action %q, must be add, update, delete, list or clear", action)
	}
}

func validTodoStatus(s TodoStatus) bool {
	switch s {
	case TodoPending, TodoInProgress, TodoCompleted:
		return true
	}
	return false
}
