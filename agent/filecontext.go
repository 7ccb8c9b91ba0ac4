package agent

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FileContext tracks metadata about a file relevant to the current task.
// Content is optional; entries may carry only an abstract to save memory.
type FileContext struct {
	Path      string         `json:"path"`
	Content   string         `json:"content,omitempty"`
	Abstract  string         `json:"abstract,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// FileContextUpdate names the fields merged by FileContextTable.Update. Nil
// fields are left unchanged.
type FileContextUpdate struct {
	Content  *string
	Abstract *string
	Metadata map[string]any
}

// FileContextTable is the side-table of files the agent has produced or
// referenced, keyed by path. Entries are added and removed explicitly, never
// implicitly by reading arbitrary files.
type FileContextTable struct {
	entries map[string]*FileContext
}

// NewFileContextTable creates an empty table.
func NewFileContextTable() *FileContextTable {
	return &FileContextTable{entries: make(map[string]*FileContext)}
}

// Add creates or overwrites the entry for path.
func (t *FileContextTable) Add(path, content, abstract string, metadata map[string]any) {
	t.entries[path] = &FileContext{
		Path:      path,
		Content:   content,
		Abstract:  abstract,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// Update merges the provided fields into an existing entry and bumps its
// timestamp. It reports false without modifying anything when the path is
// absent.
func (t *FileContextTable) Update(path string, update FileContextUpdate) bool {
	entry, ok := t.entries[path]
	if !ok {
		return false
	}
	if update.Content != nil {
		entry.Content = *update.Content
	}
	if update.Abstract != nil {
		entry.Abstract = *update.Abstract
	}
	if len(update.Metadata) > 0 {
		if entry.Metadata == nil {
			entry.Metadata = make(map[string]any, len(update.Metadata))
		}
		for k, v := range update.Metadata {
			entry.Metadata[k] = v
		}
	}
	entry.Timestamp = time.Now()
	return true
}

// Remove deletes the entry for path, reporting whether one was present.
func (t *FileContextTable) Remove(path string) bool {
	if _, ok := t.entries[path]; !ok {
		return false
	}
	delete(t.entries, path)
	return true
}

// Get returns a copy of the entry for path.
func (t *FileContextTable) Get(path string) (FileContext, bool) {
	entry, ok := t.entries[path]
	if !ok {
		return FileContext{}, false
	}
	return *entry, true
}

// List returns all entries sorted by path.
func (t *FileContextTable) List() []FileContext {
	out := make([]FileContext, 0, len(t.entries))
	for _, entry := range t.entries {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len returns the number of tracked files.
func (t *FileContextTable) Len() int { return len(t.entries) }

// Summarize renders a compact digest of the table for prompt injection:
// path, size or "not loaded", and abstract. It never embeds file content.
func (t *FileContextTable) Summarize() string {
	if len(t.entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, entry := range t.List() {
		size := "not loaded"
		if entry.Content != "" {
			size = fmt.Sprintf("%d bytes", len(entry.Content))
		}
		line := fmt.Sprintf("- %s (%s)", entry.Path, size)
		if entry.Abstract != "" {
			line += ": " + entry.Abstract
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
