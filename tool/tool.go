package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrTimeout marks a tool failure caused by a deadline expiring. Tools that
// run subprocesses or network calls wrap their timeout conditions in it so
// Dispatch can tag the result distinctly from ordinary errors.
var ErrTimeout = errors.New("tool execution timed out")

// Status tags the outcome of one tool execution.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// Call records a single model-issued tool invocation. Immutable once created.
type Call struct {
	Name      string          `json:"tool_name"`
	Arguments json.RawMessage `json:"arguments"`
	ID        string          `json:"call_id"`
	Timestamp time.Time       `json:"timestamp"`
}

// Result is the tagged outcome of dispatching one Call.
type Result struct {
	ToolName      string        `json:"tool_name"`
	Status        Status        `json:"status"`
	Output        string        `json:"output"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	ExecutionTime time.Duration `json:"execution_time"`
	Timestamp     time.Time     `json:"timestamp"`
}

// IsSuccess reports whether the execution succeeded.
func (r Result) IsSuccess() bool { return r.Status == StatusSuccess }

// Tool is the contract every agent capability satisfies.
type Tool interface {
	// Name is the unique key within a registry.
	Name() string

	// Description is shown to the model in tool declarations.
	Description() string

	// Schema returns the JSON-Schema parameters object for the tool's
	// arguments.
	Schema() map[string]any

	// Execute performs the tool's side effect. Expected failures are
	// returned as errors (wrapping ErrTimeout for deadline expiry); the
	// dispatcher converts them to tagged Results.
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Registry manages tool registration, lookup, and dispatch. Definitions are
// reported in registration order so the model sees a stable capability list.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty Registry.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds or replaces a tool.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Unregister removes a tool by name, reporting whether it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return false
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a registered tool by name, or nil if not found.
func (r *Registry) Get(name string) Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Tools returns all registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns the names of all registered tools in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Dispatch executes the named tool with the raw argument payload and returns
// a tagged Result. It never returns a Go error: unknown names, malformed
// payloads, panics, and timeouts all degrade to Results so a single bad call
// cannot abort the agent run.
func (r *Registry) Dispatch(ctx context.Context, name string, rawArgs json.RawMessage) (result Result) {
	start := time.Now()

	finish := func(status Status, output, errMsg string) Result {
		return Result{
			ToolName:      name,
			Status:        status,
			Output:        output,
			ErrorMessage:  errMsg,
			ExecutionTime: time.Since(start),
			Timestamp:     time.Now(),
		}
	}

	t := r.Get(name)
	if t == nil {
		return finish(StatusError, "", fmt.Sprintf("unknown tool: %s", name))
	}

	// Malformed payloads degrade to an empty argument map.
	args := map[string]any{}
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			args = map[string]any{}
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = finish(StatusError, "", fmt.Sprintf("tool %s panicked: %v", name, rec))
		}
	}()

	output, err := t.Execute(ctx, args)
	if err != nil {
		if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return finish(StatusTimeout, "", err.Error())
		}
		return finish(StatusError, "", err.Error())
	}

	return finish(StatusSuccess, output, "")
}

// ObjectSchema builds a JSON-Schema object declaration from named properties
// and a required list.
func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// StringProp builds a string property declaration.
func StringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// IntProp builds an integer property declaration.
func IntProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

// BoolProp builds a boolean property declaration.
func BoolProp(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

// StringArg extracts a string argument from parsed tool arguments.
func StringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntArg extracts an integer argument from parsed tool arguments.
func IntArg(args map[string]any, key string) (int, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// BoolArg extracts a boolean argument from parsed tool arguments.
func BoolArg(args map[string]any, key string) (bool, bool) {
	v, ok := args[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// StringSliceArg extracts a string-slice argument from parsed tool arguments.
func StringSliceArg(args map[string]any, key string) ([]string, bool) {
	v, ok := args[key]
	if !ok {
		return nil, false
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
