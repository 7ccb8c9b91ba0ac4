package agent

import (
	"time"

	"github.com/samalabs/sama/tool"
)

// State is the lifecycle state of an Agent.
type State string

const (
	// StateIdle means no run is active.
	StateIdle State = "idle"

	// StateThinking means a model request is outstanding or its response is
	// being interpreted.
	StateThinking State = "thinking"

	// StateExecuting means requested tool calls are being dispatched.
	StateExecuting State = "executing"

	// StateCompleted means the model answered without requesting tools.
	StateCompleted State = "completed"

	// StateStopped means the iteration cap was reached without completion.
	StateStopped State = "stopped"

	// StateError means the run terminated on a backend or bookkeeping
	// failure.
	StateError State = "error"
)

// Step records one iteration of the loop. ToolResults is index-aligned with
// ToolCalls. A Step is mutated while its iteration proceeds and is immutable
// once the iteration completes.
type Step struct {
	StepNumber    int           `json:"step_number"`
	Thought       string        `json:"thought,omitempty"`
	ToolCalls     []tool.Call   `json:"tool_calls,omitempty"`
	ToolResults   []tool.Result `json:"tool_results,omitempty"`
	FinalResponse string        `json:"final_response,omitempty"`
}

// Response is the terminal artifact of one Run call. It is created once at
// loop exit and never mutated afterwards.
type Response struct {
	RunID           string        `json:"run_id"`
	Success         bool          `json:"success"`
	FinalAnswer     string        `json:"final_answer"`
	Steps           []*Step       `json:"steps"`
	TotalIterations int           `json:"total_iterations"`
	ExecutionTime   time.Duration `json:"execution_time"`
	ErrorMessage    string        `json:"error_message,omitempty"`
}

// Status is an introspection snapshot of an Agent.
type Status struct {
	Name          string `json:"name"`
	State         State  `json:"state"`
	Iterations    int    `json:"iterations"`
	StepCount     int    `json:"step_count"`
	ToolCount     int    `json:"tool_count"`
	MemorySize    int    `json:"memory_size"`
	ContextLength int    `json:"context_length"`
	FileCount     int    `json:"file_count"`
}
