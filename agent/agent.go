package agent

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/samalabs/sama/llm"
	"github.com/samalabs/sama/tool"
)

// DefaultMaxIterations bounds a run when no cap is configured.
const DefaultMaxIterations = 10

// thoughtPrefixLimit bounds the fallback thought summary when the model does
// not segregate its reasoning in thinking tags.
const thoughtPrefixLimit = 200

var thinkingRe = regexp.MustCompile(`(?s)<thinking>(.*?)</thinking>`)

// Agent is a single-threaded tool loop over a chat-completion backend. It is
// not safe for concurrent Run calls on the same instance; independent
// instances share no state.
type Agent struct {
	name           string
	client         *llm.Client
	model          string
	provider       string
	temperature    *float64
	maxTokens      *int
	registry       *tool.Registry
	memory         *ConversationMemory
	maxIterations  int
	language       Language
	workspace      string
	maxResultChars int
	logger         *log.Logger

	state      State
	steps      []*Step
	iterations int
}

// Option configures an Agent.
type Option func(*Agent)

// WithName sets the agent's persona name used in the system prompt.
func WithName(name string) Option {
	return func(a *Agent) { a.name = name }
}

// WithModel sets the model identifier sent to the backend.
func WithModel(model string) Option {
	return func(a *Agent) { a.model = model }
}

// WithProvider routes requests to a named provider adapter.
func WithProvider(provider string) Option {
	return func(a *Agent) { a.provider = provider }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(a *Agent) { a.temperature = &t }
}

// WithMaxTokens caps the backend's output length.
func WithMaxTokens(n int) Option {
	return func(a *Agent) { a.maxTokens = &n }
}

// WithMaxIterations caps the number of loop iterations per run.
func WithMaxIterations(n int) Option {
	return func(a *Agent) { a.maxIterations = n }
}

// WithLanguage selects the system prompt language.
func WithLanguage(lang Language) Option {
	return func(a *Agent) { a.language = lang }
}

// WithWorkspace names the filesystem root mentioned in the system prompt.
func WithWorkspace(dir string) Option {
	return func(a *Agent) { a.workspace = dir }
}

// WithTools registers tools at construction.
func WithTools(tools ...tool.Tool) Option {
	return func(a *Agent) {
		for _, t := range tools {
			a.registry.Register(t)
		}
	}
}

// WithMemoryLimit bounds the non-system message count; oldest messages are
// evicted first.
func WithMemoryLimit(maxMessages int) Option {
	return func(a *Agent) { a.memory = NewConversationMemory(maxMessages) }
}

// WithMaxResultChars bounds how much tool output is fed back to the model.
func WithMaxResultChars(n int) Option {
	return func(a *Agent) { a.maxResultChars = n }
}

// WithLogger sets the agent's logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// New creates an Agent backed by client and assembles its system prompt.
func New(client *llm.Client, opts ...Option) *Agent {
	a := &Agent{
		name:           "SAMA",
		client:         client,
		registry:       tool.NewRegistry(),
		memory:         NewConversationMemory(0),
		maxIterations:  DefaultMaxIterations,
		language:       LanguageEnglish,
		maxResultChars: tool.DefaultMaxResultChars,
		state:          StateIdle,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "agent"})
	}
	a.reassemblePrompt()
	return a
}

// Run executes the tool loop for one user input. It always returns a
// Response: tool failures are fed back to the model, backend failures end
// the run in the Error state, and reaching the iteration cap ends it in the
// Stopped state.
func (a *Agent) Run(ctx context.Context, input string) (resp *Response) {
	start := time.Now()
	runID := uuid.NewString()

	a.steps = nil
	a.iterations = 0
	a.memory.AddUserMessage(input)

	a.logger.Info("run started", "run_id", runID, "max_iterations", a.maxIterations)

	// Bookkeeping failures must surface as an Error response, never as a
	// panic escaping to the caller.
	defer func() {
		if rec := recover(); rec != nil {
			a.state = StateError
			resp = a.buildResponse(runID, start, false,
				"an internal error occurred", fmt.Sprintf("internal error: %v", rec))
		}
	}()

	for a.iterations < a.maxIterations {
		a.iterations++
		a.state = StateThinking

		modelResp, err := a.client.Complete(ctx, llm.Request{
			Model:       a.model,
			Provider:    a.provider,
			Messages:    a.memory.ModelMessages(),
			Tools:       a.toolDefinitions(),
			Temperature: a.temperature,
			MaxTokens:   a.maxTokens,
		})
		if err != nil {
			a.logger.Error("model request failed", "run_id", runID, "iteration", a.iterations, "err", err)
			a.state = StateError
			return a.buildResponse(runID, start, false,
				"the model request failed", err.Error())
		}

		text := modelResp.Text()
		calls := modelResp.ToolCalls()

		step := &Step{
			StepNumber: a.iterations,
			Thought:    extractThought(text),
		}
		a.steps = append(a.steps, step)

		if len(calls) == 0 {
			a.memory.AddAssistantMessage(text)
			step.FinalResponse = text
			a.state = StateCompleted
			a.logger.Info("run completed", "run_id", runID, "iterations", a.iterations)
			return a.buildResponse(runID, start, true, text, "")
		}

		a.state = StateExecuting
		directives := a.assignCallIDs(calls, a.iterations)

		for _, call := range directives {
			a.logger.Debug("dispatching tool", "run_id", runID, "tool", call.Name,
				"call_id", call.ID, "args", string(call.Arguments))

			result := a.registry.Dispatch(ctx, call.Name, call.Arguments)

			step.ToolCalls = append(step.ToolCalls, tool.Call{
				Name:      call.Name,
				Arguments: call.Arguments,
				ID:        call.ID,
				Timestamp: time.Now(),
			})
			step.ToolResults = append(step.ToolResults, result)

			if !result.IsSuccess() {
				a.logger.Warn("tool failed", "run_id", runID, "tool", call.Name,
					"status", result.Status, "err", result.ErrorMessage)
			}
		}

		// The backend requires its own directives echoed back before the
		// tool results on the next request.
		a.memory.AddAssistantMessage(text, directives...)
		for i, call := range directives {
			a.memory.AddToolMessage(call.ID, call.Name,
				tool.FormatResult(step.ToolResults[i], a.maxResultChars))
		}
	}

	a.state = StateStopped
	a.logger.Warn("iteration cap reached", "run_id", runID, "iterations", a.iterations)
	return a.buildResponse(runID, start, false,
		"I could not complete the task within the allowed number of steps.",
		"max iterations reached")
}

// assignCallIDs fills in synthesized ids for directives the backend left
// without one. Incorporating the iteration number keeps synthesized ids
// unique across turns even when the same tool lands at the same ordinal.
func (a *Agent) assignCallIDs(calls []llm.ToolCall, iteration int) []llm.ToolCall {
	out := make([]llm.ToolCall, len(calls))
	for i, call := range calls {
		if call.ID == "" {
			call.ID = fmt.Sprintf("call_%d_%d_%s", iteration, i, call.Name)
		}
		out[i] = call
	}
	return out
}

func (a *Agent) buildResponse(runID string, start time.Time, success bool, finalAnswer, errMsg string) *Response {
	return &Response{
		RunID:           runID,
		Success:         success,
		FinalAnswer:     finalAnswer,
		Steps:           a.steps,
		TotalIterations: a.iterations,
		ExecutionTime:   time.Since(start),
		ErrorMessage:    errMsg,
	}
}

func (a *Agent) toolDefinitions() []llm.ToolDefinition {
	tools := a.registry.Tools()
	if len(tools) == 0 {
		return nil
	}
	defs := make([]llm.ToolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = llm.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema(),
		}
	}
	return defs
}

// extractThought prefers a delimited thinking block; otherwise it falls back
// to a bounded prefix of the free text. Cosmetic, not semantic.
func extractThought(text string) string {
	if m := thinkingRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= thoughtPrefixLimit {
		return trimmed
	}
	return string(runes[:thoughtPrefixLimit]) + "..."
}

// Reset returns the agent to Idle: step list and iteration counter cleared,
// conversation history dropped, system prompt and tool set preserved.
func (a *Agent) Reset() {
	a.state = StateIdle
	a.steps = nil
	a.iterations = 0
	a.memory.Clear(true)
}

// AddTool registers a tool and reassembles the system prompt so the model's
// visible capability list stays consistent.
func (a *Agent) AddTool(t tool.Tool) {
	a.registry.Register(t)
	a.reassemblePrompt()
}

// RemoveTool unregisters a tool by name and reassembles the system prompt.
// It reports whether the tool was present.
func (a *Agent) RemoveTool(name string) bool {
	removed := a.registry.Unregister(name)
	if removed {
		a.reassemblePrompt()
	}
	return removed
}

// Tools returns the registered tools in registration order.
func (a *Agent) Tools() []tool.Tool {
	return a.registry.Tools()
}

// AddFile tracks a file in the conversation's file context.
func (a *Agent) AddFile(path, content, abstract string, metadata map[string]any) {
	a.memory.Files().Add(path, content, abstract, metadata)
	a.reassemblePrompt()
}

// UpdateFile merges fields into a tracked file, reporting false when the
// path is not tracked.
func (a *Agent) UpdateFile(path string, update FileContextUpdate) bool {
	ok := a.memory.Files().Update(path, update)
	if ok {
		a.reassemblePrompt()
	}
	return ok
}

// RemoveFile stops tracking a file, reporting whether it was tracked.
func (a *Agent) RemoveFile(path string) bool {
	ok := a.memory.Files().Remove(path)
	if ok {
		a.reassemblePrompt()
	}
	return ok
}

// FilesSummary renders the file-context digest shown to the model.
func (a *Agent) FilesSummary() string {
	return a.memory.Files().Summarize()
}

// Memory exposes the conversation memory for inspection.
func (a *Agent) Memory() *ConversationMemory {
	return a.memory
}

// Status returns an introspection snapshot.
func (a *Agent) Status() Status {
	return Status{
		Name:          a.name,
		State:         a.state,
		Iterations:    a.iterations,
		StepCount:     len(a.steps),
		ToolCount:     a.registry.Count(),
		MemorySize:    a.memory.Len(),
		ContextLength: a.memory.ContextLength(),
		FileCount:     a.memory.Files().Len(),
	}
}

func (a *Agent) reassemblePrompt() {
	a.memory.SetSystemMessage(BuildSystemPrompt(PromptParams{
		AgentName:        a.name,
		Language:         a.language,
		Workspace:        a.workspace,
		Tools:            a.registry.Tools(),
		FilesSummary:     a.memory.Files().Summarize(),
		RecentOperations: a.memory.RecentToolOperations(5),
	}))
}
