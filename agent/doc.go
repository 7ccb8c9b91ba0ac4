// Package agent implements a single-agent tool loop over a chat-completion
// backend. An Agent repeatedly queries the model, dispatches the tool calls
// the model requests through a tool.Registry, threads the tagged results back
// into its conversation memory with strict correlation, and terminates when
// the model answers without requesting tools, the iteration cap is reached,
// or the backend fails.
//
// Run always returns a Response. Tool failures are values fed back to the
// model; only backend and bookkeeping failures end a run early, and even
// those are captured in the Response rather than escaping to the caller.
package agent
