// Package llm provides a provider-agnostic chat-completion client with
// function-calling semantics.
//
// The package models one blocking request/response exchange: an ordered
// message list plus tool declarations go in, free text and/or tool-call
// directives come out. Provider backends implement ProviderAdapter; the
// Client routes requests to the right adapter and applies middleware
// (retry, logging) around the call. The production adapter is GollmAdapter,
// which drives github.com/teilomillet/gollm.
//
// Retry policy lives here, not in the agent loop: the loop issues exactly
// one Complete call per iteration and treats whatever comes back as final.
package llm
