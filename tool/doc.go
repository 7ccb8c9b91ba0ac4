// Package tool defines the tool contract and registry the agent dispatches
// against.
//
// Every capability the model can invoke implements Tool: a unique name, a
// natural-language description shown to the model, a JSON-Schema parameter
// declaration, and a blocking Execute. Execute returns plain (output, error)
// pairs; the Registry's Dispatch wraps every call into a tagged Result
// (success, error, or timeout) with wall-clock timing, so a failing tool can
// never abort an agent run.
//
// Side-effect boundaries are enforced by the tools themselves: file tools
// refuse paths outside their allowed roots, the shell tool applies a command
// policy, and the python tool bounds subprocess lifetime with a timeout.
package tool
