// Package providers builds the collaborators connected to an agent node
// (chat model, memory, tools and output parsers) from its configuration.
package providers

import "errors"

var (
	ErrUnknownProvider = errors.New("unknown model provider")
	ErrUnknownTool     = errors.New("unknown tool")
	ErrUnknownParser   = errors.New("unknown output parser")
	ErrUnknownMemory   = errors.New("unknown memory type")
	ErrMissingAPIKey   = errors.New("missing API key")
	ErrMissingModel    = errors.New("missing model name")
)

// UserAgent is sent by tools that call public web APIs.
const UserAgent = "functionsagent/1.0 (+https://github.com/avi3tal/functionsagent)"
