package providers

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/memory"
	"github.com/tmc/langchaingo/schema"

	"github.com/avi3tal/functionsagent/internal/config"
	"github.com/avi3tal/functionsagent/pkg/sessions"
)

// NewMemory builds the conversation memory of a node, backed by a session in
// store. It returns nil when no memory is configured. An empty session ID
// starts a fresh session.
func NewMemory(cfg config.Memory, store sessions.Store, nodeName string) (schema.Memory, error) {
	if cfg.Type == config.MemoryNone {
		return nil, nil
	}

	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	history := sessions.NewHistory(store, sessions.Key{Node: nodeName, SessionID: sessionID})
	opts := []memory.ConversationBufferOption{
		memory.WithChatHistory(history),
		memory.WithInputKey("input"),
		memory.WithOutputKey("output"),
	}

	switch cfg.Type {
	case config.MemoryBuffer:
		return memory.NewConversationBuffer(opts...), nil
	case config.MemoryWindowBuffer:
		return memory.NewConversationWindowBuffer(cfg.WindowSize, opts...), nil
	default:
		return nil, errors.Wrapf(ErrUnknownMemory, "%q", cfg.Type)
	}
}
