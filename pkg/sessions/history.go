package sessions

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

var _ schema.ChatMessageHistory = (*History)(nil)

// History exposes one session of a Store as a langchaingo chat message history.
type History struct {
	store Store
	key   Key
}

func NewHistory(store Store, key Key) *History {
	return &History{store: store, key: key}
}

func (h *History) Key() Key {
	return h.key
}

func (h *History) AddMessage(ctx context.Context, message llms.ChatMessage) error {
	return h.store.Append(ctx, h.key, message)
}

func (h *History) AddUserMessage(ctx context.Context, message string) error {
	return h.AddMessage(ctx, llms.HumanChatMessage{Content: message})
}

func (h *History) AddAIMessage(ctx context.Context, message string) error {
	return h.AddMessage(ctx, llms.AIChatMessage{Content: message})
}

func (h *History) Clear(ctx context.Context) error {
	return h.store.Delete(ctx, h.key)
}

// Messages returns the session messages; an unknown session has none.
func (h *History) Messages(ctx context.Context) ([]llms.ChatMessage, error) {
	s, err := h.store.Load(ctx, h.key)
	if errors.Is(err, ErrSessionNotFound) {
		return []llms.ChatMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Messages, nil
}

func (h *History) SetMessages(ctx context.Context, messages []llms.ChatMessage) error {
	return h.store.Save(ctx, Session{Key: h.key, Messages: messages})
}
