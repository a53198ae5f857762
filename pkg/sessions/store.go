package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
)

var ErrSessionNotFound = errors.New("session not found")

// Key identifies the conversation of one node in one session.
type Key struct {
	Node      string
	SessionID string
}

func (k Key) String() string {
	return k.Node + "/" + k.SessionID
}

// Session is the stored conversation for a Key.
type Session struct {
	Key       Key
	Messages  []llms.ChatMessage
	UpdatedAt time.Time
}

// Store persists conversation sessions.
type Store interface {
	Load(ctx context.Context, key Key) (*Session, error)
	Save(ctx context.Context, session Session) error
	Append(ctx context.Context, key Key, messages ...llms.ChatMessage) error
	Delete(ctx context.Context, key Key) error
}

type MemoryStore struct {
	sessions map[Key]*Session
	mu       sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[Key]*Session),
	}
}

func (m *MemoryStore) Save(_ context.Context, session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session.Messages = append([]llms.ChatMessage(nil), session.Messages...)
	session.UpdatedAt = time.Now()
	m.sessions[session.Key] = &session
	return nil
}

// Append adds messages to a session, creating it when missing.
func (m *MemoryStore) Append(_ context.Context, key Key, messages ...llms.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.sessions[key]
	if !exists {
		s = &Session{Key: key}
		m.sessions[key] = s
	}
	s.Messages = append(s.Messages, messages...)
	s.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) Load(_ context.Context, key Key) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.sessions[key]
	if !exists {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, key)
	}
	out := *s
	out.Messages = append([]llms.ChatMessage(nil), s.Messages...)
	return &out, nil
}

func (m *MemoryStore) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, key)
	return nil
}
