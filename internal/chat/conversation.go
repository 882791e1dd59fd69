package chat

import (
	"context"
	"sync"

	"mrdoc/internal/logger"
	"mrdoc/internal/session"
	"mrdoc/internal/testutils"
)

// Backend is the part of the MrDoc API a Conversation needs.
type Backend interface {
	HistorySource
	Completer
	ClearChatHistory(ctx context.Context, sessionID string) error
}

// Conversation binds a session id, its log and a dispatcher.
type Conversation struct {
	store      *session.Store
	backend    Backend
	log        *Log
	dispatcher *Dispatcher

	mu        sync.RWMutex
	sessionID string
}

// NewConversation wires a conversation over store and backend. Call Open before use.
func NewConversation(store *session.Store, backend Backend, gen testutils.Generators, opts ...DispatcherOption) *Conversation {
	l := NewLog(backend, gen)
	return &Conversation{
		store:      store,
		backend:    backend,
		log:        l,
		dispatcher: NewDispatcher(l, backend, gen, opts...),
	}
}

// Open loads or creates the session id and hydrates the log from server history.
func (c *Conversation) Open(ctx context.Context) error {
	id, err := c.store.GetOrCreate(ctx)
	if err != nil {
		return err
	}
	c.setSessionID(id)
	c.log.Hydrate(ctx, id)
	return nil
}

// SessionID returns the active session id.
func (c *Conversation) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

func (c *Conversation) setSessionID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = id
}

// Log returns the conversation log.
func (c *Conversation) Log() *Log {
	return c.log
}

// Dispatcher returns the conversation's dispatcher.
func (c *Conversation) Dispatcher() *Dispatcher {
	return c.dispatcher
}

// Dispatch sends text under the active session id.
func (c *Conversation) Dispatch(ctx context.Context, text string) (<-chan Outcome, error) {
	return c.dispatcher.Dispatch(ctx, text, c.SessionID())
}

// Send sends text under the active session id and waits for the outcome.
func (c *Conversation) Send(ctx context.Context, text string) (Outcome, error) {
	return c.dispatcher.Send(ctx, text, c.SessionID())
}

// Reset starts a new conversation: the session id is rotated and the log goes
// back to the welcome message. With purge the server history of the old id is
// deleted as well; otherwise it is left orphaned.
func (c *Conversation) Reset(ctx context.Context, purge bool) (string, error) {
	if c.dispatcher.Busy() {
		return "", ErrBusy
	}

	previous := c.SessionID()
	id, err := c.store.Rotate(ctx)
	if err != nil {
		return "", err
	}
	c.setSessionID(id)
	c.log.Reset()

	if purge && previous != "" {
		if err := c.backend.ClearChatHistory(ctx, previous); err != nil {
			logger.Warn("Failed to clear previous conversation", "session", previous, "error", err)
		}
	}
	return id, nil
}
