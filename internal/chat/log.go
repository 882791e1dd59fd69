// Package chat implements the MedBot conversation: the message log hydrated from
// server history, the dispatcher that sends one message at a time, and the
// Conversation tying both to a persisted session id.
package chat

import (
	"context"
	"strconv"
	"sync"
	"time"

	"mrdoc/internal/logger"
	"mrdoc/internal/testutils"
	"mrdoc/pkg/medtypes"
)

// WelcomeText greets the user when there is no prior conversation.
const WelcomeText = "👋 Hello! I'm MedBot, your healthcare assistant. I can help you with medical questions, suggest doctors from our system, and provide health information. How can I assist you today?"

// WelcomeID is the id of the synthetic welcome message.
const WelcomeID = "welcome"

// HistorySource looks up server-side conversation history.
type HistorySource interface {
	GetChatHistory(ctx context.Context, sessionID string) (*medtypes.History, error)
}

// Log is the ordered, append-only message list of one conversation.
// It is safe for concurrent use.
type Log struct {
	mu       sync.RWMutex
	messages []medtypes.Message
	history  HistorySource
	gen      testutils.Generators
}

// NewLog creates a log holding just the welcome message.
func NewLog(history HistorySource, gen testutils.Generators) *Log {
	l := &Log{history: history, gen: gen}
	l.messages = []medtypes.Message{l.welcome()}
	return l
}

func (l *Log) timestamp() string {
	return l.gen.Now().UTC().Format(time.RFC3339Nano)
}

func (l *Log) welcome() medtypes.Message {
	return medtypes.Message{
		ID:        WelcomeID,
		Text:      WelcomeText,
		Sender:    medtypes.SenderAssistant,
		Timestamp: l.timestamp(),
		IsWelcome: true,
		Status:    medtypes.StatusDelivered,
	}
}

// Hydrate replaces the log with the server history of sessionID, or with a
// single welcome message when there is none or the lookup fails.
func (l *Log) Hydrate(ctx context.Context, sessionID string) {
	messages := l.fetchHistory(ctx, sessionID)
	if len(messages) == 0 {
		messages = []medtypes.Message{l.welcome()}
	}

	l.mu.Lock()
	l.messages = messages
	l.mu.Unlock()
}

func (l *Log) fetchHistory(ctx context.Context, sessionID string) []medtypes.Message {
	if l.history == nil || sessionID == "" {
		return nil
	}

	history, err := l.history.GetChatHistory(ctx, sessionID)
	if err != nil {
		logger.Debug("No previous conversation found", "session", sessionID, "error", err)
		return nil
	}
	if history == nil || !history.Exists || len(history.RecentMessages) == 0 {
		return nil
	}

	messages := make([]medtypes.Message, 0, len(history.RecentMessages))
	for i, m := range history.RecentMessages {
		ts := m.Timestamp
		if ts == "" {
			ts = l.timestamp()
		}
		messages = append(messages, medtypes.Message{
			ID:        "history_" + strconv.Itoa(i),
			Text:      m.Content,
			Sender:    medtypes.SenderFromRole(m.Role),
			Timestamp: ts,
			Status:    medtypes.StatusDelivered,
		})
	}
	logger.Debug("Conversation hydrated", "session", sessionID, "messages", len(messages))
	return messages
}

// Append adds msg to the end of the log.
func (l *Log) Append(msg medtypes.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Reset replaces the log with a fresh welcome message.
func (l *Log) Reset() {
	w := l.welcome()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = []medtypes.Message{w}
}

// Messages returns a copy of the log in order.
func (l *Log) Messages() []medtypes.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]medtypes.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Last returns the most recent message from sender.
func (l *Log) Last(sender medtypes.Sender) (medtypes.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].Sender == sender {
			return l.messages[i], true
		}
	}
	return medtypes.Message{}, false
}

// setStatus finalises the status of the message with id. It is the only
// in-place change the log allows.
func (l *Log) setStatus(id string, status medtypes.MessageStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].ID == id {
			l.messages[i].Status = status
			return
		}
	}
}
