package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"mrdoc/internal/logger"
	"mrdoc/internal/testutils"
	"mrdoc/pkg/medtypes"
)

// DefaultTypingDelay is the pause between receiving a reply and showing it.
const DefaultTypingDelay = 800 * time.Millisecond

// ApologyText replaces the assistant reply when a send fails.
const ApologyText = "I'm sorry, I'm experiencing technical difficulties. Please try again in a moment."

var (
	// ErrBusy is returned when a send is already in flight.
	ErrBusy = errors.New("a message is already being sent")
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("message is empty")
)

// Completer produces the assistant reply for one user message.
type Completer interface {
	SendChatMessage(ctx context.Context, message, sessionID string) (*medtypes.ChatReply, error)
}

// State is the dispatch cycle position.
type State int

const (
	// StateIdle accepts a new message.
	StateIdle State = iota
	// StateSending has the user echo appended and the request in flight.
	StateSending
	// StateTyping has the reply received and is waiting out the typing delay.
	StateTyping
)

func (s State) String() string {
	switch s {
	case StateSending:
		return "sending"
	case StateTyping:
		return "typing"
	default:
		return "idle"
	}
}

// Outcome is the result of one dispatch cycle.
type Outcome struct {
	User  medtypes.Message // the echo, with its final status
	Reply medtypes.Message // assistant reply or apology
	Err   error            // request failure, nil on success
}

// Dispatcher sends user messages one at a time and reconciles replies into a Log.
type Dispatcher struct {
	log         *Log
	completer   Completer
	gen         testutils.Generators
	typingDelay time.Duration
	onState     func(State)
	clog        *log.Logger

	mu    sync.Mutex
	state State
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTypingDelay sets the typing delay; zero disables it.
func WithTypingDelay(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d >= 0 {
			disp.typingDelay = d
		}
	}
}

// WithStateObserver registers fn to be called on every state change.
// fn runs on the dispatching goroutine and must not call back into the Dispatcher.
func WithStateObserver(fn func(State)) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.onState = fn
	}
}

// NewDispatcher creates a Dispatcher appending to l.
func NewDispatcher(l *Log, completer Completer, gen testutils.Generators, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		log:         l,
		completer:   completer,
		gen:         gen,
		typingDelay: DefaultTypingDelay,
		clog:        logger.NewStyledLogger("Dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current dispatch state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Busy reports whether a send is in flight.
func (d *Dispatcher) Busy() bool {
	return d.State() != StateIdle
}

func (d *Dispatcher) setState(s State) {
	d.mu.Lock()
	d.state = s
	observer := d.onState
	d.mu.Unlock()

	d.clog.Debug("state change", "state", s.String())
	if observer != nil {
		observer(s)
	}
}

// Dispatch appends the user echo and starts the request. The echo is in the log
// when Dispatch returns; the returned channel yields exactly one Outcome once
// the assistant reply or apology has been appended.
func (d *Dispatcher) Dispatch(ctx context.Context, text, sessionID string) (<-chan Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	d.mu.Lock()
	if d.state != StateIdle {
		d.mu.Unlock()
		return nil, ErrBusy
	}
	d.state = StateSending
	d.mu.Unlock()

	echo := medtypes.Message{
		ID:        "user_" + d.gen.NewID(),
		Text:      text,
		Sender:    medtypes.SenderUser,
		Timestamp: d.now(),
		Status:    medtypes.StatusPending,
	}
	d.log.Append(echo)
	d.setState(StateSending)

	done := make(chan Outcome, 1)
	go func() {
		done <- d.complete(ctx, echo, sessionID)
		close(done)
	}()
	return done, nil
}

// Send dispatches text and waits for the outcome.
func (d *Dispatcher) Send(ctx context.Context, text, sessionID string) (Outcome, error) {
	done, err := d.Dispatch(ctx, text, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	return <-done, nil
}

func (d *Dispatcher) complete(ctx context.Context, echo medtypes.Message, sessionID string) Outcome {
	reply, err := d.completer.SendChatMessage(ctx, echo.Text, sessionID)
	if err == nil && reply == nil {
		err = fmt.Errorf("empty chat reply")
	}
	if err != nil {
		return d.fail(echo, err)
	}

	d.setState(StateTyping)
	d.wait(ctx)

	ts := reply.Timestamp
	if ts == "" {
		ts = d.now()
	}
	answer := medtypes.Message{
		ID:        "bot_" + d.gen.NewID(),
		Text:      reply.Response,
		Sender:    medtypes.SenderAssistant,
		Timestamp: ts,
		Status:    medtypes.StatusDelivered,
	}

	d.log.setStatus(echo.ID, medtypes.StatusDelivered)
	d.log.Append(answer)
	d.setState(StateIdle)

	echo.Status = medtypes.StatusDelivered
	return Outcome{User: echo, Reply: answer}
}

func (d *Dispatcher) fail(echo medtypes.Message, err error) Outcome {
	d.clog.Warn("chat message failed", "error", err)

	apology := medtypes.Message{
		ID:        "error_" + d.gen.NewID(),
		Text:      ApologyText,
		Sender:    medtypes.SenderAssistant,
		Timestamp: d.now(),
		IsError:   true,
		Status:    medtypes.StatusDelivered,
	}

	d.log.setStatus(echo.ID, medtypes.StatusFailed)
	d.log.Append(apology)
	d.setState(StateIdle)

	echo.Status = medtypes.StatusFailed
	return Outcome{User: echo, Reply: apology, Err: err}
}

// wait is the single suspension point between reply and display. A cancelled
// context cuts it short but does not drop the reply.
func (d *Dispatcher) wait(ctx context.Context) {
	if d.typingDelay <= 0 {
		return
	}
	timer := time.NewTimer(d.typingDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (d *Dispatcher) now() string {
	return d.gen.Now().UTC().Format(time.RFC3339Nano)
}
