// Package shell provides the interactive MedBot chat: a readline loop whose
// plain lines are sent to the assistant verbatim and whose backslash commands
// manage the conversation.
package shell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/abiosoft/readline"

	"mrdoc/internal/api"
	"mrdoc/internal/booking"
	"mrdoc/internal/chat"
	"mrdoc/internal/logger"
	"mrdoc/internal/render"
	"mrdoc/internal/session"
	"mrdoc/internal/testutils"
	"mrdoc/pkg/medtypes"
)

// Prompt is shown before each line of input.
const Prompt = "you> "

// Backend is the API surface the chat REPL uses.
type Backend interface {
	chat.Backend
	SuggestDoctors(ctx context.Context, condition string) (json.RawMessage, error)
}

// Options tune a REPL.
type Options struct {
	In           io.Reader          // defaults to the terminal
	Out          io.Writer          // defaults to os.Stdout
	Renderer     *render.Renderer   // defaults to a plain renderer
	TypingDelay  time.Duration      // negative keeps chat.DefaultTypingDelay
	PurgeOnReset bool               // \clear always deletes server history
	Copy         func(string) error // defaults to the system clipboard
}

// REPL is the chat loop state shared by Run and tests.
type REPL struct {
	in           io.Reader
	conv         *chat.Conversation
	backend      Backend
	renderer     *render.Renderer
	purgeOnReset bool
	copy         func(string) error

	outMu sync.Mutex
	out   io.Writer
}

// New creates a REPL with its own Conversation over store and backend.
func New(store *session.Store, backend Backend, gen testutils.Generators, opts Options) *REPL {
	r := &REPL{
		in:           opts.In,
		backend:      backend,
		renderer:     opts.Renderer,
		purgeOnReset: opts.PurgeOnReset,
		copy:         opts.Copy,
		out:          opts.Out,
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.renderer == nil {
		r.renderer = render.New(render.PlainTheme())
	}
	if r.copy == nil {
		r.copy = copyToClipboard
	}

	dispatcherOpts := []chat.DispatcherOption{chat.WithStateObserver(r.onState)}
	if opts.TypingDelay >= 0 {
		dispatcherOpts = append(dispatcherOpts, chat.WithTypingDelay(opts.TypingDelay))
	}
	r.conv = chat.NewConversation(store, backend, gen, dispatcherOpts...)
	return r
}

// Conversation exposes the underlying conversation.
func (r *REPL) Conversation() *chat.Conversation {
	return r.conv
}

func (r *REPL) println(lines ...string) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	for _, line := range lines {
		_, _ = fmt.Fprintln(r.out, line)
	}
}

func (r *REPL) onState(s chat.State) {
	if s == chat.StateTyping {
		r.println(r.renderer.Typing())
	}
}

// Open restores the session and prints the conversation so far.
func (r *REPL) Open(ctx context.Context) error {
	if err := r.conv.Open(ctx); err != nil {
		return fmt.Errorf("failed to open conversation: %w", err)
	}
	logger.SessionOperation("open", r.conv.SessionID())
	r.println(r.renderer.Transcript(r.conv.Log().Messages()))
	return nil
}

// Process handles one input line and reports whether the loop should stop.
func (r *REPL) Process(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "\\") {
		r.send(ctx, line)
		return false
	}

	name, args, _ := strings.Cut(line[1:], " ")
	args = strings.TrimSpace(args)

	switch strings.ToLower(name) {
	case "exit", "quit":
		return true
	case "help":
		r.println(helpText)
	case "clear":
		r.clear(ctx, args)
	case "history":
		r.println(r.renderer.Transcript(r.conv.Log().Messages()))
	case "session":
		r.println(r.renderer.Notice("Session: " + r.conv.SessionID()))
	case "copy":
		r.copyLastReply()
	case "suggest":
		r.suggest(ctx, args)
	default:
		r.println(r.renderer.Warning(fmt.Sprintf("Unknown command \\%s. Type \\help for available commands.", name)))
	}
	return false
}

func (r *REPL) send(ctx context.Context, text string) {
	if r.conv.Dispatcher().Busy() {
		logger.Debug("Input ignored while a message is in flight")
		r.println(r.renderer.Warning("MedBot is still answering, please wait."))
		return
	}

	outcome, err := r.conv.Send(ctx, text)
	switch {
	case errors.Is(err, chat.ErrBusy):
		r.println(r.renderer.Warning("MedBot is still answering, please wait."))
		return
	case err != nil:
		return
	}

	if outcome.Err != nil {
		r.println(r.renderer.Message(outcome.User))
	}
	r.println(r.renderer.Message(outcome.Reply))
}

func (r *REPL) clear(ctx context.Context, args string) {
	purge := r.purgeOnReset
	switch args {
	case "":
	case "--purge":
		purge = true
	default:
		r.println(r.renderer.Warning("Usage: \\clear [--purge]"))
		return
	}

	id, err := r.conv.Reset(ctx, purge)
	if errors.Is(err, chat.ErrBusy) {
		r.println(r.renderer.Warning("Cannot start a new conversation while MedBot is answering."))
		return
	}
	if err != nil {
		r.println(r.renderer.Banner(booking.ErrorBanner("starting a new conversation", err.Error())))
		return
	}

	logger.Debug("Conversation reset", "session", id, "purged", purge)
	r.println(r.renderer.Notice("Started a new conversation."))
	r.println(r.renderer.Transcript(r.conv.Log().Messages()))
}

func (r *REPL) copyLastReply() {
	last, ok := r.conv.Log().Last(medtypes.SenderAssistant)
	if !ok || last.IsWelcome {
		r.println(r.renderer.Warning("No reply to copy yet."))
		return
	}
	if err := r.copy(last.Text); err != nil {
		logger.Debug("Clipboard write failed", "error", err)
		r.println(r.renderer.Warning("Failed to copy to clipboard: "+err.Error()), last.Text)
		return
	}
	r.println(r.renderer.Notice(fmt.Sprintf("Copied %d characters to clipboard", len(last.Text))))
}

func (r *REPL) suggest(ctx context.Context, condition string) {
	if condition == "" {
		r.println(r.renderer.Warning("Usage: \\suggest <condition>"))
		return
	}
	raw, err := r.backend.SuggestDoctors(ctx, condition)
	if err != nil {
		r.println(r.renderer.Banner(booking.ErrorBanner("suggesting doctors", api.ErrorDetail(err))))
		return
	}
	r.println(r.renderer.Suggestion(raw))
}

// Run opens the conversation and reads lines until \exit, Ctrl-C on an empty
// line or EOF. Lines reach Process exactly as typed.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.Open(ctx); err != nil {
		return err
	}

	rl, err := readline.NewEx(r.readlineConfig())
	if err != nil {
		return fmt.Errorf("failed to start line editor: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r.println("Type '\\help' for commands or '\\exit' to quit.")
	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}

		if r.Process(ctx, line) || ctx.Err() != nil {
			return nil
		}
	}
}

func (r *REPL) readlineConfig() *readline.Config {
	cfg := &readline.Config{
		Prompt:          Prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "\\exit",
		Stdout:          r.out,
	}
	if r.in != nil {
		// Injected input is never a terminal: no raw mode, no width probing.
		cfg.Stdin = io.NopCloser(r.in)
		cfg.FuncIsTerminal = func() bool { return false }
		cfg.FuncMakeRaw = func() error { return nil }
		cfg.FuncExitRaw = func() error { return nil }
		cfg.FuncGetWidth = func() int { return render.DefaultWordWrap }
		cfg.FuncOnWidthChanged = func(func()) {}
	}
	return cfg
}

func copyToClipboard(text string) error {
	if !clipboardAvailable {
		return fmt.Errorf("clipboard not available on this platform")
	}
	return writeToClipboard(text)
}

const helpText = `Type a message to talk to MedBot. Commands:
  \clear [--purge]      start a new conversation (--purge deletes the old history)
  \history              show the conversation so far
  \session              show the session id
  \copy                 copy MedBot's last reply to the clipboard
  \suggest <condition>  suggest doctors for a condition
  \help                 show this help
  \exit                 leave the chat`
