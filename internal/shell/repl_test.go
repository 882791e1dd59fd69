package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mrdoc/internal/api"
	"mrdoc/internal/chat"
	"mrdoc/internal/mockserver"
	"mrdoc/internal/render"
	"mrdoc/internal/session"
	"mrdoc/internal/testutils"
	"mrdoc/pkg/medtypes"
)

// syncBuffer guards a bytes.Buffer for the dispatcher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Take() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.buf.String()
	b.buf.Reset()
	return out
}

type harness struct {
	repl   *REPL
	out    *syncBuffer
	mock   *mockserver.Server
	url    string
	copied []string
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	mock, err := mockserver.New(mockserver.WithClock(func() time.Time {
		return time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	h := &harness{out: &syncBuffer{}, mock: mock, url: srv.URL}
	gen := testutils.NewDeterministic().Generators()
	opts.Out = h.out
	opts.Renderer = render.New(render.LoadTheme("default"), render.WithPlain(true), render.WithLocation(time.UTC))
	opts.Copy = func(text string) error {
		h.copied = append(h.copied, text)
		return nil
	}
	h.repl = New(session.NewStore(session.NewMemoryKV(), gen), api.NewClient(srv.URL, 0), gen, opts)
	require.NoError(t, h.repl.Open(context.Background()))
	return h
}

func TestREPL_OpenShowsWelcome(t *testing.T) {
	h := newHarness(t, Options{})
	out := h.out.Take()
	assert.True(t, strings.HasPrefix(out, "[00:00] MedBot: "+chat.WelcomeText))
}

func TestREPL_SendAndCommands(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.out.Take()

	assert.False(t, h.repl.Process(ctx, "I have a headache"))
	out := h.out.Take()
	assert.Contains(t, out, render.TypingText)
	assert.Contains(t, out, "[09:30] MedBot: For **headache**, I recommend seeing a **Neurology** specialist.")
	assert.NotContains(t, out, "You:")

	sessionID := h.repl.Conversation().SessionID()
	h.repl.Process(ctx, `\session`)
	assert.Equal(t, "Session: "+sessionID+"\n", h.out.Take())

	h.repl.Process(ctx, `\copy`)
	require.Len(t, h.copied, 1)
	assert.Contains(t, h.copied[0], "Neurology")
	assert.Contains(t, h.out.Take(), "Copied")

	h.repl.Process(ctx, `\history`)
	history := h.out.Take()
	assert.Contains(t, history, "You: I have a headache")
	assert.Equal(t, 3, strings.Count(history, "\n"))

	h.repl.Process(ctx, `\suggest rash`)
	assert.Contains(t, h.out.Take(), "Suggested Dermatology doctors:")

	h.repl.Process(ctx, `\suggest`)
	assert.Contains(t, h.out.Take(), `Usage: \suggest <condition>`)

	h.repl.Process(ctx, `\frobnicate now`)
	assert.Contains(t, h.out.Take(), `Unknown command \frobnicate`)

	h.repl.Process(ctx, `\help`)
	assert.Contains(t, h.out.Take(), `\clear [--purge]`)

	assert.False(t, h.repl.Process(ctx, "   "))
	assert.Empty(t, h.out.Take())

	assert.True(t, h.repl.Process(ctx, `\exit`))
	assert.True(t, h.repl.Process(ctx, `\QUIT`))
}

func TestREPL_Clear(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.repl.Process(ctx, "rash on my arm")

	first := h.repl.Conversation().SessionID()
	h.out.Take()
	h.repl.Process(ctx, `\clear`)
	out := h.out.Take()
	assert.Contains(t, out, "Started a new conversation.")
	assert.Contains(t, out, chat.WelcomeText)

	second := h.repl.Conversation().SessionID()
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, h.mock.ConversationLength(first), "plain clear leaves the old history on the server")
	assert.Equal(t, 1, h.repl.Conversation().Log().Len())

	h.repl.Process(ctx, "fever")
	h.repl.Process(ctx, `\clear --purge`)
	assert.Equal(t, 0, h.mock.ConversationLength(second))

	h.out.Take()
	h.repl.Process(ctx, `\clear --all`)
	assert.Contains(t, h.out.Take(), `Usage: \clear [--purge]`)
}

func TestREPL_PurgeOnResetOption(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{PurgeOnReset: true})
	h.repl.Process(ctx, "cough")
	first := h.repl.Conversation().SessionID()
	require.Equal(t, 2, h.mock.ConversationLength(first))

	h.repl.Process(ctx, `\clear`)
	assert.Equal(t, 0, h.mock.ConversationLength(first))
}

func TestREPL_CopyWithoutReply(t *testing.T) {
	h := newHarness(t, Options{})
	h.out.Take()
	h.repl.Process(context.Background(), `\copy`)
	assert.Contains(t, h.out.Take(), "No reply to copy yet.")
	assert.Empty(t, h.copied)
}

func TestREPL_CopyFailureShowsText(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.repl.copy = func(string) error { return errors.New("no display") }
	h.repl.Process(ctx, "headache")
	h.out.Take()

	h.repl.Process(ctx, `\copy`)
	out := h.out.Take()
	assert.Contains(t, out, "Failed to copy to clipboard: no display")
	assert.Contains(t, out, "Neurology")
}

func TestREPL_BackendDown(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(nil)
	srv.Close()

	out := &syncBuffer{}
	gen := testutils.NewDeterministic().Generators()
	r := New(session.NewStore(session.NewMemoryKV(), gen), api.NewClient(srv.URL, time.Second), gen, Options{
		Out:      out,
		Renderer: render.New(nil, render.WithLocation(time.UTC)),
	})
	require.NoError(t, r.Open(ctx))
	out.Take()

	r.Process(ctx, "hello")
	text := out.Take()
	assert.Contains(t, text, "You: hello (not delivered)")
	assert.Contains(t, text, chat.ApologyText)
	assert.NotContains(t, text, render.TypingText)

	r.Process(ctx, `\suggest rash`)
	assert.Contains(t, out.Take(), "❌ Error suggesting doctors:")
}

// blockingBackend holds every chat request until release is closed.
type blockingBackend struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingBackend) SendChatMessage(_ context.Context, _, _ string) (*medtypes.ChatReply, error) {
	close(b.started)
	<-b.release
	return &medtypes.ChatReply{Response: "done", Success: true}, nil
}

func (b *blockingBackend) GetChatHistory(_ context.Context, _ string) (*medtypes.History, error) {
	return &medtypes.History{}, nil
}

func (b *blockingBackend) ClearChatHistory(_ context.Context, _ string) error { return nil }

func (b *blockingBackend) SuggestDoctors(_ context.Context, _ string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func TestREPL_InputIgnoredWhileBusy(t *testing.T) {
	ctx := context.Background()
	backend := &blockingBackend{started: make(chan struct{}), release: make(chan struct{})}
	out := &syncBuffer{}
	gen := testutils.NewDeterministic().Generators()
	r := New(session.NewStore(session.NewMemoryKV(), gen), backend, gen, Options{Out: out})
	require.NoError(t, r.Open(ctx))
	out.Take()

	done := make(chan struct{})
	go func() {
		r.Process(ctx, "first")
		close(done)
	}()
	<-backend.started

	r.Process(ctx, "second")
	assert.Contains(t, out.Take(), "still answering")

	r.Process(ctx, `\clear`)
	assert.Contains(t, out.Take(), "Cannot start a new conversation")

	close(backend.release)
	<-done

	messages := r.Conversation().Log().Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[1].Text)
	assert.Equal(t, "done", messages[2].Text)
}

func userTexts(messages []medtypes.Message) []string {
	var texts []string
	for _, m := range messages {
		if m.Sender == medtypes.SenderUser {
			texts = append(texts, m.Text)
		}
	}
	return texts
}

func TestREPL_RunSendsLinesVerbatim(t *testing.T) {
	lines := []string{
		"I'm feeling dizzy",
		"don't  know   why it \"started",
		"it hurts << when I bend",
		`my back aches \`,
	}
	input := strings.Join(lines, "\n") + "\n\\exit\nnever sent\n"

	h := newHarness(t, Options{In: strings.NewReader(input)})
	require.NoError(t, h.repl.Run(context.Background()))

	conv := h.repl.Conversation()
	assert.Equal(t, lines, userTexts(conv.Log().Messages()))

	history, err := api.NewClient(h.url, 0).GetChatHistory(context.Background(), conv.SessionID())
	require.NoError(t, err)
	require.True(t, history.Exists)
	require.Len(t, history.RecentMessages, 2*len(lines))
	assert.Equal(t, lines[1], history.RecentMessages[2].Content)
	assert.Equal(t, lines[3], history.RecentMessages[6].Content)
}

func TestREPL_RunStopsAtEOF(t *testing.T) {
	h := newHarness(t, Options{In: strings.NewReader("I have a headache\n\\history")})
	require.NoError(t, h.repl.Run(context.Background()))

	assert.Equal(t, []string{"I have a headache"}, userTexts(h.repl.Conversation().Log().Messages()))
	assert.Contains(t, h.out.Take(), "You: I have a headache")
}
