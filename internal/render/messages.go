package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"mrdoc/internal/booking"
	"mrdoc/pkg/medtypes"
)

// Display names of the two senders.
const (
	UserLabel      = "You"
	AssistantLabel = "MedBot"
)

// TypingText is shown while a reply is held back by the typing delay.
const TypingText = "MedBot is typing..."

// Message renders one chat line: "[HH:MM] Sender: text" plus a delivery marker
// for user messages that are still pending or have failed.
func (r *Renderer) Message(m medtypes.Message) string {
	t := r.theme

	label := r.paint(t.Assistant, AssistantLabel)
	body := r.Markdown(m.Text)
	switch {
	case m.Sender == medtypes.SenderUser:
		label = r.paint(t.User, UserLabel)
		body = ansiSafe(m.Text)
	case m.IsError:
		body = r.paint(t.Error, body)
	case m.IsWelcome:
		body = r.paint(t.Welcome, body)
	}

	var b strings.Builder
	b.WriteString(r.paint(t.Timestamp, "[" + r.Clock(m.Timestamp) + "]"))
	b.WriteString(" ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(body)

	switch m.Status {
	case medtypes.StatusPending:
		b.WriteString(" " + r.paint(t.Muted, "(sending)"))
	case medtypes.StatusFailed:
		b.WriteString(" " + r.paint(t.Error, "(not delivered)"))
	}
	return b.String()
}

// Transcript renders messages one per line, in order.
func (r *Renderer) Transcript(messages []medtypes.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, r.Message(m))
	}
	return strings.Join(lines, "\n")
}

// Typing renders the typing indicator.
func (r *Renderer) Typing() string {
	return r.paint(r.theme.Muted, TypingText)
}

// Banner renders a banner in its severity colour.
func (r *Renderer) Banner(b booking.Banner) string {
	if b.Text == "" {
		return ""
	}
	switch b.Severity {
	case booking.SeveritySuccess:
		return r.paint(r.theme.Success, b.Text)
	case booking.SeverityError:
		return r.paint(r.theme.Error, b.Text)
	default:
		return r.paint(r.theme.Info, b.Text)
	}
}

// Notice renders informational text such as command feedback.
func (r *Renderer) Notice(text string) string {
	return r.paint(r.theme.Info, text)
}

// Warning renders a warning line.
func (r *Renderer) Warning(text string) string {
	return r.paint(r.theme.Warning, text)
}

// ansiSafe removes escape sequences from text typed or received verbatim.
func ansiSafe(text string) string {
	return strings.TrimRight(ansi.Strip(text), "\n")
}
