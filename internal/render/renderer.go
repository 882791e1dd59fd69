package render

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"mrdoc/internal/logger"
)

// DefaultWordWrap is the markdown wrap width when none is configured.
const DefaultWordWrap = 80

// Renderer formats records for the terminal. In plain mode it emits no ANSI
// sequences at all, which keeps output stable in pipes and tests.
type Renderer struct {
	theme    *Theme
	plain    bool
	wordWrap int
	loc      *time.Location

	mdOnce   sync.Once
	markdown *glamour.TermRenderer
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPlain forces plain output regardless of the terminal.
func WithPlain(plain bool) Option {
	return func(r *Renderer) {
		r.plain = plain
	}
}

// WithWordWrap sets the markdown wrap width.
func WithWordWrap(width int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.wordWrap = width
		}
	}
}

// WithLocation sets the zone used for HH:MM timestamps.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// New creates a Renderer for theme. Output is plain when the terminal has no
// colour support or the plain theme is selected.
func New(theme *Theme, opts ...Option) *Renderer {
	if theme == nil {
		theme = PlainTheme()
	}
	r := &Renderer{
		theme:    theme,
		plain:    theme.Name == "plain" || lipgloss.ColorProfile() == termenv.Ascii,
		wordWrap: DefaultWordWrap,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.plain {
		r.theme = PlainTheme()
	}
	return r
}

// Plain reports whether the renderer emits unstyled text.
func (r *Renderer) Plain() bool {
	return r.plain
}

// Theme returns the active theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}

// Markdown renders assistant text. Plain mode returns the text with any
// escape sequences removed; rendering failures fall back to the raw text.
func (r *Renderer) Markdown(text string) string {
	if r.plain {
		return ansi.Strip(text)
	}

	r.mdOnce.Do(func() {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(r.wordWrap),
		)
		if err != nil {
			logger.Debug("Failed to create markdown renderer", "error", err)
			return
		}
		r.markdown = md
	})
	if r.markdown == nil {
		return ansi.Strip(text)
	}

	out, err := r.markdown.Render(ansi.Strip(text))
	if err != nil {
		logger.Debug("Failed to render markdown", "error", err)
		return ansi.Strip(text)
	}
	return strings.Trim(out, "\n")
}

// Clock formats an ISO-8601 timestamp as HH:MM in the renderer's zone.
// Unparseable input renders as "--:--".
func (r *Renderer) Clock(timestamp string) string {
	t, ok := parseTimestamp(timestamp)
	if !ok {
		return "--:--"
	}
	return t.In(r.loc).Format("15:04")
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp accepts RFC 3339 and the zone-less ISO form some backends
// emit; zone-less values are taken as UTC.
func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// paint applies style unless the renderer is plain. lipgloss pads multi-line
// text, so plain output skips it entirely.
func (r *Renderer) paint(style lipgloss.Style, text string) string {
	if r.plain {
		return text
	}
	return style.Render(text)
}

// truncate shortens s to width terminal cells.
func truncate(s string, width int) string {
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
