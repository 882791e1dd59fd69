package render

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mrdoc/internal/booking"
	"mrdoc/internal/testutils/golden"
	"mrdoc/pkg/medtypes"
)

func plainRenderer() *Renderer {
	return New(LoadTheme("default"), WithPlain(true), WithLocation(time.UTC))
}

func TestLoadTheme(t *testing.T) {
	theme := LoadTheme("Default")
	assert.Equal(t, "default", theme.Name)
	assert.Equal(t, lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#93c5fd"}, theme.User.GetForeground())
	assert.True(t, theme.User.GetBold())
	assert.True(t, theme.Welcome.GetItalic())
	assert.Equal(t, lipgloss.Color("#dc2626"), theme.Error.GetForeground())

	assert.Equal(t, "dark", LoadTheme("dark").Name)
	assert.Equal(t, "plain", LoadTheme("neon").Name)
	assert.Equal(t, "default", LoadTheme("").Name)
	assert.Equal(t, []string{"dark", "default", "plain"}, ThemeNames())
}

func TestParseTheme(t *testing.T) {
	theme, err := ParseTheme([]byte("name: custom\nstyles:\n  header:\n    background: \"#000000\"\n    underline: true\n  user:\n    foreground:\n      light: \"#111111\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "custom", theme.Name)
	assert.Equal(t, lipgloss.Color("#000000"), theme.Header.GetBackground())
	assert.True(t, theme.Header.GetUnderline())
	// Adaptive colours need both halves
	assert.Equal(t, lipgloss.NoColor{}, theme.User.GetForeground())

	_, err = ParseTheme([]byte("styles: [unclosed"))
	assert.Error(t, err)
}

func TestNew_PlainThemeForcesPlain(t *testing.T) {
	r := New(LoadTheme("plain"))
	assert.True(t, r.Plain())

	r = New(nil)
	assert.True(t, r.Plain())
}

func TestClock(t *testing.T) {
	r := plainRenderer()
	assert.Equal(t, "14:30", r.Clock("2025-01-01T14:30:59Z"))
	assert.Equal(t, "09:08", r.Clock("2025-01-01T09:08:00.123456"))
	assert.Equal(t, "12:00", r.Clock("2025-01-01T14:00:00+02:00"))
	assert.Equal(t, "--:--", r.Clock(""))
	assert.Equal(t, "--:--", r.Clock("yesterday"))

	berlin := time.FixedZone("CET", 3600)
	r = New(nil, WithLocation(berlin))
	assert.Equal(t, "15:30", r.Clock("2025-01-01T14:30:00Z"))
}

func TestTranscript_Plain(t *testing.T) {
	r := plainRenderer()
	messages := []medtypes.Message{
		{ID: "welcome", Text: "Hello, I'm **MedBot**.", Sender: medtypes.SenderAssistant, Timestamp: "2025-01-01T09:05:00Z", IsWelcome: true, Status: medtypes.StatusDelivered},
		{ID: "user_1", Text: "I have a headache", Sender: medtypes.SenderUser, Timestamp: "2025-01-01T09:06:00Z", Status: medtypes.StatusDelivered},
		{ID: "bot_1", Text: "See a *Neurology* specialist.", Sender: medtypes.SenderAssistant, Timestamp: "2025-01-01T09:06:01Z", Status: medtypes.StatusDelivered},
		{ID: "user_2", Text: "still there?", Sender: medtypes.SenderUser, Timestamp: "2025-01-01T09:07:00Z", Status: medtypes.StatusFailed},
		{ID: "error_1", Text: "Something went wrong.", Sender: medtypes.SenderAssistant, Timestamp: "", IsError: true, Status: medtypes.StatusDelivered},
		{ID: "user_3", Text: "hello\x1b[31m red", Sender: medtypes.SenderUser, Timestamp: "2025-01-01T09:08:00Z", Status: medtypes.StatusPending},
	}

	expected := `[09:05] MedBot: Hello, I'm **MedBot**.
[09:06] You: I have a headache
[09:06] MedBot: See a *Neurology* specialist.
[09:07] You: still there? (not delivered)
[--:--] MedBot: Something went wrong.
[09:08] You: hello red (sending)`

	golden.Equal(t, expected, r.Transcript(messages))
}

func TestBannerAndTyping_Plain(t *testing.T) {
	r := plainRenderer()

	assert.Equal(t, booking.BookedText, r.Banner(booking.NewBanner(booking.BookedText, booking.SeveritySuccess)))
	assert.Equal(t, "❌ Error cancelling appointment: gone",
		r.Banner(booking.ErrorBanner("cancelling appointment", "gone")))
	assert.Empty(t, r.Banner(booking.Banner{}))
	assert.Equal(t, TypingText, r.Typing())
}

func TestMarkdown_Styled(t *testing.T) {
	r := New(LoadTheme("default"), WithPlain(false), WithWordWrap(60))
	require.False(t, r.Plain())

	out := r.Markdown("Book with **Dr. Chen** today")
	assert.Contains(t, out, "Dr. Chen")
	assert.False(t, strings.HasPrefix(out, "\n"))
}

func TestDoctors_Table(t *testing.T) {
	r := plainRenderer()
	doctors := []medtypes.Doctor{
		{ID: 1, Name: "Dr. Sarah Johnson", Specialty: "Cardiology", Email: "sarah@x.co", SlotsPerDay: 8, AvailableSlots: 8},
		{ID: 4, Name: "Dr. Bartholomew Featherstonehaugh-Smythe", Specialty: "General Medicine", Email: "b@x.co", SlotsPerDay: 10, AvailableSlots: 0},
	}

	out := r.Doctors(doctors)
	assert.Contains(t, out, "Availability")
	assert.Contains(t, out, "Dr. Sarah Johnson")
	assert.Contains(t, out, "8/8")
	assert.Contains(t, out, "🟢 High Availability")
	assert.Contains(t, out, "🔴 Fully Booked")
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, "Featherstonehaugh-Smythe")
	assert.NotContains(t, out, "\x1b[")

	assert.Contains(t, r.Doctors(nil), "No doctors registered yet")
}

func TestDoctor_Card(t *testing.T) {
	r := plainRenderer()
	out := r.Doctor(medtypes.Doctor{ID: 2, Name: "Dr. Michael Chen", Specialty: "Neurology", Email: "m@x.co", SlotsPerDay: 6, AvailableSlots: 3})

	expected := `Dr. Michael Chen
Specialty:    Neurology
Email:        m@x.co
Slots:        3 of 6 available
Availability: 🟡 Limited Availability`
	golden.Equal(t, expected, out)
}

func TestAvailability(t *testing.T) {
	r := plainRenderer()
	out := r.Availability([]medtypes.Doctor{
		{Name: "Dr. A", Specialty: "ENT", SlotsPerDay: 5, AvailableSlots: 1},
		{Name: "Dr. B", Specialty: "ENT", SlotsPerDay: 5, AvailableSlots: 0},
	})

	expected := `1 of 2 doctors have open slots
🟠 Dr. A (ENT): 1/5 slots, Few Slots Left
🔴 Dr. B (ENT): 0/5 slots, Fully Booked`
	golden.Equal(t, expected, out)
}

func TestAppointments(t *testing.T) {
	r := plainRenderer()
	appointments := []medtypes.Appointment{
		{ID: 1, PatientName: "Ana", DoctorName: "Dr. Chen", DoctorSpecialty: "Neurology", AppointmentDate: "2025-03-14", TimeSlot: "14:30"},
		{ID: 2, PatientName: "Ben", DoctorName: "Dr. Patel", DoctorSpecialty: "Dermatology", AppointmentDate: "2025-03-15", TimeSlot: "09:00", IsCancelled: true},
	}

	out := r.Appointments(appointments, booking.FilterActive)
	assert.Contains(t, out, "Ana")
	assert.NotContains(t, out, "Ben")
	assert.Contains(t, out, "Friday, March 14, 2025")
	assert.Contains(t, out, "2:30 PM")
	assert.True(t, strings.HasSuffix(out, "Total: 2 | Active: 1 | Cancelled: 1"))

	out = r.Appointments(appointments[:1], booking.FilterCancelled)
	assert.Equal(t, booking.FilterCancelled.EmptyMessage()+"\nTotal: 1 | Active: 1 | Cancelled: 0", out)
}

func TestAppointment_Confirmation(t *testing.T) {
	r := plainRenderer()
	out := r.Appointment(medtypes.Appointment{ID: 7, PatientName: "Ana", DoctorName: "Dr. Chen", DoctorSpecialty: "Neurology", AppointmentDate: "2025-03-14", TimeSlot: "09:30"})
	assert.Equal(t, "#7 Ana with Dr. Chen (Neurology) on Friday, March 14, 2025 at 9:30 AM", out)
}

func TestSlots(t *testing.T) {
	out := plainRenderer().Slots()
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "09:00 (9:00 AM)"))
	assert.Contains(t, lines[4], "17:00 (5:00 PM)")
}

func TestSuggestion(t *testing.T) {
	r := plainRenderer()

	raw := json.RawMessage(`{"condition":"rash","specialty":"Dermatology","doctors":[{"id":3,"name":"Dr. Priya Patel","specialty":"Dermatology","email":"p@x.co","slots_per_day":5,"available_slots":1}]}`)
	out := r.Suggestion(raw)
	assert.True(t, strings.HasPrefix(out, "Suggested Dermatology doctors:"))
	assert.Contains(t, out, "Dr. Priya Patel")

	assert.Contains(t, r.Suggestion(json.RawMessage(`{"doctors":[]}`)), "No available doctors")

	out = r.Suggestion(json.RawMessage(`{"message":"see a GP"}`))
	assert.Equal(t, "{\n  \"message\": \"see a GP\"\n}", out)

	assert.Equal(t, "not json", r.Suggestion(json.RawMessage("not json")))
}
