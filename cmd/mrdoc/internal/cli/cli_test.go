package cli

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mrdoc/internal/booking"
	"mrdoc/internal/mockserver"
)

type cliEnv struct {
	apiURL   string
	stateDir string
}

func newEnv(t *testing.T) *cliEnv {
	t.Helper()
	mock, err := mockserver.New()
	require.NoError(t, err)
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)
	return &cliEnv{apiURL: srv.URL, stateDir: t.TempDir()}
}

// run executes one mrdoc invocation against the env's mock backend.
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewApp().CreateRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--test-mode", "--api-url", e.apiURL, "--state-dir", e.stateDir))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_Version(t *testing.T) {
	env := newEnv(t)

	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "mrdoc v"))

	out, err = env.run(t, "version", "--detailed")
	require.NoError(t, err)
	assert.Contains(t, out, "Go Version: ")
}

func TestCLI_Doctors(t *testing.T) {
	env := newEnv(t)

	out, err := env.run(t, "doctors", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Dr. Sarah Johnson")
	assert.Contains(t, out, "Dr. James Okafor")

	out, err = env.run(t, "doctors", "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Dr. Michael Chen")
	assert.Contains(t, out, "Slots:        3 of 6 available")

	out, err = env.run(t, "doctors", "show", "99")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, out, "❌ Error loading doctor: Doctor not found")

	_, err = env.run(t, "doctors", "show", "abc")
	assert.ErrorContains(t, err, `invalid id "abc"`)

	out, err = env.run(t, "availability")
	require.NoError(t, err)
	assert.Contains(t, out, "3 of 4 doctors have open slots")
}

func TestCLI_AddDoctor(t *testing.T) {
	env := newEnv(t)

	out, err := env.run(t, "doctors", "add",
		"--name", " Dr. Ada Lovelace ", "--specialty", "Pediatrics",
		"--email", "ada@mrdoc.example", "--slots", "4")
	require.NoError(t, err)
	assert.Contains(t, out, booking.DoctorAddedText)
	assert.Contains(t, out, "Dr. Ada Lovelace\nSpecialty:    Pediatrics")

	out, err = env.run(t, "doctors", "add",
		"--name", "Dr. Ada Twin", "--specialty", "Pediatrics",
		"--email", "ADA@mrdoc.example", "--slots", "4")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, out, "❌ Error adding doctor: Doctor with this email already exists")

	out, err = env.run(t, "doctors", "add",
		"--name", "Dr. No Mail", "--specialty", "Pediatrics", "--email", "not-an-email")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, out, "❌ Error adding doctor: email: is not a valid address")
}

func TestCLI_BookListCancel(t *testing.T) {
	env := newEnv(t)

	out, err := env.run(t, "book", "--doctor", "3", "--patient", "  Jane Roe ", "--time", "10:30")
	require.NoError(t, err)
	assert.Contains(t, out, booking.BookedText)
	assert.Contains(t, out, "#1 Jane Roe with Dr. Priya Patel (Dermatology) on Thursday, January 2, 2025 at 10:30 AM")

	out, err = env.run(t, "book", "--doctor", "3", "--patient", "John Roe", "--time", "11:00")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, out, "❌ Error booking appointment: No available slots for this doctor")

	out, err = env.run(t, "appointments", "list", "--filter", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Roe")
	assert.Contains(t, out, "Total: 1 | Active: 1 | Cancelled: 0")

	out, err = env.run(t, "appointments", "cancel", "1")
	require.NoError(t, err)
	assert.Contains(t, out, booking.CancelledText)

	out, err = env.run(t, "appointments", "cancel", "#1")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, out, "❌ Error cancelling appointment: Appointment already cancelled")

	out, err = env.run(t, "appointments", "list", "--filter", "active")
	require.NoError(t, err)
	assert.Contains(t, out, booking.FilterActive.EmptyMessage())
	assert.Contains(t, out, "Total: 1 | Active: 0 | Cancelled: 1")

	_, err = env.run(t, "appointments", "list", "--filter", "upcoming")
	assert.ErrorContains(t, err, `unknown filter "upcoming"`)
}

func TestCLI_BookValidation(t *testing.T) {
	env := newEnv(t)

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"no doctor", []string{"--patient", "Jane", "--time", "10:00"}, "doctor_id: choose a doctor"},
		{"no patient", []string{"--doctor", "1", "--time", "10:00"}, "patient_name: is required"},
		{"past date", []string{"--doctor", "1", "--patient", "Jane", "--date", "2025-01-01", "--time", "10:00"}, "appointment_date: must be tomorrow or later"},
		{"bad slot", []string{"--doctor", "1", "--patient", "Jane", "--time", "17:30"}, "time_slot: must be a half-hour slot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(t, append([]string{"book"}, tt.args...)...)
			assert.ErrorIs(t, err, ErrReported)
			assert.Contains(t, out, "❌ Error booking appointment: "+tt.expected)
		})
	}

	out, err := env.run(t, "book", "--list-slots")
	require.NoError(t, err)
	assert.Contains(t, out, "09:00 (9:00 AM)")
	assert.Contains(t, out, "17:00 (5:00 PM)")
}

func TestCLI_Suggest(t *testing.T) {
	env := newEnv(t)

	out, err := env.run(t, "suggest", "chest", "pain")
	require.NoError(t, err)
	assert.Contains(t, out, "Suggested Cardiology doctors:")
	assert.Contains(t, out, "Dr. Sarah Johnson")
}

func TestCLI_Session(t *testing.T) {
	env := newEnv(t)

	out, err := env.run(t, "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No session yet")

	out, err = env.run(t, "session", "clear-history")
	require.NoError(t, err)
	assert.Contains(t, out, "No session yet: nothing to clear.")

	out, err = env.run(t, "session", "rotate")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	previous := strings.TrimPrefix(lines[0], "Previous session: ")
	current := strings.TrimPrefix(lines[1], "New session: ")
	assert.NotEmpty(t, previous)
	assert.NotEmpty(t, current)
	assert.NotEqual(t, previous, current)

	out, err = env.run(t, "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Session: "+current)
	assert.Contains(t, out, "Messages: 0")

	// Nothing was ever sent on the new session.
	out, err = env.run(t, "session", "clear-history")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, out, "❌ Error clearing conversation: ")
}

func TestCLI_InvalidConfig(t *testing.T) {
	cmd := NewApp().CreateRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"doctors", "list", "--test-mode", "--api-url", "ftp://example.com", "--state-dir", t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrReported)
}
