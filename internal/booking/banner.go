package booking

// Severity of a banner message.
type Severity string

// Banner severities.
const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Banner is the status line printed after a booking action.
type Banner struct {
	Text     string
	Severity Severity
}

// NewBanner creates a banner.
func NewBanner(text string, severity Severity) Banner {
	return Banner{Text: text, Severity: severity}
}

// Success messages of the booking actions.
const (
	DoctorAddedText   = "✅ Doctor added successfully! A welcome email has been sent to their email address."
	BookedText        = "🎉 Appointment booked successfully! The doctor has been notified via email."
	CancelledText     = "✅ Appointment cancelled successfully! The doctor has been notified via email about this cancellation."
	loadDoctorsPrefix = "❌ Error loading doctors: "
)

// ErrorBanner formats a failed action, e.g. ErrorBanner("booking appointment", detail).
func ErrorBanner(action, detail string) Banner {
	return NewBanner("❌ Error "+action+": "+detail, SeverityError)
}

// LoadDoctorsError is the banner shown when the doctor list cannot be fetched.
func LoadDoctorsError(detail string) Banner {
	return NewBanner(loadDoctorsPrefix+detail, SeverityError)
}
