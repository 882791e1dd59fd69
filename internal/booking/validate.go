package booking

import (
	"net/mail"
	"strings"
	"time"

	"mrdoc/pkg/medtypes"
)

// Limits on slots_per_day accepted by the new doctor form.
const (
	MinSlotsPerDay = 1
	MaxSlotsPerDay = 20
)

// ValidationError describes the first invalid field of a form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ValidateDoctor checks a new doctor form.
func ValidateDoctor(d medtypes.NewDoctor) error {
	if strings.TrimSpace(d.Name) == "" {
		return invalid("name", "is required")
	}
	if strings.TrimSpace(d.Specialty) == "" {
		return invalid("specialty", "is required")
	}
	if strings.TrimSpace(d.Email) == "" {
		return invalid("email", "is required")
	}
	if addr, err := mail.ParseAddress(d.Email); err != nil || addr.Address != strings.TrimSpace(d.Email) {
		return invalid("email", "is not a valid address")
	}
	if d.SlotsPerDay < MinSlotsPerDay || d.SlotsPerDay > MaxSlotsPerDay {
		return invalid("slots_per_day", "must be between 1 and 20")
	}
	return nil
}

// ValidateBooking checks an appointment form. The date must be tomorrow or later
// in now's calendar and the slot one of TimeSlots.
func ValidateBooking(doctorID int, req medtypes.BookingRequest, now time.Time) error {
	if doctorID <= 0 {
		return invalid("doctor_id", "choose a doctor")
	}
	if strings.TrimSpace(req.PatientName) == "" {
		return invalid("patient_name", "is required")
	}
	date, err := time.ParseInLocation(DateLayout, req.AppointmentDate, now.Location())
	if err != nil {
		return invalid("appointment_date", "must be in YYYY-MM-DD format")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !date.After(today) {
		return invalid("appointment_date", "must be tomorrow or later")
	}
	if !IsValidSlot(req.TimeSlot) {
		return invalid("time_slot", "must be a half-hour slot between 09:00 and 17:00")
	}
	return nil
}
