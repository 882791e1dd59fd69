// Package medtypes defines the records exchanged with the MrDoc booking API.
// This file contains the doctor, appointment and chatbot wire types shared by the
// API client, the mock backend and the presentation layer.
package medtypes

// Doctor is a doctor record as listed by the doctor directory.
type Doctor struct {
	ID             int    `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Specialty      string `json:"specialty" yaml:"specialty"`
	Email          string `json:"email" yaml:"email"`
	SlotsPerDay    int    `json:"slots_per_day" yaml:"slots_per_day"`
	AvailableSlots int    `json:"available_slots" yaml:"available_slots"`
}

// NewDoctor is the payload used to register a doctor.
type NewDoctor struct {
	Name        string `json:"name"`
	Specialty   string `json:"specialty"`
	Email       string `json:"email"`
	SlotsPerDay int    `json:"slots_per_day"`
}

// Appointment is an appointment record from the appointment ledger.
type Appointment struct {
	ID              int    `json:"id"`
	DoctorID        int    `json:"doctor_id"`
	PatientName     string `json:"patient_name"`
	AppointmentDate string `json:"appointment_date"` // YYYY-MM-DD
	TimeSlot        string `json:"time_slot"`        // HH:MM
	IsCancelled     bool   `json:"is_cancelled"`
	DoctorName      string `json:"doctor_name"`
	DoctorSpecialty string `json:"doctor_specialty"`
}

// BookingRequest is posted to a doctor's appointment collection.
type BookingRequest struct {
	PatientName     string `json:"patient_name"`
	AppointmentDate string `json:"appointment_date"`
	TimeSlot        string `json:"time_slot"`
}

// HistoryMessage is a single entry of server-side conversation history.
type HistoryMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// History is the response of the conversation history lookup.
type History struct {
	Exists         bool             `json:"exists"`
	RecentMessages []HistoryMessage `json:"recent_messages"`
}

// ChatRequest is the chat completion request body.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatReply is the chat completion response body.
type ChatReply struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
	Success   bool   `json:"success"`
}

// ErrorBody is the error payload returned by the API on non-2xx responses.
type ErrorBody struct {
	Detail string `json:"detail"`
}
