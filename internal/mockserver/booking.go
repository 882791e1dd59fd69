package mockserver

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"mrdoc/internal/booking"
	"mrdoc/pkg/medtypes"
)

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

func (s *Server) listDoctors(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.sortedDoctors())
}

func (s *Server) getDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid doctor id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doctor, exists := s.doctors[id]
	if !exists {
		writeDetail(w, http.StatusNotFound, "Doctor not found")
		return
	}
	writeJSON(w, http.StatusOK, doctor)
}

func (s *Server) addDoctor(w http.ResponseWriter, r *http.Request) {
	var req medtypes.NewDoctor
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON: %v", err)
		return
	}
	if err := booking.ValidateDoctor(req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.doctors {
		if strings.EqualFold(d.Email, req.Email) {
			writeDetail(w, http.StatusBadRequest, "Doctor with this email already exists")
			return
		}
	}

	doctor := &medtypes.Doctor{
		ID:             s.nextDoctor,
		Name:           req.Name,
		Specialty:      req.Specialty,
		Email:          req.Email,
		SlotsPerDay:    req.SlotsPerDay,
		AvailableSlots: req.SlotsPerDay,
	}
	s.nextDoctor++
	s.doctors[doctor.ID] = doctor
	s.log.Info("doctor added", "id", doctor.ID, "specialty", doctor.Specialty)

	writeJSON(w, http.StatusCreated, doctor)
}

func (s *Server) bookAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid doctor id")
		return
	}

	var req medtypes.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON: %v", err)
		return
	}
	if strings.TrimSpace(req.PatientName) == "" || req.AppointmentDate == "" || req.TimeSlot == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "patient_name, appointment_date and time_slot are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doctor, exists := s.doctors[id]
	if !exists {
		writeDetail(w, http.StatusNotFound, "Doctor not found")
		return
	}
	if doctor.AvailableSlots <= 0 {
		writeDetail(w, http.StatusBadRequest, "No available slots for this doctor")
		return
	}
	for _, a := range s.appointments {
		if a.DoctorID == id && !a.IsCancelled && a.AppointmentDate == req.AppointmentDate && a.TimeSlot == req.TimeSlot {
			writeDetail(w, http.StatusBadRequest, "Time slot already booked")
			return
		}
	}

	appt := &medtypes.Appointment{
		ID:              s.nextAppt,
		DoctorID:        id,
		PatientName:     strings.TrimSpace(req.PatientName),
		AppointmentDate: req.AppointmentDate,
		TimeSlot:        req.TimeSlot,
		DoctorName:      doctor.Name,
		DoctorSpecialty: doctor.Specialty,
	}
	s.nextAppt++
	s.appointments[appt.ID] = appt
	doctor.AvailableSlots--
	s.log.Info("appointment booked", "id", appt.ID, "doctor", id)

	writeJSON(w, http.StatusCreated, appt)
}

func (s *Server) listAppointments(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]medtypes.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid appointment id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	appt, exists := s.appointments[id]
	if !exists {
		writeDetail(w, http.StatusNotFound, "Appointment not found")
		return
	}
	if appt.IsCancelled {
		writeDetail(w, http.StatusBadRequest, "Appointment already cancelled")
		return
	}

	appt.IsCancelled = true
	if doctor, ok := s.doctors[appt.DoctorID]; ok && doctor.AvailableSlots < doctor.SlotsPerDay {
		doctor.AvailableSlots++
	}
	s.log.Info("appointment cancelled", "id", id)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Appointment cancelled successfully"})
}
