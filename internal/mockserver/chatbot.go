package mockserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"mrdoc/internal/booking"
	"mrdoc/pkg/medtypes"
)

// Suggestion is the body returned by the suggest-doctors route.
type Suggestion struct {
	Condition string            `json:"condition"`
	Specialty string            `json:"specialty"`
	Doctors   []medtypes.Doctor `json:"doctors"`
}

func (s *Server) chatMessage(w http.ResponseWriter, r *http.Request) {
	var req medtypes.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON: %v", err)
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeDetail(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Format(time.RFC3339)
	answer := s.answer(message)

	if req.SessionID != "" {
		s.conversations[req.SessionID] = append(s.conversations[req.SessionID],
			medtypes.HistoryMessage{Role: "user", Content: message, Timestamp: now},
			medtypes.HistoryMessage{Role: "assistant", Content: answer, Timestamp: now},
		)
	}

	writeJSON(w, http.StatusOK, medtypes.ChatReply{
		Response:  answer,
		Timestamp: now,
		Success:   true,
	})
}

// answer builds a canned reply pointing at doctors of the matching specialty.
// Callers hold s.mu.
func (s *Server) answer(message string) string {
	keyword, specialty := s.matchSymptom(message)
	if specialty == "" {
		return "I can help with health questions and finding the right doctor. " +
			"Could you describe your **symptoms** in a bit more detail?"
	}

	var names []string
	for _, d := range s.doctorsFor(specialty) {
		if d.AvailableSlots > 0 {
			names = append(names, d.Name)
		}
	}

	reply := fmt.Sprintf("For **%s**, I recommend seeing a **%s** specialist.", keyword, specialty)
	if len(names) > 0 {
		reply += " Available: " + strings.Join(names, ", ") + "."
	} else {
		reply += " *No doctors in this specialty have open slots right now.*"
	}
	return reply
}

// matchSymptom returns the longest symptom keyword found in text and its specialty.
func (s *Server) matchSymptom(text string) (string, string) {
	lower := strings.ToLower(text)
	var bestKeyword, bestSpecialty string
	for keyword, specialty := range s.symptoms {
		if strings.Contains(lower, keyword) && len(keyword) > len(bestKeyword) {
			bestKeyword, bestSpecialty = keyword, specialty
		}
	}
	if bestSpecialty == "" {
		// The condition may itself name a specialty
		for _, d := range s.doctors {
			if strings.EqualFold(strings.TrimSpace(text), d.Specialty) {
				return d.Specialty, d.Specialty
			}
		}
	}
	return bestKeyword, bestSpecialty
}

func (s *Server) doctorsFor(specialty string) []medtypes.Doctor {
	var out []medtypes.Doctor
	for _, d := range s.sortedDoctors() {
		if strings.EqualFold(d.Specialty, specialty) {
			out = append(out, d)
		}
	}
	return out
}

func (s *Server) suggestDoctors(w http.ResponseWriter, r *http.Request) {
	condition := strings.TrimSpace(r.URL.Query().Get("condition"))
	if condition == "" {
		writeDetail(w, http.StatusBadRequest, "condition is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, specialty := s.matchSymptom(condition)
	doctors := booking.AvailableDoctors(s.doctorsFor(specialty))
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].AvailableSlots > doctors[j].AvailableSlots })
	if doctors == nil {
		doctors = []medtypes.Doctor{}
	}

	writeJSON(w, http.StatusOK, Suggestion{
		Condition: condition,
		Specialty: specialty,
		Doctors:   doctors,
	})
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	defer s.mu.Unlock()

	messages, exists := s.conversations[sessionID]
	if !exists {
		writeJSON(w, http.StatusOK, medtypes.History{Exists: false, RecentMessages: []medtypes.HistoryMessage{}})
		return
	}
	if len(messages) > historyLimit {
		messages = messages[len(messages)-historyLimit:]
	}
	recent := make([]medtypes.HistoryMessage, len(messages))
	copy(recent, messages)

	writeJSON(w, http.StatusOK, medtypes.History{Exists: true, RecentMessages: recent})
}

func (s *Server) clearConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[sessionID]; !exists {
		writeDetail(w, http.StatusNotFound, "Conversation not found")
		return
	}
	delete(s.conversations, sessionID)
	s.log.Info("conversation cleared", "session", sessionID)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation cleared"})
}

// ConversationLength reports how many messages the server holds for a session.
func (s *Server) ConversationLength(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations[sessionID])
}
