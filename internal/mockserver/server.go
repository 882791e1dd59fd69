// Package mockserver implements an in-memory MrDoc backend for local development and tests.
// It serves the same REST routes as the hosted API: doctors, appointments and chatbot.
package mockserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"gopkg.in/yaml.v3"

	"mrdoc/internal/data/embedded"
	"mrdoc/internal/logger"
	"mrdoc/pkg/medtypes"
)

// historyLimit caps recent_messages in conversation lookups.
const historyLimit = 20

// Seed is the initial state of the mock backend.
type Seed struct {
	Doctors  []medtypes.Doctor `yaml:"doctors"`
	Symptoms map[string]string `yaml:"symptoms"` // keyword -> specialty
}

// LoadSeed parses a YAML seed document.
func LoadSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	return &seed, nil
}

// Server holds the mock backend state behind a single mutex.
type Server struct {
	mu            sync.Mutex
	doctors       map[int]*medtypes.Doctor
	appointments  map[int]*medtypes.Appointment
	conversations map[string][]medtypes.HistoryMessage
	symptoms      map[string]string
	nextDoctor    int
	nextAppt      int

	now    func() time.Time
	router *chi.Mux
	log    *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the time source used for chat timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithSeed replaces the embedded seed data.
func WithSeed(seed *Seed) Option {
	return func(s *Server) {
		s.apply(seed)
	}
}

// New creates a Server seeded from the embedded seed file.
func New(opts ...Option) (*Server, error) {
	seed, err := LoadSeed(embedded.MockSeedData)
	if err != nil {
		return nil, err
	}

	s := &Server{
		now: time.Now,
		log: logger.NewStyledLogger("MockAPI"),
	}
	s.apply(seed)
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) apply(seed *Seed) {
	s.doctors = make(map[int]*medtypes.Doctor)
	s.appointments = make(map[int]*medtypes.Appointment)
	s.conversations = make(map[string][]medtypes.HistoryMessage)
	s.symptoms = make(map[string]string)
	s.nextDoctor = 1
	s.nextAppt = 1

	for _, d := range seed.Doctors {
		doctor := d
		s.doctors[doctor.ID] = &doctor
		if doctor.ID >= s.nextDoctor {
			s.nextDoctor = doctor.ID + 1
		}
	}
	for keyword, specialty := range seed.Symptoms {
		s.symptoms[strings.ToLower(keyword)] = specialty
	}
}

// Handler returns the HTTP handler serving the mock API, with permissive CORS
// so a browser client on another origin can use it.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	})
	return c.Handler(s.router)
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.health)

	r.Route("/doctors", func(r chi.Router) {
		r.Get("/", s.listDoctors)
		r.Post("/", s.addDoctor)
		r.Get("/{id}", s.getDoctor)
		r.Post("/{id}/appointments/", s.bookAppointment)
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", s.listAppointments)
		r.Delete("/{id}", s.cancelAppointment)
	})

	r.Route("/chatbot", func(r chi.Router) {
		r.Post("/message", s.chatMessage)
		r.Post("/suggest-doctors", s.suggestDoctors)
		r.Get("/conversation/{sessionID}", s.getConversation)
		r.Delete("/conversation/{sessionID}", s.clearConversation)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request", "route", r.Method+" "+r.URL.Path, "status", ww.Status(), "took", time.Since(start))
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, medtypes.ErrorBody{Detail: fmt.Sprintf(format, args...)})
}

// sortedDoctors returns copies of all doctors ordered by id. Callers hold s.mu.
func (s *Server) sortedDoctors() []medtypes.Doctor {
	out := make([]medtypes.Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
