package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const handlerTimeout = 15 * time.Second

type Server struct{ mux *chi.Mux }

func New() *Server { return NewWithTimeout(handlerTimeout, log.Logger) }

// NewWithTimeout builds the router with a custom handler deadline and request logger.
func NewWithTimeout(d time.Duration, l zerolog.Logger) *Server {
	m := chi.NewRouter()

	// All middlewares go here (before any routes are added).
	// Metrics and Logger sit outside Timeout and Recoverer so they record the 503/500 the client sees.
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(Metrics)
	m.Use(Logger(l))
	m.Use(chimw.Recoverer)
	m.Use(Timeout(d))

	m.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, "route not found")
	})
	m.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
