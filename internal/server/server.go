// Package server exposes the batch conversion pipeline over HTTP. Sessions
// map the upstream document-set-changed and clear events onto a small REST
// API and live in memory for the lifetime of the process.
package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	convertmd "github.com/nicholasgasior/convertmd-go"
	"github.com/nicholasgasior/convertmd-go/internal/config"
)

// Server holds the HTTP surface and the in-memory session store.
type Server struct {
	cfg       config.Config
	converter convertmd.Converter
	log       zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*convertmd.Session
}

// New creates a Server driving the given converter.
func New(cfg config.Config, converter convertmd.Converter, log zerolog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		converter: converter,
		log:       log.With().Str("component", "server").Logger(),
		sessions:  make(map[string]*convertmd.Session),
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/formats", s.handleFormats)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Put("/documents", s.handleSetDocuments)
			r.Get("/deliverable", s.handleDeliverable)
			r.Delete("/", s.handleClearSession)
		})
	})

	return r
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Msg("request")
	})
}

// session looks up a session by ID.
func (s *Server) session(id string) (*convertmd.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}
