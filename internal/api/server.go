// Package api exposes chunking, parsing and grammar management over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/kittclouds/poschunk/internal/config"
	"github.com/kittclouds/poschunk/internal/store"
	"github.com/kittclouds/poschunk/pkg/scanner/chunker"
)

// Server is the HTTP API server for poschunk.
type Server struct {
	router  chi.Router
	store   store.Storer
	chunker *chunker.Chunker
	log     zerolog.Logger
	cfg     config.Config
	now     func() int64
}

// NewServer creates and configures the HTTP server.
func NewServer(st store.Storer, log zerolog.Logger, cfg config.Config) *Server {
	s := &Server{
		store:   st,
		chunker: chunker.New(chunker.WithLogger(log)),
		log:     log,
		cfg:     cfg,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer wraps s in an http.Server using the configured address and timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout(),
		WriteTimeout: s.cfg.WriteTimeout(),
	}
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/chunk", s.handleChunk)
		r.Post("/parse", s.handleParse)

		r.Get("/grammars", s.handleListGrammars)
		r.Get("/grammars/{name}", s.handleGetGrammar)
		r.Put("/grammars/{name}", s.handlePutGrammar)
		r.Delete("/grammars/{name}", s.handleDeleteGrammar)
		r.Get("/grammars/{name}/versions", s.handleGrammarVersions)

		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Delete("/documents/{id}", s.handleDeleteDocument)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
