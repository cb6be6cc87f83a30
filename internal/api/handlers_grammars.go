package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kittclouds/poschunk/internal/store"
	"github.com/kittclouds/poschunk/pkg/grammar"
)

// handleListGrammars lists the current version of every grammar.
func (s *Server) handleListGrammars(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListGrammars()
	if err != nil {
		jsonError(w, "failed to list grammars: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []*store.GrammarRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"grammars": recs})
}

// handleGetGrammar returns the current grammar, or ?version=N.
func (s *Server) handleGetGrammar(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var (
		rec *store.GrammarRecord
		err error
	)
	if v := r.URL.Query().Get("version"); v != "" {
		version, convErr := strconv.Atoi(v)
		if convErr != nil || version < 1 {
			jsonError(w, "version must be a positive integer", http.StatusBadRequest)
			return
		}
		rec, err = s.store.GetGrammarVersion(name, version)
	} else {
		rec, err = s.store.GetGrammar(name)
	}
	if err != nil {
		jsonError(w, "failed to load grammar: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if rec == nil {
		jsonError(w, "grammar not found: "+name, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handlePutGrammar creates a grammar or adds a new version of it. The URL
// name wins over any name in the body; ?reason= is kept with the version.
func (s *Server) handlePutGrammar(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var g grammar.Grammar
	if !s.decode(w, r, &g) {
		return
	}
	g.Name = name
	if err := g.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := store.NewGrammarRecord(&g, s.now())
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.store.UpdateGrammar(rec, r.URL.Query().Get("reason")); err != nil {
		jsonError(w, "failed to save grammar: "+err.Error(), http.StatusInternalServerError)
		return
	}

	current, err := s.store.GetGrammar(name)
	if err != nil || current == nil {
		jsonError(w, "failed to reload grammar", http.StatusInternalServerError)
		return
	}
	s.log.Info().Str("grammar", name).Int("version", current.Version).Msg("grammar saved")
	writeJSON(w, http.StatusOK, current)
}

// handleDeleteGrammar removes a grammar and its history.
func (s *Server) handleDeleteGrammar(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rec, err := s.store.GetGrammar(name)
	if err != nil {
		jsonError(w, "failed to load grammar: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if rec == nil {
		jsonError(w, "grammar not found: "+name, http.StatusNotFound)
		return
	}
	if err := s.store.DeleteGrammar(name); err != nil {
		jsonError(w, "failed to delete grammar: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGrammarVersions lists every version of a grammar, newest first.
func (s *Server) handleGrammarVersions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	versions, err := s.store.ListGrammarVersions(name)
	if err != nil {
		jsonError(w, "failed to list versions: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(versions) == 0 {
		jsonError(w, "grammar not found: "+name, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}
