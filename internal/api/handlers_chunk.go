package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/kittclouds/poschunk/internal/store"
	"github.com/kittclouds/poschunk/pkg/grammar"
	"github.com/kittclouds/poschunk/pkg/scanner/chunker"
	"github.com/kittclouds/poschunk/pkg/scanner/tree"
)

// inlineGrammar names documents chunked with rules sent in the request.
const inlineGrammar = "inline"

type chunkRequest struct {
	Text    *string            `json:"text"`
	Grammar string             `json:"grammar,omitempty"`
	Rules   []grammar.RuleSpec `json:"rules,omitempty"`
	Store   bool               `json:"store,omitempty"`
}

type chunkResponse struct {
	Chunked        string `json:"chunked"`
	Grammar        string `json:"grammar"`
	GrammarVersion int    `json:"grammarVersion,omitempty"`
	DocumentID     string `json:"documentId,omitempty"`
}

// handleChunk applies inline rules, or a stored grammar, to tagged text.
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	var req chunkRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Text == nil {
		jsonError(w, chunker.ErrInvalidArgument.Error()+": text is required", http.StatusBadRequest)
		return
	}

	resp := chunkResponse{}
	if len(req.Rules) > 0 {
		g := &grammar.Grammar{Name: inlineGrammar, Rules: req.Rules}
		rules, err := g.ChunkRules()
		if err != nil {
			s.chunkError(w, err)
			return
		}
		chunked, err := s.chunker.Chunk(*req.Text, rules)
		if err != nil {
			s.chunkError(w, err)
			return
		}
		resp.Chunked = chunked
		resp.Grammar = inlineGrammar
	} else {
		name := req.Grammar
		if name == "" {
			name = s.cfg.DefaultGrammar
		}
		rec, err := s.store.GetGrammar(name)
		if err != nil {
			jsonError(w, "failed to load grammar: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if rec == nil {
			jsonError(w, "grammar not found: "+name, http.StatusNotFound)
			return
		}
		g, err := rec.Grammar()
		if err != nil {
			s.chunkError(w, err)
			return
		}
		cascade, err := g.Compile(s.chunker)
		if err != nil {
			s.chunkError(w, err)
			return
		}
		resp.Chunked = cascade.Apply(*req.Text)
		resp.Grammar = rec.Name
		resp.GrammarVersion = rec.Version
	}

	if req.Store {
		doc := &store.Document{
			ID:             uuid.NewString(),
			GrammarName:    resp.Grammar,
			GrammarVersion: resp.GrammarVersion,
			TaggedText:     *req.Text,
			ChunkedText:    resp.Chunked,
			CreatedAt:      s.now(),
		}
		if err := s.store.SaveDocument(doc); err != nil {
			jsonError(w, "failed to save document: "+err.Error(), http.StatusInternalServerError)
			return
		}
		resp.DocumentID = doc.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

type parseRequest struct {
	Text *string `json:"text"`
}

// handleParse builds the bracket tree of chunked text. Blank text yields a
// null tree.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Text == nil {
		jsonError(w, tree.ErrInvalidArgument.Error()+": text is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tree": tree.Parse(*req.Text)})
}

func (s *Server) chunkError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chunker.ErrInvalidArgument),
		errors.Is(err, chunker.ErrInvalidPattern),
		errors.Is(err, grammar.ErrInvalidGrammar):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error().Err(err).Msg("chunk failed")
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

// decode reads a size-limited JSON body into v, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
