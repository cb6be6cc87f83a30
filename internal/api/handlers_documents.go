package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kittclouds/poschunk/internal/store"
)

// handleListDocuments lists stored documents, optionally for one ?grammar=.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.URL.Query().Get("grammar"))
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []*store.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.store.GetDocument(id)
	if err != nil {
		jsonError(w, "failed to load document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if doc == nil {
		jsonError(w, "document not found: "+id, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.store.GetDocument(id)
	if err != nil {
		jsonError(w, "failed to load document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if doc == nil {
		jsonError(w, "document not found: "+id, http.StatusNotFound)
		return
	}
	if err := s.store.DeleteDocument(id); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
