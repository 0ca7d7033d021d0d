package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	convertmd "github.com/nicholasgasior/convertmd-go"
)

type errorResponse struct {
	Error    string              `json:"error"`
	Failures []convertmd.Failure `json:"failures,omitempty"`
}

type sessionResponse struct {
	ID string `json:"id"`
}

type batchResponse struct {
	Documents   int                 `json:"documents"`
	Converted   int                 `json:"converted"`
	Deliverable string              `json:"deliverable"`
	Filename    string              `json:"filename,omitempty"`
	Failures    []convertmd.Failure `json:"failures,omitempty"`
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"formats": convertmd.Formats()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = convertmd.NewSession(s.converter,
		convertmd.WithWorkers(s.cfg.Convert.Workers),
		convertmd.WithLogger(s.log.With().Str("session", id).Logger()),
	)
	s.mu.Unlock()

	s.log.Info().Str("session", id).Msg("session created")
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id})
}

// handleSetDocuments receives the full current document set as a multipart
// form and runs the reconcile-convert-package cycle.
func (s *Server) handleSetDocuments(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown session"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("parse upload: %v", err)})
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	var docs []convertmd.Document
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("open %q: %v", header.Filename, err)})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("read %q: %v", header.Filename, err)})
			return
		}
		docs = append(docs, convertmd.Document{Name: header.Filename, Data: data})
	}

	deliverable, err := sess.SetDocuments(r.Context(), docs)
	if err != nil {
		status := http.StatusInternalServerError
		if convertmd.IsDuplicateName(err) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	resp := batchResponse{
		Documents:   len(docs),
		Converted:   len(docs) - len(deliverable.Failures),
		Deliverable: kindString(deliverable.Kind),
		Filename:    deliverable.Filename,
		Failures:    deliverable.Failures,
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeliverable serves the current artifact: the markdown text for a
// single document, the ZIP archive for a batch.
func (s *Server) handleDeliverable(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown session"})
		return
	}

	deliverable, err := sess.Deliverable()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	switch deliverable.Kind {
	case convertmd.DeliverableMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", deliverable.Filename))
		w.Write(deliverable.Content) //nolint:errcheck
	case convertmd.DeliverableArchive:
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", deliverable.Filename))
		w.Write(deliverable.Content) //nolint:errcheck
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no output", Failures: deliverable.Failures})
	}
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown session"})
		return
	}
	sess.Clear()
	s.log.Info().Str("session", id).Msg("session cleared")
	w.WriteHeader(http.StatusNoContent)
}

func kindString(k convertmd.DeliverableKind) string {
	switch k {
	case convertmd.DeliverableMarkdown:
		return "markdown"
	case convertmd.DeliverableArchive:
		return "archive"
	default:
		return "none"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
