package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ideaforge/internal/core"
	"ideaforge/internal/render"
	"ideaforge/internal/store"
)

// HealthResponse is the /health payload
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// IdeasResponse is the /api/ideas payload
type IdeasResponse struct {
	Count int           `json:"count"`
	Ideas []core.Record `json:"ideas"`
}

// ErrorResponse is returned for every non-2xx JSON reply
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "ok"}

	if _, err := s.records.List(); err != nil {
		checks["store"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
		return
	}

	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Checks: checks})
}

// handleListIdeas handles GET /api/ideas; ?status=rejected lists the rejected log
func (s *Server) handleListIdeas(w http.ResponseWriter, r *http.Request) {
	list := s.records.List
	if r.URL.Query().Get("status") == core.StatusRejected {
		list = s.records.ListRejected
	}

	records, err := list()
	if err != nil {
		s.log.Error("Failed to list ideas", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list ideas")
		return
	}
	if records == nil {
		records = []core.Record{}
	}

	s.respondJSON(w, http.StatusOK, IdeasResponse{Count: len(records), Ideas: records})
}

// handleGetIdea handles GET /api/ideas/{fingerprint}
func (s *Server) handleGetIdea(w http.ResponseWriter, r *http.Request) {
	fp := chi.URLParam(r, "fingerprint")

	rec, err := s.records.Find(fp)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "idea not found")
		return
	}
	if err != nil {
		s.log.Error("Failed to find idea", "fingerprint", fp, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load idea")
		return
	}

	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	snap, err := s.knowledge.Load()
	if err != nil {
		s.log.Error("Failed to load knowledge snapshot", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load knowledge")
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.List()
	if err != nil {
		s.log.Error("Failed to list ideas", "error", err)
		http.Error(w, "failed to list ideas", http.StatusInternalServerError)
		return
	}
	snap, err := s.knowledge.Load()
	if err != nil {
		s.log.Warn("Knowledge snapshot unavailable", "error", err)
	}

	page, err := render.DashboardHTML(records, snap, "/ideas/")
	if err != nil {
		s.log.Error("Failed to render dashboard", "error", err)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	s.respondHTML(w, page)
}

// handleLandingPage handles GET /ideas/{slug}, where slug is render.RecordSlug
func (s *Server) handleLandingPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	records, err := s.records.List()
	if err != nil {
		s.log.Error("Failed to list ideas", "error", err)
		http.Error(w, "failed to list ideas", http.StatusInternalServerError)
		return
	}

	for _, rec := range records {
		if render.RecordSlug(rec) != slug {
			continue
		}
		page, err := render.LandingHTML(rec)
		if err != nil {
			s.log.Error("Failed to render landing page", "slug", slug, "error", err)
			http.Error(w, "failed to render page", http.StatusInternalServerError)
			return
		}
		s.respondHTML(w, page)
		return
	}

	http.NotFound(w, r)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}

func (s *Server) respondHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		s.log.Debug("Failed to write HTML response", "error", err)
	}
}
