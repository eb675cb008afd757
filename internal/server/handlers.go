package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"milepost/internal/journal"
	"milepost/internal/milestone"
)

const (
	MaxPayloadBytes     = 64 * 1024
	DefaultJournalLimit = 20
	MaxJournalLimit     = 200
)

// HandleHealth reports the repository, its current branch, and whether
// that branch is protected from reversion.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	branch, err := s.Repo.CurrentBranch(r.Context())
	if err != nil {
		s.Logger.Error("Failed to read branch for health check", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to read branch"})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"repo":      s.Repo.Dir(),
		"branch":    branch,
		"protected": s.Cfg.IsProtectedBranch(branch),
	})
}

// HandleListMilestones returns the milestones visible on the current
// branch, newest first. Listing failures surface as an empty list.
func (s *Server) HandleListMilestones(w http.ResponseWriter, r *http.Request) {
	branch, err := s.Repo.CurrentBranch(r.Context())
	if err != nil {
		s.Logger.Error("Failed to read branch for listing", "error", err)
		branch = ""
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"branch":     branch,
		"milestones": s.Service.List(r.Context()),
	})
}

type createMilestoneRequest struct {
	Note string `json:"note"`
}

// HandleCreateMilestone creates a milestone from a JSON note. A save
// already in flight is rejected rather than queued.
func (s *Server) HandleCreateMilestone(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		s.respondJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "Invalid content type"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxPayloadBytes))
	if err != nil {
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to read payload"})
		return
	}

	var req createMilestoneRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON payload"})
			return
		}
	}

	guard := s.Service.Guard()
	if !guard.TryAcquire() {
		s.Logger.Warn("Save already in progress, rejecting")
		s.respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Operation already in progress"})
		return
	}
	defer guard.Release()

	result, err := s.Service.Save(r.Context(), req.Note)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, milestone.ErrNotRepository) {
			status = http.StatusConflict
		}
		s.Logger.Error("Save failed", "error", err)
		s.respondJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	s.respondJSON(w, http.StatusCreated, result)
}

// HandleJournal returns recent recorded operations, newest first.
func (s *Server) HandleJournal(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Journal not available"})
		return
	}

	limit := DefaultJournalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxJournalLimit {
			s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	entries, err := s.Journal.Recent(r.Context(), limit)
	if err != nil {
		s.Logger.Error("Failed to query journal", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to query journal"})
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

// respondJSON writes a JSON response with the given status.
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.Logger.Error("Failed to encode JSON response", "error", err)
	}
}
