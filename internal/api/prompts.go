package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/versecraft/versecraft/internal/prompts"
)

// SavePromptRequest is the request body for saving a prompt version.
// ExpectedVersion enables optimistic concurrency: a stale value makes
// the save fail with 409 instead of clobbering a concurrent edit.
type SavePromptRequest struct {
	Content         string `json:"content"`
	Editor          string `json:"editor"`
	ExpectedVersion *int   `json:"expected_version,omitempty"`
}

// RollbackRequest is the request body for rolling back a prompt.
type RollbackRequest struct {
	Version int    `json:"version"`
	Editor  string `json:"editor"`
}

// PromptResponse is the API response for a prompt record.
type PromptResponse struct {
	UseCase string `json:"use_case"`
	Content string `json:"content"`
	Version int    `json:"version"`
	Editor  string `json:"editor,omitempty"`
}

func (s *Server) getPrompt(w http.ResponseWriter, r *http.Request) {
	useCase, ok := parseUseCaseParam(w, r)
	if !ok {
		return
	}

	rec, err := s.prompts.ActiveRecord(r.Context(), useCase)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load prompt")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "no prompt saved for this use case")
		return
	}

	writeJSON(w, http.StatusOK, PromptResponse{
		UseCase: string(rec.UseCase),
		Content: rec.Content,
		Version: rec.Version,
		Editor:  rec.Editor,
	})
}

func (s *Server) savePrompt(w http.ResponseWriter, r *http.Request) {
	useCase, ok := parseUseCaseParam(w, r)
	if !ok {
		return
	}

	var req SavePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	rec, err := s.prompts.Save(r.Context(), useCase, req.Content, req.Editor, req.ExpectedVersion)
	if err != nil {
		if prompts.IsConflict(err) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save prompt")
		return
	}

	writeJSON(w, http.StatusOK, PromptResponse{
		UseCase: string(rec.UseCase),
		Content: rec.Content,
		Version: rec.Version,
		Editor:  rec.Editor,
	})
}

func (s *Server) rollbackPrompt(w http.ResponseWriter, r *http.Request) {
	useCase, ok := parseUseCaseParam(w, r)
	if !ok {
		return
	}

	var req RollbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.prompts.Rollback(r.Context(), useCase, req.Version, req.Editor)
	if err != nil {
		if errors.Is(err, prompts.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to roll back prompt")
		return
	}

	writeJSON(w, http.StatusOK, PromptResponse{
		UseCase: string(rec.UseCase),
		Content: rec.Content,
		Version: rec.Version,
		Editor:  rec.Editor,
	})
}

func (s *Server) promptHistory(w http.ResponseWriter, r *http.Request) {
	useCase, ok := parseUseCaseParam(w, r)
	if !ok {
		return
	}

	snaps, err := s.prompts.History(r.Context(), useCase, queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}

func (s *Server) promptAudit(w http.ResponseWriter, r *http.Request) {
	useCase, ok := parseUseCaseParam(w, r)
	if !ok {
		return
	}

	entries, err := s.prompts.Audit(r.Context(), useCase, queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load audit log")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func parseUseCaseParam(w http.ResponseWriter, r *http.Request) (prompts.UseCase, bool) {
	useCase, err := prompts.ParseUseCase(chi.URLParam(r, "useCase"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return useCase, true
}

func queryLimit(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
