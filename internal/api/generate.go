package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/versecraft/versecraft/internal/generation"
	"github.com/versecraft/versecraft/internal/provider"
)

// GenerateRequest is the request body for content generation.
type GenerateRequest struct {
	Category    string `json:"category"`
	ContentType string `json:"content_type"`
	Theme       string `json:"theme,omitempty"`
	Tone        string `json:"tone,omitempty"`
	Quantity    int    `json:"quantity"`
	WritingMode string `json:"writing_mode"`
	Provider    string `json:"provider,omitempty"`
}

// GenerateResponse is the API response for content generation.
type GenerateResponse struct {
	Items []generation.Item `json:"items"`
}

// ContentRequest is the request body for source lookup and analysis.
type ContentRequest struct {
	Content  string `json:"content"`
	Provider string `json:"provider,omitempty"`
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	forced, _ := provider.Parse(req.Provider)

	// Generation never hard-fails on provider errors; the service
	// substitutes static content after the fallback chain.
	items, err := s.generator.Generate(r.Context(), generation.Params{
		Category:    req.Category,
		ContentType: generation.ContentType(req.ContentType),
		Theme:       req.Theme,
		Tone:        req.Tone,
		Quantity:    req.Quantity,
		WritingMode: generation.WritingMode(req.WritingMode),
		Provider:    forced,
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{Items: items})
}

func (s *Server) findSource(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeContentRequest(w, r)
	if !ok {
		return
	}

	forced, _ := provider.Parse(req.Provider)
	res, err := s.generator.FindSource(r.Context(), req.Content, forced)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "source lookup unavailable")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) explain(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeContentRequest(w, r)
	if !ok {
		return
	}

	forced, _ := provider.Parse(req.Provider)
	analysis, err := s.generator.Explain(r.Context(), req.Content, forced)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "explanation unavailable")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeContentRequest(w, r)
	if !ok {
		return
	}

	forced, _ := provider.Parse(req.Provider)
	analysis, err := s.generator.Analyze(r.Context(), req.Content, forced)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "analysis unavailable")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func decodeContentRequest(w http.ResponseWriter, r *http.Request) (ContentRequest, bool) {
	var req ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return req, false
	}
	return req, true
}
