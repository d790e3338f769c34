package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Keys holding provider credentials are masked in responses so the
// admin UI can show whether a key is set without exposing it.
func masked(key, value string) string {
	if !strings.HasSuffix(key, "_api_key") || value == "" {
		return value
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	values, err := s.settings.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = masked(k, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": out})
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, "no settings provided")
		return
	}
	for k := range req {
		if strings.TrimSpace(k) == "" {
			writeError(w, http.StatusBadRequest, "setting keys must not be empty")
			return
		}
	}

	if err := s.settings.Update(r.Context(), req); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": len(req)})
}
