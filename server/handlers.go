package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/poiesic/medirag/core"
	"github.com/poiesic/medirag/retrieval"
)

const maxRequestBytes = 1 << 20

type askRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type askResponse struct {
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	RawContext string   `json:"raw_context"`
	Error      string   `json:"error,omitempty"`
}

type reloadResponse struct {
	Status string `json:"status"`
	Chunks int    `json:"chunks"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.K < 0 {
		jsonError(w, "k must not be negative", http.StatusBadRequest)
		return
	}

	result, err := s.orchestrator.Ask(r.Context(), req.Query, req.K)
	switch {
	case err == nil:
	case errors.Is(err, retrieval.ErrEmptyQuery):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, core.ErrIndexUnavailable):
		s.log.Error("query failed", "err", err)
		jsonError(w, "vector index unavailable", http.StatusServiceUnavailable)
		return
	case errors.Is(err, core.ErrGeneration) && result != nil:
		// degraded answer, still a usable response
	default:
		s.log.Error("query failed", "err", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := askResponse{
		Answer:     result.Answer,
		Sources:    result.Sources,
		RawContext: result.RawContext,
	}
	if resp.Sources == nil {
		resp.Sources = []string{}
	}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		jsonError(w, "reload not supported", http.StatusNotImplemented)
		return
	}
	ix, err := s.cache.Reload(r.Context())
	if err != nil {
		s.log.Error("index reload failed", "err", err)
		jsonError(w, "vector index unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Status: "reloaded", Chunks: ix.Len()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
