package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/poiesic/offersearch/core"
)

type recommendRequest struct {
	Query *string `json:"query"`
	Limit int     `json:"limit,omitempty"`
}

type recommendResult struct {
	ID    core.ID `json:"id"`
	Offer string  `json:"offer"`
	Score float64 `json:"score"`
}

type recommendResponse struct {
	Tier      string            `json:"tier"`
	Dimension string            `json:"dimension"`
	Results   []recommendResult `json:"results"`
}

type healthResponse struct {
	Status      string `json:"status"`
	Rows        int    `json:"rows"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"Fetch": "Offering Search"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cat := s.searcher.Catalog()
	if cat == nil || cat.Len() == 0 {
		s.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "no data"})
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Rows:        cat.Len(),
		Fingerprint: strconv.FormatUint(uint64(cat.Fingerprint()), 16),
	})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Query == nil {
		s.writeError(w, http.StatusUnprocessableEntity, "query is required")
		return
	}
	if req.Limit < 0 {
		s.writeError(w, http.StatusUnprocessableEntity, "limit must not be negative")
		return
	}

	ranking, err := s.searcher.Search(r.Context(), *req.Query, req.Limit)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNoData):
			s.writeError(w, http.StatusServiceUnavailable, "no catalog loaded")
		case errors.Is(err, context.Canceled):
			// Client went away; nobody reads the response.
		default:
			s.logger.Error("search failed", "query", *req.Query, "err", err)
			s.writeError(w, http.StatusInternalServerError, "search failed")
		}
		return
	}

	resp := recommendResponse{
		Tier:      ranking.Tier.String(),
		Dimension: ranking.Dimension.String(),
		Results:   make([]recommendResult, len(ranking.Offers)),
	}
	for i, offer := range ranking.Offers {
		resp.Results[i] = recommendResult{ID: offer.Id, Offer: offer.Offer, Score: offer.Score}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("error writing response", "err", err)
	}
}
