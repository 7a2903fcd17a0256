package http

import (
	"net/http"
	"strconv"

	"flathub/internal/core"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.household.DashboardStats(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleGetActivities(w http.ResponseWriter, r *http.Request) {
	limit := s.feedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	activities, err := s.household.Activities(r.Context(), limit)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if activities == nil {
		activities = []core.Activity{}
	}
	s.respondJSON(w, r, http.StatusOK, activities)
}
