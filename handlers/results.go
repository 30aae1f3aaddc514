// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/samaj-vote/election"
	"github.com/danielhkuo/samaj-vote/middleware"
)

type ResultsHandler struct {
	agg      *election.Aggregator
	composer *election.Composer
}

func NewResultsHandler(agg *election.Aggregator, composer *election.Composer) *ResultsHandler {
	return &ResultsHandler{agg: agg, composer: composer}
}

// GetTurnout handles GET /zones/{id}/turnout
func (h *ResultsHandler) GetTurnout(w http.ResponseWriter, r *http.Request) {
	zoneID := r.PathValue("id")
	if zoneID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "zone_id is required")
		return
	}

	turnout, err := h.agg.ZoneTurnout(r.Context(), zoneID)
	if err != nil {
		writeDomainError(w, err, "failed to compute turnout", "zone_id", zoneID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, turnout)
}

// GetTally handles GET /zones/{id}/tally
func (h *ResultsHandler) GetTally(w http.ResponseWriter, r *http.Request) {
	zoneID := r.PathValue("id")
	if zoneID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "zone_id is required")
		return
	}

	tally, err := h.agg.ZoneTally(r.Context(), zoneID)
	if err != nil {
		writeDomainError(w, err, "failed to compute tally", "zone_id", zoneID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, tally)
}

// GetResults handles GET /results/{election}
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	e, ok := parseElection(w, r.PathValue("election"))
	if !ok {
		return
	}

	results, err := h.composer.Compose(r.Context(), e)
	if err != nil {
		writeDomainError(w, err, "failed to compose results", "election", e)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}

// GetAllResults handles GET /results
func (h *ResultsHandler) GetAllResults(w http.ResponseWriter, r *http.Request) {
	all, err := h.composer.ComposeAll(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to compose results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, all)
}
