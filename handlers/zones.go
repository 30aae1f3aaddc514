// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/samaj-vote/election"
	"github.com/danielhkuo/samaj-vote/middleware"
	"github.com/danielhkuo/samaj-vote/models"
)

type ZoneHandler struct {
	db *sql.DB
}

func NewZoneHandler(db *sql.DB) *ZoneHandler {
	return &ZoneHandler{db: db}
}

// ListZones handles GET /zones?election=
func (h *ZoneHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	var e models.ElectionType
	if raw := r.URL.Query().Get("election"); raw != "" {
		parsed, ok := parseElection(w, raw)
		if !ok {
			return
		}
		e = parsed
	}

	zones, err := election.ListZones(r.Context(), h.db, e)
	if err != nil {
		writeDomainError(w, err, "failed to list zones")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, zones)
}

// ListCandidates handles GET /zones/{id}/candidates
// Only approved candidates appear on the ballot
func (h *ZoneHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	zoneID := r.PathValue("id")
	if zoneID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "zone_id is required")
		return
	}

	if _, err := election.GetZone(r.Context(), h.db, zoneID); err != nil {
		writeDomainError(w, err, "failed to query zone", "zone_id", zoneID)
		return
	}

	candidates, err := election.ApprovedCandidates(r.Context(), h.db, zoneID)
	if err != nil {
		writeDomainError(w, err, "failed to query candidates", "zone_id", zoneID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// parseElection validates an election path or query value, writing a 400
// when it is unknown
func parseElection(w http.ResponseWriter, raw string) (models.ElectionType, bool) {
	e, err := models.ParseElectionType(raw)
	if err != nil {
		middleware.ErrorResponseCode(w, http.StatusBadRequest, election.CodeInvalidElection, err.Error())
		return "", false
	}
	return e, true
}
