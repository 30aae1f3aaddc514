// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/danielhkuo/samaj-vote/auth"
	"github.com/danielhkuo/samaj-vote/cliparse"
	"github.com/danielhkuo/samaj-vote/election"
	"github.com/danielhkuo/samaj-vote/middleware"
	"github.com/danielhkuo/samaj-vote/models"
)

// maxUserAgent bounds what is stored alongside a ballot
const maxUserAgent = 256

type VotingHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	ballots *election.BallotService
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config, ballots *election.BallotService) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg, ballots: ballots}
}

// GetEligibility handles GET /voters/{id}/eligibility/{election}
func (h *VotingHandler) GetEligibility(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("id")
	if voterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id is required")
		return
	}
	e, ok := parseElection(w, r.PathValue("election"))
	if !ok {
		return
	}

	result, err := election.CheckEligibility(r.Context(), h.db, voterID, e)
	if err != nil {
		writeDomainError(w, err, "failed to check eligibility", "voter_id", voterID, "election", e)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, result)
}

// GetAllEligibility handles GET /voters/{id}/eligibility
func (h *VotingHandler) GetAllEligibility(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("id")
	if voterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id is required")
		return
	}

	results, err := election.CheckAllEligibility(r.Context(), h.db, voterID)
	if err != nil {
		writeDomainError(w, err, "failed to check eligibility", "voter_id", voterID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoterEligibilityResponse{
		VoterID:   voterID,
		Elections: results,
	})
}

// SubmitBallot handles POST /voters/{id}/ballots/{election}
func (h *VotingHandler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("id")
	if voterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id is required")
		return
	}
	e, ok := parseElection(w, r.PathValue("election"))
	if !ok {
		return
	}

	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	userAgent := truncateUTF8(r.UserAgent(), maxUserAgent)

	receipt, err := h.ballots.SubmitBallot(r.Context(), election.BallotRequest{
		VoterID:      voterID,
		ElectionType: e,
		ZoneID:       req.ZoneID,
		Selections:   req.Selections,
		ConfirmNOTA:  req.ConfirmNOTA,
		IPHash:       auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt),
		UserAgent:    userAgent,
	})
	if err != nil {
		writeDomainError(w, err, "failed to submit ballot", "voter_id", voterID, "election", e)
		return
	}

	message := fmt.Sprintf("Ballot recorded for %s", e.DisplayName())
	if receipt.NOTAVotes > 0 {
		message = fmt.Sprintf("Ballot recorded for %s with %d NOTA", e.DisplayName(), receipt.NOTAVotes)
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitBallotResponse{
		BallotID:     receipt.BallotID,
		ElectionType: string(receipt.ElectionType),
		ZoneID:       receipt.ZoneID,
		ActualVotes:  receipt.ActualVotes,
		NOTAVotes:    receipt.NOTAVotes,
		Lines:        receipt.Lines,
		Message:      message,
	})
}

// truncateUTF8 drops invalid bytes and cuts s to at most n bytes without
// splitting a rune
func truncateUTF8(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
