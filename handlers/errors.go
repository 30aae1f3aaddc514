// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/samaj-vote/election"
	"github.com/danielhkuo/samaj-vote/middleware"
)

// domainStatus maps election error codes to HTTP status codes
var domainStatus = map[string]int{
	election.CodeVoterNotFound:            http.StatusNotFound,
	election.CodeZoneNotFound:             http.StatusNotFound,
	election.CodeVoterInactive:            http.StatusForbidden,
	election.CodeNotEligible:              http.StatusForbidden,
	election.CodeAlreadyVoted:             http.StatusConflict,
	election.CodeZoneFrozen:               http.StatusConflict,
	election.CodeInvalidCandidate:         http.StatusUnprocessableEntity,
	election.CodeSeatOverflow:             http.StatusUnprocessableEntity,
	election.CodeDuplicateSelection:       http.StatusUnprocessableEntity,
	election.CodeNOTAConfirmationRequired: http.StatusUnprocessableEntity,
	election.CodeInvalidElection:          http.StatusBadRequest,
}

// writeDomainError writes err with its stable code. Unknown errors are
// logged and reported as a generic 500.
func writeDomainError(w http.ResponseWriter, err error, logMsg string, attrs ...any) {
	code := election.ErrorCode(err)
	status, ok := domainStatus[code]
	if !ok {
		slog.Error(logMsg, append(attrs, "error", err)...)
		middleware.ErrorResponseCode(w, http.StatusInternalServerError, election.CodeInternal, "Database error")
		return
	}

	message := err.Error()
	var shortfall *election.ShortfallError
	if errors.As(err, &shortfall) {
		message = fmt.Sprintf("%d of %d seats have no selection; resubmit with confirm_nota to record them as NOTA",
			shortfall.Missing(), shortfall.Seats)
	}
	middleware.ErrorResponseCode(w, status, code, message)
}
