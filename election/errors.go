// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
)

var (
	ErrVoterNotFound            = errors.New("voter not found")
	ErrVoterInactive            = errors.New("voter is not active")
	ErrAlreadyVoted             = errors.New("voter has already voted in this election")
	ErrNotEligible              = errors.New("voter is not eligible for this election")
	ErrZoneNotFound             = errors.New("zone not found")
	ErrZoneFrozen               = errors.New("voting in this zone is closed")
	ErrInvalidCandidate         = errors.New("invalid candidate selection")
	ErrSeatOverflow             = errors.New("more selections than seats")
	ErrDuplicateSelection       = errors.New("candidate selected more than once")
	ErrNOTAConfirmationRequired = errors.New("unfilled seats require NOTA confirmation")
	ErrInvalidElection          = errors.New("invalid election type")
)

// Stable error codes returned to API clients
const (
	CodeVoterNotFound            = "VoterNotFound"
	CodeVoterInactive            = "VoterInactive"
	CodeAlreadyVoted             = "AlreadyVoted"
	CodeNotEligible              = "NotEligible"
	CodeZoneNotFound             = "ZoneNotFound"
	CodeZoneFrozen               = "ZoneFrozen"
	CodeInvalidCandidate         = "InvalidCandidate"
	CodeSeatOverflow             = "SeatOverflow"
	CodeDuplicateSelection       = "DuplicateSelection"
	CodeNOTAConfirmationRequired = "NotaConfirmationRequired"
	CodeInvalidElection          = "InvalidElection"
	CodeInternal                 = "Internal"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrVoterNotFound, CodeVoterNotFound},
	{ErrVoterInactive, CodeVoterInactive},
	{ErrAlreadyVoted, CodeAlreadyVoted},
	{ErrNotEligible, CodeNotEligible},
	{ErrZoneNotFound, CodeZoneNotFound},
	{ErrZoneFrozen, CodeZoneFrozen},
	{ErrInvalidCandidate, CodeInvalidCandidate},
	{ErrSeatOverflow, CodeSeatOverflow},
	{ErrDuplicateSelection, CodeDuplicateSelection},
	{ErrNOTAConfirmationRequired, CodeNOTAConfirmationRequired},
	{ErrInvalidElection, CodeInvalidElection},
}

// ErrorCode maps an error to its stable code. Anything that is not a
// domain error is reported as Internal.
func ErrorCode(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// ShortfallError is returned when a ballot leaves seats unfilled and the
// caller has not confirmed that they should be recorded as NOTA.
type ShortfallError struct {
	Seats    int
	Selected int
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("%s: %d of %d seats unfilled", ErrNOTAConfirmationRequired, e.Missing(), e.Seats)
}

func (e *ShortfallError) Unwrap() error { return ErrNOTAConfirmationRequired }

// Missing is the number of NOTA lines a confirmation would add
func (e *ShortfallError) Missing() int { return e.Seats - e.Selected }
