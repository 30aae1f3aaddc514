// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the samaj-vote API.

# Handler Types

Each handler is a struct with database and config dependencies, plus the
election services it drives:

  - ZoneHandler: zone listing and ballot candidates
  - VotingHandler: eligibility and ballot submission
  - ResultsHandler: turnout, tallies and composed results
  - NominationHandler: candidate nominations and document uploads
  - AdminHandler: nomination review and zone freezing

	votingHandler := handlers.NewVotingHandler(db, cfg, ballots)

# Ballots

	POST /voters/{id}/ballots/{election}
	{"selections": ["cand-1"], "confirm_nota": true}

A ballot always records exactly seat_count lines. When fewer candidates
are selected than there are seats, the first attempt without confirm_nota
returns 422 with code NotaConfirmationRequired and nothing is stored.

# Error Codes

Domain failures carry a stable code in the error body:

	404 VoterNotFound, ZoneNotFound
	403 VoterInactive, NotEligible
	409 AlreadyVoted, ZoneFrozen
	422 InvalidCandidate, SeatOverflow, DuplicateSelection, NotaConfirmationRequired
	400 InvalidElection

# Nomination Lifecycle

	POST /nominations                  → pending
	POST /nominations/{id}/documents   → presigned PUT (pending only)
	POST /nominations/{id}/submit      → submitted (needs ≥ 1 document)
	POST /admin/nominations/{id}/approve → approved
	POST /admin/nominations/{id}/reject  → rejected (reason required)

The candidate row mirrors the nomination status. Only approved candidates
appear on ballots. Document routes return 503 when no bucket is
configured.
*/
package handlers
