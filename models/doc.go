// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Elections

Three independent elections run side by side, each with its own zones:

	ElectionYuvaPankh = "yuva_pankh"
	ElectionKarobari  = "karobari"
	ElectionTrustee   = "trustee"

A voter holds at most one zone assignment and one has-voted flag per
election (see Voter.ZoneFor and Voter.HasVoted).

# Request Types

  - SubmitBallotRequest: zone_id (optional), selections, confirm_nota
  - CreateNominationRequest: name, zone_id, position, experience, education
  - RequestUploadRequest: kind, file_name, content_type, size_bytes
  - RejectNominationRequest: reason
  - FreezeZoneRequest: frozen (required)

# Response Types

  - SubmitBallotResponse: ballot_id, ballot_lines, actual/NOTA counts
  - VoterEligibilityResponse: per-election Eligibility
  - PresignedURLResponse: url, method, headers, expires_at
  - ElectionResults / AllResults: per-zone RegionTurnout plus totals
  - ErrorResponse: error, message, code

# Domain Types

  - Zone: electoral subdivision with a fixed seat count
  - Voter: zone assignments and has-voted flags per election
  - Candidate: nominee; only approved candidates receive votes
  - Nomination, NominationDocument: review workflow and uploaded files
  - VoteLine: one immutable ballot line with a typed Target
  - RegionTurnout, CandidateTally: aggregated counts

# Ballot Targets

A ballot line counts toward either a candidate or NOTA:

	CandidateTarget(id) // {"kind":"candidate","candidate_id":id}
	NOTATarget()        // {"kind":"nota"}

NOTA lines are generated by the server; clients never send NOTA ids.

# Profiles

Candidate experience and education arrive either as free text or as an
object of labelled fields. Profile decodes both into a tagged variant
(ProfileRawText or ProfileStructured) and stores itself as JSON text.
*/
package models
