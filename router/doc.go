// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the samaj-vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints and wires
the election services (aggregator, results composer, ballot service):

	mux := router.NewRouter(db, cfg, router.Deps{
		Metrics:   rec,
		Presigner: presigner, // nil disables document routes
	})

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Zones (public):

	GET /zones?election=          - Zone registry
	GET /zones/{id}/candidates    - Approved candidates for the ballot
	GET /zones/{id}/turnout       - Turnout counters
	GET /zones/{id}/tally         - Votes per candidate plus NOTA

Voting:

	GET  /voters/{id}/eligibility            - All three elections
	GET  /voters/{id}/eligibility/{election} - One election
	POST /voters/{id}/ballots/{election}     - Submit a ballot

Results:

	GET /results            - Every election
	GET /results/{election} - One election (cached for RESULTS_CACHE_TTL)

Nominations:

	POST /nominations                - Create candidate and nomination
	GET  /nominations/{id}           - Nomination with documents
	POST /nominations/{id}/documents - Presigned upload
	POST /nominations/{id}/submit    - Submit for review

Admin (requires X-Admin-Key):

	GET  /admin/nominations?status=
	POST /admin/nominations/{id}/approve
	POST /admin/nominations/{id}/reject
	GET  /admin/nominations/{id}/documents/{docID}/url
	POST /admin/zones/{id}/freeze
*/
package router
