// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/samaj-vote/cliparse"
	"github.com/danielhkuo/samaj-vote/election"
	"github.com/danielhkuo/samaj-vote/handlers"
	"github.com/danielhkuo/samaj-vote/metrics"
	"github.com/danielhkuo/samaj-vote/middleware"
	"github.com/danielhkuo/samaj-vote/storage"
)

// Deps are the optional collaborators of the router. A nil Presigner
// disables document routes (503); a nil Metrics records nothing.
type Deps struct {
	Metrics   *metrics.Recorder
	Presigner storage.Presigner
}

func NewRouter(db *sql.DB, cfg cliparse.Config, deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Election services
	agg := election.NewAggregator(db)
	composer := election.NewComposer(db, agg, cfg.ResultsCacheTTL, deps.Metrics)
	ballots := election.NewBallotService(db, composer, deps.Metrics)

	// Initialize handlers
	zoneHandler := handlers.NewZoneHandler(db)
	votingHandler := handlers.NewVotingHandler(db, cfg, ballots)
	resultsHandler := handlers.NewResultsHandler(agg, composer)
	nominationHandler := handlers.NewNominationHandler(db, cfg, deps.Presigner)
	adminHandler := handlers.NewAdminHandler(db, cfg, deps.Presigner, composer)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.AdminKey, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	// Zones, turnout and tallies (public)
	mux.HandleFunc("GET /zones", middleware.WithLogging(zoneHandler.ListZones))
	mux.HandleFunc("GET /zones/{id}/candidates", middleware.WithLogging(zoneHandler.ListCandidates))
	mux.HandleFunc("GET /zones/{id}/turnout", middleware.WithLogging(resultsHandler.GetTurnout))
	mux.HandleFunc("GET /zones/{id}/tally", middleware.WithLogging(resultsHandler.GetTally))

	// Voting
	mux.HandleFunc("GET /voters/{id}/eligibility", middleware.WithLogging(votingHandler.GetAllEligibility))
	mux.HandleFunc("GET /voters/{id}/eligibility/{election}", middleware.WithLogging(votingHandler.GetEligibility))
	mux.HandleFunc("POST /voters/{id}/ballots/{election}", middleware.WithLogging(votingHandler.SubmitBallot))

	// Results
	mux.HandleFunc("GET /results", middleware.WithLogging(resultsHandler.GetAllResults))
	mux.HandleFunc("GET /results/{election}", middleware.WithLogging(resultsHandler.GetResults))

	// Nominations (candidate side)
	mux.HandleFunc("POST /nominations", middleware.WithLogging(nominationHandler.CreateNomination))
	mux.HandleFunc("GET /nominations/{id}", middleware.WithLogging(nominationHandler.GetNomination))
	mux.HandleFunc("POST /nominations/{id}/documents", middleware.WithLogging(nominationHandler.RequestUpload))
	mux.HandleFunc("POST /nominations/{id}/submit", middleware.WithLogging(nominationHandler.SubmitNomination))

	// Admin operations
	mux.HandleFunc("GET /admin/nominations", admin(adminHandler.ListNominations))
	mux.HandleFunc("POST /admin/nominations/{id}/approve", admin(adminHandler.ApproveNomination))
	mux.HandleFunc("POST /admin/nominations/{id}/reject", admin(adminHandler.RejectNomination))
	mux.HandleFunc("GET /admin/nominations/{id}/documents/{docID}/url", admin(adminHandler.GetDocumentURL))
	mux.HandleFunc("POST /admin/zones/{id}/freeze", admin(adminHandler.FreezeZone))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("samaj-vote API v1"))
	})

	return mux
}
