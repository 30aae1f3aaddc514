// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Ballots(t *testing.T) {
	r := New()
	r.BallotAccepted("karobari", 1, 2)
	r.BallotAccepted("karobari", 3, 0)
	r.BallotRejected("karobari", "AlreadyVoted")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.ballots.WithLabelValues("karobari", OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ballots.WithLabelValues("karobari", "AlreadyVoted")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.voteLines.WithLabelValues("karobari", KindCandidate)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.voteLines.WithLabelValues("karobari", KindNOTA)))
}

func TestRecorder_Cache(t *testing.T) {
	r := New()
	r.ResultsCacheLookup("trustee", true)
	r.ResultsCacheLookup("trustee", false)
	r.ResultsCacheLookup("trustee", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("trustee", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("trustee", "miss")))
}

func TestRecorder_Requests(t *testing.T) {
	r := New()
	r.ObserveRequest("GET /health", http.StatusOK, 3*time.Millisecond)
	r.ObserveRequest("GET /health", http.StatusOK, time.Millisecond)
	r.ObserveCompose("karobari", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("GET /health", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.httpDuration, "samaj_vote_http_request_duration_seconds"))
	assert.Equal(t, 1, testutil.CollectAndCount(r.composeDuration))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.BallotAccepted("karobari", 1, 1)
		r.BallotRejected("karobari", "SeatOverflow")
		r.ResultsCacheLookup("karobari", true)
		r.ObserveCompose("karobari", time.Second)
		r.ObserveRequest("GET /", 200, time.Second)
	})
	assert.Nil(t, r.Registry())

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.BallotAccepted("yuva_pankh", 2, 0)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body),
		`samaj_vote_ballots_total{election="yuva_pankh",outcome="accepted"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.BallotRejected("trustee", "ZoneFrozen")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ballots.WithLabelValues("trustee", "ZoneFrozen")))
}
