// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/samaj-vote/models"
	"github.com/danielhkuo/samaj-vote/testutil"
)

// TestConcurrentBallotSubmissions verifies that simultaneous ballots from
// different voters are all recorded with exactly seat_count lines each
func TestConcurrentBallotSubmissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newVotingHandler(db)

	zone := testutil.CreateTestZone(t, db, models.ElectionKarobari, "MUMBAI", 2)
	c1 := testutil.CreateTestCandidate(t, db, zone, "Asha", models.StatusApproved)
	c2 := testutil.CreateTestCandidate(t, db, zone, "Bina", models.StatusApproved)
	c3 := testutil.CreateTestCandidate(t, db, zone, "Chirag", models.StatusApproved)
	candidates := []string{c1, c2, c3}

	numVoters := 10
	voters := make([]models.Voter, numVoters)
	for i := range voters {
		voters[i] = testutil.CreateTestVoter(t, db, testutil.WithZone(zone))
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			// Every third voter leaves a seat to NOTA
			body := models.SubmitBallotRequest{
				Selections: []string{candidates[voterIdx%3], candidates[(voterIdx+1)%3]},
			}
			if voterIdx%3 == 0 {
				body = models.SubmitBallotRequest{Selections: []string{candidates[0]}, ConfirmNOTA: true}
			}

			req := testutil.MakeRequest("POST", "/voters/"+voters[voterIdx].ID+"/ballots/karobari", body, nil)
			w := serve("POST /voters/{id}/ballots/{election}", h.SubmitBallot, req)
			if w.Code == http.StatusCreated {
				successCount.Add(1)
			} else {
				t.Errorf("voter %d: status %d: %s", voterIdx, w.Code, w.Body.String())
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(numVoters), successCount.Load())

	var lines, nota int
	require.NoError(t, db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_nota THEN 1 ELSE 0 END), 0) FROM vote WHERE zone_id = $1
	`, zone.ID).Scan(&lines, &nota))
	assert.Equal(t, numVoters*2, lines)
	assert.Equal(t, 4, nota, "voters 0, 3, 6 and 9 each left one seat")
}

// TestConcurrentDuplicateBallot verifies that a voter racing against
// themselves records exactly one ballot
func TestConcurrentDuplicateBallot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newVotingHandler(db)

	zone := testutil.CreateTestZone(t, db, models.ElectionTrustee, "MUMBAI", 1)
	candidate := testutil.CreateTestCandidate(t, db, zone, "Asha", models.StatusApproved)
	voter := testutil.CreateTestVoter(t, db, testutil.WithZone(zone))

	numAttempts := 10
	var created, conflicts atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := testutil.MakeRequest("POST", "/voters/"+voter.ID+"/ballots/trustee",
				models.SubmitBallotRequest{Selections: []string{candidate}}, nil)
			w := serve("POST /voters/{id}/ballots/{election}", h.SubmitBallot, req)
			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			default:
				t.Errorf("unexpected status %d: %s", w.Code, w.Body.String())
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(numAttempts-1), conflicts.Load())

	var lines int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM vote WHERE voter_id = $1`, voter.ID).Scan(&lines))
	assert.Equal(t, 1, lines)
}
