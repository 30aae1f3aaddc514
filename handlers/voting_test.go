// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/samaj-vote/election"
	"github.com/danielhkuo/samaj-vote/models"
	"github.com/danielhkuo/samaj-vote/testutil"
)

// serve routes req through a mux holding only pattern, so path values are
// populated the way the router populates them
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func newVotingHandler(db *sql.DB) *VotingHandler {
	composer := election.NewComposer(db, election.NewAggregator(db), 0, nil)
	return NewVotingHandler(db, testutil.GetTestConfig(), election.NewBallotService(db, composer, nil))
}

func TestGetEligibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newVotingHandler(db)

	zone := testutil.CreateTestZone(t, db, models.ElectionTrustee, "MUMBAI", 2)
	adult := testutil.CreateTestVoter(t, db, testutil.WithZone(zone))
	minor := testutil.CreateTestVoter(t, db, testutil.WithZone(zone), testutil.WithDOB("01/09/2010"))

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		check          func(t *testing.T, got models.Eligibility)
	}{
		{
			name:           "eligible voter",
			path:           "/voters/" + adult.ID + "/eligibility/trustee",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, got models.Eligibility) {
				assert.True(t, got.Eligible)
				require.NotNil(t, got.Zone)
				assert.Equal(t, zone.ID, got.Zone.ID)
				assert.Equal(t, 2, got.SeatCount)
			},
		},
		{
			name:           "under age",
			path:           "/voters/" + minor.ID + "/eligibility/trustee",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, got models.Eligibility) {
				assert.False(t, got.Eligible)
				assert.Equal(t, models.ReasonAge, got.Reason)
			},
		},
		{
			name:           "not assigned",
			path:           "/voters/" + adult.ID + "/eligibility/karobari",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, got models.Eligibility) {
				assert.False(t, got.Eligible)
				assert.Equal(t, models.ReasonNotAssigned, got.Reason)
			},
		},
		{
			name:           "unknown voter",
			path:           "/voters/nobody/eligibility/trustee",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unknown election",
			path:           "/voters/" + adult.ID + "/eligibility/mayor",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", tt.path, nil, nil)
			w := serve("GET /voters/{id}/eligibility/{election}", h.GetEligibility, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.check != nil {
				var got models.Eligibility
				testutil.AssertJSON(t, w, &got)
				tt.check(t, got)
			}
		})
	}
}

func TestGetAllEligibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newVotingHandler(db)

	zone := testutil.CreateTestZone(t, db, models.ElectionKarobari, "MUMBAI", 9)
	v := testutil.CreateTestVoter(t, db, testutil.WithZone(zone))

	req := testutil.MakeRequest("GET", "/voters/"+v.ID+"/eligibility", nil, nil)
	w := serve("GET /voters/{id}/eligibility", h.GetAllEligibility, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.VoterEligibilityResponse
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, v.ID, resp.VoterID)
	require.Len(t, resp.Elections, 3)
	assert.Equal(t, models.ElectionYuvaPankh, resp.Elections[0].ElectionType)
	assert.True(t, resp.Elections[1].Eligible)
	assert.False(t, resp.Elections[2].Eligible)

	req = testutil.MakeRequest("GET", "/voters/nobody/eligibility", nil, nil)
	w = serve("GET /voters/{id}/eligibility", h.GetAllEligibility, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestSubmitBallot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newVotingHandler(db)

	zone := testutil.CreateTestZone(t, db, models.ElectionKarobari, "MUMBAI", 2)
	frozen := testutil.CreateTestZone(t, db, models.ElectionKarobari, "PUNE", 2)
	c1 := testutil.CreateTestCandidate(t, db, zone, "Asha", models.StatusApproved)
	c2 := testutil.CreateTestCandidate(t, db, zone, "Bina", models.StatusApproved)
	c3 := testutil.CreateTestCandidate(t, db, zone, "Chirag", models.StatusApproved)
	_, err := db.Exec(`UPDATE zone SET is_frozen = TRUE WHERE id = $1`, frozen.ID)
	require.NoError(t, err)

	voted := testutil.CreateTestVoter(t, db, testutil.WithZone(zone))
	_, err = db.Exec(`UPDATE voter SET has_voted_karobari = TRUE WHERE id = $1`, voted.ID)
	require.NoError(t, err)

	tests := []struct {
		name           string
		voterID        string
		electionType   string
		body           interface{}
		expectedStatus int
		expectedCode   string
		check          func(t *testing.T, resp models.SubmitBallotResponse)
	}{
		{
			name:           "full ballot",
			voterID:        testutil.CreateTestVoter(t, db, testutil.WithZone(zone)).ID,
			electionType:   "karobari",
			body:           models.SubmitBallotRequest{Selections: []string{c1, c2}},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, resp models.SubmitBallotResponse) {
				assert.NotEmpty(t, resp.BallotID)
				assert.Equal(t, zone.ID, resp.ZoneID)
				assert.Equal(t, 2, resp.ActualVotes)
				assert.Len(t, resp.Lines, 2)
				assert.Equal(t, "Ballot recorded for Karobari Samiti", resp.Message)
			},
		},
		{
			name:           "confirmed NOTA fill",
			voterID:        testutil.CreateTestVoter(t, db, testutil.WithZone(zone)).ID,
			electionType:   "karobari",
			body:           models.SubmitBallotRequest{Selections: []string{c3}, ConfirmNOTA: true},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, resp models.SubmitBallotResponse) {
				assert.Equal(t, 1, resp.ActualVotes)
				assert.Equal(t, 1, resp.NOTAVotes)
				require.Len(t, resp.Lines, 2)
				assert.Equal(t, models.TargetNOTA, resp.Lines[1].Target.Kind)
				assert.Equal(t, "Ballot recorded for Karobari Samiti with 1 NOTA", resp.Message)
			},
		},
		{
			name:           "unconfirmed shortfall",
			voterID:        testutil.CreateTestVoter(t, db, testutil.WithZone(zone)).ID,
			electionType:   "karobari",
			body:           models.SubmitBallotRequest{Selections: []string{c1}},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   election.CodeNOTAConfirmationRequired,
		},
		{
			name:           "seat overflow",
			voterID:        testutil.CreateTestVoter(t, db, testutil.WithZone(zone)).ID,
			electionType:   "karobari",
			body:           models.SubmitBallotRequest{Selections: []string{c1, c2, c3}},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   election.CodeSeatOverflow,
		},
		{
			name:           "duplicate selection",
			voterID:        testutil.CreateTestVoter(t, db, testutil.WithZone(zone)).ID,
			electionType:   "karobari",
			body:           models.SubmitBallotRequest{Selections: []string{c1, c1}},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   election.CodeDuplicateSelection,
		},
		{
			name:           "unknown candidate",
			voterID:        testutil.CreateTestVoter(t, db, testutil.WithZone(zone)).ID,
			electionType:   "karobari",
			body:           models.SubmitBallotRequest{Selections: []string{c1, "nope"}},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   election.CodeInvalidCandidate,
		},
		{
			name:           "already voted",
			voterID:        voted.ID,
			electionType:   "karobari",
			body:           models.SubmitBallotRequest{Selections: []string{c1, c2}},
			expectedStatus: http.StatusConflict,
			expectedCode:   election.CodeAlreadyVoted,
		},
		{
			name:           "frozen zone",
			voterID:        testutil.CreateTestVoter(t, db, testutil.WithZone(frozen)).ID,
			electionType:   "karobari",
			body:           models.SubmitBallotRequest{Selections: []string{}, ConfirmNOTA: true},
			expectedStatus: http.StatusConflict,
			expectedCode:   election.CodeZoneFrozen,
		},
		{
			name:           "inactive voter",
			voterID:        testutil.CreateTestVoter(t, db, testutil.WithZone(zone), testutil.Inactive()).ID,
			electionType:   "karobari",
			body:           models.SubmitBallotRequest{Selections: []string{c1, c2}},
			expectedStatus: http.StatusForbidden,
			expectedCode:   election.CodeVoterInactive,
		},
		{
			name:           "not assigned",
			voterID:        testutil.CreateTestVoter(t, db).ID,
			electionType:   "karobari",
			body:           models.SubmitBallotRequest{Selections: []string{c1, c2}},
			expectedStatus: http.StatusForbidden,
			expectedCode:   election.CodeNotEligible,
		},
		{
			name:           "unknown voter",
			voterID:        "nobody",
			electionType:   "karobari",
			body:           models.SubmitBallotRequest{Selections: []string{c1, c2}},
			expectedStatus: http.StatusNotFound,
			expectedCode:   election.CodeVoterNotFound,
		},
		{
			name:           "unknown election",
			voterID:        "nobody",
			electionType:   "mayor",
			body:           models.SubmitBallotRequest{},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   election.CodeInvalidElection,
		},
		{
			name:           "invalid JSON",
			voterID:        "nobody",
			electionType:   "karobari",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/voters/"+tt.voterID+"/ballots/"+tt.electionType, tt.body, nil)
			w := serve("POST /voters/{id}/ballots/{election}", h.SubmitBallot, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				assert.Equal(t, tt.expectedCode, resp.Code)
				return
			}

			var resp models.SubmitBallotResponse
			testutil.AssertJSON(t, w, &resp)
			tt.check(t, resp)
		})
	}
}

func TestSubmitBallot_ShortfallMessage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newVotingHandler(db)

	zone := testutil.CreateTestZone(t, db, models.ElectionKarobari, "MUMBAI", 3)
	c := testutil.CreateTestCandidate(t, db, zone, "Asha", models.StatusApproved)
	v := testutil.CreateTestVoter(t, db, testutil.WithZone(zone))

	req := testutil.MakeRequest("POST", "/voters/"+v.ID+"/ballots/karobari",
		models.SubmitBallotRequest{Selections: []string{c}}, nil)
	w := serve("POST /voters/{id}/ballots/{election}", h.SubmitBallot, req)

	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, "2 of 3 seats have no selection; resubmit with confirm_nota to record them as NOTA", resp.Message)
}

func TestSubmitBallot_RecordsRequestMetadata(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newVotingHandler(db)

	zone := testutil.CreateTestZone(t, db, models.ElectionKarobari, "MUMBAI", 1)
	c := testutil.CreateTestCandidate(t, db, zone, "Asha", models.StatusApproved)
	v := testutil.CreateTestVoter(t, db, testutil.WithZone(zone))

	req := testutil.MakeRequest("POST", "/voters/"+v.ID+"/ballots/karobari",
		models.SubmitBallotRequest{Selections: []string{c}},
		map[string]string{"User-Agent": strings.Repeat("x", 400), "X-Forwarded-For": "203.0.113.9"})
	w := serve("POST /voters/{id}/ballots/{election}", h.SubmitBallot, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var ipHash, userAgent string
	require.NoError(t, db.QueryRow(`SELECT ip_hash, user_agent FROM ballot WHERE voter_id = $1`, v.ID).
		Scan(&ipHash, &userAgent))
	assert.Len(t, userAgent, 256)
	assert.NotEmpty(t, ipHash)
	assert.NotContains(t, ipHash, "203.0.113.9")
}

func TestSubmitBallot_UserAgentKeepsValidUTF8(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{"rune straddles the limit", strings.Repeat("x", 255) + "é", strings.Repeat("x", 255)},
		{"invalid bytes dropped", "Mozilla\xff\xfe/5.0", "Mozilla/5.0"},
		{"multi-byte within limit", "ब्राउज़र", "ब्राउज़र"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			h := newVotingHandler(db)

			zone := testutil.CreateTestZone(t, db, models.ElectionKarobari, "MUMBAI", 1)
			c := testutil.CreateTestCandidate(t, db, zone, "Asha", models.StatusApproved)
			v := testutil.CreateTestVoter(t, db, testutil.WithZone(zone))

			req := testutil.MakeRequest("POST", "/voters/"+v.ID+"/ballots/karobari",
				models.SubmitBallotRequest{Selections: []string{c}},
				map[string]string{"User-Agent": tt.userAgent})
			w := serve("POST /voters/{id}/ballots/{election}", h.SubmitBallot, req)
			testutil.AssertStatus(t, w, http.StatusCreated)

			var userAgent string
			require.NoError(t, db.QueryRow(`SELECT user_agent FROM ballot WHERE voter_id = $1`, v.ID).
				Scan(&userAgent))
			assert.True(t, utf8.ValidString(userAgent))
			assert.Equal(t, tt.want, userAgent)
		})
	}
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"aé", 2, "a"},
		{"é", 1, ""},
		{"日本語", 7, "日本"},
		{"a\xffb", 2, "ab"},
	}
	for _, tt := range tests {
		got := truncateUTF8(tt.in, tt.n)
		assert.Equal(t, tt.want, got, "truncateUTF8(%q, %d)", tt.in, tt.n)
		assert.True(t, utf8.ValidString(got))
	}
}
