// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"strings"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/samaj-vote/metrics"
	"github.com/danielhkuo/samaj-vote/models"
	"github.com/danielhkuo/samaj-vote/testutil"
)

func TestSummarize(t *testing.T) {
	regions := []models.RegionTurnout{
		{ZoneID: "z3", Name: "Pune", TotalVoters: 5, UniqueVotersVoted: 5, TotalVotes: 10},
		{ZoneID: "z2", Name: "Mumbai", TotalVoters: 10, UniqueVotersVoted: 2, TotalVotes: 4},
		{ZoneID: "z1", Name: "Mumbai", TotalVoters: 0},
	}

	s := Summarize(models.ElectionKarobari, regions)

	assert.Equal(t, "Karobari Samiti", s.Name)
	assert.Equal(t, 3, s.TotalRegions)
	require.Len(t, s.Regions, 3)
	assert.Equal(t, "z1", s.Regions[0].ZoneID)
	assert.Equal(t, "z2", s.Regions[1].ZoneID)
	assert.Equal(t, "z3", s.Regions[2].ZoneID)
	assert.Equal(t, 15, s.TotalVoters)
	assert.Equal(t, 7, s.TotalVoted)
	assert.Equal(t, 14, s.TotalVotes)
	assert.Equal(t, 46.7, s.TurnoutPercentage)
}

func TestSummarize_NoRegions(t *testing.T) {
	s := Summarize(models.ElectionTrustee, nil)
	assert.Equal(t, 0, s.TotalRegions)
	assert.Equal(t, 0.0, s.TurnoutPercentage)
}

func TestCompose(t *testing.T) {
	f := newBallotFixture(t, models.ElectionKarobari, 2, 2)
	testutil.CreateTestZone(t, f.db, models.ElectionKarobari, "AHMEDABAD", 1)
	for i := 0; i < 4; i++ {
		v := f.voter(t)
		if i == 0 {
			_, err := f.svc.SubmitBallot(context.Background(), f.request(v, f.candidates, false))
			require.NoError(t, err)
		}
	}

	results, err := f.composer.Compose(context.Background(), models.ElectionKarobari)
	require.NoError(t, err)

	e := results.Election
	assert.Equal(t, models.ElectionKarobari, e.ElectionType)
	assert.Equal(t, 2, e.TotalRegions)
	assert.Equal(t, "AHMEDABAD", e.Regions[0].Name)
	assert.Equal(t, 4, e.TotalVoters)
	assert.Equal(t, 1, e.TotalVoted)
	assert.Equal(t, 2, e.TotalVotes)
	assert.Equal(t, 25.0, e.TurnoutPercentage)
	assert.Equal(t, 4, results.TotalVotersInSystem)
	assert.False(t, results.GeneratedAt.IsZero())

	_, err = f.composer.Compose(context.Background(), "mayor")
	assert.ErrorIs(t, err, ErrInvalidElection)
}

func TestCompose_Cache(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rec := metrics.New()
	c := NewComposer(db, NewAggregator(db), time.Minute, rec)

	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	zone := testutil.CreateTestZone(t, db, models.ElectionTrustee, "MUMBAI", 1)
	testutil.CreateTestVoter(t, db, testutil.WithZone(zone))

	first, err := c.Compose(context.Background(), models.ElectionTrustee)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Election.TotalVoters)

	// Changes are invisible until the entry expires or is invalidated
	testutil.CreateTestVoter(t, db, testutil.WithZone(zone))
	cached, err := c.Compose(context.Background(), models.ElectionTrustee)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Election.TotalVoters)

	now = now.Add(2 * time.Minute)
	expired, err := c.Compose(context.Background(), models.ElectionTrustee)
	require.NoError(t, err)
	assert.Equal(t, 2, expired.Election.TotalVoters)

	testutil.CreateTestVoter(t, db, testutil.WithZone(zone))
	c.Invalidate(models.ElectionTrustee)
	fresh, err := c.Compose(context.Background(), models.ElectionTrustee)
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.Election.TotalVoters)

	expected := `
# HELP samaj_vote_results_cache_lookups_total Results cache lookups by election and result
# TYPE samaj_vote_results_cache_lookups_total counter
samaj_vote_results_cache_lookups_total{election="trustee",result="hit"} 1
samaj_vote_results_cache_lookups_total{election="trustee",result="miss"} 3
`
	assert.NoError(t, promtestutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected),
		"samaj_vote_results_cache_lookups_total"))
}

func TestCompose_CachedResultsAreCopies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	c := NewComposer(db, NewAggregator(db), time.Minute, nil)

	testutil.CreateTestZone(t, db, models.ElectionKarobari, "MUMBAI", 9)
	testutil.CreateTestZone(t, db, models.ElectionKarobari, "RAIGAD", 3)

	first, err := c.Compose(context.Background(), models.ElectionKarobari)
	require.NoError(t, err)
	require.Len(t, first.Election.Regions, 2)
	wantFirst := first.Election.Regions[0].ZoneCode

	// Editing a returned slice must not reach the cache
	first.Election.Regions[0].ZoneCode = "EDITED"
	first.Election.Regions[0], first.Election.Regions[1] = first.Election.Regions[1], first.Election.Regions[0]

	second, err := c.Compose(context.Background(), models.ElectionKarobari)
	require.NoError(t, err)
	assert.Equal(t, wantFirst, second.Election.Regions[0].ZoneCode)

	second.Election.Regions[1].SeatCount = 0
	third, err := c.Compose(context.Background(), models.ElectionKarobari)
	require.NoError(t, err)
	assert.NotZero(t, third.Election.Regions[1].SeatCount)
}

func TestCompose_ZeroTTLNeverCaches(t *testing.T) {
	db := testutil.SetupTestDB(t)
	c := NewComposer(db, NewAggregator(db), 0, nil)
	zone := testutil.CreateTestZone(t, db, models.ElectionKarobari, "MUMBAI", 1)

	for want := 1; want <= 3; want++ {
		testutil.CreateTestVoter(t, db, testutil.WithZone(zone))
		r, err := c.Compose(context.Background(), models.ElectionKarobari)
		require.NoError(t, err)
		assert.Equal(t, want, r.Election.TotalVoters)
	}
}

func TestComposeAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	c := NewComposer(db, NewAggregator(db), time.Minute, nil)

	karobari := testutil.CreateTestZone(t, db, models.ElectionKarobari, "MUMBAI", 1)
	trustee := testutil.CreateTestZone(t, db, models.ElectionTrustee, "MUMBAI", 1)
	testutil.CreateTestVoter(t, db, testutil.WithZone(karobari), testutil.WithZone(trustee))
	testutil.CreateTestVoter(t, db, testutil.WithZone(karobari))

	all, err := c.ComposeAll(context.Background())
	require.NoError(t, err)

	require.Len(t, all.Elections, 3)
	assert.Equal(t, models.ElectionYuvaPankh, all.Elections[0].ElectionType)
	assert.Equal(t, 0, all.Elections[0].TotalRegions)
	assert.Equal(t, models.ElectionKarobari, all.Elections[1].ElectionType)
	assert.Equal(t, 2, all.Elections[1].TotalVoters)
	assert.Equal(t, models.ElectionTrustee, all.Elections[2].ElectionType)
	assert.Equal(t, 1, all.Elections[2].TotalVoters)
	assert.Equal(t, 2, all.TotalVotersInSystem)
}
