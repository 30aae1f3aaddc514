// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/danielhkuo/samaj-vote/models"
)

// TurnoutPercentage returns voted/total*100 rounded to one decimal place,
// or 0 when the zone has no voters
func TurnoutPercentage(voted, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(voted) * 100 / float64(total)
	return math.Round(pct*10) / 10
}

// BuildTurnout assembles a RegionTurnout from raw counts
func BuildTurnout(zone models.Zone, totalVoters, votersVoted, totalVotes, notaVotes int) models.RegionTurnout {
	pct := TurnoutPercentage(votersVoted, totalVoters)
	return models.RegionTurnout{
		ZoneID:            zone.ID,
		ZoneCode:          zone.Code,
		Name:              zone.Name,
		NameLocal:         zone.NameLocal,
		SeatCount:         zone.SeatCount,
		IsFrozen:          zone.IsFrozen,
		TotalVoters:       totalVoters,
		UniqueVotersVoted: votersVoted,
		TotalVotes:        totalVotes,
		ActualVotes:       totalVotes - notaVotes,
		NOTAVotes:         notaVotes,
		TurnoutPercentage: pct,
		Completed:         pct >= 100,
		Consistent:        totalVotes == votersVoted*zone.SeatCount,
	}
}

// Aggregator computes turnout and tallies from stored vote lines
type Aggregator struct {
	db *sql.DB
}

func NewAggregator(db *sql.DB) *Aggregator {
	return &Aggregator{db: db}
}

// ZoneTurnout computes turnout for one zone
func (a *Aggregator) ZoneTurnout(ctx context.Context, zoneID string) (models.RegionTurnout, error) {
	zone, err := loadZone(ctx, a.db, zoneID)
	if err != nil {
		return models.RegionTurnout{}, err
	}
	return a.turnoutFor(ctx, zone)
}

func (a *Aggregator) turnoutFor(ctx context.Context, zone models.Zone) (models.RegionTurnout, error) {
	zoneCol, votedCol, err := voterColumns(zone.ElectionType)
	if err != nil {
		return models.RegionTurnout{}, err
	}

	var totalVoters int
	err = a.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*) FROM voter WHERE %s = $1 AND is_active = TRUE
	`, zoneCol), zone.ID).Scan(&totalVoters)
	if err != nil {
		return models.RegionTurnout{}, fmt.Errorf("failed to count voters: %w", err)
	}

	var votersVoted int
	err = a.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*) FROM voter WHERE %s = $1 AND %s = TRUE
	`, zoneCol, votedCol), zone.ID).Scan(&votersVoted)
	if err != nil {
		return models.RegionTurnout{}, fmt.Errorf("failed to count voters who voted: %w", err)
	}

	var totalVotes, notaVotes int
	err = a.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_nota THEN 1 ELSE 0 END), 0)
		FROM vote
		WHERE zone_id = $1
	`, zone.ID).Scan(&totalVotes, &notaVotes)
	if err != nil {
		return models.RegionTurnout{}, fmt.Errorf("failed to count votes: %w", err)
	}

	t := BuildTurnout(zone, totalVoters, votersVoted, totalVotes, notaVotes)
	if !t.Consistent {
		slog.Warn("turnout integrity anomaly",
			"zone_id", zone.ID,
			"zone_code", zone.Code,
			"total_votes", totalVotes,
			"voters_voted", votersVoted,
			"seat_count", zone.SeatCount,
		)
	}
	return t, nil
}

// ZoneTally counts votes per approved candidate in a zone
func (a *Aggregator) ZoneTally(ctx context.Context, zoneID string) (models.ZoneTallyResponse, error) {
	zone, err := loadZone(ctx, a.db, zoneID)
	if err != nil {
		return models.ZoneTallyResponse{}, err
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(c.position, ''), COUNT(v.id)
		FROM candidate c
		LEFT JOIN vote v ON v.candidate_id = c.id
		WHERE c.zone_id = $1 AND c.status = $2
		GROUP BY c.id, c.name, c.position
	`, zone.ID, models.StatusApproved)
	if err != nil {
		return models.ZoneTallyResponse{}, fmt.Errorf("failed to query tally: %w", err)
	}
	defer rows.Close()

	tallies := []models.CandidateTally{}
	for rows.Next() {
		var t models.CandidateTally
		if err := rows.Scan(&t.CandidateID, &t.Name, &t.Position, &t.Votes); err != nil {
			return models.ZoneTallyResponse{}, fmt.Errorf("failed to scan tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		return models.ZoneTallyResponse{}, fmt.Errorf("failed to iterate tally: %w", err)
	}
	rows.Close()

	var notaVotes int
	err = a.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vote WHERE zone_id = $1 AND is_nota = TRUE
	`, zone.ID).Scan(&notaVotes)
	if err != nil {
		return models.ZoneTallyResponse{}, fmt.Errorf("failed to count NOTA votes: %w", err)
	}

	return models.ZoneTallyResponse{
		Zone:       zone,
		Candidates: RankTallies(tallies),
		NOTAVotes:  notaVotes,
	}, nil
}

// RankTallies sorts by votes (descending), then name and ID, and assigns
// competition ranks: equal vote counts share a rank.
func RankTallies(tallies []models.CandidateTally) []models.CandidateTally {
	sort.SliceStable(tallies, func(i, j int) bool {
		if tallies[i].Votes != tallies[j].Votes {
			return tallies[i].Votes > tallies[j].Votes
		}
		if tallies[i].Name != tallies[j].Name {
			return tallies[i].Name < tallies[j].Name
		}
		return tallies[i].CandidateID < tallies[j].CandidateID
	})
	for i := range tallies {
		if i > 0 && tallies[i].Votes == tallies[i-1].Votes {
			tallies[i].Rank = tallies[i-1].Rank
		} else {
			tallies[i].Rank = i + 1
		}
	}
	return tallies
}
