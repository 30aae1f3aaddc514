// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/samaj-vote/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Per-election voter columns. Only these constants are ever interpolated
// into SQL.
func voterColumns(e models.ElectionType) (zoneCol, votedCol string, err error) {
	switch e {
	case models.ElectionYuvaPankh:
		return "yuva_pankh_zone_id", "has_voted_yuva_pankh", nil
	case models.ElectionKarobari:
		return "karobari_zone_id", "has_voted_karobari", nil
	case models.ElectionTrustee:
		return "trustee_zone_id", "has_voted_trustee", nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrInvalidElection, e)
}

const voterSelect = `
	SELECT id, voter_code, name, phone, email, dob, region,
	       yuva_pankh_zone_id, karobari_zone_id, trustee_zone_id,
	       has_voted_yuva_pankh, has_voted_karobari, has_voted_trustee, is_active
	FROM voter
	WHERE id = $1
`

func loadVoter(ctx context.Context, q querier, id string) (models.Voter, error) {
	var v models.Voter
	err := q.QueryRowContext(ctx, voterSelect, id).Scan(
		&v.ID, &v.VoterCode, &v.Name, &v.Phone, &v.Email, &v.DOB, &v.Region,
		&v.YuvaPankhZoneID, &v.KarobariZoneID, &v.TrusteeZoneID,
		&v.HasVotedYuvaPankh, &v.HasVotedKarobari, &v.HasVotedTrustee, &v.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrVoterNotFound
	}
	if err != nil {
		return v, fmt.Errorf("failed to query voter: %w", err)
	}
	return v, nil
}

func loadZone(ctx context.Context, q querier, id string) (models.Zone, error) {
	var z models.Zone
	var nameLocal sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT id, code, name, name_local, seat_count, election_type, is_frozen
		FROM zone
		WHERE id = $1
	`, id).Scan(&z.ID, &z.Code, &z.Name, &nameLocal, &z.SeatCount, &z.ElectionType, &z.IsFrozen)
	if errors.Is(err, sql.ErrNoRows) {
		return z, ErrZoneNotFound
	}
	if err != nil {
		return z, fmt.Errorf("failed to query zone: %w", err)
	}
	z.NameLocal = nameLocal.String
	return z, nil
}

// GetZone loads a single zone
func GetZone(ctx context.Context, db *sql.DB, id string) (models.Zone, error) {
	return loadZone(ctx, db, id)
}

// ListZones returns the zones of one election, or all zones when e is empty.
// Rows are read fully before returning so callers may issue further
// queries on single-connection databases.
func ListZones(ctx context.Context, db *sql.DB, e models.ElectionType) ([]models.Zone, error) {
	query := `
		SELECT id, code, name, name_local, seat_count, election_type, is_frozen
		FROM zone
	`
	var args []any
	if e != "" {
		query += ` WHERE election_type = $1`
		args = append(args, string(e))
	}
	query += ` ORDER BY election_type, name, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer rows.Close()

	zones := []models.Zone{}
	for rows.Next() {
		var z models.Zone
		var nameLocal sql.NullString
		if err := rows.Scan(&z.ID, &z.Code, &z.Name, &nameLocal, &z.SeatCount, &z.ElectionType, &z.IsFrozen); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		z.NameLocal = nameLocal.String
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zones: %w", err)
	}
	return zones, nil
}

// ApprovedCandidates lists the candidates a voter may select in a zone
func ApprovedCandidates(ctx context.Context, db *sql.DB, zoneID string) ([]models.Candidate, error) {
	return approvedCandidates(ctx, db, zoneID)
}

func approvedCandidates(ctx context.Context, q querier, zoneID string) ([]models.Candidate, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT c.id, c.name, c.status, c.zone_id, c.election_type, c.position,
		       c.experience, c.education, c.created_at
		FROM candidate c
		JOIN zone z ON z.id = c.zone_id AND z.election_type = c.election_type
		WHERE c.zone_id = $1 AND c.status = $2
		ORDER BY c.name, c.id
	`, zoneID, models.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		var position sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &c.ZoneID, &c.ElectionType, &position,
			&c.Experience, &c.Education, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.Position = position.String
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return candidates, nil
}

// CheckEligibility loads the voter and resolves eligibility for one
// election. Integrity anomalies are logged here.
func CheckEligibility(ctx context.Context, db *sql.DB, voterID string, e models.ElectionType) (models.Eligibility, error) {
	if !e.Valid() {
		return models.Eligibility{}, fmt.Errorf("%w: %q", ErrInvalidElection, e)
	}
	v, err := loadVoter(ctx, db, voterID)
	if err != nil {
		return models.Eligibility{}, err
	}
	return resolveStored(ctx, db, v, e)
}

// CheckAllEligibility resolves eligibility for every election
func CheckAllEligibility(ctx context.Context, db *sql.DB, voterID string) ([]models.Eligibility, error) {
	v, err := loadVoter(ctx, db, voterID)
	if err != nil {
		return nil, err
	}
	results := make([]models.Eligibility, 0, len(models.AllElections))
	for _, e := range models.AllElections {
		r, err := resolveStored(ctx, db, v, e)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func resolveStored(ctx context.Context, q querier, v models.Voter, e models.ElectionType) (models.Eligibility, error) {
	var zone *models.Zone
	if id := v.ZoneFor(e); id != nil {
		z, err := loadZone(ctx, q, *id)
		switch {
		case err == nil:
			zone = &z
		case !errors.Is(err, ErrZoneNotFound):
			return models.Eligibility{}, err
		}
	}

	result := ResolveEligibility(v, e, zone)
	if result.Anomaly {
		slog.Warn("eligibility integrity anomaly",
			"voter_id", v.ID,
			"election", e,
			"reason", result.Reason,
		)
	}
	return result, nil
}

func countActiveVoters(ctx context.Context, q querier) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM voter WHERE is_active = TRUE`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count voters: %w", err)
	}
	return n, nil
}
