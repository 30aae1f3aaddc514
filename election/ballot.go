// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/samaj-vote/metrics"
	"github.com/danielhkuo/samaj-vote/models"
)

// BallotRequest is one voter's submission for one election
type BallotRequest struct {
	VoterID      string
	ElectionType models.ElectionType
	// ZoneID is optional; when set it must equal the voter's assigned zone
	ZoneID      string
	Selections  []string
	ConfirmNOTA bool

	IPHash    string
	UserAgent string
}

// BallotReceipt describes a committed ballot
type BallotReceipt struct {
	BallotID     string
	VoterID      string
	ZoneID       string
	ElectionType models.ElectionType
	SeatCount    int
	Lines        []models.VoteLine
	ActualVotes  int
	NOTAVotes    int
	SubmittedAt  time.Time
}

// ValidateSelections checks the shape of a selection list against the
// zone's seat count. Candidate existence is checked separately.
func ValidateSelections(selections []string, seatCount int) error {
	if len(selections) > seatCount {
		return fmt.Errorf("%w: %d selections for %d seats", ErrSeatOverflow, len(selections), seatCount)
	}
	seen := make(map[string]bool, len(selections))
	for _, id := range selections {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: empty candidate id", ErrInvalidCandidate)
		}
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateSelection, id)
		}
		seen[id] = true
	}
	return nil
}

// BuildTargets returns exactly seatCount targets: the selections in order,
// then NOTA for every unfilled seat. Unfilled seats without confirmation
// yield a *ShortfallError.
func BuildTargets(selections []string, seatCount int, confirmNOTA bool) ([]models.Target, error) {
	if err := ValidateSelections(selections, seatCount); err != nil {
		return nil, err
	}
	if len(selections) < seatCount && !confirmNOTA {
		return nil, &ShortfallError{Seats: seatCount, Selected: len(selections)}
	}

	targets := make([]models.Target, 0, seatCount)
	for _, id := range selections {
		targets = append(targets, models.CandidateTarget(id))
	}
	for len(targets) < seatCount {
		targets = append(targets, models.NOTATarget())
	}
	return targets, nil
}

// BallotService validates and commits ballots
type BallotService struct {
	db       *sql.DB
	composer *Composer
	metrics  *metrics.Recorder
	now      func() time.Time
	newID    func() string
}

// NewBallotService creates a ballot service. composer and rec may be nil.
func NewBallotService(db *sql.DB, composer *Composer, rec *metrics.Recorder) *BallotService {
	return &BallotService{
		db:       db,
		composer: composer,
		metrics:  rec,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SubmitBallot validates the request and commits the ballot atomically:
// the has-voted flag flips and exactly seat_count vote lines are written,
// or nothing is persisted.
func (s *BallotService) SubmitBallot(ctx context.Context, req BallotRequest) (*BallotReceipt, error) {
	receipt, err := s.submit(ctx, req)
	if err != nil {
		s.metrics.BallotRejected(string(req.ElectionType), ErrorCode(err))
		return nil, err
	}

	s.metrics.BallotAccepted(string(receipt.ElectionType), receipt.ActualVotes, receipt.NOTAVotes)
	if s.composer != nil {
		s.composer.Invalidate(receipt.ElectionType)
	}

	slog.Info("ballot submitted",
		"ballot_id", receipt.BallotID,
		"election", receipt.ElectionType,
		"zone_id", receipt.ZoneID,
		"actual_votes", receipt.ActualVotes,
		"nota_votes", receipt.NOTAVotes,
	)
	return receipt, nil
}

func (s *BallotService) submit(ctx context.Context, req BallotRequest) (*BallotReceipt, error) {
	_, votedCol, err := voterColumns(req.ElectionType)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	voter, err := loadVoter(ctx, tx, req.VoterID)
	if err != nil {
		return nil, err
	}
	if !voter.IsActive {
		return nil, ErrVoterInactive
	}
	if voter.HasVoted(req.ElectionType) {
		return nil, ErrAlreadyVoted
	}

	assigned := voter.ZoneFor(req.ElectionType)
	if assigned == nil {
		return nil, fmt.Errorf("%w: no %s zone assigned", ErrNotEligible, req.ElectionType)
	}
	if req.ZoneID != "" && req.ZoneID != *assigned {
		return nil, fmt.Errorf("%w: zone %s is not the voter's assigned zone", ErrNotEligible, req.ZoneID)
	}

	zone, err := loadZone(ctx, tx, *assigned)
	if err != nil {
		return nil, err
	}
	eligibility, err := resolveStored(ctx, tx, voter, req.ElectionType)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, fmt.Errorf("%w: %s", ErrNotEligible, eligibility.Reason)
	}
	if zone.IsFrozen {
		return nil, ErrZoneFrozen
	}

	if err := ValidateSelections(req.Selections, zone.SeatCount); err != nil {
		return nil, err
	}

	candidates, err := approvedCandidates(ctx, tx, zone.ID)
	if err != nil {
		return nil, err
	}
	approved := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c.ElectionType == req.ElectionType {
			approved[c.ID] = true
		}
	}
	for _, id := range req.Selections {
		if !approved[id] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCandidate, id)
		}
	}

	targets, err := BuildTargets(req.Selections, zone.SeatCount, req.ConfirmNOTA)
	if err != nil {
		return nil, err
	}

	now := s.now()

	// Compare-and-set on the flag: a concurrent submission that already
	// committed leaves zero rows to update.
	res, err := tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE voter SET %s = TRUE, updated_at = $1
		WHERE id = $2 AND %s = FALSE AND is_active = TRUE
	`, votedCol, votedCol), now, voter.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark voter as voted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to mark voter as voted: %w", err)
	}
	if n != 1 {
		return nil, ErrAlreadyVoted
	}

	ballotID := s.newID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO ballot (id, voter_id, zone_id, election_type, submitted_at, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, ballotID, voter.ID, zone.ID, string(req.ElectionType), now, nullString(req.IPHash), nullString(req.UserAgent))
	if err != nil {
		return nil, fmt.Errorf("failed to insert ballot: %w", err)
	}

	receipt := &BallotReceipt{
		BallotID:     ballotID,
		VoterID:      voter.ID,
		ZoneID:       zone.ID,
		ElectionType: req.ElectionType,
		SeatCount:    zone.SeatCount,
		Lines:        make([]models.VoteLine, 0, len(targets)),
		SubmittedAt:  now,
	}

	for _, t := range targets {
		line := models.VoteLine{
			ID:           s.newID(),
			BallotID:     ballotID,
			VoterID:      voter.ID,
			ZoneID:       zone.ID,
			ElectionType: req.ElectionType,
			Target:       t,
			CreatedAt:    now,
		}
		var candidateID any
		if !t.IsNOTA() {
			candidateID = t.CandidateID
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO vote (id, ballot_id, voter_id, zone_id, election_type, candidate_id, is_nota, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, line.ID, ballotID, voter.ID, zone.ID, string(req.ElectionType), candidateID, t.IsNOTA(), now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert vote line: %w", err)
		}

		receipt.Lines = append(receipt.Lines, line)
		if t.IsNOTA() {
			receipt.NOTAVotes++
		} else {
			receipt.ActualVotes++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ballot: %w", err)
	}
	return receipt, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
