package models

import (
	"fmt"
	"time"
)

// ElectionType identifies one of the three independent elections.
type ElectionType string

const (
	ElectionYuvaPankh ElectionType = "yuva_pankh"
	ElectionKarobari  ElectionType = "karobari"
	ElectionTrustee   ElectionType = "trustee"
)

// AllElections lists every election in display order.
var AllElections = []ElectionType{ElectionYuvaPankh, ElectionKarobari, ElectionTrustee}

func (e ElectionType) Valid() bool {
	switch e {
	case ElectionYuvaPankh, ElectionKarobari, ElectionTrustee:
		return true
	}
	return false
}

// DisplayName returns the name shown on dashboards
func (e ElectionType) DisplayName() string {
	switch e {
	case ElectionYuvaPankh:
		return "Yuva Pankh"
	case ElectionKarobari:
		return "Karobari Samiti"
	case ElectionTrustee:
		return "Trustee"
	}
	return string(e)
}

// ParseElectionType validates a path or query value
func ParseElectionType(s string) (ElectionType, error) {
	e := ElectionType(s)
	if !e.Valid() {
		return "", fmt.Errorf("unknown election type %q", s)
	}
	return e, nil
}

// Candidate and nomination status constants
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// Eligibility reasons
const (
	ReasonAge         = "age"
	ReasonRegion      = "region"
	ReasonUnknown     = "unknown"
	ReasonNotAssigned = "not_assigned"
	ReasonInactive    = "inactive"
	ReasonMissingDOB  = "dob_missing"
)

// Request types

type SubmitBallotRequest struct {
	ZoneID      string   `json:"zone_id,omitempty"`
	Selections  []string `json:"selections"`
	ConfirmNOTA bool     `json:"confirm_nota"`
}

type CreateNominationRequest struct {
	Name       string  `json:"name"`
	ZoneID     string  `json:"zone_id"`
	Position   string  `json:"position"`
	Experience Profile `json:"experience"`
	Education  Profile `json:"education"`
}

type RequestUploadRequest struct {
	Kind        string `json:"kind"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

type RejectNominationRequest struct {
	Reason string `json:"reason"`
}

// FreezeZoneRequest requires an explicit frozen value
type FreezeZoneRequest struct {
	Frozen *bool `json:"frozen"`
}

// Response types

type CreateNominationResponse struct {
	NominationID string `json:"nomination_id"`
	CandidateID  string `json:"candidate_id"`
}

type PresignedURLResponse struct {
	DocumentID string            `json:"document_id,omitempty"`
	StorageKey string            `json:"storage_key,omitempty"`
	URL        string            `json:"url"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers,omitempty"`
	ExpiresAt  time.Time         `json:"expires_at"`
}

type SubmitBallotResponse struct {
	BallotID     string     `json:"ballot_id"`
	ElectionType string     `json:"election_type"`
	ZoneID       string     `json:"zone_id"`
	ActualVotes  int        `json:"actual_votes"`
	NOTAVotes    int        `json:"nota_votes"`
	Lines        []VoteLine `json:"ballot_lines"`
	Message      string     `json:"message"`
}

type VoterEligibilityResponse struct {
	VoterID   string        `json:"voter_id"`
	Elections []Eligibility `json:"elections"`
}

// Domain types

type Zone struct {
	ID           string       `json:"id"`
	Code         string       `json:"code"`
	Name         string       `json:"name"`
	NameLocal    string       `json:"name_local,omitempty"`
	SeatCount    int          `json:"seat_count"`
	ElectionType ElectionType `json:"election_type"`
	IsFrozen     bool         `json:"is_frozen"`
}

type Voter struct {
	ID                string  `json:"id"`
	VoterCode         string  `json:"voter_code"`
	Name              string  `json:"name"`
	Phone             *string `json:"phone,omitempty"`
	Email             *string `json:"email,omitempty"`
	DOB               *string `json:"dob,omitempty"` // DD/MM/YYYY
	Region            string  `json:"region"`
	YuvaPankhZoneID   *string `json:"yuva_pankh_zone_id,omitempty"`
	KarobariZoneID    *string `json:"karobari_zone_id,omitempty"`
	TrusteeZoneID     *string `json:"trustee_zone_id,omitempty"`
	HasVotedYuvaPankh bool    `json:"has_voted_yuva_pankh"`
	HasVotedKarobari  bool    `json:"has_voted_karobari"`
	HasVotedTrustee   bool    `json:"has_voted_trustee"`
	IsActive          bool    `json:"is_active"`
}

// ZoneFor returns the voter's zone assignment for an election, or nil
func (v Voter) ZoneFor(e ElectionType) *string {
	switch e {
	case ElectionYuvaPankh:
		return v.YuvaPankhZoneID
	case ElectionKarobari:
		return v.KarobariZoneID
	case ElectionTrustee:
		return v.TrusteeZoneID
	}
	return nil
}

func (v Voter) HasVoted(e ElectionType) bool {
	switch e {
	case ElectionYuvaPankh:
		return v.HasVotedYuvaPankh
	case ElectionKarobari:
		return v.HasVotedKarobari
	case ElectionTrustee:
		return v.HasVotedTrustee
	}
	return false
}

type Candidate struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Status       string       `json:"status"`
	ZoneID       string       `json:"zone_id"`
	ElectionType ElectionType `json:"election_type"`
	Position     string       `json:"position,omitempty"`
	Experience   Profile      `json:"experience"`
	Education    Profile      `json:"education"`
	CreatedAt    time.Time    `json:"created_at"`
}

type Nomination struct {
	ID              string               `json:"id"`
	CandidateID     string               `json:"candidate_id"`
	Status          string               `json:"status"`
	RejectionReason *string              `json:"rejection_reason,omitempty"`
	SubmittedAt     *time.Time           `json:"submitted_at,omitempty"`
	ReviewedAt      *time.Time           `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	Candidate       *Candidate           `json:"candidate,omitempty"`
	Documents       []NominationDocument `json:"documents"`
}

type NominationDocument struct {
	ID           string    `json:"id"`
	NominationID string    `json:"nomination_id"`
	Kind         string    `json:"kind"`
	StorageKey   string    `json:"storage_key"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

// Eligibility is the resolver's verdict for one voter and election.
// Anomaly marks a verdict that contradicts the stored assignment data.
type Eligibility struct {
	ElectionType ElectionType `json:"election_type"`
	Eligible     bool         `json:"eligible"`
	Zone         *Zone        `json:"zone,omitempty"`
	SeatCount    int          `json:"seat_count,omitempty"`
	HasVoted     bool         `json:"has_voted"`
	Reason       string       `json:"reason,omitempty"`
	Anomaly      bool         `json:"-"`
}

// TargetKind distinguishes a real candidate from the NOTA placeholder
type TargetKind string

const (
	TargetCandidate TargetKind = "candidate"
	TargetNOTA      TargetKind = "nota"
)

// Target is what a single ballot line counts toward
type Target struct {
	Kind        TargetKind `json:"kind"`
	CandidateID string     `json:"candidate_id,omitempty"`
}

func CandidateTarget(id string) Target { return Target{Kind: TargetCandidate, CandidateID: id} }

func NOTATarget() Target { return Target{Kind: TargetNOTA} }

func (t Target) IsNOTA() bool { return t.Kind == TargetNOTA }

// VoteLine is one immutable ballot line; a ballot has exactly seat_count of them
type VoteLine struct {
	ID           string       `json:"id"`
	BallotID     string       `json:"ballot_id"`
	VoterID      string       `json:"-"`
	ZoneID       string       `json:"zone_id"`
	ElectionType ElectionType `json:"election_type"`
	Target       Target       `json:"target"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Turnout and results types

type RegionTurnout struct {
	ZoneID            string  `json:"zone_id"`
	ZoneCode          string  `json:"zone_code"`
	Name              string  `json:"name"`
	NameLocal         string  `json:"name_local,omitempty"`
	SeatCount         int     `json:"seat_count"`
	IsFrozen          bool    `json:"is_frozen"`
	TotalVoters       int     `json:"total_voters"`
	UniqueVotersVoted int     `json:"unique_voters_voted"`
	TotalVotes        int     `json:"total_votes"`
	ActualVotes       int     `json:"actual_votes"`
	NOTAVotes         int     `json:"nota_votes"`
	TurnoutPercentage float64 `json:"turnout_percentage"`
	Completed         bool    `json:"completed"`
	Consistent        bool    `json:"consistent"`
}

type CandidateTally struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Position    string `json:"position,omitempty"`
	Votes       int    `json:"votes"`
	Rank        int    `json:"rank"` // 1-indexed ranking
}

type ZoneTallyResponse struct {
	Zone       Zone             `json:"zone"`
	Candidates []CandidateTally `json:"candidates"`
	NOTAVotes  int              `json:"nota_votes"`
}

type ElectionSummary struct {
	ElectionType      ElectionType    `json:"election_type"`
	Name              string          `json:"name"`
	Regions           []RegionTurnout `json:"regions"`
	TotalRegions      int             `json:"total_regions"`
	TotalVoters       int             `json:"total_voters"`
	TotalVotes        int             `json:"total_votes"`
	TotalVoted        int             `json:"total_voted"`
	TurnoutPercentage float64         `json:"turnout_percentage"`
}

type ElectionResults struct {
	Election            ElectionSummary `json:"election"`
	TotalVotersInSystem int             `json:"total_voters_in_system"`
	GeneratedAt         time.Time       `json:"generated_at"`
}

type AllResults struct {
	Elections           []ElectionSummary `json:"elections"`
	TotalVotersInSystem int               `json:"total_voters_in_system"`
	GeneratedAt         time.Time         `json:"generated_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
