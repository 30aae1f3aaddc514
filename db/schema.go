// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL sticks to the subset shared by PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Zones (electoral subdivisions)
CREATE TABLE IF NOT EXISTS zone (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL,
    name TEXT NOT NULL,
    name_local TEXT,
    seat_count INTEGER NOT NULL CHECK (seat_count >= 1),
    election_type TEXT NOT NULL CHECK (election_type IN ('yuva_pankh', 'karobari', 'trustee')),
    is_frozen BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE (code, election_type)
);

CREATE INDEX IF NOT EXISTS idx_zone_election_type ON zone(election_type);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    voter_code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    phone TEXT,
    email TEXT,
    dob TEXT,
    region TEXT NOT NULL DEFAULT '',
    yuva_pankh_zone_id TEXT REFERENCES zone(id),
    karobari_zone_id TEXT REFERENCES zone(id),
    trustee_zone_id TEXT REFERENCES zone(id),
    has_voted_yuva_pankh BOOLEAN NOT NULL DEFAULT FALSE,
    has_voted_karobari BOOLEAN NOT NULL DEFAULT FALSE,
    has_voted_trustee BOOLEAN NOT NULL DEFAULT FALSE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    updated_at TIMESTAMP,
    CHECK (phone IS NOT NULL OR email IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS idx_voter_yuva_pankh_zone ON voter(yuva_pankh_zone_id);
CREATE INDEX IF NOT EXISTS idx_voter_karobari_zone ON voter(karobari_zone_id);
CREATE INDEX IF NOT EXISTS idx_voter_trustee_zone ON voter(trustee_zone_id);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'submitted', 'approved', 'rejected')),
    zone_id TEXT NOT NULL REFERENCES zone(id),
    election_type TEXT NOT NULL,
    position TEXT,
    experience TEXT,
    education TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_candidate_zone_id ON candidate(zone_id);

-- Nominations
CREATE TABLE IF NOT EXISTS nomination (
    id TEXT PRIMARY KEY,
    candidate_id TEXT NOT NULL UNIQUE REFERENCES candidate(id) ON DELETE CASCADE,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'submitted', 'approved', 'rejected')),
    rejection_reason TEXT,
    submitted_at TIMESTAMP,
    reviewed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (status <> 'rejected' OR (rejection_reason IS NOT NULL AND rejection_reason <> ''))
);

CREATE INDEX IF NOT EXISTS idx_nomination_status ON nomination(status);

-- Nomination documents (bytes live in object storage)
CREATE TABLE IF NOT EXISTS nomination_document (
    id TEXT PRIMARY KEY,
    nomination_id TEXT NOT NULL REFERENCES nomination(id) ON DELETE CASCADE,
    kind TEXT NOT NULL,
    storage_key TEXT NOT NULL UNIQUE,
    content_type TEXT NOT NULL,
    size_bytes INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_nomination_document_nomination_id ON nomination_document(nomination_id);

-- Ballots (one per voter per election)
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL REFERENCES voter(id),
    zone_id TEXT NOT NULL REFERENCES zone(id),
    election_type TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    UNIQUE (voter_id, election_type)
);

CREATE INDEX IF NOT EXISTS idx_ballot_zone_id ON ballot(zone_id);

-- Vote lines (exactly seat_count per ballot, immutable)
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    ballot_id TEXT NOT NULL REFERENCES ballot(id),
    voter_id TEXT NOT NULL REFERENCES voter(id),
    zone_id TEXT NOT NULL REFERENCES zone(id),
    election_type TEXT NOT NULL,
    candidate_id TEXT REFERENCES candidate(id),
    is_nota BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL,
    CHECK ((is_nota AND candidate_id IS NULL) OR (NOT is_nota AND candidate_id IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_vote_zone_id ON vote(zone_id);
CREATE INDEX IF NOT EXISTS idx_vote_candidate_id ON vote(candidate_id);
CREATE INDEX IF NOT EXISTS idx_vote_ballot_id ON vote(ballot_id);
`
