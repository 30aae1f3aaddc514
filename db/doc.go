// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db manages the database connection, schema, and zone registry.

# Connecting

Open accepts "postgres" (lib/pq) or "sqlite" (modernc.org/sqlite) and
retries the initial ping:

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections are limited to one open connection.

# Schema

CreateSchema creates all tables with IF NOT EXISTS:

  - zone: code, names, seat_count, election_type, is_frozen
  - voter: contact, dob, region, one zone and has-voted flag per election
  - candidate: status, zone, position, experience/education profiles
  - nomination, nomination_document: review workflow and uploaded files
  - ballot: one row per (voter, election), UNIQUE
  - vote: seat_count lines per ballot, candidate_id NULL for NOTA

The DDL is limited to what both PostgreSQL and SQLite accept.

# Zone Registry

The default registry is embedded from zones.yaml. Zone IDs are UUIDv5
values derived from (election, code):

	zones, err := db.DefaultRegistry()
	err = db.SeedZones(ctx, conn, zones)

Reseeding updates names and seat counts and keeps the frozen flag.
*/
package db
