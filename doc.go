// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the samaj-vote API server.

samaj-vote runs the community elections: Yuva Pankh, Karobari Samiti and
Trustee. Each election is split into zones with a fixed number of seats.
Every ballot records exactly one line per seat, and seats a voter leaves
empty are recorded as NOTA once the voter confirms.

# Starting the Server

The server reads a .env file if present, then environment variables, then
CLI flags:

	DATABASE_URL=postgres://... ADMIN_KEY=... IP_HASH_SALT=... go run .

Or against SQLite for local work:

	go run . -t sqlite -d "file:samaj.db" -admin-key dev -ip-salt dev

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string or SQLite path
  - ADMIN_KEY (-admin-key): key for /admin routes
  - IP_HASH_SALT (-ip-salt): salt for hashing client IPs on ballots

Optional settings are listed in package cliparse. Setting DOCUMENT_BUCKET
enables nomination document uploads through S3 presigned URLs.

On startup the schema is created and the embedded zone registry is
upserted, so a fresh database is immediately usable.

# Architecture

  - election: eligibility, ballot validation and submission, turnout, results
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, admin key, JSON helpers
  - models: Domain and request/response types
  - db: Connection, schema and zone registry
  - storage: S3 presigning for nomination documents
  - metrics: Prometheus collectors
  - logging: slog setup
  - auth: IDs, admin key check, IP hashing
  - cliparse: Configuration parsing

The votectl command (cmd/votectl) seeds zones and prints turnout and
results from the terminal.
*/
package main
