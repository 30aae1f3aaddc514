// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a validated Config:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are read first (via envconfig), then CLI flags
override them.

# Environment Variables

	PORT               → -p            (default 3318)
	DATABASE_URL       → -d            (required)
	DATABASE_TYPE      → -t            postgres or sqlite (default postgres)
	ADMIN_KEY          → -admin-key    (required)
	IP_HASH_SALT       → -ip-salt      (required)
	RESULTS_CACHE_TTL  → -results-ttl  (default 30s, 0 disables)
	DOCUMENT_BUCKET    → -bucket       S3 bucket; empty disables uploads
	DOCUMENT_PREFIX                    key prefix (default "nominations")
	AWS_REGION                         region for the S3 client
	PRESIGN_TTL                        presigned URL lifetime (default 15m)
	MAX_DOCUMENT_SIZE                  e.g. "10MB" or "5 MiB" (default 10MB)
	LOG_FORMAT                         auto, text or json (default auto)
	LOG_LEVEL                          debug, info, warn or error

# Validation

ParseFlags returns an error if DATABASE_URL, ADMIN_KEY or IP_HASH_SALT is
missing, or if a duration or size cannot be parsed. MaxDocumentBytes is
derived from MAX_DOCUMENT_SIZE during validation.
*/
package cliparse
