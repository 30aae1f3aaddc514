// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth holds the small amount of credential handling the election
API needs.

# Admin Key

Admin routes compare the X-Admin-Key header against the configured key in
constant time:

	if err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey); err != nil {
		// 401
	}

An empty configured key never validates.

# IDs

Record IDs are random UUIDs:

	id := auth.NewID()

Zone IDs are not random; see db.ZoneID.

# IP Hashing

Ballots keep a salted hash of the client address rather than the address:

	hash := auth.HashIP(ip, cfg.IPHashSalt)

The hash is the first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
