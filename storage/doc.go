// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package storage presigns object-storage requests for nomination documents.

The API never handles document bytes. Candidates upload with a presigned
PUT and admins review with a presigned GET:

	p, err := storage.NewS3Presigner(ctx, cfg.DocumentBucket, cfg.AWSRegion,
		storage.WithExpiry(cfg.PresignTTL))
	req, err := p.PresignUpload(ctx, key, "application/pdf", size)

Only PDF, JPEG, and PNG are accepted (NormalizeContentType). Keys are
laid out as <prefix>/<nomination_id>/<document_id>.<ext> (ObjectKey).
*/
package storage
