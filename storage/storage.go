// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"
)

var (
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrNotConfigured          = errors.New("document storage is not configured")
)

// Allowed nomination document types and the extension used in object keys
var contentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// PresignedRequest is a time-limited request the client performs directly
// against object storage
type PresignedRequest struct {
	URL       string
	Method    string
	Headers   map[string]string
	ExpiresAt time.Time
}

// Presigner issues presigned upload and download requests
type Presigner interface {
	PresignUpload(ctx context.Context, key, contentType string, size int64) (PresignedRequest, error)
	PresignDownload(ctx context.Context, key string) (PresignedRequest, error)
}

// NormalizeContentType lower-cases and strips parameters, and rejects
// anything other than PDF, JPEG, or PNG
func NormalizeContentType(ct string) (string, error) {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "image/jpg" {
		ct = "image/jpeg"
	}
	if _, ok := contentTypes[ct]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, ct)
	}
	return ct, nil
}

// ObjectKey builds the storage key for a nomination document
func ObjectKey(prefix, nominationID, documentID, contentType string) string {
	return path.Join(prefix, nominationID, documentID+contentTypes[contentType])
}

func flattenHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		if strings.EqualFold(k, "Host") {
			continue
		}
		out[k] = strings.Join(v, ",")
	}
	return out
}
