// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/samaj-vote/cliparse"
	"github.com/danielhkuo/samaj-vote/election"
	"github.com/danielhkuo/samaj-vote/middleware"
	"github.com/danielhkuo/samaj-vote/models"
	"github.com/danielhkuo/samaj-vote/storage"
)

// AdminHandler serves the X-Admin-Key protected routes. The key itself is
// checked by middleware.RequireAdmin.
type AdminHandler struct {
	db        *sql.DB
	cfg       cliparse.Config
	presigner storage.Presigner
	composer  *election.Composer
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config, presigner storage.Presigner, composer *election.Composer) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg, presigner: presigner, composer: composer}
}

// ListNominations handles GET /admin/nominations?status=
func (h *AdminHandler) ListNominations(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	query := nominationSelect
	var args []any
	if status != "" {
		switch status {
		case models.StatusPending, models.StatusSubmitted, models.StatusApproved, models.StatusRejected:
		default:
			middleware.ErrorResponse(w, http.StatusBadRequest, "status must be pending, submitted, approved or rejected")
			return
		}
		query += ` WHERE n.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY n.created_at, n.id`

	rows, err := h.db.QueryContext(r.Context(), query, args...)
	if err != nil {
		slog.Error("failed to query nominations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	nominations := []models.Nomination{}
	for rows.Next() {
		n, err := scanNomination(rows.Scan)
		if err != nil {
			slog.Error("failed to scan nomination", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		nominations = append(nominations, n)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate nominations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, nominations)
}

// ApproveNomination handles POST /admin/nominations/{id}/approve
func (h *AdminHandler) ApproveNomination(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, models.StatusApproved, "")
}

// RejectNomination handles POST /admin/nominations/{id}/reject
func (h *AdminHandler) RejectNomination(w http.ResponseWriter, r *http.Request) {
	var req models.RejectNominationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "reason is required")
		return
	}
	h.review(w, r, models.StatusRejected, reason)
}

// review moves a pending or submitted nomination to a final status and
// mirrors it onto the candidate in the same transaction
func (h *AdminHandler) review(w http.ResponseWriter, r *http.Request, status, reason string) {
	nominationID := r.PathValue("id")
	if nominationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nomination_id is required")
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var current, candidateID string
	err = tx.QueryRowContext(r.Context(), `
		SELECT status, candidate_id FROM nomination WHERE id = $1
	`, nominationID).Scan(&current, &candidateID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Nomination not found")
		return
	}
	if err != nil {
		slog.Error("failed to query nomination", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if current != models.StatusPending && current != models.StatusSubmitted {
		middleware.ErrorResponse(w, http.StatusConflict, "Nomination has already been reviewed")
		return
	}

	res, err := tx.ExecContext(r.Context(), `
		UPDATE nomination
		SET status = $1, rejection_reason = $2, reviewed_at = $3
		WHERE id = $4 AND status IN ($5, $6)
	`, status, nullIfEmpty(reason), time.Now(), nominationID, models.StatusPending, models.StatusSubmitted)
	if err != nil {
		slog.Error("failed to update nomination", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to review nomination")
		return
	}
	if n, _ := res.RowsAffected(); n != 1 {
		middleware.ErrorResponse(w, http.StatusConflict, "Nomination has already been reviewed")
		return
	}

	_, err = tx.ExecContext(r.Context(), `
		UPDATE candidate SET status = $1 WHERE id = $2
	`, status, candidateID)
	if err != nil {
		slog.Error("failed to update candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to review nomination")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to review nomination")
		return
	}

	slog.Info("nomination reviewed",
		"nomination_id", nominationID,
		"candidate_id", candidateID,
		"status", status,
	)

	n, err := loadNomination(r.Context(), h.db, nominationID)
	if err != nil {
		slog.Error("failed to load nomination", "error", err, "nomination_id", nominationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, n)
}

// GetDocumentURL handles GET /admin/nominations/{id}/documents/{docID}/url
func (h *AdminHandler) GetDocumentURL(w http.ResponseWriter, r *http.Request) {
	nominationID := r.PathValue("id")
	documentID := r.PathValue("docID")
	if nominationID == "" || documentID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nomination_id and document_id are required")
		return
	}

	if h.presigner == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, storage.ErrNotConfigured.Error())
		return
	}

	var key string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT storage_key FROM nomination_document WHERE id = $1 AND nomination_id = $2
	`, documentID, nominationID).Scan(&key)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Document not found")
		return
	}
	if err != nil {
		slog.Error("failed to query document", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	presigned, err := h.presigner.PresignDownload(r.Context(), key)
	if err != nil {
		slog.Error("failed to presign download", "error", err, "document_id", documentID)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to prepare download")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PresignedURLResponse{
		DocumentID: documentID,
		StorageKey: key,
		URL:        presigned.URL,
		Method:     presigned.Method,
		Headers:    presigned.Headers,
		ExpiresAt:  presigned.ExpiresAt,
	})
}

// FreezeZone handles POST /admin/zones/{id}/freeze
// A frozen zone rejects new ballots; counts remain readable
func (h *AdminHandler) FreezeZone(w http.ResponseWriter, r *http.Request) {
	zoneID := r.PathValue("id")
	if zoneID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "zone_id is required")
		return
	}

	var req models.FreezeZoneRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Frozen == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "frozen is required")
		return
	}

	res, err := h.db.ExecContext(r.Context(), `
		UPDATE zone SET is_frozen = $1 WHERE id = $2
	`, *req.Frozen, zoneID)
	if err != nil {
		slog.Error("failed to update zone", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, _ := res.RowsAffected(); n != 1 {
		writeDomainError(w, election.ErrZoneNotFound, "failed to freeze zone")
		return
	}

	zone, err := election.GetZone(r.Context(), h.db, zoneID)
	if err != nil {
		writeDomainError(w, err, "failed to query zone", "zone_id", zoneID)
		return
	}
	if h.composer != nil {
		h.composer.Invalidate(zone.ElectionType)
	}

	slog.Info("zone freeze updated", "zone_id", zone.ID, "zone_code", zone.Code, "frozen", zone.IsFrozen)

	middleware.JSONResponse(w, http.StatusOK, zone)
}
