// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/samaj-vote/auth"
	"github.com/danielhkuo/samaj-vote/cliparse"
	"github.com/danielhkuo/samaj-vote/election"
	"github.com/danielhkuo/samaj-vote/middleware"
	"github.com/danielhkuo/samaj-vote/models"
	"github.com/danielhkuo/samaj-vote/storage"
)

var errNominationNotFound = errors.New("nomination not found")

type NominationHandler struct {
	db        *sql.DB
	cfg       cliparse.Config
	presigner storage.Presigner
}

// NewNominationHandler creates the candidate-facing nomination handler.
// presigner may be nil, in which case document uploads return 503.
func NewNominationHandler(db *sql.DB, cfg cliparse.Config, presigner storage.Presigner) *NominationHandler {
	return &NominationHandler{db: db, cfg: cfg, presigner: presigner}
}

// CreateNomination handles POST /nominations
func (h *NominationHandler) CreateNomination(w http.ResponseWriter, r *http.Request) {
	var req models.CreateNominationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.ZoneID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "zone_id is required")
		return
	}

	zone, err := election.GetZone(r.Context(), h.db, req.ZoneID)
	if err != nil {
		writeDomainError(w, err, "failed to query zone", "zone_id", req.ZoneID)
		return
	}

	candidateID := auth.NewID()
	nominationID := auth.NewID()
	now := time.Now()

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO candidate (id, name, status, zone_id, election_type, position, experience, education, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, candidateID, req.Name, models.StatusPending, zone.ID, string(zone.ElectionType),
		nullIfEmpty(req.Position), req.Experience, req.Education, now)
	if err != nil {
		slog.Error("failed to insert candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create nomination")
		return
	}

	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO nomination (id, candidate_id, status, created_at)
		VALUES ($1, $2, $3, $4)
	`, nominationID, candidateID, models.StatusPending, now)
	if err != nil {
		slog.Error("failed to insert nomination", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create nomination")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create nomination")
		return
	}

	slog.Info("nomination created",
		"nomination_id", nominationID,
		"candidate_id", candidateID,
		"zone", zone.Code,
		"election", zone.ElectionType,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateNominationResponse{
		NominationID: nominationID,
		CandidateID:  candidateID,
	})
}

// GetNomination handles GET /nominations/{id}
func (h *NominationHandler) GetNomination(w http.ResponseWriter, r *http.Request) {
	nominationID := r.PathValue("id")
	if nominationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nomination_id is required")
		return
	}

	n, err := loadNomination(r.Context(), h.db, nominationID)
	if errors.Is(err, errNominationNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Nomination not found")
		return
	}
	if err != nil {
		slog.Error("failed to load nomination", "error", err, "nomination_id", nominationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, n)
}

// RequestUpload handles POST /nominations/{id}/documents
// Records the document and returns a presigned PUT; the bytes go straight
// to object storage
func (h *NominationHandler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	nominationID := r.PathValue("id")
	if nominationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nomination_id is required")
		return
	}

	if h.presigner == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, storage.ErrNotConfigured.Error())
		return
	}

	var req models.RequestUploadRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Kind) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "kind is required")
		return
	}
	contentType, err := storage.NormalizeContentType(req.ContentType)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnsupportedMediaType, "content_type must be PDF, JPEG or PNG")
		return
	}
	if req.SizeBytes <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "size_bytes must be positive")
		return
	}
	if req.SizeBytes > h.cfg.MaxDocumentBytes {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf(
			"document is %s; the limit is %s",
			humanize.Bytes(uint64(req.SizeBytes)), humanize.Bytes(uint64(h.cfg.MaxDocumentBytes)),
		))
		return
	}

	var status string
	err = h.db.QueryRowContext(r.Context(), "SELECT status FROM nomination WHERE id = $1", nominationID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Nomination not found")
		return
	}
	if err != nil {
		slog.Error("failed to query nomination", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if status != models.StatusPending {
		middleware.ErrorResponse(w, http.StatusConflict, "Documents can only be added to a pending nomination")
		return
	}

	documentID := auth.NewID()
	key := storage.ObjectKey(h.cfg.DocumentPrefix, nominationID, documentID, contentType)

	presigned, err := h.presigner.PresignUpload(r.Context(), key, contentType, req.SizeBytes)
	if err != nil {
		slog.Error("failed to presign upload", "error", err, "nomination_id", nominationID)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to prepare upload")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO nomination_document (id, nomination_id, kind, storage_key, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, documentID, nominationID, req.Kind, key, contentType, req.SizeBytes, time.Now())
	if err != nil {
		slog.Error("failed to insert nomination document", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record document")
		return
	}

	slog.Info("document upload issued",
		"nomination_id", nominationID,
		"document_id", documentID,
		"kind", req.Kind,
		"size", humanize.Bytes(uint64(req.SizeBytes)),
	)

	middleware.JSONResponse(w, http.StatusCreated, models.PresignedURLResponse{
		DocumentID: documentID,
		StorageKey: key,
		URL:        presigned.URL,
		Method:     presigned.Method,
		Headers:    presigned.Headers,
		ExpiresAt:  presigned.ExpiresAt,
	})
}

// SubmitNomination handles POST /nominations/{id}/submit
// pending → submitted; at least one document is required
func (h *NominationHandler) SubmitNomination(w http.ResponseWriter, r *http.Request) {
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

	var status, candidateID string
	var documentCount int
	err = tx.QueryRowContext(r.Context(), `
		SELECT n.status, n.candidate_id, COUNT(d.id)
		FROM nomination n
		LEFT JOIN nomination_document d ON d.nomination_id = n.id
		WHERE n.id = $1
		GROUP BY n.status, n.candidate_id
	`, nominationID).Scan(&status, &candidateID, &documentCount)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Nomination not found")
		return
	}
	if err != nil {
		slog.Error("failed to query nomination", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusPending {
		middleware.ErrorResponse(w, http.StatusConflict, "Nomination is not pending")
		return
	}
	if documentCount == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "At least one document is required")
		return
	}

	now := time.Now()
	res, err := tx.ExecContext(r.Context(), `
		UPDATE nomination
		SET status = $1, submitted_at = $2
		WHERE id = $3 AND status = $4
	`, models.StatusSubmitted, now, nominationID, models.StatusPending)
	if err != nil {
		slog.Error("failed to submit nomination", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit nomination")
		return
	}
	if n, _ := res.RowsAffected(); n != 1 {
		middleware.ErrorResponse(w, http.StatusConflict, "Nomination is not pending")
		return
	}

	_, err = tx.ExecContext(r.Context(), `
		UPDATE candidate SET status = $1 WHERE id = $2
	`, models.StatusSubmitted, candidateID)
	if err != nil {
		slog.Error("failed to update candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit nomination")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit nomination")
		return
	}

	slog.Info("nomination submitted", "nomination_id", nominationID, "documents", documentCount)

	n, err := loadNomination(r.Context(), h.db, nominationID)
	if err != nil {
		slog.Error("failed to load nomination", "error", err, "nomination_id", nominationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, n)
}

const nominationSelect = `
	SELECT n.id, n.candidate_id, n.status, n.rejection_reason, n.submitted_at, n.reviewed_at, n.created_at,
	       c.id, c.name, c.status, c.zone_id, c.election_type, c.position, c.experience, c.education, c.created_at
	FROM nomination n
	JOIN candidate c ON c.id = n.candidate_id
`

func scanNomination(scan func(dest ...any) error) (models.Nomination, error) {
	var n models.Nomination
	var c models.Candidate
	var position sql.NullString
	err := scan(
		&n.ID, &n.CandidateID, &n.Status, &n.RejectionReason, &n.SubmittedAt, &n.ReviewedAt, &n.CreatedAt,
		&c.ID, &c.Name, &c.Status, &c.ZoneID, &c.ElectionType, &position, &c.Experience, &c.Education, &c.CreatedAt,
	)
	if err != nil {
		return n, err
	}
	c.Position = position.String
	n.Candidate = &c
	n.Documents = []models.NominationDocument{}
	return n, nil
}

// loadNomination returns a nomination with its candidate and documents
func loadNomination(ctx context.Context, db *sql.DB, id string) (models.Nomination, error) {
	n, err := scanNomination(db.QueryRowContext(ctx, nominationSelect+` WHERE n.id = $1`, id).Scan)
	if err == sql.ErrNoRows {
		return n, errNominationNotFound
	}
	if err != nil {
		return n, fmt.Errorf("failed to query nomination: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, nomination_id, kind, storage_key, content_type, size_bytes, created_at
		FROM nomination_document
		WHERE nomination_id = $1
		ORDER BY created_at, id
	`, id)
	if err != nil {
		return n, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.NominationDocument
		if err := rows.Scan(&d.ID, &d.NominationID, &d.Kind, &d.StorageKey, &d.ContentType, &d.SizeBytes, &d.CreatedAt); err != nil {
			return n, fmt.Errorf("failed to scan document: %w", err)
		}
		n.Documents = append(n.Documents, d)
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return n, nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
