// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/samaj-vote/auth"
	"github.com/danielhkuo/samaj-vote/cliparse"
	"github.com/danielhkuo/samaj-vote/db"
	"github.com/danielhkuo/samaj-vote/models"
	"github.com/danielhkuo/samaj-vote/storage"
)

// TestAdminKey is the admin key in GetTestConfig
const TestAdminKey = "test-admin-key"

// SetupTestDB opens a fresh in-memory SQLite database with the full schema.
// It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      ":memory:",
		DatabaseType:     db.TypeSQLite,
		AdminKey:         TestAdminKey,
		IPHashSalt:       "test-ip-salt",
		ResultsCacheTTL:  time.Minute,
		DocumentPrefix:   "nominations",
		PresignTTL:       15 * time.Minute,
		MaxDocumentSize:  "1MB",
		MaxDocumentBytes: 1000 * 1000,
	}
}

// AdminHeaders returns headers carrying the test admin key
func AdminHeaders() map[string]string {
	return map[string]string{"X-Admin-Key": TestAdminKey}
}

// CreateTestZone inserts a zone and returns it
func CreateTestZone(t *testing.T, conn *sql.DB, e models.ElectionType, code string, seats int) models.Zone {
	t.Helper()

	z := models.Zone{
		ID:           db.ZoneID(e, code),
		Code:         code,
		Name:         code,
		SeatCount:    seats,
		ElectionType: e,
	}
	_, err := conn.Exec(`
		INSERT INTO zone (id, code, name, seat_count, election_type, is_frozen)
		VALUES ($1, $2, $3, $4, $5, FALSE)
	`, z.ID, z.Code, z.Name, z.SeatCount, string(z.ElectionType))
	if err != nil {
		t.Fatalf("Failed to create test zone: %v", err)
	}
	return z
}

// VoterOption customises a test voter before it is inserted
type VoterOption func(*models.Voter)

// WithZone assigns the voter to a zone for the zone's election
func WithZone(z models.Zone) VoterOption {
	return func(v *models.Voter) {
		id := z.ID
		switch z.ElectionType {
		case models.ElectionYuvaPankh:
			v.YuvaPankhZoneID = &id
		case models.ElectionKarobari:
			v.KarobariZoneID = &id
		case models.ElectionTrustee:
			v.TrusteeZoneID = &id
		}
	}
}

// WithDOB sets the date of birth (DD/MM/YYYY)
func WithDOB(dob string) VoterOption {
	return func(v *models.Voter) { v.DOB = &dob }
}

// WithRegion sets the free-text region
func WithRegion(region string) VoterOption {
	return func(v *models.Voter) { v.Region = region }
}

// Inactive marks the voter inactive
func Inactive() VoterOption {
	return func(v *models.Voter) { v.IsActive = false }
}

var voterSeq struct {
	sync.Mutex
	n int
}

// CreateTestVoter inserts an active adult voter and returns it
func CreateTestVoter(t *testing.T, conn *sql.DB, opts ...VoterOption) models.Voter {
	t.Helper()

	voterSeq.Lock()
	voterSeq.n++
	seq := voterSeq.n
	voterSeq.Unlock()

	phone := fmt.Sprintf("+91900000%04d", seq)
	dob := "15/06/1990"
	v := models.Voter{
		ID:        auth.NewID(),
		VoterCode: fmt.Sprintf("V%05d", seq),
		Name:      fmt.Sprintf("Voter %d", seq),
		Phone:     &phone,
		DOB:       &dob,
		Region:    "Mumbai",
		IsActive:  true,
	}
	for _, opt := range opts {
		opt(&v)
	}

	_, err := conn.Exec(`
		INSERT INTO voter (id, voter_code, name, phone, email, dob, region,
		                   yuva_pankh_zone_id, karobari_zone_id, trustee_zone_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, v.ID, v.VoterCode, v.Name, v.Phone, v.Email, v.DOB, v.Region,
		v.YuvaPankhZoneID, v.KarobariZoneID, v.TrusteeZoneID, v.IsActive)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}
	return v
}

// CreateTestCandidate inserts a candidate in the given status and returns its ID
func CreateTestCandidate(t *testing.T, conn *sql.DB, z models.Zone, name, status string) string {
	t.Helper()

	id := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO candidate (id, name, status, zone_id, election_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, name, status, z.ID, string(z.ElectionType), time.Now())
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return id
}

// CreateTestNomination inserts a candidate with a nomination in the given
// status and returns the nomination and candidate IDs
func CreateTestNomination(t *testing.T, conn *sql.DB, z models.Zone, name, status string) (nominationID, candidateID string) {
	t.Helper()

	candidateID = CreateTestCandidate(t, conn, z, name, status)
	nominationID = auth.NewID()

	var reason *string
	if status == models.StatusRejected {
		r := "incomplete documents"
		reason = &r
	}
	_, err := conn.Exec(`
		INSERT INTO nomination (id, candidate_id, status, rejection_reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, nominationID, candidateID, status, reason, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test nomination: %v", err)
	}
	return nominationID, candidateID
}

// AddTestDocument records a document against a nomination and returns its ID
func AddTestDocument(t *testing.T, conn *sql.DB, nominationID string) string {
	t.Helper()

	id := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO nomination_document (id, nomination_id, kind, storage_key, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, nominationID, "photo_id", storage.ObjectKey("nominations", nominationID, id, "application/pdf"),
		"application/pdf", 2048, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test document: %v", err)
	}
	return id
}

// FakePresigner returns deterministic URLs without contacting S3
type FakePresigner struct {
	mu      sync.Mutex
	Uploads []string
	Err     error
}

func (f *FakePresigner) PresignUpload(ctx context.Context, key, contentType string, size int64) (storage.PresignedRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return storage.PresignedRequest{}, f.Err
	}
	f.Uploads = append(f.Uploads, key)
	return storage.PresignedRequest{
		URL:       "https://bucket.example/" + key + "?X-Amz-Signature=fake",
		Method:    http.MethodPut,
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func (f *FakePresigner) PresignDownload(ctx context.Context, key string) (storage.PresignedRequest, error) {
	if f.Err != nil {
		return storage.PresignedRequest{}, f.Err
	}
	return storage.PresignedRequest{
		URL:       "https://bucket.example/" + key + "?X-Amz-Signature=fake",
		Method:    http.MethodGet,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
