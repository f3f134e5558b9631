package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/triagestack/triage-engine/internal/models"
	"github.com/triagestack/triage-engine/internal/services"
	"github.com/triagestack/triage-engine/internal/store"
	"github.com/triagestack/triage-engine/internal/triage"
)

// fakeStore is an in-memory DecisionStore for handler tests.
type fakeStore struct {
	records []models.DecisionRecord
}

func (f *fakeStore) SaveDecision(ctx context.Context, record models.DecisionRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeStore) GetDecision(ctx context.Context, id string) (models.DecisionRecord, error) {
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return models.DecisionRecord{}, store.ErrNotFound
}

func (f *fakeStore) ListDecisions(ctx context.Context, req models.ListDecisionsRequest) (models.ListDecisionsResponse, error) {
	var matched []models.DecisionRecord
	for _, r := range f.records {
		if req.Priority == "" || r.Decision.Priority == req.Priority {
			matched = append(matched, r)
		}
	}
	return models.ListDecisionsResponse{Decisions: matched, Total: len(matched)}, nil
}

func newTestServer(t *testing.T, validator *triage.SafetyValidator) (*Server, *fakeStore) {
	t.Helper()
	fs := &fakeStore{}
	engine := triage.NewEngine(nil, validator)
	svc := services.NewTriageService(nil, engine, fs, nil)
	handler := NewHandler(nil, svc, nil)
	return NewServer(":0", time.Second, nil, handler), fs
}

func doRequest(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)
	return w
}

func triageBody(consciousness, assessment string) []byte {
	return []byte(`{
		"age": 34, "heart_rate": 72, "systolic_bp": 120,
		"spo2": 98, "temperature": 36.8,
		"consciousness": "` + consciousness + `",
		"doctor_assessment": "` + assessment + `"
	}`)
}

func TestTriageEndpointStable(t *testing.T) {
	s, fs := newTestServer(t, nil)

	w := doRequest(s, http.MethodPost, "/api/v1/triage", triageBody("alert", "none"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var record models.DecisionRecord
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if record.ID == "" {
		t.Error("response has no id")
	}
	if record.Decision.Priority != models.PriorityStable || record.Decision.Score != 0 {
		t.Errorf("decision = %+v", record.Decision)
	}
	if len(fs.records) != 1 {
		t.Errorf("persisted %d records, want 1", len(fs.records))
	}
}

func TestTriageEndpointRedFlag(t *testing.T) {
	s, _ := newTestServer(t, nil)

	body := []byte(`{
		"age": 45, "heart_rate": 110, "systolic_bp": 100,
		"spo2": 85, "temperature": 37.0,
		"consciousness": "alert", "doctor_assessment": "none"
	}`)
	w := doRequest(s, http.MethodPost, "/api/v1/triage", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var record models.DecisionRecord
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if record.Decision.Priority != models.PriorityCritical || !record.Decision.RedFlagsDetected {
		t.Errorf("decision = %+v", record.Decision)
	}
}

func TestTriageEndpointRejectsUnknownEnum(t *testing.T) {
	s, fs := newTestServer(t, nil)

	w := doRequest(s, http.MethodPost, "/api/v1/triage", triageBody("sleepy", "none"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "consciousness") {
		t.Errorf("body = %s", w.Body.String())
	}
	if len(fs.records) != 0 {
		t.Error("rejected request was persisted")
	}
}

func TestTriageEndpointRejectsMalformedBody(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := doRequest(s, http.MethodPost, "/api/v1/triage", []byte(`{"age":`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTriageEndpointSafetyViolation(t *testing.T) {
	// A validator phrase hit by a fixed template turns into a 500, not a
	// partial decision.
	s, fs := newTestServer(t, triage.NewSafetyValidator([]string{"standard care"}))

	w := doRequest(s, http.MethodPost, "/api/v1/triage", triageBody("alert", "none"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "safety validation") {
		t.Errorf("body = %s", w.Body.String())
	}
	if len(fs.records) != 0 {
		t.Error("withheld decision was persisted")
	}
}

func TestGetDecision(t *testing.T) {
	s, fs := newTestServer(t, nil)

	w := doRequest(s, http.MethodPost, "/api/v1/triage", triageBody("alert", "none"))
	if w.Code != http.StatusOK {
		t.Fatalf("seed request failed: %d", w.Code)
	}
	id := fs.records[0].ID

	w = doRequest(s, http.MethodGet, "/api/v1/decisions/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	w = doRequest(s, http.MethodGet, "/api/v1/decisions/unknown", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListDecisions(t *testing.T) {
	s, _ := newTestServer(t, nil)

	for _, body := range [][]byte{
		triageBody("alert", "none"),
		triageBody("unconscious", "none"),
	} {
		if w := doRequest(s, http.MethodPost, "/api/v1/triage", body); w.Code != http.StatusOK {
			t.Fatalf("seed request failed: %d", w.Code)
		}
	}

	w := doRequest(s, http.MethodGet, "/api/v1/decisions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp models.ListDecisionsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}

	w = doRequest(s, http.MethodGet, "/api/v1/decisions?priority=critical", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("filtered total = %d, want 1", resp.Total)
	}

	w = doRequest(s, http.MethodGet, "/api/v1/decisions?priority=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for an unknown priority", w.Code)
	}

	w = doRequest(s, http.MethodGet, "/api/v1/decisions?limit=-1", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for a negative limit", w.Code)
	}
}

func TestAlertStatusWithoutDispatcher(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := doRequest(s, http.MethodGet, "/api/v1/alerts/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if enabled, _ := resp["enabled"].(bool); enabled {
		t.Error("alerting reported enabled with no dispatcher")
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := doRequest(s, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}
