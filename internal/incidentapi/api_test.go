package incidentapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/gridwatch/internal/evidence"
	"github.com/linnemanlabs/gridwatch/internal/incident"
	"github.com/linnemanlabs/gridwatch/internal/service"
)

// mockService records calls and returns canned results.
type mockService struct {
	ingestBatch []evidence.Evidence
	ingestRes   service.IngestResult

	queryLimit int
	querySince *time.Time
	queryRows  []incident.Public
}

func (m *mockService) Ingest(_ context.Context, batch []evidence.Evidence) service.IngestResult {
	m.ingestBatch = batch
	return m.ingestRes
}

func (m *mockService) Query(_ context.Context, limit int, since *time.Time) []incident.Public {
	m.queryLimit = limit
	m.querySince = since
	return m.queryRows
}

func newTestRouter(svc *mockService, mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	api := New(nil, svc)
	api.RegisterRoutes(r, mw...)
	return r
}

func TestRouting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"ingest accepts batch", http.MethodPost, "/api/v1/evidence", "[]", http.StatusAccepted},
		{"ingest rejects get", http.MethodGet, "/api/v1/evidence", "", http.StatusMethodNotAllowed},
		{"list incidents", http.MethodGet, "/api/v1/incidents", "", http.StatusOK},
		{"list rejects post", http.MethodPost, "/api/v1/incidents", "[]", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodGet, "/api/v1/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(&mockService{})
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestIngest_AcceptsBatch(t *testing.T) {
	t.Parallel()

	svc := &mockService{ingestRes: service.IngestResult{Accepted: 2}}
	router := newTestRouter(svc)

	body := `[
		{"evidence_id":"a","source_type":"open311","type":"road_closure","lat":40.713,"lng":-74.006,"confidence":0.9},
		{"evidence_id":"b","source_type":"news","type":"road_closure","lat":40.713,"lng":-74.006,"confidence":0.6}
	]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evidence", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if len(svc.ingestBatch) != 2 {
		t.Fatalf("batch size forwarded = %d, want 2", len(svc.ingestBatch))
	}
	if svc.ingestBatch[0].EvidenceID != "a" || svc.ingestBatch[0].Lat != 40.713 {
		t.Errorf("first record = %+v, want decoded values", svc.ingestBatch[0])
	}

	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["count"] != 2 || resp["accepted"] != 2 || resp["rejected"] != 0 {
		t.Errorf("response = %v, want count/accepted 2, rejected 0", resp)
	}
}

func TestIngest_MissingCoordinatesRejectedIndividually(t *testing.T) {
	t.Parallel()

	svc := &mockService{ingestRes: service.IngestResult{Accepted: 1}}
	router := newTestRouter(svc)

	body := `[
		{"evidence_id":"a","source_type":"open311","type":"road_closure","lat":40.713,"lng":-74.006,"confidence":0.9},
		{"evidence_id":"no-coords","source_type":"open311","type":"road_closure","confidence":0.9}
	]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evidence", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (partial batches still accepted)", rec.Code)
	}
	if len(svc.ingestBatch) != 1 {
		t.Errorf("batch size forwarded = %d, want 1", len(svc.ingestBatch))
	}

	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["accepted"] != 1 || resp["rejected"] != 1 {
		t.Errorf("response = %v, want accepted 1, rejected 1", resp)
	}
}

func TestIngest_ZeroCoordinatesAreValid(t *testing.T) {
	t.Parallel()

	svc := &mockService{ingestRes: service.IngestResult{Accepted: 1}}
	router := newTestRouter(svc)

	body := `[{"evidence_id":"a","source_type":"manual","type":"emergency","lat":0,"lng":0,"confidence":0.5}]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evidence", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if len(svc.ingestBatch) != 1 {
		t.Errorf("batch size forwarded = %d, want 1 (explicit 0,0 is a real location)", len(svc.ingestBatch))
	}
}

func TestIngest_MalformedJSON(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evidence", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListIncidents_Defaults(t *testing.T) {
	t.Parallel()

	svc := &mockService{queryRows: []incident.Public{{ID: "road_closure:40.713,-74.006", Type: "road_closure"}}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/incidents", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.queryLimit != service.DefaultLimit {
		t.Errorf("limit forwarded = %d, want default %d", svc.queryLimit, service.DefaultLimit)
	}
	if svc.querySince != nil {
		t.Errorf("since forwarded = %v, want nil", svc.querySince)
	}

	var resp struct {
		Data []incident.Public `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "road_closure:40.713,-74.006" {
		t.Errorf("data = %+v, want the canned row", resp.Data)
	}
}

func TestListIncidents_Params(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/incidents?limit=5&since=2026-03-01T12:00:00Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.queryLimit != 5 {
		t.Errorf("limit forwarded = %d, want 5", svc.queryLimit)
	}
	want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if svc.querySince == nil || !svc.querySince.Equal(want) {
		t.Errorf("since forwarded = %v, want %v", svc.querySince, want)
	}
}

func TestListIncidents_BadParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{"limit not a number", "?limit=abc"},
		{"limit zero", "?limit=0"},
		{"limit negative", "?limit=-5"},
		{"limit above max", "?limit=101"},
		{"since not a timestamp", "?since=yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(&mockService{})
			req := httptest.NewRequest(http.MethodGet, "/api/v1/incidents"+tt.query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestIngestMiddlewareAppliedToMutationOnly(t *testing.T) {
	t.Parallel()

	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "denied", http.StatusUnauthorized)
		})
	}
	router := newTestRouter(&mockService{}, deny)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evidence", strings.NewReader("[]"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ingest status = %d, want 401 behind middleware", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/incidents", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("query status = %d, want 200 without middleware", rec.Code)
	}
}
