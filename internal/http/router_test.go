// README: End-to-end handler tests over a bolt-backed request service.
package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	bolt "go.etcd.io/bbolt"

	httptransport "campd/internal/http"
	"campd/internal/http/middleware"
	"campd/internal/modules/catalog"
	"campd/internal/modules/location"
	"campd/internal/modules/pricing"
	"campd/internal/modules/request"
)

const testKey = "campus-secret"

func buildTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := bolt.Open(filepath.Join(t.TempDir(), "api.db"), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store, err := request.NewBoltStore(db)
	if err != nil {
		t.Fatalf("bolt store: %v", err)
	}

	campuses, err := catalog.New(catalog.DefaultCampuses())
	if err != nil {
		t.Fatalf("campuses: %v", err)
	}
	bases, err := catalog.New(catalog.DefaultShopperBases())
	if err != nil {
		t.Fatalf("bases: %v", err)
	}
	svc := request.NewService(
		store,
		pricing.NewService(nil, bases, pricing.PresetStandard),
		location.NewService(campuses, nil, nil),
		nil,
	)
	return httptransport.NewRouter(httptransport.RouterDeps{
		Requests:  svc,
		Campuses:  campuses,
		Bases:     bases,
		AccessKey: testKey,
	})
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AccessKeyHeader, testKey)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func createBody() map[string]any {
	return map[string]any{
		"requester_name":          "Aminata Kamara",
		"requester_contact":       "+23276123456",
		"location":                "FBC",
		"item_description":        "rice, 1 cup",
		"preferred_shopper_base":  "Congo Cross",
		"requested_delivery_time": "13:00",
	}
}

func mustCreate(t *testing.T, r *gin.Engine) request.DeliveryRequest {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/requests", createBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created request.DeliveryRequest
	decode(t, w, &created)
	return created
}

func TestHealthBypassesAccessKey(t *testing.T) {
	r := buildTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}
}

func TestQuoteEndpoint(t *testing.T) {
	r := buildTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/quotes", map[string]any{"location": "fbc"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res request.QuoteResult
	decode(t, w, &res)
	if len(res.Table.Quotes) != 5 || res.Table.Preset != pricing.PresetStandard {
		t.Fatalf("unexpected table: %+v", res.Table)
	}

	tests := []struct {
		name string
		body any
		want int
	}{
		{name: "no origin", body: map[string]any{}, want: http.StatusBadRequest},
		{name: "unknown location", body: map[string]any{"location": "Atlantis"}, want: http.StatusBadRequest},
		{name: "bad coordinates", body: map[string]any{"origin": map[string]any{"lat": 123, "lng": 0}}, want: http.StatusBadRequest},
		{name: "bad flat coordinates", body: map[string]any{"lat": 8.48, "lng": 200}, want: http.StatusBadRequest},
		{name: "lat without lng", body: map[string]any{"lat": 8.48}, want: http.StatusBadRequest},
		{name: "unknown preset", body: map[string]any{"location": "FBC", "preset": "gold"}, want: http.StatusUnprocessableEntity},
		{name: "origin object", body: map[string]any{"origin": map[string]any{"lat": 8.4840, "lng": -13.2317}}, want: http.StatusOK},
		{name: "flat lat lng", body: map[string]any{"lat": 8.4840, "lng": -13.2317, "preset": "legacy"}, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doRequest(r, http.MethodPost, "/api/quotes", tt.body); w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestRequestLifecycleEndpoints(t *testing.T) {
	r := buildTestRouter(t)
	created := mustCreate(t, r)
	if created.Status != request.StatusPending || created.AssignedShopper != request.Unassigned {
		t.Fatalf("unexpected created request: %+v", created)
	}
	base := "/api/requests/" + string(created.TrackingID)

	if w := doRequest(r, http.MethodPost, base+"/deliver", map[string]any{"shopper_id": "S1"}); w.Code != http.StatusConflict {
		t.Fatalf("deliver pending: expected 409, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodPost, base+"/accept", map[string]any{"shopper_id": "S1", "name": "Fatmata"}); w.Code != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := doRequest(r, http.MethodPost, base+"/accept", map[string]any{"shopper_id": "S2"}); w.Code != http.StatusConflict {
		t.Fatalf("second accept: expected 409, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodPost, base+"/deliver", map[string]any{"shopper_id": "S2"}); w.Code != http.StatusForbidden {
		t.Fatalf("deliver by other shopper: expected 403, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodPost, base+"/transition", map[string]any{"event": "deliver", "actor": "S1"}); w.Code != http.StatusOK {
		t.Fatalf("transition deliver: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := doRequest(r, http.MethodPost, base+"/rate", map[string]any{"rating": 9}); w.Code != http.StatusBadRequest {
		t.Fatalf("rate 9: expected 400, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodPost, base+"/rate", map[string]any{"rating": 5}); w.Code != http.StatusOK {
		t.Fatalf("rate: expected 200, got %d", w.Code)
	}

	w := doRequest(r, http.MethodGet, base, nil)
	var got request.DeliveryRequest
	decode(t, w, &got)
	if got.Status != request.StatusDelivered || got.Rating == nil || *got.Rating != 5 {
		t.Fatalf("unexpected stored request: %+v", got)
	}
	if got.Surcharge != created.Surcharge {
		t.Fatalf("surcharge changed: %+v -> %+v", created.Surcharge, got.Surcharge)
	}

	w = doRequest(r, http.MethodGet, base+"/events", nil)
	var events struct {
		Events []request.Event `json:"events"`
	}
	decode(t, w, &events)
	if len(events.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events.Events))
	}

	w = doRequest(r, http.MethodGet, "/api/requests?status=delivered&shopper=S1", nil)
	var list struct {
		Requests []request.DeliveryRequest `json:"requests"`
	}
	decode(t, w, &list)
	if len(list.Requests) != 1 {
		t.Fatalf("expected 1 listed request, got %d", len(list.Requests))
	}

	w = doRequest(r, http.MethodGet, "/api/requests?status=Delivered", nil)
	decode(t, w, &list)
	if len(list.Requests) != 1 {
		t.Fatalf("mixed-case status filter listed %d requests, want 1", len(list.Requests))
	}
	if w := doRequest(r, http.MethodGet, "/api/requests?status=lost", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status filter: expected 400, got %d", w.Code)
	}
}

func TestCreateValidation(t *testing.T) {
	r := buildTestRouter(t)

	body := createBody()
	delete(body, "item_description")
	w := doRequest(r, http.MethodPost, "/api/requests", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp struct {
		Field string `json:"field"`
	}
	decode(t, w, &resp)
	if resp.Field != "item_description" {
		t.Fatalf("field = %q, want item_description", resp.Field)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/requests", bytes.NewBufferString("{"))
	req.Header.Set(middleware.AccessKeyHeader, testKey)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid json: expected 400, got %d", rec.Code)
	}
}

func TestNotFoundAndBadIDs(t *testing.T) {
	r := buildTestRouter(t)
	if w := doRequest(r, http.MethodGet, "/api/requests/ABCDEF01", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/requests/bad-id!", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/requests?limit=-1", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", w.Code)
	}
}

func TestConcurrentAcceptOverHTTP(t *testing.T) {
	r := buildTestRouter(t)
	created := mustCreate(t, r)
	path := "/api/requests/" + string(created.TrackingID) + "/accept"

	const n = 8
	codes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes <- doRequest(r, http.MethodPost, path, map[string]any{"shopper_id": fmt.Sprintf("S%d", i)}).Code
		}(i)
	}
	wg.Wait()
	close(codes)

	ok, conflict := 0, 0
	for code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		default:
			t.Fatalf("unexpected status %d", code)
		}
	}
	if ok != 1 || conflict != n-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d/%d", n-1, ok, conflict)
	}
}

func TestCatalogAndStats(t *testing.T) {
	r := buildTestRouter(t)
	mustCreate(t, r)

	w := doRequest(r, http.MethodGet, "/api/catalog/campuses", nil)
	var campuses struct {
		Campuses []catalog.Place `json:"campuses"`
	}
	decode(t, w, &campuses)
	if len(campuses.Campuses) != 14 {
		t.Fatalf("expected 14 campuses, got %d", len(campuses.Campuses))
	}

	w = doRequest(r, http.MethodGet, "/api/catalog/bases", nil)
	var bases struct {
		Bases []catalog.Place `json:"shopper_bases"`
	}
	decode(t, w, &bases)
	if len(bases.Bases) != 5 || bases.Bases[0].Name != "Lumley" {
		t.Fatalf("unexpected bases: %+v", bases.Bases)
	}

	w = doRequest(r, http.MethodGet, "/api/stats", nil)
	var st request.Stats
	decode(t, w, &st)
	if st.Total != 1 || st.ByStatus[request.StatusPending] != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}
