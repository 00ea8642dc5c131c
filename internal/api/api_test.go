package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/solleo1989/framefinder/internal/store"
)

func newTestServer(t *testing.T, withStore bool) http.Handler {
	t.Helper()
	var db store.DB
	if withStore {
		sdb, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "api.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { sdb.Close() })
		if err := sdb.Migrate(); err != nil {
			t.Fatal(err)
		}
		db = sdb
	}
	return NewServer(db).Routes()
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(t, false)
	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		if rec := get(t, h, path); rec.Code != http.StatusOK {
			t.Errorf("%s: status %d", path, rec.Code)
		}
	}
}

func TestVersionEndpoint(t *testing.T) {
	h := newTestServer(t, false)
	rec := get(t, h, "/api/v1/version")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.EngineVersion == "" {
		t.Error("engine_version must be populated")
	}
}

func TestListMethods(t *testing.T) {
	h := newTestServer(t, false)
	rec := get(t, h, "/api/v1/methods")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Methods []MethodInfo `json:"methods"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Methods) != 9 {
		t.Fatalf("methods = %d, want 9", len(body.Methods))
	}
}

func TestHandleFindGolden(t *testing.T) {
	h := newTestServer(t, false)

	rec := postJSON(t, h, "/api/v1/frames", FindRequest{
		Method:      "methodj",
		Version:     "diamond",
		PID:         0x1738F7D9,
		GenderRatio: 0x7F,
		OriginSeed:  0x8D116ECE,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp FindResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 8 || len(resp.Frames) != 8 {
		t.Fatalf("count = %d frames = %d, want 8", resp.Count, len(resp.Frames))
	}
	first := resp.Frames[0]
	if first.Seed != 0xC94DDBFF || first.ESV != 0xC94D || first.Lead != "synchronize" {
		t.Errorf("unexpected first frame: %+v", first)
	}
	if resp.Nature != 0x1738F7D9%25 {
		t.Errorf("nature = %d", resp.Nature)
	}
}

func TestHandleFindValidation(t *testing.T) {
	h := newTestServer(t, false)

	rec := postJSON(t, h, "/api/v1/frames", FindRequest{Method: "methodx", Version: "diamond"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	var engErr EngineError
	if err := json.Unmarshal(rec.Body.Bytes(), &engErr); err != nil {
		t.Fatal(err)
	}
	if engErr.Type != ErrTypeMethodUnknown {
		t.Errorf("error type = %q", engErr.Type)
	}
}

func TestHandleScanPersists(t *testing.T) {
	h := newTestServer(t, true)

	rec := postJSON(t, h, "/api/v1/scan", map[string]any{
		"method":       "methodj",
		"version":      "diamond",
		"pid":          0x1738F7D9,
		"gender_ratio": 0x7F,
		"seed_start":   0x8D116ECC,
		"seed_end":     0x8D116ED0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SearchID string `json:"search_id"`
		Summary  struct {
			HitsFound int `json:"hits_found"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.SearchID == "" {
		t.Fatal("scan must be persisted when a store is attached")
	}
	if resp.Summary.HitsFound != 48 {
		t.Errorf("hits = %d, want 48", resp.Summary.HitsFound)
	}

	// The persisted search and its frames must be retrievable.
	recSearch := get(t, h, "/api/v1/searches/"+resp.SearchID)
	if recSearch.Code != http.StatusOK {
		t.Fatalf("get search: status %d", recSearch.Code)
	}

	recFrames := get(t, h, "/api/v1/searches/"+resp.SearchID+"/frames?per_page=20")
	if recFrames.Code != http.StatusOK {
		t.Fatalf("get frames: status %d", recFrames.Code)
	}
	var page store.FramePage
	if err := json.Unmarshal(recFrames.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 48 || len(page.Frames) != 20 {
		t.Errorf("frame page: total=%d len=%d", page.TotalCount, len(page.Frames))
	}

	recList := get(t, h, "/api/v1/searches?method=methodj")
	if recList.Code != http.StatusOK {
		t.Fatalf("list: status %d", recList.Code)
	}
	var list store.SearchList
	if err := json.Unmarshal(recList.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.TotalCount != 1 {
		t.Errorf("list total = %d, want 1", list.TotalCount)
	}
}

func TestHandleScanWithoutStore(t *testing.T) {
	h := newTestServer(t, false)

	rec := postJSON(t, h, "/api/v1/scan", map[string]any{
		"method":       "methodj",
		"version":      "diamond",
		"pid":          0x1738F7D9,
		"gender_ratio": 0x7F,
		"seed_start":   0x8D116ECE,
		"seed_end":     0x8D116ECE,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	if rec2 := get(t, h, "/api/v1/searches"); rec2.Code != http.StatusServiceUnavailable {
		t.Errorf("searches without store: status %d, want 503", rec2.Code)
	}
}

func TestGetSearchNotFound(t *testing.T) {
	h := newTestServer(t, true)
	rec := get(t, h, "/api/v1/searches/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}
