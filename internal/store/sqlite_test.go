package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func sampleSearch() *Search {
	return &Search{
		Method:         "methodj",
		Version:        "diamond",
		PID:            0x1738F7D9,
		GenderRatio:    0x7F,
		SeedStart:      0x8D116ECC,
		SeedEnd:        0x8D116ED0,
		LeadFilter:     "none,synchronize",
		HitCount:       9,
		TotalEvaluated: 5,
		HitRate:        "1.8",
		EngineVersion:  "framefinder-1.0.0",
	}
}

func TestSaveAndGetSearch(t *testing.T) {
	db := newTestDB(t)

	search := sampleSearch()
	if err := db.SaveSearch(search); err != nil {
		t.Fatalf("save: %v", err)
	}
	if search.ID == "" {
		t.Fatal("SaveSearch must assign an id")
	}

	got, err := db.GetSearch(search.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Method != search.Method || got.PID != search.PID ||
		got.SeedStart != search.SeedStart || got.SeedEnd != search.SeedEnd ||
		got.LeadFilter != search.LeadFilter || got.HitRate != search.HitRate ||
		got.TotalEvaluated != search.TotalEvaluated {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, search)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}
}

func TestGetSearchNotFound(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.GetSearch("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSaveAndPageFrames(t *testing.T) {
	db := newTestDB(t)

	search := sampleSearch()
	if err := db.SaveSearch(search); err != nil {
		t.Fatal(err)
	}

	frames := make([]FrameRow, 25)
	for i := range frames {
		frames[i] = FrameRow{
			OriginSeed: 0x8D116ECE,
			FrameSeed:  uint32(0xFC270000 + i),
			ESV:        uint16(i),
			Lead:       "none",
		}
	}
	if err := db.SaveFrames(search.ID, frames); err != nil {
		t.Fatalf("save frames: %v", err)
	}

	page, err := db.GetFrames(search.ID, 1, 10)
	if err != nil {
		t.Fatalf("get frames: %v", err)
	}
	if page.TotalCount != 25 || page.TotalPages != 3 || len(page.Frames) != 10 {
		t.Fatalf("page shape: total=%d pages=%d len=%d", page.TotalCount, page.TotalPages, len(page.Frames))
	}
	// Insertion order must be preserved across pages.
	if page.Frames[0].ESV != 0 || page.Frames[9].ESV != 9 {
		t.Errorf("first page out of order: %+v", page.Frames)
	}

	last, err := db.GetFrames(search.ID, 3, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(last.Frames) != 5 || last.Frames[4].ESV != 24 {
		t.Errorf("last page wrong: %+v", last.Frames)
	}
}

func TestSaveFramesEmptyIsNoop(t *testing.T) {
	db := newTestDB(t)
	if err := db.SaveFrames("whatever", nil); err != nil {
		t.Fatalf("empty save must succeed, got %v", err)
	}
}

func TestListSearchesFilterAndPaginate(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 3; i++ {
		s := sampleSearch()
		if err := db.SaveSearch(s); err != nil {
			t.Fatal(err)
		}
	}
	other := sampleSearch()
	other.Method = "methodk"
	other.Version = "heartgold"
	if err := db.SaveSearch(other); err != nil {
		t.Fatal(err)
	}

	all, err := db.ListSearches(SearchQuery{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatal(err)
	}
	if all.TotalCount != 4 {
		t.Errorf("total = %d, want 4", all.TotalCount)
	}

	filtered, err := db.ListSearches(SearchQuery{Method: "methodk", Page: 1, PerPage: 10})
	if err != nil {
		t.Fatal(err)
	}
	if filtered.TotalCount != 1 || len(filtered.Searches) != 1 {
		t.Fatalf("filtered total = %d len = %d, want 1/1", filtered.TotalCount, len(filtered.Searches))
	}
	if filtered.Searches[0].Method != "methodk" {
		t.Errorf("filter leaked %+v", filtered.Searches[0])
	}

	paged, err := db.ListSearches(SearchQuery{Page: 2, PerPage: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(paged.Searches) != 1 || paged.TotalPages != 2 {
		t.Errorf("pagination wrong: len=%d pages=%d", len(paged.Searches), paged.TotalPages)
	}
}
