package datastore

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "datastore_sqlite_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := NewSQLiteStore(filepath.Join(tempDir, "jlrdiag.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndListScans(t *testing.T) {
	store := newTestSQLiteStore(t)

	rec := ScanRecord{
		ECU:       "BCM",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		OKCount:   5,
		Total:     6,
		Entries:   []byte(`[{"did":61584,"ok":true}]`),
	}
	id, err := store.SaveScan(rec)
	if err != nil {
		t.Fatalf("SaveScan: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero id")
	}

	scans, err := store.ListScans("BCM", 10)
	if err != nil {
		t.Fatalf("ListScans: %v", err)
	}
	if len(scans) != 1 {
		t.Fatalf("len(scans) = %d, want 1", len(scans))
	}
	if scans[0].OKCount != 5 || scans[0].Total != 6 {
		t.Errorf("scan = %+v", scans[0])
	}

	if other, err := store.ListScans("GWM", 10); err != nil || len(other) != 0 {
		t.Errorf("ListScans(GWM) = %v, %v, want empty", other, err)
	}
}

func TestSaveAndListCCFCompares(t *testing.T) {
	store := newTestSQLiteStore(t)

	rec := CCFCompareRecord{
		Timestamp:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Mismatches: 3,
		Options:    []byte(`[{"id":0,"mismatch":true}]`),
	}
	if _, err := store.SaveCCFCompare(rec); err != nil {
		t.Fatalf("SaveCCFCompare: %v", err)
	}

	recs, err := store.ListCCFCompares(10)
	if err != nil {
		t.Fatalf("ListCCFCompares: %v", err)
	}
	if len(recs) != 1 || recs[0].Mismatches != 3 {
		t.Fatalf("recs = %+v", recs)
	}
}

func TestSaveAndRecentBusSamples(t *testing.T) {
	store := newTestSQLiteStore(t)

	base := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		sample := BusSample{
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			DurationMS: 1000,
			FrameCount: 100 + i,
			BusLoadPct: 12.5,
		}
		if err := store.SaveBusSample(sample); err != nil {
			t.Fatalf("SaveBusSample: %v", err)
		}
	}

	samples, err := store.RecentBusSamples(2)
	if err != nil {
		t.Fatalf("RecentBusSamples: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("len(samples) = %d, want 2", len(samples))
	}
	if !samples[0].Timestamp.Before(samples[1].Timestamp) {
		t.Errorf("expected oldest-first ordering, got %+v", samples)
	}
}
