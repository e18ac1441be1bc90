package datastore

import "time"

// Store persists scan/CCF-compare history and optional bus-health samples.
type Store interface {
	SaveScan(rec ScanRecord) (int64, error)
	ListScans(ecu string, limit int) ([]ScanRecord, error)

	SaveCCFCompare(rec CCFCompareRecord) (int64, error)
	ListCCFCompares(limit int) ([]CCFCompareRecord, error)

	SaveBusSample(sample BusSample) error

	Close() error
}

// ScanRecord is one DID-sweep run against a single ECU. Entries carries the
// caller's already-marshaled []orchestrator.ScanEntry JSON; the datastore
// layer stores it opaquely rather than depending on internal/orchestrator.
type ScanRecord struct {
	ID        int64     `json:"id,omitempty"`
	ECU       string    `json:"ecu"`
	Timestamp time.Time `json:"timestamp"`
	OKCount   int       `json:"ok_count"`
	Total     int       `json:"total"`
	Entries   []byte    `json:"entries"`
}

// CCFCompareRecord is one cross-ECU CCF comparison run. Options carries the
// caller's marshaled []orchestrator.CCFOptionRow JSON.
type CCFCompareRecord struct {
	ID         int64     `json:"id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Mismatches int       `json:"mismatches"`
	Options    []byte    `json:"options"`
}

// BusSample is one bus-load/DID-latency telemetry snapshot.
type BusSample struct {
	Timestamp     time.Time `json:"timestamp"`
	DurationMS    int64     `json:"duration_ms"`
	FrameCount    int       `json:"frame_count"`
	BusLoadPct    float64   `json:"bus_load_pct"`
	DIDLatencyAvg float64   `json:"did_latency_avg_ms,omitempty"`
}
