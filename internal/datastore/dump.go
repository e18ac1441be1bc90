package datastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ScanDump is the timestamped JSON artifact written after a DID sweep,
// independent of whatever history store (if any) is configured.
type ScanDump struct {
	ECU       string          `json:"ecu"`
	Timestamp time.Time       `json:"timestamp"`
	Entries   json.RawMessage `json:"entries"`
}

// CCFCompareDump is the timestamped JSON artifact written after a cross-ECU
// CCF comparison.
type CCFCompareDump struct {
	Timestamp  time.Time       `json:"timestamp"`
	Mismatches int             `json:"mismatches"`
	Options    json.RawMessage `json:"options"`
}

// DumpScan writes a scan result to dir/scan_<ecu>_<timestamp>.json.
func DumpScan(dir string, dump ScanDump) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}

	name := fmt.Sprintf("scan_%s_%s.json", dump.ECU, dump.Timestamp.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal scan dump: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write scan dump: %w", err)
	}
	return path, nil
}

// DumpCCFCompare writes a CCF comparison result to dir/ccf_<timestamp>.json.
func DumpCCFCompare(dir string, dump CCFCompareDump) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}

	name := fmt.Sprintf("ccf_%s.json", dump.Timestamp.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal CCF compare dump: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CCF compare dump: %w", err)
	}
	return path, nil
}
