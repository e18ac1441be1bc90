package datastore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ecu TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			ok_count INTEGER NOT NULL,
			total INTEGER NOT NULL,
			entries JSON NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ccf_compares (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TIMESTAMP NOT NULL,
			mismatches INTEGER NOT NULL,
			options JSON NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bus_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TIMESTAMP NOT NULL,
			duration_ms INTEGER NOT NULL,
			frame_count INTEGER NOT NULL,
			bus_load_pct REAL NOT NULL,
			did_latency_avg_ms REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_ecu_time ON scans(ecu, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_ccf_time ON ccf_compares(timestamp)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) SaveScan(rec ScanRecord) (int64, error) {
	query := `INSERT INTO scans (ecu, timestamp, ok_count, total, entries)
		VALUES (?, ?, ?, ?, ?)`

	result, err := s.db.Exec(query, rec.ECU, rec.Timestamp, rec.OKCount, rec.Total, rec.Entries)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) ListScans(ecu string, limit int) ([]ScanRecord, error) {
	query := `SELECT id, ecu, timestamp, ok_count, total, entries FROM scans
		WHERE ecu = ? ORDER BY timestamp DESC LIMIT ?`

	rows, err := s.db.Query(query, ecu, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var scans []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		if err := rows.Scan(&rec.ID, &rec.ECU, &rec.Timestamp, &rec.OKCount, &rec.Total, &rec.Entries); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		scans = append(scans, rec)
	}
	return scans, rows.Err()
}

func (s *SQLiteStore) SaveCCFCompare(rec CCFCompareRecord) (int64, error) {
	query := `INSERT INTO ccf_compares (timestamp, mismatches, options) VALUES (?, ?, ?)`

	result, err := s.db.Exec(query, rec.Timestamp, rec.Mismatches, rec.Options)
	if err != nil {
		return 0, fmt.Errorf("failed to save CCF compare: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) ListCCFCompares(limit int) ([]CCFCompareRecord, error) {
	query := `SELECT id, timestamp, mismatches, options FROM ccf_compares
		ORDER BY timestamp DESC LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query CCF compares: %w", err)
	}
	defer rows.Close()

	var recs []CCFCompareRecord
	for rows.Next() {
		var rec CCFCompareRecord
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Mismatches, &rec.Options); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *SQLiteStore) SaveBusSample(sample BusSample) error {
	query := `INSERT INTO bus_samples (timestamp, duration_ms, frame_count, bus_load_pct, did_latency_avg_ms)
		VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, sample.Timestamp, sample.DurationMS, sample.FrameCount,
		sample.BusLoadPct, nullableFloat(sample.DIDLatencyAvg))
	if err != nil {
		return fmt.Errorf("failed to save bus sample: %w", err)
	}
	return nil
}

func nullableFloat(v float64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

// RecentBusSamples returns the most recent n bus samples, oldest first.
func (s *SQLiteStore) RecentBusSamples(n int) ([]BusSample, error) {
	rows, err := s.db.Query(`SELECT timestamp, duration_ms, frame_count, bus_load_pct, did_latency_avg_ms
		FROM bus_samples ORDER BY timestamp DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query bus samples: %w", err)
	}
	defer rows.Close()

	var samples []BusSample
	for rows.Next() {
		var sample BusSample
		var latency sql.NullFloat64
		if err := rows.Scan(&sample.Timestamp, &sample.DurationMS, &sample.FrameCount,
			&sample.BusLoadPct, &latency); err != nil {
			return nil, fmt.Errorf("failed to scan bus sample: %w", err)
		}
		sample.DIDLatencyAvg = latency.Float64
		samples = append(samples, sample)
	}
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
