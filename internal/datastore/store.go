package datastore

import "fmt"

var _ Store = (*CombinedStore)(nil)

// Config holds datastore configuration, as loaded from internal/config.
type Config struct {
	SQLitePath      string
	InfluxDBEnabled bool
	InfluxDBURL     string
	InfluxDBOrg     string
	InfluxDBToken   string
	InfluxDBBucket  string
}

// CombinedStore implements Store over SQLite for scan/CCF history, with an
// optional InfluxDB sink for bus-health samples.
type CombinedStore struct {
	sqlite *SQLiteStore
	influx *InfluxDBStore // nil when InfluxDB is not configured
}

// NewStore creates a new combined datastore. InfluxDB is only dialed when
// cfg.InfluxDBEnabled is set; scan/CCF history always uses SQLite.
func NewStore(cfg *Config) (*CombinedStore, error) {
	sqlite, err := NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite store: %w", err)
	}

	store := &CombinedStore{sqlite: sqlite}
	if cfg.InfluxDBEnabled {
		influx, err := NewInfluxDBStore(cfg.InfluxDBURL, cfg.InfluxDBToken, cfg.InfluxDBOrg, cfg.InfluxDBBucket)
		if err != nil {
			sqlite.Close()
			return nil, fmt.Errorf("failed to create InfluxDB store: %w", err)
		}
		store.influx = influx
	}

	return store, nil
}

func (s *CombinedStore) SaveScan(rec ScanRecord) (int64, error) {
	return s.sqlite.SaveScan(rec)
}

func (s *CombinedStore) ListScans(ecu string, limit int) ([]ScanRecord, error) {
	return s.sqlite.ListScans(ecu, limit)
}

func (s *CombinedStore) SaveCCFCompare(rec CCFCompareRecord) (int64, error) {
	return s.sqlite.SaveCCFCompare(rec)
}

func (s *CombinedStore) ListCCFCompares(limit int) ([]CCFCompareRecord, error) {
	return s.sqlite.ListCCFCompares(limit)
}

// SaveBusSample writes to SQLite always, and additionally to InfluxDB when
// configured, so bus-health history survives even without InfluxDB running.
func (s *CombinedStore) SaveBusSample(sample BusSample) error {
	if err := s.sqlite.SaveBusSample(sample); err != nil {
		return err
	}
	if s.influx != nil {
		if err := s.influx.SaveBusSample(sample); err != nil {
			return fmt.Errorf("failed to mirror bus sample to InfluxDB: %w", err)
		}
	}
	return nil
}

func (s *CombinedStore) Close() error {
	sqliteErr := s.sqlite.Close()
	if s.influx != nil {
		if err := s.influx.Close(); err != nil {
			return err
		}
	}
	return sqliteErr
}
