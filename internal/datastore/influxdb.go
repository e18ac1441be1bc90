package datastore

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxDBStore stores bus-load/DID-latency telemetry as time-series points.
// Unlike SQLiteStore it is write-mostly: scan and CCF history stay in SQLite,
// which is the thing an operator actually queries row-by-row.
type InfluxDBStore struct {
	client   influxdb2.Client
	org      string
	bucket   string
	writeAPI api.WriteAPIBlocking
	queryAPI api.QueryAPI
}

// NewInfluxDBStore creates a new InfluxDB-backed bus-health store.
func NewInfluxDBStore(url, token, org, bucket string) (*InfluxDBStore, error) {
	client := influxdb2.NewClient(url, token)

	store := &InfluxDBStore{
		client:   client,
		org:      org,
		bucket:   bucket,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		queryAPI: client.QueryAPI(org),
	}

	if _, err := client.Ping(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}

	return store, nil
}

func (s *InfluxDBStore) SaveBusSample(sample BusSample) error {
	point := influxdb2.NewPoint(
		"bus_health",
		nil,
		map[string]interface{}{
			"duration_ms":        sample.DurationMS,
			"frame_count":        sample.FrameCount,
			"bus_load_pct":       sample.BusLoadPct,
			"did_latency_avg_ms": sample.DIDLatencyAvg,
		},
		sample.Timestamp,
	)

	if err := s.writeAPI.WritePoint(context.Background(), point); err != nil {
		return fmt.Errorf("failed to write bus sample: %w", err)
	}
	return nil
}

// RecentBusLoad returns the bus_health samples over the trailing window,
// each with all of its pivoted fields.
func (s *InfluxDBStore) RecentBusLoad(window time.Duration) ([]BusSample, error) {
	query := fmt.Sprintf(`
		from(bucket:"%s")
			|> range(start: -%dm)
			|> filter(fn: (r) => r["_measurement"] == "bus_health")
			|> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")
	`, s.bucket, int(window.Minutes()))

	result, err := s.queryAPI.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bus health: %w", err)
	}
	defer result.Close()

	var samples []BusSample
	for result.Next() {
		record := result.Record()
		samples = append(samples, BusSample{
			Timestamp:     record.Time(),
			DurationMS:    record.ValueByKey("duration_ms").(int64),
			FrameCount:    int(record.ValueByKey("frame_count").(int64)),
			BusLoadPct:    record.ValueByKey("bus_load_pct").(float64),
			DIDLatencyAvg: record.ValueByKey("did_latency_avg_ms").(float64),
		})
	}
	return samples, result.Err()
}

func (s *InfluxDBStore) Close() error {
	s.client.Close()
	return nil
}

// InfluxDBStore does not implement Store itself — scan/CCF history always
// lives in SQLiteStore; CombinedStore only forwards SaveBusSample here.
