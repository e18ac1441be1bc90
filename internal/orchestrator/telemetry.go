package orchestrator

import (
	"sort"
	"time"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/connection"
)

// didLatency is one timed ReadDataByIdentifier round trip, used to build
// the min/mean/max summary in DIDLatencyReport (spec.md §4.H "DID-read
// latency").
type didLatency struct {
	did      uint16
	duration time.Duration
}

// DIDLatencyReport summarizes round-trip timing across a set of DID
// reads against one ECU.
type DIDLatencyReport struct {
	ECU     catalog.ECU
	Samples int
	Min     time.Duration
	Mean    time.Duration
	Max     time.Duration
	Slowest []ScanEntry
}

// MeasureDIDLatency re-runs the ECU's scan DID list purely for timing —
// unlike ScanECU it makes no Extended-session retry pass, since the
// point here is round-trip cost, not coverage (spec.md §4.H).
func (o *Orchestrator) MeasureDIDLatency(ecu catalog.ECU) (DIDLatencyReport, error) {
	c, err := o.clientFor(ecu)
	if err != nil {
		return DIDLatencyReport{}, err
	}

	dids := catalog.ScanDIDs(ecu)
	timings := make([]didLatency, 0, len(dids))
	entries := make([]ScanEntry, 0, len(dids))

	for i, did := range dids {
		if i > 0 {
			testerPresent(c)
		}
		start := time.Now()
		entry := scanOneDID(c, did, "Default")
		elapsed := time.Since(start)

		if entry.OK {
			timings = append(timings, didLatency{did: did, duration: elapsed})
		}
		entries = append(entries, entry)
	}

	report := DIDLatencyReport{ECU: ecu, Samples: len(timings)}
	if len(timings) == 0 {
		return report, nil
	}

	report.Min, report.Max = timings[0].duration, timings[0].duration
	var total time.Duration
	for _, t := range timings {
		if t.duration < report.Min {
			report.Min = t.duration
		}
		if t.duration > report.Max {
			report.Max = t.duration
		}
		total += t.duration
	}
	report.Mean = total / time.Duration(len(timings))

	sort.Slice(timings, func(i, j int) bool { return timings[i].duration > timings[j].duration })
	top := 5
	if top > len(timings) {
		top = len(timings)
	}
	byDID := make(map[uint16]ScanEntry, len(entries))
	for _, e := range entries {
		byDID[e.DID] = e
	}
	for i := 0; i < top; i++ {
		report.Slowest = append(report.Slowest, byDID[timings[i].did])
	}

	return report, nil
}

// SampleBusLoad delegates to the connection manager's raw-CAN sampling
// window, giving the orchestrator layer a single place diagnostic UIs
// call into for both DID-latency and bus-load telemetry (spec.md §4.H).
func (o *Orchestrator) SampleBusLoad(d time.Duration) (connection.BusActivity, error) {
	return o.conn.SampleBusActivity(d)
}
