package orchestrator

import (
	"strings"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/uds"
)

// ScanEntry is one row of a bulk DID sweep: the raw bytes plus a
// printable-ASCII view, or an error if the read failed in both
// sessions (spec.md §4.F "DID-sweep scans").
type ScanEntry struct {
	DID     uint16
	DIDHex  string
	Label   string
	OK      bool
	Raw     []byte
	ASCII   string
	Session string // "Default" or "Extended" — whichever session the read finally succeeded in
	Error   string
}

// ScanResult is the dump structure persisted per ECU (spec.md §6's
// `{ecu, vehicle, tx_id, rx_id, total_dids, ok_count, dids:[...]}`).
type ScanResult struct {
	ECU       catalog.ECU
	Vehicle   string
	TxID      uint32
	RxID      uint32
	TotalDIDs int
	OKCount   int
	DIDs      []ScanEntry
}

// ScanECU sweeps the fixed DID list for one ECU (spec.md §4.H "per-ECU
// scan DID lists"), attempting every DID in Default session first and
// retrying any failure once in Extended session (spec.md §4.F).
func (o *Orchestrator) ScanECU(ecu catalog.ECU) (ScanResult, error) {
	c, err := o.clientFor(ecu)
	if err != nil {
		return ScanResult{}, err
	}
	addr := catalog.Addresses[ecu]

	dids := catalog.ScanDIDs(ecu)
	result := ScanResult{
		ECU: ecu, Vehicle: addr.Vehicle, TxID: addr.TxID, RxID: addr.RxID,
		TotalDIDs: len(dids), DIDs: make([]ScanEntry, 0, len(dids)),
	}

	failed := make([]uint16, 0)
	for i, did := range dids {
		if i > 0 {
			testerPresent(c)
		}
		entry := scanOneDID(c, did, "Default")
		if entry.OK {
			result.OKCount++
		} else {
			failed = append(failed, did)
		}
		result.DIDs = append(result.DIDs, entry)
	}

	if len(failed) > 0 {
		if err := sddPrerequisiteFlow(c, false); err == nil {
			byDID := make(map[uint16]int, len(result.DIDs))
			for i, e := range result.DIDs {
				byDID[e.DID] = i
			}
			for _, did := range failed {
				testerPresent(c)
				entry := scanOneDID(c, did, "Extended")
				if entry.OK {
					result.OKCount++
				}
				result.DIDs[byDID[did]] = entry
			}
		}
	}

	return result, nil
}

func scanOneDID(c *uds.Client, did uint16, session string) ScanEntry {
	label := "Unknown DID"
	if meta, ok := catalog.DIDByID(did); ok {
		label = meta.Label
	}

	data, err := readDID(c, did)
	if err != nil {
		return ScanEntry{DID: did, DIDHex: didHex(did), Label: label, OK: false, Error: err.Error()}
	}
	return ScanEntry{
		DID: did, DIDHex: didHex(did), Label: label, OK: true,
		Raw: data, ASCII: printableASCII(data), Session: session,
	}
}

func printableASCII(data []byte) string {
	var b strings.Builder
	for _, v := range data {
		if v >= 0x20 && v < 0x7F {
			b.WriteByte(v)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}
