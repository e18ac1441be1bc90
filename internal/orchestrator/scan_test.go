package orchestrator

import (
	"testing"

	"jlrdiag/internal/catalog"
)

func TestScanECUAllDefaultSessionSuccess(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	addr := catalog.Addresses[catalog.IPC]

	dids := catalog.ScanDIDs(catalog.IPC)
	for i, did := range dids {
		if i > 0 {
			mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
		}
		req := []byte{0x22, byte(did >> 8), byte(did)}
		resp := []byte{0x62, byte(did >> 8), byte(did), 'o', 'k'}
		mock.Expect(addr.TxID, req, resp)
	}

	result, err := o.ScanECU(catalog.IPC)
	if err != nil {
		t.Fatalf("ScanECU: %v", err)
	}
	if result.TotalDIDs != len(dids) || result.OKCount != len(dids) {
		t.Errorf("result = %+v", result)
	}
	for _, entry := range result.DIDs {
		if !entry.OK || entry.Session != "Default" {
			t.Errorf("entry = %+v", entry)
		}
		if entry.ASCII != "ok" {
			t.Errorf("ASCII = %q", entry.ASCII)
		}
	}
}

func TestScanECURetriesFailuresInExtendedSession(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	addr := catalog.Addresses[catalog.GWM]
	dids := catalog.ScanDIDs(catalog.GWM)
	failDID := dids[0]

	for i, did := range dids {
		if i > 0 {
			mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
		}
		req := []byte{0x22, byte(did >> 8), byte(did)}
		if did == failDID {
			mock.Expect(addr.TxID, req, []byte{0x7F, 0x22, 0x31}) // requestOutOfRange
			continue
		}
		mock.Expect(addr.TxID, req, []byte{0x62, byte(did >> 8), byte(did), 'v'})
	}

	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(addr.TxID, []byte{0x10, 0x03}, []byte{0x50, 0x03, 0x00, 0x32, 0x01, 0xF4})
	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	failReq := []byte{0x22, byte(failDID >> 8), byte(failDID)}
	mock.Expect(addr.TxID, failReq, []byte{0x62, byte(failDID >> 8), byte(failDID), 'w'})

	result, err := o.ScanECU(catalog.GWM)
	if err != nil {
		t.Fatalf("ScanECU: %v", err)
	}
	if result.OKCount != len(dids) {
		t.Errorf("OKCount = %d, want %d", result.OKCount, len(dids))
	}
	for _, entry := range result.DIDs {
		if entry.DID == failDID {
			if !entry.OK || entry.Session != "Extended" {
				t.Errorf("retried entry = %+v", entry)
			}
		}
	}
}

func TestPrintableASCIIMasksNonPrintableBytes(t *testing.T) {
	got := printableASCII([]byte{'A', 0x00, 'B', 0x7F, 'C'})
	if got != "A.B.C" {
		t.Errorf("printableASCII = %q", got)
	}
}
