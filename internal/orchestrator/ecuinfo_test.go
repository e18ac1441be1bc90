package orchestrator

import (
	"testing"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/uds"
)

func TestReadECUInfoBCM(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	addr := catalog.Addresses[catalog.BCM]

	mock.Expect(addr.TxID, []byte{0x22, 0xF1, 0x90}, []byte{0x62, 0xF1, 0x90, 'V', 'I', 'N'})
	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(addr.TxID, []byte{0x22, 0x08, 0x00}, []byte{0x62, 0x08, 0x00, 0x00, 0x7D})
	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(addr.TxID, []byte{0x22, 0x08, 0x01}, []byte{0x62, 0x08, 0x01, 62})
	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(addr.TxID, []byte{0x22, 0xF1, 0x00}, []byte{0x62, 0xF1, 0x00, 60})

	entries, err := o.ReadECUInfo(catalog.BCM)
	if err != nil {
		t.Fatalf("ReadECUInfo: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4", len(entries))
	}
	if entries[0].Value != "VIN" {
		t.Errorf("VIN entry = %+v", entries[0])
	}
	if entries[1].Value != "12.5 V" {
		t.Errorf("voltage entry = %+v", entries[1])
	}
	if entries[2].Value != "62%" {
		t.Errorf("SOC entry = %+v", entries[2])
	}
	if entries[3].Value != "20 °C" {
		t.Errorf("temp entry = %+v", entries[3])
	}
}

func TestReadECUInfoUnknownECU(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	if _, err := o.ReadECUInfo(catalog.ECU(99)); err == nil {
		t.Fatal("expected error for unknown ECU")
	}
}

func TestReadIMCInfoNonBenchFallsBackWhenExtendedSessionNeverSucceeds(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	addr := catalog.Addresses[catalog.IMC]

	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	for i := 0; i < 5; i++ {
		if i > 0 {
			mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
		}
		mock.Expect(addr.TxID, []byte{0x10, 0x03}, []byte{0x7F, 0x10, 0x22})
	}
	mock.Expect(addr.TxID, []byte{0x22, 0x01, 0x00}, []byte{0x62, 0x01, 0x00, 0x01})
	mock.Expect(addr.TxID, []byte{0x22, 0xF1, 0x90}, []byte{0x62, 0xF1, 0x90, 'V'})
	mock.Expect(addr.TxID, []byte{0x22, 0xF1, 0x8C}, []byte{0x62, 0xF1, 0x8C, 'S'})

	entries, err := readIMCInfo(mustClient(t, o, catalog.IMC), false)
	if err != nil {
		t.Fatalf("readIMCInfo: %v", err)
	}
	var sawFallbackError bool
	for _, e := range entries {
		if e.Error == "Requires Extended Session (enable bench mode)" {
			sawFallbackError = true
		}
	}
	if !sawFallbackError {
		t.Errorf("expected at least one fallback-error row, got %+v", entries)
	}
}

func mustClient(t *testing.T, o *Orchestrator, ecu catalog.ECU) *uds.Client {
	t.Helper()
	c, err := o.clientFor(ecu)
	if err != nil {
		t.Fatalf("clientFor: %v", err)
	}
	return c
}
