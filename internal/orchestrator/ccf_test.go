package orchestrator

import (
	"testing"

	"jlrdiag/internal/catalog"
)

func ccfBlock(optionValues map[int]byte) []byte {
	max := catalog.CCFHeaderOffset
	for id := range optionValues {
		if catalog.CCFHeaderOffset+id+1 > max {
			max = catalog.CCFHeaderOffset + id + 1
		}
	}
	block := make([]byte, max)
	for id, v := range optionValues {
		block[catalog.CCFHeaderOffset+id] = v
	}
	return block
}

func TestCompareCCFFlagsMismatchAcrossECUs(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	gwmAddr := catalog.Addresses[catalog.GWM]
	bcmAddr := catalog.Addresses[catalog.BCM]
	imcAddr := catalog.Addresses[catalog.IMC]

	gwmBlock := ccfBlock(map[int]byte{0: 0x01, 1: 0x02})
	bcmBlock := ccfBlock(map[int]byte{0: 0x01, 1: 0x02})
	imcRoutineResp := append([]byte{0x71, 0x01, 0x0E, 0x01}, ccfBlock(map[int]byte{0: 0x01, 1: 0xFF})...)

	mock.Expect(gwmAddr.TxID, []byte{0x22, 0xEE, 0x00}, append([]byte{0x62, 0xEE, 0x00}, gwmBlock...))
	mock.Expect(bcmAddr.TxID, []byte{0x22, 0xDE, 0x00}, append([]byte{0x62, 0xDE, 0x00}, bcmBlock...))
	mock.Expect(imcAddr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(imcAddr.TxID, []byte{0x10, 0x03}, []byte{0x50, 0x03, 0x00, 0x32, 0x01, 0xF4})
	mock.Expect(imcAddr.TxID, []byte{0x31, 0x01, 0x0E, 0x01}, imcRoutineResp)

	result, err := o.CompareCCF()
	if err != nil {
		t.Fatalf("CompareCCF: %v", err)
	}
	if len(result.Options) != catalog.CCFOptionCount {
		t.Fatalf("len(Options) = %d, want %d", len(result.Options), catalog.CCFOptionCount)
	}
	if !result.Options[1].Mismatch {
		t.Errorf("expected option 1 to mismatch (GWM/BCM=0x02, IMC=0xFF): %+v", result.Options[1])
	}
	if result.Options[0].Mismatch {
		t.Errorf("expected option 0 to match across all three ECUs: %+v", result.Options[0])
	}
	if result.Mismatches < 1 {
		t.Errorf("Mismatches = %d, want at least 1", result.Mismatches)
	}
}

func TestCompareCCFFallsBackToCachedResultRoutine(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	gwmAddr := catalog.Addresses[catalog.GWM]
	bcmAddr := catalog.Addresses[catalog.BCM]
	imcAddr := catalog.Addresses[catalog.IMC]

	gwmBlock := ccfBlock(map[int]byte{0: 0x01})
	bcmBlock := ccfBlock(map[int]byte{0: 0x01})
	mock.Expect(gwmAddr.TxID, []byte{0x22, 0xEE, 0x00}, append([]byte{0x62, 0xEE, 0x00}, gwmBlock...))
	mock.Expect(bcmAddr.TxID, []byte{0x22, 0xDE, 0x00}, append([]byte{0x62, 0xDE, 0x00}, bcmBlock...))

	mock.Expect(imcAddr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(imcAddr.TxID, []byte{0x10, 0x03}, []byte{0x50, 0x03, 0x00, 0x32, 0x01, 0xF4})
	mock.Expect(imcAddr.TxID, []byte{0x31, 0x01, 0x0E, 0x01}, []byte{0x7F, 0x31, 0x11}) // serviceNotSupported

	mock.Expect(imcAddr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(imcAddr.TxID, []byte{0x10, 0x03}, []byte{0x50, 0x03, 0x00, 0x32, 0x01, 0xF4})
	fallbackResp := append([]byte{0x71, 0x01, 0x0E, 0x00}, ccfBlock(map[int]byte{0: 0x01})...)
	mock.Expect(imcAddr.TxID, []byte{0x31, 0x01, 0x0E, 0x00}, fallbackResp)

	result, err := o.CompareCCF()
	if err != nil {
		t.Fatalf("CompareCCF: %v", err)
	}
	if len(result.IMCBlockBytes) == 0 {
		t.Error("expected IMC block bytes from the 0x0E00 fallback")
	}
}
