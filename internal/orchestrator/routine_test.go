package orchestrator

import (
	"strings"
	"testing"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/security"
)

func TestRunRoutineConfigureLinuxDecodesErrorBits(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	addr := catalog.Addresses[catalog.IMC]

	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(addr.TxID, []byte{0x10, 0x03}, []byte{0x50, 0x03, 0x00, 0x32, 0x01, 0xF4})
	mock.Expect(addr.TxID, []byte{0x27, 0x11}, []byte{0x67, 0x11, 0x01, 0x02, 0x03})
	seed := uint32(0x010203)
	key := security.ComputeKey(seed, security.JLRConstants)
	mock.Expect(addr.TxID, []byte{0x27, 0x12, byte(key >> 16), byte(key >> 8), byte(key)}, []byte{0x67, 0x12})

	errBits := byte(1<<0 | 1<<4) // Boot parameter + DVD region
	mock.Expect(addr.TxID, []byte{0x31, 0x01, 0x60, 0x38}, []byte{0x71, 0x01, 0x60, 0x38, 0x00, 0x00, errBits})

	result, err := o.RunRoutine(catalog.IMC, catalog.RoutineConfigureLinux, nil)
	if err != nil {
		t.Fatalf("RunRoutine: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if !strings.Contains(result.Description, "Boot parameter") || !strings.Contains(result.Description, "DVD region") {
		t.Errorf("description = %q", result.Description)
	}
	if strings.Contains(result.Description, "Symlinks") {
		t.Errorf("unset bit leaked into description: %q", result.Description)
	}
}

func TestRunRoutineConfigureLinuxNoErrors(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	addr := catalog.Addresses[catalog.IMC]

	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(addr.TxID, []byte{0x10, 0x03}, []byte{0x50, 0x03, 0x00, 0x32, 0x01, 0xF4})
	mock.Expect(addr.TxID, []byte{0x27, 0x11}, []byte{0x67, 0x11, 0x00, 0x00, 0x00})
	mock.Expect(addr.TxID, []byte{0x31, 0x01, 0x60, 0x38}, []byte{0x71, 0x01, 0x60, 0x38, 0x00, 0x00, 0x00})

	result, err := o.RunRoutine(catalog.IMC, catalog.RoutineConfigureLinux, nil)
	if err != nil {
		t.Fatalf("RunRoutine: %v", err)
	}
	if !strings.Contains(result.Description, "OK") {
		t.Errorf("description = %q", result.Description)
	}
}

func TestRunRoutineVINLearnFailure(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	addr := catalog.Addresses[catalog.IMC]

	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(addr.TxID, []byte{0x10, 0x03}, []byte{0x50, 0x03, 0x00, 0x32, 0x01, 0xF4})
	mock.Expect(addr.TxID, []byte{0x27, 0x11}, []byte{0x67, 0x11, 0x00, 0x00, 0x00})
	mock.Expect(addr.TxID, []byte{0x31, 0x01, 0x04, 0x04}, []byte{0x71, 0x01, 0x04, 0x04, 0x00, 0x07})

	result, err := o.RunRoutine(catalog.IMC, catalog.RoutineVINLearn, nil)
	if err != nil {
		t.Fatalf("RunRoutine: %v", err)
	}
	if !strings.Contains(result.Description, "failed") {
		t.Errorf("description = %q", result.Description)
	}
}

func TestRunRoutineWithoutBespokeDecodingGetsGenericDescription(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	addr := catalog.Addresses[catalog.BCM]

	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(addr.TxID, []byte{0x10, 0x03}, []byte{0x50, 0x03, 0x00, 0x32, 0x01, 0xF4})
	mock.Expect(addr.TxID, []byte{0x27, 0x11}, []byte{0x67, 0x11, 0x00, 0x00, 0x00})
	mock.Expect(addr.TxID, []byte{0x31, 0x01, 0x03, 0x00}, []byte{0x71, 0x01, 0x03, 0x00})

	result, err := o.RunRoutine(catalog.BCM, 0x0300, nil)
	if err != nil {
		t.Fatalf("RunRoutine: %v", err)
	}
	if !strings.Contains(result.Description, "0x0300") {
		t.Errorf("description = %q", result.Description)
	}
}
