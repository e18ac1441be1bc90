package orchestrator

import (
	"testing"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/security"
)

func TestSDDPrerequisiteFlowNoSecurity(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	addr := catalog.Addresses[catalog.BCM]
	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(addr.TxID, []byte{0x10, 0x03}, []byte{0x50, 0x03, 0x00, 0x32, 0x01, 0xF4})

	c, err := o.clientFor(catalog.BCM)
	if err != nil {
		t.Fatalf("clientFor: %v", err)
	}
	if err := sddPrerequisiteFlow(c, false); err != nil {
		t.Fatalf("sddPrerequisiteFlow: %v", err)
	}
	if left := mock.Verify(); left != 0 {
		t.Errorf("%d expectations unconsumed", left)
	}
}

func TestSDDPrerequisiteFlowWithSecurityZeroSeed(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	addr := catalog.Addresses[catalog.IMC]
	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(addr.TxID, []byte{0x10, 0x03}, []byte{0x50, 0x03, 0x00, 0x32, 0x01, 0xF4})
	mock.Expect(addr.TxID, []byte{0x27, 0x11}, []byte{0x67, 0x11, 0x00, 0x00, 0x00})

	c, err := o.clientFor(catalog.IMC)
	if err != nil {
		t.Fatalf("clientFor: %v", err)
	}
	if err := sddPrerequisiteFlow(c, true); err != nil {
		t.Fatalf("sddPrerequisiteFlow: %v", err)
	}
	if left := mock.Verify(); left != 0 {
		t.Errorf("%d expectations unconsumed (zero-seed should skip send-key)", left)
	}
}

func TestSDDPrerequisiteFlowWithSecurityNonZeroSeed(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	addr := catalog.Addresses[catalog.IMC]
	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(addr.TxID, []byte{0x10, 0x03}, []byte{0x50, 0x03, 0x00, 0x32, 0x01, 0xF4})
	mock.Expect(addr.TxID, []byte{0x27, 0x11}, []byte{0x67, 0x11, 0x01, 0x02, 0x03})

	seed := uint32(0x010203)
	key := security.ComputeKey(seed, security.JLRConstants)
	keyReq := []byte{0x27, 0x12, byte(key >> 16), byte(key >> 8), byte(key)}
	mock.Expect(addr.TxID, keyReq, []byte{0x67, 0x12})

	c, err := o.clientFor(catalog.IMC)
	if err != nil {
		t.Fatalf("clientFor: %v", err)
	}
	if err := sddPrerequisiteFlow(c, true); err != nil {
		t.Fatalf("sddPrerequisiteFlow: %v", err)
	}
	if left := mock.Verify(); left != 0 {
		t.Errorf("%d expectations unconsumed", left)
	}
}

func TestSDDPrerequisiteFlowFailsWhenExtendedSessionRejected(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	addr := catalog.Addresses[catalog.BCM]
	mock.Expect(addr.TxID, []byte{0x3E, 0x00}, []byte{0x7E, 0x00})
	mock.Expect(addr.TxID, []byte{0x10, 0x03}, []byte{0x7F, 0x10, 0x22})

	c, err := o.clientFor(catalog.BCM)
	if err != nil {
		t.Fatalf("clientFor: %v", err)
	}
	if err := sddPrerequisiteFlow(c, false); err == nil {
		t.Fatal("expected error when extended session request is negatively acknowledged")
	}
}
