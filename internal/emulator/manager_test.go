package emulator

import (
	"testing"
	"time"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/j2534"
)

func TestStartBroadcastWritesFrameTable(t *testing.T) {
	mock := j2534.NewMock()
	m := New([]catalog.ECU{catalog.BCM}, nil)

	m.StartBroadcast(mock, 1)
	time.Sleep(broadcastSettleDelay + broadcastInterval + 50*time.Millisecond)
	m.Stop()

	sent := mock.SentMessages()
	if len(sent) < len(broadcastMsgs) {
		t.Fatalf("got %d sent messages, want at least %d", len(sent), len(broadcastMsgs))
	}

	first := broadcastMsgs[0]
	if sent[0].TxID != first.ID {
		t.Errorf("first frame ID = %#x, want %#x", sent[0].TxID, first.ID)
	}
	if string(sent[0].Payload) != string(first.Data[:first.Length]) {
		t.Errorf("first frame payload = % X, want % X", sent[0].Payload, first.Data[:first.Length])
	}
}

func TestStopIsIdempotentWithoutStart(t *testing.T) {
	m := New(nil, nil)
	m.Stop() // must not block or panic
}
