package uds

import (
	"testing"
	"time"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/j2534"
)

func newTestClient(t *testing.T) (*Client, *j2534.Mock) {
	t.Helper()
	mock := j2534.NewMock()
	chID, err := mock.Connect(1, j2534.ProtocolISOTP, 0, j2534.BaudISOTP)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	mask := j2534.Envelope{}
	pattern := newISOTPEnvelope(0x7B3, nil)
	fc := newISOTPEnvelope(0x7BB, nil)
	if _, err := mock.StartMsgFilter(chID, j2534.FilterTypeFlowControl, &mask, &pattern, &fc); err != nil {
		t.Fatalf("StartMsgFilter: %v", err)
	}
	return NewClient(mock, chID, 0x7B3, 0x7BB, nil), mock
}

func TestSendRecvPositiveResponse(t *testing.T) {
	client, mock := newTestClient(t)
	mock.Expect(0x7B3, []byte{0x22, 0xF1, 0x90}, []byte{0x62, 0xF1, 0x90, 0x53, 0x41, 0x4A})

	resp, err := client.SendRecv([]byte{0x22, 0xF1, 0x90}, 2*time.Second, false)
	if err != nil {
		t.Fatalf("SendRecv: %v", err)
	}
	want := []byte{0x62, 0xF1, 0x90, 0x53, 0x41, 0x4A}
	if string(resp) != string(want) {
		t.Errorf("response = % X, want % X", resp, want)
	}
}

func TestSendRecvNegativeResponse(t *testing.T) {
	client, mock := newTestClient(t)
	mock.Expect(0x7B3, []byte{0x22, 0xFF, 0xFF}, []byte{0x7F, 0x22, 0x31})

	_, err := client.SendRecv([]byte{0x22, 0xFF, 0xFF}, 2*time.Second, false)
	nrc, ok := IsNegativeResponse(err)
	if !ok {
		t.Fatalf("expected a NegativeResponse error, got %v", err)
	}
	if nrc != catalog.RequestOutOfRange {
		t.Errorf("nrc = %v, want RequestOutOfRange", nrc)
	}
}

func TestSendRecvResponsePendingThenOK(t *testing.T) {
	client, mock := newTestClient(t)
	mock.ExpectMulti(0x7B3, []byte{0x31, 0x01, 0x60, 0x3E, 0x01}, [][]byte{
		{0x7F, 0x31, 0x78},
		{0x71, 0x01, 0x60, 0x3E},
	})

	resp, err := client.SendRecv([]byte{0x31, 0x01, 0x60, 0x3E, 0x01}, 5*time.Second, true)
	if err != nil {
		t.Fatalf("SendRecv: %v", err)
	}
	if resp[0] != 0x71 {
		t.Errorf("resp[0] = 0x%02X, want 0x71", resp[0])
	}
}

func TestSendRecvPendingOnlyTimesOut(t *testing.T) {
	client, mock := newTestClient(t)
	mock.Expect(0x7B3, []byte{0x31, 0x01, 0x60, 0x3E, 0x01}, []byte{0x7F, 0x31, 0x78})

	_, err := client.SendRecv([]byte{0x31, 0x01, 0x60, 0x3E, 0x01}, 200*time.Millisecond, false)
	if !IsTimeout(err) {
		t.Fatalf("expected Timeout, got %v", err)
	}
}

func TestSendRecvNoResponseTimesOut(t *testing.T) {
	client, mock := newTestClient(t)
	mock.SetTimeoutMode(true)

	_, err := client.SendRecv([]byte{0x22, 0xF1, 0x90}, 200*time.Millisecond, false)
	if !IsTimeout(err) {
		t.Fatalf("expected Timeout, got %v", err)
	}
}

func TestSendRecvWrongServiceIDTimesOut(t *testing.T) {
	client, mock := newTestClient(t)
	mock.Expect(0x7B3, []byte{0x22, 0xF1, 0x90}, []byte{0x50, 0x03, 0x00, 0x19})

	_, err := client.SendRecv([]byte{0x22, 0xF1, 0x90}, 200*time.Millisecond, false)
	if !IsTimeout(err) {
		t.Fatalf("expected Timeout for an unmatched response id, got %v", err)
	}
}

func TestSendRecvStaleNRCIgnored(t *testing.T) {
	client, mock := newTestClient(t)
	mock.ExpectMulti(0x7B3, []byte{0x22, 0xF1, 0x90}, [][]byte{
		{0x7F, 0x10, 0x12},
		{0x62, 0xF1, 0x90, 0x56, 0x49, 0x4E},
	})

	resp, err := client.SendRecv([]byte{0x22, 0xF1, 0x90}, 2*time.Second, false)
	if err != nil {
		t.Fatalf("SendRecv: %v", err)
	}
	want := []byte{0x62, 0xF1, 0x90, 0x56, 0x49, 0x4E}
	if string(resp) != string(want) {
		t.Errorf("response = % X, want % X", resp, want)
	}
}

func TestSendRecvWithBusyRetryEventuallySucceeds(t *testing.T) {
	client, mock := newTestClient(t)
	mock.ExpectMulti(0x7B3, []byte{0x22, 0xF1, 0x90}, [][]byte{
		{0x7F, 0x22, 0x21},
	})
	mock.Expect(0x7B3, []byte{0x22, 0xF1, 0x90}, []byte{0x7F, 0x22, 0x21})
	mock.Expect(0x7B3, []byte{0x22, 0xF1, 0x90}, []byte{0x7F, 0x22, 0x21})
	mock.Expect(0x7B3, []byte{0x22, 0xF1, 0x90}, []byte{0x62, 0xF1, 0x90, 0x56, 0x49, 0x4E})

	resp, err := client.SendRecvWithBusyRetry([]byte{0x22, 0xF1, 0x90}, 2*time.Second, false)
	if err != nil {
		t.Fatalf("SendRecvWithBusyRetry: %v", err)
	}
	want := []byte{0x62, 0xF1, 0x90, 0x56, 0x49, 0x4E}
	if string(resp) != string(want) {
		t.Errorf("response = % X, want % X", resp, want)
	}
}

func TestSendNoResponseWritesWithoutWaiting(t *testing.T) {
	client, mock := newTestClient(t)
	if err := client.SendNoResponse([]byte{0x3E, 0x80}); err != nil {
		t.Fatalf("SendNoResponse: %v", err)
	}
	sent := mock.SentMessages()
	if len(sent) != 1 || sent[0].TxID != 0x7B3 {
		t.Fatalf("expected one message sent on 0x7B3, got %+v", sent)
	}
}
