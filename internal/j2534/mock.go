package j2534

import (
	"sync"
	"time"
)

// expectation is a single expected request/response pair keyed on the
// CAN ID it arrives on, ported from the reference implementation's
// MockChannel (src-tauri/src/j2534/mock.rs).
type expectation struct {
	txID      uint32
	request   []byte
	responses [][]byte
}

// pendingMsg is a queued response waiting to be drained by ReadMsgs.
type pendingMsg struct {
	rxID uint32
	data []byte
}

// Mock is an in-memory Binding used by the package tests (j2534, uds,
// emulator, connection, orchestrator) in place of a real adapter. It replays
// expectations registered with Expect/ExpectMulti and records every
// filter installed and every message written, the same shape the
// reference implementation's MockChannel exposes for assertions.
type Mock struct {
	mu sync.Mutex

	expectations []expectation
	pending      []pendingMsg
	sent         []pendingMsg
	filters      []Filter
	timeoutMode  bool

	nextChannelID uint32
	nextFilterID  uint32
}

// NewMock returns an empty mock binding.
func NewMock() *Mock {
	return &Mock{nextChannelID: 1}
}

// Expect registers a single request/response pair: when a message with
// this exact CAN ID and payload is written, the response is queued for
// the next read.
func (m *Mock) Expect(txID uint32, request, response []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expectations = append(m.expectations, expectation{
		txID: txID, request: request, responses: [][]byte{response},
	})
}

// ExpectMulti registers a request that yields more than one queued
// response, for pending-response scenarios (0x7F/0x78 followed by the
// real answer).
func (m *Mock) ExpectMulti(txID uint32, request []byte, responses [][]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expectations = append(m.expectations, expectation{
		txID: txID, request: request, responses: responses,
	})
}

// SetTimeoutMode makes ReadMsgs return zero messages, simulating an ECU
// that never answers.
func (m *Mock) SetTimeoutMode(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeoutMode = enabled
}

// SentMessages returns every (CAN ID, payload) pair written so far.
func (m *Mock) SentMessages() []struct {
	TxID    uint32
	Payload []byte
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]struct {
		TxID    uint32
		Payload []byte
	}, len(m.sent))
	for i, s := range m.sent {
		out[i] = struct {
			TxID    uint32
			Payload []byte
		}{TxID: s.rxID, Payload: s.data}
	}
	return out
}

// Verify reports how many expectations were never consumed, so a test
// can assert the number is zero.
func (m *Mock) Verify() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.expectations)
}

func (m *Mock) rxIDForTx(txID uint32) uint32 {
	for _, f := range m.filters {
		if f.Pattern == txID {
			return f.FlowControlID
		}
	}
	return txID + 8
}

func (m *Mock) Open(name string) (uint32, error) { return 1, nil }
func (m *Mock) Close(deviceID uint32) error       { return nil }

func (m *Mock) Connect(deviceID, protocol, flags, baud uint32) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextChannelID
	m.nextChannelID++
	return id, nil
}

func (m *Mock) Disconnect(channelID uint32) error { return nil }

func (m *Mock) StartMsgFilter(channelID, filterType uint32, mask, pattern, flowControl *Envelope) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := Filter{}
	if pattern != nil {
		f.Pattern = pattern.CANID()
	}
	if flowControl != nil {
		f.FlowControlID = flowControl.CANID()
	}
	m.filters = append(m.filters, f)
	id := m.nextFilterID
	m.nextFilterID++
	return id, nil
}

func (m *Mock) StopMsgFilter(channelID, filterID uint32) error { return nil }

func (m *Mock) WriteMsgs(channelID uint32, msgs []Envelope, timeout time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		txID := msg.CANID()
		payload := append([]byte(nil), msg.Payload()...)
		m.sent = append(m.sent, pendingMsg{rxID: txID, data: payload})

		for i, exp := range m.expectations {
			if exp.txID == txID && bytesEqual(exp.request, payload) {
				rxID := m.rxIDForTx(txID)
				for _, resp := range exp.responses {
					m.pending = append(m.pending, pendingMsg{rxID: rxID, data: resp})
				}
				m.expectations = append(m.expectations[:i], m.expectations[i+1:]...)
				break
			}
		}
	}
	return len(msgs), nil
}

func (m *Mock) ReadMsgs(channelID uint32, out []Envelope, timeout time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timeoutMode {
		return 0, nil
	}
	n := 0
	for n < len(out) && len(m.pending) > 0 {
		msg := m.pending[0]
		m.pending = m.pending[1:]
		out[n] = envelopeFromISOTP(msg.rxID, msg.data)
		n++
	}
	return n, nil
}

func (m *Mock) Ioctl(channelID, ioctlID uint32, params map[uint32]uint32) error { return nil }

func (m *Mock) ReadVersion(deviceID uint32) (string, string, string, error) {
	return "mock-dll-1.0", "mock-api-04.04", "mock-fw-1.0", nil
}

func envelopeFromISOTP(canID uint32, payload []byte) Envelope {
	e := Envelope{
		Protocol: ProtocolISOTP,
		TxFlags:  TxFlagPad,
		DataSize: uint32(4 + len(payload)),
	}
	e.Data[0] = byte(canID >> 24)
	e.Data[1] = byte(canID >> 16)
	e.Data[2] = byte(canID >> 8)
	e.Data[3] = byte(canID)
	copy(e.Data[4:], payload)
	return e
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
