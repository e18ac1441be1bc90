package emulator

import (
	"sync/atomic"
	"time"

	"github.com/brutella/can"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/j2534"
	"jlrdiag/internal/logsink"
)

// broadcastInterval is how often the worker replays the full frame
// table, matching typical CAN bus timing (spec.md §4.E).
const broadcastInterval = 100 * time.Millisecond

// broadcastSettleDelay lets a freshly opened raw-CAN channel settle
// before the first write.
const broadcastSettleDelay = 100 * time.Millisecond

// Manager is the multi-ECU emulator: synchronous software routing via
// Dispatch, plus an optional broadcast worker that owns a raw-CAN
// channel for its lifetime and only ever writes to it (spec.md §4.E,
// §9 "Shared DLL function pointers across threads" — the manager is
// handed the binding by value and never touches the connection).
type Manager struct {
	binding     j2534.Binding
	emulatedECU []catalog.ECU
	sink        logsink.Sink

	running atomic.Bool
	done    chan struct{}
}

// New creates a software-routing-only emulator for the given ECUs, with
// no broadcast worker.
func New(ecus []catalog.ECU, sink logsink.Sink) *Manager {
	if sink == nil {
		sink = logsink.NullSink{}
	}
	m := &Manager{emulatedECU: ecus, sink: sink}
	for _, ecu := range ecus {
		m.sink.Emit(logsink.NewRecord(logsink.Tx, "", describeECU(ecu)+" attached"))
	}
	return m
}

// EmulatedECUs returns the set of ECUs this manager answers for.
func (m *Manager) EmulatedECUs() []catalog.ECU { return m.emulatedECU }

// TryHandle attempts to answer a request addressed to txID locally.
// Returns ok=false if txID belongs to no emulated ECU.
func (m *Manager) TryHandle(txID uint32, request []byte) ([]byte, bool) {
	return Dispatch(m.emulatedECU, txID, request)
}

// StartBroadcast opens the write-only raw-CAN broadcast loop on the
// given already-connected raw-CAN channel. The worker never reads, so
// it cannot race with the UDS client's ISO-TP reader (spec.md §4.E,
// §9 "Ordering").
func (m *Manager) StartBroadcast(binding j2534.Binding, rawCANChannelID uint32) {
	if m.running.Load() {
		return
	}
	m.binding = binding
	m.running.Store(true)
	m.done = make(chan struct{})

	go m.broadcastLoop(rawCANChannelID)
}

// Stop signals the broadcast worker to exit and waits for it to finish.
// Idempotent; safe to call on a manager that never started broadcasting.
func (m *Manager) Stop() {
	if !m.running.CompareAndSwap(true, false) {
		return
	}
	<-m.done
}

func (m *Manager) broadcastLoop(channelID uint32) {
	defer close(m.done)
	time.Sleep(broadcastSettleDelay)

	for m.running.Load() {
		for _, frame := range broadcastMsgs {
			if !m.running.Load() {
				return
			}
			msg := rawCANEnvelope(frame)
			if _, err := m.binding.WriteMsgs(channelID, []j2534.Envelope{msg}, 50*time.Millisecond); err != nil {
				m.sink.Emit(logsink.NewRecord(logsink.Error, "", "broadcast write failed: "+err.Error()))
			}
		}
		time.Sleep(broadcastInterval)
	}
}

// rawCANEnvelope packs a can.Frame into the vendor pass-through envelope's
// raw-CAN data layout: four big-endian ID bytes followed by the payload.
func rawCANEnvelope(frame can.Frame) j2534.Envelope {
	n := int(frame.Length)
	e := j2534.Envelope{
		Protocol: j2534.ProtocolRawCAN,
		DataSize: uint32(4 + n),
	}
	e.Data[0] = byte(frame.ID >> 24)
	e.Data[1] = byte(frame.ID >> 16)
	e.Data[2] = byte(frame.ID >> 8)
	e.Data[3] = byte(frame.ID)
	copy(e.Data[4:], frame.Data[:n])
	return e
}
