package connection

import (
	"fmt"
	"strings"
	"time"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/emulator"
	"jlrdiag/internal/j2534"
	"jlrdiag/internal/logsink"
)

// rawCANBaud matches the ISO-TP channel's bit rate; the broadcast
// worker shares the bus, just a different protocol tag on the wire.
const rawCANBaud = 500000

// ToggleBenchMode turns multi-ECU emulation on or off. Any previous
// emulator and raw-CAN broadcast channel are always torn down first,
// so calling this repeatedly is safe (spec.md §4.G "toggle bench
// mode"). Enabling opens a second raw-CAN channel for the broadcast
// worker; some adapters only support one channel at a time, in which
// case emulation still answers over the ISO-TP channel via software
// routing and the broadcast worker is simply not started, matching
// the reference's MongoosePro fallback.
func (m *Manager) ToggleBenchMode(enabled bool, ecus []catalog.ECU) (BenchStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.binding == nil {
		return BenchStatus{}, fmt.Errorf("connection: not connected")
	}

	m.stopBenchLocked()

	if !enabled {
		m.emit(logsink.Rx, "Bench mode OFF — emulation stopped")
		return BenchStatus{}, nil
	}

	if len(ecus) == 0 {
		ecus = []catalog.ECU{catalog.BCM}
	}
	for _, ecu := range ecus {
		if ecu == catalog.IMC {
			return BenchStatus{}, fmt.Errorf("connection: IMC cannot be emulated, it is the device under test")
		}
	}

	names := make([]string, len(ecus))
	for i, ecu := range ecus {
		names[i] = ecu.String()
	}

	mgr := emulator.New(ecus, m.sink)

	canChannelID, err := m.binding.Connect(m.deviceID, j2534.ProtocolRawCAN, 0, rawCANBaud)
	broadcasting := err == nil
	if broadcasting {
		m.canChannelID = canChannelID
		m.canOpen = true
		mgr.StartBroadcast(m.binding, canChannelID)
		m.emit(logsink.Rx, fmt.Sprintf("Bench mode ON — emulating: %s (CAN broadcast active)", strings.Join(names, ", ")))
	} else {
		m.emit(logsink.Rx, fmt.Sprintf("Bench mode ON — emulating: %s (software routing only, no CAN broadcast)", strings.Join(names, ", ")))
	}

	m.emu = mgr
	return BenchStatus{Enabled: true, EmulatedECUs: ecus, Broadcasting: broadcasting}, nil
}

// Status reports the currently active emulator, if any.
func (m *Manager) Status() BenchStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emu == nil {
		return BenchStatus{}
	}
	return BenchStatus{Enabled: true, EmulatedECUs: m.emu.EmulatedECUs(), Broadcasting: m.canOpen}
}

// Emulator returns the active emulator manager, used by the UDS client
// to install a software short-circuit (spec.md §4.C step 1).
func (m *Manager) Emulator() *emulator.Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.emu
}

// SwapForBroadcast runs the channel-swap sequence used by adapters that
// only support one open channel at a time: close the ISO-TP channel,
// open a raw-CAN channel, replay the broadcast worker's frame table for
// d, close the raw-CAN channel, then reopen ISO-TP and reinstall every
// ECU filter (spec.md §4.G "A special channel-swap sequence"). Intended
// to run once before the IMC wake flow when ToggleBenchMode reported
// Broadcasting=false.
func (m *Manager) SwapForBroadcast(d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.binding == nil {
		return fmt.Errorf("connection: not connected")
	}
	if m.channelID == 0 {
		return fmt.Errorf("connection: no ISO-TP channel to swap out")
	}

	m.binding.Disconnect(m.channelID)
	m.channelID = 0

	canChannelID, err := m.binding.Connect(m.deviceID, j2534.ProtocolRawCAN, 0, rawCANBaud)
	if err != nil {
		return fmt.Errorf("connection: open raw-CAN channel for swap: %w", err)
	}

	swap := emulator.New(nil, m.sink)
	swap.StartBroadcast(m.binding, canChannelID)
	m.emit(logsink.Tx, "Channel swap: broadcasting NM frames on raw-CAN")
	time.Sleep(d)
	swap.Stop()

	m.binding.Disconnect(canChannelID)

	channelID, err := m.binding.Connect(m.deviceID, j2534.ProtocolISOTP, 0, isoTPBaud)
	if err != nil {
		return fmt.Errorf("connection: reopen ISO-TP channel after swap: %w", err)
	}
	for _, ecu := range catalog.AllECUs {
		addr := catalog.Addresses[ecu]
		if err := installFilter(m.binding, channelID, addr.TxID, addr.RxID); err != nil {
			m.binding.Disconnect(channelID)
			return fmt.Errorf("connection: reinstall filter for %s after swap: %w", ecu, err)
		}
	}
	m.channelID = channelID
	m.emit(logsink.Rx, "Channel swap complete: ISO-TP channel restored")
	return nil
}

// stopBenchLocked stops any running broadcast worker and closes the
// raw-CAN channel. Called with m.mu already held.
func (m *Manager) stopBenchLocked() {
	if m.emu != nil {
		m.emu.Stop()
		m.emu = nil
	}
	if m.canOpen {
		m.binding.Disconnect(m.canChannelID)
		m.canOpen = false
		m.canChannelID = 0
	}
}
