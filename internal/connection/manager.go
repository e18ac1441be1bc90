// Package connection owns the lifecycle of a single pass-through
// adapter: library load, device open, ISO-TP channel connect with
// filters for all four platform ECUs, and the optional bench-mode
// raw-CAN channel swap. Grounded on original_source's commands.rs
// connect/disconnect/toggle_bench_mode and j2534/device.rs's
// J2534Device/J2534Channel composite-ownership shape.
package connection

import (
	"fmt"
	"sync"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/emulator"
	"jlrdiag/internal/j2534"
	"jlrdiag/internal/logsink"
)

// DefaultLibraryPath is tried when adapter auto-detection finds nothing
// in the registry, matching the reference client's fallback to a known
// Mongoose Pro JLR install path.
const DefaultLibraryPath = `C:\Program Files (x86)\Drew Technologies, Inc\J2534\MongoosePro JLR\monpj432.dll`

// isoTPBaud is the fixed ISO 15765 bit rate for this platform (spec.md §4.A).
const isoTPBaud = 500000

// Info describes a live connection, returned to callers after Connect.
type Info struct {
	LibraryPath     string
	FirmwareVersion string
	DLLVersion      string
	APIVersion      string
}

// BenchStatus reports whether bench-mode emulation is active and which
// ECUs it answers for.
type BenchStatus struct {
	Enabled      bool
	EmulatedECUs []catalog.ECU
	Broadcasting bool
}

// opener is the subset of package-level constructors Manager calls
// through, swapped out in tests to avoid touching real DLLs/registry.
type opener struct {
	open     func(libraryPath string) (j2534.Binding, error)
	discover func() ([]j2534.AdapterInfo, error)
}

// Manager owns one adapter connection at a time: the loaded binding,
// its open device, the ISO-TP channel, and (when bench mode is on) a
// second raw-CAN channel plus the emulator manager driving it. A single
// mutex serializes every lifecycle operation (spec.md §5), the same
// one-coarse-lock discipline the reference's AppState uses around its
// Connection.
type Manager struct {
	mu   sync.Mutex
	sink logsink.Sink
	opn  opener

	binding     j2534.Binding
	libraryPath string
	deviceID    uint32
	channelID   uint32

	canChannelID uint32
	canOpen      bool
	emu          *emulator.Manager
}

// New creates a disconnected Manager. sink may be nil.
func New(sink logsink.Sink) *Manager {
	if sink == nil {
		sink = logsink.NullSink{}
	}
	return &Manager{
		sink: sink,
		opn:  opener{open: j2534.OpenBinding, discover: j2534.DiscoverAdapters},
	}
}

// SetOpenerForTest swaps the adapter-open and registry-discovery
// functions for a test double (typically a shared j2534.Mock), so
// other packages' tests can drive a real Manager without touching a
// DLL or the Windows registry.
func (m *Manager) SetOpenerForTest(open func(libraryPath string) (j2534.Binding, error), discover func() ([]j2534.AdapterInfo, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opn = opener{open: open, discover: discover}
}

// Connected reports whether a device is currently open.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.binding != nil
}

// Connect loads a pass-through DLL, opens a device, connects an ISO-TP
// channel at 500 kbit/s, and installs flow-control filters for IMC,
// BCM, GWM, and IPC. If libraryPath is empty, every adapter the
// registry reports is tried in turn, falling back to DefaultLibraryPath
// if none opens (spec.md §4.A, §5 "Connect").
func (m *Manager) Connect(libraryPath string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.binding != nil {
		return Info{}, fmt.Errorf("connection: already connected, disconnect first")
	}

	binding, deviceID, path, err := m.openAdapter(libraryPath)
	if err != nil {
		return Info{}, err
	}

	dll, api, fw, err := binding.ReadVersion(deviceID)
	if err != nil {
		binding.Close(deviceID)
		return Info{}, fmt.Errorf("connection: read version: %w", err)
	}
	m.emit(logsink.Rx, fmt.Sprintf("Connected. FW: %s, DLL: %s, API: %s", fw, dll, api))

	channelID, err := binding.Connect(deviceID, j2534.ProtocolISOTP, 0, isoTPBaud)
	if err != nil {
		binding.Close(deviceID)
		return Info{}, fmt.Errorf("connection: connect ISO-TP channel: %w", err)
	}

	for _, ecu := range catalog.AllECUs {
		addr := catalog.Addresses[ecu]
		if err := installFilter(binding, channelID, addr.TxID, addr.RxID); err != nil {
			binding.Disconnect(channelID)
			binding.Close(deviceID)
			return Info{}, fmt.Errorf("connection: filter for %s: %w", ecu, err)
		}
	}
	m.emit(logsink.Rx, "ISO15765 channel connected, IMC + BCM + GWM + IPC filters set")

	m.binding = binding
	m.libraryPath = path
	m.deviceID = deviceID
	m.channelID = channelID

	return Info{LibraryPath: path, FirmwareVersion: fw, DLLVersion: dll, APIVersion: api}, nil
}

// openAdapter resolves which binding to use: an explicit path, or
// auto-detection over every registry-discovered adapter with a final
// fallback to DefaultLibraryPath.
func (m *Manager) openAdapter(libraryPath string) (j2534.Binding, uint32, string, error) {
	if libraryPath != "" {
		m.emit(logsink.Tx, "Loading J2534 DLL: "+libraryPath)
		binding, err := m.opn.open(libraryPath)
		if err != nil {
			return nil, 0, "", fmt.Errorf("connection: load %s: %w", libraryPath, err)
		}
		deviceID, err := binding.Open("")
		if err != nil {
			return nil, 0, "", fmt.Errorf("connection: open device: %w", err)
		}
		return binding, deviceID, libraryPath, nil
	}

	adapters, err := m.opn.discover()
	if err != nil {
		adapters = nil
	}
	m.emit(logsink.Tx, fmt.Sprintf("Auto-detect: found %d J2534 devices", len(adapters)))

	lastErr := fmt.Errorf("no J2534 devices found in registry")
	for _, a := range adapters {
		m.emit(logsink.Tx, fmt.Sprintf("Trying: %s (%s)", a.Name, a.LibraryPath))
		binding, err := m.opn.open(a.LibraryPath)
		if err != nil {
			lastErr = err
			continue
		}
		deviceID, err := binding.Open("")
		if err != nil {
			lastErr = err
			continue
		}
		m.emit(logsink.Rx, "Connected to "+a.Name)
		return binding, deviceID, a.LibraryPath, nil
	}

	m.emit(logsink.Tx, "Auto-detect: trying default Mongoose path: "+DefaultLibraryPath)
	if binding, err := m.opn.open(DefaultLibraryPath); err == nil {
		if deviceID, err := binding.Open(""); err == nil {
			return binding, deviceID, DefaultLibraryPath, nil
		}
	}

	return nil, 0, "", fmt.Errorf("connection: no J2534 device responded: %w", lastErr)
}

// Disconnect tears the connection down in reverse acquisition order:
// bench-mode emulator/CAN channel, then the ISO-TP channel, then the
// device, and finally drops the manager's reference to the binding. The
// loaded adapter library itself is not unloaded: Binding has no unload
// operation. Idempotent — calling it while already disconnected is a
// no-op (spec.md §5 "Disconnect").
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnectLocked()
}

func (m *Manager) disconnectLocked() error {
	if m.binding == nil {
		return nil
	}

	m.stopBenchLocked()

	if m.channelID != 0 {
		m.binding.Disconnect(m.channelID)
	}
	m.binding.Close(m.deviceID)

	m.binding = nil
	m.libraryPath = ""
	m.deviceID = 0
	m.channelID = 0

	m.emit(logsink.Tx, "Disconnected from J2534 device")
	return nil
}

func (m *Manager) emit(dir logsink.Direction, description string) {
	m.sink.Emit(logsink.NewRecord(dir, "", description))
}

// installFilter opens a flow-control pass filter for one ECU's
// tx/rx pair and applies the standard block-size/separation-time/
// wait-frame-max ioctl to the channel (spec.md §4.A).
func installFilter(binding j2534.Binding, channelID, txID, rxID uint32) error {
	mask := isoTPEnvelope(0x1FFFFFFF)
	pattern := isoTPEnvelope(rxID)
	flowControl := isoTPEnvelope(txID)
	if _, err := binding.StartMsgFilter(channelID, j2534.FilterTypeFlowControl, &mask, &pattern, &flowControl); err != nil {
		return err
	}
	return binding.Ioctl(channelID, j2534.IoctlSetConfig, j2534.FlowControlParams)
}

func isoTPEnvelope(canID uint32) j2534.Envelope {
	e := j2534.Envelope{Protocol: j2534.ProtocolISOTP, DataSize: 4}
	e.Data[0] = byte(canID >> 24)
	e.Data[1] = byte(canID >> 16)
	e.Data[2] = byte(canID >> 8)
	e.Data[3] = byte(canID)
	return e
}

// Binding exposes the live binding and ISO-TP channel for callers
// (the UDS client, orchestrator) that need to drive traffic directly.
// Returns ok=false when not connected.
func (m *Manager) Binding() (binding j2534.Binding, channelID uint32, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.binding == nil {
		return nil, 0, false
	}
	return m.binding, m.channelID, true
}
