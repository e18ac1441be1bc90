package connection

import (
	"fmt"
	"time"

	"jlrdiag/internal/j2534"
	"jlrdiag/internal/logsink"
)

// rawFrameBits approximates one standard-format CAN frame's bit cost on
// the wire (arbitration + control + CRC + ACK overhead), the same
// constant the teacher's bus-load calculation uses for every captured
// frame regardless of payload length beyond the 8 data bytes.
const rawFrameBits = 108

// BusActivity is a raw-CAN traffic snapshot: a per-ID frame count and
// the resulting bus-load percentage of the fixed 500 kbit/s link
// (spec.md §4.H "bus-load telemetry").
type BusActivity struct {
	Duration   time.Duration
	FrameIDs   map[uint32]int
	FrameCount int
	BusLoadPct float64
}

// SampleBusActivity opens a raw-CAN channel beside the ISO-TP channel for
// the sample window, counts every frame observed, and disconnects that
// raw-CAN channel again; the ISO-TP channel stays open throughout. It
// refuses to run while bench-mode broadcasting already owns the second
// channel — sampling during emulation would just count the emulator's
// own traffic back at itself.
func (m *Manager) SampleBusActivity(d time.Duration) (BusActivity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.binding == nil {
		return BusActivity{}, fmt.Errorf("connection: not connected")
	}
	if m.canOpen {
		return BusActivity{}, fmt.Errorf("connection: bench-mode broadcast already owns the raw-CAN channel")
	}

	canChannelID, err := m.binding.Connect(m.deviceID, j2534.ProtocolRawCAN, 0, rawCANBaud)
	if err != nil {
		return BusActivity{}, fmt.Errorf("connection: open raw-CAN channel for sampling: %w", err)
	}
	defer m.binding.Disconnect(canChannelID)

	activity := BusActivity{Duration: d, FrameIDs: make(map[uint32]int)}
	buf := make([]j2534.Envelope, 32)
	deadline := time.Now().Add(d)

	for time.Now().Before(deadline) {
		n, err := m.binding.ReadMsgs(canChannelID, buf, 100*time.Millisecond)
		if err != nil {
			continue
		}
		for i := 0; i < n; i++ {
			if buf[i].DataSize < 4 {
				continue
			}
			canID := buf[i].CANID()
			activity.FrameIDs[canID]++
			activity.FrameCount++
		}
	}

	totalBits := activity.FrameCount * rawFrameBits
	if seconds := d.Seconds(); seconds > 0 {
		bitsPerSecond := float64(totalBits) / seconds
		activity.BusLoadPct = bitsPerSecond / float64(rawCANBaud) * 100
	}

	m.emit(logsink.Rx, fmt.Sprintf("Bus sample: %d frames, %d unique IDs, %.1f%% load", activity.FrameCount, len(activity.FrameIDs), activity.BusLoadPct))
	return activity, nil
}
