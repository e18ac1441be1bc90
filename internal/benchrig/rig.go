// Package benchrig is a software stand-in for a serial- or TCP-attached
// CAN bus, used to bring up and soak-test a bench harness before it has a
// real J2534 adapter wired in. It writes raw-CAN frames on a fixed
// interval over whatever DataWriter it is given — a serial port, a TCP
// socket, or a test double — independent of internal/connection's
// pass-through-DLL path.
package benchrig

import (
	"time"

	"github.com/brutella/can"
)

// DataWriter is the write/close surface a Rig drives, letting the same
// frame-replay loop run over a serial port, a TCP connection, or a test
// buffer.
type DataWriter interface {
	Write([]byte) (int, error)
	Close() error
}

// testFrames are a handful of representative NM-heartbeat-shaped CAN
// frames used to soak-test a serial or TCP bench link before it is
// pointed at a real adapter.
var testFrames = []can.Frame{
	{ID: 0x3E1, Length: 8, Data: [8]byte{0x08, 0x01, 0x00, 0x00, 0x16, 0x04, 0x00, 0x01}},
	{ID: 0x5E1, Length: 8, Data: [8]byte{0x0A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
	{ID: 0x6E1, Length: 8, Data: [8]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
}

// Rig replays testFrames over a DataWriter on a fixed interval until
// stopped, the same ticker + stop-channel shape as the teacher's
// simulator.Simulator.
type Rig struct {
	writer   DataWriter
	interval time.Duration
	done     chan struct{}
}

// NewRig creates a rig that writes a frame every interval.
func NewRig(writer DataWriter, interval time.Duration) *Rig {
	return &Rig{writer: writer, interval: interval, done: make(chan struct{})}
}

// Start begins the replay loop. Returns when Stop is called or a write
// fails (e.g. the peer closed the connection).
func (r *Rig) Start() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ticker.C:
			frame := testFrames[i%len(testFrames)]
			if _, err := r.writer.Write(encodeFrame(frame)); err != nil {
				return
			}
			i++
		case <-r.done:
			return
		}
	}
}

// Stop halts the replay loop and closes the underlying writer.
func (r *Rig) Stop() {
	close(r.done)
	r.writer.Close()
}

// encodeFrame packs a can.Frame as four big-endian ID bytes followed by
// its data bytes, a plain wire format for the serial/TCP bench link
// (distinct from the vendor pass-through envelope internal/j2534 uses).
func encodeFrame(frame can.Frame) []byte {
	n := int(frame.Length)
	buf := make([]byte, 4+n)
	buf[0] = byte(frame.ID >> 24)
	buf[1] = byte(frame.ID >> 16)
	buf[2] = byte(frame.ID >> 8)
	buf[3] = byte(frame.ID)
	copy(buf[4:], frame.Data[:n])
	return buf
}
