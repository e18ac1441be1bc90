// Package j2534 binds the vendor-supplied SAE J2534 pass-through shared
// library: loading it, resolving its eleven entry points, and exposing
// the fixed-layout message envelope and status codes its ABI defines
// (spec.md §4.A, §6).
package j2534

import "encoding/binary"

// Protocol tags identify the network a channel speaks.
const (
	ProtocolRawCAN uint32 = 5
	ProtocolISOTP  uint32 = 6
)

// TxFlag bits control how a message is transmitted.
const (
	TxFlagPad uint32 = 0x40
)

// FilterType selects the filter installed on a channel.
const (
	FilterTypeFlowControl uint32 = 3
)

// Ioctl identifiers and parameter IDs used at connection time.
const (
	IoctlSetConfig uint32 = 0x02

	ParamBlockSize      uint32 = 0x1E
	ParamSeparationTime uint32 = 0x1F
	ParamWaitFrameMax   uint32 = 0x24
)

// Baud rate used for the ISO-TP channel (spec.md §6).
const BaudISOTP uint32 = 500000

// EnvelopeSize and DataOffset are ABI invariants: the vendor message
// struct is exactly this many bytes, and its data buffer starts at this
// offset (spec.md §3, §6, §8).
const (
	EnvelopeSize  = 4152
	DataOffset    = 24
	DataBufferLen = 4128
)

// Envelope is the fixed-layout pass-through message record: six u32
// header fields followed by a 4128-byte data buffer whose first four
// bytes are the big-endian CAN ID.
type Envelope struct {
	Protocol        uint32
	RxStatus        uint32
	TxFlags         uint32
	Timestamp       uint32
	DataSize        uint32
	ExtraDataIndex  uint32
	Data            [DataBufferLen]byte
}

// MarshalBinary encodes the envelope to the exact vendor wire layout
// (EnvelopeSize bytes, data field at DataOffset), grounded on the
// MarshalBinary/UnmarshalBinary convention used for CAN frames in the
// retrieval pack (notnil/canbus's Frame type).
func (e *Envelope) MarshalBinary() ([]byte, error) {
	buf := make([]byte, EnvelopeSize)
	binary.LittleEndian.PutUint32(buf[0:4], e.Protocol)
	binary.LittleEndian.PutUint32(buf[4:8], e.RxStatus)
	binary.LittleEndian.PutUint32(buf[8:12], e.TxFlags)
	binary.LittleEndian.PutUint32(buf[12:16], e.Timestamp)
	binary.LittleEndian.PutUint32(buf[16:20], e.DataSize)
	binary.LittleEndian.PutUint32(buf[20:24], e.ExtraDataIndex)
	copy(buf[DataOffset:], e.Data[:])
	return buf, nil
}

// UnmarshalBinary decodes an envelope from the vendor wire layout.
func (e *Envelope) UnmarshalBinary(buf []byte) error {
	if len(buf) != EnvelopeSize {
		return ErrMalformedEnvelope
	}
	e.Protocol = binary.LittleEndian.Uint32(buf[0:4])
	e.RxStatus = binary.LittleEndian.Uint32(buf[4:8])
	e.TxFlags = binary.LittleEndian.Uint32(buf[8:12])
	e.Timestamp = binary.LittleEndian.Uint32(buf[12:16])
	e.DataSize = binary.LittleEndian.Uint32(buf[16:20])
	e.ExtraDataIndex = binary.LittleEndian.Uint32(buf[20:24])
	copy(e.Data[:], buf[DataOffset:])
	return nil
}

// CANID returns the big-endian CAN identifier from the first four data
// bytes.
func (e *Envelope) CANID() uint32 {
	return binary.BigEndian.Uint32(e.Data[0:4])
}

// Payload returns the bytes following the CAN ID, sized by DataSize.
func (e *Envelope) Payload() []byte {
	if e.DataSize < 4 {
		return nil
	}
	n := e.DataSize - 4
	if int(4+n) > len(e.Data) {
		n = uint32(len(e.Data)) - 4
	}
	return e.Data[4 : 4+n]
}

// Filter is the mask/pattern/flow-control triple for one ECU address
// pair (spec.md §3, §4.B).
type Filter struct {
	Mask           uint32
	Pattern        uint32
	FlowControlID  uint32
}

// FlowControlParams is the {block-size, separation-time, wait-frame-max}
// ioctl set applied at connection time to disable flow-control
// back-pressure (spec.md §4.B).
var FlowControlParams = map[uint32]uint32{
	ParamBlockSize:      0,
	ParamSeparationTime: 0,
	ParamWaitFrameMax:   0,
}
