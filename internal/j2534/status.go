package j2534

import "fmt"

// Status is the vendor DLL's return code from every entry point. 0 (STATUS_NOERROR)
// is success; everything else names a specific failure (spec.md §4.A).
type Status uint32

const (
	StatusNoError             Status = 0x00
	StatusNotSupported        Status = 0x01
	StatusInvalidChannelID    Status = 0x02
	StatusInvalidProtocolID   Status = 0x03
	StatusNullParameter       Status = 0x04
	StatusInvalidIoctlValue   Status = 0x05
	StatusInvalidFlags        Status = 0x06
	StatusFailed              Status = 0x07
	StatusDeviceNotConnected  Status = 0x08
	StatusTimeout             Status = 0x09
	StatusInvalidMsg          Status = 0x0A
	StatusInvalidTimeInterval Status = 0x0B
	StatusExceededLimit       Status = 0x0C
	StatusInvalidMsgID        Status = 0x0D
	StatusDeviceInUse         Status = 0x0E
	StatusInvalidIoctlID      Status = 0x0F
	StatusBufferEmpty         Status = 0x10
	StatusBufferFull          Status = 0x11
	StatusBufferOverflow      Status = 0x12
	StatusPinInvalid          Status = 0x13
	StatusChannelInUse        Status = 0x14
	StatusMsgProtocolID       Status = 0x15
	StatusInvalidFilterID     Status = 0x16
	StatusNoFlowControl       Status = 0x17
	StatusNotUnique           Status = 0x18
	StatusInvalidBaudrate     Status = 0x19
	StatusInvalidDeviceID     Status = 0x1A
)

var statusNames = map[Status]string{
	StatusNoError:             "NOERROR",
	StatusNotSupported:        "NOT_SUPPORTED",
	StatusInvalidChannelID:    "INVALID_CHANNEL_ID",
	StatusInvalidProtocolID:   "INVALID_PROTOCOL_ID",
	StatusNullParameter:       "NULL_PARAMETER",
	StatusInvalidIoctlValue:   "INVALID_IOCTL_VALUE",
	StatusInvalidFlags:        "INVALID_FLAGS",
	StatusFailed:              "FAILED",
	StatusDeviceNotConnected:  "DEVICE_NOT_CONNECTED",
	StatusTimeout:             "TIMEOUT",
	StatusInvalidMsg:          "INVALID_MSG",
	StatusInvalidTimeInterval: "INVALID_TIME_INTERVAL",
	StatusExceededLimit:       "EXCEEDED_LIMIT",
	StatusInvalidMsgID:        "INVALID_MSG_ID",
	StatusDeviceInUse:         "DEVICE_IN_USE",
	StatusInvalidIoctlID:      "INVALID_IOCTL_ID",
	StatusBufferEmpty:         "BUFFER_EMPTY",
	StatusBufferFull:          "BUFFER_FULL",
	StatusBufferOverflow:      "BUFFER_OVERFLOW",
	StatusPinInvalid:          "PIN_INVALID",
	StatusChannelInUse:        "CHANNEL_IN_USE",
	StatusMsgProtocolID:       "MSG_PROTOCOL_ID",
	StatusInvalidFilterID:     "INVALID_FILTER_ID",
	StatusNoFlowControl:       "NO_FLOW_CONTROL",
	StatusNotUnique:           "NOT_UNIQUE",
	StatusInvalidBaudrate:     "INVALID_BAUDRATE",
	StatusInvalidDeviceID:     "INVALID_DEVICE_ID",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", uint32(s))
}

// IsBenign reports whether a status represents an expected, retriable
// condition rather than a hard failure: a read that simply found nothing
// (BufferEmpty) or one that timed out waiting for more data (Timeout).
// Callers polling read_msgs in a loop treat both as "no message yet",
// never as fatal (spec.md §4.A, §9).
func (s Status) IsBenign() bool {
	return s == StatusBufferEmpty || s == StatusTimeout
}

// AsError converts a non-zero status into an error, or nil for success.
func (s Status) AsError() error {
	if s == StatusNoError {
		return nil
	}
	return &StatusError{Status: s}
}

// StatusError wraps a non-zero pass-through status as an error.
type StatusError struct {
	Status Status
	Op     string
}

func (e *StatusError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("j2534: status %s", e.Status)
	}
	return fmt.Sprintf("j2534: %s: status %s", e.Op, e.Status)
}
