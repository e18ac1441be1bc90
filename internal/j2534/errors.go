package j2534

import "errors"

// Sentinel errors independent of the status-code table below.
var (
	ErrMalformedEnvelope   = errors.New("j2534: envelope is not EnvelopeSize bytes")
	ErrUnsupportedPlatform = errors.New("j2534: no pass-through binding available on this platform")
	ErrDeviceNotOpen       = errors.New("j2534: device not open")
	ErrChannelNotConnected = errors.New("j2534: channel not connected")
)
