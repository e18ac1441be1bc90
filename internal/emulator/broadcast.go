package emulator

import (
	"github.com/brutella/can"

	"jlrdiag/internal/catalog"
)

// broadcastMsgs are CAN frames captured from a real vehicle that are
// absent from a bench fitted with only the IMC: general bus-load
// traffic plus the three ECU network-management heartbeats (spec.md
// §4.E), ported from original_source's ecu_emulator.rs BROADCAST_MSGS.
// can.Frame is the same wire type the teacher's OBD-II request/response
// code built by hand in main.go; here it is the frame the broadcast
// worker hands to the J2534 raw-CAN envelope framer.
var broadcastMsgs = []can.Frame{
	{ID: 0x070, Length: 8, Data: [8]byte{0xFF, 0x87, 0xD0, 0xFE, 0xFE, 0x3F, 0xFF, 0x03}},
	{ID: 0x0B0, Length: 8, Data: [8]byte{0x00, 0x04, 0x32, 0x03, 0xF8, 0x0D, 0x35, 0x00}},
	{ID: 0x0D0, Length: 8, Data: [8]byte{0xEC, 0x00, 0x42, 0x50, 0xE2, 0x69, 0xA8, 0x84}},
	{ID: 0x154, Length: 8, Data: [8]byte{0x27, 0xC7, 0x07, 0xED, 0x07, 0xD9, 0x07, 0xBD}},
	{ID: 0x1D0, Length: 8, Data: [8]byte{0x62, 0xFE, 0x00, 0x10, 0x80, 0x00, 0x80, 0x00}},
	{ID: 0x200, Length: 8, Data: [8]byte{0x01, 0x00, 0x00, 0x00, 0x03, 0x5E, 0x0E, 0x00}},
	{ID: 0x270, Length: 8, Data: [8]byte{0x00, 0xE8, 0x50, 0x00, 0x83, 0xFE, 0x03, 0x00}},
	{ID: 0x280, Length: 8, Data: [8]byte{0x00, 0x00, 0x03, 0xFE, 0x01, 0xFE, 0x13, 0xFE}},
	{ID: 0x2A0, Length: 8, Data: [8]byte{0x80, 0x81, 0x40, 0x00, 0x5D, 0x44, 0x66, 0x0D}},
	{ID: 0x2C0, Length: 8, Data: [8]byte{0x30, 0x00, 0x7D, 0xD0, 0x01, 0x40, 0x9A, 0x80}},
	{ID: 0x300, Length: 8, Data: [8]byte{0x01, 0x6B, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
	{ID: uint32(catalog.NetworkManagementIDs[catalog.BCM]), Length: 8, Data: [8]byte{0x08, 0x01, 0x00, 0x00, 0x16, 0x04, 0x00, 0x01}},
	{ID: uint32(catalog.NetworkManagementIDs[catalog.GWM]), Length: 8, Data: [8]byte{0x0A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
	{ID: uint32(catalog.NetworkManagementIDs[catalog.IPC]), Length: 8, Data: [8]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
	{ID: 0x030, Length: 8, Data: [8]byte{0x04, 0x00, 0x00, 0x00, 0x00, 0x1F, 0xFE, 0x70}},
	{ID: 0x130, Length: 8, Data: [8]byte{0x02, 0x00, 0x50, 0x04, 0x04, 0x00, 0x00, 0x00}},
	{ID: 0x140, Length: 8, Data: [8]byte{0x00, 0x6D, 0x83, 0x00, 0x00, 0x7F, 0x80, 0x00}},
}
