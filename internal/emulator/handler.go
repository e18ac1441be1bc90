// Package emulator synthesizes UDS responses for BCM, GWM, and IPC so a
// bench-mounted IMC can be exercised without the rest of the vehicle,
// plus a raw-CAN broadcast worker that impersonates their
// network-management heartbeats. Grounded on original_source's
// ecu_emulator.rs and bcm_emulator.rs.
package emulator

import (
	"fmt"

	"jlrdiag/internal/catalog"
)

// BuildResponse synthesizes the UDS reply a given ECU would send for
// request, or (nil, false) if request is empty. Choosing which ECU a tx
// ID belongs to, and whether it is emulated, is left to Dispatch. Responses are
// a pure function of (ecu, request) — no state survives between calls
// (spec.md §3 "ECU emulator state").
func BuildResponse(ecu catalog.ECU, request []byte) ([]byte, bool) {
	if len(request) == 0 {
		return nil, false
	}

	switch request[0] {
	case 0x3E: // TesterPresent
		return []byte{0x7E, 0x00}, true

	case 0x10: // DiagnosticSessionControl
		if len(request) < 2 {
			return []byte{0x7F, 0x10, catalog.IncorrectLength.ToByte()}, true
		}
		return []byte{0x50, request[1], 0x00, 0x19, 0x01, 0xF4}, true

	case 0x11: // ECUReset
		if len(request) < 2 {
			return []byte{0x7F, 0x11, catalog.IncorrectLength.ToByte()}, true
		}
		return []byte{0x51, request[1]}, true

	case 0x22: // ReadDataByIdentifier
		if len(request) < 3 {
			return []byte{0x7F, 0x22, catalog.IncorrectLength.ToByte()}, true
		}
		did := uint16(request[1])<<8 | uint16(request[2])
		table := didTableFor(ecu)
		if table == nil {
			return []byte{0x7F, 0x22, catalog.ServiceNotSupported.ToByte()}, true
		}
		value, ok := table[did]
		if !ok {
			return []byte{0x7F, 0x22, catalog.RequestOutOfRange.ToByte()}, true
		}
		resp := make([]byte, 0, 3+len(value))
		resp = append(resp, 0x62, request[1], request[2])
		resp = append(resp, value...)
		return resp, true

	case 0x27: // SecurityAccess — every emulated ECU reports "already unlocked"
		if len(request) < 2 {
			return []byte{0x7F, 0x27, catalog.IncorrectLength.ToByte()}, true
		}
		return []byte{0x67, request[1], 0x00, 0x00, 0x00}, true

	case 0x28: // CommunicationControl
		if len(request) < 2 {
			return []byte{0x7F, 0x28, catalog.IncorrectLength.ToByte()}, true
		}
		return []byte{0x68, request[1]}, true

	case 0x2E: // WriteDataByIdentifier
		if len(request) < 3 {
			return []byte{0x7F, 0x2E, catalog.IncorrectLength.ToByte()}, true
		}
		return []byte{0x6E, request[1], request[2]}, true

	case 0x31: // RoutineControl
		if len(request) < 4 {
			return []byte{0x7F, 0x31, catalog.IncorrectLength.ToByte()}, true
		}
		return []byte{0x71, request[1], request[2], request[3]}, true

	default:
		return []byte{0x7F, request[0], catalog.ServiceNotSupported.ToByte()}, true
	}
}

// didTableFor returns the static captured-response table for an ECU, or
// nil for IMC, which is always the real device under test and is never
// emulated (spec.md §4.E).
func didTableFor(ecu catalog.ECU) map[uint16][]byte {
	switch ecu {
	case catalog.BCM:
		return catalog.BCMDIDResponses
	case catalog.GWM:
		return catalog.GWMDIDResponses
	case catalog.IPC:
		return catalog.IPCDIDResponses
	default:
		return nil
	}
}

// Dispatch resolves a request addressed to txID to the responding ECU
// and its response, returning ok=false if txID belongs to no emulated
// ECU in the given set.
func Dispatch(emulated []catalog.ECU, txID uint32, request []byte) ([]byte, bool) {
	for _, ecu := range emulated {
		if ecu == catalog.IMC {
			continue
		}
		addr, ok := catalog.Addresses[ecu]
		if !ok || addr.TxID != txID {
			continue
		}
		return BuildResponse(ecu, request)
	}
	return nil, false
}

// describeECU is used in log descriptions emitted by the manager.
func describeECU(ecu catalog.ECU) string {
	return fmt.Sprintf("emulated %s", ecu.String())
}
