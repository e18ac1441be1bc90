package catalog

import "fmt"

// NRC is a negative response code from a `7F sid nrc` UDS response
// (spec.md §3, ISO 14229 code set).
type NRC struct {
	code    byte
	unknown bool
}

var (
	GeneralReject                           = NRC{code: 0x10}
	ServiceNotSupported                     = NRC{code: 0x11}
	SubFunctionNotSupported                 = NRC{code: 0x12}
	IncorrectLength                         = NRC{code: 0x13}
	ResponseTooLong                         = NRC{code: 0x14}
	BusyRepeatRequest                       = NRC{code: 0x21}
	ConditionsNotCorrect                    = NRC{code: 0x22}
	RequestOutOfRange                       = NRC{code: 0x31}
	SecurityAccessDenied                    = NRC{code: 0x33}
	InvalidKey                              = NRC{code: 0x35}
	ExceededAttempts                        = NRC{code: 0x36}
	RequiredTimeDelayNotExpired              = NRC{code: 0x37}
	ResponsePending                         = NRC{code: 0x78}
	SubFunctionNotSupportedInActiveSession   = NRC{code: 0x7E}
	ServiceNotSupportedInActiveSession       = NRC{code: 0x7F}
)

// namedNRCs is the closed set of codes with a name, used for round-trip
// verification and description lookups.
var namedNRCs = []NRC{
	GeneralReject, ServiceNotSupported, SubFunctionNotSupported,
	IncorrectLength, ResponseTooLong, BusyRepeatRequest, ConditionsNotCorrect,
	RequestOutOfRange, SecurityAccessDenied, InvalidKey, ExceededAttempts,
	RequiredTimeDelayNotExpired, ResponsePending,
	SubFunctionNotSupportedInActiveSession, ServiceNotSupportedInActiveSession,
}

// NRCFromByte maps a wire byte to a named NRC, falling back to Unknown(b)
// for anything outside the 15-entry set (spec.md §3).
func NRCFromByte(b byte) NRC {
	for _, n := range namedNRCs {
		if n.code == b {
			return n
		}
	}
	return NRC{code: b, unknown: true}
}

// ToByte returns the wire byte. Round-trip with NRCFromByte must be exact
// for every named code (spec.md §8).
func (n NRC) ToByte() byte {
	return n.code
}

// IsUnknown reports whether this is the Unknown(byte) catch-all.
func (n NRC) IsUnknown() bool {
	return n.unknown
}

var nrcNames = map[byte]string{
	0x10: "GeneralReject",
	0x11: "ServiceNotSupported",
	0x12: "SubFunctionNotSupported",
	0x13: "IncorrectLength",
	0x14: "ResponseTooLong",
	0x21: "BusyRepeatRequest",
	0x22: "ConditionsNotCorrect",
	0x31: "RequestOutOfRange",
	0x33: "SecurityAccessDenied",
	0x35: "InvalidKey",
	0x36: "ExceededAttempts",
	0x37: "RequiredTimeDelayNotExpired",
	0x78: "ResponsePending",
	0x7E: "SubFunctionNotSupportedInActiveSession",
	0x7F: "ServiceNotSupportedInActiveSession",
}

// String renders a named NRC by its symbolic name, or "Unknown NRC (0xBB)"
// for unrecognised codes (spec.md §8 boundary behavior).
func (n NRC) String() string {
	if n.unknown {
		return fmt.Sprintf("Unknown NRC (0x%02X)", n.code)
	}
	if name, ok := nrcNames[n.code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown NRC (0x%02X)", n.code)
}

// Description is a human-readable reason string, supplementing the bare
// enum with the fuller text the original Rust implementation's
// uds/error.rs carried. The orchestrator uses this for partial-failure
// rows rather than the caller having to invent its own wording.
func (n NRC) Description() string {
	switch n.code {
	case GeneralReject.code:
		return "the ECU rejected the request for an unspecified reason"
	case ServiceNotSupported.code:
		return "the requested service is not supported by this ECU"
	case SubFunctionNotSupported.code:
		return "the requested sub-function is not supported"
	case IncorrectLength.code:
		return "the request message length or format is invalid"
	case ResponseTooLong.code:
		return "the response would exceed the maximum transport payload"
	case BusyRepeatRequest.code:
		return "the ECU is busy, repeat the request"
	case ConditionsNotCorrect.code:
		return "the requested operation is not possible in the current conditions"
	case RequestOutOfRange.code:
		return "the request references an out-of-range parameter, DID, or routine"
	case SecurityAccessDenied.code:
		return "security access is required and has not been granted"
	case InvalidKey.code:
		return "the supplied security key was incorrect"
	case ExceededAttempts.code:
		return "too many invalid keys were sent; the delay timer is active"
	case RequiredTimeDelayNotExpired.code:
		return "a required delay before retrying security access has not expired"
	case ResponsePending.code:
		return "the ECU is still processing the request"
	case SubFunctionNotSupportedInActiveSession.code:
		return "the sub-function is not supported in the current diagnostic session"
	case ServiceNotSupportedInActiveSession.code:
		return "the service is not supported in the current diagnostic session"
	default:
		return fmt.Sprintf("unrecognised negative response code 0x%02X", n.code)
	}
}
