package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"jlrdiag/internal/catalog"
)

// RoutineResult is the outcome of one RoutineControl execution (spec.md
// §4.F), mirroring original_source's RoutineResponse shape.
type RoutineResult struct {
	RoutineID   uint16
	Success     bool
	Description string
	RawData     []byte
}

// RunRoutine looks up routine metadata from the static catalog, runs the
// SDD prerequisite flow with the catalog's security requirement, issues
// `31 01 <rid_hi> <rid_lo> <payload>`, and decodes the `71`-prefixed
// response — with bespoke bitfield decoding for the two routines that
// carry vendor-specific status/result/error semantics (spec.md §4.F).
func (o *Orchestrator) RunRoutine(ecu catalog.ECU, routineID uint16, payload []byte) (RoutineResult, error) {
	c, err := o.clientFor(ecu)
	if err != nil {
		return RoutineResult{}, err
	}

	meta, known := catalog.RoutineByID(routineID)
	needsSecurity := known && meta.SecurityRequired
	waitPending := known && meta.PendingExpected

	if err := sddPrerequisiteFlow(c, needsSecurity); err != nil {
		return RoutineResult{}, fmt.Errorf("sdd prerequisite flow: %w", err)
	}

	request := make([]byte, 0, 4+len(payload))
	request = append(request, 0x31, 0x01, byte(routineID>>8), byte(routineID))
	request = append(request, payload...)

	deadline := defaultTimeout
	if known && waitPending && meta.PendingDeadlineMS > 0 {
		deadline = time.Duration(meta.PendingDeadlineMS) * time.Millisecond
	}

	resp, err := c.SendRecvWithBusyRetry(request, deadline, waitPending)
	if err != nil {
		return RoutineResult{}, fmt.Errorf("routine 0x%04X failed: %w", routineID, err)
	}

	rawData := []byte{}
	if len(resp) > 4 {
		rawData = resp[4:]
	}
	success := len(resp) > 0 && resp[0] == 0x71

	description := describeRoutineResult(routineID, success, rawData)
	return RoutineResult{RoutineID: routineID, Success: success, Description: description, RawData: rawData}, nil
}

// describeRoutineResult produces the human-readable summary; the two
// routines with documented vendor bitfield semantics get bespoke
// decoding, everything else gets a generic hex dump (spec.md §4.F).
func describeRoutineResult(routineID uint16, success bool, rawData []byte) string {
	if !success {
		return fmt.Sprintf("Routine 0x%04X failed", routineID)
	}

	switch routineID {
	case catalog.RoutineConfigureLinux:
		return describeConfigureLinux(rawData)
	case catalog.RoutineVINLearn:
		return describeVINLearn(rawData)
	default:
		return fmt.Sprintf("Routine 0x%04X OK: %s", routineID, hexJoin(rawData))
	}
}

// describeConfigureLinux decodes the 0x6038 routine's {status, result,
// error} byte triple: a non-zero error byte is a bitmask over the eight
// platform subsystems reconfigure-Linux-to-hardware can fail on (spec.md
// §4.F).
func describeConfigureLinux(rawData []byte) string {
	if len(rawData) < 3 {
		return fmt.Sprintf("Configure Linux OK: %s", hexJoin(rawData))
	}
	status, result, errByte := rawData[0], rawData[1], rawData[2]

	if errByte == 0 {
		return fmt.Sprintf("Configure Linux OK (status 0x%02X, result 0x%02X)", status, result)
	}

	var failed []string
	for bit, label := range catalog.ConfigureLinuxErrorBits {
		if errByte&(1<<uint(bit)) != 0 {
			failed = append(failed, label)
		}
	}
	return fmt.Sprintf("Configure Linux completed with errors (0x%02X): %s", errByte, strings.Join(failed, ", "))
}

// describeVINLearn decodes the 0x0404 routine's {status, result} pair:
// result=0x00 is success, anything else is reported as the raw code
// (the vendor documentation for this routine's failure codes is
// incomplete — spec.md §9).
func describeVINLearn(rawData []byte) string {
	if len(rawData) < 2 {
		return fmt.Sprintf("VIN Learn OK: %s", hexJoin(rawData))
	}
	status, result := rawData[0], rawData[1]
	if result == 0x00 {
		return fmt.Sprintf("VIN Learn OK (status 0x%02X)", status)
	}
	return fmt.Sprintf("VIN Learn failed: status 0x%02X, result 0x%02X", status, result)
}

func hexJoin(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}
