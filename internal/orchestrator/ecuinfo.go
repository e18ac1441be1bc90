package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/security"
	"jlrdiag/internal/uds"
)

// didReadSpec is one curated row of a per-ECU info read: a DID, its
// display label, a value formatter, and a UI grouping category (spec.md
// §4.F "a list of (DID, label, formatter, category) entries per ECU").
type didReadSpec struct {
	did      uint16
	label    string
	format   func([]byte) string
	category string
}

func formatString(data []byte) string {
	return strings.TrimSpace(string(data))
}

func formatDiagSession(data []byte) string {
	if len(data) == 0 {
		return "Unknown"
	}
	switch data[0] {
	case 0x01:
		return fmt.Sprintf("Default (0x%02X)", data[0])
	case 0x02:
		return fmt.Sprintf("Programming (0x%02X)", data[0])
	case 0x03:
		return fmt.Sprintf("Extended (0x%02X)", data[0])
	default:
		return fmt.Sprintf("Unknown (0x%02X)", data[0])
	}
}

func formatIMCStatus(data []byte) string {
	if len(data) == 0 {
		return "Unknown"
	}
	switch data[0] {
	case 0x00:
		return "Normal (0x00)"
	case 0x01:
		return "Booting (0x01)"
	case 0x02:
		return "Shutdown (0x02)"
	case 0x03:
		return "Suspend (0x03)"
	case 0x04:
		return "Standby (0x04)"
	case 0x05:
		return "Error (0x05)"
	default:
		return fmt.Sprintf("0x%02X", data[0])
	}
}

func formatVoltage(data []byte) string {
	switch {
	case len(data) >= 2:
		raw := uint16(data[0])<<8 | uint16(data[1])
		return fmt.Sprintf("%.1f V", float64(raw)*0.1)
	case len(data) == 1:
		return fmt.Sprintf("%.1f V", float64(data[0])*0.1)
	default:
		return "N/A"
	}
}

func formatSOC(data []byte) string {
	if len(data) == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d%%", data[0])
}

func formatTemp(data []byte) string {
	if len(data) == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d °C", int16(data[0])-40)
}

// bcmInfoSpecs, gwmInfoSpecs, ipcInfoSpecs are the curated info-read
// rows for the three supporting ECUs, ported from original_source's
// read_bcm_info (BCM) and generalized to GWM/IPC along the same shape
// (spec.md §4.F supplements the distillation's IMC/BCM-only reference
// with the same curated-read pattern for every ECU).
var bcmInfoSpecs = []didReadSpec{
	{0xF190, "VIN", formatString, "vehicle"},
	{0x0800, "Battery Voltage", formatVoltage, "battery"},
	{0x0801, "Battery SOC", formatSOC, "battery"},
	{0xF100, "Battery Temp", formatTemp, "battery"},
}

var gwmInfoSpecs = []didReadSpec{
	{0xF190, "VIN", formatString, "vehicle"},
	{0xF192, "Hardware Version", formatString, "version"},
	{0xF194, "Software Version", formatString, "version"},
	{0x0400, "Gateway Routing Table", formatString, "configuration"},
}

var ipcInfoSpecs = []didReadSpec{
	{0xF190, "VIN", formatString, "vehicle"},
	{0x0700, "Instrument Cluster Variant", formatString, "configuration"},
	{0x0701, "Instrument Cluster Units", formatString, "configuration"},
}

// imcInfoSpecs are the rows read once the IMC is in Extended session,
// ported from original_source's read_imc_info.
var imcInfoSpecs = []didReadSpec{
	{0x0602, "Software Part", formatString, "software"},
	{0x0202, "Bootloader", formatString, "software"},
	{0x0600, "V850 Part", formatString, "software"},
	{0x0603, "Tuner Part", formatString, "software"},
	{0x0601, "Polar Part", formatString, "software"},
	{0xF18C, "ECU Serial", formatString, "hardware"},
	{0xF18B, "ECU Serial 2", formatString, "hardware"},
}

// readEntry reads a single DID, applying spec.md §4.F's single automatic
// elevate-and-retry: if the ECU answers with NRC 0x7F
// (ServiceNotSupportedInActiveSession), it elevates to Extended Session
// once (10 03) and retries the DID exactly once more.
func readEntry(c *uds.Client, spec didReadSpec) InfoEntry {
	data, err := readDID(c, spec.did)
	if err != nil {
		if nrc, ok := uds.IsNegativeResponse(err); ok && nrc == catalog.ServiceNotSupportedInActiveSession {
			if _, sessErr := c.SendRecv([]byte{0x10, 0x03}, defaultTimeout, false); sessErr == nil {
				data, err = readDID(c, spec.did)
			}
		}
	}
	if err != nil {
		return InfoEntry{Label: spec.label, DIDHex: didHex(spec.did), Error: err.Error(), Category: spec.category}
	}
	return InfoEntry{Label: spec.label, DIDHex: didHex(spec.did), Value: spec.format(data), Category: spec.category}
}

// ReadECUInfo runs the curated per-ECU info read (spec.md §4.F). IMC
// gets the bench-mode wake/session-elevation sequence; the other three
// ECUs are a flat DID list with a tester-present keep-alive between
// reads.
func (o *Orchestrator) ReadECUInfo(ecu catalog.ECU) ([]InfoEntry, error) {
	c, err := o.clientFor(ecu)
	if err != nil {
		return nil, err
	}

	switch ecu {
	case catalog.IMC:
		return readIMCInfo(c, o.conn.Emulator() != nil)
	case catalog.BCM:
		return readSimpleInfo(c, bcmInfoSpecs), nil
	case catalog.GWM:
		return readSimpleInfo(c, gwmInfoSpecs), nil
	case catalog.IPC:
		return readSimpleInfo(c, ipcInfoSpecs), nil
	default:
		return nil, fmt.Errorf("orchestrator: unknown ECU %s", ecu)
	}
}

// readSimpleInfo reads a flat DID list with a tester-present keep-alive
// between entries (spec.md §4.F "between every two DID reads... a
// tester-present").
func readSimpleInfo(c *uds.Client, specs []didReadSpec) []InfoEntry {
	entries := make([]InfoEntry, 0, len(specs))
	for i, spec := range specs {
		if i > 0 {
			testerPresent(c)
		}
		entries = append(entries, readEntry(c, spec))
	}
	return entries
}

// readIMCInfo implements spec.md §4.F's IMC-specific bench-mode wake
// sequence: poll tester-present up to 15 times at 1s spacing, then
// attempt Extended session up to 5 times at 2s spacing (re-sending
// tester-present between attempts to hold the session open), then a
// best-effort, non-fatal SecurityAccess unlock. If Extended session
// never succeeds, fall back to reading VIN and ECU Serial in whatever
// session is active — some JLR IMC firmware answers those even in
// Default session.
func readIMCInfo(c *uds.Client, benchMode bool) ([]InfoEntry, error) {
	if benchMode {
		ready := false
		for attempt := 1; attempt <= 15; attempt++ {
			if _, err := c.SendRecv([]byte{0x3E, 0x00}, defaultTimeout, false); err == nil {
				ready = true
				break
			}
			if attempt < 15 {
				time.Sleep(time.Second)
			}
		}
		if !ready {
			return []InfoEntry{{
				Label: "IMC Status", DIDHex: "0202",
				Error: "IMC not responding after 15 attempts — check power and CAN connection", Category: "status",
			}}, nil
		}
	} else {
		_, _ = c.SendRecv([]byte{0x3E, 0x00}, defaultTimeout, false)
	}

	extendedOK := false
	for attempt := 1; attempt <= 5; attempt++ {
		if attempt > 1 {
			testerPresent(c)
		}
		if _, err := c.SendRecv([]byte{0x10, 0x03}, defaultTimeout, false); err == nil {
			extendedOK = true
			break
		}
		if attempt < 5 {
			time.Sleep(2 * time.Second)
		}
	}

	if extendedOK {
		if seedResp, err := c.SendRecv([]byte{0x27, 0x11}, defaultTimeout, false); err == nil && len(seedResp) >= 5 {
			seed := uint32(seedResp[2])<<16 | uint32(seedResp[3])<<8 | uint32(seedResp[4])
			if !security.IsZeroSeed(seed) {
				key := security.ComputeKey(seed, security.JLRConstants)
				keyReq := []byte{0x27, 0x12, byte(key >> 16), byte(key >> 8), byte(key)}
				_, _ = c.SendRecv(keyReq, defaultTimeout, false) // best-effort, non-fatal
			}
		}
	}

	entries := []InfoEntry{readEntry(c, didReadSpec{0x0100, "Diag Session", formatDiagSession, "status"})}

	if extendedOK {
		testerPresent(c)
		entries = append(entries, readEntry(c, didReadSpec{0x0204, "IMC Status", formatIMCStatus, "status"}))
		testerPresent(c)
		entries = append(entries, readEntry(c, didReadSpec{0xF190, "VIN", formatString, "vehicle"}))
		for _, spec := range imcInfoSpecs {
			testerPresent(c)
			entries = append(entries, readEntry(c, spec))
		}
		return entries, nil
	}

	errMsg := "Requires Extended Session (enable bench mode)"
	if benchMode {
		errMsg = "Extended Session failed — IMC needs other ECUs on CAN bus"
	}
	entries = append(entries, readEntry(c, didReadSpec{0xF190, "VIN", formatString, "vehicle"}))
	entries = append(entries, readEntry(c, didReadSpec{0xF18C, "ECU Serial", formatString, "hardware"}))
	for _, spec := range imcInfoSpecs {
		entries = append(entries, InfoEntry{Label: spec.label, DIDHex: didHex(spec.did), Error: errMsg, Category: spec.category})
	}
	return entries, nil
}
