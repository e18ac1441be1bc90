package orchestrator

import (
	"fmt"

	"jlrdiag/internal/catalog"
)

// gwmCCFDID and bcmCCFDID are the Central Configuration File blocks read
// directly via ReadDataByIdentifier. IMC does not expose its CCF through a
// DID — it is only reachable through routine 0x0E01 (spec.md §4.F).
const (
	gwmCCFDID uint16 = 0xEE00
	bcmCCFDID uint16 = 0xDE00

	imcCCFRoutine        uint16 = 0x0E01
	imcCCFResultFallback uint16 = 0x0E00
)

// CCFOptionRow is one decoded configuration option compared across the
// three ECUs that carry a copy of it (spec.md §6 compare-dump schema).
type CCFOptionRow struct {
	ID       int
	Name     string
	GWM      string
	BCM      string
	IMC      string
	Mismatch bool
}

// CCFCompareResult is the full cross-ECU compare: the three raw blocks,
// the mismatch count, and one row per option. It carries no timestamp.
type CCFCompareResult struct {
	GWMBlockBytes []byte
	BCMBlockBytes []byte
	IMCBlockBytes []byte
	Mismatches    int
	Options       []CCFOptionRow
}

// CompareCCF reads each platform ECU's Central Configuration File block,
// strips the shared VDF header, and walks the known option table comparing
// the decoded value at each index across GWM/BCM/IMC (spec.md §4.F "CCF
// compare"). A block that could not be read at all contributes empty
// strings for every option rather than failing the whole compare — a
// partial result is more useful than none when one ECU is off the bus.
func (o *Orchestrator) CompareCCF() (CCFCompareResult, error) {
	gwmBlock, gwmErr := o.readCCFBlock(catalog.GWM, gwmCCFDID)
	bcmBlock, bcmErr := o.readCCFBlock(catalog.BCM, bcmCCFDID)
	imcBlock, imcErr := o.readIMCCCFBlock()

	if gwmErr != nil && bcmErr != nil && imcErr != nil {
		return CCFCompareResult{}, fmt.Errorf("ccf compare: no ECU returned a configuration block (gwm: %v, bcm: %v, imc: %v)", gwmErr, bcmErr, imcErr)
	}

	result := CCFCompareResult{GWMBlockBytes: gwmBlock, BCMBlockBytes: bcmBlock, IMCBlockBytes: imcBlock}
	result.Options = make([]CCFOptionRow, 0, catalog.CCFOptionCount)

	for id := 0; id < catalog.CCFOptionCount; id++ {
		row := CCFOptionRow{ID: id, Name: catalog.CCFOptionName(id)}
		row.GWM = ccfOptionValue(gwmBlock, id)
		row.BCM = ccfOptionValue(bcmBlock, id)
		row.IMC = ccfOptionValue(imcBlock, id)
		row.Mismatch = optionsMismatch(row.GWM, row.BCM, row.IMC)
		if row.Mismatch {
			result.Mismatches++
		}
		result.Options = append(result.Options, row)
	}

	return result, nil
}

// readCCFBlock reads a CCF block via a plain ReadDataByIdentifier, used by
// GWM and BCM (spec.md §4.F).
func (o *Orchestrator) readCCFBlock(ecu catalog.ECU, did uint16) ([]byte, error) {
	c, err := o.clientFor(ecu)
	if err != nil {
		return nil, err
	}
	return readDID(c, did)
}

// readIMCCCFBlock reads the IMC's CCF through routine 0x0E01, which
// returns its payload as a response-pending routine result rather than a
// DID; if the platform's firmware doesn't support 0x0E01, fall back to
// fetching the last cached result via 0x0E00 (spec.md §4.F).
func (o *Orchestrator) readIMCCCFBlock() ([]byte, error) {
	result, err := o.RunRoutine(catalog.IMC, imcCCFRoutine, nil)
	if err == nil && result.Success && len(result.RawData) > 0 {
		return result.RawData, nil
	}

	fallback, fbErr := o.RunRoutine(catalog.IMC, imcCCFResultFallback, nil)
	if fbErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, fbErr
	}
	if !fallback.Success {
		return nil, fmt.Errorf("ccf compare: imc returned no configuration block")
	}
	return fallback.RawData, nil
}

// ccfOptionValue decodes the byte at the given option index past the VDF
// header, or "" if the block is too short to contain that index.
func ccfOptionValue(block []byte, optionID int) string {
	offset := catalog.CCFHeaderOffset + optionID
	if offset >= len(block) {
		return ""
	}
	value := block[offset]
	if label, ok := catalog.DecodeCCFOption(optionID, value); ok {
		return label
	}
	return fmt.Sprintf("0x%02X", value)
}

// optionsMismatch flags a row as a mismatch when at least two ECUs
// reported a non-empty value and they disagree; an ECU that didn't answer
// (empty string) doesn't itself count as a mismatch against the others.
func optionsMismatch(values ...string) bool {
	seen := ""
	found := false
	for _, v := range values {
		if v == "" {
			continue
		}
		if !found {
			seen = v
			found = true
			continue
		}
		if v != seen {
			return true
		}
	}
	return false
}
