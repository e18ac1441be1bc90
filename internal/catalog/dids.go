package catalog

// DID names a 16-bit data identifier readable via UDS service 0x22.
type DID struct {
	ID       uint16
	Label    string
	Category string
}

// Category groupings used by the orchestrator's per-ECU info flow to
// organise output rows.
const (
	CategoryIdentification = "identification"
	CategoryVersion        = "version"
	CategoryConfiguration  = "configuration"
	CategoryDiagnostic     = "diagnostic"
)

// wellKnownDIDs is the ~40-entry table of identifiers recognised across
// the platform's ECUs (spec.md §4.H). Not every ECU supports every DID;
// per-ECU scan lists below select the relevant subset.
var wellKnownDIDs = []DID{
	{0xF190, "Vehicle Identification Number", CategoryIdentification},
	{0xF18C, "ECU Serial Number", CategoryIdentification},
	{0xF18A, "System Supplier Identifier", CategoryIdentification},
	{0xF18B, "ECU Manufacturing Date", CategoryIdentification},
	{0xF191, "ECU Hardware Number", CategoryVersion},
	{0xF192, "ECU Hardware Version", CategoryVersion},
	{0xF193, "ECU Software Number", CategoryVersion},
	{0xF194, "ECU Software Version", CategoryVersion},
	{0xF195, "System Supplier ECU Software Version", CategoryVersion},
	{0xF197, "System Name or Engine Type", CategoryIdentification},
	{0xF198, "Repair Shop Code or Tester Serial Number", CategoryDiagnostic},
	{0xF199, "Programming Date", CategoryVersion},
	{0xF19D, "Exhaust Regulation Type", CategoryConfiguration},
	{0xF1A0, "ECU Installation Date", CategoryDiagnostic},
	{0x0100, "Active Diagnostic Session", CategoryDiagnostic},
	{0x0200, "Software Part Number", CategoryVersion},
	{0x0201, "Calibration Part Number", CategoryVersion},
	{0x0202, "Bootloader Version", CategoryVersion},
	{0x0203, "Hardware Part Number", CategoryVersion},
	{0x0204, "Diagnostic Address", CategoryIdentification},
	{0x0300, "Network Configuration", CategoryConfiguration},
	{0x0301, "Feature Configuration", CategoryConfiguration},
	{0x0400, "Gateway Routing Table", CategoryConfiguration},
	{0x0401, "Gateway Software Version", CategoryVersion},
	{0x0500, "Body Style Code", CategoryConfiguration},
	{0x0501, "Market Code", CategoryConfiguration},
	{0x0502, "Language Code", CategoryConfiguration},
	{0x0600, "Infotainment Build Number", CategoryVersion},
	{0x0601, "Infotainment Region Code", CategoryConfiguration},
	{0x0602, "Infotainment Linux Image Version", CategoryVersion},
	{0x0603, "Infotainment Manifest Hash", CategoryVersion},
	{0x0700, "Instrument Cluster Variant", CategoryConfiguration},
	{0x0701, "Instrument Cluster Units", CategoryConfiguration},
	{0x0800, "Body Control Variant", CategoryConfiguration},
	{0x0801, "Security Access Level Supported", CategoryConfiguration},
	{0xDE00, "BCM Central Configuration File Block", CategoryConfiguration},
	{0xEE00, "GWM Central Configuration File Block", CategoryConfiguration},
	{0xF100, "Diagnostic Trouble Code Count", CategoryDiagnostic},
	{0xF101, "Fault Memory Status", CategoryDiagnostic},
	{0xF1F0, "ECU Reset Reason", CategoryDiagnostic},
}

// DIDByID looks up label/category metadata; the second return is false
// for DIDs not present in the static table (the orchestrator still
// attempts the read, it just can't annotate it).
func DIDByID(id uint16) (DID, bool) {
	for _, d := range wellKnownDIDs {
		if d.ID == id {
			return d, true
		}
	}
	return DID{}, false
}

// ScanDIDs returns the fixed DID sweep list for one ECU (spec.md §4.F).
func ScanDIDs(ecu ECU) []uint16 {
	switch ecu {
	case BCM:
		return []uint16{0xF190, 0xF18C, 0xF192, 0xF194, 0x0800, 0x0801, 0xDE00, 0xF100}
	case GWM:
		return []uint16{0xF190, 0xF18C, 0xF192, 0xF194, 0x0300, 0x0301, 0x0400, 0x0401, 0xEE00, 0xF100}
	case IPC:
		return []uint16{0xF190, 0xF18C, 0xF192, 0xF194, 0x0700, 0x0701, 0xF100}
	case IMC:
		return []uint16{0xF190, 0xF18C, 0x0200, 0x0201, 0x0202, 0x0203, 0x0204, 0x0600, 0x0601, 0x0602, 0x0603}
	default:
		return nil
	}
}
