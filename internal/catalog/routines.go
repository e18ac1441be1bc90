package catalog

// RoutineSubFunction names the UDS routine control sub-function.
type RoutineSubFunction byte

const (
	RoutineStart   RoutineSubFunction = 0x01
	RoutineStop    RoutineSubFunction = 0x02
	RoutineResults RoutineSubFunction = 0x03
)

// Routine describes one 16-bit identified routine and how the
// orchestrator should run it (spec.md §4.F).
type Routine struct {
	ID                uint16
	Label             string
	SecurityRequired  bool
	PendingExpected   bool
	// PendingDeadlineMS is the total deadline to allow for a 0x78-pending
	// response chain; the UDS client never waits less than 30s when a
	// pending response is expected.
	PendingDeadlineMS int
}

// ConfigureLinux (0x6038) and VINLearn (0x0404) need bespoke status/result
// decoding (spec.md §4.F); the rest just report positive/negative.
const (
	RoutineConfigureLinux uint16 = 0x6038
	RoutineVINLearn       uint16 = 0x0404
)

// routines is the ~14-entry static catalog.
var routines = []Routine{
	{ID: RoutineConfigureLinux, Label: "Configure Linux", SecurityRequired: true, PendingExpected: true, PendingDeadlineMS: 60000},
	{ID: RoutineVINLearn, Label: "VIN Learn", SecurityRequired: true, PendingExpected: true, PendingDeadlineMS: 30000},
	{ID: 0x0E00, Label: "CCF Result Fetch", SecurityRequired: false, PendingExpected: false},
	{ID: 0x0E01, Label: "CCF Read", SecurityRequired: false, PendingExpected: true, PendingDeadlineMS: 30000},
	{ID: 0x0203, Label: "Erase Memory", SecurityRequired: true, PendingExpected: true, PendingDeadlineMS: 60000},
	{ID: 0x0204, Label: "Check Programming Dependencies", SecurityRequired: true, PendingExpected: true, PendingDeadlineMS: 30000},
	{ID: 0xFF00, Label: "Deploy Loop Checksum", SecurityRequired: true, PendingExpected: false},
	{ID: 0xFF01, Label: "Deploy Loop Erase Verify", SecurityRequired: true, PendingExpected: false},
	{ID: 0x0300, Label: "Reset Network Configuration", SecurityRequired: true, PendingExpected: false},
	{ID: 0x0301, Label: "Reset Feature Configuration", SecurityRequired: true, PendingExpected: false},
	{ID: 0x0500, Label: "Reset Body Style", SecurityRequired: true, PendingExpected: false},
	{ID: 0x1000, Label: "Self Test", SecurityRequired: false, PendingExpected: true, PendingDeadlineMS: 30000},
	{ID: 0x1001, Label: "Display Self Test", SecurityRequired: false, PendingExpected: true, PendingDeadlineMS: 30000},
	{ID: 0x1002, Label: "Audio Self Test", SecurityRequired: false, PendingExpected: true, PendingDeadlineMS: 30000},
}

// RoutineByID looks up routine metadata; ok is false for anything outside
// the static catalog (caller falls back to conservative defaults).
func RoutineByID(id uint16) (Routine, bool) {
	for _, r := range routines {
		if r.ID == id {
			return r, true
		}
	}
	return Routine{}, false
}

// ConfigureLinuxErrorBits maps bit index (0..7) to subsystem label for the
// 0x6038 "Configure Linux" routine's error byte (spec.md §4.F).
var ConfigureLinuxErrorBits = [8]string{
	0: "Boot parameter",
	1: "Symlinks",
	2: "Start-up XML",
	3: "Manifest",
	4: "DVD region",
	5: "Polar switch",
	6: "Gracenotes",
	7: "App manager",
}
