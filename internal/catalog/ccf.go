package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed ccf_options.json
var ccfOptionsRaw []byte

// CCFHeaderOffset is the length of the leading "VDF header" every Central
// Configuration File block carries before option bytes begin (spec.md
// §4.F).
const CCFHeaderOffset = 21

// CCFOptionCount is the number of known option indices for this platform
// (spec.md §4.F: "a static list of ~73 indices"). Indices with no decode
// table loaded still participate in byte-level comparison; they are
// reported with their raw value and ok=false from DecodeCCFOption, per
// the Open Question on undocumented option semantics (spec.md §9).
const CCFOptionCount = 73

type ccfOptionFile struct {
	HeaderOffset int `json:"header_offset"`
	Options      []struct {
		ID     int               `json:"id"`
		Name   string            `json:"name"`
		Values map[string]string `json:"values"`
	} `json:"options"`
}

type ccfOption struct {
	name   string
	values map[byte]string
}

var ccfOptions map[int]ccfOption

func init() {
	var file ccfOptionFile
	if err := json.Unmarshal(ccfOptionsRaw, &file); err != nil {
		panic(fmt.Sprintf("catalog: malformed ccf_options.json: %v", err))
	}
	ccfOptions = make(map[int]ccfOption, len(file.Options))
	for _, opt := range file.Options {
		values := make(map[byte]string, len(opt.Values))
		for k, v := range opt.Values {
			var b int
			if _, err := fmt.Sscanf(k, "%d", &b); err != nil {
				continue
			}
			values[byte(b)] = v
		}
		ccfOptions[opt.ID] = ccfOption{name: opt.Name, values: values}
	}
}

// CCFOptionName returns the human name for an option index, or a
// generic placeholder for indices documented only by presence.
func CCFOptionName(optionID int) string {
	if opt, ok := ccfOptions[optionID]; ok {
		return opt.name
	}
	return fmt.Sprintf("Option %d", optionID)
}

// DecodeCCFOption maps (option_id, byte-value) to its label. ok is false
// when the option index or the specific byte value isn't in the static
// table — the caller (orchestrator) then reports the raw byte instead of
// guessing at undocumented ECU-private semantics.
func DecodeCCFOption(optionID int, value byte) (label string, ok bool) {
	opt, found := ccfOptions[optionID]
	if !found {
		return "", false
	}
	label, ok = opt.values[value]
	return label, ok
}
