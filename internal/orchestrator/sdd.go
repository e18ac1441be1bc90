package orchestrator

import (
	"fmt"

	"jlrdiag/internal/security"
	"jlrdiag/internal/uds"
)

// sddPrerequisiteFlow runs the standard JLR SDD sequence required
// before any secured operation: tester-present, elevate to Extended
// session, and (if needsSecurity) a seed/key SecurityAccess unlock
// using this platform's vendor constants (spec.md §4.F). A zero seed
// is reported by the ECU as "already unlocked" and skips the key
// exchange entirely — whether a real ECU ever legitimately returns a
// zero seed is unconfirmed (spec.md §9), but the behavior is
// implemented exactly as specified.
func sddPrerequisiteFlow(c *uds.Client, needsSecurity bool) error {
	if _, err := c.SendRecv([]byte{0x3E, 0x00}, defaultTimeout, false); err != nil {
		return fmt.Errorf("tester-present failed: %w", err)
	}

	if _, err := c.SendRecv([]byte{0x10, 0x03}, defaultTimeout, false); err != nil {
		return fmt.Errorf("extended session failed: %w", err)
	}

	if !needsSecurity {
		return nil
	}

	seedResp, err := c.SendRecv([]byte{0x27, 0x11}, defaultTimeout, false)
	if err != nil {
		return fmt.Errorf("security seed request failed: %w", err)
	}
	if len(seedResp) < 5 {
		return fmt.Errorf("security seed response too short")
	}

	seed := uint32(seedResp[2])<<16 | uint32(seedResp[3])<<8 | uint32(seedResp[4])
	if security.IsZeroSeed(seed) {
		return nil
	}

	key := security.ComputeKey(seed, security.JLRConstants)
	keyReq := []byte{0x27, 0x12, byte(key >> 16), byte(key >> 8), byte(key)}
	if _, err := c.SendRecv(keyReq, defaultTimeout, false); err != nil {
		return fmt.Errorf("security key send failed: %w", err)
	}
	return nil
}
