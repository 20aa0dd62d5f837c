package obd

import "fmt"

// allowedModes is the fixed set of read-only OBD-II modes the safety gate
// permits. Every request-building helper in this package only ever
// constructs frames for one of these modes; nothing higher up the stack
// has a path to send a raw frame that bypasses this check.
var allowedModes = map[Mode]bool{
	ModeCurrentData: true,
	ModeFreezeFrame: true,
	ModeStoredDTCs:  true,
	ModeVehicleInfo: true,
}

// SafetyError is returned when a request targets a mode outside the
// allow-list. It is never a stored-DTC-clear, actuator-control, or other
// write-capable mode — those modes simply have no request builder in this
// package.
type SafetyError struct {
	Mode Mode
}

func (e *SafetyError) Error() string {
	return fmt.Sprintf("obd: mode 0x%02X is not in the allowed read-only mode set", byte(e.Mode))
}

// IsModeAllowed reports whether mode is one of the read-only modes the
// safety gate permits.
func IsModeAllowed(mode Mode) bool {
	return allowedModes[mode]
}

// checkMode returns a *SafetyError if mode isn't allowed, nil otherwise.
// Every exported Engine method that sends a request calls this before
// touching the bus.
func checkMode(mode Mode) error {
	if !IsModeAllowed(mode) {
		return &SafetyError{Mode: mode}
	}
	return nil
}
