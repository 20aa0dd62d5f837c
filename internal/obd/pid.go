package obd

import "fmt"

// PidValue is a single decoded OBD-II Mode 01/02 PID reading.
type PidValue struct {
	PID   byte
	Name  string
	Value float64
	Unit  string
}

// pidSpec describes how many data bytes a PID needs and how to turn them
// into a physical value.
type pidSpec struct {
	name    string
	unit    string
	bytes   int
	formula func(b []byte) float64
}

var pidTable = map[byte]pidSpec{
	0x04: {"engine_load", "%", 1, func(b []byte) float64 { return float64(b[0]) * 100 / 255 }},
	0x05: {"coolant_temp", "degC", 1, func(b []byte) float64 { return float64(b[0]) - 40 }},
	0x06: {"short_term_fuel_trim_b1", "%", 1, func(b []byte) float64 { return (float64(b[0]) - 128) * 100 / 128 }},
	0x07: {"long_term_fuel_trim_b1", "%", 1, func(b []byte) float64 { return (float64(b[0]) - 128) * 100 / 128 }},
	0x0B: {"intake_map", "kPa", 1, func(b []byte) float64 { return float64(b[0]) }},
	0x0C: {"rpm", "rpm", 2, func(b []byte) float64 { return (float64(b[0])*256 + float64(b[1])) / 4 }},
	0x0D: {"vehicle_speed", "km/h", 1, func(b []byte) float64 { return float64(b[0]) }},
	0x0E: {"timing_advance", "deg", 1, func(b []byte) float64 { return float64(b[0])/2 - 64 }},
	0x0F: {"intake_air_temp", "degC", 1, func(b []byte) float64 { return float64(b[0]) - 40 }},
	0x10: {"maf", "g/s", 2, func(b []byte) float64 { return (float64(b[0])*256 + float64(b[1])) / 100 }},
	0x11: {"throttle_position", "%", 1, func(b []byte) float64 { return float64(b[0]) * 100 / 255 }},
	0x1C: {"obd_standard", "", 1, func(b []byte) float64 { return float64(b[0]) }},
	0x1F: {"runtime_since_start", "s", 2, func(b []byte) float64 { return float64(b[0])*256 + float64(b[1]) }},
	0x2F: {"fuel_level", "%", 1, func(b []byte) float64 { return float64(b[0]) * 100 / 255 }},
	0x33: {"barometric_pressure", "kPa", 1, func(b []byte) float64 { return float64(b[0]) }},
	0x42: {"module_voltage", "V", 2, func(b []byte) float64 { return (float64(b[0])*256 + float64(b[1])) / 1000 }},
	0x46: {"ambient_air_temp", "degC", 1, func(b []byte) float64 { return float64(b[0]) - 40 }},
	0x49: {"accelerator_pedal_d", "%", 1, func(b []byte) float64 { return float64(b[0]) * 100 / 255 }},
	0x4C: {"commanded_throttle_actuator", "%", 1, func(b []byte) float64 { return float64(b[0]) * 100 / 255 }},
	0x51: {"fuel_type", "", 1, func(b []byte) float64 { return float64(b[0]) }},
}

// DecodePID decodes the data bytes of a Mode 01/02 PID response (already
// stripped of the echoed SID and PID bytes) into a physical value. It
// never panics: an unknown PID or a too-short byte slice is a typed error.
func DecodePID(pid byte, data []byte) (PidValue, error) {
	spec, ok := pidTable[pid]
	if !ok {
		return PidValue{}, fmt.Errorf("obd: unknown PID 0x%02X", pid)
	}
	if len(data) < spec.bytes {
		return PidValue{}, fmt.Errorf("obd: PID 0x%02X needs %d data bytes, got %d", pid, spec.bytes, len(data))
	}
	return PidValue{
		PID:   pid,
		Name:  spec.name,
		Value: spec.formula(data),
		Unit:  spec.unit,
	}, nil
}

// ParsePidResponse parses a full single-frame Mode 01 or 02 response
// (including the echoed service ID and PID bytes) and returns the decoded
// value. resp[0] must be ModeCurrentData or ModeFreezeFrame plus
// ResponseSIDOffset; resp[1] is taken as the PID to decode.
func ParsePidResponse(resp []byte) (PidValue, error) {
	if len(resp) < 2 {
		return PidValue{}, fmt.Errorf("obd: response too short")
	}
	sid := resp[0]
	if sid != byte(ModeCurrentData)+ResponseSIDOffset && sid != byte(ModeFreezeFrame)+ResponseSIDOffset {
		return PidValue{}, fmt.Errorf("obd: unexpected response SID 0x%02X", sid)
	}
	pid := resp[1]
	return DecodePID(pid, resp[2:])
}
