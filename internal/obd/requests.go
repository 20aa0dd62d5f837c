package obd

// buildPidRequest builds a mode/PID request frame: [length=0x02, mode, pid,
// 0, 0, 0, 0, 0].
func buildPidRequest(mode Mode, pid byte) Frame {
	return Frame{
		ID:   RequestID,
		Data: []byte{0x02, byte(mode), pid, 0, 0, 0, 0, 0},
	}
}

// buildDtcRequest builds the Mode 0x03 (read stored DTCs) request frame:
// [length=0x01, mode, 0, 0, 0, 0, 0, 0].
func buildDtcRequest() Frame {
	return Frame{
		ID:   RequestID,
		Data: []byte{0x01, byte(ModeStoredDTCs), 0, 0, 0, 0, 0, 0},
	}
}

// pidVIN is the Mode 09 PID for the vehicle identification number, always
// returned multi-frame.
const pidVIN byte = 0x02
