package protocol

import (
	"encoding/hex"
	"encoding/json"
	"time"
)

// TelemetryReading is a single named, unit-tagged measurement published on
// one of the telemetry/* topics (OBD-II PID value, host metric, or raw
// CAN-bus sample).
type TelemetryReading struct {
	DeviceID  string    `json:"device_id"`
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CanFrame is a single CAN 2.0A frame: an 11-bit arbitration ID and up to
// 8 data bytes. DataHex encodes Data as lowercase hex over the wire so
// CanFrame round-trips through JSON without a custom binary envelope.
type CanFrame struct {
	ID   uint32 `json:"id"`
	Data []byte `json:"-"`
}

// MarshalJSON encodes the frame with its payload as a lowercase hex string.
func (f CanFrame) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID      uint32 `json:"id"`
		DataHex string `json:"data_hex"`
	}
	return json.Marshal(wire{ID: f.ID, DataHex: hex.EncodeToString(f.Data)})
}

// UnmarshalJSON decodes a frame whose payload arrived as a lowercase hex
// string.
func (f *CanFrame) UnmarshalJSON(data []byte) error {
	type wire struct {
		ID      uint32 `json:"id"`
		DataHex string `json:"data_hex"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(w.DataHex)
	if err != nil {
		return err
	}
	f.ID = w.ID
	f.Data = decoded
	return nil
}
