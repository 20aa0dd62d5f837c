package protocol

import "time"

// Heartbeat is the liveness ping a device publishes on its heartbeat
// topic. The cloud side uses it to touch a device's last-heartbeat and
// last-seen timestamps; it carries no payload beyond identity and time.
type Heartbeat struct {
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
}
