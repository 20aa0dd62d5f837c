package obd

import (
	"context"
	"sync"
)

// MockBus simulates a single ECU for tests: it answers Mode 01/02 PID
// requests, Mode 03 DTC requests, and the Mode 09 VIN request (which it
// always answers multi-frame, exercising the First-Frame/Consecutive-Frame
// reassembly path), over in-memory channels rather than a real CAN socket.
type MockBus struct {
	mu          sync.Mutex
	dtcBytes    []byte // concatenated 2-byte DTC pairs
	pidData     map[byte][]byte
	freezeData  map[byte][]byte
	vin         string
	responseID  uint32
	sent        []Frame
	pendingResp [][]byte // queued raw 8-byte frames for the current exchange
}

// NewMockBus creates a MockBus that responds on the given physical
// response arbitration ID (must be within [ResponseIDLow, ResponseIDHigh]).
func NewMockBus(responseID uint32) *MockBus {
	return &MockBus{
		responseID: responseID,
		pidData:    map[byte][]byte{},
		freezeData: map[byte][]byte{},
	}
}

// SetDTCs configures the DTC codes ReadDTCs will decode, given as
// category/digit1/digit2/byte2 tuples pre-encoded by the caller via
// DecodeDtcBytes's inverse — tests build these directly as raw byte pairs.
func (m *MockBus) SetDTCs(pairs [][2]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dtcBytes = m.dtcBytes[:0]
	for _, p := range pairs {
		m.dtcBytes = append(m.dtcBytes, p[0], p[1])
	}
}

// SetPID configures the raw data bytes (A, B, ...) a Mode 01 request for
// pid should decode.
func (m *MockBus) SetPID(pid byte, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pidData[pid] = data
}

// SetFreezeFrame configures the raw data bytes a Mode 02 request for pid
// should decode.
func (m *MockBus) SetFreezeFrame(pid byte, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.freezeData[pid] = data
}

// SetVIN configures the VIN ReadVIN will reassemble from a multi-frame
// response.
func (m *MockBus) SetVIN(vin string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vin = vin
}

// Send implements Bus: it inspects the outbound request and queues the
// frames that make up this ECU's response.
func (m *MockBus) Send(ctx context.Context, f Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, f)

	// A flow-control frame from the engine (during VIN reassembly) needs
	// no reply queued here; consecutive frames were already queued when
	// the request that triggered them was sent.
	if f.Data[0]>>4 == byte(isoTpFlowControl) {
		return nil
	}

	if len(f.Data) < 3 {
		return nil
	}
	mode := Mode(f.Data[1])
	pid := f.Data[2]

	switch mode {
	case ModeStoredDTCs:
		m.pendingResp = m.queueSingleOrMulti(append([]byte{byte(ModeStoredDTCs) + ResponseSIDOffset}, m.dtcBytes...))
	case ModeCurrentData:
		data, ok := m.pidData[pid]
		if !ok {
			return nil
		}
		m.pendingResp = m.queueSingleOrMulti(append([]byte{byte(ModeCurrentData) + ResponseSIDOffset, pid}, data...))
	case ModeFreezeFrame:
		data, ok := m.freezeData[pid]
		if !ok {
			return nil
		}
		m.pendingResp = m.queueSingleOrMulti(append([]byte{byte(ModeFreezeFrame) + ResponseSIDOffset, pid}, data...))
	case ModeVehicleInfo:
		body := append([]byte{byte(ModeVehicleInfo) + ResponseSIDOffset, pidVIN, 1}, []byte(m.vin)...)
		m.pendingResp = m.queueSingleOrMulti(body)
	}

	return nil
}

// queueSingleOrMulti splits a logical payload into the raw 8-byte ISO-TP
// frames that reproduce it, choosing single-frame or first+consecutive
// framing based on length.
func (m *MockBus) queueSingleOrMulti(payload []byte) [][]byte {
	if len(payload) <= 7 {
		frame := make([]byte, 8)
		frame[0] = byte(len(payload))
		copy(frame[1:], payload)
		return [][]byte{frame}
	}

	var frames [][]byte
	first := make([]byte, 8)
	first[0] = isoTpFirstFrameByte(len(payload))
	first[1] = byte(len(payload))
	copy(first[2:], payload[:6])
	frames = append(frames, first)

	remaining := payload[6:]
	seq := byte(1)
	for len(remaining) > 0 {
		n := 7
		if n > len(remaining) {
			n = len(remaining)
		}
		cf := make([]byte, 8)
		cf[0] = byte(isoTpConsecutiveFrame)<<4 | (seq & 0x0F)
		copy(cf[1:], remaining[:n])
		frames = append(frames, cf)
		remaining = remaining[n:]
		seq = (seq + 1) & 0x0F
	}
	return frames
}

func isoTpFirstFrameByte(totalLen int) byte {
	return byte(isoTpFirstFrame)<<4 | byte((totalLen>>8)&0x0F)
}

// Receive implements Bus: it pops the next queued response frame. Every
// frame a Send call produces is queued synchronously before Send returns,
// so by the time a caller's request/response exchange reaches Receive the
// full response is already available; an empty queue means ctx should be
// honored (e.g. a passive Monitor with nothing left to observe).
func (m *MockBus) Receive(ctx context.Context) (Frame, error) {
	m.mu.Lock()
	if len(m.pendingResp) > 0 {
		next := m.pendingResp[0]
		m.pendingResp = m.pendingResp[1:]
		m.mu.Unlock()
		return Frame{ID: m.responseID, Data: next}, nil
	}
	m.mu.Unlock()

	<-ctx.Done()
	return Frame{}, ctx.Err()
}
