package obd

import (
	"context"
	"fmt"
	"time"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
)

// Engine is the high-level OBD-II surface the CAN-bus tools are built on.
// Every method that writes a request to the bus first passes its mode
// through the safety gate. The only other outbound frame in this package
// is the fixed ISO-TP flow-control frame isoTpReceive sends after a First
// Frame.
type Engine struct {
	Bus Bus
}

// NewEngine wraps a Bus with the OBD-II request/response protocol.
func NewEngine(bus Bus) *Engine {
	return &Engine{Bus: bus}
}

// sendRequest gates mode through the safety check, then writes the frame.
func (e *Engine) sendRequest(ctx context.Context, mode Mode, frame Frame) error {
	if err := checkMode(mode); err != nil {
		return err
	}
	return e.Bus.Send(ctx, frame)
}

// ReadDTCs issues a Mode 03 request and returns every stored DTC.
func (e *Engine) ReadDTCs(ctx context.Context) ([]protocol.DtcCode, error) {
	if err := e.sendRequest(ctx, ModeStoredDTCs, buildDtcRequest()); err != nil {
		return nil, err
	}
	resp, err := isoTpReceive(ctx, e.Bus)
	if err != nil {
		return nil, err
	}
	return DecodeDtcResponse(resp)
}

// ReadPID issues a Mode 01 request for a single PID and returns its
// decoded value.
func (e *Engine) ReadPID(ctx context.Context, pid byte) (PidValue, error) {
	if err := e.sendRequest(ctx, ModeCurrentData, buildPidRequest(ModeCurrentData, pid)); err != nil {
		return PidValue{}, err
	}
	resp, err := isoTpReceive(ctx, e.Bus)
	if err != nil {
		return PidValue{}, err
	}
	return ParsePidResponse(resp)
}

// ReadFreezeFrame issues a Mode 02 request for a single PID's
// freeze-frame snapshot and returns its decoded value.
func (e *Engine) ReadFreezeFrame(ctx context.Context, pid byte) (PidValue, error) {
	if err := e.sendRequest(ctx, ModeFreezeFrame, buildPidRequest(ModeFreezeFrame, pid)); err != nil {
		return PidValue{}, err
	}
	resp, err := isoTpReceive(ctx, e.Bus)
	if err != nil {
		return PidValue{}, err
	}
	return ParsePidResponse(resp)
}

// ReadVIN issues a Mode 09 PID 0x02 request, which always arrives
// multi-frame over ISO-TP, and decodes the ASCII vehicle identification
// number from the response.
func (e *Engine) ReadVIN(ctx context.Context) (string, error) {
	req := buildPidRequest(ModeVehicleInfo, pidVIN)
	if err := e.sendRequest(ctx, ModeVehicleInfo, req); err != nil {
		return "", err
	}
	resp, err := isoTpReceive(ctx, e.Bus)
	if err != nil {
		return "", err
	}

	if len(resp) < 3 {
		return "", fmt.Errorf("obd: VIN response too short")
	}
	wantSID := byte(ModeVehicleInfo) + ResponseSIDOffset
	if resp[0] != wantSID || resp[1] != pidVIN {
		return "", fmt.Errorf("obd: unexpected VIN response header")
	}
	// resp[2] is the number-of-data-items byte; the remaining bytes are
	// the ASCII VIN characters.
	return string(resp[3:]), nil
}

// Monitor passively sniffs the bus for dur, returning every frame
// observed. It never sends anything, so the safety gate doesn't apply.
func (e *Engine) Monitor(ctx context.Context, dur time.Duration) ([]Frame, error) {
	ctx, cancel := context.WithTimeout(ctx, dur)
	defer cancel()

	var frames []Frame
	for {
		f, err := e.Bus.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return frames, nil
			}
			return frames, err
		}
		frames = append(frames, f)
	}
}
