package obd

import (
	"context"
	"fmt"

	"github.com/zeroclaw-io/fleetdiag/pkg/metrics"
)

// isoTpFrameType is the PCI (protocol control information) nibble that
// occupies the top 4 bits of byte 0 in every ISO-TP frame.
type isoTpFrameType byte

const (
	isoTpSingleFrame      isoTpFrameType = 0x0
	isoTpFirstFrame       isoTpFrameType = 0x1
	isoTpConsecutiveFrame isoTpFrameType = 0x2
	isoTpFlowControl      isoTpFrameType = 0x3
)

// IsoTpError reports a malformed or out-of-sequence ISO-TP frame.
type IsoTpError struct {
	Reason string
}

func (e *IsoTpError) Error() string { return "obd: iso-tp: " + e.Reason }

// isoTpFail records a reassembly failure and returns it as an IsoTpError.
func isoTpFail(reason string) error {
	metrics.IsoTpReassemblyErrors.Inc()
	return &IsoTpError{Reason: reason}
}

// flowControlFrame is the fixed Clear-To-Send response this engine sends
// after receiving a First Frame: no flow control separation time, no
// block size limit.
var flowControlFrame = []byte{0x30, 0x00, 0x00, 0, 0, 0, 0, 0}

// isoTpReceive reads and reassembles one ISO-TP message from bus. It
// accepts the first frame whose arbitration ID is in the OBD-II physical
// response range, then — if that frame signals multi-frame — sends a flow
// control frame on RequestID and reads consecutive frames from the same
// responder until the declared total length is reassembled. The returned
// payload is truncated to exactly that declared length.
func isoTpReceive(ctx context.Context, bus Bus) ([]byte, error) {
	first, err := nextObdFrame(ctx, bus)
	if err != nil {
		return nil, err
	}
	if len(first.Data) == 0 {
		return nil, isoTpFail("empty frame")
	}

	frameType := isoTpFrameType(first.Data[0] >> 4)
	switch frameType {
	case isoTpSingleFrame:
		length := int(first.Data[0] & 0x0F)
		if length > len(first.Data)-1 {
			return nil, isoTpFail("single frame declares more data than it carries")
		}
		return append([]byte(nil), first.Data[1:1+length]...), nil

	case isoTpFirstFrame:
		if len(first.Data) < 2 {
			return nil, isoTpFail("first frame missing length byte")
		}
		total := (int(first.Data[0]&0x0F) << 8) | int(first.Data[1])

		payload := make([]byte, 0, total)
		payload = append(payload, first.Data[2:]...)

		if err := bus.Send(ctx, Frame{ID: RequestID, Data: append([]byte(nil), flowControlFrame...)}); err != nil {
			return nil, fmt.Errorf("obd: sending flow control: %w", err)
		}

		expectedSeq := byte(1)
		for len(payload) < total {
			cf, err := nextObdFrame(ctx, bus)
			if err != nil {
				return nil, err
			}
			if cf.ID != first.ID {
				continue
			}
			if len(cf.Data) == 0 {
				return nil, isoTpFail("empty consecutive frame")
			}
			cfType := isoTpFrameType(cf.Data[0] >> 4)
			if cfType != isoTpConsecutiveFrame {
				return nil, isoTpFail("expected consecutive frame")
			}
			seq := cf.Data[0] & 0x0F
			if seq != expectedSeq {
				return nil, isoTpFail("consecutive frame out of sequence")
			}
			payload = append(payload, cf.Data[1:]...)
			expectedSeq = (expectedSeq + 1) & 0x0F
		}

		return payload[:total], nil

	default:
		return nil, isoTpFail(fmt.Sprintf("unexpected frame type 0x%X as first frame", frameType))
	}
}

// nextObdFrame blocks for the next frame whose arbitration ID is in the
// OBD-II physical response range, discarding anything else (e.g. unrelated
// bus traffic visible while a passive monitor is also attached).
func nextObdFrame(ctx context.Context, bus Bus) (Frame, error) {
	for {
		f, err := bus.Receive(ctx)
		if err != nil {
			return Frame{}, err
		}
		if IsObdResponseID(f.ID) {
			return f, nil
		}
	}
}
