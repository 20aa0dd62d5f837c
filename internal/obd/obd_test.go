package obd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodePID_RPM(t *testing.T) {
	v, err := DecodePID(0x0C, []byte{0x36, 0xB0})
	require.NoError(t, err)
	require.Equal(t, 3500.0, v.Value)
	require.Equal(t, "rpm", v.Name)
}

func TestDecodePID_UnknownPID(t *testing.T) {
	_, err := DecodePID(0xFF, []byte{0x00})
	require.Error(t, err)
}

func TestDecodePID_TooShort(t *testing.T) {
	_, err := DecodePID(0x0C, []byte{0x01})
	require.Error(t, err)
}

func TestDecodeDtcBytes_P0300(t *testing.T) {
	code, ok := DecodeDtcBytes(0x03, 0x00)
	require.True(t, ok)
	require.Equal(t, "P0300", code)
}

func TestDecodeDtcBytes_AllZeroIsPadding(t *testing.T) {
	_, ok := DecodeDtcBytes(0x00, 0x00)
	require.False(t, ok)
}

func TestSafetyGate_RejectsModeOutsideAllowList(t *testing.T) {
	err := checkMode(Mode(0x04)) // clear DTCs, not in the allow-list
	require.Error(t, err)

	var se *SafetyError
	require.ErrorAs(t, err, &se)
}

func TestSafetyGate_AllowsEveryExportedEngineMode(t *testing.T) {
	for _, m := range []Mode{ModeCurrentData, ModeFreezeFrame, ModeStoredDTCs, ModeVehicleInfo} {
		require.True(t, IsModeAllowed(m), "mode 0x%02X should be allowed", byte(m))
	}
}

func TestEngine_ReadPID(t *testing.T) {
	bus := NewMockBus(0x7E8)
	bus.SetPID(0x0C, []byte{0x36, 0xB0})
	eng := NewEngine(bus)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, err := eng.ReadPID(ctx, 0x0C)
	require.NoError(t, err)
	require.Equal(t, 3500.0, v.Value)
}

func TestEngine_ReadDTCs(t *testing.T) {
	bus := NewMockBus(0x7E8)
	bus.SetDTCs([][2]byte{{0x03, 0x00}, {0x01, 0x71}})
	eng := NewEngine(bus)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	codes, err := eng.ReadDTCs(ctx)
	require.NoError(t, err)
	require.Len(t, codes, 2)
	require.Equal(t, "P0300", codes[0].Code)
}

func TestEngine_ReadVIN_MultiFrameReassembly(t *testing.T) {
	bus := NewMockBus(0x7E8)
	bus.SetVIN("1HGCM82633A004352")
	eng := NewEngine(bus)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	vin, err := eng.ReadVIN(ctx)
	require.NoError(t, err)
	require.Equal(t, "1HGCM82633A004352", vin)
}

func TestIsoTpReassembly_LengthAndContentProperty(t *testing.T) {
	bus := NewMockBus(0x7E8)
	// 20 data bytes forces first+consecutive framing (more than 7 in one frame).
	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = byte(i)
	}
	bus.pendingResp = bus.queueSingleOrMulti(payload)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := isoTpReceive(ctx, bus)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}
