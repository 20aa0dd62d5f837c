package obd

import (
	"fmt"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
)

// DecodeDtcBytes decodes a single 2-byte stored-DTC entry into a code
// string such as "P0300". Category comes from the top 2 bits of b0; the
// first digit (0-3) from the next 2 bits; the second digit from the low
// nibble of b0; and the third and fourth hex digits from b1. A pair of
// all-zero bytes carries no code (it's padding in a response with fewer
// than the maximum DTCs) and is reported via the second return value.
func DecodeDtcBytes(b0, b1 byte) (code string, ok bool) {
	if b0 == 0 && b1 == 0 {
		return "", false
	}
	category := protocol.ParseCategory(b0)
	digit1 := (b0 >> 4) & 0x03
	digit2 := b0 & 0x0F
	return fmt.Sprintf("%s%d%X%02X", category, digit1, digit2, b1), true
}

// DecodeDtcResponse decodes a full Mode 03 response (including the echoed
// 0x43 service ID byte) into a list of DTC codes. It tolerates a missing
// count byte convention by simply walking every subsequent 2-byte pair;
// all-zero pairs (padding) are skipped rather than emitted as "P0000".
func DecodeDtcResponse(resp []byte) ([]protocol.DtcCode, error) {
	if len(resp) < 1 || resp[0] != byte(ModeStoredDTCs)+ResponseSIDOffset {
		return nil, fmt.Errorf("obd: unexpected DTC response service id")
	}

	body := resp[1:]
	var codes []protocol.DtcCode
	for i := 0; i+1 < len(body); i += 2 {
		code, ok := DecodeDtcBytes(body[i], body[i+1])
		if !ok {
			continue
		}
		codes = append(codes, protocol.DtcCode{
			Code:     code,
			Category: protocol.ParseCategory(body[i]),
			Severity: protocol.DtcSeverityUnknown,
		})
	}
	return codes, nil
}
