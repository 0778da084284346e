// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// maxPayloadLen is the largest payload this client will frame as a
// single packet. Payloads at or above this size would require
// continuation frames, which this client does not implement (§9 Open
// Questions: "multi-packet payloads ... are not handled").
const maxPayloadLen = 1<<24 - 1

// frame is one de-framed packet: its payload and the sequence number
// it carried on the wire (§3 "Packet").
type frame struct {
	payload []byte
	seq     uint8
}

// encodeHeader writes the 4-byte packet header: len[3] little-endian,
// seq[1] (§4.1 "Header encoding").
func encodeHeader(payloadLen int, seq uint8) []byte {
	h := make([]byte, 4)
	h[0] = byte(payloadLen)
	h[1] = byte(payloadLen >> 8)
	h[2] = byte(payloadLen >> 16)
	h[3] = seq
	return h
}

// decodeHeader parses a 4-byte header into a payload length and
// sequence number.
func decodeHeader(h []byte) (payloadLen int, seq uint8) {
	payloadLen = int(h[0]) | int(h[1])<<8 | int(h[2])<<16
	seq = h[3]
	return
}

// encodeFrame produces the wire bytes for a single frame. It returns
// an error if payload is too large to fit in one frame.
func encodeFrame(payload []byte, seq uint8) ([]byte, error) {
	if len(payload) >= maxPayloadLen {
		return nil, errors.Wrap(ErrProtocolError, "payload exceeds single-frame limit")
	}
	buf := make([]byte, 0, 4+len(payload))
	buf = append(buf, encodeHeader(len(payload), seq)...)
	buf = append(buf, payload...)
	return buf, nil
}

// --- Length-Coded Binary (LCB) ---
// §4.1 "Length-Coded Binary (LCB) decoding"

const (
	lcbNull       = 0xFB
	lcb16         = 0xFC
	lcb24         = 0xFD
	lcb32OrEOF    = 0xFE
	lcbErrMarker  = 0xFF
)

// readLCB decodes a length-coded binary integer at the start of data.
// It returns the value, whether it was the NULL sentinel, and the
// number of bytes consumed.
func readLCB(data []byte) (value uint64, isNull bool, consumed int, err error) {
	if len(data) == 0 {
		return 0, false, 0, errors.Wrap(ErrProtocolError, "empty LCB")
	}

	switch b := data[0]; {
	case b <= 0xFA:
		return uint64(b), false, 1, nil
	case b == lcbNull:
		return 0, true, 1, nil
	case b == lcb16:
		if len(data) < 3 {
			return 0, false, 0, errors.Wrap(ErrProtocolError, "short LCB16")
		}
		return uint64(binary.LittleEndian.Uint16(data[1:3])), false, 3, nil
	case b == lcb24:
		if len(data) < 4 {
			return 0, false, 0, errors.Wrap(ErrProtocolError, "short LCB24")
		}
		v := uint64(data[1]) | uint64(data[2])<<8 | uint64(data[3])<<16
		return v, false, 4, nil
	case b == lcb32OrEOF:
		if len(data) < 5 {
			return 0, false, 0, errors.Wrap(ErrProtocolError, "short LCB32")
		}
		return uint64(binary.LittleEndian.Uint32(data[1:5])), false, 5, nil
	case b == lcbErrMarker:
		// Outside of a result-set context 0xFF is just the value 255.
		return 255, false, 1, nil
	default:
		return uint64(b), false, 1, nil
	}
}

// writeLCB encodes n as a length-coded binary integer.
func writeLCB(n uint64) []byte {
	switch {
	case n <= 250:
		return []byte{byte(n)}
	case n <= 0xFFFF:
		b := make([]byte, 3)
		b[0] = lcb16
		binary.LittleEndian.PutUint16(b[1:], uint16(n))
		return b
	case n <= 0xFFFFFF:
		b := make([]byte, 4)
		b[0] = lcb24
		b[1], b[2], b[3] = byte(n), byte(n>>8), byte(n>>16)
		return b
	default:
		// §4.1's 0xFE form carries a 32-bit little-endian value; readLCB
		// consumes exactly 5 bytes for it, so the encoder must match.
		b := make([]byte, 5)
		b[0] = lcb32OrEOF
		binary.LittleEndian.PutUint32(b[1:], uint32(n))
		return b
	}
}

// readLCString reads a length-coded string: an LCB length followed by
// that many raw bytes. When the LCB decodes to NULL the string is also
// NULL with zero bytes consumed beyond the marker (§4.1 "Length-Coded
// String").
func readLCString(data []byte) (value []byte, isNull bool, consumed int, err error) {
	n, isNull, lcbLen, err := readLCB(data)
	if err != nil {
		return nil, false, 0, err
	}
	if isNull {
		return nil, true, lcbLen, nil
	}
	end := lcbLen + int(n)
	if len(data) < end {
		return nil, false, 0, errors.Wrap(ErrProtocolError, "short length-coded string")
	}
	return data[lcbLen:end], false, end, nil
}

// writeLCString encodes s as a length-coded string.
func writeLCString(s []byte) []byte {
	out := writeLCB(uint64(len(s)))
	return append(out, s...)
}

// isEOFPacket reports whether data is an EOF packet: leading byte
// 0xFE with fewer than 8 bytes of trailing payload (§3 invariant,
// disambiguating EOF from a row whose first LCB byte may also be
// 0xFE).
func isEOFPacket(data []byte) bool {
	return len(data) > 0 && data[0] == lcb32OrEOF && len(data)-1 < 8
}

// isErrPacket reports whether data is an ERR packet (leading byte 0xFF).
func isErrPacket(data []byte) bool {
	return len(data) > 0 && data[0] == lcbErrMarker
}

// isOKPacket reports whether data is an OK packet (leading byte 0x00).
func isOKPacket(data []byte) bool {
	return len(data) > 0 && data[0] == 0x00
}
