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

// decodeFieldV40 parses a V40 field packet: five length-coded strings
// — table, field, length_bytes, type_byte, flags — per §4.6.1.
func decodeFieldV40(data []byte) (ColumnMeta, error) {
	table, _, n, err := readLCString(data)
	if err != nil {
		return ColumnMeta{}, errors.Wrap(ErrProtocolError, "V40 field: table")
	}
	pos := n

	field, _, n, err := readLCString(data[pos:])
	if err != nil {
		return ColumnMeta{}, errors.Wrap(ErrProtocolError, "V40 field: field")
	}
	pos += n

	lengthBytes, _, n, err := readLCString(data[pos:])
	if err != nil {
		return ColumnMeta{}, errors.Wrap(ErrProtocolError, "V40 field: length")
	}
	pos += n
	length := decodeLittleEndian(lengthBytes)

	typeBytes, _, n, err := readLCString(data[pos:])
	if err != nil || len(typeBytes) < 1 {
		return ColumnMeta{}, errors.Wrap(ErrProtocolError, "V40 field: type")
	}
	pos += n
	fieldType := FieldType(typeBytes[0])

	_, _, _, err = readLCString(data[pos:]) // flags, unused beyond presence
	if err != nil {
		return ColumnMeta{}, errors.Wrap(ErrProtocolError, "V40 field: flags")
	}

	return ColumnMeta{
		Table:  string(table),
		Field:  string(field),
		Length: length,
		Type:   fieldType,
	}, nil
}

// decodeFieldV41 parses a V41 field packet: six length-coded strings
// followed by a fixed trailer (§4.6.1).
func decodeFieldV41(data []byte) (ColumnMeta, error) {
	pos := 0

	// catalog, database — dropped.
	for i := 0; i < 2; i++ {
		_, _, n, err := readLCString(data[pos:])
		if err != nil {
			return ColumnMeta{}, errors.Wrap(ErrProtocolError, "V41 field: leading strings")
		}
		pos += n
	}

	table, _, n, err := readLCString(data[pos:])
	if err != nil {
		return ColumnMeta{}, errors.Wrap(ErrProtocolError, "V41 field: table")
	}
	pos += n

	// org_table — dropped.
	_, _, n, err = readLCString(data[pos:])
	if err != nil {
		return ColumnMeta{}, errors.Wrap(ErrProtocolError, "V41 field: org_table")
	}
	pos += n

	field, _, n, err := readLCString(data[pos:])
	if err != nil {
		return ColumnMeta{}, errors.Wrap(ErrProtocolError, "V41 field: field")
	}
	pos += n

	// org_field — dropped.
	_, _, n, err = readLCString(data[pos:])
	if err != nil {
		return ColumnMeta{}, errors.Wrap(ErrProtocolError, "V41 field: org_field")
	}
	pos += n

	// filler:1, charset:2, length:4, type:1, flags:2, decimals:1
	const trailerLen = 1 + 2 + 4 + 1 + 2 + 1
	if len(data) < pos+trailerLen {
		return ColumnMeta{}, errors.Wrap(ErrProtocolError, "V41 field: short trailer")
	}
	pos++ // filler
	pos += 2 // charset
	length := binary.LittleEndian.Uint32(data[pos : pos+4])
	pos += 4
	fieldType := FieldType(data[pos])

	return ColumnMeta{
		Table:  string(table),
		Field:  string(field),
		Length: length,
		Type:   fieldType,
	}, nil
}

func decodeLittleEndian(b []byte) uint32 {
	var v uint32
	for i, c := range b {
		v |= uint32(c) << (8 * uint(i))
	}
	return v
}
