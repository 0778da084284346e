// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// decodeValue converts a raw text-protocol column value into a typed
// Value using the column's type tag (§4.4 "Type Decoder"). A value
// previously decoded as NULL by the LCB reader bypasses this table.
func decodeValue(raw []byte, t FieldType) (Value, error) {
	switch t {
	case FieldTypeTiny, FieldTypeShort, FieldTypeLong, FieldTypeLongLong,
		FieldTypeInt24, FieldTypeYear:
		i, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return Value{}, errors.Wrapf(ErrProtocolError, "decoding integer column: %v", err)
		}
		return IntValue(i), nil

	case FieldTypeDecimal, FieldTypeNewDecimal:
		d, err := decimal.NewFromString(string(raw))
		if err != nil {
			return Value{}, errors.Wrapf(ErrProtocolError, "decoding decimal column: %v", err)
		}
		return DecimalValue(d), nil

	case FieldTypeFloat, FieldTypeDouble:
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
			return FloatValue(f), nil
		}
		// The value is numerically exact; fall back to integer parse.
		if i, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			return IntValue(i), nil
		}
		return Value{}, errors.Wrap(ErrProtocolError, "decoding float column")

	case FieldTypeTimestamp, FieldTypeDateTime:
		return parseDateTime(raw)

	case FieldTypeDate, FieldTypeNewDate:
		return parseDate(raw)

	case FieldTypeTime:
		return parseTime(raw)

	default:
		return BytesValue(append([]byte(nil), raw...)), nil
	}
}

func parseDate(raw []byte) (Value, error) {
	parts := strings.SplitN(string(raw), "-", 3)
	if len(parts) != 3 {
		return Value{}, errors.Wrap(ErrProtocolError, "malformed DATE value")
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return Value{}, errors.Wrap(ErrProtocolError, "malformed DATE value")
	}
	return DateValue(y, m, d), nil
}

func parseTime(raw []byte) (Value, error) {
	parts := strings.SplitN(string(raw), ":", 3)
	if len(parts) != 3 {
		return Value{}, errors.Wrap(ErrProtocolError, "malformed TIME value")
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	s, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return Value{}, errors.Wrap(ErrProtocolError, "malformed TIME value")
	}
	return TimeValue(h, m, s), nil
}

func parseDateTime(raw []byte) (Value, error) {
	s := string(raw)
	sp := strings.SplitN(s, " ", 2)
	if len(sp) != 2 {
		return Value{}, errors.Wrap(ErrProtocolError, "malformed DATETIME value")
	}
	dateVal, err := parseDate([]byte(sp[0]))
	if err != nil {
		return Value{}, err
	}
	timeVal, err := parseTime([]byte(sp[1]))
	if err != nil {
		return Value{}, err
	}
	return DateTimeValue(dateVal.Year, dateVal.Month, dateVal.Day,
		timeVal.Hour, timeVal.Minute, timeVal.Second), nil
}
