// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "github.com/shopspring/decimal"

// Dialect is the wire-protocol variant negotiated from the server's
// version string during the handshake (§6 "Dialect selection").
type Dialect uint8

const (
	// V40 is the pre-4.1 dialect: five-field field packets, ERR packets
	// without a SQL state.
	V40 Dialect = iota
	// V41 is the 4.1/5.x dialect: six-field field packets plus a fixed
	// trailer, ERR packets carrying a SQL state.
	V41
)

func (d Dialect) String() string {
	if d == V41 {
		return "V41"
	}
	return "V40"
}

// dialectFromVersion classifies a server version string per §6's
// prefix table. Unrecognized prefixes fall back to V40.
func dialectFromVersion(version string) (Dialect, bool) {
	switch {
	case hasPrefix(version, "4.1"), hasPrefix(version, "5"):
		return V41, true
	case hasPrefix(version, "4.0"):
		return V40, true
	default:
		return V40, false
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// FieldType is one of the MySQL column type tags (§6 "Column type tag table").
type FieldType uint8

const (
	FieldTypeDecimal    FieldType = 0
	FieldTypeTiny       FieldType = 1
	FieldTypeShort      FieldType = 2
	FieldTypeLong       FieldType = 3
	FieldTypeFloat      FieldType = 4
	FieldTypeDouble     FieldType = 5
	FieldTypeNull       FieldType = 6
	FieldTypeTimestamp  FieldType = 7
	FieldTypeLongLong   FieldType = 8
	FieldTypeInt24      FieldType = 9
	FieldTypeDate       FieldType = 10
	FieldTypeTime       FieldType = 11
	FieldTypeDateTime   FieldType = 12
	FieldTypeYear       FieldType = 13
	FieldTypeNewDate    FieldType = 14
	FieldTypeNewDecimal FieldType = 246
	FieldTypeEnum       FieldType = 247
	FieldTypeSet        FieldType = 248
	FieldTypeTinyBlob   FieldType = 249
	FieldTypeMediumBlob FieldType = 250
	FieldTypeLongBlob   FieldType = 251
	FieldTypeBlob       FieldType = 252
	FieldTypeVarString  FieldType = 253
	FieldTypeString     FieldType = 254
	FieldTypeGeometry   FieldType = 255
)

// ColumnMeta describes one result-set column (§3 "ColumnMeta").
type ColumnMeta struct {
	Table  string
	Field  string
	Length uint32
	Type   FieldType
}

// ValueKind discriminates the tagged Value union (§3 "Value").
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindDecimal
	KindBytes
	KindDate
	KindTime
	KindDateTime
)

// Value is the tagged union of decoded column values. Exactly one of
// the typed accessors is meaningful for a given Kind.
type Value struct {
	Kind    ValueKind
	Int     int64
	Float   float64
	Decimal decimal.Decimal
	Bytes   []byte

	Year, Month, Day    int
	Hour, Minute, Second int
}

// Null reports whether v represents SQL NULL.
func (v Value) Null() bool { return v.Kind == KindNull }

// NullValue is the canonical Null Value.
var NullValue = Value{Kind: KindNull}

// IntValue wraps an integer as a Value.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue wraps a float as a Value.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// DecimalValue wraps a decimal.Decimal as a Value.
func DecimalValue(d decimal.Decimal) Value { return Value{Kind: KindDecimal, Decimal: d} }

// BytesValue wraps raw bytes as a Value.
func BytesValue(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }

// DateValue constructs a Date Value.
func DateValue(y, m, d int) Value { return Value{Kind: KindDate, Year: y, Month: m, Day: d} }

// TimeValue constructs a Time Value.
func TimeValue(h, m, s int) Value { return Value{Kind: KindTime, Hour: h, Minute: m, Second: s} }

// DateTimeValue constructs a DateTime Value.
func DateTimeValue(y, mo, d, h, mi, s int) Value {
	return Value{Kind: KindDateTime, Year: y, Month: mo, Day: d, Hour: h, Minute: mi, Second: s}
}

// MySQLResult is the tagged result of a Session operation (§3 "MySQLResult").
type MySQLResult struct {
	// Tag selects which of the fields below is populated.
	Tag ResultTag

	// Updated fields.
	AffectedRows uint64
	InsertID     uint64

	// Data fields.
	Fields []ColumnMeta
	Rows   [][]Value

	// Error fields.
	Err *ServerError
}

// ResultTag discriminates MySQLResult.
type ResultTag uint8

const (
	ResultUpdated ResultTag = iota
	ResultData
	ResultError
)
