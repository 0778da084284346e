// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEncodeValueNull(t *testing.T) {
	s, err := EncodeValue(NullValue)
	assert.NoError(t, err)
	assert.Equal(t, "null", s)
}

func TestEncodeValueBytesEscaping(t *testing.T) {
	s, err := EncodeValue(BytesValue([]byte("O'Reilly\n")))
	assert.NoError(t, err)
	assert.Equal(t, `'O\'Reilly\n'`, s)
}

func TestEncodeValueDecimal(t *testing.T) {
	s, err := EncodeValue(DecimalValue(decimal.RequireFromString("12.50")))
	assert.NoError(t, err)
	assert.Equal(t, "12.5", s)
}

func TestEncodeValueDate(t *testing.T) {
	s, err := EncodeValue(DateValue(2024, 3, 1))
	assert.NoError(t, err)
	assert.Equal(t, "'2024-03-01'", s)
}

func TestEncodeValueDateTime(t *testing.T) {
	s, err := EncodeValue(DateTimeValue(2024, 3, 1, 13, 5, 9))
	assert.NoError(t, err)
	assert.Equal(t, "'2024-03-01 13:05:09'", s)
}

func TestEncodeValueUnrecognizedKind(t *testing.T) {
	_, err := EncodeValue(Value{Kind: ValueKind(99)})
	assert.Error(t, err)
}

func TestEncodeHostValueVariants(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{nil, "null"},
		{true, "1"},
		{false, "0"},
		{int(7), "7"},
		{int64(-3), "-3"},
		{uint64(9), "9"},
		{float64(1.5), "1.5"},
		{"abc", "'abc'"},
		{[]byte("abc"), "'abc'"},
	}
	for _, c := range cases {
		got, err := EncodeHostValue(c.in)
		assert.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestEncodeHostValueUnsupportedType(t *testing.T) {
	_, err := EncodeHostValue(struct{}{})
	assert.Error(t, err)
}
