// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// escapeReplacer applies the MySQL-safe escape map from §4.5 to every
// byte of a string/bytes value.
var escapeReplacer = strings.NewReplacer(
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\x1a", `\Z`,
)

// EncodeValue serializes v into a SQL literal fragment for parameter
// substitution (§4.5 "Value Encoder").
func EncodeValue(v Value) (string, error) {
	switch v.Kind {
	case KindNull:
		return "null", nil
	case KindInt:
		return strconv.FormatInt(v.Int, 10), nil
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64), nil
	case KindDecimal:
		return v.Decimal.String(), nil
	case KindBytes:
		return "'" + escapeReplacer.Replace(string(v.Bytes)) + "'", nil
	case KindDate:
		return fmt.Sprintf("'%04d-%02d-%02d'", v.Year, v.Month, v.Day), nil
	case KindTime:
		return fmt.Sprintf("'%02d:%02d:%02d'", v.Hour, v.Minute, v.Second), nil
	case KindDateTime:
		return fmt.Sprintf("'%04d-%02d-%02d %02d:%02d:%02d'",
			v.Year, v.Month, v.Day, v.Hour, v.Minute, v.Second), nil
	default:
		return "", errors.Wrapf(ErrUnrecognizedValue, "kind %d", v.Kind)
	}
}

// EncodeHostValue serializes a host language value (bool, any integer
// or float width, string, []byte, or Value) into a SQL literal,
// mirroring EncodeValue for callers that don't build Value manually.
func EncodeHostValue(v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return "null", nil
	case Value:
		return EncodeValue(x)
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case int8, int16, int32, uint, uint8, uint16, uint32:
		return fmt.Sprintf("%d", x), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case string:
		return EncodeValue(BytesValue([]byte(x)))
	case []byte:
		return EncodeValue(BytesValue(x))
	default:
		return "", errors.Wrapf(ErrUnrecognizedValue, "unsupported host type %T", v)
	}
}
