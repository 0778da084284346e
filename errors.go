// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

// Package mysql implements a single-connection client for the MySQL
// client/server wire protocol (4.0 and 4.1/5.x dialects).
package mysql

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel error kinds. Callers use errors.Is / errors.Cause to recover
// the kind from a wrapped error returned by any exported operation.
var (
	// ErrConnectFailed indicates a TCP-level failure establishing the socket.
	ErrConnectFailed = errors.New("mysql: connect failed")

	// ErrLoginFailed indicates the handshake failed (bad credentials,
	// capability mismatch, or a protocol error during authentication).
	ErrLoginFailed = errors.New("mysql: login failed")

	// ErrFailedChangingDatabase indicates the initial USE <database> failed.
	ErrFailedChangingDatabase = errors.New("mysql: failed changing database")

	// ErrProtocolError indicates an unexpected packet shape, an invalid
	// LCB, or an unrecognized leading byte where one of OK/ERR/data was
	// expected.
	ErrProtocolError = errors.New("mysql: protocol error")

	// ErrSocketClosed indicates the receiver delivered a close signal.
	ErrSocketClosed = errors.New("mysql: socket closed")

	// ErrUnrecognizedValue indicates the encoder was asked to serialize
	// a host value of unsupported kind. It never reaches the wire.
	ErrUnrecognizedValue = errors.New("mysql: unrecognized value for encoding")
)

// ServerError wraps an ERR packet's contents (§6 ERR packet). SQLState
// is only populated under the V41 dialect.
type ServerError struct {
	Code     uint16
	SQLState string
	Message  string
}

func (e *ServerError) Error() string {
	if e.SQLState != "" {
		return fmt.Sprintf("mysql: error %d (%s): %s", e.Code, e.SQLState, e.Message)
	}
	return fmt.Sprintf("mysql: error %d: %s", e.Code, e.Message)
}

// wrapOp annotates err with the operation name that produced it,
// preserving the underlying sentinel for errors.Cause/errors.Is.
func wrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, op)
}
