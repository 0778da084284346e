// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Execute runs a prepared-statement execution against this connection
// (§4.6.3): PREPARE name FROM 'text', one SET @i = <value> per
// parameter in ascending order, then EXECUTE name USING @1, @2, ...
// (or bare EXECUTE name with no parameters). text is expected
// pre-escaped by the caller's statement registry.
func (s *Session) Execute(name, text string, params []Value) (MySQLResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepRes, err := s.fetch(fmt.Sprintf("PREPARE %s FROM '%s'", name, text))
	if err != nil {
		return MySQLResult{}, wrapOp("execute: prepare", err)
	}
	if prepRes.Tag != ResultUpdated {
		if prepRes.Tag == ResultError {
			return prepRes, nil
		}
		return MySQLResult{}, wrapOp("execute: prepare",
			errors.Wrap(ErrProtocolError, "PREPARE did not return an Updated result"))
	}
	s.preparedNames[name] = struct{}{}

	for i, v := range params {
		literal, err := EncodeValue(v)
		if err != nil {
			return MySQLResult{}, wrapOp("execute: set parameter", err)
		}
		setRes, err := s.fetch(fmt.Sprintf("SET @%d = %s", i+1, literal))
		if err != nil {
			return MySQLResult{}, wrapOp("execute: set parameter", err)
		}
		if setRes.Tag == ResultError {
			return setRes, nil
		}
	}

	execStmt := "EXECUTE " + name
	if len(params) > 0 {
		placeholders := make([]string, len(params))
		for i := range params {
			placeholders[i] = fmt.Sprintf("@%d", i+1)
		}
		execStmt += " USING " + strings.Join(placeholders, ", ")
	}

	execRes, err := s.fetch(execStmt)
	if err != nil {
		return MySQLResult{}, wrapOp("execute", err)
	}
	return execRes, nil
}

// HasPrepared reports whether name was previously issued a successful
// PREPARE on this connection.
func (s *Session) HasPrepared(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.preparedNames[name]
	return ok
}
