// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecuteOrchestratesPrepareSetExecute(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)

		req := readFrameFromConn(t, server)
		assert.Equal(t, "PREPARE ins FROM 'INSERT INTO t VALUES (?, ?)'", string(req.payload[1:]))
		writeFrameToConn(t, server, okPacket(0, 0), 1)

		req = readFrameFromConn(t, server)
		assert.Equal(t, "SET @1 = 1", string(req.payload[1:]))
		writeFrameToConn(t, server, okPacket(0, 0), 1)

		req = readFrameFromConn(t, server)
		assert.Equal(t, "SET @2 = 'x'", string(req.payload[1:]))
		writeFrameToConn(t, server, okPacket(0, 0), 1)

		req = readFrameFromConn(t, server)
		assert.Equal(t, "EXECUTE ins USING @1, @2", string(req.payload[1:]))
		writeFrameToConn(t, server, okPacket(1, 7), 1)
	}()

	res, err := s.Execute("ins", "INSERT INTO t VALUES (?, ?)", []Value{
		IntValue(1),
		BytesValue([]byte("x")),
	})
	<-done
	assert.NoError(t, err)
	assert.Equal(t, ResultUpdated, res.Tag)
	assert.Equal(t, uint64(1), res.AffectedRows)
	assert.Equal(t, uint64(7), res.InsertID)
	assert.True(t, s.HasPrepared("ins"))
}

func TestExecuteNoParams(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)

		readFrameFromConn(t, server)
		writeFrameToConn(t, server, okPacket(0, 0), 1)

		req := readFrameFromConn(t, server)
		assert.Equal(t, "EXECUTE noop", string(req.payload[1:]))
		writeFrameToConn(t, server, okPacket(0, 0), 1)
	}()

	_, err := s.Execute("noop", "DELETE FROM t", nil)
	<-done
	assert.NoError(t, err)
}

func TestExecutePrepareFailureShortCircuits(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		readFrameFromConn(t, server)
		writeFrameToConn(t, server, errPacketV41(1064, "42000", "bad syntax"), 1)
	}()

	res, err := s.Execute("bad", "INSERT GARBAGE", nil)
	<-done
	assert.NoError(t, err)
	assert.Equal(t, ResultError, res.Tag)
	assert.False(t, s.HasPrepared("bad"))
}

func TestHasPreparedUnknownName(t *testing.T) {
	s, _ := newTestSession(t)
	assert.False(t, s.HasPrepared("nope"))
}
