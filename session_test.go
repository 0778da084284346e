// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"encoding/binary"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	applog "github.com/shibuuma/go4mysql/internal/log"
)

// newTestSession wires a Session directly to one end of an in-memory
// pipe, bypassing Open/authenticate so fetch-level behavior can be
// tested against a scripted fake server on the other end.
func newTestSession(t *testing.T) (*Session, net.Conn) {
	t.Helper()
	client, server := net.Pipe()

	s := &Session{
		conn:          client,
		preparedNames: make(map[string]struct{}),
		log:           applog.Discard(),
		dialect:       V41,
	}
	s.recv = newReceiver(client, applog.Discard())
	go s.recv.run()

	t.Cleanup(func() { client.Close(); server.Close() })
	return s, server
}

func readFrameFromConn(t *testing.T, conn net.Conn) frame {
	t.Helper()
	header := make([]byte, 4)
	if _, err := io.ReadFull(conn, header); err != nil {
		t.Fatalf("reading header: %v", err)
	}
	length, seq := decodeHeader(header)
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(conn, payload); err != nil {
			t.Fatalf("reading payload: %v", err)
		}
	}
	return frame{payload: payload, seq: seq}
}

func writeFrameToConn(t *testing.T, conn net.Conn, payload []byte, seq uint8) {
	t.Helper()
	f, err := encodeFrame(payload, seq)
	if err != nil {
		t.Fatalf("encoding frame: %v", err)
	}
	if _, err := conn.Write(f); err != nil {
		t.Fatalf("writing frame: %v", err)
	}
}

func okPacket(affected, insertID uint64) []byte {
	out := []byte{0x00}
	out = append(out, writeLCB(affected)...)
	out = append(out, writeLCB(insertID)...)
	out = append(out, 0, 0, 0, 0) // status + warnings, unread by decodeOKPacket
	return out
}

func errPacketV41(code uint16, state, message string) []byte {
	out := []byte{0xFF}
	codeBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(codeBytes, code)
	out = append(out, codeBytes...)
	out = append(out, '#')
	out = append(out, []byte(state)...)
	out = append(out, []byte(message)...)
	return out
}

// runAlwaysOK answers the next rounds requests on conn, each with an
// OK packet at sequence 1.
func runAlwaysOK(t *testing.T, conn net.Conn, rounds int) {
	for i := 0; i < rounds; i++ {
		readFrameFromConn(t, conn)
		writeFrameToConn(t, conn, okPacket(1, 0), 1)
	}
}

func TestFetchUpdatedResult(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		req := readFrameFromConn(t, server)
		assert.Equal(t, byte(comQuery), req.payload[0])
		assert.Equal(t, "UPDATE t SET x=1", string(req.payload[1:]))
		writeFrameToConn(t, server, okPacket(3, 0), 1)
	}()

	res, err := s.Fetch("UPDATE t SET x=1")
	<-done
	assert.NoError(t, err)
	assert.Equal(t, ResultUpdated, res.Tag)
	assert.Equal(t, uint64(3), res.AffectedRows)
}

func TestFetchErrorResult(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		readFrameFromConn(t, server)
		writeFrameToConn(t, server, errPacketV41(1146, "42S02", "Table 't' doesn't exist"), 1)
	}()

	res, err := s.Fetch("SELECT * FROM t")
	<-done
	assert.NoError(t, err)
	assert.Equal(t, ResultError, res.Tag)
	assert.Equal(t, uint16(1146), res.Err.Code)
	assert.Equal(t, "42S02", res.Err.SQLState)
}

func TestFetchDataResult(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		readFrameFromConn(t, server)

		// field count = 1
		writeFrameToConn(t, server, writeLCB(1), 1)

		// one V41 field packet: id BIGINT
		var field []byte
		field = append(field, writeLCString([]byte("def"))...)
		field = append(field, writeLCString([]byte("mydb"))...)
		field = append(field, writeLCString([]byte("t"))...)
		field = append(field, writeLCString([]byte("t"))...)
		field = append(field, writeLCString([]byte("id"))...)
		field = append(field, writeLCString([]byte("id"))...)
		trailer := make([]byte, 1+2+4+1+2+1)
		trailer[1+2+4] = byte(FieldTypeLongLong)
		field = append(field, trailer...)
		writeFrameToConn(t, server, field, 2)

		// EOF after fields
		writeFrameToConn(t, server, []byte{0xFE, 0, 0}, 3)

		// one row: "42"
		writeFrameToConn(t, server, writeLCString([]byte("42")), 4)

		// EOF after rows
		writeFrameToConn(t, server, []byte{0xFE, 0, 0}, 5)
	}()

	res, err := s.Fetch("SELECT id FROM t")
	<-done
	assert.NoError(t, err)
	assert.Equal(t, ResultData, res.Tag)
	assert.Len(t, res.Fields, 1)
	assert.Equal(t, "id", res.Fields[0].Field)
	assert.Len(t, res.Rows, 1)
	assert.Equal(t, int64(42), res.Rows[0][0].Int)
}

func TestFetchErrInPlaceOfEOFDuringRowStreaming(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		readFrameFromConn(t, server)

		// field count = 1
		writeFrameToConn(t, server, writeLCB(1), 1)

		var field []byte
		field = append(field, writeLCString([]byte("def"))...)
		field = append(field, writeLCString([]byte("mydb"))...)
		field = append(field, writeLCString([]byte("t"))...)
		field = append(field, writeLCString([]byte("t"))...)
		field = append(field, writeLCString([]byte("id"))...)
		field = append(field, writeLCString([]byte("id"))...)
		trailer := make([]byte, 1+2+4+1+2+1)
		trailer[1+2+4] = byte(FieldTypeLongLong)
		field = append(field, trailer...)
		writeFrameToConn(t, server, field, 2)

		// EOF after fields
		writeFrameToConn(t, server, []byte{0xFE, 0, 0}, 3)

		// one row
		writeFrameToConn(t, server, writeLCString([]byte("42")), 4)

		// ERR in place of EOF after rows (§8 boundary case)
		writeFrameToConn(t, server, errPacketV41(2013, "HY000", "Lost connection to server during query"), 5)
	}()

	res, err := s.Fetch("SELECT id FROM t")
	<-done
	assert.NoError(t, err)
	assert.Equal(t, ResultError, res.Tag)
	assert.Equal(t, uint16(2013), res.Err.Code)
	assert.Equal(t, "HY000", res.Err.SQLState)
}

func TestFetchErrInPlaceOfEOFDuringFieldStreaming(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		readFrameFromConn(t, server)

		// field count = 1
		writeFrameToConn(t, server, writeLCB(1), 1)

		// ERR in place of the expected field packet, before any EOF
		writeFrameToConn(t, server, errPacketV41(1030, "HY000", "Got error reading table"), 2)
	}()

	res, err := s.Fetch("SELECT id FROM t")
	<-done
	assert.NoError(t, err)
	assert.Equal(t, ResultError, res.Tag)
	assert.Equal(t, uint16(1030), res.Err.Code)
	assert.Equal(t, "HY000", res.Err.SQLState)
}

func TestFetchAllShortCircuitsOnError(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		readFrameFromConn(t, server)
		writeFrameToConn(t, server, errPacketV41(1064, "42000", "syntax error"), 1)
		// second query must never be sent
	}()

	res, err := s.FetchAll([]string{"BAD SQL", "SELECT 1"})
	<-done
	assert.NoError(t, err)
	assert.Equal(t, ResultError, res.Tag)
	assert.Equal(t, uint16(1064), res.Err.Code)
}

func TestReadRawSequenceMismatch(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		readFrameFromConn(t, server)
		writeFrameToConn(t, server, okPacket(0, 0), 7) // wrong sequence number
	}()

	_, err := s.Fetch("SELECT 1")
	<-done
	assert.Error(t, err)
}
