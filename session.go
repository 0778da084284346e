// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/shibuuma/go4mysql/internal/config"
	applog "github.com/shibuuma/go4mysql/internal/log"
)

const (
	comQuit  = 0x01
	comQuery = 0x03
)

// Session is the request/response state machine described in
// SPEC_FULL.md §4.6: it owns the socket write side, the sequence
// counter, the dialect flag, and transaction state. All exported
// operations are serialized through mu, matching the single
// serialized request port of §5.
type Session struct {
	conn net.Conn
	recv *receiver

	seq     uint8
	dialect Dialect

	preparedNames map[string]struct{}
	txDepth       int

	authPlugin AuthPlugin
	authSeed   []byte

	log logrus.FieldLogger
	mu  sync.Mutex
}

// Open dials cfg's address, runs the handshake, issues USE <database>,
// and (if cfg.Encoding is set) SET NAMES, per spec.md §3 "Lifecycle"
// and §6 "Configuration".
func Open(cfg *config.Config) (*Session, error) {
	return open(cfg, applog.New())
}

// OpenDSN is a convenience wrapper parsing a DSN string before dialing.
func OpenDSN(dsn string) (*Session, error) {
	cfg, err := config.ParseDSN(dsn)
	if err != nil {
		return nil, wrapOp("open", err)
	}
	return Open(cfg)
}

// OpenFile loads connection parameters from an ini file and merges
// explicit overrides on top (SPEC_FULL.md §6 — explicit args win).
func OpenFile(path string, overrides *config.Config) (*Session, error) {
	fileCfg, err := config.LoadFile(path)
	if err != nil {
		return nil, wrapOp("open", err)
	}
	cfg := fileCfg
	if overrides != nil {
		cfg = config.Merge(fileCfg, overrides)
	}
	return Open(cfg)
}

func open(cfg *config.Config, logger logrus.FieldLogger) (*Session, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(ErrConnectFailed, "dialing %s: %v", addr, err)
	}

	s := &Session{
		conn:          conn,
		preparedNames: make(map[string]struct{}),
		log:           logger,
	}
	s.recv = newReceiver(conn, logger)
	go s.recv.run()

	if err := s.authenticate(cfg.User, cfg.Password, cfg.Database); err != nil {
		conn.Close()
		return nil, wrapOp("login", err)
	}
	s.log.WithField("dialect", s.dialect).Debug("mysql: authenticated")

	if cfg.Database != "" {
		res, err := s.fetch("USE " + cfg.Database)
		if err != nil || res.Tag == ResultError {
			conn.Close()
			return nil, errors.Wrap(ErrFailedChangingDatabase, describeFailure(res, err))
		}
	}

	if cfg.Encoding != "" {
		res, err := s.fetch(fmt.Sprintf("SET NAMES '%s'", cfg.Encoding))
		if err != nil || res.Tag == ResultError {
			conn.Close()
			return nil, wrapOp("set names", describeFailureErr(res, err))
		}
	}

	return s, nil
}

func describeFailure(res MySQLResult, err error) string {
	if err != nil {
		return err.Error()
	}
	if res.Err != nil {
		return res.Err.Error()
	}
	return "unknown failure"
}

func describeFailureErr(res MySQLResult, err error) error {
	if err != nil {
		return err
	}
	if res.Err != nil {
		return res.Err
	}
	return errors.New("unknown failure")
}

// Close sends COM_QUIT and closes the socket.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetSeq()
	_ = s.writeRaw([]byte{comQuit})
	return s.conn.Close()
}

// Fetch issues a single text query and returns its result (§4.6.1).
func (s *Session) Fetch(query string) (MySQLResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetch(query)
}

// FetchAll issues queries sequentially. If any query returns an Error
// result, the remaining queries are skipped and that error result is
// returned; otherwise the final query's result is returned (§4.6.2).
func (s *Session) FetchAll(queries []string) (MySQLResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result MySQLResult
	for _, q := range queries {
		res, err := s.fetch(q)
		if err != nil {
			return MySQLResult{}, err
		}
		result = res
		if result.Tag == ResultError {
			return result, nil
		}
	}
	return result, nil
}

// --- low-level sequence discipline (§4.6.5) ---

func (s *Session) resetSeq() {
	s.seq = 0
}

func (s *Session) writeRaw(payload []byte) error {
	f, err := encodeFrame(payload, s.seq)
	if err != nil {
		return err
	}
	if _, err := s.conn.Write(f); err != nil {
		return errors.Wrap(ErrSocketClosed, err.Error())
	}
	s.seq++
	return nil
}

func (s *Session) readRaw() (frame, error) {
	msg, ok := <-s.recv.out
	if !ok || msg.closed {
		if msg.reason != nil {
			return frame{}, errors.Wrap(ErrSocketClosed, msg.reason.Error())
		}
		return frame{}, errors.Wrap(ErrSocketClosed, "connection closed")
	}
	if msg.frame.seq != s.seq {
		return frame{}, errors.Wrapf(ErrProtocolError,
			"sequence mismatch: expected %d got %d", s.seq, msg.frame.seq)
	}
	s.seq++
	return msg.frame, nil
}

// --- query execution (§4.6.1) ---

func (s *Session) fetch(query string) (MySQLResult, error) {
	s.log.WithField("len", len(query)).Debug("mysql: dispatch COM_QUERY")

	s.resetSeq()
	payload := make([]byte, 0, 1+len(query))
	payload = append(payload, comQuery)
	payload = append(payload, query...)

	if err := s.writeRaw(payload); err != nil {
		return MySQLResult{}, wrapOp("fetch", err)
	}

	res, err := s.readQueryResponse()
	if err != nil {
		return MySQLResult{}, wrapOp("fetch", err)
	}
	if res.Tag == ResultError {
		s.log.WithField("code", res.Err.Code).Warn("mysql: server error")
	}
	return res, nil
}

func (s *Session) readQueryResponse() (MySQLResult, error) {
	data, err := s.readRaw()
	if err != nil {
		return MySQLResult{}, err
	}

	switch {
	case isOKPacket(data.payload):
		affected, insertID, err := decodeOKPacket(data.payload)
		if err != nil {
			return MySQLResult{}, err
		}
		return MySQLResult{Tag: ResultUpdated, AffectedRows: affected, InsertID: insertID}, nil

	case isErrPacket(data.payload):
		return MySQLResult{Tag: ResultError, Err: s.decodeErrPacket(data.payload)}, nil

	default:
		fieldCount, _, _, err := readLCB(data.payload)
		if err != nil {
			return MySQLResult{}, errors.Wrap(ErrProtocolError, "decoding result header")
		}
		if fieldCount == 0 {
			return MySQLResult{Tag: ResultUpdated}, nil
		}

		fields, srvErr, err := s.readFields(int(fieldCount))
		if err != nil {
			return MySQLResult{}, err
		}
		if srvErr != nil {
			return MySQLResult{Tag: ResultError, Err: srvErr}, nil
		}
		rows, srvErr, err := s.readRows(fields)
		if err != nil {
			return MySQLResult{}, err
		}
		if srvErr != nil {
			return MySQLResult{Tag: ResultError, Err: srvErr}, nil
		}
		return MySQLResult{Tag: ResultData, Fields: fields, Rows: rows}, nil
	}
}

func decodeOKPacket(data []byte) (affected, insertID uint64, err error) {
	affected, _, n, err := readLCB(data[1:])
	if err != nil {
		return 0, 0, errors.Wrap(ErrProtocolError, "decoding OK packet affected_rows")
	}
	insertID, _, _, err = readLCB(data[1+n:])
	if err != nil {
		return 0, 0, errors.Wrap(ErrProtocolError, "decoding OK packet insert_id")
	}
	return affected, insertID, nil
}

// decodeErrPacket decodes an ERR packet per the session's negotiated
// dialect (§6 "ERR packet").
func (s *Session) decodeErrPacket(data []byte) *ServerError {
	if len(data) < 3 {
		return &ServerError{Message: "malformed ERR packet"}
	}
	code := binary.LittleEndian.Uint16(data[1:3])

	if s.dialect == V41 && len(data) >= 9 && data[3] == '#' {
		return &ServerError{
			Code:     code,
			SQLState: string(data[4:9]),
			Message:  string(data[9:]),
		}
	}

	msg := ""
	if len(data) > 3 {
		msg = string(data[3:])
	}
	return &ServerError{Code: code, Message: msg}
}

// readFields reads field packets until EOF. An ERR packet in place of
// EOF (§8 boundary case) is returned as a *ServerError, not a generic
// protocol error, so the caller can surface it as a ResultError.
func (s *Session) readFields(count int) ([]ColumnMeta, *ServerError, error) {
	fields := make([]ColumnMeta, 0, count)
	for {
		data, err := s.readRaw()
		if err != nil {
			return nil, nil, err
		}

		if isEOFPacket(data.payload) {
			if len(fields) != count {
				return nil, nil, errors.Wrapf(ErrProtocolError,
					"field count mismatch: want %d got %d", count, len(fields))
			}
			return fields, nil, nil
		}
		if isErrPacket(data.payload) {
			return nil, s.decodeErrPacket(data.payload), nil
		}

		var cm ColumnMeta
		if s.dialect == V41 {
			cm, err = decodeFieldV41(data.payload)
		} else {
			cm, err = decodeFieldV40(data.payload)
		}
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, cm)
	}
}

// readRows reads row packets until EOF. An ERR packet in place of EOF
// mid-row-stream (§8 boundary case) is returned as a *ServerError, not
// a generic protocol error, so the caller can surface it as a
// ResultError.
func (s *Session) readRows(fields []ColumnMeta) ([][]Value, *ServerError, error) {
	var rows [][]Value
	for {
		data, err := s.readRaw()
		if err != nil {
			return nil, nil, err
		}

		if isEOFPacket(data.payload) {
			return rows, nil, nil
		}
		if isErrPacket(data.payload) {
			return nil, s.decodeErrPacket(data.payload), nil
		}

		row, err := decodeRow(data.payload, fields)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}
}

func decodeRow(data []byte, fields []ColumnMeta) ([]Value, error) {
	values := make([]Value, len(fields))
	pos := 0
	for i, f := range fields {
		raw, isNull, n, err := readLCString(data[pos:])
		if err != nil {
			return nil, errors.Wrap(ErrProtocolError, "decoding row value")
		}
		pos += n

		if isNull {
			values[i] = NullValue
			continue
		}
		v, err := decodeValue(raw, f.Type)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
