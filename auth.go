// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Capability flags relevant to authentication (§4.3).
const (
	capLongPassword     uint16 = 0x0001
	capConnectWithDB    uint16 = 0x0008
	capSecureConnection uint16 = 0x8000
)

const minProtocolVersion = 10

// greeting holds the parsed Handshake Initialization Packet (§6 "Greeting").
type greeting struct {
	protocolVersion byte
	serverVersion   string
	threadID        uint32
	salt1           []byte
	salt2           []byte
	caps            uint16
	serverLang      byte
}

// parseGreeting decodes the server's seq=0 greeting packet.
func parseGreeting(data []byte) (*greeting, error) {
	if len(data) < 1 || data[0] < minProtocolVersion {
		return nil, errors.Wrapf(ErrLoginFailed, "unsupported protocol version %d", data[0])
	}

	g := &greeting{protocolVersion: data[0]}

	versionEnd := bytes.IndexByte(data[1:], 0x00)
	if versionEnd < 0 {
		return nil, errors.Wrap(ErrProtocolError, "malformed greeting: no version terminator")
	}
	pos := 1 + versionEnd + 1
	g.serverVersion = string(data[1 : 1+versionEnd])

	if len(data) < pos+4+8+1+2 {
		return nil, errors.Wrap(ErrProtocolError, "malformed greeting: too short")
	}
	g.threadID = binary.LittleEndian.Uint32(data[pos : pos+4])
	pos += 4

	g.salt1 = append([]byte(nil), data[pos:pos+8]...)
	pos += 8 + 1 // skip salt1 + filler

	g.caps = binary.LittleEndian.Uint16(data[pos : pos+2])
	pos += 2

	if len(data) <= pos {
		// Pre-4.1 servers may stop here.
		return g, nil
	}

	g.serverLang = data[pos]
	// server_status:2, caps-upper:2, auth-plugin-data-len:1, reserved:10
	pos += 1 + 2 + 2 + 1 + 10

	if pos < len(data)-1 {
		salt2End := len(data) - 1
		g.salt2 = append([]byte(nil), data[pos:salt2End]...)
	}

	return g, nil
}

// buildAuthResponse builds the Client Authentication Packet payload
// for the initial auth response (§4.3 "old" or "new" scheme selected
// from caps).
func buildAuthResponse(g *greeting, user, password, database string) ([]byte, error) {
	var plugin AuthPlugin
	var seed []byte
	if g.caps&capSecureConnection != 0 {
		plugin, _ = lookupAuthPlugin("mysql_native_password")
		seed = append(append([]byte(nil), g.salt1...), g.salt2...)
	} else {
		plugin, _ = lookupAuthPlugin("mysql_old_password")
		seed = g.salt1
	}

	scramble, err := plugin.Respond(seed, password)
	if err != nil {
		return nil, wrapOp("auth: compute scramble", err)
	}

	clientFlags := uint32(capLongPassword)
	if g.caps&capSecureConnection != 0 {
		clientFlags |= uint32(capSecureConnection)
	}
	if database != "" {
		clientFlags |= uint32(capConnectWithDB)
	}

	buf := new(bytes.Buffer)
	writeUint32(buf, clientFlags)
	writeUint32(buf, maxPacketSize)
	buf.WriteByte(g.serverLang)
	buf.Write(make([]byte, 23))
	buf.WriteString(user)
	buf.WriteByte(0)
	buf.WriteByte(byte(len(scramble)))
	buf.Write(scramble)
	if database != "" {
		buf.WriteString(database)
		buf.WriteByte(0)
	}
	return buf.Bytes(), nil
}

func writeUint32(buf *bytes.Buffer, n uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], n)
	buf.Write(b[:])
}

const maxPacketSize = 1<<24 - 1

// authenticate drives the handshake: reads the greeting, sends the
// auth response, and follows any auth-switch rounds until a final
// OK/ERR arrives (§4.3 "Outcome").
func (s *Session) authenticate(user, password, database string) error {
	greetData, err := s.readRaw()
	if err != nil {
		return wrapOp("auth: read greeting", err)
	}

	g, err := parseGreeting(greetData.payload)
	if err != nil {
		return wrapOp("auth: parse greeting", err)
	}

	dialect, _ := dialectFromVersion(g.serverVersion)
	s.dialect = dialect

	resp, err := buildAuthResponse(g, user, password, database)
	if err != nil {
		return err
	}
	if err := s.writeRaw(resp); err != nil {
		return wrapOp("auth: write response", err)
	}

	return s.handleAuthResult(g, password)
}

// handleAuthResult reads server responses following the auth packet,
// following auth-switch requests until OK or ERR (§4.3).
func (s *Session) handleAuthResult(g *greeting, password string) error {
	data, err := s.readRaw()
	if err != nil {
		return wrapOp("auth: read result", err)
	}
	return s.processAuthResponse(data.payload, g, password)
}

func (s *Session) processAuthResponse(data []byte, g *greeting, password string) error {
	if len(data) == 0 {
		return errors.Wrap(ErrProtocolError, "empty auth response")
	}
	switch {
	case isOKPacket(data):
		return nil
	case isErrPacket(data):
		return errors.Wrap(ErrLoginFailed, s.decodeErrPacket(data).Error())
	case data[0] == iAuthMoreData:
		return s.handleAuthMoreData(data, password)
	case data[0] == lcb32OrEOF:
		return s.handleAuthSwitch(data, g, password)
	default:
		return errors.Wrapf(ErrProtocolError, "unrecognized auth response byte 0x%x", data[0])
	}
}

// iAuthMoreData marks a server packet that continues a multi-round
// plugin exchange (e.g. sha256_password sending its RSA public key)
// rather than concluding the handshake.
const iAuthMoreData = 0x01

// handleAuthSwitch processes an AuthSwitchRequest: the server names a
// plugin other than the one implied by the capability flags (§4.3
// plugin registry, SPEC_FULL.md §4.3).
func (s *Session) handleAuthSwitch(data []byte, g *greeting, password string) error {
	pluginName, seed := parseAuthSwitch(data, g.salt1)

	plugin, ok := lookupAuthPlugin(pluginName)
	if !ok {
		return errors.Wrapf(ErrLoginFailed, "unsupported auth plugin %q", pluginName)
	}
	s.authPlugin, s.authSeed = plugin, seed

	resp, err := plugin.Respond(seed, password)
	if err != nil {
		return wrapOp("auth: switch response", err)
	}
	if err := s.writeRaw(resp); err != nil {
		return wrapOp("auth: write switch response", err)
	}

	data, err = s.readRaw()
	if err != nil {
		return wrapOp("auth: read switch result", err)
	}
	return s.processAuthResponse(data.payload, g, password)
}

// handleAuthMoreData continues a key-exchange plugin's second round
// (SPEC_FULL.md §4.3: sha256_password requesting/sending its RSA key).
func (s *Session) handleAuthMoreData(data []byte, password string) error {
	kx, ok := s.authPlugin.(keyExchangePlugin)
	if !ok {
		return errors.Wrap(ErrProtocolError, "plugin does not support key exchange continuation")
	}

	resp, err := kx.ContinueWithKey(s.authSeed, password, data[1:])
	if err != nil {
		return wrapOp("auth: key exchange", err)
	}
	if err := s.writeRaw(resp); err != nil {
		return wrapOp("auth: write key exchange response", err)
	}

	next, err := s.readRaw()
	if err != nil {
		return wrapOp("auth: read key exchange result", err)
	}
	switch {
	case isOKPacket(next.payload):
		return nil
	case isErrPacket(next.payload):
		return errors.Wrap(ErrLoginFailed, s.decodeErrPacket(next.payload).Error())
	default:
		return errors.Wrap(ErrProtocolError, "unexpected packet after key exchange")
	}
}

// keyExchangePlugin is implemented by AuthPlugins that may need a
// second round after the server sends back key material (AuthMoreData).
type keyExchangePlugin interface {
	ContinueWithKey(seed []byte, password string, keyData []byte) ([]byte, error)
}

func parseAuthSwitch(data []byte, fallbackSeed []byte) (string, []byte) {
	if len(data) == 1 {
		return "mysql_old_password", fallbackSeed
	}
	end := bytes.IndexByte(data, 0x00)
	if end < 0 {
		return "", nil
	}
	name := string(data[1:end])
	seed := data[end+1:]
	if len(seed) > 0 && seed[len(seed)-1] == 0 {
		seed = seed[:len(seed)-1]
	}
	return name, append([]byte(nil), seed...)
}
