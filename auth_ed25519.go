// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"crypto/sha512"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

// ed25519Plugin implements MariaDB's client_ed25519 authentication:
// the password's SHA-512 digest seeds an Ed25519 keypair, which signs
// the server's seed (SPEC_FULL.md §4.3). Reached only via an
// auth-switch naming "client_ed25519", same as sha256_password.
type ed25519Plugin struct{}

func (ed25519Plugin) Name() string { return "client_ed25519" }

func (ed25519Plugin) Respond(seed []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, nil
	}

	h := sha512.Sum512([]byte(password))

	privScalar, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, errors.Wrap(ErrProtocolError, "clamping ed25519 private scalar")
	}
	pub := edwards25519.NewIdentityPoint().ScalarBaseMult(privScalar)

	prefix := h[32:64]
	rDigest := sha512.Sum512(append(append([]byte(nil), prefix...), seed...))
	r, err := edwards25519.NewScalar().SetUniformBytes(rDigest[:])
	if err != nil {
		return nil, errors.Wrap(ErrProtocolError, "reducing ed25519 nonce")
	}
	R := edwards25519.NewIdentityPoint().ScalarBaseMult(r)

	kDigest := sha512.Sum512(concat(R.Bytes(), pub.Bytes(), seed))
	k, err := edwards25519.NewScalar().SetUniformBytes(kDigest[:])
	if err != nil {
		return nil, errors.Wrap(ErrProtocolError, "reducing ed25519 challenge scalar")
	}

	s := edwards25519.NewScalar().Add(r, edwards25519.NewScalar().Multiply(k, privScalar))

	return append(append([]byte(nil), R.Bytes()...), s.Bytes()...), nil
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
