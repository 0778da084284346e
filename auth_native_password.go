// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "crypto/sha1"

// nativePasswordPlugin implements the 4.1+ (SECURE_CONNECTION) scheme:
// SHA1(password) XOR SHA1(salt1||salt2||SHA1(SHA1(password))) (§4.3
// "new" protocol).
type nativePasswordPlugin struct{}

func (nativePasswordPlugin) Name() string { return "mysql_native_password" }

func (nativePasswordPlugin) Respond(seed []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, nil
	}
	return scrambleNativePassword(seed, password), nil
}

func scrambleNativePassword(seed []byte, password string) []byte {
	h := sha1.New()
	h.Write([]byte(password))
	stage1 := h.Sum(nil)

	h.Reset()
	h.Write(stage1)
	stage2 := h.Sum(nil)

	h.Reset()
	h.Write(seed)
	h.Write(stage2)
	scramble := h.Sum(nil)

	for i := range scramble {
		scramble[i] ^= stage1[i]
	}
	return scramble
}
