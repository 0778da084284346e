// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

// oldPasswordPlugin implements the pre-4.1 scrambled-password scheme
// against salt1 alone (§4.3 "old" protocol).
//
// Reference: https://github.com/atcurtis/mariadb/blob/master/mysys/my_rnd.c
type oldPasswordPlugin struct{}

func (oldPasswordPlugin) Name() string { return "mysql_old_password" }

func (oldPasswordPlugin) Respond(seed []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, nil
	}
	scrambled := scrambleOldPassword(seed, password)
	return append(scrambled, 0), nil
}

const pwRandMax = 0x3FFFFFFF

// pwRand is the deterministic PRNG MySQL uses for the old password
// scramble, seeded from two hash halves.
type pwRand struct {
	seed1, seed2 uint32
}

func newPwRand(seed1, seed2 uint32) *pwRand {
	return &pwRand{seed1: seed1 % pwRandMax, seed2: seed2 % pwRandMax}
}

func (r *pwRand) nextByte() byte {
	r.seed1 = (r.seed1*3 + r.seed2) % pwRandMax
	r.seed2 = (r.seed1 + r.seed2 + 33) % pwRandMax
	return byte(uint64(r.seed1) * 31 / pwRandMax)
}

// pwHash generates the binary hash MySQL uses for pre-4.1 password
// scrambling, skipping spaces and tabs in the input.
func pwHash(s []byte) (result [2]uint32) {
	var add uint32 = 7
	result[0] = 1345345333
	result[1] = 0x12345671

	for _, c := range s {
		if c == ' ' || c == '\t' {
			continue
		}
		tmp := uint32(c)
		result[0] ^= (((result[0] & 63) + add) * tmp) + (result[0] << 8)
		result[1] += (result[1] << 8) ^ result[0]
		add += tmp
	}

	result[0] &= 0x7FFFFFFF
	result[1] &= 0x7FFFFFFF
	return
}

func scrambleOldPassword(seed []byte, password string) []byte {
	if len(seed) > 8 {
		seed = seed[:8]
	}

	hashPw := pwHash([]byte(password))
	hashSc := pwHash(seed)

	r := newPwRand(hashPw[0]^hashSc[0], hashPw[1]^hashSc[1])

	out := make([]byte, 8)
	for i := range out {
		out[i] = r.nextByte() + 64
	}

	mask := r.nextByte()
	for i := range out {
		out[i] ^= mask
	}
	return out
}
