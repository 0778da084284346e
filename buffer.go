// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "io"

// defaultBufSize is the initial size of a connection's read buffer.
const defaultBufSize = 4096

// buffer is a read buffer similar to bufio.Reader, optimized for the
// receiver's read loop: it grows to fit the largest frame seen and
// never shrinks back down.
type buffer struct {
	buf    []byte
	rd     io.Reader
	idx    int
	length int
}

func newBuffer(rd io.Reader) *buffer {
	return &buffer{
		buf: make([]byte, defaultBufSize),
		rd:  rd,
	}
}

// fill reads into the buffer until at least need bytes are available.
func (b *buffer) fill(need int) error {
	if b.length > 0 && b.idx > 0 {
		copy(b.buf[0:b.length], b.buf[b.idx:b.idx+b.length])
	}
	if need > len(b.buf) {
		newBuf := make([]byte, need)
		copy(newBuf, b.buf[:b.length])
		b.buf = newBuf
	}
	b.idx = 0

	for b.length < need {
		n, err := b.rd.Read(b.buf[b.length:])
		b.length += n
		if err != nil {
			return err
		}
	}
	return nil
}

// readNext returns the next need bytes from the buffer. The returned
// slice is only valid until the next call to readNext.
func (b *buffer) readNext(need int) ([]byte, error) {
	if b.length < need {
		if err := b.fill(need); err != nil {
			return nil, err
		}
	}
	p := b.buf[b.idx : b.idx+need]
	b.idx += need
	b.length -= need
	return p, nil
}
