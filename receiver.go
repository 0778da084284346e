// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// recvMsg is what the receiver goroutine sends to the session: either
// a decoded frame, or — exactly once, as the last message — a close
// signal (§4.2 "Receiver").
type recvMsg struct {
	frame  frame
	closed bool
	reason error
}

// receiver owns the socket's read side exclusively. It performs no
// interpretation of payloads beyond framing; the session dispatches on
// frame contents.
type receiver struct {
	buf *buffer
	out chan recvMsg
	log logrus.FieldLogger
}

func newReceiver(rd io.Reader, log logrus.FieldLogger) *receiver {
	return &receiver{
		buf: newBuffer(rd),
		out: make(chan recvMsg, 1),
		log: log,
	}
}

// run is the read loop. It blocks on socket reads only, and delivers
// frames to out in the order they arrived on the wire (§4.2 "Ordering
// guarantee"). It must run in its own goroutine.
func (r *receiver) run() {
	for {
		f, err := r.readFrame()
		if err != nil {
			r.log.WithError(err).Debug("mysql: receiver exiting")
			r.out <- recvMsg{closed: true, reason: err}
			close(r.out)
			return
		}
		r.out <- recvMsg{frame: f}
	}
}

func (r *receiver) readFrame() (frame, error) {
	header, err := r.buf.readNext(4)
	if err != nil {
		if err == io.EOF {
			return frame{}, errors.Wrap(ErrSocketClosed, "reading packet header")
		}
		return frame{}, errors.Wrap(ErrSocketClosed, err.Error())
	}

	payloadLen, seq := decodeHeader(header)
	if payloadLen == 0 {
		return frame{payload: nil, seq: seq}, nil
	}

	payload, err := r.buf.readNext(payloadLen)
	if err != nil {
		return frame{}, errors.Wrap(ErrSocketClosed, "reading packet payload")
	}

	// Copy out of the shared buffer: readNext's slice is only valid
	// until the next call, but the session may hold onto this frame
	// across several dispatch steps.
	owned := make([]byte, len(payload))
	copy(owned, payload)
	return frame{payload: owned, seq: seq}, nil
}
