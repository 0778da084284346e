// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

// Package log provides the session's logging sink: a thin wrapper
// around logrus so the core protocol code depends on an interface,
// not a concrete logger.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logrus.FieldLogger writing to stderr with the text
// formatter, suitable as the default Session logger.
func New() logrus.FieldLogger {
	l := logrus.New()
	l.Out = os.Stderr
	l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	l.Level = logrus.WarnLevel
	return l
}

// Discard returns a logger that drops everything, for tests and
// callers that don't want connection lifecycle noise.
func Discard() logrus.FieldLogger {
	l := logrus.New()
	l.Out = discardWriter{}
	return l
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
