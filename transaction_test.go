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

func TestBeginCommit(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		runAlwaysOK(t, server, 2) // BEGIN, COMMIT
	}()

	assert.NoError(t, s.Begin())
	assert.Equal(t, 1, s.txDepth)
	assert.NoError(t, s.Commit())
	assert.Equal(t, 0, s.txDepth)
	<-done
}

func TestBeginRejectsNesting(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		runAlwaysOK(t, server, 1) // BEGIN only
	}()

	assert.NoError(t, s.Begin())
	err := s.Begin()
	assert.Error(t, err)
	<-done
}

func TestRollback(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		runAlwaysOK(t, server, 2) // BEGIN, ROLLBACK
	}()

	assert.NoError(t, s.Begin())
	res, err := s.Rollback()
	assert.NoError(t, err)
	assert.Equal(t, ResultUpdated, res.Tag)
	assert.Equal(t, 0, s.txDepth)
	<-done
}

func TestAtomicCommitsOnSuccess(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		runAlwaysOK(t, server, 2) // BEGIN, COMMIT
	}()

	result := s.Atomic(func() (interface{}, error) {
		return 42, nil
	})
	<-done
	assert.False(t, result.Aborted)
	assert.Equal(t, 42, result.Value)
}

func TestAtomicRollsBackOnActionError(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		runAlwaysOK(t, server, 2) // BEGIN, ROLLBACK
	}()

	cause := assert.AnError
	result := s.Atomic(func() (interface{}, error) {
		return nil, cause
	})
	<-done
	assert.True(t, result.Aborted)
	assert.Equal(t, cause, result.Cause)
	assert.NotNil(t, result.RollbackResult)
}

func TestAtomicRecoversPanicAndRollsBack(t *testing.T) {
	s, server := newTestSession(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		runAlwaysOK(t, server, 2) // BEGIN, ROLLBACK
	}()

	result := s.Atomic(func() (interface{}, error) {
		panic("boom")
	})
	<-done
	assert.True(t, result.Aborted)
	assert.Error(t, result.Cause)
	assert.Contains(t, result.Cause.Error(), "boom")
}
