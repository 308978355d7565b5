//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package runner

import "errors"

var (
	// ErrEmptyRequest is returned when a session is created without a
	// content request.
	ErrEmptyRequest = errors.New("request must not be empty")
	// ErrNoPendingRun is returned when a stream connection arrives for a
	// session with no staged run.
	ErrNoPendingRun = errors.New("no pending run for session")
	// ErrSessionBusy is returned when a stream connection arrives while the
	// session already has a cycle in flight.
	ErrSessionBusy = errors.New("session already streaming")
)
