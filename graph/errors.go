//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package graph

import "errors"

var (
	// ErrCheckpointNotFound is returned when no checkpoint exists for a
	// session id.
	ErrCheckpointNotFound = errors.New("checkpoint not found")
	// ErrNotPaused is returned when a resume targets a session that is not
	// paused at an interrupt point.
	ErrNotPaused = errors.New("session is not paused at an interrupt point")
	// ErrSessionFinished is returned when a session that reached the
	// terminal node is advanced or resumed again.
	ErrSessionFinished = errors.New("session is finished")
)
