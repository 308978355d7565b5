//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"context"
	"time"
)

// CheckpointStatus is the engine position recorded in a checkpoint.
type CheckpointStatus string

const (
	// CheckpointReady means the engine is ready to advance to NextNode.
	CheckpointReady CheckpointStatus = "ready"
	// CheckpointPaused means the engine stopped at the interrupt point
	// NextNode and awaits an external resume.
	CheckpointPaused CheckpointStatus = "paused"
	// CheckpointFinished means the session reached the End node and accepts
	// no further resumes.
	CheckpointFinished CheckpointStatus = "finished"
)

// Checkpoint is the durable snapshot of one session: its state plus the
// engine's current position. A resume immediately following a pause must
// observe the paused checkpoint.
type Checkpoint struct {
	// SessionID identifies the session the checkpoint belongs to.
	SessionID string `json:"session_id"`
	// State is the workflow state at this checkpoint.
	State State `json:"state"`
	// NextNode is the node the engine will execute next.
	NextNode string `json:"next_node"`
	// Status is the engine position.
	Status CheckpointStatus `json:"status"`
	// Step counts node executions over the lifetime of the session.
	Step int `json:"step"`
	// CreatedAt is when the session was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the checkpoint was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// Copy creates a snapshot-isolated copy of the checkpoint.
func (c *Checkpoint) Copy() *Checkpoint {
	if c == nil {
		return nil
	}
	clone := *c
	clone.State = c.State.Clone()
	return &clone
}

// CheckpointSaver stores the latest checkpoint per session. Implementations
// must apply each write atomically relative to the session's prior checkpoint
// and must serialize operations per session id while allowing unrelated
// sessions to proceed concurrently.
type CheckpointSaver interface {
	// Get returns the latest checkpoint for the session, or nil if none
	// exists.
	Get(ctx context.Context, sessionID string) (*Checkpoint, error)
	// Put stores the checkpoint, replacing the session's prior one.
	Put(ctx context.Context, checkpoint *Checkpoint) error
	// Delete removes the session's checkpoint.
	Delete(ctx context.Context, sessionID string) error
	// Close releases resources held by the saver.
	Close() error
}
