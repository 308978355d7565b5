//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

// Package event provides the event stream protocol emitted while a workflow
// session advances.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of a streamed event.
type Type string

const (
	// TypeStart marks the beginning of a cycle for a freshly created session.
	TypeStart Type = "start"
	// TypeResume marks the beginning of a cycle continuing a paused session.
	TypeResume Type = "resume"
	// TypeToken carries text produced by an observable workflow node.
	TypeToken Type = "token"
	// TypeStatus is the terminal event of a cycle and carries the run status.
	TypeStatus Type = "status"
	// TypeError replaces the status event when the engine faults.
	TypeError Type = "error"
)

// Status is the run status of a session: pending while a staged cycle has
// not run to a pause yet, a feedback status at an interrupt point, finished
// at the terminal node.
type Status string

const (
	// StatusPending means a cycle is staged or underway and the session has
	// not reached an interrupt point yet.
	StatusPending Status = "pending"
	// StatusIdeationFeedback means the session paused awaiting ideation review.
	StatusIdeationFeedback Status = "ideation_feedback"
	// StatusContentFeedback means the session paused awaiting content review.
	StatusContentFeedback Status = "content_feedback"
	// StatusFinished means the session reached the terminal node.
	StatusFinished Status = "finished"
)

// Event is a single entry in the ordered event sequence of one stream cycle.
type Event struct {
	// ID is the unique identifier of the event.
	ID string `json:"id"`
	// SessionID is the session the event belongs to.
	SessionID string `json:"session_id"`
	// Type is the kind of event.
	Type Type `json:"type"`
	// Node is the workflow node that produced a token event.
	Node string `json:"node,omitempty"`
	// Content is the text payload of a token event.
	Content string `json:"content,omitempty"`
	// Status is the terminal status carried by a status event.
	Status Status `json:"status,omitempty"`
	// Error is the fault description carried by an error event.
	Error string `json:"error,omitempty"`
	// Timestamp is when the event was emitted.
	Timestamp time.Time `json:"timestamp"`
}

// Option configures an Event.
type Option func(*Event)

// WithNode sets the node that produced the event.
func WithNode(node string) Option {
	return func(e *Event) { e.Node = node }
}

// WithContent sets the text payload of the event.
func WithContent(content string) Option {
	return func(e *Event) { e.Content = content }
}

// WithStatus sets the terminal status of the event.
func WithStatus(status Status) Option {
	return func(e *Event) { e.Status = status }
}

// New creates a new Event with generated ID and timestamp.
func New(sessionID string, typ Type, opts ...Option) *Event {
	e := &Event{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Type:      typ,
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewError creates an error event with the given fault description.
func NewError(sessionID, message string) *Event {
	return &Event{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Type:      TypeError,
		Error:     message,
		Timestamp: time.Now(),
	}
}
