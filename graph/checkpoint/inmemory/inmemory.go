//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory checkpoint saver with TTL-based
// eviction of abandoned sessions.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/contentflow/contentflow/graph"
)

const (
	// DefaultTTL is how long an untouched session survives before eviction.
	DefaultTTL = 24 * time.Hour
	// defaultSweepInterval is how often the janitor scans for stale entries.
	defaultSweepInterval = 5 * time.Minute
)

// Saver is an in-memory implementation of graph.CheckpointSaver. Entries are
// evicted after a TTL measured from their last write, so abandoned sessions
// do not accumulate without bound.
type Saver struct {
	mu      sync.RWMutex
	entries map[string]*entry

	ttl           time.Duration
	sweepInterval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

type entry struct {
	checkpoint *graph.Checkpoint
	expiresAt  time.Time
}

// Option configures the Saver.
type Option func(*Saver)

// WithTTL sets how long a session checkpoint survives after its last write.
// A non-positive TTL disables eviction.
func WithTTL(ttl time.Duration) Option {
	return func(s *Saver) { s.ttl = ttl }
}

// WithSweepInterval sets how often expired entries are collected.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Saver) { s.sweepInterval = interval }
}

// NewSaver creates a new in-memory checkpoint saver.
func NewSaver(opts ...Option) *Saver {
	s := &Saver{
		entries:       make(map[string]*entry),
		ttl:           DefaultTTL,
		sweepInterval: defaultSweepInterval,
		stop:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl > 0 {
		go s.janitor()
	}
	return s
}

// Get returns a snapshot-isolated copy of the session's latest checkpoint,
// or nil if none exists.
func (s *Saver) Get(ctx context.Context, sessionID string) (*graph.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[sessionID]
	if !ok {
		return nil, nil
	}
	if s.ttl > 0 && time.Now().After(e.expiresAt) {
		return nil, nil
	}
	return e.checkpoint.Copy(), nil
}

// Put stores a copy of the checkpoint, replacing the session's prior one and
// refreshing its TTL.
func (s *Saver) Put(ctx context.Context, checkpoint *graph.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[checkpoint.SessionID] = &entry{
		checkpoint: checkpoint.Copy(),
		expiresAt:  time.Now().Add(s.ttl),
	}
	return nil
}

// Delete removes the session's checkpoint.
func (s *Saver) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Close stops the eviction janitor.
func (s *Saver) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// janitor periodically removes expired entries.
func (s *Saver) janitor() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
