//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package runner

import (
	"sync"
	"time"
)

// RunKind distinguishes a first cycle from a continuation.
type RunKind string

const (
	// RunKindStart is the first cycle of a freshly created session.
	RunKindStart RunKind = "start"
	// RunKindResume continues a paused session.
	RunKindResume RunKind = "resume"
)

// PendingRun is a staged cycle waiting for its stream connection. Staging
// and streaming are separate HTTP requests, so the run parameters are parked
// here in between.
type PendingRun struct {
	SessionID string
	Kind      RunKind
	CreatedAt time.Time
}

const (
	defaultPendingTTL   = 5 * time.Minute
	defaultPendingSweep = time.Minute
)

// PendingOption configures a pending-run registry.
type PendingOption func(*pendingOptions)

type pendingOptions struct {
	ttl   time.Duration
	sweep time.Duration
}

// WithPendingTTL sets how long a staged run waits for its stream connection.
func WithPendingTTL(ttl time.Duration) PendingOption {
	return func(o *pendingOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithPendingSweepInterval sets how often expired staged runs are evicted.
func WithPendingSweepInterval(interval time.Duration) PendingOption {
	return func(o *pendingOptions) {
		if interval > 0 {
			o.sweep = interval
		}
	}
}

type pendingEntry struct {
	run       *PendingRun
	expiresAt time.Time
}

// pendingRegistry keys staged runs by session. A session holds at most one
// staged run; staging again replaces the previous one.
type pendingRegistry struct {
	mu       sync.Mutex
	entries  map[string]*pendingEntry
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func newPendingRegistry(opts ...PendingOption) *pendingRegistry {
	options := pendingOptions{
		ttl:   defaultPendingTTL,
		sweep: defaultPendingSweep,
	}
	for _, opt := range opts {
		opt(&options)
	}
	r := &pendingRegistry{
		entries: make(map[string]*pendingEntry),
		ttl:     options.ttl,
		stop:    make(chan struct{}),
	}
	go r.janitor(options.sweep)
	return r
}

// stage parks a run for the session, replacing any previous staged run.
func (r *pendingRegistry) stage(run *PendingRun) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[run.SessionID] = &pendingEntry{
		run:       run,
		expiresAt: time.Now().Add(r.ttl),
	}
}

// take consumes the staged run for the session, if one exists and has not
// expired. Each staged run is consumed at most once.
func (r *pendingRegistry) take(sessionID string) (*PendingRun, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[sessionID]
	if !ok {
		return nil, false
	}
	delete(r.entries, sessionID)
	if time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.run, true
}

func (r *pendingRegistry) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			r.mu.Lock()
			for id, entry := range r.entries {
				if now.After(entry.expiresAt) {
					delete(r.entries, id)
				}
			}
			r.mu.Unlock()
		case <-r.stop:
			return
		}
	}
}

func (r *pendingRegistry) close() {
	r.stopOnce.Do(func() { close(r.stop) })
}
