//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

// Package runner drives workflow sessions end to end: it stages runs from
// the HTTP surface, executes one cycle per stream connection, and shapes the
// raw engine events into the public stream protocol.
package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/contentflow/contentflow/event"
	"github.com/contentflow/contentflow/graph"
	"github.com/contentflow/contentflow/log"
	"github.com/contentflow/contentflow/workflow"
)

// Option configures a Runner.
type Option func(*options)

type options struct {
	pending []PendingOption
}

// WithPendingOptions forwards options to the pending-run registry.
func WithPendingOptions(opts ...PendingOption) Option {
	return func(o *options) {
		o.pending = append(o.pending, opts...)
	}
}

// Runner owns the executor for one workflow graph and serializes stream
// cycles per session.
type Runner struct {
	executor   *graph.Executor
	pending    *pendingRegistry
	statuses   map[string]event.Status
	observable map[string]struct{}

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New builds a runner for the given workflow over the given checkpoint
// saver.
func New(w *workflow.Workflow, saver graph.CheckpointSaver, opts ...Option) (*Runner, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	g, err := w.Build()
	if err != nil {
		return nil, fmt.Errorf("build workflow graph: %w", err)
	}
	executor, err := graph.NewExecutor(g, saver,
		graph.WithOutputKey(workflow.StateKeyLastResponse))
	if err != nil {
		return nil, fmt.Errorf("create executor: %w", err)
	}
	return &Runner{
		executor:   executor,
		pending:    newPendingRegistry(o.pending...),
		statuses:   workflow.InterruptStatuses(),
		observable: workflow.ObservableNodes(),
		inflight:   make(map[string]struct{}),
	}, nil
}

// StageStart creates a new session for the request and stages its first
// cycle. The returned session ID identifies the session on every later call.
func (r *Runner) StageStart(ctx context.Context, request string) (string, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return "", ErrEmptyRequest
	}
	sessionID := uuid.New().String()
	if err := r.executor.Create(ctx, sessionID, workflow.NewSeedState(request)); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	r.pending.stage(&PendingRun{SessionID: sessionID, Kind: RunKindStart})
	log.Infof("session %s: staged start", sessionID)
	return sessionID, nil
}

// StageResume validates the resume action, merges it into the paused
// session's checkpoint, and stages the continuation cycle. An unknown action
// or a session that is not paused leaves the checkpoint unchanged.
func (r *Runner) StageResume(ctx context.Context, sessionID, actionLabel, comment string) error {
	action, err := workflow.ParseAction(actionLabel)
	if err != nil {
		return err
	}
	if err := r.executor.Apply(ctx, sessionID, workflow.NewResumeUpdate(action, comment)); err != nil {
		return err
	}
	r.pending.stage(&PendingRun{SessionID: sessionID, Kind: RunKindResume})
	log.Infof("session %s: staged resume %s", sessionID, action)
	return nil
}

// Status reports the session's current run status: pending before the next
// cycle has reached an interrupt point, a feedback status when it is paused
// at one, finished when it has terminated.
func (r *Runner) Status(ctx context.Context, sessionID string) (event.Status, error) {
	status, node, err := r.executor.Status(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return r.runStatus(status, node), nil
}

// Stream consumes the session's staged run and executes one cycle, shaping
// engine events into the stream protocol: a start or resume marker, token
// events from observable nodes, then exactly one status or error event.
func (r *Runner) Stream(ctx context.Context, sessionID string) (<-chan *event.Event, error) {
	if !r.acquire(sessionID) {
		return nil, ErrSessionBusy
	}
	run, ok := r.pending.take(sessionID)
	if !ok {
		r.release(sessionID)
		return nil, ErrNoPendingRun
	}
	source, err := r.executor.Run(ctx, sessionID)
	if err != nil {
		r.restageInterrupted(run)
		r.release(sessionID)
		return nil, err
	}
	out := make(chan *event.Event, cap(source)+2)
	go r.pump(ctx, run, source, out)
	return out, nil
}

// Close releases background resources.
func (r *Runner) Close() {
	r.pending.close()
}

// pump forwards engine events to the public stream, prefixed with the cycle
// marker and suffixed with the terminal status. A cycle that ends without
// reaching a paused or finished checkpoint is re-staged so the session can
// be retried from its last good checkpoint.
func (r *Runner) pump(ctx context.Context, run *PendingRun, source <-chan *event.Event, out chan<- *event.Event) {
	defer close(out)
	defer r.release(run.SessionID)
	defer r.restageInterrupted(run)

	marker := event.TypeStart
	if run.Kind == RunKindResume {
		marker = event.TypeResume
	}
	if !r.emit(ctx, out, event.New(run.SessionID, marker)) {
		r.drain(source)
		return
	}

	faulted := false
	for evt := range source {
		switch evt.Type {
		case event.TypeToken:
			if _, ok := r.observable[evt.Node]; !ok {
				continue
			}
		case event.TypeError:
			faulted = true
		}
		if !r.emit(ctx, out, evt) {
			r.drain(source)
			return
		}
	}
	if faulted {
		return
	}

	status, node, err := r.executor.Status(ctx, run.SessionID)
	if err != nil {
		r.emit(ctx, out, event.NewError(run.SessionID, fmt.Sprintf("read session status: %v", err)))
		return
	}
	r.emit(ctx, out, event.New(run.SessionID, event.TypeStatus,
		event.WithStatus(r.runStatus(status, node))))
}

func (r *Runner) emit(ctx context.Context, out chan<- *event.Event, evt *event.Event) bool {
	select {
	case out <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *Runner) drain(source <-chan *event.Event) {
	for range source {
	}
}

// restageInterrupted parks the run again when the cycle left the checkpoint
// at ready, which happens on caller disconnect or an engine fault between
// nodes. A completed cycle ends paused or finished and is not re-staged.
func (r *Runner) restageInterrupted(run *PendingRun) {
	status, _, err := r.executor.Status(context.Background(), run.SessionID)
	if err != nil || status != graph.CheckpointReady {
		return
	}
	r.pending.stage(&PendingRun{SessionID: run.SessionID, Kind: run.Kind})
	log.Infof("session %s: cycle interrupted, run re-staged", run.SessionID)
}

// runStatus maps the engine checkpoint position to the public run status.
func (r *Runner) runStatus(status graph.CheckpointStatus, node string) event.Status {
	switch status {
	case graph.CheckpointFinished:
		return event.StatusFinished
	case graph.CheckpointPaused:
		if s, ok := r.statuses[node]; ok {
			return s
		}
		return event.StatusContentFeedback
	default:
		// Ready between cycles: a staged or interrupted run has not reached
		// an interrupt point yet.
		return event.StatusPending
	}
}

func (r *Runner) acquire(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inflight[sessionID]; busy {
		return false
	}
	r.inflight[sessionID] = struct{}{}
	return true
}

func (r *Runner) release(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, sessionID)
}
