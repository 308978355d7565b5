//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/contentflow/contentflow/event"
	"github.com/contentflow/contentflow/log"
	"github.com/contentflow/contentflow/telemetry/trace"
)

// Executor advances a session through the graph, one node at a time, until it
// reaches a declared interrupt point or the End node. A checkpoint is written
// after every node execution, so cancellation between nodes always leaves the
// last complete checkpoint behind.
type Executor struct {
	graph             *Graph
	saver             CheckpointSaver
	channelBufferSize int
	maxSteps          int
	outputKey         string
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*ExecutorOptions)

// ExecutorOptions contains configuration options for creating an Executor.
type ExecutorOptions struct {
	// ChannelBufferSize is the buffer size for event channels (default: 256).
	ChannelBufferSize int
	// MaxSteps is the maximum number of node executions per advance cycle.
	MaxSteps int
	// OutputKey is the state key quoted on node events as the node's text
	// output.
	OutputKey string
}

// WithChannelBufferSize sets the buffer size for event channels.
func WithChannelBufferSize(size int) ExecutorOption {
	return func(opts *ExecutorOptions) {
		opts.ChannelBufferSize = size
	}
}

// WithMaxSteps sets the maximum number of node executions per cycle.
func WithMaxSteps(maxSteps int) ExecutorOption {
	return func(opts *ExecutorOptions) {
		opts.MaxSteps = maxSteps
	}
}

// WithOutputKey sets the state key used as the node text output.
func WithOutputKey(key string) ExecutorOption {
	return func(opts *ExecutorOptions) {
		opts.OutputKey = key
	}
}

// NewExecutor creates a new graph executor backed by the given saver.
func NewExecutor(graph *Graph, saver CheckpointSaver, opts ...ExecutorOption) (*Executor, error) {
	if err := graph.validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	if saver == nil {
		return nil, fmt.Errorf("checkpoint saver is required")
	}
	options := ExecutorOptions{
		ChannelBufferSize: 256,
		MaxSteps:          100,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Executor{
		graph:             graph,
		saver:             saver,
		channelBufferSize: options.ChannelBufferSize,
		maxSteps:          options.MaxSteps,
		outputKey:         options.OutputKey,
	}, nil
}

// Create seeds a new session checkpoint at the graph entry point.
func (e *Executor) Create(ctx context.Context, sessionID string, seed State) error {
	if err := e.graph.Schema().Validate(seed); err != nil {
		return fmt.Errorf("invalid seed state: %w", err)
	}
	now := time.Now()
	return e.saver.Put(ctx, &Checkpoint{
		SessionID: sessionID,
		State:     seed.Clone(),
		NextNode:  e.graph.EntryPoint(),
		Status:    CheckpointReady,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Apply merges a resume update into a paused session's checkpoint. The
// session must currently be paused at an interrupt point; resuming a ready or
// finished session is an error and leaves the checkpoint unchanged.
func (e *Executor) Apply(ctx context.Context, sessionID string, update State) error {
	cp, err := e.saver.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("read checkpoint: %w", err)
	}
	if cp == nil {
		return ErrCheckpointNotFound
	}
	switch cp.Status {
	case CheckpointPaused:
	case CheckpointFinished:
		return ErrSessionFinished
	default:
		return ErrNotPaused
	}
	cp.State = e.graph.Schema().ApplyUpdate(cp.State, update)
	cp.UpdatedAt = time.Now()
	return e.saver.Put(ctx, cp)
}

// Status returns the checkpoint status and pending node for a session.
func (e *Executor) Status(ctx context.Context, sessionID string) (CheckpointStatus, string, error) {
	cp, err := e.saver.Get(ctx, sessionID)
	if err != nil {
		return "", "", fmt.Errorf("read checkpoint: %w", err)
	}
	if cp == nil {
		return "", "", ErrCheckpointNotFound
	}
	return cp.Status, cp.NextNode, nil
}

// Run performs one advance-until-pause-or-finish cycle for the session,
// starting from its latest checkpoint. Node outputs are emitted on the
// returned channel in execution order; an engine fault is reported as a
// terminal error event. The channel is closed when the cycle ends.
func (e *Executor) Run(ctx context.Context, sessionID string) (<-chan *event.Event, error) {
	cp, err := e.saver.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	if cp == nil {
		return nil, ErrCheckpointNotFound
	}
	if cp.Status == CheckpointFinished {
		return nil, ErrSessionFinished
	}
	eventChan := make(chan *event.Event, e.channelBufferSize)
	go func() {
		defer close(eventChan)
		if err := e.runCycle(ctx, cp, eventChan); err != nil {
			log.Errorf("session %s: cycle aborted: %v", sessionID, err)
			select {
			case eventChan <- event.NewError(sessionID, err.Error()):
			case <-ctx.Done():
			}
		}
	}()
	return eventChan, nil
}

// runCycle executes nodes from the checkpoint position until an interrupt
// point, the End node, or a fault.
func (e *Executor) runCycle(ctx context.Context, cp *Checkpoint, eventChan chan<- *event.Event) error {
	ctx, span := trace.Tracer.Start(ctx, "workflow_cycle")
	defer span.End()
	span.SetAttributes(attribute.String("contentflow.session_id", cp.SessionID))

	state := cp.State.Clone()
	current := cp.NextNode
	// A paused checkpoint means the pending interrupt node has been resumed
	// and executes exactly once without pausing again.
	skipInterrupt := cp.Status == CheckpointPaused
	for steps := 0; ; steps++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if steps >= e.maxSteps {
			return fmt.Errorf("%s: maximum execution steps (%d) exceeded", ErrorTypeGraphExecution, e.maxSteps)
		}
		if current == End {
			return e.saveCheckpoint(ctx, cp, state, End, CheckpointFinished)
		}
		if e.graph.InterruptsBefore(current) && !skipInterrupt {
			return e.saveCheckpoint(ctx, cp, state, current, CheckpointPaused)
		}
		skipInterrupt = false

		delta, err := e.executeNode(ctx, cp.SessionID, current, state)
		if err != nil {
			return err
		}
		if delta != nil {
			state = e.graph.Schema().ApplyUpdate(state, delta)
			e.emitNodeOutput(ctx, cp.SessionID, current, delta, eventChan)
		}
		next, err := e.selectNextNode(ctx, state, current)
		if err != nil {
			return err
		}
		cp.Step++
		if err := e.saveCheckpoint(ctx, cp, state, next, CheckpointReady); err != nil {
			return err
		}
		current = next
	}
}

// executeNode runs a single node function against the current state.
func (e *Executor) executeNode(ctx context.Context, sessionID, nodeID string, state State) (State, error) {
	node, exists := e.graph.Node(nodeID)
	if !exists {
		return nil, fmt.Errorf("%s: node %s not found", ErrorTypeInvalidNode, nodeID)
	}
	ctx, span := trace.Tracer.Start(ctx, fmt.Sprintf("execute_node %s", nodeID))
	defer span.End()
	span.SetAttributes(
		attribute.String("contentflow.node_id", nodeID),
		attribute.String("contentflow.session_id", sessionID),
	)
	if node.Function == nil {
		return nil, nil
	}
	log.Debugf("session %s: executing node %s", sessionID, nodeID)
	delta, err := node.Function(ctx, state)
	if err != nil {
		span.SetAttributes(attribute.String("contentflow.error", err.Error()))
		return nil, fmt.Errorf("%s: node %s failed: %w", ErrorTypeGraphExecution, nodeID, err)
	}
	return delta, nil
}

// emitNodeOutput publishes the node's text output as an event, if any.
func (e *Executor) emitNodeOutput(
	ctx context.Context,
	sessionID, nodeID string,
	delta State,
	eventChan chan<- *event.Event,
) {
	if e.outputKey == "" {
		return
	}
	output, ok := delta[e.outputKey].(string)
	if !ok || output == "" {
		return
	}
	select {
	case eventChan <- event.New(sessionID, event.TypeToken,
		event.WithNode(nodeID), event.WithContent(output)):
	case <-ctx.Done():
	}
}

// selectNextNode selects the next node based on edges and conditional logic.
func (e *Executor) selectNextNode(ctx context.Context, state State, currentNodeID string) (string, error) {
	if condEdge, exists := e.graph.ConditionalEdge(currentNodeID); exists {
		conditionResult, err := condEdge.Condition(ctx, state)
		if err != nil {
			return "", fmt.Errorf("%s: conditional edge evaluation failed: %w", ErrorTypeConditionalEdge, err)
		}
		if nextNode, exists := condEdge.PathMap[conditionResult]; exists {
			return nextNode, nil
		}
		return "", fmt.Errorf("%s: condition result %s not found in path map", ErrorTypeConditionalEdge, conditionResult)
	}
	edges := e.graph.Edges(currentNodeID)
	if len(edges) == 0 {
		// No outgoing edges, assume we should go to End.
		return End, nil
	}
	return edges[0].To, nil
}

// saveCheckpoint records the session state and engine position.
func (e *Executor) saveCheckpoint(
	ctx context.Context,
	cp *Checkpoint,
	state State,
	next string,
	status CheckpointStatus,
) error {
	cp.State = state
	cp.NextNode = next
	cp.Status = status
	cp.UpdatedAt = time.Now()
	if err := e.saver.Put(ctx, cp); err != nil {
		return fmt.Errorf("%s: write checkpoint: %w", ErrorTypeCheckpoint, err)
	}
	return nil
}
