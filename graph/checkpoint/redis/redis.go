//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

// Package redis provides a Redis-backed checkpoint saver so sessions survive
// process restarts for the lifetime of the backing store.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/contentflow/contentflow/graph"
)

const defaultPrefix = "contentflow:checkpoint:"

// Saver implements graph.CheckpointSaver on top of Redis. State fields are
// decoded back into their typed representation through the graph schema.
type Saver struct {
	client *backend.Client
	schema *graph.StateSchema
	prefix string
	ttl    time.Duration
}

// Option configures the Saver.
type Option func(*Saver)

// WithTTL sets the expiration for session checkpoints. Zero means no
// expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Saver) { s.ttl = ttl }
}

// WithPrefix sets the key prefix for checkpoints.
func WithPrefix(prefix string) Option {
	return func(s *Saver) { s.prefix = prefix }
}

// New creates a Redis checkpoint saver connecting to the given address.
func New(address, password string, db int, schema *graph.StateSchema, opts ...Option) *Saver {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, schema, opts...)
}

// NewFromClient creates a Redis checkpoint saver from an existing client.
func NewFromClient(client *backend.Client, schema *graph.StateSchema, opts ...Option) *Saver {
	s := &Saver{
		client: client,
		schema: schema,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// checkpointDoc is the serialized shape of a checkpoint. State is kept as a
// raw message so it can be decoded through the schema.
type checkpointDoc struct {
	SessionID string                 `json:"session_id"`
	State     json.RawMessage        `json:"state"`
	NextNode  string                 `json:"next_node"`
	Status    graph.CheckpointStatus `json:"status"`
	Step      int                    `json:"step"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (s *Saver) key(sessionID string) string {
	return s.prefix + sessionID
}

// Get returns the session's latest checkpoint, or nil if none exists.
func (s *Saver) Get(ctx context.Context, sessionID string) (*graph.Checkpoint, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get checkpoint from redis: %w", err)
	}
	var doc checkpointDoc
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	state, err := s.schema.UnmarshalState(doc.State)
	if err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint state: %w", err)
	}
	return &graph.Checkpoint{
		SessionID: doc.SessionID,
		State:     state,
		NextNode:  doc.NextNode,
		Status:    doc.Status,
		Step:      doc.Step,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// Put stores the checkpoint, replacing the session's prior one and
// refreshing its TTL.
func (s *Saver) Put(ctx context.Context, checkpoint *graph.Checkpoint) error {
	stateData, err := s.schema.MarshalState(checkpoint.State)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint state: %w", err)
	}
	doc := checkpointDoc{
		SessionID: checkpoint.SessionID,
		State:     stateData,
		NextNode:  checkpoint.NextNode,
		Status:    checkpoint.Status,
		Step:      checkpoint.Step,
		CreatedAt: checkpoint.CreatedAt,
		UpdatedAt: checkpoint.UpdatedAt,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}
	if err := s.client.Set(ctx, s.key(checkpoint.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save checkpoint to redis: %w", err)
	}
	return nil
}

// Delete removes the session's checkpoint.
func (s *Saver) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete checkpoint from redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *Saver) Close() error {
	return s.client.Close()
}
