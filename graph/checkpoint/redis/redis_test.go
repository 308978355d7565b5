//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package redis

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentflow/contentflow/graph"
	"github.com/contentflow/contentflow/model"
)

func newTestSaver(t *testing.T, opts ...Option) (*Saver, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	schema := graph.NewStateSchema().
		AddField("request", graph.StateField{Type: reflect.TypeOf("")}).
		AddField("messages", graph.StateField{
			Type:    reflect.TypeOf([]model.Message{}),
			Reducer: graph.MessageReducer,
		})
	saver := NewFromClient(client, schema, opts...)
	t.Cleanup(func() { saver.Close() })
	return saver, mr
}

func TestRedisSaverRoundTrip(t *testing.T) {
	saver, _ := newTestSaver(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	require.NoError(t, saver.Put(ctx, &graph.Checkpoint{
		SessionID: "s1",
		State: graph.State{
			"request":  "launch post",
			"messages": []model.Message{model.NewUserMessage("hi")},
		},
		NextNode:  "await_ideation",
		Status:    graph.CheckpointPaused,
		Step:      2,
		CreatedAt: now,
		UpdatedAt: now,
	}))

	cp, err := saver.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, "await_ideation", cp.NextNode)
	assert.Equal(t, graph.CheckpointPaused, cp.Status)
	assert.Equal(t, 2, cp.Step)
	assert.Equal(t, "launch post", cp.State["request"])

	msgs, ok := cp.State["messages"].([]model.Message)
	require.True(t, ok, "state fields should decode back to their declared types")
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
}

func TestRedisSaverMissingReturnsNil(t *testing.T) {
	saver, _ := newTestSaver(t)

	cp, err := saver.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestRedisSaverDelete(t *testing.T) {
	saver, _ := newTestSaver(t)
	ctx := context.Background()

	require.NoError(t, saver.Put(ctx, &graph.Checkpoint{
		SessionID: "s1",
		State:     graph.State{"request": "r"},
		NextNode:  "plan",
		Status:    graph.CheckpointReady,
	}))
	require.NoError(t, saver.Delete(ctx, "s1"))

	cp, err := saver.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestRedisSaverTTL(t *testing.T) {
	saver, mr := newTestSaver(t, WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, saver.Put(ctx, &graph.Checkpoint{
		SessionID: "s1",
		State:     graph.State{"request": "r"},
		NextNode:  "plan",
		Status:    graph.CheckpointReady,
	}))

	mr.FastForward(2 * time.Minute)

	cp, err := saver.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, cp)
}
