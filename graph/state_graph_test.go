//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopNode(ctx context.Context, state State) (State, error) {
	return nil, nil
}

func TestStateGraphCompile(t *testing.T) {
	g, err := NewStateGraph(NewStateSchema()).
		AddNode("a", noopNode).
		AddNode("b", noopNode, WithName("b node"), WithDescription("second step")).
		SetEntryPoint("a").
		AddEdge("a", "b").
		SetFinishPoint("b").
		Compile()
	require.NoError(t, err)

	node, ok := g.Node("b")
	require.True(t, ok)
	assert.Equal(t, "b node", node.Name)
	assert.Equal(t, "a", g.EntryPoint())
}

func TestStateGraphRejectsDuplicateNode(t *testing.T) {
	_, err := NewStateGraph(NewStateSchema()).
		AddNode("a", noopNode).
		AddNode("a", noopNode).
		SetEntryPoint("a").
		SetFinishPoint("a").
		Compile()
	assert.Error(t, err)
}

func TestStateGraphRejectsEdgeToUnknownNode(t *testing.T) {
	_, err := NewStateGraph(NewStateSchema()).
		AddNode("a", noopNode).
		SetEntryPoint("a").
		AddEdge("a", "ghost").
		Compile()
	assert.Error(t, err)
}

func TestStateGraphRequiresEntryPoint(t *testing.T) {
	_, err := NewStateGraph(NewStateSchema()).
		AddNode("a", noopNode).
		SetFinishPoint("a").
		Compile()
	assert.Error(t, err)
}

func TestStateGraphInterruptBefore(t *testing.T) {
	g, err := NewStateGraph(NewStateSchema()).
		AddNode("a", noopNode).
		AddNode("gate", noopNode).
		SetEntryPoint("a").
		AddEdge("a", "gate").
		SetFinishPoint("gate").
		InterruptBefore("gate").
		Compile()
	require.NoError(t, err)

	assert.True(t, g.InterruptsBefore("gate"))
	assert.False(t, g.InterruptsBefore("a"))
}
