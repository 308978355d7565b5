//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package graph

import "fmt"

// StateGraph is the fluent builder for Graph. Calls chain; the first
// structural error is remembered and reported by Compile, so callers can
// assemble a whole topology without checking each step:
//
//	g, err := NewStateGraph(schema).
//	  AddNode("draft", draftFunc).
//	  SetEntryPoint("draft").
//	  SetFinishPoint("draft").
//	  Compile()
type StateGraph struct {
	graph *Graph
	err   error
}

// NewStateGraph returns a builder over an empty graph with the given schema.
func NewStateGraph(schema *StateSchema) *StateGraph {
	return &StateGraph{
		graph: New(schema),
	}
}

// NodeOption configures a node being added to the builder.
type NodeOption func(*Node)

// WithName sets a display name distinct from the node ID.
func WithName(name string) NodeOption {
	return func(node *Node) {
		node.Name = name
	}
}

// WithDescription attaches a human-readable description to the node.
func WithDescription(description string) NodeOption {
	return func(node *Node) {
		node.Description = description
	}
}

// AddNode registers a node under the given ID. The name defaults to the ID.
func (sg *StateGraph) AddNode(id string, function NodeFunc, opts ...NodeOption) *StateGraph {
	node := &Node{
		ID:       id,
		Name:     id,
		Function: function,
	}
	for _, opt := range opts {
		opt(node)
	}
	sg.record(sg.graph.addNode(node))
	return sg
}

// AddEdge adds an unconditional edge between two nodes.
func (sg *StateGraph) AddEdge(from, to string) *StateGraph {
	sg.record(sg.graph.addEdge(&Edge{From: from, To: to}))
	return sg
}

// AddConditionalEdges routes from a node through a condition function whose
// result is resolved against pathMap.
func (sg *StateGraph) AddConditionalEdges(
	from string,
	condition ConditionalFunc,
	pathMap map[string]string,
) *StateGraph {
	sg.record(sg.graph.addConditionalEdge(&ConditionalEdge{
		From:      from,
		Condition: condition,
		PathMap:   pathMap,
	}))
	return sg
}

// SetEntryPoint declares where execution starts and wires Start to the node.
func (sg *StateGraph) SetEntryPoint(nodeID string) *StateGraph {
	sg.record(sg.graph.setEntryPoint(nodeID))
	sg.AddEdge(Start, nodeID)
	return sg
}

// SetFinishPoint wires the node to End.
func (sg *StateGraph) SetFinishPoint(nodeID string) *StateGraph {
	sg.AddEdge(nodeID, End)
	return sg
}

// InterruptBefore declares interrupt points: execution pauses before each of
// the named nodes and waits for an external resume.
func (sg *StateGraph) InterruptBefore(nodeIDs ...string) *StateGraph {
	sg.graph.addInterruptBefore(nodeIDs...)
	return sg
}

// Compile validates the assembled topology and returns the executable graph.
// Any error recorded during building surfaces here.
func (sg *StateGraph) Compile() (*Graph, error) {
	if sg.err != nil {
		return nil, fmt.Errorf("invalid graph: %w", sg.err)
	}
	if err := sg.graph.validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	return sg.graph, nil
}

// MustCompile is Compile that panics on error, for topologies fixed at
// program start.
func (sg *StateGraph) MustCompile() *Graph {
	graph, err := sg.Compile()
	if err != nil {
		panic(err)
	}
	return graph
}

// record keeps the first builder error for Compile to report.
func (sg *StateGraph) record(err error) {
	if sg.err == nil && err != nil {
		sg.err = err
	}
}
