//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

// Package graph provides graph-based workflow execution: a fixed topology of
// nodes with conditional routing, declared interrupt points, and durable
// per-session checkpoints that make suspension survivable across stateless
// request/response cycles.
package graph

import (
	"context"
	"fmt"
)

// Virtual node identifiers used in routing.
const (
	Start = "__start__"
	End   = "__end__"
)

// Error types reported on engine fault events.
const (
	ErrorTypeGraphExecution  = "graph_execution_error"
	ErrorTypeInvalidNode     = "invalid_node_error"
	ErrorTypeInvalidState    = "invalid_state_error"
	ErrorTypeConditionalEdge = "conditional_edge_error"
	ErrorTypeCheckpoint      = "checkpoint_error"
)

// NodeFunc is a function executed by a node. It receives the current state
// and returns a partial state (delta) that the executor merges through the
// schema reducers. A nil delta means the node made no state change.
type NodeFunc func(ctx context.Context, state State) (State, error)

// ConditionalFunc determines the next node based on state.
type ConditionalFunc func(ctx context.Context, state State) (string, error)

// Node is a graph vertex: a function plus metadata.
type Node struct {
	ID          string
	Name        string
	Description string
	Function    NodeFunc
}

// Edge is an unconditional transition between two nodes.
type Edge struct {
	From string
	To   string
}

// ConditionalEdge routes from a node to one of several targets. The
// condition's result is looked up in PathMap to find the target node.
type ConditionalEdge struct {
	From      string
	Condition ConditionalFunc
	PathMap   map[string]string
}

// Graph is the runtime representation of a workflow topology. It is built
// through StateGraph, frozen by Compile, and never mutated afterwards, so
// concurrent executors may share one instance without locking.
type Graph struct {
	schema           *StateSchema
	nodes            map[string]*Node
	edges            map[string][]*Edge
	conditionalEdges map[string]*ConditionalEdge
	entryPoint       string
	interruptBefore  map[string]struct{}
}

// New creates an empty graph with the given state schema.
func New(schema *StateSchema) *Graph {
	if schema == nil {
		schema = NewStateSchema()
	}
	return &Graph{
		schema:           schema,
		nodes:            make(map[string]*Node),
		edges:            make(map[string][]*Edge),
		conditionalEdges: make(map[string]*ConditionalEdge),
		interruptBefore:  make(map[string]struct{}),
	}
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// Edges returns the unconditional edges leaving a node.
func (g *Graph) Edges(nodeID string) []*Edge {
	return g.edges[nodeID]
}

// ConditionalEdge returns the conditional edge leaving a node, if any.
func (g *Graph) ConditionalEdge(nodeID string) (*ConditionalEdge, bool) {
	edge, ok := g.conditionalEdges[nodeID]
	return edge, ok
}

// EntryPoint returns the node ID execution starts at.
func (g *Graph) EntryPoint() string {
	return g.entryPoint
}

// Schema returns the state schema.
func (g *Graph) Schema() *StateSchema {
	return g.schema
}

// InterruptsBefore reports whether execution must pause before the node runs.
func (g *Graph) InterruptsBefore(nodeID string) bool {
	_, ok := g.interruptBefore[nodeID]
	return ok
}

func (g *Graph) validate() error {
	if g.entryPoint == "" {
		return fmt.Errorf("graph must have an entry point")
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return fmt.Errorf("entry point node %s does not exist", g.entryPoint)
	}
	for nodeID := range g.interruptBefore {
		if _, ok := g.nodes[nodeID]; !ok {
			return fmt.Errorf("interrupt node %s does not exist", nodeID)
		}
	}
	return nil
}

func (g *Graph) addNode(node *Node) error {
	if node.ID == "" {
		return fmt.Errorf("node ID cannot be empty for %+v", node)
	}
	if _, ok := g.nodes[node.ID]; ok {
		return fmt.Errorf("node with ID %s already exists", node.ID)
	}
	g.nodes[node.ID] = node
	return nil
}

func (g *Graph) addEdge(edge *Edge) error {
	if edge.From == "" || edge.To == "" {
		return fmt.Errorf("edge from and to cannot be empty")
	}
	if err := g.checkTarget(edge.From, Start); err != nil {
		return err
	}
	if err := g.checkTarget(edge.To, End); err != nil {
		return err
	}
	g.edges[edge.From] = append(g.edges[edge.From], edge)
	return nil
}

func (g *Graph) addConditionalEdge(condEdge *ConditionalEdge) error {
	if condEdge.From == "" {
		return fmt.Errorf("conditional edge from cannot be empty")
	}
	if _, ok := g.nodes[condEdge.From]; !ok {
		return fmt.Errorf("source node %s does not exist", condEdge.From)
	}
	for _, to := range condEdge.PathMap {
		if err := g.checkTarget(to, End); err != nil {
			return err
		}
	}
	g.conditionalEdges[condEdge.From] = condEdge
	return nil
}

// checkTarget verifies a referenced node exists, permitting one virtual ID.
func (g *Graph) checkTarget(nodeID, virtual string) error {
	if nodeID == virtual {
		return nil
	}
	if _, ok := g.nodes[nodeID]; !ok {
		return fmt.Errorf("target node %s does not exist", nodeID)
	}
	return nil
}

func (g *Graph) setEntryPoint(nodeID string) error {
	if nodeID != "" {
		if _, ok := g.nodes[nodeID]; !ok {
			return fmt.Errorf("entry point node %s does not exist", nodeID)
		}
	}
	g.entryPoint = nodeID
	return nil
}

func (g *Graph) addInterruptBefore(nodeIDs ...string) {
	for _, id := range nodeIDs {
		g.interruptBefore[id] = struct{}{}
	}
}
