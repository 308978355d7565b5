//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package workflow

import (
	"reflect"

	"github.com/contentflow/contentflow/artifact"
	"github.com/contentflow/contentflow/graph"
	"github.com/contentflow/contentflow/model"
)

// State keys threaded through the workflow graph. Each key is written only
// by the nodes that own it (see the node functions).
const (
	// StateKeyRequest is the original human request. Set exactly once at
	// session creation; the reducer keeps the existing value afterwards.
	StateKeyRequest = "request"
	// StateKeyComment is the optional human comment attached to a resume
	// action, cleared each time the planning step consumes it.
	StateKeyComment = "comment"
	// StateKeyAction is the resume action driving conditional routing.
	StateKeyAction = "action"
	// StateKeyMessages is the append-only conversation history.
	StateKeyMessages = "messages"
	// StateKeyBrief is the latest structured planning output.
	StateKeyBrief = "brief"
	// StateKeyArtifact is the latest content-generation result.
	StateKeyArtifact = "artifact"
	// StateKeyReports maps report kind to that kind's latest text result.
	StateKeyReports = "reports"
	// StateKeyLastResponse is the text of the most recently executed node.
	StateKeyLastResponse = "last_response"
)

// Report kinds stored under StateKeyReports.
const (
	ReportKindPolicy  = "policy"
	ReportKindDesign  = "design"
	ReportKindCaption = "caption"
	ReportKindPublish = "publish"
)

// Schema returns the workflow state schema. History grows append-only,
// reports merge per kind, and the request keeps its creation value.
func Schema() *graph.StateSchema {
	return graph.NewStateSchema().
		AddField(StateKeyRequest, graph.StateField{
			Type:     reflect.TypeOf(""),
			Reducer:  graph.KeepExistingReducer,
			Required: true,
		}).
		AddField(StateKeyComment, graph.StateField{
			Type: reflect.TypeOf(""),
		}).
		AddField(StateKeyAction, graph.StateField{
			Type: reflect.TypeOf(Action("")),
		}).
		AddField(StateKeyMessages, graph.StateField{
			Type:    reflect.TypeOf([]model.Message{}),
			Reducer: graph.MessageReducer,
			Default: func() any { return []model.Message{} },
		}).
		AddField(StateKeyBrief, graph.StateField{
			Type: reflect.TypeOf(""),
		}).
		AddField(StateKeyArtifact, graph.StateField{
			Type: reflect.TypeOf(&artifact.Artifact{}),
		}).
		AddField(StateKeyReports, graph.StateField{
			Type:    reflect.TypeOf(map[string]string{}),
			Reducer: graph.MergeStringMapReducer,
			Default: func() any { return map[string]string{} },
		}).
		AddField(StateKeyLastResponse, graph.StateField{
			Type: reflect.TypeOf(""),
		})
}

// NewSeedState builds the initial state for a freshly created session.
func NewSeedState(request string) graph.State {
	return graph.State{
		StateKeyRequest:  request,
		StateKeyAction:   ActionStart,
		StateKeyMessages: []model.Message{},
		StateKeyReports:  map[string]string{},
	}
}

// NewResumeUpdate builds the state update merged into a paused session when
// a resume action arrives.
func NewResumeUpdate(action Action, comment string) graph.State {
	return graph.State{
		StateKeyAction:  action,
		StateKeyComment: comment,
	}
}

// Typed state accessors. State values always originate from the schema, so
// missing or mistyped entries read as zero values.

func stateString(state graph.State, key string) string {
	s, _ := state[key].(string)
	return s
}

func stateAction(state graph.State) Action {
	a, _ := state[StateKeyAction].(Action)
	return a
}

func stateMessages(state graph.State) []model.Message {
	msgs, _ := state[StateKeyMessages].([]model.Message)
	return msgs
}

func stateArtifact(state graph.State) *artifact.Artifact {
	art, _ := state[StateKeyArtifact].(*artifact.Artifact)
	return art
}

func stateReports(state graph.State) map[string]string {
	reports, _ := state[StateKeyReports].(map[string]string)
	return reports
}
