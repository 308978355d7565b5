//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentflow/contentflow/model"
)

func testSchema() *StateSchema {
	return NewStateSchema().
		AddField("request", StateField{
			Type:     reflect.TypeOf(""),
			Reducer:  KeepExistingReducer,
			Required: true,
		}).
		AddField("notes", StateField{
			Type: reflect.TypeOf(""),
		}).
		AddField("messages", StateField{
			Type:    reflect.TypeOf([]model.Message{}),
			Reducer: MessageReducer,
			Default: func() any { return []model.Message{} },
		}).
		AddField("reports", StateField{
			Type:    reflect.TypeOf(map[string]string{}),
			Reducer: MergeStringMapReducer,
			Default: func() any { return map[string]string{} },
		})
}

func TestApplyUpdateReducers(t *testing.T) {
	schema := testSchema()
	state := State{
		"request":  "launch post",
		"messages": []model.Message{model.NewUserMessage("hi")},
		"reports":  map[string]string{"policy": "pass"},
	}

	merged := schema.ApplyUpdate(state, State{
		"request":  "ignored",
		"notes":    "draft ready",
		"messages": []model.Message{model.NewAssistantMessage("plan")},
		"reports":  map[string]string{"design": "warn"},
	})

	assert.Equal(t, "launch post", merged["request"])
	assert.Equal(t, "draft ready", merged["notes"])
	msgs := merged["messages"].([]model.Message)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	reports := merged["reports"].(map[string]string)
	assert.Equal(t, "pass", reports["policy"])
	assert.Equal(t, "warn", reports["design"])
}

func TestApplyUpdateDoesNotMutateInputs(t *testing.T) {
	schema := testSchema()
	state := State{
		"request":  "r",
		"messages": []model.Message{model.NewUserMessage("one")},
		"reports":  map[string]string{"policy": "pass"},
	}

	_ = schema.ApplyUpdate(state, State{
		"messages": []model.Message{model.NewAssistantMessage("two")},
		"reports":  map[string]string{"policy": "fail"},
	})

	assert.Len(t, state["messages"].([]model.Message), 1)
	assert.Equal(t, "pass", state["reports"].(map[string]string)["policy"])
}

func TestMessageReducerFreshBackingArray(t *testing.T) {
	existing := make([]model.Message, 1, 8)
	existing[0] = model.NewUserMessage("base")

	first := MessageReducer(existing, []model.Message{model.NewAssistantMessage("a")}).([]model.Message)
	second := MessageReducer(existing, []model.Message{model.NewAssistantMessage("b")}).([]model.Message)

	assert.Equal(t, "a", first[1].Content)
	assert.Equal(t, "b", second[1].Content)
}

func TestValidateRequiredField(t *testing.T) {
	schema := testSchema()
	err := schema.Validate(State{"notes": "x"})
	assert.Error(t, err)

	err = schema.Validate(State{"request": "x"})
	assert.NoError(t, err)
}

func TestMarshalUnmarshalTypedRoundTrip(t *testing.T) {
	schema := testSchema()
	state := State{
		"request":  "launch post",
		"messages": []model.Message{model.NewUserMessage("hi"), model.NewAssistantMessage("plan")},
		"reports":  map[string]string{"policy": "pass"},
	}

	data, err := schema.MarshalState(state)
	require.NoError(t, err)

	decoded, err := schema.UnmarshalState(data)
	require.NoError(t, err)

	assert.Equal(t, "launch post", decoded["request"])
	msgs, ok := decoded["messages"].([]model.Message)
	require.True(t, ok, "messages should decode to the typed slice")
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	reports, ok := decoded["reports"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "pass", reports["policy"])
}

func TestKeepExistingReducerFirstWrite(t *testing.T) {
	assert.Equal(t, "first", KeepExistingReducer(nil, "first"))
	assert.Equal(t, "first", KeepExistingReducer("first", "second"))
}
