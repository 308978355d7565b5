//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssignsIdentity(t *testing.T) {
	evt := New("s1", TypeToken, WithNode("plan"), WithContent("text"))

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, "s1", evt.SessionID)
	assert.Equal(t, TypeToken, evt.Type)
	assert.Equal(t, "plan", evt.Node)
	assert.Equal(t, "text", evt.Content)
	assert.False(t, evt.Timestamp.IsZero())

	other := New("s1", TypeToken)
	assert.NotEqual(t, evt.ID, other.ID)
}

func TestEmptyFieldsOmittedFromJSON(t *testing.T) {
	evt := New("s1", TypeStatus, WithStatus(StatusFinished))
	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "node")
	assert.NotContains(t, decoded, "content")
	assert.NotContains(t, decoded, "error")
	assert.Equal(t, "finished", decoded["status"])
}

func TestNewError(t *testing.T) {
	evt := NewError("s1", "engine fault")
	assert.Equal(t, TypeError, evt.Type)
	assert.Equal(t, "engine fault", evt.Error)
	assert.NotEmpty(t, evt.ID)
}
