//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/contentflow/contentflow/model"
)

// State represents the state that flows through the graph.
// Nodes return partial states (deltas); the executor merges them into the
// session state through the schema reducers.
type State map[string]any

// Clone creates a shallow copy of the state. Reducers never mutate existing
// values in place, so a shallow copy is sufficient for snapshot isolation.
func (s State) Clone() State {
	clone := make(State, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}

// StateReducer merges an incoming update value into the existing value for
// a single field.
type StateReducer func(existing, update any) any

// StateField declares one schema field: its Go type, how updates merge into
// it, an optional default, and whether a seed state must provide it.
type StateField struct {
	Type     reflect.Type
	Reducer  StateReducer
	Default  func() any
	Required bool
}

// StateSchema defines the structure and merge behavior of graph state.
// It also acts as the codec for durable checkpoint storage: field types are
// used to decode serialized state back into its typed representation.
type StateSchema struct {
	mu     sync.RWMutex
	Fields map[string]StateField
}

// NewStateSchema returns an empty schema.
func NewStateSchema() *StateSchema {
	return &StateSchema{
		Fields: make(map[string]StateField),
	}
}

// AddField registers a field. A nil reducer means updates overwrite the
// existing value.
func (s *StateSchema) AddField(name string, field StateField) *StateSchema {
	s.mu.Lock()
	defer s.mu.Unlock()
	if field.Reducer == nil {
		field.Reducer = DefaultReducer
	}
	s.Fields[name] = field
	return s
}

// ApplyUpdate merges a node delta into the current state and returns the
// result. The current state is not modified. Keys without a schema entry
// are overwritten.
func (s *StateSchema) ApplyUpdate(current State, update State) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	merged := current.Clone()
	for key, incoming := range update {
		field, ok := s.Fields[key]
		if !ok {
			merged[key] = incoming
			continue
		}
		existing, present := merged[key]
		if !present && field.Default != nil {
			existing = field.Default()
		}
		merged[key] = field.Reducer(existing, incoming)
	}
	return merged
}

// Validate checks that required fields are present and that non-nil values
// are assignable to their declared types.
func (s *StateSchema) Validate(state State) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for name, field := range s.Fields {
		value, present := state[name]
		if field.Required && !present {
			return fmt.Errorf("required field %s is missing", name)
		}
		if !present || value == nil {
			continue
		}
		if vt := reflect.TypeOf(value); !vt.AssignableTo(field.Type) {
			return fmt.Errorf("field %s has wrong type: expected %v, got %v",
				name, field.Type, vt)
		}
	}
	return nil
}

// MarshalState serializes a state for durable storage.
func (s *StateSchema) MarshalState(state State) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return data, nil
}

// UnmarshalState deserializes a state, decoding each schema-defined field
// back into its declared type. Fields without a schema entry are decoded as
// generic JSON values.
func (s *StateSchema) UnmarshalState(data []byte) (State, error) {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := make(State, len(raw))
	for key, value := range raw {
		field, exists := s.Fields[key]
		if !exists {
			var generic any
			if err := json.Unmarshal(value, &generic); err != nil {
				return nil, fmt.Errorf("unmarshal state field %s: %w", key, err)
			}
			state[key] = generic
			continue
		}
		target := reflect.New(field.Type)
		if err := json.Unmarshal(value, target.Interface()); err != nil {
			return nil, fmt.Errorf("unmarshal state field %s: %w", key, err)
		}
		state[key] = target.Elem().Interface()
	}
	return state, nil
}

// Common reducer functions.

// DefaultReducer overwrites the existing value with the update.
func DefaultReducer(existing, update any) any {
	return update
}

// KeepExistingReducer keeps the existing value once set. It guards fields
// that are written exactly once, at session creation.
func KeepExistingReducer(existing, update any) any {
	if existing == nil {
		return update
	}
	if s, ok := existing.(string); ok && s == "" {
		return update
	}
	return existing
}

// StringSliceReducer appends string slices into a freshly allocated slice.
func StringSliceReducer(existing, update any) any {
	existingSlice, ok1 := existing.([]string)
	updateSlice, ok2 := update.([]string)
	if existing == nil {
		ok1 = true
	}
	if !ok1 || !ok2 {
		return update
	}
	merged := make([]string, 0, len(existingSlice)+len(updateSlice))
	merged = append(merged, existingSlice...)
	merged = append(merged, updateSlice...)
	return merged
}

// MessageReducer appends message updates to the history. The merged slice is
// freshly allocated so checkpoints never share a backing array.
func MessageReducer(existing, update any) any {
	existingMsgs, ok1 := existing.([]model.Message)
	updateMsgs, ok2 := update.([]model.Message)
	if existing == nil {
		ok1 = true
	}
	if !ok1 || !ok2 {
		return update
	}
	merged := make([]model.Message, 0, len(existingMsgs)+len(updateMsgs))
	merged = append(merged, existingMsgs...)
	merged = append(merged, updateMsgs...)
	return merged
}

// MergeStringMapReducer merges a string map update into the existing map,
// replacing only the updated keys. The result is a new map.
func MergeStringMapReducer(existing, update any) any {
	existingMap, ok1 := existing.(map[string]string)
	updateMap, ok2 := update.(map[string]string)
	if existing == nil {
		ok1 = true
	}
	if !ok1 || !ok2 {
		return update
	}
	result := make(map[string]string, len(existingMap)+len(updateMap))
	for k, v := range existingMap {
		result[k] = v
	}
	for k, v := range updateMap {
		result[k] = v
	}
	return result
}
