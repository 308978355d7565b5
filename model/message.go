//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

// Package model defines the conversation data structures shared by the
// workflow engine and its collaborators.
package model

// Role is the originator of a message. The set of roles is closed.
type Role string

const (
	// RoleUser is a message supplied by the human requester.
	RoleUser Role = "user"
	// RoleAssistant is a message produced by a workflow step.
	RoleAssistant Role = "assistant"
	// RoleSystem is an instruction message injected by the workflow itself.
	RoleSystem Role = "system"
)

// Valid reports whether the role belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single entry in the conversation history threaded through the
// workflow. History is append-only; nodes never rewrite earlier entries.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}
