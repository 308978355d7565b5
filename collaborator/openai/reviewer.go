//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"context"
	"fmt"
)

// Review prompts per report kind.
var reviewPrompts = map[string]string{
	"policy": `You are a compliance reviewer for social media content.
Check the content below against common platform policies: misleading claims, restricted topics, intellectual property and disclosure requirements.
Reply with a short structured report: verdict (pass, warn or fail), findings, and recommended fixes.`,
	"design": `You are a design reviewer for social media content.
Assess the content below for visual clarity, brand consistency, accessibility and platform fit.
Reply with a short structured report: verdict (pass, warn or fail), findings, and recommended fixes.`,
}

// Reviewer produces compliance reports over chat completions.
type Reviewer struct {
	client *Client
}

// NewReviewer creates a compliance review collaborator.
func NewReviewer(client *Client) *Reviewer {
	return &Reviewer{client: client}
}

// Review produces the report for the given kind.
func (r *Reviewer) Review(ctx context.Context, kind, content string) (string, error) {
	prompt, ok := reviewPrompts[kind]
	if !ok {
		return "", fmt.Errorf("unknown review kind %q", kind)
	}
	return r.client.complete(ctx, prompt, nil, content)
}
