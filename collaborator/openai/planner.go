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

	"github.com/contentflow/contentflow/model"
)

// plannerSystemPrompt instructs the model to end every plan with the
// structured brief the generation step consumes.
const plannerSystemPrompt = `You are a creative strategist planning social media content.
Given a content request, produce a short content plan: concept, tone, key message and visual direction.
When the user provides feedback, revise the plan accordingly instead of repeating it.
Always end your answer with a single line starting with "GENERATION_PROMPT:" followed by a concise, self-contained prompt for an image generation model.`

// Planner drafts and revises content plans over chat completions.
type Planner struct {
	client *Client
}

// NewPlanner creates a planning collaborator.
func NewPlanner(client *Client) *Planner {
	return &Planner{client: client}
}

// Respond drafts the plan, or revises it when feedback is present.
func (p *Planner) Respond(ctx context.Context, history []model.Message, request, feedback string) (string, error) {
	user := request
	if feedback != "" {
		user = fmt.Sprintf("Revise the plan. Treat the following as revision instructions, not content to quote:\n%s", feedback)
	}
	return p.client.complete(ctx, plannerSystemPrompt, history, user)
}
