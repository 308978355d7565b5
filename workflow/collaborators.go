//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package workflow

import (
	"context"

	"github.com/contentflow/contentflow/artifact"
	"github.com/contentflow/contentflow/config"
	"github.com/contentflow/contentflow/model"
)

// PlanningAgent drafts and revises the content plan. When feedback is
// non-empty the agent folds it into the revision as instructions rather than
// quoting it back.
type PlanningAgent interface {
	Respond(ctx context.Context, history []model.Message, request, feedback string) (string, error)
}

// MediaGenerator produces one media asset from a planning brief.
type MediaGenerator interface {
	Generate(ctx context.Context, brief string, cfg config.GenerationConfig) (*artifact.Artifact, error)
}

// ComplianceReviewer produces a structured textual report for the given
// review kind (policy or design).
type ComplianceReviewer interface {
	Review(ctx context.Context, kind, content string) (string, error)
}

// CaptionAgent produces a platform-aware caption for generated content.
type CaptionAgent interface {
	Caption(ctx context.Context, content string, cfg config.GenerationConfig) (string, error)
}

// SocialPublisher performs the external post. Publishing may fail
// per-platform; such failures abort only the publish attempt.
type SocialPublisher interface {
	Publish(ctx context.Context, platform Platform, art *artifact.Artifact, caption string) (string, error)
}

// Collaborators bundles the external capabilities invoked by workflow nodes.
type Collaborators struct {
	Planner   PlanningAgent
	Media     MediaGenerator
	Reviewer  ComplianceReviewer
	Captioner CaptionAgent
	Publisher SocialPublisher
}
