//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// Action is the label identifying which resume action produced the current
// transition. The set of actions accepted at the boundary is closed; routing
// still treats any unmatched label as free-text feedback so the routers stay
// total.
type Action string

const (
	// ActionStart is the sentinel set at session creation. It is not a
	// valid resume action.
	ActionStart Action = "start"

	// ActionApproveIdeation accepts the plan and moves on to generation.
	ActionApproveIdeation Action = "approve_ideation"
	// ActionFeedbackIdeation sends the plan back with revision feedback.
	ActionFeedbackIdeation Action = "feedback_ideation"
	// ActionApproveContent accepts the generated content and ends the run.
	ActionApproveContent Action = "approve_content"
	// ActionFeedbackContent sends the workflow back to planning with
	// feedback on the generated content.
	ActionFeedbackContent Action = "feedback_content"
	// ActionRunPolicy requests a policy compliance review.
	ActionRunPolicy Action = "run_policy"
	// ActionRunDesign requests a design compliance review.
	ActionRunDesign Action = "run_design"
	// ActionRunCaption requests caption generation.
	ActionRunCaption Action = "run_caption"
	// ActionPublishLinkedIn publishes the content to LinkedIn.
	ActionPublishLinkedIn Action = "publish_linkedin"
	// ActionPublishFacebook publishes the content to Facebook.
	ActionPublishFacebook Action = "publish_facebook"
	// ActionPublishInstagram publishes the content to Instagram.
	ActionPublishInstagram Action = "publish_instagram"
)

// publishPrefix identifies publish actions; the platform is the suffix.
const publishPrefix = "publish_"

// ErrUnknownAction is returned when a resume action is not in the closed
// action set.
var ErrUnknownAction = errors.New("unknown action")

// resumeActions is the closed set accepted by ParseAction.
var resumeActions = map[Action]bool{
	ActionApproveIdeation:  true,
	ActionFeedbackIdeation: true,
	ActionApproveContent:   true,
	ActionFeedbackContent:  true,
	ActionRunPolicy:        true,
	ActionRunDesign:        true,
	ActionRunCaption:       true,
	ActionPublishLinkedIn:  true,
	ActionPublishFacebook:  true,
	ActionPublishInstagram: true,
}

// ParseAction validates a resume action label against the closed action set.
func ParseAction(label string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(label)))
	if !resumeActions[action] {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, label)
	}
	return action, nil
}

// IsFeedback reports whether the action carries free-text feedback for the
// planning step.
func (a Action) IsFeedback() bool {
	return a == ActionFeedbackIdeation || a == ActionFeedbackContent
}

// IsPublish reports whether the action requests a social publish.
func (a Action) IsPublish() bool {
	return strings.HasPrefix(string(a), publishPrefix)
}

// PublishPlatform returns the platform selected by a publish action.
func (a Action) PublishPlatform() (Platform, error) {
	if !a.IsPublish() {
		return "", fmt.Errorf("action %q is not a publish action", a)
	}
	platform := Platform(strings.TrimPrefix(string(a), publishPrefix))
	if !platform.Valid() {
		return "", fmt.Errorf("unknown publish platform %q", platform)
	}
	return platform, nil
}

// Platform is a social publishing target.
type Platform string

const (
	// PlatformLinkedIn is the LinkedIn publishing target.
	PlatformLinkedIn Platform = "linkedin"
	// PlatformFacebook is the Facebook publishing target.
	PlatformFacebook Platform = "facebook"
	// PlatformInstagram is the Instagram publishing target.
	PlatformInstagram Platform = "instagram"
)

// Valid reports whether the platform is a known publishing target.
func (p Platform) Valid() bool {
	switch p {
	case PlatformLinkedIn, PlatformFacebook, PlatformInstagram:
		return true
	}
	return false
}
