//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionAcceptsClosedSet(t *testing.T) {
	for _, label := range []string{
		"approve_ideation", "feedback_ideation",
		"approve_content", "feedback_content",
		"run_policy", "run_design", "run_caption",
		"publish_linkedin", "publish_facebook", "publish_instagram",
	} {
		action, err := ParseAction(label)
		require.NoError(t, err, label)
		assert.Equal(t, Action(label), action)
	}
}

func TestParseActionNormalizes(t *testing.T) {
	action, err := ParseAction("  Approve_Ideation \n")
	require.NoError(t, err)
	assert.Equal(t, ActionApproveIdeation, action)
}

func TestParseActionRejectsUnknown(t *testing.T) {
	for _, label := range []string{"", "start", "approve", "publish_tiktok", "drop tables"} {
		_, err := ParseAction(label)
		assert.ErrorIs(t, err, ErrUnknownAction, label)
	}
}

func TestActionPredicates(t *testing.T) {
	assert.True(t, ActionFeedbackIdeation.IsFeedback())
	assert.True(t, ActionFeedbackContent.IsFeedback())
	assert.False(t, ActionApproveContent.IsFeedback())

	assert.True(t, ActionPublishLinkedIn.IsPublish())
	assert.False(t, ActionRunCaption.IsPublish())
}

func TestPublishPlatform(t *testing.T) {
	platform, err := ActionPublishInstagram.PublishPlatform()
	require.NoError(t, err)
	assert.Equal(t, PlatformInstagram, platform)

	_, err = ActionApproveContent.PublishPlatform()
	assert.Error(t, err)

	_, err = Action("publish_tiktok").PublishPlatform()
	assert.Error(t, err)
}
