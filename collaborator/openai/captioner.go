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

	"github.com/contentflow/contentflow/config"
)

// captionerSystemPrompt fixes the output format so downstream publishing can
// extract the postable caption.
const captionerSystemPrompt = `You are a social media copywriter.
Write a caption for the content described below, in the requested style.
Format your answer as exactly two sections:
CAPTION: the caption text
HASHTAGS: a space-separated list of relevant hashtags`

// Captioner generates captions over chat completions.
type Captioner struct {
	client *Client
}

// NewCaptioner creates a captioning collaborator.
func NewCaptioner(client *Client) *Captioner {
	return &Captioner{client: client}
}

// Caption generates a caption in the configured style.
func (c *Captioner) Caption(ctx context.Context, content string, cfg config.GenerationConfig) (string, error) {
	user := fmt.Sprintf("Style: %s\n\nContent:\n%s", cfg.CaptionStyle, content)
	return c.client.complete(ctx, captionerSystemPrompt, nil, user)
}
