//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"

	"github.com/contentflow/contentflow/artifact"
	"github.com/contentflow/contentflow/config"
)

// MediaGenerator produces image assets over the images API.
type MediaGenerator struct {
	client *Client
}

// NewMediaGenerator creates a media generation collaborator.
func NewMediaGenerator(client *Client) *MediaGenerator {
	return &MediaGenerator{client: client}
}

// Generate renders one image from the brief using the configured size and
// quality. The returned artifact references the hosted image by URL.
func (m *MediaGenerator) Generate(ctx context.Context, brief string, cfg config.GenerationConfig) (*artifact.Artifact, error) {
	cfg = cfg.Sanitize()
	resp, err := m.client.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:          m.client.imageModel,
		Prompt:         brief,
		Size:           openai.ImageGenerateParamsSize(cfg.ImageSize),
		Quality:        openai.ImageGenerateParamsQuality(cfg.ImageQuality),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
		N:              openai.Int(1),
	})
	if err != nil {
		return nil, fmt.Errorf("image generation: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, errors.New("image generation returned no image")
	}
	return &artifact.Artifact{
		URL:      resp.Data[0].URL,
		MimeType: "image/png",
		Name:     "generated-image.png",
	}, nil
}
