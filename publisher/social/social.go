//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

// Package social posts generated assets to LinkedIn, Facebook and Instagram.
// Assets are referenced by URL; each publisher fetches the bytes before
// uploading them to the target platform.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/contentflow/contentflow/artifact"
	"github.com/contentflow/contentflow/log"
	"github.com/contentflow/contentflow/workflow"
)

// maxAssetSize caps fetched asset payloads at 100 MiB.
const maxAssetSize = 100 << 20

// LinkedInConfig carries the LinkedIn API credentials.
type LinkedInConfig struct {
	// AccessToken is the OAuth bearer token.
	AccessToken string `yaml:"access_token"`
	// OwnerURN is the posting identity, for example "urn:li:person:abc123".
	OwnerURN string `yaml:"owner_urn"`
}

// MetaConfig carries the Meta Graph API credentials shared by Facebook and
// Instagram.
type MetaConfig struct {
	// AccessToken is the Meta user or system access token.
	AccessToken string `yaml:"access_token"`
	// PageID is the Facebook Page posts are published to.
	PageID string `yaml:"page_id"`
	// IGUserID is the Instagram business account bound to the page.
	IGUserID string `yaml:"ig_user_id"`
}

// Config bundles the per-platform credentials.
type Config struct {
	LinkedIn LinkedInConfig `yaml:"linkedin"`
	Meta     MetaConfig     `yaml:"meta"`
}

// Option configures the publisher.
type Option func(*Publisher)

// WithHTTPClient replaces the HTTP client used for all platform calls.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Publisher) { p.http = client }
}

// Publisher implements social posting across the supported platforms.
type Publisher struct {
	cfg  Config
	http *http.Client

	// Platform API bases, overridable in tests.
	linkedinBase string
	graphBase    string
}

// New creates a publisher with the given credentials.
func New(cfg Config, opts ...Option) *Publisher {
	p := &Publisher{
		cfg:          cfg,
		http:         &http.Client{Timeout: 5 * time.Minute},
		linkedinBase: "https://api.linkedin.com/v2",
		graphBase:    "https://graph.facebook.com/v24.0",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish posts the asset with the caption to the selected platform and
// returns a short human-readable result.
func (p *Publisher) Publish(ctx context.Context, platform workflow.Platform, art *artifact.Artifact, caption string) (string, error) {
	log.Infof("publishing %s asset to %s", art.MimeType, platform)
	switch platform {
	case workflow.PlatformLinkedIn:
		return p.publishLinkedIn(ctx, art, caption)
	case workflow.PlatformFacebook:
		return p.publishFacebook(ctx, art, caption)
	case workflow.PlatformInstagram:
		return p.publishInstagram(ctx, art, caption)
	}
	return "", fmt.Errorf("unsupported platform %q", platform)
}

// fetchAsset downloads the asset bytes from its locator.
func (p *Publisher) fetchAsset(ctx context.Context, art *artifact.Artifact) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, art.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build asset request: %w", err)
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch asset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch asset: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("asset exceeds %d bytes", maxAssetSize)
	}
	return data, nil
}

// decodeJSON reads the response body into out and reports API errors with
// the body excerpt included.
func decodeJSON(resp *http.Response, op string, out any) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, excerpt(body))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func excerpt(body []byte) string {
	const limit = 500
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}

func assetMimeType(art *artifact.Artifact) string {
	if art.MimeType != "" {
		return art.MimeType
	}
	if art.IsVideo() {
		return "video/mp4"
	}
	return "image/jpeg"
}
