//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package social

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/contentflow/contentflow/artifact"
)

// LinkedIn digital media recipes per share category.
const (
	linkedinImageRecipe = "urn:li:digitalmediaRecipe:feedshare-image"
	linkedinVideoRecipe = "urn:li:digitalmediaRecipe:feedshare-video"
)

// publishLinkedIn posts the asset in three steps: register the upload,
// upload the bytes to the returned location, create the feed post.
func (p *Publisher) publishLinkedIn(ctx context.Context, art *artifact.Artifact, caption string) (string, error) {
	if p.cfg.LinkedIn.AccessToken == "" || p.cfg.LinkedIn.OwnerURN == "" {
		return "", errors.New("linkedin credentials are not configured")
	}
	data, err := p.fetchAsset(ctx, art)
	if err != nil {
		return "", err
	}

	recipe, category := linkedinImageRecipe, "IMAGE"
	if art.IsVideo() {
		recipe, category = linkedinVideoRecipe, "VIDEO"
	}
	uploadURL, assetURN, err := p.linkedinRegisterUpload(ctx, recipe)
	if err != nil {
		return "", err
	}
	if err := p.linkedinUpload(ctx, uploadURL, assetMimeType(art), data); err != nil {
		return "", err
	}
	postID, err := p.linkedinCreatePost(ctx, assetURN, category, caption, art.Name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("LinkedIn post %s", postID), nil
}

func (p *Publisher) linkedinRegisterUpload(ctx context.Context, recipe string) (uploadURL, assetURN string, err error) {
	payload := map[string]any{
		"registerUploadRequest": map[string]any{
			"owner":   p.cfg.LinkedIn.OwnerURN,
			"recipes": []string{recipe},
			"serviceRelationships": []map[string]string{{
				"relationshipType": "OWNER",
				"identifier":       "urn:li:userGeneratedContent",
			}},
		},
	}
	resp, err := p.linkedinJSON(ctx, p.linkedinBase+"/assets?action=registerUpload", payload)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	var result struct {
		Value struct {
			Asset           string `json:"asset"`
			UploadMechanism struct {
				MediaUploadHTTPRequest struct {
					UploadURL string `json:"uploadUrl"`
				} `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
			} `json:"uploadMechanism"`
		} `json:"value"`
	}
	if err := decodeJSON(resp, "linkedin register upload", &result); err != nil {
		return "", "", err
	}
	uploadURL = result.Value.UploadMechanism.MediaUploadHTTPRequest.UploadURL
	assetURN = result.Value.Asset
	if uploadURL == "" || assetURN == "" {
		return "", "", errors.New("linkedin register upload: incomplete response")
	}
	return uploadURL, assetURN, nil
}

func (p *Publisher) linkedinUpload(ctx context.Context, uploadURL, mimeType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("linkedin upload: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.LinkedIn.AccessToken)
	req.Header.Set("Content-Type", mimeType)
	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("linkedin upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("linkedin upload: status %d", resp.StatusCode)
	}
	return nil
}

func (p *Publisher) linkedinCreatePost(ctx context.Context, assetURN, category, caption, title string) (string, error) {
	media := map[string]any{
		"status": "READY",
		"media":  assetURN,
	}
	if category == "VIDEO" && title != "" {
		media["title"] = map[string]string{"text": title}
	}
	payload := map[string]any{
		"author":         p.cfg.LinkedIn.OwnerURN,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]string{"text": caption},
				"shareMediaCategory": category,
				"media":              []map[string]any{media},
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	resp, err := p.linkedinJSON(ctx, p.linkedinBase+"/ugcPosts", payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(resp, "linkedin create post", &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

func (p *Publisher) linkedinJSON(ctx context.Context, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.LinkedIn.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	return p.http.Do(req)
}
