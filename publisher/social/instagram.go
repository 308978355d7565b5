//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package social

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/contentflow/contentflow/artifact"
)

// publishInstagram posts an image through the Graph API container flow: the
// image is first parked on the page as an unpublished photo to obtain a
// public URL, then wrapped in a media container and published. Video posting
// is not supported.
func (p *Publisher) publishInstagram(ctx context.Context, art *artifact.Artifact, caption string) (string, error) {
	if p.cfg.Meta.AccessToken == "" || p.cfg.Meta.PageID == "" || p.cfg.Meta.IGUserID == "" {
		return "", errors.New("instagram credentials are not configured")
	}
	if art.IsVideo() {
		return "", errors.New("instagram video publishing is not supported")
	}
	data, err := p.fetchAsset(ctx, art)
	if err != nil {
		return "", err
	}
	publicURL, err := p.instagramStagePhoto(ctx, art, data)
	if err != nil {
		return "", err
	}
	containerID, err := p.instagramCreateContainer(ctx, publicURL, caption)
	if err != nil {
		return "", err
	}
	mediaID, err := p.instagramPublishContainer(ctx, containerID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Instagram post %s", mediaID), nil
}

// instagramStagePhoto uploads the image unpublished to the page and returns
// a CDN URL the container flow can reference.
func (p *Publisher) instagramStagePhoto(ctx context.Context, art *artifact.Artifact, data []byte) (string, error) {
	token := p.pageAccessToken(ctx)
	photoID, err := p.graphUpload(ctx, fmt.Sprintf("%s/%s/photos", p.graphBase, p.cfg.Meta.PageID),
		map[string]string{
			"access_token": token,
			"published":    "false",
		}, assetFileName(art), assetMimeType(art), data)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/%s?fields=images,link&access_token=%s", p.graphBase, photoID, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("instagram photo lookup: %w", err)
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("instagram photo lookup: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Images []struct {
			Source string `json:"source"`
		} `json:"images"`
		Link string `json:"link"`
	}
	if err := decodeJSON(resp, "instagram photo lookup", &result); err != nil {
		return "", err
	}
	if len(result.Images) > 0 && strings.HasPrefix(result.Images[0].Source, "http") {
		return result.Images[0].Source, nil
	}
	if strings.HasPrefix(result.Link, "http") {
		return result.Link, nil
	}
	return "", errors.New("instagram photo lookup: no public url in response")
}

func (p *Publisher) instagramCreateContainer(ctx context.Context, imageURL, caption string) (string, error) {
	form := url.Values{
		"image_url":    {imageURL},
		"caption":      {caption},
		"access_token": {p.cfg.Meta.AccessToken},
	}
	return p.instagramForm(ctx, fmt.Sprintf("%s/%s/media", p.graphBase, p.cfg.Meta.IGUserID),
		"instagram create container", form)
}

func (p *Publisher) instagramPublishContainer(ctx context.Context, containerID string) (string, error) {
	form := url.Values{
		"creation_id":  {containerID},
		"access_token": {p.cfg.Meta.AccessToken},
	}
	return p.instagramForm(ctx, fmt.Sprintf("%s/%s/media_publish", p.graphBase, p.cfg.Meta.IGUserID),
		"instagram publish container", form)
}

func (p *Publisher) instagramForm(ctx context.Context, endpoint, opName string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%s: %w", opName, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", opName, err)
	}
	defer resp.Body.Close()

	var result struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(resp, opName, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("%s: no id in response", opName)
	}
	return result.ID, nil
}
