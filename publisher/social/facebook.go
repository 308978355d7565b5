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
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/contentflow/contentflow/artifact"
	"github.com/contentflow/contentflow/log"
)

// publishFacebook posts the asset to the configured Facebook Page.
func (p *Publisher) publishFacebook(ctx context.Context, art *artifact.Artifact, caption string) (string, error) {
	if p.cfg.Meta.AccessToken == "" || p.cfg.Meta.PageID == "" {
		return "", errors.New("facebook credentials are not configured")
	}
	data, err := p.fetchAsset(ctx, art)
	if err != nil {
		return "", err
	}
	token := p.pageAccessToken(ctx)

	endpoint, captionField := "photos", "caption"
	if art.IsVideo() {
		endpoint, captionField = "videos", "description"
	}
	fields := map[string]string{
		"access_token": token,
		captionField:   caption,
		"published":    "true",
	}
	id, err := p.graphUpload(ctx, fmt.Sprintf("%s/%s/%s", p.graphBase, p.cfg.Meta.PageID, endpoint),
		fields, assetFileName(art), assetMimeType(art), data)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Facebook post %s", id), nil
}

// pageAccessToken exchanges the user token for the page token, falling back
// to the user token when the exchange fails.
func (p *Publisher) pageAccessToken(ctx context.Context) string {
	u := fmt.Sprintf("%s/%s?fields=access_token&access_token=%s",
		p.graphBase, p.cfg.Meta.PageID, url.QueryEscape(p.cfg.Meta.AccessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return p.cfg.Meta.AccessToken
	}
	resp, err := p.http.Do(req)
	if err != nil {
		log.Warnf("facebook page token fetch failed: %v", err)
		return p.cfg.Meta.AccessToken
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := decodeJSON(resp, "facebook page token", &result); err != nil || result.AccessToken == "" {
		log.Warnf("facebook page token unavailable, using account token")
		return p.cfg.Meta.AccessToken
	}
	return result.AccessToken
}

// graphUpload sends a multipart upload to a Graph API edge and returns the
// created object ID.
func (p *Publisher) graphUpload(ctx context.Context, endpoint string, fields map[string]string, filename, mimeType string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("graph upload: %w", err)
		}
	}
	part, err := writer.CreateFormFile("source", filename)
	if err != nil {
		return "", fmt.Errorf("graph upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("graph upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("graph upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("graph upload: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("graph upload: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := decodeJSON(resp, "graph upload", &result); err != nil {
		return "", err
	}
	if result.PostID != "" {
		return result.PostID, nil
	}
	if result.ID == "" {
		return "", errors.New("graph upload: no object id in response")
	}
	return result.ID, nil
}

func assetFileName(art *artifact.Artifact) string {
	if art.Name != "" {
		return art.Name
	}
	if art.IsVideo() {
		return "upload.mp4"
	}
	return "upload.jpg"
}
