//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

// Package artifact provides the definition of generated media artifacts.
package artifact

import "strings"

// Artifact references a generated media asset, such as an image or video.
// The workflow threads artifacts by locator; the raw bytes live behind the URL.
type Artifact struct {
	// URL is the locator where the artifact can be fetched.
	URL string `json:"url"`
	// MimeType is the IANA standard MIME type of the asset.
	MimeType string `json:"mime_type,omitempty"`
	// Name is an optional display name of the artifact.
	Name string `json:"name,omitempty"`
}

// videoExtensions are the locator suffixes treated as video assets when the
// MIME type is absent.
var videoExtensions = []string{".mp4", ".mov", ".webm"}

// IsVideo reports whether the artifact references a video asset. It prefers
// the MIME type and falls back to the locator extension.
func (a *Artifact) IsVideo() bool {
	if a == nil {
		return false
	}
	if strings.HasPrefix(a.MimeType, "video/") {
		return true
	}
	if a.MimeType != "" {
		return false
	}
	lower := strings.ToLower(a.URL)
	for _, ext := range videoExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}
