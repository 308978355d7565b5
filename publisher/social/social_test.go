//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentflow/contentflow/artifact"
	"github.com/contentflow/contentflow/workflow"
)

func testConfig() Config {
	return Config{
		LinkedIn: LinkedInConfig{AccessToken: "li-token", OwnerURN: "urn:li:person:abc"},
		Meta:     MetaConfig{AccessToken: "meta-token", PageID: "page1", IGUserID: "ig1"},
	}
}

// newAssetServer serves the fake generated asset the publishers fetch.
func newAssetServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestPublishLinkedInImage(t *testing.T) {
	assets := newAssetServer(t)

	var uploadedBody []byte
	mux := http.NewServeMux()
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)

	mux.HandleFunc("/assets", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "registerUpload", r.URL.Query().Get("action"))
		require.Equal(t, "Bearer li-token", r.Header.Get("Authorization"))
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		fmt.Fprintf(w, `{"value":{"asset":"urn:li:digitalmediaAsset:a1","uploadMechanism":{"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest":{"uploadUrl":"%s/upload"}}}}`, api.URL)
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		uploadedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/ugcPosts", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "urn:li:person:abc", payload["author"])
		fmt.Fprint(w, `{"id":"urn:li:share:123"}`)
	})

	p := New(testConfig())
	p.linkedinBase = api.URL

	result, err := p.Publish(context.Background(), workflow.PlatformLinkedIn,
		&artifact.Artifact{URL: assets.URL, MimeType: "image/png"}, "hello world")
	require.NoError(t, err)
	assert.Contains(t, result, "urn:li:share:123")
	assert.Equal(t, "png-bytes", string(uploadedBody))
}

func TestPublishFacebookImage(t *testing.T) {
	assets := newAssetServer(t)

	mux := http.NewServeMux()
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)

	mux.HandleFunc("/page1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"page-token"}`)
	})
	mux.HandleFunc("/page1/photos", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "page-token", r.FormValue("access_token"))
		assert.Equal(t, "hello world", r.FormValue("caption"))
		_, _, err := r.FormFile("source")
		require.NoError(t, err)
		fmt.Fprint(w, `{"id":"photo1","post_id":"page1_post1"}`)
	})

	p := New(testConfig())
	p.graphBase = api.URL

	result, err := p.Publish(context.Background(), workflow.PlatformFacebook,
		&artifact.Artifact{URL: assets.URL, MimeType: "image/png"}, "hello world")
	require.NoError(t, err)
	assert.Contains(t, result, "page1_post1")
}

func TestPublishFacebookFallsBackToAccountToken(t *testing.T) {
	assets := newAssetServer(t)

	mux := http.NewServeMux()
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)

	mux.HandleFunc("/page1", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no permission"}`, http.StatusForbidden)
	})
	mux.HandleFunc("/page1/photos", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "meta-token", r.FormValue("access_token"))
		fmt.Fprint(w, `{"id":"photo1"}`)
	})

	p := New(testConfig())
	p.graphBase = api.URL

	result, err := p.Publish(context.Background(), workflow.PlatformFacebook,
		&artifact.Artifact{URL: assets.URL, MimeType: "image/png"}, "c")
	require.NoError(t, err)
	assert.Contains(t, result, "photo1")
}

func TestPublishInstagramImage(t *testing.T) {
	assets := newAssetServer(t)

	mux := http.NewServeMux()
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)

	mux.HandleFunc("/page1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"page-token"}`)
	})
	mux.HandleFunc("/page1/photos", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "false", r.FormValue("published"))
		fmt.Fprint(w, `{"id":"photo9"}`)
	})
	mux.HandleFunc("/photo9", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"images":[{"source":"https://cdn.fb.test/photo9.png"}]}`)
	})
	mux.HandleFunc("/ig1/media", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://cdn.fb.test/photo9.png", r.FormValue("image_url"))
		assert.Equal(t, "cap", r.FormValue("caption"))
		fmt.Fprint(w, `{"id":"container1"}`)
	})
	mux.HandleFunc("/ig1/media_publish", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "container1", r.FormValue("creation_id"))
		fmt.Fprint(w, `{"id":"media1"}`)
	})

	p := New(testConfig())
	p.graphBase = api.URL

	result, err := p.Publish(context.Background(), workflow.PlatformInstagram,
		&artifact.Artifact{URL: assets.URL, MimeType: "image/png"}, "cap")
	require.NoError(t, err)
	assert.Contains(t, result, "media1")
}

func TestPublishInstagramRejectsVideo(t *testing.T) {
	p := New(testConfig())

	_, err := p.Publish(context.Background(), workflow.PlatformInstagram,
		&artifact.Artifact{URL: "https://cdn.test/v.mp4", MimeType: "video/mp4"}, "cap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestPublishMissingCredentials(t *testing.T) {
	p := New(Config{})
	art := &artifact.Artifact{URL: "https://cdn.test/a.png", MimeType: "image/png"}

	for _, platform := range []workflow.Platform{
		workflow.PlatformLinkedIn, workflow.PlatformFacebook, workflow.PlatformInstagram,
	} {
		_, err := p.Publish(context.Background(), platform, art, "c")
		assert.Error(t, err, string(platform))
	}
}

func TestAPIErrorIncludesBodyExcerpt(t *testing.T) {
	assets := newAssetServer(t)

	mux := http.NewServeMux()
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)
	mux.HandleFunc("/assets", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"token expired"}`, http.StatusUnauthorized)
	})

	p := New(testConfig())
	p.linkedinBase = api.URL

	_, err := p.Publish(context.Background(), workflow.PlatformLinkedIn,
		&artifact.Artifact{URL: assets.URL, MimeType: "image/png"}, "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}
