//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeDurationBounds(t *testing.T) {
	for _, duration := range []int{0, 4, 61, -10, 1000} {
		cfg := Default()
		cfg.VideoDuration = duration
		assert.Equal(t, DefaultVideoDuration, cfg.Sanitize().VideoDuration, "duration %d", duration)
	}
	for _, duration := range []int{5, 10, 30, 60} {
		cfg := Default()
		cfg.VideoDuration = duration
		assert.Equal(t, duration, cfg.Sanitize().VideoDuration)
	}
}

func TestSanitizeUnknownValuesFallBack(t *testing.T) {
	cfg := GenerationConfig{
		VideoDuration:    10,
		VideoAspectRatio: "3:2",
		CaptionStyle:     "shouty",
		ImageSize:        "640x480",
		ImageQuality:     "ultra",
	}
	got := cfg.Sanitize()
	def := Default()
	assert.Equal(t, def.VideoAspectRatio, got.VideoAspectRatio)
	assert.Equal(t, def.CaptionStyle, got.CaptionStyle)
	assert.Equal(t, def.ImageSize, got.ImageSize)
	assert.Equal(t, def.ImageQuality, got.ImageQuality)
}

func TestVideoResolution(t *testing.T) {
	cfg := Default()
	cfg.VideoAspectRatio = "9:16"
	assert.Equal(t, "1080x1920", cfg.VideoResolution())

	cfg.VideoAspectRatio = "nonsense"
	assert.Equal(t, "1920x1080", cfg.VideoResolution())
}

func TestProviderSanitizesOnSet(t *testing.T) {
	p := NewProvider(Default())

	cfg := p.Get()
	cfg.VideoDuration = 999
	applied := p.Set(cfg)

	assert.Equal(t, DefaultVideoDuration, applied.VideoDuration)
	assert.Equal(t, DefaultVideoDuration, p.Get().VideoDuration)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"video_duration: 30\nvideo_aspect_ratio: \"1:1\"\ncaption_style: casual\nauto_compliance_check: true\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.VideoDuration)
	assert.Equal(t, "1:1", cfg.VideoAspectRatio)
	assert.Equal(t, CaptionStyleCasual, cfg.CaptionStyle)
	assert.True(t, cfg.AutoComplianceCheck)
	// Unset fields keep their defaults.
	assert.Equal(t, Default().ImageSize, cfg.ImageSize)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
