//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

// Package config holds the runtime generation preferences read by workflow
// nodes when building collaborator requests.
package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Video duration bounds in seconds. Out-of-range values fall back to the
// default rather than being rejected.
const (
	MinVideoDuration     = 5
	MaxVideoDuration     = 60
	DefaultVideoDuration = 10
)

// aspectRatioResolutions maps supported video aspect ratios to resolutions.
var aspectRatioResolutions = map[string]string{
	"16:9": "1920x1080", // Landscape - YouTube, LinkedIn, Twitter
	"9:16": "1080x1920", // Portrait - TikTok, Reels, Shorts
	"1:1":  "1080x1080", // Square - Instagram Feed, Facebook
	"4:5":  "1080x1350", // Portrait - Instagram Feed optimal
	"21:9": "2560x1080", // Ultra-wide - Cinematic content
}

// Caption styles.
const (
	CaptionStyleProfessional = "professional"
	CaptionStyleCasual       = "casual"
	CaptionStyleCreative     = "creative"
)

// imageSizes are the supported generated image dimensions.
var imageSizes = map[string]bool{
	"1024x1024": true,
	"1792x1024": true,
	"1024x1792": true,
}

// GenerationConfig carries the content-generation preferences.
type GenerationConfig struct {
	VideoDuration       int    `yaml:"video_duration" json:"video_duration"`
	VideoAspectRatio    string `yaml:"video_aspect_ratio" json:"video_aspect_ratio"`
	EnableCaptions      bool   `yaml:"enable_captions" json:"enable_captions"`
	CaptionStyle        string `yaml:"caption_style" json:"caption_style"`
	ImageSize           string `yaml:"image_size" json:"image_size"`
	ImageQuality        string `yaml:"image_quality" json:"image_quality"`
	AutoComplianceCheck bool   `yaml:"auto_compliance_check" json:"auto_compliance_check"`
}

// Default returns the default generation configuration.
func Default() GenerationConfig {
	return GenerationConfig{
		VideoDuration:    DefaultVideoDuration,
		VideoAspectRatio: "16:9",
		EnableCaptions:   false,
		CaptionStyle:     CaptionStyleProfessional,
		ImageSize:        "1024x1024",
		ImageQuality:     "hd",
	}
}

// VideoResolution returns the resolution for the configured aspect ratio.
func (c GenerationConfig) VideoResolution() string {
	if res, ok := aspectRatioResolutions[c.VideoAspectRatio]; ok {
		return res
	}
	return aspectRatioResolutions["16:9"]
}

// Sanitize replaces out-of-range or unknown values with defaults. Duration
// outside [5, 60] falls back to the default as a guardrail.
func (c GenerationConfig) Sanitize() GenerationConfig {
	def := Default()
	if c.VideoDuration < MinVideoDuration || c.VideoDuration > MaxVideoDuration {
		c.VideoDuration = def.VideoDuration
	}
	if _, ok := aspectRatioResolutions[c.VideoAspectRatio]; !ok {
		c.VideoAspectRatio = def.VideoAspectRatio
	}
	switch c.CaptionStyle {
	case CaptionStyleProfessional, CaptionStyleCasual, CaptionStyleCreative:
	default:
		c.CaptionStyle = def.CaptionStyle
	}
	if !imageSizes[c.ImageSize] {
		c.ImageSize = def.ImageSize
	}
	switch c.ImageQuality {
	case "standard", "hd":
	default:
		c.ImageQuality = def.ImageQuality
	}
	return c
}

// Provider holds the current configuration for concurrent read/write access.
// Nodes read a snapshot per advance; updates apply to subsequent advances.
type Provider struct {
	mu  sync.RWMutex
	cfg GenerationConfig
}

// NewProvider creates a provider seeded with the given configuration.
func NewProvider(cfg GenerationConfig) *Provider {
	return &Provider{cfg: cfg.Sanitize()}
}

// Get returns the current configuration snapshot.
func (p *Provider) Get() GenerationConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// Set replaces the current configuration after sanitizing it.
func (p *Provider) Set(cfg GenerationConfig) GenerationConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg.Sanitize()
	return p.cfg
}

// LoadFile reads a generation configuration from a yaml file.
func LoadFile(path string) (GenerationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GenerationConfig{}, fmt.Errorf("read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GenerationConfig{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg.Sanitize(), nil
}
