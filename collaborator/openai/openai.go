//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

// Package openai implements the workflow collaborators on the OpenAI API:
// planning, compliance reviews and captioning over chat completions, media
// generation over the images API.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"

	"github.com/contentflow/contentflow/model"
)

const (
	defaultChatModel  = "gpt-4o"
	defaultImageModel = openai.ImageModelDallE3
)

// Option configures the collaborator client.
type Option func(*options)

type options struct {
	apiKey     string
	baseURL    string
	chatModel  string
	imageModel openai.ImageModel
	extra      []openaiopt.RequestOption
}

// WithAPIKey sets the API key. Without it the client falls back to the
// OPENAI_API_KEY environment variable.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithChatModel sets the chat model used for planning, reviews and captions.
func WithChatModel(name string) Option {
	return func(o *options) { o.chatModel = name }
}

// WithImageModel sets the image generation model.
func WithImageModel(name openai.ImageModel) Option {
	return func(o *options) { o.imageModel = name }
}

// WithRequestOptions forwards extra request options to the underlying client.
func WithRequestOptions(opts ...openaiopt.RequestOption) Option {
	return func(o *options) { o.extra = append(o.extra, opts...) }
}

// Client is the shared OpenAI client behind all collaborators.
type Client struct {
	client     openai.Client
	chatModel  string
	imageModel openai.ImageModel
}

// NewClient creates a client for the collaborator constructors.
func NewClient(opts ...Option) *Client {
	o := options{
		chatModel:  defaultChatModel,
		imageModel: defaultImageModel,
	}
	for _, opt := range opts {
		opt(&o)
	}
	var clientOpts []openaiopt.RequestOption
	if o.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.apiKey))
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.baseURL))
	}
	clientOpts = append(clientOpts, o.extra...)
	return &Client{
		client:     openai.NewClient(clientOpts...),
		chatModel:  o.chatModel,
		imageModel: o.imageModel,
	}
}

// complete runs a single chat completion and returns the reply text.
func (c *Client) complete(ctx context.Context, system string, history []model.Message, user string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, msg := range history {
		switch msg.Role {
		case model.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	if user != "" {
		messages = append(messages, openai.UserMessage(user))
	}
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.chatModel),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
