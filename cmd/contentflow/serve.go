//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/contentflow/contentflow/collaborator/openai"
	"github.com/contentflow/contentflow/config"
	"github.com/contentflow/contentflow/graph"
	checkpointinmemory "github.com/contentflow/contentflow/graph/checkpoint/inmemory"
	checkpointredis "github.com/contentflow/contentflow/graph/checkpoint/redis"
	"github.com/contentflow/contentflow/log"
	"github.com/contentflow/contentflow/publisher/social"
	"github.com/contentflow/contentflow/runner"
	"github.com/contentflow/contentflow/server"
	"github.com/contentflow/contentflow/telemetry/trace"
	"github.com/contentflow/contentflow/workflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workflow HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8000", "listen address")
	serveCmd.Flags().String("config", "", "generation config file (yaml)")
	serveCmd.Flags().String("checkpoint", "memory", "checkpoint backend (memory or redis)")
	serveCmd.Flags().String("redis-addr", "127.0.0.1:6379", "redis address for the redis backend")
	serveCmd.Flags().String("model", "", "chat model name")
	serveCmd.Flags().String("otel-endpoint", "", "OTLP trace endpoint, tracing disabled when empty")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if endpoint, _ := cmd.Flags().GetString("otel-endpoint"); endpoint != "" {
		clean, err := trace.Start(ctx,
			trace.WithEndpoint(endpoint),
			trace.WithServiceName("contentflow"))
		if err != nil {
			return fmt.Errorf("start tracing: %w", err)
		}
		defer func() {
			if err := clean(); err != nil {
				log.Warnf("shut down tracing: %v", err)
			}
		}()
	}

	provider, err := loadProvider(cmd)
	if err != nil {
		return err
	}
	saver, err := buildSaver(cmd)
	if err != nil {
		return err
	}
	defer saver.Close()

	w, err := buildWorkflow(cmd, provider)
	if err != nil {
		return err
	}
	rn, err := runner.New(w, saver)
	if err != nil {
		return err
	}
	defer rn.Close()

	addr, _ := cmd.Flags().GetString("addr")
	srv := &http.Server{
		Addr:    addr,
		Handler: server.New(rn, provider).Handler(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server: %w", err)
	case sig := <-shutdown:
		log.Infof("shutting down on signal %v", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("graceful shutdown incomplete: %v", err)
			return srv.Close()
		}
	}
	return nil
}

func loadProvider(cmd *cobra.Command) (*config.Provider, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.NewProvider(config.Default()), nil
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return config.NewProvider(cfg), nil
}

func buildSaver(cmd *cobra.Command) (graph.CheckpointSaver, error) {
	backend, _ := cmd.Flags().GetString("checkpoint")
	switch backend {
	case "memory":
		return checkpointinmemory.NewSaver(), nil
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		return checkpointredis.New(addr, os.Getenv("REDIS_PASSWORD"), 0, workflow.Schema()), nil
	}
	return nil, fmt.Errorf("unknown checkpoint backend %q", backend)
}

func buildWorkflow(cmd *cobra.Command, provider *config.Provider) (*workflow.Workflow, error) {
	var clientOpts []openai.Option
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		clientOpts = append(clientOpts, openai.WithChatModel(model))
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		clientOpts = append(clientOpts, openai.WithAPIKey(key))
	}
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(base))
	}
	client := openai.NewClient(clientOpts...)

	publisher := social.New(social.Config{
		LinkedIn: social.LinkedInConfig{
			AccessToken: os.Getenv("LINKEDIN_ACCESS_TOKEN"),
			OwnerURN:    os.Getenv("LINKEDIN_URN"),
		},
		Meta: social.MetaConfig{
			AccessToken: os.Getenv("META_ACCESS_TOKEN"),
			PageID:      os.Getenv("FB_PAGE_ID"),
			IGUserID:    os.Getenv("IG_USER_ID"),
		},
	})

	return workflow.New(workflow.Collaborators{
		Planner:   openai.NewPlanner(client),
		Media:     openai.NewMediaGenerator(client),
		Reviewer:  openai.NewReviewer(client),
		Captioner: openai.NewCaptioner(client),
		Publisher: publisher,
	}, provider)
}
