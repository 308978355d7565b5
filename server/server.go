//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

// Package server exposes the workflow over HTTP: staging endpoints for new
// and resumed sessions, a server-sent-events stream per cycle, and the
// generation preferences endpoint.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/contentflow/contentflow/config"
	"github.com/contentflow/contentflow/event"
	"github.com/contentflow/contentflow/graph"
	"github.com/contentflow/contentflow/log"
	"github.com/contentflow/contentflow/runner"
	"github.com/contentflow/contentflow/workflow"
)

// Server routes the workflow HTTP surface.
type Server struct {
	runner   *runner.Runner
	provider *config.Provider
	router   *mux.Router
}

// Option configures the Server instance.
type Option func(*Server)

// New creates the HTTP server over the given runner and configuration
// provider.
func New(rn *runner.Runner, provider *config.Provider, opts ...Option) *Server {
	s := &Server{
		runner:   rn,
		provider: provider,
		router:   mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/workflow/stream/create",
		s.handleCreate).Methods(http.MethodPost)
	s.router.HandleFunc("/workflow/stream/resume",
		s.handleResume).Methods(http.MethodPost)
	s.router.HandleFunc("/workflow/stream/{thread_id}",
		s.handleStream).Methods(http.MethodGet)
	s.router.HandleFunc("/workflow/status/{thread_id}",
		s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/config", s.handleGetConfig).Methods(http.MethodGet)
	s.router.HandleFunc("/config", s.handleSetConfig).Methods(http.MethodPost)
}

type createRequest struct {
	Request string `json:"human_request"`
}

type resumeRequest struct {
	ThreadID string `json:"thread_id"`
	Action   string `json:"action"`
	Comment  string `json:"human_comment,omitempty"`
}

type threadResponse struct {
	ThreadID  string `json:"thread_id"`
	RunStatus string `json:"run_status"`
}

type statusResponse struct {
	ThreadID string `json:"thread_id"`
	Status   string `json:"status"`
}

// handleCreate stages a new session for the request and returns its thread
// identifier. The first cycle runs when the stream endpoint is connected.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	sessionID, err := s.runner.StageStart(r.Context(), req.Request)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, threadResponse{ThreadID: sessionID, RunStatus: string(event.StatusPending)})
}

// handleResume stages a continuation of a paused session.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if req.ThreadID == "" {
		http.Error(w, "thread_id is required", http.StatusBadRequest)
		return
	}

	if err := s.runner.StageResume(r.Context(), req.ThreadID, req.Action, req.Comment); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, threadResponse{ThreadID: req.ThreadID, RunStatus: string(event.StatusPending)})
}

// handleStream runs the staged cycle for the thread and streams its events
// as server-sent events. The stream ends after the terminal status or error
// event.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["thread_id"]

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, err := s.runner.Stream(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for evt := range events {
		data, err := json.Marshal(evt)
		if err != nil {
			log.Errorf("session %s: marshal event: %v", sessionID, err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
	log.Infof("session %s: stream closed", sessionID)
}

// handleStatus reports the current run status of a session.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["thread_id"]
	status, err := s.runner.Status(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, statusResponse{ThreadID: sessionID, Status: string(status)})
}

// handleGetConfig returns the current generation preferences.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.provider.Get())
}

// handleSetConfig replaces the generation preferences. Values are sanitized
// rather than rejected, and the applied configuration is returned.
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.GenerationConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	s.writeJSON(w, s.provider.Set(cfg.Sanitize()))
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("write response: %v", err)
	}
}

// writeError maps staging and session errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, runner.ErrEmptyRequest),
		errors.Is(err, workflow.ErrUnknownAction):
		status = http.StatusBadRequest
	case errors.Is(err, graph.ErrCheckpointNotFound),
		errors.Is(err, runner.ErrNoPendingRun):
		status = http.StatusNotFound
	case errors.Is(err, graph.ErrNotPaused),
		errors.Is(err, graph.ErrSessionFinished),
		errors.Is(err, runner.ErrSessionBusy):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}
