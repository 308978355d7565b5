//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentflow/contentflow/artifact"
	"github.com/contentflow/contentflow/config"
	"github.com/contentflow/contentflow/graph"
	"github.com/contentflow/contentflow/model"
)

// Collaborator fakes. Each records the last call so tests can assert on how
// nodes invoke them.

type fakePlanner struct {
	reply        string
	err          error
	lastRequest  string
	lastFeedback string
	lastHistory  []model.Message
}

func (f *fakePlanner) Respond(ctx context.Context, history []model.Message, request, feedback string) (string, error) {
	f.lastHistory = history
	f.lastRequest = request
	f.lastFeedback = feedback
	return f.reply, f.err
}

type fakeMedia struct {
	art     *artifact.Artifact
	err     error
	lastCfg config.GenerationConfig
}

func (f *fakeMedia) Generate(ctx context.Context, brief string, cfg config.GenerationConfig) (*artifact.Artifact, error) {
	f.lastCfg = cfg
	return f.art, f.err
}

type fakeReviewer struct {
	report   string
	err      error
	lastKind string
}

func (f *fakeReviewer) Review(ctx context.Context, kind, content string) (string, error) {
	f.lastKind = kind
	return f.report, f.err
}

type fakeCaptioner struct {
	caption string
	err     error
}

func (f *fakeCaptioner) Caption(ctx context.Context, content string, cfg config.GenerationConfig) (string, error) {
	return f.caption, f.err
}

type fakePublisher struct {
	result       string
	err          error
	lastPlatform Platform
	lastCaption  string
	lastArtifact *artifact.Artifact
}

func (f *fakePublisher) Publish(ctx context.Context, platform Platform, art *artifact.Artifact, caption string) (string, error) {
	f.lastPlatform = platform
	f.lastArtifact = art
	f.lastCaption = caption
	return f.result, f.err
}

type fakes struct {
	planner   *fakePlanner
	media     *fakeMedia
	reviewer  *fakeReviewer
	captioner *fakeCaptioner
	publisher *fakePublisher
}

func newTestWorkflow(t *testing.T) (*Workflow, *fakes) {
	t.Helper()
	f := &fakes{
		planner:   &fakePlanner{reply: "A cosy plan.\nGENERATION_PROMPT: cosy cafe at dawn"},
		media:     &fakeMedia{art: &artifact.Artifact{URL: "https://cdn.test/img.png", MimeType: "image/png"}},
		reviewer:  &fakeReviewer{report: "verdict: pass"},
		captioner: &fakeCaptioner{caption: "CAPTION: Fresh mornings\nHASHTAGS: #coffee"},
		publisher: &fakePublisher{result: "post-123"},
	}
	w, err := New(Collaborators{
		Planner:   f.planner,
		Media:     f.media,
		Reviewer:  f.reviewer,
		Captioner: f.captioner,
		Publisher: f.publisher,
	}, config.NewProvider(config.Default()))
	require.NoError(t, err)
	return w, f
}

func TestNewRequiresAllCollaborators(t *testing.T) {
	_, err := New(Collaborators{}, nil)
	assert.Error(t, err)
}

func TestPlanNodeExtractsBrief(t *testing.T) {
	w, f := newTestWorkflow(t)
	state := NewSeedState("coffee shop launch post")

	delta, err := w.planNode(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, "coffee shop launch post", f.planner.lastRequest)
	assert.Empty(t, f.planner.lastFeedback)
	assert.Equal(t, "cosy cafe at dawn", delta[StateKeyBrief])
	assert.Equal(t, f.planner.reply, delta[StateKeyLastResponse])

	msgs := delta[StateKeyMessages].([]model.Message)
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleAssistant, msgs[0].Role)
}

func TestPlanNodePassesFeedbackOnlyForFeedbackActions(t *testing.T) {
	w, f := newTestWorkflow(t)

	state := NewSeedState("r")
	state[StateKeyAction] = ActionFeedbackIdeation
	state[StateKeyComment] = "make it warmer"
	delta, err := w.planNode(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "make it warmer", f.planner.lastFeedback)
	assert.Equal(t, "", delta[StateKeyComment], "comment is consumed")

	// A stale comment with a non-feedback action is ignored.
	state = NewSeedState("r")
	state[StateKeyAction] = ActionRunPolicy
	state[StateKeyComment] = "stale"
	_, err = w.planNode(context.Background(), state)
	require.NoError(t, err)
	assert.Empty(t, f.planner.lastFeedback)
}

func TestPlanNodeMissingMarkerKeepsBrief(t *testing.T) {
	w, f := newTestWorkflow(t)
	f.planner.reply = "just chatter, no marker"

	delta, err := w.planNode(context.Background(), NewSeedState("r"))
	require.NoError(t, err)
	_, present := delta[StateKeyBrief]
	assert.False(t, present)
}

func TestPlanNodeFailureFoldsIntoState(t *testing.T) {
	w, f := newTestWorkflow(t)
	f.planner.err = errors.New("model unavailable")

	delta, err := w.planNode(context.Background(), NewSeedState("r"))
	require.NoError(t, err, "collaborator failures must not abort the cycle")
	assert.Contains(t, delta[StateKeyLastResponse], "model unavailable")
}

func TestGenerateNodePrefersBrief(t *testing.T) {
	w, _ := newTestWorkflow(t)
	state := NewSeedState("raw request")
	state[StateKeyBrief] = "the brief"

	delta, err := w.generateNode(context.Background(), state)
	require.NoError(t, err)
	art := delta[StateKeyArtifact].(*artifact.Artifact)
	assert.Equal(t, "https://cdn.test/img.png", art.URL)
	assert.Equal(t, art.URL, delta[StateKeyLastResponse])
}

func TestReviewNodeRecordsReport(t *testing.T) {
	w, f := newTestWorkflow(t)
	node := w.reviewNode(ReportKindDesign)

	delta, err := node(context.Background(), NewSeedState("r"))
	require.NoError(t, err)
	assert.Equal(t, ReportKindDesign, f.reviewer.lastKind)
	reports := delta[StateKeyReports].(map[string]string)
	assert.Equal(t, "verdict: pass", reports[ReportKindDesign])
}

func TestPublishNodeUsesCaptionReport(t *testing.T) {
	w, f := newTestWorkflow(t)
	state := NewSeedState("r")
	state[StateKeyAction] = ActionPublishLinkedIn
	state[StateKeyArtifact] = &artifact.Artifact{URL: "https://cdn.test/img.png"}
	state[StateKeyReports] = map[string]string{
		ReportKindCaption: "CAPTION: Fresh mornings\nHASHTAGS: #coffee",
	}

	delta, err := w.publishNode(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, PlatformLinkedIn, f.publisher.lastPlatform)
	assert.Equal(t, "Fresh mornings", f.publisher.lastCaption)
	reports := delta[StateKeyReports].(map[string]string)
	assert.Contains(t, reports[ReportKindPublish], "post-123")
}

func TestPublishNodeWithoutArtifactFails(t *testing.T) {
	w, f := newTestWorkflow(t)
	state := NewSeedState("r")
	state[StateKeyAction] = ActionPublishFacebook

	delta, err := w.publishNode(context.Background(), state)
	require.NoError(t, err)
	assert.Nil(t, f.publisher.lastArtifact)
	assert.Contains(t, delta[StateKeyLastResponse], "no content has been generated")
}

func TestPublishNodeFailureRecordsReport(t *testing.T) {
	w, f := newTestWorkflow(t)
	f.publisher.err = errors.New("token expired")
	state := NewSeedState("r")
	state[StateKeyAction] = ActionPublishInstagram
	state[StateKeyArtifact] = &artifact.Artifact{URL: "https://cdn.test/img.png"}

	delta, err := w.publishNode(context.Background(), state)
	require.NoError(t, err)
	reports := delta[StateKeyReports].(map[string]string)
	assert.Contains(t, reports[ReportKindPublish], "token expired")
}

func TestTerminateNodeFarewell(t *testing.T) {
	w, _ := newTestWorkflow(t)
	delta, err := w.terminateNode(context.Background(), NewSeedState("r"))
	require.NoError(t, err)
	assert.Equal(t, "Thank you for using our service.", delta[StateKeyLastResponse])
}

func TestPublishCaptionFallbacks(t *testing.T) {
	assert.Equal(t, "New post", publishCaption(nil))
	assert.Equal(t, "New post", publishCaption(map[string]string{}))

	long := strings.Repeat("x", 600)
	got := publishCaption(map[string]string{ReportKindCaption: long})
	assert.Len(t, got, 500)

	got = publishCaption(map[string]string{ReportKindCaption: "plain caption, no markers"})
	assert.Equal(t, "plain caption, no markers", got)
}

func TestBuildCompiles(t *testing.T) {
	w, _ := newTestWorkflow(t)
	g, err := w.Build()
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, NodePlan, g.EntryPoint())
	assert.True(t, g.InterruptsBefore(NodeAwaitIdeation))
	assert.True(t, g.InterruptsBefore(NodeAwaitContent))
	assert.False(t, g.InterruptsBefore(NodeGenerate))
}

func TestRouteAfterIdeation(t *testing.T) {
	w, _ := newTestWorkflow(t)
	ctx := context.Background()

	next, err := w.routeAfterIdeation(ctx, graph.State{StateKeyAction: ActionApproveIdeation})
	require.NoError(t, err)
	assert.Equal(t, NodeGenerate, next)

	for _, action := range []Action{ActionFeedbackIdeation, ActionStart, Action("anything else"), Action("")} {
		next, err := w.routeAfterIdeation(ctx, graph.State{StateKeyAction: action})
		require.NoError(t, err)
		assert.Equal(t, NodePlan, next, string(action))
	}
}

func TestRouteAfterContent(t *testing.T) {
	w, _ := newTestWorkflow(t)
	ctx := context.Background()

	cases := map[Action]string{
		ActionApproveContent:   NodeTerminate,
		ActionRunPolicy:        NodePolicyReview,
		ActionRunDesign:        NodeDesignReview,
		ActionRunCaption:       NodeCaption,
		ActionPublishLinkedIn:  NodePublish,
		ActionPublishFacebook:  NodePublish,
		ActionPublishInstagram: NodePublish,
		ActionFeedbackContent:  NodePlan,
		Action("unmatched"):    NodePlan,
	}
	for action, want := range cases {
		next, err := w.routeAfterContent(ctx, graph.State{StateKeyAction: action})
		require.NoError(t, err)
		assert.Equal(t, want, next, string(action))
	}
}

func TestRouteAfterGenerateHonorsAutoCompliance(t *testing.T) {
	w, _ := newTestWorkflow(t)
	ctx := context.Background()

	next, err := w.routeAfterGenerate(ctx, graph.State{})
	require.NoError(t, err)
	assert.Equal(t, NodeAwaitContent, next)

	cfg := w.config.Get()
	cfg.AutoComplianceCheck = true
	w.config.Set(cfg)

	next, err = w.routeAfterGenerate(ctx, graph.State{})
	require.NoError(t, err)
	assert.Equal(t, NodePolicyReview, next)
}
