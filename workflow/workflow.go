//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

// Package workflow defines the content-production workflow: its state
// schema, the nodes that call external collaborators, the routers evaluated
// at the two human-approval interrupt points, and the graph assembly.
package workflow

import (
	"context"
	"fmt"

	"github.com/contentflow/contentflow/config"
	"github.com/contentflow/contentflow/event"
	"github.com/contentflow/contentflow/graph"
)

// Node identifiers of the workflow graph.
const (
	// NodePlan drafts or revises the content plan.
	NodePlan = "plan"
	// NodeAwaitIdeation is the interrupt point after planning.
	NodeAwaitIdeation = "await_ideation"
	// NodeGenerate produces the media asset from the brief.
	NodeGenerate = "generate"
	// NodeAwaitContent is the interrupt point after generation and after
	// every post-generation step.
	NodeAwaitContent = "await_content"
	// NodePolicyReview runs the policy compliance review.
	NodePolicyReview = "policy_review"
	// NodeDesignReview runs the design compliance review.
	NodeDesignReview = "design_review"
	// NodeCaption generates a caption for the content.
	NodeCaption = "caption"
	// NodePublish posts the content to the selected platform.
	NodePublish = "publish"
	// NodeTerminate is the sole terminal node.
	NodeTerminate = "terminate"
)

// Workflow wires the collaborators and generation preferences into an
// executable graph.
type Workflow struct {
	planner   PlanningAgent
	media     MediaGenerator
	reviewer  ComplianceReviewer
	captioner CaptionAgent
	publisher SocialPublisher
	config    *config.Provider
}

// New creates a workflow over the given collaborators. All collaborators
// are required; the provider may be nil, in which case defaults apply.
func New(c Collaborators, provider *config.Provider) (*Workflow, error) {
	if c.Planner == nil || c.Media == nil || c.Reviewer == nil || c.Captioner == nil || c.Publisher == nil {
		return nil, fmt.Errorf("all collaborators are required")
	}
	if provider == nil {
		provider = config.NewProvider(config.Default())
	}
	return &Workflow{
		planner:   c.Planner,
		media:     c.Media,
		reviewer:  c.Reviewer,
		captioner: c.Captioner,
		publisher: c.Publisher,
		config:    provider,
	}, nil
}

// Build compiles the workflow graph. The topology is fixed: planning loops
// through the ideation interrupt until approved, generation and every
// post-generation step loop through the content interrupt, and approval of
// the content terminates the run.
func (w *Workflow) Build() (*graph.Graph, error) {
	await := func(ctx context.Context, state graph.State) (graph.State, error) {
		// Interrupt points carry no behavior of their own.
		return nil, nil
	}
	return graph.NewStateGraph(Schema()).
		AddNode(NodePlan, w.planNode,
			graph.WithDescription("Draft or revise the content plan")).
		AddNode(NodeAwaitIdeation, await,
			graph.WithDescription("Pause for ideation approval or feedback")).
		AddNode(NodeGenerate, w.generateNode,
			graph.WithDescription("Generate the media asset from the brief")).
		AddNode(NodeAwaitContent, await,
			graph.WithDescription("Pause for content approval, reviews, captioning or publishing")).
		AddNode(NodePolicyReview, w.reviewNode(ReportKindPolicy),
			graph.WithDescription("Run the policy compliance review")).
		AddNode(NodeDesignReview, w.reviewNode(ReportKindDesign),
			graph.WithDescription("Run the design compliance review")).
		AddNode(NodeCaption, w.captionNode,
			graph.WithDescription("Generate a platform-aware caption")).
		AddNode(NodePublish, w.publishNode,
			graph.WithDescription("Publish the content to the selected platform")).
		AddNode(NodeTerminate, w.terminateNode,
			graph.WithDescription("Close the session")).
		SetEntryPoint(NodePlan).
		AddEdge(NodePlan, NodeAwaitIdeation).
		AddConditionalEdges(NodeAwaitIdeation, w.routeAfterIdeation, map[string]string{
			NodeGenerate: NodeGenerate,
			NodePlan:     NodePlan,
		}).
		AddConditionalEdges(NodeGenerate, w.routeAfterGenerate, map[string]string{
			NodePolicyReview: NodePolicyReview,
			NodeAwaitContent: NodeAwaitContent,
		}).
		AddConditionalEdges(NodeAwaitContent, w.routeAfterContent, map[string]string{
			NodeTerminate:    NodeTerminate,
			NodePlan:         NodePlan,
			NodePolicyReview: NodePolicyReview,
			NodeDesignReview: NodeDesignReview,
			NodeCaption:      NodeCaption,
			NodePublish:      NodePublish,
		}).
		AddEdge(NodePolicyReview, NodeAwaitContent).
		AddEdge(NodeDesignReview, NodeAwaitContent).
		AddEdge(NodeCaption, NodeAwaitContent).
		AddEdge(NodePublish, NodeAwaitContent).
		SetFinishPoint(NodeTerminate).
		InterruptBefore(NodeAwaitIdeation, NodeAwaitContent).
		Compile()
}

// InterruptStatuses maps each interrupt node to the run status reported when
// a cycle pauses there.
func InterruptStatuses() map[string]event.Status {
	return map[string]event.Status{
		NodeAwaitIdeation: event.StatusIdeationFeedback,
		NodeAwaitContent:  event.StatusContentFeedback,
	}
}

// ObservableNodes lists the nodes whose output is streamed as token events.
func ObservableNodes() map[string]struct{} {
	return map[string]struct{}{
		NodePlan:         {},
		NodeGenerate:     {},
		NodePolicyReview: {},
		NodeDesignReview: {},
		NodeCaption:      {},
		NodePublish:      {},
	}
}
