//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package workflow

import (
	"context"

	"github.com/contentflow/contentflow/graph"
)

// routeAfterIdeation decides where a resumed session goes after the
// ideation interrupt. Approval moves on to generation; every other action,
// including free-text feedback, loops back to planning.
func (w *Workflow) routeAfterIdeation(ctx context.Context, state graph.State) (string, error) {
	if stateAction(state) == ActionApproveIdeation {
		return NodeGenerate, nil
	}
	return NodePlan, nil
}

// routeAfterGenerate sends freshly generated content straight into the
// policy review when automatic compliance checking is enabled, otherwise to
// the content interrupt.
func (w *Workflow) routeAfterGenerate(ctx context.Context, state graph.State) (string, error) {
	if w.config.Get().AutoComplianceCheck {
		return NodePolicyReview, nil
	}
	return NodeAwaitContent, nil
}

// routeAfterContent decides where a resumed session goes after the content
// interrupt. Unmatched actions fall through to planning so the router stays
// total.
func (w *Workflow) routeAfterContent(ctx context.Context, state graph.State) (string, error) {
	action := stateAction(state)
	switch {
	case action == ActionApproveContent:
		return NodeTerminate, nil
	case action == ActionRunPolicy:
		return NodePolicyReview, nil
	case action == ActionRunDesign:
		return NodeDesignReview, nil
	case action == ActionRunCaption:
		return NodeCaption, nil
	case action.IsPublish():
		return NodePublish, nil
	}
	return NodePlan, nil
}
