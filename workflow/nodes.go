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
	"fmt"
	"strings"

	"github.com/contentflow/contentflow/graph"
	"github.com/contentflow/contentflow/log"
	"github.com/contentflow/contentflow/model"
)

// briefMarker separates the plan's human summary from the structured
// generation brief in the planner output.
const briefMarker = "GENERATION_PROMPT:"

// Caption markers bounding the postable caption in the captioner output.
const (
	captionMarker  = "CAPTION:"
	hashtagsMarker = "HASHTAGS:"
)

// maxCaptionFallback caps the caption length when no marker is present.
const maxCaptionFallback = 500

// terminateMessage is the closing message of every finished session.
const terminateMessage = "Thank you for using our service."

// planNode drafts or revises the content plan. Feedback comments are
// consumed here and cleared from state so a later revision does not reuse
// them.
func (w *Workflow) planNode(ctx context.Context, state graph.State) (graph.State, error) {
	request := stateString(state, StateKeyRequest)
	var feedback string
	if comment := stateString(state, StateKeyComment); comment != "" && stateAction(state).IsFeedback() {
		feedback = comment
	}
	reply, err := w.planner.Respond(ctx, stateMessages(state), request, feedback)
	if err != nil {
		return failureDelta("planning", err), nil
	}
	delta := graph.State{
		StateKeyMessages:     []model.Message{model.NewAssistantMessage(reply)},
		StateKeyLastResponse: reply,
		StateKeyComment:      "",
	}
	if brief, ok := extractBrief(reply); ok {
		delta[StateKeyBrief] = brief
	} else {
		log.Warnf("plan reply missing %s marker, keeping previous brief", briefMarker)
	}
	return delta, nil
}

// generateNode produces the media asset from the current brief. A missing
// brief falls back to the raw request.
func (w *Workflow) generateNode(ctx context.Context, state graph.State) (graph.State, error) {
	brief := stateString(state, StateKeyBrief)
	if brief == "" {
		brief = stateString(state, StateKeyRequest)
	}
	art, err := w.media.Generate(ctx, brief, w.config.Get())
	if err != nil {
		return failureDelta("content generation", err), nil
	}
	summary := fmt.Sprintf("Generated %s content: %s", art.MimeType, art.URL)
	return graph.State{
		StateKeyArtifact:     art,
		StateKeyMessages:     []model.Message{model.NewAssistantMessage(summary)},
		StateKeyLastResponse: art.URL,
	}, nil
}

// reviewNode builds the node function for one compliance review kind.
func (w *Workflow) reviewNode(kind string) graph.NodeFunc {
	return func(ctx context.Context, state graph.State) (graph.State, error) {
		report, err := w.reviewer.Review(ctx, kind, reviewSubject(state))
		if err != nil {
			return failureDelta(kind+" review", err), nil
		}
		return graph.State{
			StateKeyReports:      map[string]string{kind: report},
			StateKeyMessages:     []model.Message{model.NewAssistantMessage(report)},
			StateKeyLastResponse: report,
		}, nil
	}
}

// captionNode generates a caption for the current content.
func (w *Workflow) captionNode(ctx context.Context, state graph.State) (graph.State, error) {
	caption, err := w.captioner.Caption(ctx, reviewSubject(state), w.config.Get())
	if err != nil {
		return failureDelta("caption generation", err), nil
	}
	return graph.State{
		StateKeyReports:      map[string]string{ReportKindCaption: caption},
		StateKeyMessages:     []model.Message{model.NewAssistantMessage(caption)},
		StateKeyLastResponse: caption,
	}, nil
}

// publishNode posts the generated asset to the platform selected by the
// resume action. Publish failures are folded into state like any other
// collaborator failure so the session stays resumable.
func (w *Workflow) publishNode(ctx context.Context, state graph.State) (graph.State, error) {
	platform, err := stateAction(state).PublishPlatform()
	if err != nil {
		return failureDelta("publishing", err), nil
	}
	art := stateArtifact(state)
	if art == nil {
		return failureDelta("publishing", errors.New("no content has been generated yet")), nil
	}
	caption := publishCaption(stateReports(state))
	result, err := w.publisher.Publish(ctx, platform, art, caption)
	if err != nil {
		failure := fmt.Sprintf("Publishing to %s failed: %v", platform, err)
		delta := failureDelta("publishing", err)
		delta[StateKeyReports] = map[string]string{ReportKindPublish: failure}
		return delta, nil
	}
	summary := fmt.Sprintf("Published to %s: %s", platform, result)
	return graph.State{
		StateKeyReports:      map[string]string{ReportKindPublish: summary},
		StateKeyMessages:     []model.Message{model.NewAssistantMessage(summary)},
		StateKeyLastResponse: summary,
	}, nil
}

// terminateNode closes the session with the standard farewell.
func (w *Workflow) terminateNode(ctx context.Context, state graph.State) (graph.State, error) {
	return graph.State{
		StateKeyMessages:     []model.Message{model.NewAssistantMessage(terminateMessage)},
		StateKeyLastResponse: terminateMessage,
	}, nil
}

// failureDelta folds a collaborator failure into state instead of failing
// the cycle. The session pauses again at the next interrupt point and the
// human decides how to proceed.
func failureDelta(stage string, err error) graph.State {
	text := fmt.Sprintf("The %s step failed: %v. You can retry, adjust your request, or choose another action.", stage, err)
	log.Errorf("%s failed: %v", stage, err)
	return graph.State{
		StateKeyMessages:     []model.Message{model.NewAssistantMessage(text)},
		StateKeyLastResponse: text,
	}
}

// reviewSubject is the text reviews and captioning operate on: the brief
// when present, otherwise the raw request, with the asset URL appended when
// content exists.
func reviewSubject(state graph.State) string {
	subject := stateString(state, StateKeyBrief)
	if subject == "" {
		subject = stateString(state, StateKeyRequest)
	}
	if art := stateArtifact(state); art != nil {
		subject = subject + "\n\nGenerated asset: " + art.URL
	}
	return subject
}

// extractBrief returns the generation brief following the marker, if any.
func extractBrief(reply string) (string, bool) {
	idx := strings.Index(reply, briefMarker)
	if idx < 0 {
		return "", false
	}
	brief := strings.TrimSpace(reply[idx+len(briefMarker):])
	if brief == "" {
		return "", false
	}
	return brief, true
}

// publishCaption derives the postable caption from the caption report. The
// text between the caption and hashtags markers is preferred; without
// markers the raw report is truncated, and without a report a neutral
// placeholder is used.
func publishCaption(reports map[string]string) string {
	report := strings.TrimSpace(reports[ReportKindCaption])
	if report == "" {
		return "New post"
	}
	text := report
	if idx := strings.Index(text, captionMarker); idx >= 0 {
		text = text[idx+len(captionMarker):]
	}
	if idx := strings.Index(text, hashtagsMarker); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = report
	}
	if len(text) > maxCaptionFallback {
		text = text[:maxCaptionFallback]
	}
	return text
}
