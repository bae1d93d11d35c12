package automation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/clipline/clipline/pkg/events"
	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/otelhelper"
	"github.com/clipline/clipline/pkg/template"
)

// hashtagPattern extracts #hashtag tokens from free text. Tokens are
// lowercased before deduplication, so #Coffee and #COFFEE collapse.
var hashtagPattern = regexp.MustCompile(`#([A-Za-z0-9_]+)`)

// fatalSignatures mark credential and authorization failures. Retrying the
// next item cannot succeed past them, so they stop the whole run.
var fatalSignatures = []string{
	"401",
	"403",
	"unauthorized",
	"invalid credentials",
	"permission",
	"quota",
	"api key",
}

// fatal reports whether the error matches a credential/authorization
// signature.
func fatal(err error) bool {
	message := strings.ToLower(err.Error())

	for _, signature := range fatalSignatures {
		if strings.Contains(message, signature) {
			return true
		}
	}

	return false
}

// extractHashtags returns the lowercased, deduplicated hashtag tokens found
// in text, in first-seen order.
func extractHashtags(text string) []string {
	var tags []string

	seen := map[string]bool{}

	for _, match := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tag := strings.ToLower(match[1])
		if seen[tag] {
			continue
		}

		seen[tag] = true
		tags = append(tags, tag)
	}

	return tags
}

// deriveTags merges the run's default tags, the item keyword and the
// hashtags found in the item description, case-insensitively deduplicated.
func deriveTags(defaults []string, item *models.WorkItem) []string {
	var tags []string

	seen := map[string]bool{}

	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			return
		}

		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, tag := range defaults {
		add(tag)
	}

	add(item.Keyword)

	for _, tag := range extractHashtags(item.Description) {
		add(tag)
	}

	return tags
}

// buildDescription synthesizes the upload description from the item's topic
// and narration body plus its tags as hashtags.
func buildDescription(item *models.WorkItem, narration string, tags []string) string {
	var parts []string

	if item.Subject != "" {
		parts = append(parts, item.Subject)
	}

	if narration != "" {
		parts = append(parts, narration)
	}

	if len(tags) > 0 {
		hashtags := make([]string, len(tags))
		for i, tag := range tags {
			hashtags[i] = "#" + tag
		}

		parts = append(parts, strings.Join(hashtags, " "))
	}

	return strings.Join(parts, "\n\n")
}

// processOneItem drives one work item through the full workflow and, when
// the run publishes, uploads the result. The item is marked uploaded or
// failed on the source either way.
func (r *Runner) processOneItem(
	ctx context.Context,
	item *models.WorkItem,
	config models.ScheduleConfig,
	defaults models.TemplateSnapshot,
) error {
	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "automation.process_item",
		attribute.String(otelhelper.ItemIDKey, item.ID),
		attribute.String(otelhelper.RunIDKey, r.runID))
	defer span.End()

	tags := deriveTags(r.defaultTags, item)

	options := defaults.RenderOptions
	template.Materialize(&options.Overlay, defaults.SourceTitle, defaults.SourceTopic, template.Context{
		Title:     item.Subject,
		Topic:     item.Subject,
		Narration: item.Narration,
		Keyword:   item.Keyword,
	})

	workflow, err := r.drive(ctx, item, config, defaults, options)
	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.ItemIDKey, item.ID))
		r.markFailed(ctx, item.ID, err)
		r.publishItem(ctx, item.ID, "", false, err)

		return err
	}

	uploaded := false

	if config.UploadMode == models.UploadModePublish {
		description := buildDescription(item, workflow.Narration, tags)

		url, err := r.uploader.Upload(ctx,
			item.Subject, description, tags, workflow.FinalRef, config.PrivacyStatus)
		if err != nil {
			err = fmt.Errorf("upload failed: %w", err)
			r.markFailed(ctx, item.ID, err)
			r.publishItem(ctx, item.ID, workflow.ID, false, err)

			return err
		}

		uploaded = true

		if err := r.source.MarkUploaded(ctx, item.ID, url); err != nil {
			r.logger.WarnContext(ctx, "Failed to mark item uploaded",
				"item_id", item.ID, "error", err)
		}
	}

	r.appendLog("info", fmt.Sprintf("item %s: workflow %s reached %s",
		item.ID, workflow.ID, workflow.Stage))
	r.publishItem(ctx, item.ID, workflow.ID, uploaded, nil)

	return nil
}

// drive runs one item's workflow from brief to the terminal stage, bounded
// by maxStageAdvances as a runaway guard. The item supplies the content; the
// resolved defaults supply the operator's established style, voice and scene
// count.
func (r *Runner) drive(
	ctx context.Context,
	item *models.WorkItem,
	config models.ScheduleConfig,
	defaults models.TemplateSnapshot,
	options models.RenderOptions,
) (*models.VideoWorkflow, error) {
	brief := models.Brief{
		Title:      item.Subject,
		Topic:      item.Subject,
		Narration:  item.Narration,
		Style:      defaults.Style,
		Voice:      defaults.Voice,
		SceneCount: defaults.SceneCount,
	}

	workflow, err := r.workflows.Start(ctx, config.OperatorID, brief, options)
	if err != nil {
		return nil, fmt.Errorf("failed to start workflow: %w", err)
	}

	if workflow.Status == models.StatusFailed {
		return nil, fmt.Errorf("workflow %s failed: %s", workflow.ID, workflow.Error)
	}

	workflowID := workflow.ID

	for i := 0; i < maxStageAdvances; i++ {
		if workflow.Stage == models.StageFinalReady {
			return workflow, nil
		}

		workflow, err = r.workflows.Advance(ctx, workflowID)
		if err != nil {
			return nil, fmt.Errorf("failed to advance workflow %s: %w", workflowID, err)
		}

		if workflow.Status == models.StatusFailed {
			return nil, fmt.Errorf("workflow %s failed at %s: %s",
				workflow.ID, workflow.Stage, workflow.Error)
		}
	}

	if workflow.Stage != models.StageFinalReady {
		return nil, fmt.Errorf("workflow %s did not finish within %d advances",
			workflow.ID, maxStageAdvances)
	}

	return workflow, nil
}

func (r *Runner) markFailed(ctx context.Context, itemID string, cause error) {
	if err := r.source.MarkFailed(ctx, itemID, cause.Error()); err != nil {
		r.logger.WarnContext(ctx, "Failed to mark item failed",
			"item_id", itemID, "error", err)
	}
}

func (r *Runner) publishItem(ctx context.Context, itemID, workflowID string, uploaded bool, cause error) {
	event := events.ItemProcessed{
		BaseEvent:  r.baseEvent(events.ItemProcessedEvent),
		RunID:      r.runID,
		ItemID:     itemID,
		WorkflowID: workflowID,
		Uploaded:   uploaded,
	}

	if cause != nil {
		event.Error = cause.Error()
	}

	r.publish(ctx, event)
}
