package clients

import (
	"context"
	"fmt"

	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/protocol"
)

// ContentService implements protocol.ContentGenerator against an external
// content-generation HTTP service. Image batches are requested one prompt at
// a time so progress can be reported between scenes.
type ContentService struct {
	client *Client
}

func NewContentService(client *Client) *ContentService {
	return &ContentService{client: client}
}

func (s *ContentService) GenerateNarration(ctx context.Context, title, topic string, targetLengthSec int) (string, error) {
	var out struct {
		Narration string `json:"narration"`
	}

	err := s.client.postJSON(ctx, "/v1/narration", map[string]any{
		"title":             title,
		"topic":             topic,
		"target_length_sec": targetLengthSec,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("narration request failed: %w", err)
	}

	return out.Narration, nil
}

func (s *ContentService) SplitScenes(ctx context.Context, title, narration, style, aspectRatio string, sceneCount int) ([]*models.WorkflowScene, error) {
	var out struct {
		Scenes []*models.WorkflowScene `json:"scenes"`
	}

	err := s.client.postJSON(ctx, "/v1/scenes", map[string]any{
		"title":        title,
		"narration":    narration,
		"style":        style,
		"aspect_ratio": aspectRatio,
		"scene_count":  sceneCount,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("scene split request failed: %w", err)
	}

	return out.Scenes, nil
}

func (s *ContentService) GenerateImages(ctx context.Context, jobID string, prompts []string, aspectRatio string, onProgress protocol.ImageProgress) ([]string, error) {
	refs := make([]string, 0, len(prompts))

	for i, prompt := range prompts {
		var out struct {
			ImageRef string `json:"image_ref"`
		}

		err := s.client.postJSON(ctx, "/v1/images", map[string]any{
			"job_id":       jobID,
			"prompt":       prompt,
			"aspect_ratio": aspectRatio,
		}, &out)
		if err != nil {
			return nil, fmt.Errorf("image request %d/%d failed: %w", i+1, len(prompts), err)
		}

		refs = append(refs, out.ImageRef)

		if onProgress != nil {
			onProgress(i+1, len(prompts))
		}
	}

	return refs, nil
}

func (s *ContentService) GenerateSpeech(ctx context.Context, jobID, text, voice string, speed float64) (string, error) {
	var out struct {
		AudioRef string `json:"audio_ref"`
	}

	err := s.client.postJSON(ctx, "/v1/speech", map[string]any{
		"job_id": jobID,
		"text":   text,
		"voice":  voice,
		"speed":  speed,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("speech request failed: %w", err)
	}

	return out.AudioRef, nil
}
