package clients

import (
	"context"
	"fmt"

	"github.com/clipline/clipline/pkg/protocol"
)

// RenderService implements protocol.Renderer against an external render
// service.
type RenderService struct {
	client *Client
}

func NewRenderService(client *Client) *RenderService {
	return &RenderService{client: client}
}

func (s *RenderService) Render(ctx context.Context, req protocol.RenderRequest) (string, error) {
	var out struct {
		VideoRef string `json:"video_ref"`
	}

	err := s.client.postJSON(ctx, "/v1/render", map[string]any{
		"job_id":              req.JobID,
		"image_refs":          req.ImageRefs,
		"audio_ref":           req.AudioRef,
		"subtitle_text":       req.SubtitleText,
		"title_text":          req.TitleText,
		"options":             req.Options,
		"target_duration_sec": req.TargetDurationSec,
		"final":               req.Final,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("render request failed: %w", err)
	}

	return out.VideoRef, nil
}
