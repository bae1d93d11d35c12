package clients

import (
	"context"
	"fmt"
)

// VideoHost implements protocol.Uploader against a video hosting gateway.
type VideoHost struct {
	client *Client
}

func NewVideoHost(client *Client) *VideoHost {
	return &VideoHost{client: client}
}

func (s *VideoHost) Upload(ctx context.Context, title, description string, tags []string, videoRef, privacy string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}

	err := s.client.postJSON(ctx, "/v1/videos", map[string]any{
		"title":       title,
		"description": description,
		"tags":        tags,
		"video_ref":   videoRef,
		"privacy":     privacy,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}

	return out.URL, nil
}
