package clients

import (
	"context"
	"fmt"
	"net/url"

	"github.com/clipline/clipline/pkg/models"
)

// SheetSource implements protocol.ItemSource against a sheet gateway
// service. The gateway filters on its side to rows carrying an explicit
// ready marker.
type SheetSource struct {
	client *Client
}

func NewSheetSource(client *Client) *SheetSource {
	return &SheetSource{client: client}
}

func (s *SheetSource) ListReadyItems(ctx context.Context, sheetRef string) ([]*models.WorkItem, error) {
	var out struct {
		Items []*models.WorkItem `json:"items"`
	}

	path := "/v1/items?ready=true"
	if sheetRef != "" {
		path += "&sheet=" + url.QueryEscape(sheetRef)
	}

	if err := s.client.getJSON(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("item listing failed: %w", err)
	}

	return out.Items, nil
}

func (s *SheetSource) MarkUploaded(ctx context.Context, itemID, videoURL string) error {
	err := s.client.postJSON(ctx, "/v1/items/"+url.PathEscape(itemID)+"/uploaded", map[string]any{
		"video_url": videoURL,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to mark item uploaded: %w", err)
	}

	return nil
}

func (s *SheetSource) MarkFailed(ctx context.Context, itemID, message string) error {
	err := s.client.postJSON(ctx, "/v1/items/"+url.PathEscape(itemID)+"/failed", map[string]any{
		"message": message,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to mark item failed: %w", err)
	}

	return nil
}
