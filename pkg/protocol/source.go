package protocol

import (
	"context"

	"github.com/clipline/clipline/pkg/models"
)

// ItemSource lists and marks external work records. ListReadyItems is
// filtered on the source side to records carrying an explicit ready marker.
type ItemSource interface {
	ListReadyItems(ctx context.Context, sheetRef string) ([]*models.WorkItem, error)
	MarkUploaded(ctx context.Context, itemID, videoURL string) error
	MarkFailed(ctx context.Context, itemID, message string) error
}

// Uploader publishes a finished video and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, title, description string, tags []string, videoRef, privacy string) (string, error)
}
