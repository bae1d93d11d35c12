// Package mocks provides testify mocks for the collaborator contracts.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/protocol"
)

// MockContentGenerator is a mock implementation of protocol.ContentGenerator.
type MockContentGenerator struct {
	mock.Mock
}

func (m *MockContentGenerator) GenerateNarration(ctx context.Context, title, topic string, targetLengthSec int) (string, error) {
	args := m.Called(ctx, title, topic, targetLengthSec)

	return args.String(0), args.Error(1)
}

func (m *MockContentGenerator) SplitScenes(ctx context.Context, title, narration, style, aspectRatio string, sceneCount int) ([]*models.WorkflowScene, error) {
	args := m.Called(ctx, title, narration, style, aspectRatio, sceneCount)

	scenes, _ := args.Get(0).([]*models.WorkflowScene)

	return scenes, args.Error(1)
}

func (m *MockContentGenerator) GenerateImages(ctx context.Context, jobID string, prompts []string, aspectRatio string, onProgress protocol.ImageProgress) ([]string, error) {
	args := m.Called(ctx, jobID, prompts, aspectRatio, onProgress)

	if onProgress != nil {
		for i := range prompts {
			onProgress(i+1, len(prompts))
		}
	}

	refs, _ := args.Get(0).([]string)

	return refs, args.Error(1)
}

func (m *MockContentGenerator) GenerateSpeech(ctx context.Context, jobID, text, voice string, speed float64) (string, error) {
	args := m.Called(ctx, jobID, text, voice, speed)

	return args.String(0), args.Error(1)
}

// MockRenderer is a mock implementation of protocol.Renderer.
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, req protocol.RenderRequest) (string, error) {
	args := m.Called(ctx, req)

	return args.String(0), args.Error(1)
}

// MockItemSource is a mock implementation of protocol.ItemSource.
type MockItemSource struct {
	mock.Mock
}

func (m *MockItemSource) ListReadyItems(ctx context.Context, sheetRef string) ([]*models.WorkItem, error) {
	args := m.Called(ctx, sheetRef)

	items, _ := args.Get(0).([]*models.WorkItem)

	return items, args.Error(1)
}

func (m *MockItemSource) MarkUploaded(ctx context.Context, itemID, videoURL string) error {
	args := m.Called(ctx, itemID, videoURL)

	return args.Error(0)
}

func (m *MockItemSource) MarkFailed(ctx context.Context, itemID, message string) error {
	args := m.Called(ctx, itemID, message)

	return args.Error(0)
}

// MockUploader is a mock implementation of protocol.Uploader.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, title, description string, tags []string, videoRef, privacy string) (string, error) {
	args := m.Called(ctx, title, description, tags, videoRef, privacy)

	return args.String(0), args.Error(1)
}
