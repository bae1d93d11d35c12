package protocol

import (
	"context"

	"github.com/clipline/clipline/pkg/models"
)

// RenderRequest carries everything the external renderer needs for one pass.
type RenderRequest struct {
	JobID             string
	ImageRefs         []string
	AudioRef          string
	SubtitleText      string
	TitleText         string
	Options           models.RenderOptions
	TargetDurationSec int
	Final             bool // false renders a preview
}

// Renderer produces a preview or final video from assembled assets.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (string, error)
}
