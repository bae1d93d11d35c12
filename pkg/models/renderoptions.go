package models

// RenderOptions is the normalized subtitle/overlay presentation configuration
// applied to every render call. It is always normalized before use: partial
// or absent input is completed with defaults, never rejected.
type RenderOptions struct {
	Subtitle SubtitleOptions `json:"subtitle"`
	Overlay  OverlayOptions  `json:"overlay"`
}

// SubtitleCue is one manually timed caption.
type SubtitleCue struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Text     string  `json:"text"`
}

// SubtitleOptions controls caption styling and timing.
type SubtitleOptions struct {
	FontFamily      string        `json:"font_family"`
	FontSize        int           `json:"font_size"` // 10..80
	TextColor       string        `json:"text_color"`
	OutlineColor    string        `json:"outline_color"`
	OutlineWidth    int           `json:"outline_width"`     // 0..8
	ShadowDepth     int           `json:"shadow_depth"`      // 0..8
	TimingOffsetSec float64       `json:"timing_offset_sec"` // -5..5
	Density         string        `json:"density"`           // sparse | normal | dense
	Cues            []SubtitleCue `json:"cues,omitempty"`
}

// TextLayer is one positioned text-template layer drawn over the video.
type TextLayer struct {
	Text       string  `json:"text"`
	X          float64 `json:"x"` // 0..1, fraction of canvas width
	Y          float64 `json:"y"` // 0..1, fraction of canvas height
	FontFamily string  `json:"font_family,omitempty"`
	FontSize   int     `json:"font_size,omitempty"`
}

// OverlayOptions controls title placement, camera motion and canvas output.
type OverlayOptions struct {
	HideTitle         bool        `json:"hide_title"`
	TitlePosition     string      `json:"title_position"` // top | center | bottom
	TitleFont         string      `json:"title_font"`
	MotionPreset      string      `json:"motion_preset"` // none | pan | zoom | drift
	MotionSpeed       float64     `json:"motion_speed"`  // 0.1..5.0
	FocusX            float64     `json:"focus_x"`       // 0..1
	FocusY            float64     `json:"focus_y"`       // 0..1
	DriftPercent      float64     `json:"drift_percent"` // 0..20
	ZoomFactor        float64     `json:"zoom_factor"`   // 1.0..2.0
	FrameRate         int         `json:"frame_rate"`    // 24 | 30 | 60
	CanvasLayout      string      `json:"canvas_layout"` // portrait | landscape | square
	TextLayers        []TextLayer `json:"text_layers,omitempty"`
	UsePreviewAsFinal bool        `json:"use_preview_as_final"`
}

// Defaults applied by Normalize for absent or out-of-range values.
const (
	DefaultSubtitleFont  = "Inter"
	DefaultFontSize      = 42
	DefaultTextColor     = "#FFFFFF"
	DefaultOutlineColor  = "#000000"
	DefaultOutlineWidth  = 2
	DefaultDensity       = "normal"
	DefaultTitlePosition = "top"
	DefaultTitleFont     = "Inter"
	DefaultMotionPreset  = "drift"
	DefaultMotionSpeed   = 1.0
	DefaultFocus         = 0.5
	DefaultDriftPercent  = 5.0
	DefaultZoomFactor    = 1.1
	DefaultFrameRate     = 30
	DefaultCanvasLayout  = "portrait"
)

// DefaultRenderOptions returns a fully populated option set.
func DefaultRenderOptions() RenderOptions {
	opts := RenderOptions{}
	opts.Normalize()

	return opts
}

// Normalize clamps every numeric field to its documented range, completes
// absent fields with defaults and replaces unrecognized enum values with
// their defaults. It is safe to call repeatedly.
func (o *RenderOptions) Normalize() {
	o.Subtitle.normalize()
	o.Overlay.normalize()
}

func (s *SubtitleOptions) normalize() {
	if s.FontFamily == "" {
		s.FontFamily = DefaultSubtitleFont
	}

	if s.FontSize == 0 {
		s.FontSize = DefaultFontSize
	}

	s.FontSize = clampInt(s.FontSize, 10, 80)

	if s.TextColor == "" {
		s.TextColor = DefaultTextColor
	}

	if s.OutlineColor == "" {
		s.OutlineColor = DefaultOutlineColor
	}

	s.OutlineWidth = clampInt(s.OutlineWidth, 0, 8)
	s.ShadowDepth = clampInt(s.ShadowDepth, 0, 8)
	s.TimingOffsetSec = clampFloat(s.TimingOffsetSec, -5, 5)

	switch s.Density {
	case "sparse", "normal", "dense":
	default:
		s.Density = DefaultDensity
	}

	for i := range s.Cues {
		if s.Cues[i].StartSec < 0 {
			s.Cues[i].StartSec = 0
		}

		if s.Cues[i].EndSec < s.Cues[i].StartSec {
			s.Cues[i].EndSec = s.Cues[i].StartSec
		}
	}
}

func (ov *OverlayOptions) normalize() {
	switch ov.TitlePosition {
	case "top", "center", "bottom":
	default:
		ov.TitlePosition = DefaultTitlePosition
	}

	if ov.TitleFont == "" {
		ov.TitleFont = DefaultTitleFont
	}

	switch ov.MotionPreset {
	case "none", "pan", "zoom", "drift":
	default:
		ov.MotionPreset = DefaultMotionPreset
	}

	if ov.MotionSpeed == 0 {
		ov.MotionSpeed = DefaultMotionSpeed
	}

	ov.MotionSpeed = clampFloat(ov.MotionSpeed, 0.1, 5.0)

	if ov.FocusX == 0 {
		ov.FocusX = DefaultFocus
	}

	if ov.FocusY == 0 {
		ov.FocusY = DefaultFocus
	}

	ov.FocusX = clampFloat(ov.FocusX, 0, 1)
	ov.FocusY = clampFloat(ov.FocusY, 0, 1)
	ov.DriftPercent = clampFloat(ov.DriftPercent, 0, 20)

	if ov.ZoomFactor == 0 {
		ov.ZoomFactor = DefaultZoomFactor
	}

	ov.ZoomFactor = clampFloat(ov.ZoomFactor, 1.0, 2.0)

	switch ov.FrameRate {
	case 24, 30, 60:
	default:
		ov.FrameRate = DefaultFrameRate
	}

	switch ov.CanvasLayout {
	case "portrait", "landscape", "square":
	default:
		ov.CanvasLayout = DefaultCanvasLayout
	}

	for i := range ov.TextLayers {
		ov.TextLayers[i].X = clampFloat(ov.TextLayers[i].X, 0, 1)
		ov.TextLayers[i].Y = clampFloat(ov.TextLayers[i].Y, 0, 1)

		if ov.TextLayers[i].FontSize != 0 {
			ov.TextLayers[i].FontSize = clampInt(ov.TextLayers[i].FontSize, 10, 80)
		}
	}
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}

	if v > maxV {
		return maxV
	}

	return v
}

func clampFloat(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}

	if v > maxV {
		return maxV
	}

	return v
}
