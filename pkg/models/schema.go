package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidRenderOptionsDocument indicates a render-options JSON document
// that does not match the schema.
var ErrInvalidRenderOptionsDocument = errors.New("invalid render options document")

// renderOptionsSchema rejects documents with wrong shapes or types at the
// import boundary. Range clamping and enum fallback still happen in
// Normalize; the schema only guards structure.
const renderOptionsSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"subtitle": {
			"type": "object",
			"properties": {
				"font_family": {"type": "string"},
				"font_size": {"type": "integer"},
				"text_color": {"type": "string"},
				"outline_color": {"type": "string"},
				"outline_width": {"type": "integer"},
				"shadow_depth": {"type": "integer"},
				"timing_offset_sec": {"type": "number"},
				"density": {"type": "string"},
				"cues": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["text"],
						"properties": {
							"start_sec": {"type": "number"},
							"end_sec": {"type": "number"},
							"text": {"type": "string"}
						}
					}
				}
			}
		},
		"overlay": {
			"type": "object",
			"properties": {
				"hide_title": {"type": "boolean"},
				"title_position": {"type": "string"},
				"title_font": {"type": "string"},
				"motion_preset": {"type": "string"},
				"motion_speed": {"type": "number"},
				"focus_x": {"type": "number"},
				"focus_y": {"type": "number"},
				"drift_percent": {"type": "number"},
				"zoom_factor": {"type": "number"},
				"frame_rate": {"type": "integer"},
				"canvas_layout": {"type": "string"},
				"text_layers": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["text"],
						"properties": {
							"text": {"type": "string"},
							"x": {"type": "number"},
							"y": {"type": "number"},
							"font_family": {"type": "string"},
							"font_size": {"type": "integer"}
						}
					}
				},
				"use_preview_as_final": {"type": "boolean"}
			}
		}
	}
}`

// ParseRenderOptionsJSON validates a render-options JSON document against the
// schema, decodes it and returns the normalized options.
func ParseRenderOptionsJSON(doc []byte) (RenderOptions, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(renderOptionsSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return RenderOptions{}, fmt.Errorf("%w: %w", ErrInvalidRenderOptionsDocument, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return RenderOptions{}, fmt.Errorf("%w: %s", ErrInvalidRenderOptionsDocument, strings.Join(details, "; "))
	}

	var opts RenderOptions
	if err := json.Unmarshal(doc, &opts); err != nil {
		return RenderOptions{}, fmt.Errorf("%w: %w", ErrInvalidRenderOptionsDocument, err)
	}

	opts.Normalize()

	return opts, nil
}
