// Package template rewrites reusable overlay text templates for the item
// currently being processed, so one visual template can serve many items
// without per-item authoring.
package template

import (
	"strings"
	"text/template"

	"github.com/clipline/clipline/pkg/models"
)

// PrimaryTitlePlaceholder is the internal marker a saved template uses for
// the layer that carries the item's main title.
const PrimaryTitlePlaceholder = "__primary_title__"

// Context carries the item-specific values substituted into a template.
type Context struct {
	Title     string
	Topic     string
	Narration string
	Keyword   string
}

// Materialize rewrites every overlay text layer in place for the given item.
// sourceTitle/sourceTopic identify the item the template was authored
// against; literal occurrences of them are replaced when the layer carries
// no placeholders. Materialize is idempotent for a fixed Context.
func Materialize(overlay *models.OverlayOptions, sourceTitle, sourceTopic string, data Context) {
	for i := range overlay.TextLayers {
		overlay.TextLayers[i].Text = RenderText(overlay.TextLayers[i].Text, sourceTitle, sourceTopic, data)
	}
}

// RenderText materializes one template string. Resolution order: the primary
// title marker, then {{title}}/{{topic}}/{{narration}}/{{keyword}}
// placeholders, then literal source title/topic replacement as a fallback.
func RenderText(text, sourceTitle, sourceTopic string, data Context) string {
	out := strings.ReplaceAll(text, PrimaryTitlePlaceholder, data.Title)

	if strings.Contains(out, "{{") {
		rendered, err := renderPlaceholders(out, data)
		if err == nil {
			return rendered
		}
	}

	// Fallback for templates authored as literal text: swap the source
	// item's title/topic for the current item's. Skipped when the text
	// already carries the current title, which keeps repeat application
	// idempotent.
	if data.Title != "" && !strings.Contains(out, data.Title) {
		if sourceTitle != "" && sourceTitle != data.Title {
			out = strings.ReplaceAll(out, sourceTitle, data.Title)
		}
	}

	if data.Topic != "" && sourceTopic != "" && sourceTopic != data.Topic && !strings.Contains(out, data.Topic) {
		out = strings.ReplaceAll(out, sourceTopic, data.Topic)
	}

	return out
}

func renderPlaceholders(text string, data Context) (string, error) {
	tmpl, err := template.
		New("overlay").
		Funcs(template.FuncMap{
			"title":     func() string { return data.Title },
			"topic":     func() string { return data.Topic },
			"narration": func() string { return data.Narration },
			"keyword":   func() string { return data.Keyword },
		}).Parse(text)
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, nil)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}
