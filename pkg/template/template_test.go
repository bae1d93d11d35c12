package template

import (
	"testing"

	"github.com/clipline/clipline/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestRenderText_PrimaryTitlePlaceholder(t *testing.T) {
	data := Context{Title: "Cold Brew 101"}

	out := RenderText(PrimaryTitlePlaceholder, "", "", data)
	assert.Equal(t, "Cold Brew 101", out)
}

func TestRenderText_Placeholders(t *testing.T) {
	data := Context{Title: "Cold Brew 101", Topic: "coffee", Keyword: "brew"}

	out := RenderText("{{title}} — all about {{topic}} ({{keyword}})", "", "", data)
	assert.Equal(t, "Cold Brew 101 — all about coffee (brew)", out)
}

func TestRenderText_LiteralFallback(t *testing.T) {
	data := Context{Title: "Cold Brew 101", Topic: "coffee"}

	out := RenderText("Watch: Latte Art Basics", "Latte Art Basics", "latte", data)
	assert.Equal(t, "Watch: Cold Brew 101", out)
}

func TestRenderText_Idempotent(t *testing.T) {
	data := Context{Title: "Cold Brew 101", Topic: "coffee"}

	cases := []string{
		PrimaryTitlePlaceholder,
		"{{title}} daily",
		"Watch: Latte Art Basics",
		"plain text without markers",
	}

	for _, text := range cases {
		once := RenderText(text, "Latte Art Basics", "latte", data)
		twice := RenderText(once, "Latte Art Basics", "latte", data)
		assert.Equal(t, once, twice, text)
	}
}

func TestRenderText_BadTemplateFallsBack(t *testing.T) {
	data := Context{Title: "Cold Brew 101"}

	// Unparseable braces leave the placeholder path and hit the literal fallback.
	out := RenderText("{{unclosed", "Latte Art Basics", "", data)
	assert.Equal(t, "{{unclosed", out)
}

func TestMaterialize_RewritesAllLayers(t *testing.T) {
	overlay := &models.OverlayOptions{
		TextLayers: []models.TextLayer{
			{Text: PrimaryTitlePlaceholder, X: 0.5, Y: 0.1},
			{Text: "{{keyword}} tips", X: 0.5, Y: 0.9},
		},
	}

	Materialize(overlay, "Latte Art Basics", "latte", Context{Title: "Cold Brew 101", Keyword: "brew"})

	assert.Equal(t, "Cold Brew 101", overlay.TextLayers[0].Text)
	assert.Equal(t, "brew tips", overlay.TextLayers[1].Text)
}
