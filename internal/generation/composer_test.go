package generation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleParams() Params {
	return Params{
		Category:    "nature",
		ContentType: ContentQuote,
		Theme:       "rivers",
		Tone:        "calm",
		Quantity:    3,
		WritingMode: WritingModeOriginalAI,
	}
}

func TestComposer_SubstitutesPlaceholders(t *testing.T) {
	c := NewComposer(nil)
	c.seed = func() string { return "seed" }

	prompt := c.Generate(context.Background(), "Write {{quantity}} {{type}}s about {{category}}, theme {{theme}}, tone {{tone}}, mode {{writingMode}}.", sampleParams())

	assert.Contains(t, prompt, "Write 3 quotes about nature, theme rivers, tone calm, mode originalAI.")
	assert.NotContains(t, prompt, "{{")
}

func TestComposer_EmptyTemplateUsesDefault(t *testing.T) {
	c := NewComposer(nil)
	prompt := c.Generate(context.Background(), "", sampleParams())

	assert.Contains(t, prompt, `Write 3 quotes for the category "nature"`)
}

func TestComposer_CategoryGuidanceAndOverride(t *testing.T) {
	override := func(ctx context.Context, category string) (string, bool) {
		if category == "nature" {
			return "Mention at least one specific species.", true
		}
		return "", false
	}

	c := NewComposer(override)
	prompt := c.Generate(context.Background(), "", sampleParams())

	assert.Contains(t, prompt, categoryGuidance["nature"])
	assert.Contains(t, prompt, "Mention at least one specific species.")
}

func TestComposer_InspirationalToneGuidance(t *testing.T) {
	c := NewComposer(nil)

	p := sampleParams()
	p.Tone = "Inspirational"
	prompt := c.Generate(context.Background(), "", p)
	assert.Contains(t, prompt, inspirationalGuidance)

	p.Tone = "melancholy"
	prompt = c.Generate(context.Background(), "", p)
	assert.NotContains(t, prompt, inspirationalGuidance)
}

func TestComposer_CompactModeForLongTemplates(t *testing.T) {
	c := NewComposer(nil)
	c.SetCompactThreshold(50)

	long := strings.Repeat("Detailed instructions. ", 10)
	prompt := c.Generate(context.Background(), long, sampleParams())
	assert.Contains(t, prompt, typeRules(ContentQuote, true))

	c2 := NewComposer(nil)
	prompt = c2.Generate(context.Background(), "short", sampleParams())
	assert.Contains(t, prompt, typeRules(ContentQuote, false))
}

func TestComposer_AlwaysAppendsContractAndSeed(t *testing.T) {
	c := NewComposer(nil)
	c.seed = func() string { return "request-seed: fixed" }

	prompt := c.Generate(context.Background(), "", sampleParams())
	assert.Contains(t, prompt, generateContract)
	assert.Contains(t, prompt, "request-seed: fixed")
}

func TestComposer_SeedVariesAcrossCalls(t *testing.T) {
	c := NewComposer(nil)

	p1 := c.Generate(context.Background(), "", sampleParams())
	p2 := c.Generate(context.Background(), "", sampleParams())
	assert.NotEqual(t, p1, p2)
}

func TestComposer_FindSourceEmbedsContent(t *testing.T) {
	c := NewComposer(nil)
	prompt := c.FindSource("", "The woods are lovely, dark and deep.")

	assert.Contains(t, prompt, "The woods are lovely, dark and deep.")
	assert.Contains(t, prompt, findSourceContract)
}

func TestComposer_AnalyzeUsesAnalysisContract(t *testing.T) {
	c := NewComposer(nil)

	assert.Contains(t, c.Analyze("", "text body here"), analysisContract)
	assert.Contains(t, c.Explain("", "text body here"), analysisContract)
}
