package generation

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/versecraft/versecraft/internal/prompts"
)

// DefaultCompactThreshold is the admin-template length above which the
// composer switches to compact instruction fragments. Tunable, not a
// load-bearing contract.
const DefaultCompactThreshold = 600

// CategoryOverrideFunc looks up an externally-maintained guidance
// fragment for a category. Absence is not an error.
type CategoryOverrideFunc func(ctx context.Context, category string) (string, bool)

// Composer builds the final prompt from a template plus conditional
// guidance fragments. Fragments are assembled as explicit sections
// rather than ad hoc concatenation so their order is fixed.
type Composer struct {
	overrides        CategoryOverrideFunc
	compactThreshold int
	seed             func() string
}

// NewComposer creates a composer. overrides may be nil.
func NewComposer(overrides CategoryOverrideFunc) *Composer {
	return &Composer{
		overrides:        overrides,
		compactThreshold: DefaultCompactThreshold,
		seed:             requestSeed,
	}
}

// SetCompactThreshold overrides the compact-mode threshold.
func (c *Composer) SetCompactThreshold(n int) {
	if n > 0 {
		c.compactThreshold = n
	}
}

// Generate composes the prompt for content generation. An empty
// template falls back to the built-in default for the use case.
func (c *Composer) Generate(ctx context.Context, template string, p Params) string {
	if template == "" {
		template = defaultTemplates[prompts.UseCaseGenerate]
	}

	base := strings.NewReplacer(
		"{{category}}", p.Category,
		"{{type}}", string(p.ContentType),
		"{{theme}}", p.Theme,
		"{{tone}}", p.Tone,
		"{{quantity}}", strconv.Itoa(p.Quantity),
		"{{writingMode}}", string(p.WritingMode),
	).Replace(template)

	compact := len(base) > c.compactThreshold

	sections := []string{base}
	if g, ok := categoryGuidance[strings.ToLower(p.Category)]; ok {
		sections = append(sections, g)
	}
	if c.overrides != nil {
		if frag, ok := c.overrides(ctx, p.Category); ok && strings.TrimSpace(frag) != "" {
			sections = append(sections, frag)
		}
	}
	if strings.Contains(strings.ToLower(p.Tone), "inspir") {
		sections = append(sections, inspirationalGuidance)
	}
	sections = append(sections,
		typeRules(p.ContentType, compact),
		writingModeRules(p.WritingMode),
		generateContract,
		c.seed(),
	)

	return strings.Join(sections, "\n\n")
}

// FindSource composes the prompt for source lookup.
func (c *Composer) FindSource(template, content string) string {
	return c.contentPrompt(prompts.UseCaseFindSource, template, content, findSourceContract)
}

// Explain composes the prompt for the explain use case.
func (c *Composer) Explain(template, content string) string {
	return c.contentPrompt(prompts.UseCaseExplain, template, content, analysisContract)
}

// Analyze composes the prompt for the analyze use case.
func (c *Composer) Analyze(template, content string) string {
	return c.contentPrompt(prompts.UseCaseAnalyze, template, content, analysisContract)
}

func (c *Composer) contentPrompt(useCase prompts.UseCase, template, content, contract string) string {
	if template == "" {
		template = defaultTemplates[useCase]
	}
	base := strings.ReplaceAll(template, "{{content}}", content)

	return strings.Join([]string{base, contract, c.seed()}, "\n\n")
}

// requestSeed embeds a unique token so providers do not serve cached
// or repeated completions. A prompt-engineering mitigation, not a
// correctness mechanism.
func requestSeed() string {
	return fmt.Sprintf("request-seed: %d-%04d", time.Now().UnixNano(), rand.Intn(10000))
}
