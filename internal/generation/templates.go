package generation

import "github.com/versecraft/versecraft/internal/prompts"

// Built-in templates used when no admin-saved prompt exists for a use
// case. Placeholders are substituted by literal replacement.
var defaultTemplates = map[prompts.UseCase]string{
	prompts.UseCaseGenerate: `Write {{quantity}} {{type}}s for the category "{{category}}".
Theme: {{theme}}. Tone: {{tone}}. Writing mode: {{writingMode}}.
Each piece should stand on its own and reward a second reading.`,

	prompts.UseCaseFindSource: `Identify the most likely author and original source of the following text.
Be conservative: if the attribution is disputed or you are not confident, say so.

Text:
{{content}}`,

	prompts.UseCaseExplain: `Explain the meaning of the following text for a general reader.
Point out the central idea and anything a first reading might miss.

Text:
{{content}}`,

	prompts.UseCaseAnalyze: `Provide a literary analysis of the following text: themes, literary
devices, metaphors, tone, style, and imagery.

Text:
{{content}}`,
}

// categoryGuidance adds a stylistic nudge per category. Unknown
// categories get no extra guidance.
var categoryGuidance = map[string]string{
	"love":       "Favor intimacy and specificity over grand declarations.",
	"life":       "Ground each piece in a concrete, everyday moment.",
	"nature":     "Use precise natural imagery; avoid generic landscapes.",
	"wisdom":     "Prefer plain language; let the insight carry the weight.",
	"motivation": "Avoid cliches of hustle culture; aim for quiet resolve.",
	"friendship": "Write about particular gestures, not friendship in the abstract.",
	"grief":      "Be gentle and unsentimental; never prescribe how to feel.",
	"found-made": "Blend the discovered and the invented; let seams show deliberately.",
}

const inspirationalGuidance = "Make each piece genuinely uplifting without being saccharine. " +
	"Earn the hope; do not assert it."

// typeRules returns length and format constraints per content type.
// The compact form is used when the admin-saved template is already
// long, to keep the total prompt manageable.
func typeRules(t ContentType, compact bool) string {
	if compact {
		switch t {
		case ContentPoem:
			return "Each poem: 4-12 lines, line breaks as \\n."
		case ContentReflection:
			return "Each reflection: 2-4 sentences, first person."
		default:
			return "Each quote: one or two sentences, under 240 characters."
		}
	}

	switch t {
	case ContentPoem:
		return "Each poem should run 4 to 12 lines. Preserve line breaks with \\n " +
			"inside the JSON string. Vary meter and structure between poems."
	case ContentReflection:
		return "Each reflection should be 2 to 4 sentences in the first person, " +
			"written as a private observation rather than advice."
	default:
		return "Each quote should be one or two sentences and under 240 characters, " +
			"aphoristic enough to be quoted on its own."
	}
}

// writingModeRules describes authorship expectations to the model.
// Attribution in the output is decided locally regardless of what the
// model returns.
func writingModeRules(mode WritingMode) string {
	if mode == WritingModeKnownWriters {
		return "Write each piece in the distinctive style of a well-known writer " +
			"suited to the category, without naming or quoting them directly."
	}
	return "Write wholly original content in your own voice. Do not imitate or " +
		"quote any real writer."
}

// jsonContracts fix the expected output schema per use case.
const (
	generateContract = `Return a JSON object of the form {"items": [{"content": "..."}]} ` +
		`with exactly the requested number of items and no other fields or text.`

	findSourceContract = `Return a single JSON object of the form ` +
		`{"author": "...", "source": "...", "confidence": "high"|"medium"|"low"}. ` +
		`Use "Unknown" for the author and "low" confidence when unsure.`

	analysisContract = `Return a single JSON object with the fields ` +
		`{"themes": [], "literary_devices": [], "metaphors": [], "tone": "", ` +
		`"style": "", "imagery": [], "summary": ""}. Omit nothing; use empty ` +
		`values where a field does not apply.`
)
