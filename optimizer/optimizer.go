// Package optimizer evaluates a rendering against its platform rules and
// emits optimization suggestions. Over-limit content is actually trimmed,
// not just flagged, so persisted text never exceeds the platform ceiling.
package optimizer

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"postforge/models"
	"postforge/platforms"
	"postforge/scoring"
)

type Optimizer struct{}

func NewOptimizer() *Optimizer {
	return &Optimizer{}
}

// Result carries the (possibly trimmed) text and the suggestion list.
type Result struct {
	Text        string
	Suggestions []models.OptimizationSuggestion
}

// Optimize runs every check independently. Exactly one timing suggestion is
// always present; the rest are conditional.
func (Optimizer) Optimize(text string, p platforms.Platform, f scoring.Features) Result {
	rules := platforms.RulesFor(p)
	var suggestions []models.OptimizationSuggestion

	if f.Readability < 60 {
		suggestions = append(suggestions, models.OptimizationSuggestion{
			Type:     models.SuggestionReadability,
			Platform: string(p),
			Message:  fmt.Sprintf("Readability score is %.0f; aim for 60 or higher.", f.Readability),
			Reasoning: "Shorter sentences and simpler words make posts easier to scan, " +
				"which correlates with higher engagement.",
		})
	}

	out := text
	if f.CharacterCount > rules.MaxChars {
		overflow := f.CharacterCount - rules.MaxChars
		out = trim(text, rules.MaxChars)
		suggestions = append(suggestions, models.OptimizationSuggestion{
			Type:     models.SuggestionLength,
			Platform: string(p),
			Message: fmt.Sprintf("Content exceeded the %d character limit by %d characters and was trimmed.",
				rules.MaxChars, overflow),
			Reasoning: fmt.Sprintf("%s rejects posts over %d characters, so the overflow was removed at a word boundary.",
				p, rules.MaxChars),
		})
	} else if f.CharacterCount < rules.OptimalMin {
		suggestions = append(suggestions, models.OptimizationSuggestion{
			Type:     models.SuggestionLength,
			Platform: string(p),
			Message: fmt.Sprintf("Content is %d characters; the optimal range for %s is %d-%d characters.",
				f.CharacterCount, p, rules.OptimalMin, rules.OptimalMax),
			Reasoning: "Posts inside the platform's optimal length range historically earn more engagement.",
		})
	}

	if math.Abs(f.Sentiment) < 0.2 {
		suggestions = append(suggestions, models.OptimizationSuggestion{
			Type:      models.SuggestionTone,
			Platform:  string(p),
			Message:   "Tone reads as neutral; consider a clearer emotional angle.",
			Reasoning: "Content with a distinct positive tone tends to outperform neutral copy.",
		})
	}

	// Timing advice is unconditional.
	suggestions = append(suggestions, models.OptimizationSuggestion{
		Type:      models.SuggestionTiming,
		Platform:  string(p),
		Message:   fmt.Sprintf("Post between %s for the best reach on %s.", rules.PostingWindow, p),
		Reasoning: "Audience activity on the platform peaks in this window.",
	})

	return Result{Text: out, Suggestions: suggestions}
}

// trim cuts text to at most max runes, preferring the last word boundary.
func trim(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:max])
	if idx := strings.LastIndexAny(cut, " \n\t"); idx > max/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \n\t")
}
