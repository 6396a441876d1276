package optimizer_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"postforge/models"
	"postforge/optimizer"
	"postforge/platforms"
	"postforge/scoring"
)

func countType(suggestions []models.OptimizationSuggestion, typ string) int {
	n := 0
	for _, s := range suggestions {
		if s.Type == typ {
			n++
		}
	}
	return n
}

func TestOptimizeAlwaysEmitsExactlyOneTimingSuggestion(t *testing.T) {
	o := optimizer.NewOptimizer()
	for _, p := range platforms.All() {
		text := "A perfectly reasonable post for " + string(p) + "."
		res := o.Optimize(text, p, scoring.ExtractFeatures(text))
		assert.Equal(t, 1, countType(res.Suggestions, models.SuggestionTiming), string(p))
	}
}

func TestOptimizeTrimsOverLimitContent(t *testing.T) {
	o := optimizer.NewOptimizer()
	long := strings.Repeat("word ", 100) // ~500 chars, over twitter's 280
	f := scoring.ExtractFeatures(long)

	res := o.Optimize(long, platforms.Twitter, f)

	assert.LessOrEqual(t, utf8.RuneCountInString(res.Text), 280)
	assert.Equal(t, 1, countType(res.Suggestions, models.SuggestionLength))
}

func TestOptimizeAdvisesOnShortContentWithoutTrimming(t *testing.T) {
	o := optimizer.NewOptimizer()
	short := "Tiny update today." // under linkedin's optimal minimum
	f := scoring.ExtractFeatures(short)

	res := o.Optimize(short, platforms.LinkedIn, f)

	assert.Equal(t, short, res.Text)
	assert.Equal(t, 1, countType(res.Suggestions, models.SuggestionLength))
}

func TestOptimizeFlagsLowReadability(t *testing.T) {
	o := optimizer.NewOptimizer()
	dense := "Organizational restructuring necessitates comprehensive reconceptualization of interdepartmental communication methodologies."
	f := scoring.ExtractFeatures(dense)

	res := o.Optimize(dense, platforms.LinkedIn, f)

	assert.GreaterOrEqual(t, countType(res.Suggestions, models.SuggestionReadability), 1)
}

func TestOptimizeFlagsNeutralTone(t *testing.T) {
	o := optimizer.NewOptimizer()
	neutral := "The warehouse reopens on Monday at nine."
	f := scoring.ExtractFeatures(neutral)

	res := o.Optimize(neutral, platforms.Twitter, f)

	assert.Equal(t, 1, countType(res.Suggestions, models.SuggestionTone))
}

func TestOptimizeSuggestionsAreComplete(t *testing.T) {
	o := optimizer.NewOptimizer()
	text := strings.Repeat("dense exhaustive verbiage ", 20)
	f := scoring.ExtractFeatures(text)

	res := o.Optimize(text, platforms.Twitter, f)

	for _, s := range res.Suggestions {
		assert.NotEmpty(t, s.Message, s.Type)
		assert.NotEmpty(t, s.Reasoning, s.Type)
		assert.NotEmpty(t, s.Platform, s.Type)
	}
}
