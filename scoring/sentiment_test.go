package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"postforge/scoring"
)

func TestSentimentPositive(t *testing.T) {
	score := scoring.Sentiment("We are thrilled and excited about this amazing, wonderful launch!")
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestSentimentNegative(t *testing.T) {
	score := scoring.Sentiment("Terrible launch, awful product, everything is broken and delayed.")
	assert.Less(t, score, 0.0)
	assert.GreaterOrEqual(t, score, -1.0)
}

func TestSentimentNeutral(t *testing.T) {
	assert.Equal(t, 0.0, scoring.Sentiment("The quarterly report covers twelve regions."))
}

func TestSentimentSingleWordIsDamped(t *testing.T) {
	// One positive word should not read as maximum enthusiasm.
	score := scoring.Sentiment("Our product ships in three sizes, including a new color.")
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 0.5)
}
