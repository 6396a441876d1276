// Package engagement predicts likes/shares/comments for a rendering by
// scaling fixed per-platform baselines with a feature-derived multiplier.
package engagement

import (
	"math"

	"postforge/models"
	"postforge/platforms"
	"postforge/scoring"
)

// Confidence levels. A new user without history must never appear falsely
// confident, so the no-history value stays strictly below 0.5.
const (
	ConfidenceWithHistory    = 0.7
	ConfidenceWithoutHistory = 0.4
)

// History summarizes a user's past performance on one platform.
type History struct {
	AvgLikes    float64
	AvgShares   float64
	AvgComments float64
	Posts       int
}

type Predictor struct{}

func NewPredictor() *Predictor {
	return &Predictor{}
}

// Predict scales the platform baseline by the feature multiplier and, when
// history is present, by the user's historical multiplier. Outputs are
// floored and never negative.
func (Predictor) Predict(p platforms.Platform, f scoring.Features, hist *History) models.EngagementMetrics {
	rules := platforms.RulesFor(p)
	mult := featureMultiplier(rules, f)

	confidence := ConfidenceWithoutHistory
	if hist != nil && hist.Posts > 0 {
		mult *= historyMultiplier(rules.Baseline, hist)
		confidence = ConfidenceWithHistory
	}

	return models.EngagementMetrics{
		EstimatedLikes:    scale(rules.Baseline.Likes, mult),
		EstimatedShares:   scale(rules.Baseline.Shares, mult),
		EstimatedComments: scale(rules.Baseline.Comments, mult),
		ConfidenceScore:   confidence,
	}
}

func featureMultiplier(rules platforms.Rules, f scoring.Features) float64 {
	mult := 1.0
	if f.Readability >= 60 {
		mult += 0.2
	}
	if f.Sentiment > 0.2 {
		mult += 0.15
	} else if f.Sentiment < -0.2 {
		mult -= 0.1
	}
	if f.HasCallToAction {
		mult += 0.25
	}
	if f.EmojiCount >= 1 && f.EmojiCount <= 5 {
		mult += 0.1
	}
	if f.CharacterCount >= rules.OptimalMin && f.CharacterCount <= rules.OptimalMax {
		mult += 0.2
	}
	return mult
}

// historyMultiplier compares the user's mean total engagement with the
// platform baseline, clamped to [0.5, 2.0] so one viral post cannot
// dominate the prediction.
func historyMultiplier(base platforms.Baseline, hist *History) float64 {
	baseline := float64(base.Likes + base.Shares + base.Comments)
	if baseline == 0 {
		return 1
	}
	m := (hist.AvgLikes + hist.AvgShares + hist.AvgComments) / baseline
	if m < 0.5 {
		return 0.5
	}
	if m > 2 {
		return 2
	}
	return m
}

func scale(base int, mult float64) int {
	v := int(math.Floor(float64(base) * mult))
	if v < 0 {
		return 0
	}
	return v
}
