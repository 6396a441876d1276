// Package platforms is the closed table of supported platforms and their
// immutable per-platform configuration. Rules are indexed by a fixed
// enumeration rather than free-form strings so a typo cannot select an
// empty configuration.
package platforms

import (
	"fmt"
	"strings"
)

type Platform string

const (
	Instagram Platform = "instagram"
	Twitter   Platform = "twitter"
	LinkedIn  Platform = "linkedin"
)

// All returns the supported platforms in declaration order.
func All() []Platform {
	return []Platform{Instagram, Twitter, LinkedIn}
}

// Parse maps a request tag to a Platform.
func Parse(s string) (Platform, bool) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case Instagram:
		return Instagram, true
	case Twitter:
		return Twitter, true
	case LinkedIn:
		return LinkedIn, true
	}
	return "", false
}

// Baseline is the industry-average engagement starting point for one
// platform, scaled by the predictor's feature multiplier.
type Baseline struct {
	Likes    int
	Shares   int
	Comments int
}

// Rules is the immutable configuration record for one platform.
type Rules struct {
	MaxChars      int
	OptimalMin    int
	OptimalMax    int
	MinHashtags   int
	MaxHashtags   int
	Baseline      Baseline
	PostingWindow string
	ToneHint      string
}

var rulesTable = map[Platform]Rules{
	Instagram: {
		MaxChars:      2200,
		OptimalMin:    138,
		OptimalMax:    150,
		MinHashtags:   10,
		MaxHashtags:   30,
		Baseline:      Baseline{Likes: 100, Shares: 10, Comments: 15},
		PostingWindow: "11:00-13:00 on weekdays",
		ToneHint:      "visual, energetic, emoji-friendly",
	},
	Twitter: {
		MaxChars:      280,
		OptimalMin:    71,
		OptimalMax:    100,
		MinHashtags:   3,
		MaxHashtags:   5,
		Baseline:      Baseline{Likes: 50, Shares: 25, Comments: 10},
		PostingWindow: "09:00-11:00 on weekdays",
		ToneHint:      "punchy, conversational",
	},
	LinkedIn: {
		MaxChars:      3000,
		OptimalMin:    1500,
		OptimalMax:    2000,
		MinHashtags:   3,
		MaxHashtags:   5,
		Baseline:      Baseline{Likes: 80, Shares: 15, Comments: 20},
		PostingWindow: "08:00-10:00 Tuesday through Thursday",
		ToneHint:      "professional, insight-driven",
	},
}

// RulesFor returns the configuration record for p.
// p always comes from the closed enumeration, so the lookup cannot miss.
func RulesFor(p Platform) Rules {
	return rulesTable[p]
}

// BuildPrompt renders the platform-specific generation prompt for the
// source content.
func BuildPrompt(p Platform, input string) string {
	r := rulesTable[p]
	return fmt.Sprintf(
		"Rewrite the following source content as a %s post.\n"+
			"Style: %s.\n"+
			"Hard limit: %d characters. Aim for %d-%d characters.\n"+
			"Do not include hashtags; they are added separately.\n"+
			"Respond with the post text only, no preamble.\n\n"+
			"Source content:\n%s",
		p, r.ToneHint, r.MaxChars, r.OptimalMin, r.OptimalMax, input,
	)
}
