package scoring

import (
	"strings"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"
)

// Features is the feature vector the engagement predictor scales its
// platform baseline with.
type Features struct {
	CharacterCount  int
	Readability     float64
	Sentiment       float64
	HasCallToAction bool
	EmojiCount      int
}

var ctaPhrases = []string{
	"check out", "click the link", "comment below", "dm us", "don't miss",
	"follow us", "get yours", "join us", "learn more", "let us know",
	"link in bio", "order now", "share your", "shop now", "sign up",
	"stay tuned", "subscribe", "tag a friend", "tell us", "visit our",
}

// ExtractFeatures computes the full feature vector for one rendering.
func ExtractFeatures(text string) Features {
	return Features{
		CharacterCount:  utf8.RuneCountInString(text),
		Readability:     Readability(text),
		Sentiment:       Sentiment(text),
		HasCallToAction: HasCallToAction(text),
		EmojiCount:      len(gomoji.CollectAll(text)),
	}
}

// HasCallToAction reports whether the text contains a known CTA phrase.
func HasCallToAction(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range ctaPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
