package scoring

import "strings"

var positiveWords = map[string]struct{}{
	"amazing": {}, "awesome": {}, "best": {}, "better": {}, "brilliant": {},
	"delighted": {}, "eco-friendly": {}, "excellent": {}, "excited": {},
	"exciting": {}, "fantastic": {}, "free": {}, "great": {}, "happy": {},
	"improved": {}, "innovative": {}, "launch": {}, "launching": {},
	"love": {}, "new": {}, "perfect": {}, "proud": {}, "stunning": {},
	"success": {}, "thrilled": {}, "win": {}, "wonderful": {},
}

var negativeWords = map[string]struct{}{
	"awful": {}, "bad": {}, "broken": {}, "delay": {}, "delayed": {},
	"disappointed": {}, "fail": {}, "failed": {}, "failure": {},
	"hate": {}, "issue": {}, "loss": {}, "never": {}, "poor": {},
	"problem": {}, "sad": {}, "terrible": {}, "unfortunately": {},
	"worse": {}, "worst": {}, "wrong": {},
}

// Sentiment returns a signed score in [-1,1]. Zero means neutral or no
// recognized sentiment-bearing words.
func Sentiment(text string) float64 {
	pos, neg := 0, 0
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if _, ok := positiveWords[w]; ok {
			pos++
		}
		if _, ok := negativeWords[w]; ok {
			neg++
		}
	}

	total := pos + neg
	if total == 0 {
		return 0
	}

	score := float64(pos-neg) / float64(total)
	// Damp single-word signals so one "new" does not read as euphoria.
	if total < 3 {
		score *= float64(total) / 3
	}
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}
