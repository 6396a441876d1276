// Package hashtags turns generated text into a ranked, deduplicated,
// platform-bounded hashtag selection.
package hashtags

import (
	"context"
	"sort"
	"strings"

	"postforge/config"
	"postforge/genclient"
	"postforge/platforms"
	"postforge/retry"
)

const maxTopics = 10

type Ranker struct {
	gen     genclient.Generator
	retrier *retry.Retrier
}

func NewRanker(gen genclient.Generator, retrier *retry.Retrier) *Ranker {
	return &Ranker{gen: gen, retrier: retrier}
}

type candidate struct {
	tag   string
	score float64
	order int
}

// Rank extracts topics from the text, requests candidates sized to the
// platform's target count, unions in source-language candidates for
// translated content, scores, sorts, and bounds the result.
//
// The returned count never exceeds the platform maximum. A short result is
// logged as an anomaly rather than padded with fabricated tags.
func (r *Ranker) Rank(ctx context.Context, text string, p platforms.Platform, language string) ([]string, error) {
	rules := platforms.RulesFor(p)

	var topics []string
	err := r.retrier.Do(ctx, "extract_topics", func(ctx context.Context) error {
		var err error
		topics, err = r.gen.ExtractTopics(ctx, text, maxTopics)
		return err
	})
	if err != nil {
		return nil, err
	}

	var raw []string
	err = r.retrier.Do(ctx, "suggest_hashtags", func(ctx context.Context) error {
		var err error
		raw, err = r.gen.SuggestHashtags(ctx, topics, rules.MaxHashtags, language)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Translated content also gets source-language candidates so the post
	// remains discoverable in both languages.
	if language != platforms.SourceLanguage {
		var extra []string
		err = r.retrier.Do(ctx, "suggest_hashtags_source", func(ctx context.Context) error {
			var err error
			extra, err = r.gen.SuggestHashtags(ctx, topics, rules.MaxHashtags, platforms.SourceLanguage)
			return err
		})
		if err == nil {
			raw = append(raw, extra...)
		} else {
			config.WarnWithFields("source-language hashtag candidates unavailable", config.Fields{
				"platform": string(p),
				"error":    err.Error(),
			})
		}
	}

	cands := dedupe(raw)
	lowerText := strings.ToLower(text)
	for i := range cands {
		cands[i].score = composite(cands[i], lowerText, topics, len(cands))
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})

	if len(cands) > rules.MaxHashtags {
		cands = cands[:rules.MaxHashtags]
	}
	if len(cands) < rules.MinHashtags {
		config.WarnWithFields("hashtag selection below platform minimum", config.Fields{
			"platform": string(p),
			"count":    len(cands),
			"min":      rules.MinHashtags,
		})
	}

	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.tag
	}
	return out, nil
}

// dedupe normalizes candidates to "#tag" form and removes case-insensitive
// duplicates, keeping the first occurrence.
func dedupe(raw []string) []candidate {
	seen := make(map[string]struct{}, len(raw))
	out := make([]candidate, 0, len(raw))
	for i, t := range raw {
		t = strings.TrimSpace(t)
		t = strings.ReplaceAll(t, " ", "")
		if t == "" || t == "#" {
			continue
		}
		if !strings.HasPrefix(t, "#") {
			t = "#" + t
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, candidate{tag: t, order: i})
	}
	return out
}

// composite blends content relevance, topic specificity and a popularity
// proxy (the generator's own ranking) into one score.
func composite(c candidate, lowerText string, topics []string, total int) float64 {
	core := strings.ToLower(strings.TrimPrefix(c.tag, "#"))

	relevance := 0.2
	if strings.Contains(lowerText, core) {
		relevance = 1.0
	} else {
		for _, topic := range topics {
			if strings.Contains(strings.ReplaceAll(strings.ToLower(topic), " ", ""), core) ||
				strings.Contains(core, strings.ReplaceAll(strings.ToLower(topic), " ", "")) {
				relevance = 0.6
				break
			}
		}
	}

	specificity := float64(len(core)) / 12
	if specificity > 1 {
		specificity = 1
	}

	popularity := 1.0
	if total > 1 {
		popularity = 1 - float64(c.order)/float64(total)
	}

	return 0.5*relevance + 0.3*specificity + 0.2*popularity
}
