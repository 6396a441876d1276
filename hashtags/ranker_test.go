package hashtags_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postforge/hashtags"
	"postforge/platforms"
	"postforge/retry"
)

type fakeGenerator struct {
	topics       []string
	topicsErr    error
	hashtagCalls []string // languages requested
	hashtagsErr  error
	tags         map[string][]string // language -> candidates
}

func (f *fakeGenerator) GeneratePost(context.Context, string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeGenerator) ExtractTopics(context.Context, string, int) ([]string, error) {
	if f.topicsErr != nil {
		return nil, f.topicsErr
	}
	return f.topics, nil
}

func (f *fakeGenerator) SuggestHashtags(_ context.Context, _ []string, count int, language string) ([]string, error) {
	f.hashtagCalls = append(f.hashtagCalls, language)
	if f.hashtagsErr != nil {
		return nil, f.hashtagsErr
	}
	if tags, ok := f.tags[language]; ok {
		return tags, nil
	}
	out := make([]string, count)
	for i := range out {
		out[i] = fmt.Sprintf("#%s%d", language, i)
	}
	return out, nil
}

func fastRetrier() *retry.Retrier {
	return retry.NewWithDelays([]time.Duration{0})
}

func TestRankBoundsPerPlatform(t *testing.T) {
	gen := &fakeGenerator{topics: []string{"eco", "water bottle"}}
	ranker := hashtags.NewRanker(gen, fastRetrier())

	for _, tc := range []struct {
		platform platforms.Platform
		min, max int
	}{
		{platforms.Instagram, 10, 30},
		{platforms.Twitter, 3, 5},
		{platforms.LinkedIn, 3, 5},
	} {
		tags, err := ranker.Rank(context.Background(), "our new eco water bottle", tc.platform, "en")
		require.NoError(t, err, string(tc.platform))
		assert.GreaterOrEqual(t, len(tags), tc.min, string(tc.platform))
		assert.LessOrEqual(t, len(tags), tc.max, string(tc.platform))
	}
}

func TestRankDeduplicatesCaseInsensitively(t *testing.T) {
	gen := &fakeGenerator{
		topics: []string{"eco"},
		tags: map[string][]string{
			"en": {"#Eco", "#eco", "#ECO", "#water", "#bottle", "#green", "#reuse"},
		},
	}
	ranker := hashtags.NewRanker(gen, fastRetrier())

	tags, err := ranker.Rank(context.Background(), "eco water bottle", platforms.Twitter, "en")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		assert.False(t, seen[lower], "duplicate tag %s", tag)
		seen[lower] = true
	}
}

func TestRankNormalizesHashPrefix(t *testing.T) {
	gen := &fakeGenerator{
		topics: []string{"eco"},
		tags: map[string][]string{
			"en": {"eco", "#water", "bottle life", "#green", "#reuse"},
		},
	}
	ranker := hashtags.NewRanker(gen, fastRetrier())

	tags, err := ranker.Rank(context.Background(), "eco water bottle", platforms.Twitter, "en")
	require.NoError(t, err)

	for _, tag := range tags {
		assert.True(t, strings.HasPrefix(tag, "#"), tag)
		assert.NotContains(t, tag, " ", tag)
	}
}

func TestRankUnionsSourceLanguageForTranslatedContent(t *testing.T) {
	gen := &fakeGenerator{
		topics: []string{"eco"},
		tags: map[string][]string{
			"es": {"#ecologico", "#botella", "#agua"},
			"en": {"#eco", "#bottle", "#water"},
		},
	}
	ranker := hashtags.NewRanker(gen, fastRetrier())

	tags, err := ranker.Rank(context.Background(), "botella de agua", platforms.Twitter, "es")
	require.NoError(t, err)

	assert.Contains(t, gen.hashtagCalls, "es")
	assert.Contains(t, gen.hashtagCalls, "en")
	assert.LessOrEqual(t, len(tags), 5)
}

func TestRankSurfacesTopicExtractionFailure(t *testing.T) {
	gen := &fakeGenerator{topicsErr: errors.New("model down")}
	ranker := hashtags.NewRanker(gen, fastRetrier())

	_, err := ranker.Rank(context.Background(), "eco water bottle", platforms.Twitter, "en")
	assert.Error(t, err)
}
