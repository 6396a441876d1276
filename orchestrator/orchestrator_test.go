package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postforge/engagement"
	"postforge/errs"
	"postforge/eventbus"
	"postforge/events"
	"postforge/models"
	"postforge/orchestrator"
	"postforge/quota"
	"postforge/retry"
	"postforge/scoring"
	"postforge/storage"
)

// fakeAI implements genclient.Generator and genclient.Translator.
type fakeAI struct {
	mu             sync.Mutex
	calls          int
	failPlatforms  map[string]bool
	stallPlatforms map[string]bool
	longPost       bool
	failTranslate  bool
}

func (f *fakeAI) bump() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeAI) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAI) GeneratePost(ctx context.Context, prompt string) (string, error) {
	f.bump()
	for p, stall := range f.stallPlatforms {
		if stall && strings.Contains(prompt, p) {
			<-ctx.Done()
			return "", ctx.Err()
		}
	}
	for p, fail := range f.failPlatforms {
		if fail && strings.Contains(prompt, p) {
			return "", errors.New("model overloaded")
		}
	}
	if f.longPost {
		return "An exceptionally sophisticated demonstration of incomprehensibly multisyllabic vocabulary. " +
			strings.Repeat("Go now. ", 40), nil
	}
	return "Check out our new eco-friendly water bottle! It keeps drinks cold all day. 🌱", nil
}

func (f *fakeAI) ExtractTopics(context.Context, string, int) ([]string, error) {
	f.bump()
	return []string{"eco-friendly", "water bottle", "sustainability"}, nil
}

func (f *fakeAI) SuggestHashtags(_ context.Context, _ []string, count int, language string) ([]string, error) {
	f.bump()
	out := make([]string, count)
	for i := range out {
		out[i] = fmt.Sprintf("#%s%d", language, i)
	}
	return out, nil
}

func (f *fakeAI) Translate(_ context.Context, text, _, dstLang string) (string, error) {
	f.bump()
	if f.failTranslate {
		return "", errors.New("translation unavailable")
	}
	return "[" + dstLang + "] " + text, nil
}

// fakeRecords is an in-memory orchestrator.RecordStore.
type fakeRecords struct {
	mu      sync.Mutex
	byID    map[string]models.ContentRecord
	history []models.ContentRecord
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{byID: make(map[string]models.ContentRecord)}
}

func (f *fakeRecords) Insert(_ context.Context, rec *models.ContentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[rec.ContentID] = *rec
	return nil
}

func (f *fakeRecords) FindByContentID(_ context.Context, contentID string) (*models.ContentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byID[contentID]
	if !ok {
		return nil, errs.NotFound("content not found")
	}
	return &rec, nil
}

func (f *fakeRecords) ListRecentByUser(_ context.Context, _ string, _ int) ([]models.ContentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history, nil
}

func (f *fakeRecords) DeleteByContentID(_ context.Context, contentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[contentID]; !ok {
		return errs.NotFound("content not found")
	}
	delete(f.byID, contentID)
	return nil
}

type fixture struct {
	ai      *fakeAI
	records *fakeRecords
	blobs   *storage.MemoryBlobStore
	quota   *quota.MemoryStore
	bus     *eventbus.MemoryPublisher
	orch    *orchestrator.Orchestrator
}

func newFixture(ai *fakeAI) *fixture {
	return newFixtureWithDeadline(ai, 10*time.Second)
}

func newFixtureWithDeadline(ai *fakeAI, deadline time.Duration) *fixture {
	f := &fixture{
		ai:      ai,
		records: newFakeRecords(),
		blobs:   storage.NewMemoryBlobStore(),
		quota:   quota.NewMemoryStore(),
		bus:     eventbus.NewMemoryPublisher(),
	}
	f.orch = orchestrator.New(orchestrator.Deps{
		Generator:  ai,
		Translator: ai,
		Blobs:      f.blobs,
		Records:    f.records,
		Quota:      quota.NewGuard(f.quota, quota.DefaultMaxStorageBytes),
		Bus:        f.bus,
		Retrier:    retry.NewWithDelays([]time.Duration{0}),
		AuditTopic: "postforge.audit",
		Deadline:   deadline,
	})
	return f
}

func eventTypes(bus *eventbus.MemoryPublisher) []string {
	var out []string
	for _, ev := range bus.Events() {
		out = append(out, ev.Type)
	}
	return out
}

func TestGenerateRejectsShortInput(t *testing.T) {
	f := newFixture(&fakeAI{})

	_, err := f.orch.Generate(context.Background(), "u1", orchestrator.Request{
		ContentInput: "too short",
		Formats:      []string{"twitter"},
	})

	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, 0, f.ai.totalCalls())
}

func TestGenerateRejectsUnknownFormatAndLanguage(t *testing.T) {
	f := newFixture(&fakeAI{})

	_, err := f.orch.Generate(context.Background(), "u1", orchestrator.Request{
		ContentInput: "a perfectly valid input text",
		Formats:      []string{"myspace"},
	})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = f.orch.Generate(context.Background(), "u1", orchestrator.Request{
		ContentInput:   "a perfectly valid input text",
		TargetLanguage: "tlh",
		Formats:        []string{"twitter"},
	})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = f.orch.Generate(context.Background(), "u1", orchestrator.Request{
		ContentInput: "a perfectly valid input text",
	})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	assert.Equal(t, 0, f.ai.totalCalls())
}

func TestGenerateRejectsUserAtQuotaCeiling(t *testing.T) {
	f := newFixture(&fakeAI{})
	ctx := context.Background()

	ok, err := f.quota.ReserveBytes(ctx, "u1", quota.DefaultMaxStorageBytes, quota.DefaultMaxStorageBytes)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.orch.Generate(ctx, "u1", orchestrator.Request{
		ContentInput: "Launching our new eco-friendly water bottle line next week!",
		Formats:      []string{"twitter"},
	})

	assert.Equal(t, errs.KindQuotaExceeded, errs.KindOf(err))
	assert.Equal(t, 0, f.ai.totalCalls())
	assert.Equal(t, 0, f.blobs.Len())
}

func TestGenerateHappyPath(t *testing.T) {
	f := newFixture(&fakeAI{})
	ctx := context.Background()

	rec, err := f.orch.Generate(ctx, "u1", orchestrator.Request{
		ContentInput:   "Launching our new eco-friendly water bottle line next week!",
		TargetLanguage: "en",
		Formats:        []string{"instagram", "twitter"},
	})
	require.NoError(t, err)

	// Response order follows request order, not completion order.
	assert.Equal(t, []string{"instagram", "twitter"}, rec.Formats)

	require.Contains(t, rec.GeneratedFormats, "instagram")
	require.Contains(t, rec.GeneratedFormats, "twitter")
	for p, gf := range rec.GeneratedFormats {
		assert.NotEmpty(t, gf.Text, p)
		assert.Equal(t, "en", gf.Language, p)
		assert.False(t, gf.TranslationFallback, p)
		assert.Greater(t, gf.CharacterCount, 0, p)
	}

	assert.GreaterOrEqual(t, len(rec.Hashtags["instagram"]), 10)
	assert.LessOrEqual(t, len(rec.Hashtags["instagram"]), 30)
	assert.GreaterOrEqual(t, len(rec.Hashtags["twitter"]), 3)
	assert.LessOrEqual(t, len(rec.Hashtags["twitter"]), 5)

	for p, m := range rec.EngagementPredictions {
		assert.GreaterOrEqual(t, m.EstimatedLikes, 0, p)
		assert.GreaterOrEqual(t, m.EstimatedShares, 0, p)
		assert.GreaterOrEqual(t, m.EstimatedComments, 0, p)
		assert.Equal(t, engagement.ConfidenceWithoutHistory, m.ConfidenceScore, p)
	}

	timing := 0
	for _, s := range rec.OptimizationSuggestions {
		if s.Type == models.SuggestionTiming {
			timing++
		}
	}
	assert.Equal(t, 2, timing, "one timing suggestion per surviving format")

	// Persistence side effects.
	assert.Equal(t, 2, f.blobs.Len())
	stored, err := f.records.FindByContentID(ctx, rec.ContentID)
	require.NoError(t, err)
	assert.Equal(t, rec.ContentID, stored.ContentID)

	used, err := f.quota.UsedBytes(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, rec.StorageBytes, used)
	assert.Greater(t, used, int64(0))

	assert.Contains(t, eventTypes(f.bus), string(events.ContentGenerationCompleted))
}

func TestGenerateTranslationFallbackKeepsRequestSuccessful(t *testing.T) {
	f := newFixture(&fakeAI{failTranslate: true})

	rec, err := f.orch.Generate(context.Background(), "u1", orchestrator.Request{
		ContentInput:   "Launching our new eco-friendly water bottle line next week!",
		TargetLanguage: "es",
		Formats:        []string{"twitter"},
	})
	require.NoError(t, err)

	gf := rec.GeneratedFormats["twitter"]
	assert.Equal(t, "en", gf.Language)
	assert.True(t, gf.TranslationFallback)
}

func TestGenerateTranslatedFormatsReportTargetLanguage(t *testing.T) {
	f := newFixture(&fakeAI{})

	rec, err := f.orch.Generate(context.Background(), "u1", orchestrator.Request{
		ContentInput:   "Launching our new eco-friendly water bottle line next week!",
		TargetLanguage: "es",
		Formats:        []string{"twitter"},
	})
	require.NoError(t, err)

	gf := rec.GeneratedFormats["twitter"]
	assert.Equal(t, "es", gf.Language)
	assert.False(t, gf.TranslationFallback)
}

func TestGenerateOmitsFailedFormat(t *testing.T) {
	f := newFixture(&fakeAI{failPlatforms: map[string]bool{"twitter": true}})

	rec, err := f.orch.Generate(context.Background(), "u1", orchestrator.Request{
		ContentInput: "Launching our new eco-friendly water bottle line next week!",
		Formats:      []string{"instagram", "twitter"},
	})
	require.NoError(t, err)

	assert.Contains(t, rec.GeneratedFormats, "instagram")
	assert.NotContains(t, rec.GeneratedFormats, "twitter")
	assert.NotEmpty(t, rec.FailedFormats["twitter"])
	assert.Equal(t, 1, f.blobs.Len())
}

func TestGenerateFailsWhenAllFormatsFail(t *testing.T) {
	f := newFixture(&fakeAI{failPlatforms: map[string]bool{"instagram": true, "twitter": true}})
	ctx := context.Background()

	_, err := f.orch.Generate(ctx, "u1", orchestrator.Request{
		ContentInput: "Launching our new eco-friendly water bottle line next week!",
		Formats:      []string{"instagram", "twitter"},
	})

	assert.Equal(t, errs.KindServiceFailure, errs.KindOf(err))
	assert.True(t, errs.IsRetryable(err))
	assert.Equal(t, 0, f.blobs.Len())

	used, qerr := f.quota.UsedBytes(ctx, "u1")
	require.NoError(t, qerr)
	assert.Equal(t, int64(0), used)

	assert.Contains(t, eventTypes(f.bus), string(events.ContentGenerationFailed))
}

func TestGenerateDeadlineTreatsPendingUnitsAsFailed(t *testing.T) {
	ai := &fakeAI{stallPlatforms: map[string]bool{"linkedin": true}}
	f := newFixtureWithDeadline(ai, 200*time.Millisecond)
	ctx := context.Background()

	_, err := f.orch.Generate(ctx, "u1", orchestrator.Request{
		ContentInput: "Launching our new eco-friendly water bottle line next week!",
		Formats:      []string{"twitter", "linkedin"},
	})

	assert.Equal(t, errs.KindTimeout, errs.KindOf(err))

	// Nothing is persisted once the deadline has elapsed.
	assert.Equal(t, 0, f.blobs.Len())
	used, qerr := f.quota.UsedBytes(ctx, "u1")
	require.NoError(t, qerr)
	assert.Equal(t, int64(0), used)

	// The completed unit is still recorded on the audit trail.
	var failedEv *eventbus.Event
	for _, ev := range f.bus.Events() {
		if ev.Type == string(events.ContentGenerationFailed) {
			ev := ev
			failedEv = &ev
		}
	}
	require.NotNil(t, failedEv)

	var payload events.ContentGenerationFailedEvent
	require.NoError(t, json.Unmarshal(failedEv.Payload, &payload))
	assert.Contains(t, payload.PartialFormats, "twitter")
	assert.Contains(t, payload.FailedFormats["linkedin"], "deadline exceeded")
}

func TestGenerateScoresDescribeTrimmedText(t *testing.T) {
	f := newFixture(&fakeAI{longPost: true})

	rec, err := f.orch.Generate(context.Background(), "u1", orchestrator.Request{
		ContentInput: "Launching our new eco-friendly water bottle line next week!",
		Formats:      []string{"twitter"},
	})
	require.NoError(t, err)

	gf := rec.GeneratedFormats["twitter"]
	assert.LessOrEqual(t, utf8.RuneCountInString(gf.Text), 280)
	assert.Equal(t, utf8.RuneCountInString(gf.Text), gf.CharacterCount)
	assert.Equal(t, scoring.ExtractFeatures(gf.Text).Readability, gf.ReadabilityScore,
		"readability must describe the trimmed text, not the pre-trim draft")
}

func TestGenerateUsesHistoryForConfidence(t *testing.T) {
	f := newFixture(&fakeAI{})
	f.records.history = []models.ContentRecord{
		{
			EngagementPredictions: map[string]models.EngagementMetrics{
				"twitter": {EstimatedLikes: 80, EstimatedShares: 30, EstimatedComments: 12},
			},
		},
	}

	rec, err := f.orch.Generate(context.Background(), "u1", orchestrator.Request{
		ContentInput: "Launching our new eco-friendly water bottle line next week!",
		Formats:      []string{"twitter"},
	})
	require.NoError(t, err)

	assert.Equal(t, engagement.ConfidenceWithHistory, rec.EngagementPredictions["twitter"].ConfidenceScore)
}

func TestGenerateDeduplicatesRequestedFormats(t *testing.T) {
	f := newFixture(&fakeAI{})

	rec, err := f.orch.Generate(context.Background(), "u1", orchestrator.Request{
		ContentInput: "Launching our new eco-friendly water bottle line next week!",
		Formats:      []string{"twitter", "twitter", "instagram"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"twitter", "instagram"}, rec.Formats)
	assert.Len(t, rec.GeneratedFormats, 2)
}
