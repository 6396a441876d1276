// Package orchestrator implements the fan-out/fan-in core of the pipeline.
// One generation request becomes one independent unit of work per requested
// format; the orchestrator is the single join point, enforcing the overall
// deadline and aggregating partial results deterministically.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"postforge/config"
	"postforge/engagement"
	"postforge/errs"
	"postforge/eventbus"
	"postforge/events"
	"postforge/genclient"
	"postforge/hashtags"
	"postforge/models"
	"postforge/optimizer"
	"postforge/platforms"
	"postforge/quota"
	"postforge/retry"
	"postforge/scoring"
	"postforge/storage"
	"postforge/translation"
)

// DefaultDeadline bounds one whole generation request.
const DefaultDeadline = 30 * time.Second

// historyWindow is how many past records feed the engagement history.
const historyWindow = 20

// RecordStore is the metadata-store contract the pipeline consumes.
type RecordStore interface {
	Insert(ctx context.Context, rec *models.ContentRecord) error
	FindByContentID(ctx context.Context, contentID string) (*models.ContentRecord, error)
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]models.ContentRecord, error)
	DeleteByContentID(ctx context.Context, contentID string) error
}

// Request is an accepted generation request. Immutable once validated.
type Request struct {
	ContentInput   string
	TargetLanguage string
	Formats        []string
}

// Deps wires the orchestrator's collaborators. Everything is an interface
// or a stateless component so tests can substitute fakes.
type Deps struct {
	Generator  genclient.Generator
	Translator genclient.Translator
	Blobs      storage.BlobStore
	Records    RecordStore
	Quota      *quota.Guard
	Bus        eventbus.Publisher
	Retrier    *retry.Retrier
	AuditTopic string
	Deadline   time.Duration
}

type Orchestrator struct {
	gen        genclient.Generator
	translate  *translation.Step
	ranker     *hashtags.Ranker
	predictor  *engagement.Predictor
	optimizer  *optimizer.Optimizer
	blobs      storage.BlobStore
	records    RecordStore
	quota      *quota.Guard
	bus        eventbus.Publisher
	retrier    *retry.Retrier
	auditTopic string
	deadline   time.Duration
}

func New(deps Deps) *Orchestrator {
	retrier := deps.Retrier
	if retrier == nil {
		retrier = retry.New()
	}
	deadline := deps.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	return &Orchestrator{
		gen:        deps.Generator,
		translate:  translation.NewStep(deps.Translator, retrier),
		ranker:     hashtags.NewRanker(deps.Generator, retrier),
		predictor:  engagement.NewPredictor(),
		optimizer:  optimizer.NewOptimizer(),
		blobs:      deps.Blobs,
		records:    deps.Records,
		quota:      deps.Quota,
		bus:        deps.Bus,
		retrier:    retrier,
		auditTopic: deps.AuditTopic,
		deadline:   deadline,
	}
}

// unitOutcome is the result of one format's generate->translate path.
type unitOutcome struct {
	platform platforms.Platform
	text     string
	language string
	fallback bool
	err      error
}

// Generate runs the full pipeline for one request and returns the durable
// aggregate. Formats in the result follow the request order, not completion
// order.
func (o *Orchestrator) Generate(ctx context.Context, userID string, req Request) (*models.ContentRecord, error) {
	input, lang, formats, err := o.validate(req)
	if err != nil {
		return nil, err
	}

	// Admission control happens before any generation call is made.
	if err := o.quota.CheckAdmission(ctx, userID); err != nil {
		return nil, err
	}

	history := o.loadHistory(ctx, userID)

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()

	outcomes := o.fanOut(ctx, input, lang, formats)

	succeeded := make([]platforms.Platform, 0, len(formats))
	failed := make(map[string]string, len(formats))
	for _, p := range formats {
		out, ok := outcomes[p]
		switch {
		case !ok:
			failed[string(p)] = "deadline exceeded"
		case out.err != nil:
			failed[string(p)] = out.err.Error()
		default:
			succeeded = append(succeeded, p)
		}
	}
	for p, reason := range failed {
		config.ErrorWithFields("format unit failed", config.Fields{
			"platform": p,
			"reason":   reason,
			"user_id":  userID,
		})
	}

	if len(succeeded) == 0 {
		o.publishFailure(userID, "all requested formats failed", nil, failed, start)
		if ctx.Err() != nil {
			return nil, errs.Timeout("generation deadline exceeded")
		}
		return nil, errs.ServiceFailure("all requested formats failed", nil)
	}

	record := o.enrich(ctx, outcomes, succeeded, lang, history)
	record.UserID = userID
	record.SourceInput = input
	record.TargetLanguage = lang
	record.Formats = formatStrings(formats)
	record.FailedFormats = failed

	// The aggregate is only persisted while the overall deadline holds;
	// completed work is still written to the audit trail.
	if ctx.Err() != nil {
		o.publishFailure(userID, "deadline elapsed before persistence", platformStrings(succeeded), failed, start)
		return nil, errs.Timeout("generation deadline exceeded")
	}

	if err := o.persist(ctx, record); err != nil {
		o.publishFailure(userID, err.Error(), platformStrings(succeeded), failed, start)
		return nil, err
	}

	o.publishCompleted(record, start)
	return record, nil
}

func (o *Orchestrator) validate(req Request) (input, lang string, formats []platforms.Platform, err error) {
	input = strings.TrimSpace(req.ContentInput)
	if utf8.RuneCountInString(input) < 10 {
		return "", "", nil, errs.Validation("contentInput must be at least 10 characters")
	}

	lang = req.TargetLanguage
	if lang == "" {
		lang = platforms.SourceLanguage
	}
	if !platforms.IsSupportedLanguage(lang) {
		return "", "", nil, errs.Validation(fmt.Sprintf("unsupported target language %q", req.TargetLanguage))
	}

	if len(req.Formats) == 0 {
		return "", "", nil, errs.Validation("at least one format is required")
	}
	seen := make(map[platforms.Platform]struct{}, len(req.Formats))
	for _, f := range req.Formats {
		p, ok := platforms.Parse(f)
		if !ok {
			return "", "", nil, errs.Validation(fmt.Sprintf("unsupported format %q", f))
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		formats = append(formats, p)
	}
	return input, lang, formats, nil
}

// fanOut launches one unit of work per format and joins them under ctx's
// deadline. Units still pending when the deadline fires are abandoned;
// their late results are discarded with the buffered channel.
func (o *Orchestrator) fanOut(ctx context.Context, input, lang string, formats []platforms.Platform) map[platforms.Platform]unitOutcome {
	ch := make(chan unitOutcome, len(formats))
	for _, p := range formats {
		go func(p platforms.Platform) {
			ch <- o.runUnit(ctx, p, input, lang)
		}(p)
	}

	outcomes := make(map[platforms.Platform]unitOutcome, len(formats))
collect:
	for range formats {
		select {
		case out := <-ch:
			outcomes[out.platform] = out
		case <-ctx.Done():
			break collect
		}
	}
	return outcomes
}

// runUnit is one format's independent generate->translate path. Its failure
// never cancels sibling units.
func (o *Orchestrator) runUnit(ctx context.Context, p platforms.Platform, input, lang string) unitOutcome {
	prompt := platforms.BuildPrompt(p, input)

	var text string
	err := o.retrier.Do(ctx, "generate:"+string(p), func(ctx context.Context) error {
		var err error
		text, err = o.gen.GeneratePost(ctx, prompt)
		return err
	})
	if err != nil {
		return unitOutcome{platform: p, err: err}
	}

	tr := o.translate.Run(ctx, text, platforms.SourceLanguage, lang)
	return unitOutcome{
		platform: p,
		text:     tr.Text,
		language: tr.Language,
		fallback: tr.Fallback,
	}
}

// enrich scores, ranks, predicts and optimizes every surviving format.
// Formats are processed concurrently; suggestions are collected in request
// order so the response is deterministic.
func (o *Orchestrator) enrich(ctx context.Context, outcomes map[platforms.Platform]unitOutcome, succeeded []platforms.Platform, lang string, history map[platforms.Platform]*engagement.History) *models.ContentRecord {
	type enriched struct {
		format      models.GeneratedFormat
		tags        []string
		tagsOK      bool
		metrics     models.EngagementMetrics
		suggestions []models.OptimizationSuggestion
	}

	results := make([]enriched, len(succeeded))
	var wg sync.WaitGroup
	for i, p := range succeeded {
		wg.Add(1)
		go func(i int, p platforms.Platform) {
			defer wg.Done()
			out := outcomes[p]

			feats := scoring.ExtractFeatures(out.text)
			opt := o.optimizer.Optimize(out.text, p, feats)
			if opt.Text != out.text {
				// The trim changed the text; scores must describe what is
				// actually persisted and returned.
				feats = scoring.ExtractFeatures(opt.Text)
			}

			results[i].format = models.GeneratedFormat{
				Platform:            string(p),
				Text:                opt.Text,
				Language:            out.language,
				CharacterCount:      utf8.RuneCountInString(opt.Text),
				ReadabilityScore:    feats.Readability,
				TranslationFallback: out.fallback,
			}
			results[i].suggestions = opt.Suggestions
			results[i].metrics = o.predictor.Predict(p, feats, history[p])

			tags, err := o.ranker.Rank(ctx, opt.Text, p, out.language)
			if err != nil {
				config.WarnWithFields("hashtag ranking failed", config.Fields{
					"platform": string(p),
					"error":    err.Error(),
				})
				return
			}
			results[i].tags = tags
			results[i].tagsOK = true
		}(i, p)
	}
	wg.Wait()

	record := &models.ContentRecord{
		ContentID:             uuid.NewString(),
		CreatedAt:             time.Now().UTC(),
		GeneratedFormats:      make(map[string]models.GeneratedFormat, len(succeeded)),
		Hashtags:              make(map[string][]string, len(succeeded)),
		EngagementPredictions: make(map[string]models.EngagementMetrics, len(succeeded)),
	}
	for _, r := range results {
		record.GeneratedFormats[r.format.Platform] = r.format
		record.EngagementPredictions[r.format.Platform] = r.metrics
		if r.tagsOK {
			record.Hashtags[r.format.Platform] = r.tags
		}
		record.OptimizationSuggestions = append(record.OptimizationSuggestions, r.suggestions...)
	}
	return record
}

// persist reserves quota for the actual bytes, writes one blob per format,
// then inserts the metadata record. Any failure unwinds the reservation.
func (o *Orchestrator) persist(ctx context.Context, record *models.ContentRecord) error {
	var total int64
	for _, f := range record.GeneratedFormats {
		total += int64(len(f.Text))
	}
	record.StorageBytes = total

	if err := o.quota.Reserve(ctx, record.UserID, total); err != nil {
		return err
	}

	var written []string
	for p, f := range record.GeneratedFormats {
		key := BlobKey(record.ContentID, p)
		err := o.retrier.Do(ctx, "blob_put:"+p, func(ctx context.Context) error {
			return o.blobs.Put(ctx, key, []byte(f.Text))
		})
		if err != nil {
			o.unwind(record.UserID, total, written)
			return errs.ServiceFailure("blob store write failed", err)
		}
		written = append(written, key)
	}

	err := o.retrier.Do(ctx, "record_insert", func(ctx context.Context) error {
		return o.records.Insert(ctx, record)
	})
	if err != nil {
		o.unwind(record.UserID, total, written)
		return errs.ServiceFailure("metadata store write failed", err)
	}
	return nil
}

// unwind releases the quota reservation and best-effort deletes any blobs
// written before a persistence failure.
func (o *Orchestrator) unwind(userID string, total int64, written []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, key := range written {
		if err := o.blobs.Delete(ctx, key); err != nil {
			config.ErrorWithFields("orphaned blob after failed persistence", config.Fields{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
	if err := o.quota.Release(ctx, userID, total); err != nil {
		config.ErrorWithFields("quota release failed after failed persistence", config.Fields{
			"user_id": userID,
			"bytes":   total,
			"error":   err.Error(),
		})
	}
}

// BlobKey is the blob-store key for one format's raw text.
func BlobKey(contentID, platform string) string {
	return fmt.Sprintf("content/%s/%s.txt", contentID, platform)
}

// loadHistory builds per-platform engagement history from the user's most
// recent records. Missing history is not an error; it only lowers the
// prediction confidence.
func (o *Orchestrator) loadHistory(ctx context.Context, userID string) map[platforms.Platform]*engagement.History {
	recs, err := o.records.ListRecentByUser(ctx, userID, historyWindow)
	if err != nil {
		config.WarnWithFields("engagement history unavailable", config.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil
	}

	type acc struct {
		likes, shares, comments float64
		posts                   int
	}
	byPlatform := make(map[platforms.Platform]*acc)
	for _, rec := range recs {
		for name, m := range rec.EngagementPredictions {
			p, ok := platforms.Parse(name)
			if !ok {
				continue
			}
			a := byPlatform[p]
			if a == nil {
				a = &acc{}
				byPlatform[p] = a
			}
			a.likes += float64(m.EstimatedLikes)
			a.shares += float64(m.EstimatedShares)
			a.comments += float64(m.EstimatedComments)
			a.posts++
		}
	}

	history := make(map[platforms.Platform]*engagement.History, len(byPlatform))
	for p, a := range byPlatform {
		history[p] = &engagement.History{
			AvgLikes:    a.likes / float64(a.posts),
			AvgShares:   a.shares / float64(a.posts),
			AvgComments: a.comments / float64(a.posts),
			Posts:       a.posts,
		}
	}
	return history
}

func (o *Orchestrator) publishCompleted(record *models.ContentRecord, start time.Time) {
	payload := events.ContentGenerationCompletedEvent{
		BaseEvent:        events.NewBaseEvent(events.ContentGenerationCompleted),
		ContentID:        record.ContentID,
		UserID:           record.UserID,
		SucceededFormats: sortedKeys(record.GeneratedFormats),
		FailedFormats:    record.FailedFormats,
		StorageBytes:     record.StorageBytes,
		DurationMs:       time.Since(start).Milliseconds(),
	}
	o.publishAudit(payload.ID, payload.Type, payload)
}

func (o *Orchestrator) publishFailure(userID, reason string, partial []string, failed map[string]string, start time.Time) {
	payload := events.ContentGenerationFailedEvent{
		BaseEvent:      events.NewBaseEvent(events.ContentGenerationFailed),
		UserID:         userID,
		Reason:         reason,
		PartialFormats: partial,
		FailedFormats:  failed,
		DurationMs:     time.Since(start).Milliseconds(),
	}
	o.publishAudit(payload.ID, payload.Type, payload)
}

// publishAudit writes to the audit topic on a fresh context so audit never
// competes with the request deadline. Publish failures are logged, not
// surfaced.
func (o *Orchestrator) publishAudit(id string, t events.EventType, payload any) {
	ev, err := eventbus.NewEvent(id, string(t), payload)
	if err != nil {
		config.ErrorWithFields("audit event marshal failed", config.Fields{"type": string(t), "error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.bus.Publish(ctx, o.auditTopic, ev); err != nil {
		config.ErrorWithFields("audit event publish failed", config.Fields{"type": string(t), "error": err.Error()})
	}
}

func formatStrings(formats []platforms.Platform) []string {
	out := make([]string, len(formats))
	for i, p := range formats {
		out[i] = string(p)
	}
	return out
}

func platformStrings(ps []platforms.Platform) []string {
	return formatStrings(ps)
}

func sortedKeys(m map[string]models.GeneratedFormat) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
