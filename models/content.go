package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeneratedFormat is one successfully produced platform rendering.
// A platform missing from ContentRecord.GeneratedFormats failed; there are
// never synthetic empty entries.
type GeneratedFormat struct {
	Platform            string  `bson:"platform" json:"platform"`
	Text                string  `bson:"text" json:"text"`
	Language            string  `bson:"language" json:"language"`
	CharacterCount      int     `bson:"character_count" json:"characterCount"`
	ReadabilityScore    float64 `bson:"readability_score" json:"readabilityScore"`
	TranslationFallback bool    `bson:"translation_fallback,omitempty" json:"translationFallback,omitempty"`
}

// EngagementMetrics is the predicted engagement for one format.
// All counts are floored, non-negative integers; confidence is in [0,1].
type EngagementMetrics struct {
	EstimatedLikes    int     `bson:"estimated_likes" json:"estimatedLikes"`
	EstimatedShares   int     `bson:"estimated_shares" json:"estimatedShares"`
	EstimatedComments int     `bson:"estimated_comments" json:"estimatedComments"`
	ConfidenceScore   float64 `bson:"confidence_score" json:"confidenceScore"`
}

// Suggestion types emitted by the optimizer.
const (
	SuggestionReadability = "readability"
	SuggestionLength      = "length"
	SuggestionTone        = "tone"
	SuggestionTiming      = "timing"
)

type OptimizationSuggestion struct {
	Type      string `bson:"type" json:"type"`
	Platform  string `bson:"platform" json:"platform"`
	Message   string `bson:"message" json:"message"`
	Reasoning string `bson:"reasoning" json:"reasoning"`
}

// ContentRecord is the durable aggregate for one generation request.
// Collection: content_records. Created once, immutable after persistence,
// deleted only by explicit user action.
type ContentRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ContentID      string             `bson:"content_id" json:"contentId"`
	UserID         string             `bson:"user_id" json:"userId"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	SourceInput    string             `bson:"source_input" json:"sourceInput"`
	TargetLanguage string             `bson:"target_language" json:"targetLanguage"`
	Formats        []string           `bson:"formats" json:"formats"`

	GeneratedFormats        map[string]GeneratedFormat   `bson:"generated_formats" json:"generatedContent"`
	Hashtags                map[string][]string          `bson:"hashtags" json:"hashtags"`
	EngagementPredictions   map[string]EngagementMetrics `bson:"engagement_predictions" json:"engagementPredictions"`
	OptimizationSuggestions []OptimizationSuggestion     `bson:"optimization_suggestions" json:"optimizationSuggestions"`

	// FailedFormats keeps the per-format failure reasons for the audit
	// trail; user-facing responses simply omit those platforms.
	FailedFormats map[string]string `bson:"failed_formats,omitempty" json:"-"`

	// StorageBytes is the number of blob-store bytes attributed to this
	// record, released back to the user's quota on delete.
	StorageBytes int64 `bson:"storage_bytes" json:"-"`
}
