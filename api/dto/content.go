package dto

import (
	"time"

	"postforge/models"
)

// GenerateContentRequestDTO is the generation request body.
type GenerateContentRequestDTO struct {
	ContentInput   string   `json:"contentInput"`
	TargetLanguage string   `json:"targetLanguage,omitempty"`
	Formats        []string `json:"formats"`
}

type GeneratedFormatDTO struct {
	Text                string  `json:"text"`
	Language            string  `json:"language"`
	CharacterCount      int     `json:"characterCount"`
	ReadabilityScore    float64 `json:"readabilityScore"`
	TranslationFallback bool    `json:"translationFallback,omitempty"`
}

type EngagementMetricsDTO struct {
	EstimatedLikes    int     `json:"estimatedLikes"`
	EstimatedShares   int     `json:"estimatedShares"`
	EstimatedComments int     `json:"estimatedComments"`
	ConfidenceScore   float64 `json:"confidenceScore"`
}

type OptimizationSuggestionDTO struct {
	Type      string `json:"type"`
	Platform  string `json:"platform"`
	Message   string `json:"message"`
	Reasoning string `json:"reasoning"`
}

// ContentResponseDTO is the assembled response for one content record.
// Only formats that succeeded appear in the maps.
type ContentResponseDTO struct {
	ContentID               string                          `json:"contentId"`
	CreatedAt               string                          `json:"createdAt"`
	TargetLanguage          string                          `json:"targetLanguage"`
	GeneratedContent        map[string]GeneratedFormatDTO   `json:"generatedContent"`
	Hashtags                map[string][]string             `json:"hashtags"`
	EngagementPredictions   map[string]EngagementMetricsDTO `json:"engagementPredictions"`
	OptimizationSuggestions []OptimizationSuggestionDTO     `json:"optimizationSuggestions"`
}

// FromContentRecord maps the durable aggregate to the response DTO.
func FromContentRecord(rec *models.ContentRecord) ContentResponseDTO {
	out := ContentResponseDTO{
		ContentID:               rec.ContentID,
		CreatedAt:               rec.CreatedAt.Format(time.RFC3339),
		TargetLanguage:          rec.TargetLanguage,
		GeneratedContent:        make(map[string]GeneratedFormatDTO, len(rec.GeneratedFormats)),
		Hashtags:                rec.Hashtags,
		EngagementPredictions:   make(map[string]EngagementMetricsDTO, len(rec.EngagementPredictions)),
		OptimizationSuggestions: make([]OptimizationSuggestionDTO, 0, len(rec.OptimizationSuggestions)),
	}
	for p, f := range rec.GeneratedFormats {
		out.GeneratedContent[p] = GeneratedFormatDTO{
			Text:                f.Text,
			Language:            f.Language,
			CharacterCount:      f.CharacterCount,
			ReadabilityScore:    f.ReadabilityScore,
			TranslationFallback: f.TranslationFallback,
		}
	}
	for p, m := range rec.EngagementPredictions {
		out.EngagementPredictions[p] = EngagementMetricsDTO{
			EstimatedLikes:    m.EstimatedLikes,
			EstimatedShares:   m.EstimatedShares,
			EstimatedComments: m.EstimatedComments,
			ConfidenceScore:   m.ConfidenceScore,
		}
	}
	for _, s := range rec.OptimizationSuggestions {
		out.OptimizationSuggestions = append(out.OptimizationSuggestions, OptimizationSuggestionDTO{
			Type:      s.Type,
			Platform:  s.Platform,
			Message:   s.Message,
			Reasoning: s.Reasoning,
		})
	}
	return out
}
