// Package genclient defines the contracts the pipeline consumes from the
// external AI generation and translation collaborators, plus the Gemini
// implementation of both. Tests substitute fakes for these interfaces.
package genclient

import "context"

// Generator is the AI Generation Service contract.
type Generator interface {
	// GeneratePost returns the platform rendering for a prompt built by
	// platforms.BuildPrompt.
	GeneratePost(ctx context.Context, prompt string) (string, error)

	// ExtractTopics returns up to max topic phrases describing the text.
	ExtractTopics(ctx context.Context, text string, max int) ([]string, error)

	// SuggestHashtags returns candidate hashtags for the topics, sized to
	// count, written in the given language.
	SuggestHashtags(ctx context.Context, topics []string, count int, language string) ([]string, error)
}

// Translator is the Translation Service contract.
type Translator interface {
	Translate(ctx context.Context, text, srcLang, dstLang string) (string, error)
}
