package genclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"postforge/platforms"
)

const TOPIC_INSTRUCTION = `
You are a topic extraction assistant for social media content.
Analyze the provided text and return the main topics it covers.
The response MUST be a valid JSON array of short topic phrases (strings), between 5 and 10 entries.
You MUST NOT wrap the JSON output in a markdown code block (e.g. ` + "```json ... ```" + `). The response should contain ONLY the raw JSON string.
`

const HASHTAG_INSTRUCTION = `
You are a hashtag suggestion assistant for social media content.
Given a JSON object {"topics": [...], "count": N, "language": "..."} produce hashtag candidates for those topics.
The response MUST be a valid JSON array of exactly N hashtag strings, each starting with "#", written in the requested language, no spaces inside a hashtag.
You MUST NOT wrap the JSON output in a markdown code block. The response should contain ONLY the raw JSON string.
`

// Gemini implements Generator and Translator on top of google.golang.org/genai.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) GeneratePost(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("generation returned empty text")
	}
	return text, nil
}

func (g *Gemini) ExtractTopics(ctx context.Context, text string, max int) ([]string, error) {
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(text),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: TOPIC_INSTRUCTION}}},
		},
	)
	if err != nil {
		return nil, err
	}

	var topics []string
	if err := json.Unmarshal([]byte(result.Text()), &topics); err != nil {
		return nil, fmt.Errorf("parse topic response: %w", err)
	}
	if len(topics) > max {
		topics = topics[:max]
	}
	return topics, nil
}

func (g *Gemini) SuggestHashtags(ctx context.Context, topics []string, count int, language string) ([]string, error) {
	payload, err := json.Marshal(map[string]any{
		"topics":   topics,
		"count":    count,
		"language": platforms.LanguageName(language),
	})
	if err != nil {
		return nil, err
	}

	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(string(payload)),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: HASHTAG_INSTRUCTION}}},
		},
	)
	if err != nil {
		return nil, err
	}

	var tags []string
	if err := json.Unmarshal([]byte(result.Text()), &tags); err != nil {
		return nil, fmt.Errorf("parse hashtag response: %w", err)
	}
	return tags, nil
}

func (g *Gemini) Translate(ctx context.Context, text, srcLang, dstLang string) (string, error) {
	instruction := fmt.Sprintf(
		"Translate the following text from %s to %s. "+
			"Preserve tone, line breaks, and emoji. "+
			"Respond with the translated text only, no preamble.",
		platforms.LanguageName(srcLang), platforms.LanguageName(dstLang),
	)

	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(text),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
		},
	)
	if err != nil {
		return "", err
	}

	out := strings.TrimSpace(result.Text())
	if out == "" {
		return "", fmt.Errorf("translation returned empty text")
	}
	return out, nil
}
