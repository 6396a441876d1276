// Package scoring holds the pure text-scoring functions used by the
// pipeline: readability, sentiment, and the feature vector consumed by the
// engagement predictor. Nothing here suspends or touches shared state.
package scoring

import (
	"strings"
	"unicode"
)

// Readability computes a Flesch-style reading-ease score clamped to [0,100].
// Higher means easier to read.
func Readability(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	sentences := countSentences(text)
	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(sentences)
	syllablesPerWord := float64(syllables) / float64(len(words))

	score := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func countSentences(text string) int {
	n := 0
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

// countSyllables approximates syllables as runs of vowels, with a minimum
// of one per word and a correction for silent trailing "e".
func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if word == "" {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
