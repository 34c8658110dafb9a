package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxTitleWords caps how much of the narration's opening feeds the title.
const maxTitleWords = 8

var titleCaser = cases.Title(language.English)

// DeriveTitle builds a short display title from narration text: the first
// sentence, capped at a few words, title-cased. Returns "" for empty input.
func DeriveTitle(narration string) string {
	narration = strings.TrimSpace(narration)
	if narration == "" {
		return ""
	}

	sentence := narration
	if idx := strings.IndexAny(narration, ".!?\n"); idx > 0 {
		sentence = narration[:idx]
	}

	words := Words(sentence)
	if len(words) == 0 {
		return ""
	}
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	return titleCaser.String(strings.Join(words, " "))
}

// Words splits narration text into display words: whitespace-separated
// tokens with surrounding punctuation stripped, original casing kept.
// Short words survive here, since caption and timing layers need every
// spoken word.
func Words(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		word := strings.TrimFunc(field, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if word == "" {
			continue
		}
		words = append(words, word)
	}
	return words
}
