package textutil

import (
	"math"
	"regexp"
	"strings"
)

var fingerprintSplit = regexp.MustCompile(`[^a-z0-9]+`)

// Fingerprint is a normalized term-frequency vector over narration text.
// Fingerprints of two narrations can be compared to spot resubmissions of
// the same script with cosmetic edits.
type Fingerprint struct {
	terms map[string]float64
	norm  float64
}

// NewFingerprint tokenizes text into lowercase terms of three or more
// characters and builds its frequency vector. Returns nil when no usable
// terms remain.
func NewFingerprint(text string) *Fingerprint {
	raw := fingerprintSplit.Split(strings.ToLower(text), -1)
	terms := make(map[string]float64, len(raw))
	for _, term := range raw {
		if len(term) < 3 {
			continue
		}
		terms[term]++
	}
	if len(terms) == 0 {
		return nil
	}
	var norm float64
	for _, count := range terms {
		norm += count * count
	}
	return &Fingerprint{terms: terms, norm: math.Sqrt(norm)}
}

// Similarity returns the cosine similarity between two fingerprints in
// [0, 1]. A nil fingerprint on either side yields 0.
func (f *Fingerprint) Similarity(other *Fingerprint) float64 {
	if f == nil || other == nil || f.norm == 0 || other.norm == 0 {
		return 0
	}
	var dot float64
	for term, count := range f.terms {
		if match, ok := other.terms[term]; ok {
			dot += count * match
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (f.norm * other.norm)
}
