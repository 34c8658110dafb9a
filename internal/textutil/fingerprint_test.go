package textutil

import "testing"

func TestNewFingerprintFiltersShortTerms(t *testing.T) {
	fp := NewFingerprint("a an the quick brown fox")
	if fp == nil {
		t.Fatal("expected fingerprint")
	}
	if got := len(fp.terms); got != 4 {
		t.Fatalf("term count = %d, want 4 (the quick brown fox)", got)
	}
}

func TestNewFingerprintEmptyText(t *testing.T) {
	if fp := NewFingerprint("a b c !!"); fp != nil {
		t.Fatalf("expected nil fingerprint, got %+v", fp)
	}
}

func TestSimilarityIdenticalNarrations(t *testing.T) {
	text := "Binary search halves the search space on every comparison."
	sim := NewFingerprint(text).Similarity(NewFingerprint(text))
	if sim < 0.999 {
		t.Fatalf("similarity = %f, want ~1 for identical text", sim)
	}
}

func TestSimilarityNearDuplicateNarrations(t *testing.T) {
	a := NewFingerprint("Binary search halves the search space on every comparison, which keeps lookups logarithmic.")
	b := NewFingerprint("Binary search halves the search space on each comparison, which keeps lookups logarithmic!")
	if sim := a.Similarity(b); sim < 0.85 {
		t.Fatalf("similarity = %f, want >= 0.85 for a light rewrite", sim)
	}
}

func TestSimilarityUnrelatedNarrations(t *testing.T) {
	a := NewFingerprint("Binary search halves the search space on every comparison.")
	b := NewFingerprint("Octopuses taste with their arms and have three hearts.")
	if sim := a.Similarity(b); sim > 0.2 {
		t.Fatalf("similarity = %f, want near 0 for unrelated text", sim)
	}
}

func TestSimilarityNilFingerprint(t *testing.T) {
	fp := NewFingerprint("narration words here")
	if sim := fp.Similarity(nil); sim != 0 {
		t.Fatalf("similarity with nil = %f, want 0", sim)
	}
	var none *Fingerprint
	if sim := none.Similarity(fp); sim != 0 {
		t.Fatalf("nil receiver similarity = %f, want 0", sim)
	}
}
