package textutil

import (
	"reflect"
	"testing"
)

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"go is a fantastic language. it compiles fast.", "Go Is A Fantastic Language"},
		{"why TCP handshakes take three packets and what that costs you in latency", "Why TCP Handshakes Take Three Packets And"},
		{"", ""},
		{"   ", ""},
		{"one", "One"},
	}
	for _, tc := range cases {
		if got := DeriveTitle(tc.input); got != tc.want {
			t.Errorf("DeriveTitle(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestWordsStripsPunctuation(t *testing.T) {
	got := Words("Hello, world! (It works.)")
	want := []string{"Hello", "world", "It", "works"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Words = %v, want %v", got, want)
	}
}

func TestWordsKeepsShortWords(t *testing.T) {
	got := Words("go is a language")
	if len(got) != 4 {
		t.Fatalf("Words kept %d words, want 4: %v", len(got), got)
	}
}
