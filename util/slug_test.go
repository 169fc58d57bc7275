package util

import (
	"strings"
	"testing"
)

func TestNewSlug(t *testing.T) {
	seen := make(map[string]bool)

	for range 100 {
		s := NewSlug()

		if len(s) != SlugLength {
			t.Fatalf("slug %q has length %d, want %d", s, len(s), SlugLength)
		}

		for _, r := range s {
			if !strings.ContainsRune(slugCharset, r) {
				t.Fatalf("slug %q contains %q outside the charset", s, r)
			}
		}

		seen[s] = true
	}

	if len(seen) < 90 {
		t.Errorf("slugs look far from random, %d unique out of 100", len(seen))
	}
}
