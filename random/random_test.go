package random

import (
	"strings"
	"testing"
)

func TestStringSecure(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s, err := StringSecure(32)
		if err != nil {
			t.Fatal(err)
		}
		if len(s) != 32 {
			t.Fatalf("expected 32 chars, got %d", len(s))
		}
		if strings.Trim(s, charset) != "" {
			t.Fatalf("unexpected characters in %q", s)
		}
		if seen[s] {
			t.Fatalf("duplicated token %q", s)
		}
		seen[s] = true
	}
}

func TestString(t *testing.T) {
	if got := String(6); len(got) != 6 || strings.Trim(got, charset) != "" {
		t.Fatalf("unexpected string %q", got)
	}
}
