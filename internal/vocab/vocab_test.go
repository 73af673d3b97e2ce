package vocab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultVocabulary(t *testing.T) {
	v := Default()
	if v.Len() != 101 || v.Len() != len(builtinWords) {
		t.Fatalf("expected 101 builtin words, got %d", v.Len())
	}
	for _, word := range []string{"HI", "HELLO", "ZQ", "hi"} {
		want := word == "HI"
		if got := v.Contains(word); got != want {
			t.Fatalf("Contains(%q) = %v, want %v", word, got, want)
		}
	}
}

func TestNewNormalisesAndFilters(t *testing.T) {
	v := New([]string{"hi", " Go ", "co-op", "", "naïve", "HI"})
	if got := strings.Join(v.Words(), ","); got != "GO,HI" {
		t.Fatalf("unexpected words %q", got)
	}
}

func TestWithPrefix(t *testing.T) {
	v := Default()
	if got := strings.Join(v.WithPrefix("HE"), ","); got != "HEAD,HELP" {
		t.Fatalf("unexpected prefix matches %q", got)
	}
	if got := v.WithPrefix("ZZ"); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
	if got := len(v.WithPrefix("")); got != v.Len() {
		t.Fatalf("empty prefix should match all words, got %d", got)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("# custom\nwave\n\nthanks\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	v, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !v.Contains("WAVE") || !v.Contains("THANKS") || v.Contains("HI") {
		t.Fatalf("unexpected vocabulary: %v", v.Words())
	}
}

func TestLoadRejectsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("123\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for list without usable words")
	}
}
