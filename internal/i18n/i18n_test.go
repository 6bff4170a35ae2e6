package i18n

import (
	"strings"
	"testing"
)

func TestGetTranslatesKnownKey(t *testing.T) {
	got := Get("The temple only heeds its master.", "es")
	if got != "El templo solo obedece a su maestro." {
		t.Fatalf("unexpected translation: %q", got)
	}
}

func TestGetFallsBackToKey(t *testing.T) {
	key := "No such key in the catalog"
	if got := Get(key, "es"); got != key {
		t.Fatalf("expected key fallback, got %q", got)
	}
}

func TestGetPassesThroughEnglish(t *testing.T) {
	key := "The temple only heeds its master."
	if got := Get(key, "en"); got != key {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestLanguagesListIncludesSpanish(t *testing.T) {
	languages := GetLanguagesList()
	if !strings.Contains(strings.Join(languages, ","), "es") {
		t.Fatalf("expected es in %v", languages)
	}
}
