package classify

import (
	"fmt"
	"testing"
)

func TestDetectHostilityReturnsMatchedPhrase(t *testing.T) {
	t.Parallel()

	result := DetectHostility("eres un idiota")
	if !result.Matched {
		t.Fatal("expected hostility to be detected")
	}
	if result.Phrase != "idiota" {
		t.Fatalf("expected matched phrase %q, got %q", "idiota", result.Phrase)
	}
}

func TestDetectHostilityFirstPatternWins(t *testing.T) {
	t.Parallel()

	// "hijo de" precedes "tonto" in the ordered list.
	result := DetectHostility("hijo de perra, tonto")
	if !result.Matched {
		t.Fatal("expected hostility to be detected")
	}
	if result.Phrase != "hijo de perra" {
		t.Fatalf("expected first-listed pattern to win, got %q", result.Phrase)
	}
}

func TestDetectHostilityCleanText(t *testing.T) {
	t.Parallel()

	if result := DetectHostility("buenos días a todos"); result.Matched {
		t.Fatalf("unexpected hostility match: %q", result.Phrase)
	}
}

func TestDetectNSFW(t *testing.T) {
	t.Parallel()

	result := DetectNSFW("mándame algo sensual")
	if !result.Matched || result.Phrase != "sensual" {
		t.Fatalf("unexpected NSFW result: %#v", result)
	}
}

func TestDetectPraise(t *testing.T) {
	t.Parallel()

	if !DetectPraise("gracias por tu sabiduría") {
		t.Fatal("expected praise to be detected")
	}
	if DetectPraise("hoy llueve mucho") {
		t.Fatal("unexpected praise match")
	}
}

func TestDetectChallenge(t *testing.T) {
	t.Parallel()

	if !DetectChallenge("a que no te atreves, te reto") {
		t.Fatal("expected challenge to be detected")
	}
}

func TestDetectGreetingFoldsDiacritics(t *testing.T) {
	t.Parallel()

	if !DetectGreeting("¡Holá, León!") {
		t.Fatal("expected greeting trigger with diacritics")
	}
	if DetectGreeting("hola a todos") {
		t.Fatal("greeting requires both words")
	}
}

func TestAccountAgeMonotone(t *testing.T) {
	t.Parallel()

	ids := []int64{1000000, 5000000, 50000000, 450000000, 1500000000, 6500000000, 9000000000}
	prev := -1
	var prevID int64
	for _, id := range ids {
		label := EstimateAccountAge(id)
		if label == AncestralLabel {
			t.Fatalf("unexpected ancestral label for id %d", id)
		}
		months := estimateMonths(t, label)
		if prev >= 0 && months < prev {
			t.Fatalf("estimate went backwards: id %d then id %d => %q", prevID, id, label)
		}
		prev, prevID = months, id
	}
}

func TestAccountAgeAncestral(t *testing.T) {
	t.Parallel()

	if got := EstimateAccountAge(999999); got != AncestralLabel {
		t.Fatalf("expected ancestral label, got %q", got)
	}
}

func TestAccountAgeExtrapolatesPastLastAnchor(t *testing.T) {
	t.Parallel()

	atLast := EstimateAccountAge(7000000000)
	beyond := EstimateAccountAge(8000000000)
	if estimateMonths(t, beyond) < estimateMonths(t, atLast) {
		t.Fatalf("extrapolation went backwards: %q then %q", atLast, beyond)
	}
}

// estimateMonths converts a "mes de año" label into a comparable month count.
func estimateMonths(t *testing.T, label string) int {
	t.Helper()
	var monthName string
	var year int
	if _, err := fmt.Sscanf(label, "%s de %d", &monthName, &year); err != nil {
		t.Fatalf("cannot parse estimate %q: %v", label, err)
	}
	for i, name := range spanishMonths {
		if name == monthName {
			return year*12 + i
		}
	}
	t.Fatalf("unknown month in estimate %q", label)
	return 0
}
