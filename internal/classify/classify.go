package classify

import (
	"regexp"
	"strings"
)

// Result carries the matched evidence alongside the verdict. Hostility
// takes priority over NSFW at call sites: a message matching both
// categories is classified only as hostile.
type Result struct {
	Matched bool
	Phrase  string
}

func firstMatch(patterns []*regexp.Regexp, text string) Result {
	for _, pattern := range patterns {
		if phrase := pattern.FindString(text); phrase != "" {
			return Result{Matched: true, Phrase: strings.ToLower(phrase)}
		}
	}
	return Result{}
}

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

func DetectHostility(text string) Result {
	return firstMatch(hostilityPatterns, text)
}

func DetectNSFW(text string) Result {
	return firstMatch(nsfwPatterns, text)
}

func DetectPraise(text string) bool {
	return anyMatch(praisePatterns, text)
}

func DetectChallenge(text string) bool {
	return anyMatch(challengePatterns, text)
}

// DetectGreeting recognizes the scripted greeting trigger: "hola" and
// "leon" present in the same message, diacritics folded.
func DetectGreeting(text string) bool {
	normalized := FoldDiacritics(strings.ToLower(text))
	return strings.Contains(normalized, "hola") && strings.Contains(normalized, "leon")
}

var diacriticFold = strings.NewReplacer(
	"á", "a",
	"é", "e",
	"í", "i",
	"ó", "o",
	"ú", "u",
	"ü", "u",
	"ñ", "n",
)

func FoldDiacritics(text string) string {
	return diacriticFold.Replace(text)
}
