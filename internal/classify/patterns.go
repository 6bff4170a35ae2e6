package classify

import "regexp"

// Pattern lists are ordered configuration data, evaluated top to bottom.
// The first matching pattern wins, so the more specific expressions go
// first within each category.
var hostilityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bhijo\s+de\s+\w+`),
	regexp.MustCompile(`(?i)\bvete\s+a\s+la\s+mierda\b`),
	regexp.MustCompile(`(?i)\bcallate\b`),
	regexp.MustCompile(`(?i)\bcállate\b`),
	regexp.MustCompile(`(?i)\bidiota\b`),
	regexp.MustCompile(`(?i)\bimbecil\b`),
	regexp.MustCompile(`(?i)\bimbécil\b`),
	regexp.MustCompile(`(?i)\bestupid[oa]\b`),
	regexp.MustCompile(`(?i)\bestúpid[oa]\b`),
	regexp.MustCompile(`(?i)\btont[oa]\b`),
	regexp.MustCompile(`(?i)\binutil\b`),
	regexp.MustCompile(`(?i)\binútil\b`),
	regexp.MustCompile(`(?i)\bbasura\b`),
	regexp.MustCompile(`(?i)\bpendej[oa]\b`),
	regexp.MustCompile(`(?i)\bmierda\b`),
	regexp.MustCompile(`(?i)\bput[oa]\b`),
	regexp.MustCompile(`(?i)\bmaldit[oa]\b`),
	regexp.MustCompile(`(?i)\bchatarra\b`),
	regexp.MustCompile(`(?i)\bbot\s+de\s+pacotilla\b`),
	regexp.MustCompile(`(?i)\bnadie\s+te\s+quiere\b`),
	regexp.MustCompile(`(?i)\bno\s+sirves\b`),
}

var nsfwPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bdesnud[oa]s?\b`),
	regexp.MustCompile(`(?i)\bsexo\b`),
	regexp.MustCompile(`(?i)\bsexual\b`),
	regexp.MustCompile(`(?i)\bsensual\b`),
	regexp.MustCompile(`(?i)\bprovocativ[oa]\b`),
	regexp.MustCompile(`(?i)\berotic[oa]\b`),
	regexp.MustCompile(`(?i)\berótic[oa]\b`),
	regexp.MustCompile(`(?i)\blenceria\b`),
	regexp.MustCompile(`(?i)\blencería\b`),
	regexp.MustCompile(`(?i)\bfetiche\b`),
	regexp.MustCompile(`(?i)\bcaliente\b`),
	regexp.MustCompile(`(?i)\bnopor\b`),
	regexp.MustCompile(`(?i)\bpack\b`),
}

var praisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bgracias\b`),
	regexp.MustCompile(`(?i)\bte\s+quiero\b`),
	regexp.MustCompile(`(?i)\bte\s+admiro\b`),
	regexp.MustCompile(`(?i)\beres\s+(el\s+)?mejor\b`),
	regexp.MustCompile(`(?i)\bincreible\b`),
	regexp.MustCompile(`(?i)\bincreíble\b`),
	regexp.MustCompile(`(?i)\bgenial\b`),
	regexp.MustCompile(`(?i)\bmaravillos[oa]\b`),
	regexp.MustCompile(`(?i)\bsabi[oa]\b`),
	regexp.MustCompile(`(?i)\bgran\s+guardian\b`),
	regexp.MustCompile(`(?i)\bgran\s+guardián\b`),
}

var challengePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\ba\s+que\s+no\b`),
	regexp.MustCompile(`(?i)\ba\s+ver\s+si\s+te\s+atreves\b`),
	regexp.MustCompile(`(?i)\bte\s+reto\b`),
	regexp.MustCompile(`(?i)\batrevete\b`),
	regexp.MustCompile(`(?i)\batrévete\b`),
	regexp.MustCompile(`(?i)\bno\s+eres\s+capaz\b`),
	regexp.MustCompile(`(?i)\bdemuestralo\b`),
	regexp.MustCompile(`(?i)\bdemuéstralo\b`),
}
