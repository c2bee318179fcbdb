package intent

import "strings"

// DefaultSkill is used when neither the backend nor the message names a skill.
const DefaultSkill = "Data Analyst"

// ActionStartAnalysis marks a reply that should begin an analysis.
const ActionStartAnalysis = "start_analysis"

// Vocabulary lists known skill phrases in priority order. Longer phrases come
// before the shorter phrases they contain.
var Vocabulary = []string{
	"data analyst",
	"software developer",
	"digital marketing specialist",
	"ux/ui designer",
	"finance",
	"money",
	"accounting",
	"marketing",
	"sales",
	"engineer",
	"doctor",
	"teacher",
	"nurse",
	"artist",
	"writer",
	"project manager",
	"business analyst",
	"cybersecurity",
	"machine learning",
	"artificial intelligence",
	"ai",
	"python",
	"javascript",
	"java",
	"cloud computing",
	"devops",
	"product management",
}

// ExtractSkill returns the first vocabulary phrase found in text, title-cased.
func ExtractSkill(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, phrase := range Vocabulary {
		if strings.Contains(lower, phrase) {
			return TitleCase(phrase), true
		}
	}
	return "", false
}

// TitleCase upper-cases the first letter of every word. A word starts after
// any non-letter, so "ux/ui designer" becomes "Ux/Ui Designer".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
		switch {
		case isLetter && !prevLetter:
			b.WriteString(strings.ToUpper(string(r)))
		case isLetter:
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}
