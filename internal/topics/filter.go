package topics

import (
	"strings"
)

// SensitiveTopics are kept out of generation context to avoid controversy.
var SensitiveTopics = []string{
	// Political figures
	"trump", "biden", "obama", "clinton", "putin", "xi jinping",
	"maga", "democrat", "republican", "liberal", "conservative",

	// Hot-button political issues
	"abortion", "pro-life", "pro-choice",
	"gun control", "second amendment", "2nd amendment",
	"immigration", "border", "deportation",
	"lgbtq", "transgender", "gay rights",

	// Tragedy/violence
	"shooting", "massacre", "terrorist", "terrorism",
	"murder", "killed", "death toll", "casualties",
	"suicide", "self-harm",

	// Religion
	"atheism", "christian", "muslim", "jewish", "religion debate",

	// Explicit content
	"nsfw", "porn", "sex", "nude",

	// Hate speech related
	"racist", "racism", "nazi", "white supremac", "hate crime",

	// Current wars/conflicts
	"ukraine", "russia war", "gaza", "israel", "hamas",

	// Conspiracy theories
	"qanon", "deep state", "illuminati", "flat earth",
	"anti-vax", "plandemic",
}

// Filter checks headlines for sensitive content.
type Filter struct {
	sensitiveTerms []string
	minScore       int
}

// FilterConfig holds filter configuration.
type FilterConfig struct {
	AdditionalTerms []string
	MinScore        int
}

// NewFilter creates a new filter.
func NewFilter(cfg FilterConfig) *Filter {
	terms := make([]string, 0, len(SensitiveTopics)+len(cfg.AdditionalTerms))
	terms = append(terms, SensitiveTopics...)
	terms = append(terms, cfg.AdditionalTerms...)

	for i, term := range terms {
		terms[i] = strings.ToLower(term)
	}

	return &Filter{
		sensitiveTerms: terms,
		minScore:       cfg.MinScore,
	}
}

// FilterResult contains the filter decision.
type FilterResult struct {
	Pass   bool
	Reason string
}

// Check examines a headline and returns whether it may be used.
func (f *Filter) Check(h Headline) FilterResult {
	if f.minScore > 0 && h.Score < f.minScore {
		return FilterResult{Pass: false, Reason: "score below threshold"}
	}

	title := strings.ToLower(h.Title)
	for _, term := range f.sensitiveTerms {
		if strings.Contains(title, term) {
			return FilterResult{Pass: false, Reason: "contains sensitive topic: " + term}
		}
	}

	return FilterResult{Pass: true}
}

// Apply returns only the headlines that pass.
func (f *Filter) Apply(headlines []Headline) []Headline {
	result := make([]Headline, 0, len(headlines))
	for _, h := range headlines {
		if f.Check(h).Pass {
			result = append(result, h)
		}
	}
	return result
}
