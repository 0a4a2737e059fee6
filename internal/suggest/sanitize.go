package suggest

import (
	"regexp"
	"strings"
)

// Placeholder is the single context slot every prompt template carries.
const Placeholder = "{context}"

var (
	thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)
	quoted     = regexp.MustCompile(`"([^"]+)"|“([^”]+)”`)
)

// StripThinking removes deliberative <think>...</think> blocks from model
// output. An opening tag with no closing tag discards everything after it;
// a stray closing tag discards everything before it.
func StripThinking(text string) string {
	out := thinkBlock.ReplaceAllString(text, "")
	if i := strings.Index(out, "<think>"); i >= 0 {
		out = out[:i]
	}
	if i := strings.LastIndex(out, "</think>"); i >= 0 {
		out = out[i+len("</think>"):]
	}
	return strings.TrimSpace(out)
}

// FirstQuoted returns the first non-blank double-quoted span in text.
func FirstQuoted(text string) string {
	for _, m := range quoted.FindAllStringSubmatch(text, -1) {
		s := m[1]
		if s == "" {
			s = m[2]
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// CountPlaceholders reports how many context placeholders a template has.
func CountPlaceholders(template string) int {
	return strings.Count(template, Placeholder)
}

// EnsurePlaceholder appends a placeholder to templates that lack one and
// rejects templates with more than one.
func EnsurePlaceholder(template string) (string, error) {
	template = strings.TrimSpace(template)
	switch n := CountPlaceholders(template); {
	case n == 1:
		return template, nil
	case n > 1:
		return "", &PlaceholderError{Placeholders: n, Text: template}
	case template == "":
		return Placeholder, nil
	default:
		return template + " " + Placeholder, nil
	}
}

// FormatPrompt substitutes the caller context into the template.
func FormatPrompt(template, context string) string {
	return strings.ReplaceAll(template, Placeholder, context)
}
