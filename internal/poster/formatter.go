package poster

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// TwitterMaxLength is the maximum character count for an X post.
const TwitterMaxLength = 280

// ErrEmptyPost is returned for blank post text.
var ErrEmptyPost = errors.New("post text is empty")

// wrappingQuotes are pairs models commonly wrap a whole post in.
var wrappingQuotes = [][2]string{
	{`"`, `"`},
	{"“", "”"},
}

// Normalize trims whitespace and a single pair of quotes enclosing the
// whole text.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	for _, q := range wrappingQuotes {
		if len(text) > len(q[0])+len(q[1]) && strings.HasPrefix(text, q[0]) && strings.HasSuffix(text, q[1]) {
			inner := text[len(q[0]) : len(text)-len(q[1])]
			// Leave texts that quote more than one span alone.
			if !strings.Contains(inner, q[0]) && !strings.Contains(inner, q[1]) {
				return strings.TrimSpace(inner)
			}
		}
	}
	return text
}

// FitsInLimit checks if the formatted post fits within the limit.
func FitsInLimit(formatted string, limit int) bool {
	return utf8.RuneCountInString(formatted) <= limit
}

// Validate checks that text is publishable under limit.
func Validate(text string, limit int) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyPost
	}
	if !FitsInLimit(text, limit) {
		return fmt.Errorf("post is %d characters, limit %d", utf8.RuneCountInString(text), limit)
	}
	return nil
}
