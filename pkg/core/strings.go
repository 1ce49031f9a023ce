package core

import (
	"errors"
	"strings"
)

// DefaultQuote is the quote character of grammar literals.
const DefaultQuote = '\''

// ErrUnterminatedQuote is returned by SplitString for an unbalanced quote.
var ErrUnterminatedQuote = errors.New("corrupted token: unterminated quote")

// SplitString splits text at sep, ignoring separators inside quotes.
// Backslash escapes the quote character; a doubled backslash is a literal
// backslash. Empty tokens are kept only when withEmpty is set.
func SplitString(text string, sep, quote rune, withEmpty bool) ([]string, error) {
	var (
		tokens      []string
		sb          strings.Builder
		inQuote     bool
		last        rune
		lastEscaped bool
	)

	for _, c := range text {
		escaped := false
		if !inQuote {
			if c == sep {
				if sb.Len() > 0 || withEmpty {
					tokens = append(tokens, sb.String())
				}
				sb.Reset()
			} else {
				if c == quote {
					inQuote = true
				}
				sb.WriteRune(c)
			}
		} else {
			if c == '\\' && last == '\\' && !lastEscaped {
				escaped = true
			} else if c == quote && !(last == '\\' && !lastEscaped) {
				inQuote = false
			}
			sb.WriteRune(c)
		}
		lastEscaped = escaped
		last = c
	}

	if sb.Len() > 0 || (last == sep && withEmpty) {
		tokens = append(tokens, sb.String())
	}
	if inQuote {
		return nil, ErrUnterminatedQuote
	}
	return tokens, nil
}
