package parser

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

type scanContext int

const (
	noContext scanContext = iota
	inLineComment
	inLongComment
	inQuote
)

type scanMatch int

const (
	noMatch scanMatch = iota
	lineCommentStart
	lineCommentEnd
	longCommentStart
	longCommentEnd
	quoteMatch
)

// extractRules strips comments and line breaks from grammar text and splits
// it into statements. The first statement must be "grammar <name>".
func extractRules(grammar string, quote rune) ([]string, error) {
	text := []rune(grammar)
	n := len(text)

	var sb strings.Builder
	context := noContext
	position := 0
	lastEscapedBackslash := -1

	for i := 0; i < n-1; i++ {
		if i > 0 && text[i] == '\\' && text[i-1] == '\\' && lastEscapedBackslash != i-1 {
			lastEscapedBackslash = i
			continue
		}

		match := noMatch
		switch {
		case text[i] == '/' && text[i+1] == '/':
			match = lineCommentStart
		case text[i] == '\n':
			match = lineCommentEnd
		case text[i] == '/' && text[i+1] == '*':
			match = longCommentStart
		case text[i] == '*' && text[i+1] == '/':
			match = longCommentEnd
		case text[i] == quote && !(i >= 1 && text[i-1] == '\\' && i-1 != lastEscapedBackslash):
			match = quoteMatch
		}
		if match == noMatch {
			continue
		}

		switch context {
		case noContext:
			switch match {
			case longCommentStart:
				sb.WriteString(string(text[position:i]))
				context = inLongComment
			case lineCommentStart:
				sb.WriteString(string(text[position:i]))
				context = inLineComment
			case quoteMatch:
				context = inQuote
			}
		case inQuote:
			if match == quoteMatch {
				context = noContext
			}
		case inLineComment:
			if match == lineCommentEnd {
				context = noContext
				position = i + 1
			}
		case inLongComment:
			if match == longCommentEnd {
				context = noContext
				position = i + 2
			}
		}
	}

	if context != noContext {
		return nil, &GrammarError{Msg: "corrupted grammar, ends either in comment or quote"}
	}
	if position < n {
		sb.WriteString(string(text[position:]))
	}

	cleaned := strings.NewReplacer("\r\n", "", "\n", "", "\r", "").Replace(sb.String())
	cleaned = strings.Trim(cleaned, " ")
	if cleaned == "" {
		return nil, &GrammarError{Msg: "corrupted grammar, grammar is empty"}
	}
	if !strings.HasSuffix(cleaned, string(ruleTerminal)) {
		return nil, &GrammarError{Msg: "corrupted grammar, last rule has no terminating sign"}
	}

	rules, err := core.SplitString(cleaned, ruleTerminal, quote, true)
	if err != nil {
		return nil, &GrammarError{Msg: err.Error()}
	}
	// the text ends with the terminator, which leaves one empty token
	rules = rules[:len(rules)-1]
	if len(rules) < 1 {
		return nil, &GrammarError{Msg: "corrupted grammar, grammar is empty"}
	}
	for i, rule := range rules {
		if strings.TrimSpace(rule) == "" {
			return nil, &GrammarError{Msg: fmt.Sprintf("corrupted grammar, statement %d is empty", i+1)}
		}
	}

	head, err := core.SplitString(rules[0], ' ', quote, false)
	if err != nil {
		return nil, &GrammarError{Msg: err.Error()}
	}
	if len(head) > 0 && head[0] != "grammar" {
		return nil, &GrammarError{Msg: "first rule must start with the keyword 'grammar'"}
	}
	if len(head) != 2 {
		return nil, &GrammarError{Msg: "incorrect first rule"}
	}
	return rules, nil
}

// isTerminal reports whether a product token is a quoted literal.
func isTerminal(token string, quote rune) bool {
	r := []rune(token)
	return len(r) > 2 && r[0] == quote && r[len(r)-1] == quote
}

// deEscape removes escaping backslashes from a literal.
func deEscape(text string) string {
	var sb strings.Builder
	lastEscape := false
	for _, c := range text {
		escape := false
		if c != '\\' {
			sb.WriteRune(c)
		} else if !lastEscape {
			escape = true
		} else {
			sb.WriteRune(c)
		}
		lastEscape = escape
	}
	return sb.String()
}
