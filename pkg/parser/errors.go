package parser

import "fmt"

// GrammarError reports malformed grammar text or a handler that does not
// match its grammar.
type GrammarError struct {
	Grammar string
	Msg     string
}

func (e *GrammarError) Error() string {
	if e.Grammar == "" {
		return "grammar error: " + e.Msg
	}
	return fmt.Sprintf("grammar %s: %s", e.Grammar, e.Msg)
}

// ParsingError reports input that the grammar does not recognize.
type ParsingError struct {
	Input   string
	Grammar string
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("'%s' can not be parsed by grammar '%s'", e.Input, e.Grammar)
}
