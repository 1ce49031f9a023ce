package parser

import (
	"bytes"
	"errors"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arithmeticGrammar = `
/* sums of natural numbers */
grammar Arithmetic;

expr : expr plus expr | number; // start rule
plus : '+';
number : digit | digit number;
digit : '0' | '1' | '2' | '3' | '4' | '5' | '6' | '7' | '8' | '9';
`

// recorder logs every registered event as "<event>:<text>".
type recorder struct {
	log  []string
	fail string
}

func (r *recorder) Events() map[string]EventFunc {
	record := func(event string) EventFunc {
		return func(node *TreeNode) error {
			if r.fail != "" && node.Text() == r.fail {
				return errors.New("refusing " + r.fail)
			}
			r.log = append(r.log, event+":"+node.Text())
			return nil
		}
	}
	return map[string]EventFunc{
		"expr_post_event":   record("expr"),
		"number_post_event": record("number"),
		"digit_pre_event":   record("digit"),
		"plus_pre_event":    record("plus"),
	}
}

func (r *recorder) Reset() {
	r.log = nil
}

func (r *recorder) Result() ([]string, error) {
	return r.log, nil
}

func filterEvents(log []string, prefix string) []string {
	var out []string
	for _, entry := range log {
		if len(entry) > len(prefix) && entry[:len(prefix)+1] == prefix+":" {
			out = append(out, entry[len(prefix)+1:])
		}
	}
	return out
}

func TestRecognize(t *testing.T) {
	g, err := Compile(arithmeticGrammar)
	require.NoError(t, err)
	assert.Equal(t, "Arithmetic", g.Name())

	tests := []struct {
		input string
		want  bool
	}{
		{"7", true},
		{"1+2", true},
		{"12+345+6", true},
		{"", false},
		{"+", false},
		{"1+", false},
		{"+1", false},
		{"1++2", false},
		{"1 2", false},
		{"a", false},
		{"1+a", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Recognize(tt.input))
		})
	}
}

func TestParseEvents(t *testing.T) {
	g, err := Compile(arithmeticGrammar)
	require.NoError(t, err)
	p, err := NewParser[[]string](g, &recorder{})
	require.NoError(t, err)

	log, err := p.Parse("12+3")
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, filterEvents(log, "digit"))
	assert.Equal(t, []string{"2", "12", "3"}, filterEvents(log, "number"))
	assert.Equal(t, []string{"12", "3", "12+3"}, filterEvents(log, "expr"))
	assert.Equal(t, []string{"+"}, filterEvents(log, "plus"))

	// pre events fire before the children, post events after
	assert.Less(t, slices.Index(log, "digit:1"), slices.Index(log, "number:12"))
	assert.Equal(t, "expr:12+3", log[len(log)-1])
}

func TestParseReusesHandler(t *testing.T) {
	g, err := Compile(arithmeticGrammar)
	require.NoError(t, err)
	p, err := NewParser[[]string](g, &recorder{})
	require.NoError(t, err)

	_, err = p.Parse("1+2")
	require.NoError(t, err)
	log, err := p.Parse("4")
	require.NoError(t, err)
	assert.Equal(t, []string{"digit:4", "number:4", "expr:4"}, log)
}

func TestParseNotRecognized(t *testing.T) {
	g, err := Compile(arithmeticGrammar)
	require.NoError(t, err)
	p, err := NewParser[[]string](g, &recorder{})
	require.NoError(t, err)

	_, err = p.Parse("1+")
	var perr *ParsingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "1+", perr.Input)
	assert.Equal(t, "Arithmetic", perr.Grammar)

	_, ok, err := p.TryParse("1+")
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestParseHandlerError(t *testing.T) {
	g, err := Compile(arithmeticGrammar)
	require.NoError(t, err)
	p, err := NewParser[[]string](g, &recorder{fail: "7"})
	require.NoError(t, err)

	_, ok, err := p.TryParse("1+7")
	assert.True(t, ok)
	assert.EqualError(t, err, "refusing 7")
}

func TestParserSanityCheck(t *testing.T) {
	g, err := Compile(arithmeticGrammar)
	require.NoError(t, err)

	tests := []struct {
		name  string
		event string
	}{
		{"missing suffix", "digit_event"},
		{"unknown rule", "dgit_pre_event"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &staticHandler{events: map[string]EventFunc{tt.event: func(*TreeNode) error { return nil }}}
			_, err := NewParser[int](g, h)
			var gerr *GrammarError
			assert.ErrorAs(t, err, &gerr)
		})
	}
}

type staticHandler struct {
	events map[string]EventFunc
}

func (h *staticHandler) Events() map[string]EventFunc { return h.events }
func (h *staticHandler) Reset()                       {}
func (h *staticHandler) Result() (int, error)         { return 0, nil }

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		grammar string
	}{
		{"missing terminator", "grammar X; a : 'b'"},
		{"unterminated quote", "grammar X; a : 'b;"},
		{"unterminated comment", "grammar X; a : 'b'; /* open"},
		{"missing keyword", "gramar X; a : 'b';"},
		{"missing grammar name", "grammar; a : 'b';"},
		{"empty", "   "},
		{"EOF as rule name", "grammar X; EOF : 'b';"},
		{"self reference", "grammar X; a : 'b' | a;"},
		{"missing assignment", "grammar X; a 'b';"},
		{"two rule names", "grammar X; a b : 'c';"},
		{"empty statement", "grammar X; a : 'x';; b : 'y';"},
		{"blank statement", "grammar X; a : 'x'; ; b : 'y';"},
		{"only terminators", ";;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.grammar)
			var gerr *GrammarError
			assert.ErrorAs(t, err, &gerr)
		})
	}
}

type textHandler struct {
	text string
}

func (h *textHandler) Events() map[string]EventFunc {
	return map[string]EventFunc{
		"word_post_event": func(node *TreeNode) error {
			h.text = node.Text()
			return nil
		},
	}
}
func (h *textHandler) Reset()                  { h.text = "" }
func (h *textHandler) Result() (string, error) { return h.text, nil }

func TestEOFRule(t *testing.T) {
	g, err := Compile(`grammar Word;
word : letters EOF;
letters : letter | letter letters;
letter : 'a' | 'b';`)
	require.NoError(t, err)
	assert.True(t, g.UsesEOF())

	p, err := NewParser[string](g, &textHandler{})
	require.NoError(t, err)
	text, err := p.Parse("abba")
	require.NoError(t, err)
	assert.Equal(t, "abba", text)

	assert.False(t, g.Recognize("abc"))
}

func TestLiteralTerminals(t *testing.T) {
	g, err := Compile(`grammar Literal;
// '//' inside quotes is not a comment
stmt : 'let' ' ' name | '//' name | quoted;
quoted : '\'' name '\'';
name : 'x' | 'y';`)
	require.NoError(t, err)

	tests := []struct {
		input string
		want  bool
	}{
		{"let x", true},
		{"let y", true},
		{"//x", true},
		{"'x'", true},
		{"lex x", false},
		{"letx", false},
		{"'x", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Recognize(tt.input))
		})
	}
	assert.Equal(t, []string{"EOF", "name", "quoted", "stmt"}, g.RuleNames())
}

func TestTreeNodeInt(t *testing.T) {
	g, err := Compile(arithmeticGrammar)
	require.NoError(t, err)

	var numbers []int
	h := &staticHandler{events: map[string]EventFunc{
		"number_post_event": func(node *TreeNode) error {
			n, err := node.Int()
			numbers = append(numbers, n)
			return err
		},
	}}
	p, err := NewParser[int](g, h)
	require.NoError(t, err)
	_, err = p.Parse("42+7")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 42, 7}, numbers)
}

func TestDebugLogging(t *testing.T) {
	g, err := Compile(arithmeticGrammar)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p, err := NewParser[[]string](g, &recorder{}, WithLogger(logger))
	require.NoError(t, err)

	_, err = p.Parse("5")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "event=digit_pre_event")
	assert.Contains(t, buf.String(), "registered=true")
}
