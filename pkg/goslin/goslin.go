// Package goslin parses lipid names in Goslin notation into the lipid model.
package goslin

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ChrisMcGann/goslin/pkg/lipid"
	"github.com/ChrisMcGann/goslin/pkg/parser"
)

//go:embed Goslin.g4
var grammarBody string

// DefaultMaxLength bounds the name length; parsing is cubic in it.
const DefaultMaxLength = 512

// ErrNameTooLong is returned for names longer than the configured maximum.
var ErrNameTooLong = errors.New("lipid name too long")

// grammarText completes the embedded grammar with the class names of the
// class table.
func grammarText() string {
	var names []string
	for _, c := range lipid.Classes().Classes() {
		names = append(names, c.Name)
		names = append(names, c.Synonyms...)
	}
	names = append(names, lipid.GlycoClassNames()...)

	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return grammarBody + "\nhg_class : " + strings.Join(quoted, " | ") + ";\n"
}

var grammar = sync.OnceValues(func() (*parser.Grammar, error) {
	return parser.Compile(grammarText())
})

// Option configures a Parser.
type Option func(*options)

type options struct {
	maxLength int
	registry  *lipid.AdductRegistry
	logger    *slog.Logger
}

// WithMaxLength sets the longest accepted name.
func WithMaxLength(n int) Option {
	return func(o *options) {
		o.maxLength = n
	}
}

// WithAdductRegistry validates adducts against r instead of the default
// registry.
func WithAdductRegistry(r *lipid.AdductRegistry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLogger logs parse events at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Parser parses Goslin names. It is not safe for concurrent use; create one
// per goroutine. The compiled grammar is shared.
type Parser struct {
	p         *parser.Parser[*lipid.LipidAdduct]
	maxLength int
}

// New creates a parser.
func New(opts ...Option) (*Parser, error) {
	o := options{maxLength: DefaultMaxLength, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = lipid.DefaultAdductRegistry()
	}

	g, err := grammar()
	if err != nil {
		return nil, err
	}
	p, err := parser.NewParser[*lipid.LipidAdduct](g, newHandler(o.registry), parser.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	return &Parser{p: p, maxLength: o.maxLength}, nil
}

// Parse parses name and returns a *parser.ParsingError when it is not a
// Goslin name. Chemically inconsistent names fail with the lipid package's
// error sentinels.
func (p *Parser) Parse(name string) (*lipid.LipidAdduct, error) {
	la, ok, err := p.TryParse(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &parser.ParsingError{Input: name, Grammar: p.p.Grammar().Name()}
	}
	return la, nil
}

// TryParse parses name. ok is false when the grammar does not recognize it.
func (p *Parser) TryParse(name string) (*lipid.LipidAdduct, bool, error) {
	name = strings.TrimSpace(name)
	if len(name) > p.maxLength {
		return nil, false, fmt.Errorf("%w: %d characters, maximum is %d", ErrNameTooLong, len(name), p.maxLength)
	}
	la, ok, err := p.p.TryParse(name)
	if err != nil {
		return nil, ok, fmt.Errorf("lipid '%s': %w", name, err)
	}
	return la, ok, nil
}

var parsers sync.Pool

// Parse parses name with a pooled default parser.
func Parse(name string) (*lipid.LipidAdduct, error) {
	p, ok := parsers.Get().(*Parser)
	if !ok {
		var err error
		if p, err = New(); err != nil {
			return nil, err
		}
	}
	defer parsers.Put(p)
	return p.Parse(name)
}
