// Package formula parses sum formulas and signed adduct deltas into element
// tables.
package formula

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/ChrisMcGann/goslin/pkg/core"
	"github.com/ChrisMcGann/goslin/pkg/parser"
)

//go:embed SumFormula.g4
var grammarText string

// ErrInvalidFormula is returned for text that is not a sum formula.
var ErrInvalidFormula = errors.New("invalid sum formula")

var grammar = sync.OnceValues(func() (*parser.Grammar, error) {
	return parser.Compile(grammarText)
})

// parsers holds idle parsers; a parser carries handler state so each
// goroutine takes its own.
var parsers sync.Pool

type result struct {
	table  core.Table
	signed bool
}

type handler struct {
	total   core.Table
	current core.Table
	signed  bool
	sign    int
	factor  int
	element core.Element
	count   int
}

func (h *handler) Events() map[string]parser.EventFunc {
	return map[string]parser.EventFunc{
		"adduct_part_pre_event":    h.adductPartPre,
		"adduct_part_post_event":   h.adductPartPost,
		"sign_pre_event":           h.signPre,
		"multiplier_pre_event":     h.multiplierPre,
		"element_group_pre_event":  h.elementGroupPre,
		"element_pre_event":        h.elementPre,
		"count_pre_event":          h.countPre,
		"element_group_post_event": h.elementGroupPost,
	}
}

func (h *handler) Reset() {
	h.total = core.NewTable()
	h.current = h.total
	h.signed = false
}

func (h *handler) Result() (result, error) {
	return result{table: h.total, signed: h.signed}, nil
}

func (h *handler) adductPartPre(*parser.TreeNode) error {
	h.signed = true
	h.current = core.NewTable()
	h.sign, h.factor = 1, 1
	return nil
}

func (h *handler) adductPartPost(*parser.TreeNode) error {
	h.total.AddScaled(h.current, h.sign*h.factor)
	return nil
}

func (h *handler) signPre(node *parser.TreeNode) error {
	if node.Text() == "-" {
		h.sign = -1
	}
	return nil
}

func (h *handler) multiplierPre(node *parser.TreeNode) error {
	n, err := node.Int()
	h.factor = n
	return err
}

func (h *handler) elementGroupPre(*parser.TreeNode) error {
	h.count = 1
	return nil
}

func (h *handler) elementPre(node *parser.TreeNode) error {
	e, ok := core.ParseElement(node.Text())
	if !ok {
		return fmt.Errorf("%w: element '%s' is unknown", ErrInvalidFormula, node.Text())
	}
	h.element = e
	return nil
}

func (h *handler) countPre(node *parser.TreeNode) error {
	n, err := node.Int()
	h.count = n
	return err
}

func (h *handler) elementGroupPost(*parser.TreeNode) error {
	h.current[h.element] += h.count
	return nil
}

func run(text string) (result, error) {
	p, ok := parsers.Get().(*parser.Parser[result])
	if !ok {
		g, err := grammar()
		if err != nil {
			return result{}, err
		}
		if p, err = parser.NewParser[result](g, &handler{}); err != nil {
			return result{}, err
		}
	}
	defer parsers.Put(p)

	res, err := p.Parse(text)
	if err != nil {
		return result{}, fmt.Errorf("%w '%s': %w", ErrInvalidFormula, text, err)
	}
	return res, nil
}

// Parse reads a sum formula such as "C8H18NO6P".
func Parse(text string) (core.Table, error) {
	res, err := run(text)
	if err != nil {
		return nil, err
	}
	if res.signed {
		return nil, fmt.Errorf("%w: '%s' is an adduct delta", ErrInvalidFormula, text)
	}
	return res.table, nil
}

// MustParse is like Parse but panics on error. It is meant for constant
// formulas.
func MustParse(text string) core.Table {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseAdduct reads a signed adduct delta such as "+2Na-H" and returns the
// net element change.
func ParseAdduct(text string) (core.Table, error) {
	res, err := run(text)
	if err != nil {
		return nil, err
	}
	if !res.signed {
		return nil, fmt.Errorf("%w: adduct '%s' has no sign", ErrInvalidFormula, text)
	}
	return res.table, nil
}
