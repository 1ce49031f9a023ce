// Package parser compiles textual context-free grammars into binary rules and
// recognizes input with a CYK chart parser, replaying the derivation as
// named events on a handler.
package parser

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

const (
	shift                 = 32
	mask           uint64 = 1<<shift - 1
	ruleAssignment        = ':'
	ruleSeparator         = '|'
	ruleTerminal          = ';'

	eofRule     uint64 = 1
	startRule   uint64 = 2
	eofRuleName        = "EOF"

	preEventSuffix  = "_pre_event"
	postEventSuffix = "_post_event"
)

// EOFSign is appended to the input of grammars that use the EOF rule.
const EOFSign rune = 1

type substKey struct {
	bottom, top uint64
}

type ruleInfo struct {
	name, pre, post string
}

// Grammar is a compiled grammar. It is read-only after Compile and may be
// shared by any number of parsers.
type Grammar struct {
	name     string
	quote    rune
	nextFree uint64
	usedEOF  bool

	ruleIDs       map[string]uint64
	rules         map[uint64]ruleInfo
	tToNT         map[rune][]uint64
	originalTToNT map[rune]uint64
	ntToNT        map[uint64][]uint64
	substitution  map[substKey][]uint64
	rightPair     []*Bitfield
}

// Compile reads grammar text of the form
//
//	grammar Name;
//	rule : alt1 | alt2 ... ;
//
// The first rule after the header is the start rule.
func Compile(text string) (*Grammar, error) {
	g := &Grammar{
		quote:         core.DefaultQuote,
		nextFree:      startRule,
		ruleIDs:       map[string]uint64{eofRuleName: eofRule},
		rules:         make(map[uint64]ruleInfo),
		tToNT:         map[rune][]uint64{EOFSign: {eofRule}},
		originalTToNT: make(map[rune]uint64),
		ntToNT:        make(map[uint64][]uint64),
		substitution:  make(map[substKey][]uint64),
	}

	statements, err := extractRules(text, g.quote)
	if err != nil {
		return nil, err
	}
	head, _ := core.SplitString(statements[0], ' ', g.quote, false)
	g.name = head[1]

	for _, line := range statements[1:] {
		if err := g.addRule(line); err != nil {
			return nil, err
		}
		if g.nextFree > mask {
			return nil, g.errorf("grammar is too big")
		}
	}

	for c, rules := range g.tToNT {
		g.originalTToNT[c] = rules[0]
	}
	g.buildSubstitutions()
	g.expandChains()
	g.buildRightPairs()
	return g, nil
}

// MustCompile is like Compile but panics on error. It is meant for grammars
// embedded in the binary.
func MustCompile(text string) *Grammar {
	g, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return g
}

// Name returns the grammar name from its header.
func (g *Grammar) Name() string {
	return g.name
}

// HasRule reports whether the grammar defines or references rule.
func (g *Grammar) HasRule(rule string) bool {
	_, ok := g.ruleIDs[rule]
	return ok
}

// RuleNames returns all rule names in sorted order.
func (g *Grammar) RuleNames() []string {
	return slices.Sorted(maps.Keys(g.ruleIDs))
}

// UsesEOF reports whether inputs get the EOF sign appended.
func (g *Grammar) UsesEOF() bool {
	return g.usedEOF
}

func (g *Grammar) errorf(format string, args ...any) *GrammarError {
	return &GrammarError{Grammar: g.name, Msg: fmt.Sprintf(format, args...)}
}

func (g *Grammar) nextRule() uint64 {
	id := g.nextFree
	g.nextFree++
	return id
}

func (g *Grammar) ruleID(name string) uint64 {
	id, ok := g.ruleIDs[name]
	if !ok {
		id = g.nextRule()
		g.ruleIDs[name] = id
	}
	return id
}

func pairKey(r1, r2 uint64) uint64 {
	return r1<<shift | r2
}

func (g *Grammar) addNT(key, parent uint64) {
	if !slices.Contains(g.ntToNT[key], parent) {
		g.ntToNT[key] = append(g.ntToNT[key], parent)
	}
}

// terminalRule returns the rule recognizing the single character c.
func (g *Grammar) terminalRule(c rune) uint64 {
	if rules, ok := g.tToNT[c]; ok {
		return rules[0]
	}
	id := g.nextRule()
	g.tToNT[c] = []uint64{id}
	return id
}

// addTerminal chains the characters of a quoted literal into binary rules
// and returns the rule covering the whole literal.
func (g *Grammar) addTerminal(literal string) uint64 {
	chars := []rune(literal)
	ids := make([]uint64, 0, len(chars)-2)
	for _, c := range chars[1 : len(chars)-1] {
		ids = append(ids, g.terminalRule(c))
	}
	for len(ids) > 1 {
		r2, r1 := ids[len(ids)-1], ids[len(ids)-2]
		ids = ids[:len(ids)-2]
		next := g.nextRule()
		g.addNT(pairKey(r1, r2), next)
		ids = append(ids, next)
	}
	return ids[0]
}

func (g *Grammar) addRule(line string) error {
	sides, err := core.SplitString(line, ruleAssignment, g.quote, false)
	if err != nil {
		return g.errorf("%v in rule '%s'", err, line)
	}
	if len(sides) != 2 {
		return g.errorf("corrupted token in grammar rule: '%s'", line)
	}
	lhs, rhs := strings.TrimSpace(sides[0]), strings.TrimSpace(sides[1])

	names, err := core.SplitString(lhs, ' ', g.quote, false)
	if err != nil {
		return g.errorf("%v in rule '%s'", err, line)
	}
	if len(names) != 1 {
		return g.errorf("expected exactly one rule name on left hand side in grammar rule: '%s'", line)
	}
	if lhs == eofRuleName {
		return g.errorf("rule name is not allowed to be called EOF")
	}

	products, err := core.SplitString(rhs, ruleSeparator, g.quote, false)
	if err != nil {
		return g.errorf("%v in rule '%s'", err, line)
	}

	id := g.ruleID(lhs)
	if _, ok := g.rules[id]; !ok {
		g.rules[id] = ruleInfo{name: lhs, pre: lhs + preEventSuffix, post: lhs + postEventSuffix}
	}

	for _, product := range products {
		symbols, err := core.SplitString(strings.TrimSpace(product), ' ', g.quote, false)
		if err != nil {
			return g.errorf("%v in rule '%s'", err, line)
		}
		if len(symbols) == 0 {
			return g.errorf("empty alternative in rule '%s'", lhs)
		}
		for i, s := range symbols {
			if isTerminal(s, g.quote) {
				symbols[i] = deEscape(s)
			}
			if symbols[i] == eofRuleName {
				g.usedEOF = true
			}
		}

		first := symbols[0]
		if len(symbols) == 1 && isTerminal(first, g.quote) && len([]rune(first)) == 3 {
			g.addNT(g.terminalRule([]rune(first)[1]), id)
			continue
		}

		ids := make([]uint64, 0, len(symbols))
		for _, s := range symbols {
			if isTerminal(s, g.quote) {
				ids = append(ids, g.addTerminal(s))
			} else {
				ids = append(ids, g.ruleID(s))
			}
		}

		// right hand sides longer than two are folded from the right
		for len(ids) > 2 {
			r2, r1 := ids[len(ids)-1], ids[len(ids)-2]
			ids = ids[:len(ids)-2]
			next := g.nextRule()
			g.addNT(pairKey(r1, r2), next)
			ids = append(ids, next)
		}

		switch len(ids) {
		case 2:
			g.addNT(pairKey(ids[0], ids[1]), id)
		case 1:
			if ids[0] == id {
				return g.errorf("rule '%s' is not allowed to refer solely to itself", lhs)
			}
			g.addNT(ids[0], id)
		}
	}
	return nil
}

// collectOneBackwards returns rule followed by every rule reachable from it
// through unit productions, in breadth-first order.
func (g *Grammar) collectOneBackwards(rule uint64) []uint64 {
	collection := []uint64{rule}
	seen := map[uint64]bool{rule: true}
	for i := 0; i < len(collection); i++ {
		for _, parent := range g.ntToNT[collection[i]] {
			if !seen[parent] {
				seen[parent] = true
				collection = append(collection, parent)
			}
		}
	}
	return collection
}

// collectBackwards returns every unit-production path from child up to
// parent, each as [parent, ..., child].
func (g *Grammar) collectBackwards(child, parent uint64) [][]uint64 {
	var (
		paths   [][]uint64
		path    []uint64
		visited = make(map[uint64]bool)
		walk    func(uint64)
	)
	walk = func(current uint64) {
		parents, ok := g.ntToNT[current]
		if !ok {
			return
		}
		visited[current] = true
		path = append(path, current)
		for _, prev := range parents {
			if visited[prev] {
				continue
			}
			if prev == parent {
				found := make([]uint64, 0, len(path)+1)
				found = append(found, parent)
				for i := len(path) - 1; i >= 0; i-- {
					found = append(found, path[i])
				}
				paths = append(paths, found)
			} else {
				walk(prev)
			}
		}
		path = path[:len(path)-1]
		delete(visited, current)
	}
	walk(child)
	return paths
}

// buildSubstitutions records, for every (bottom, top) pair linked by unit
// productions, the chain of rules between them so the tree can show them.
func (g *Grammar) buildSubstitutions() {
	for _, bottom := range slices.Sorted(maps.Keys(g.ntToNT)) {
		for _, top := range g.collectOneBackwards(bottom) {
			for _, chain := range g.collectBackwards(bottom, top) {
				for len(chain) > 1 {
					key := substKey{bottom: bottom, top: chain[0]}
					chain = chain[1:]
					if _, ok := g.substitution[key]; ok {
						break
					}
					g.substitution[key] = chain
				}
			}
		}
	}
}

// expandChains closes the terminal and pair tables over unit productions.
func (g *Grammar) expandChains() {
	closure := func(rules []uint64) []uint64 {
		out := slices.Clone(rules)
		for _, r := range rules {
			for _, p := range g.collectOneBackwards(r) {
				if !slices.Contains(out, p) {
					out = append(out, p)
				}
			}
		}
		return out
	}

	for c, rules := range g.tToNT {
		g.tToNT[c] = closure(rules)
	}

	expanded := make(map[uint64][]uint64, len(g.ntToNT))
	for key, rules := range g.ntToNT {
		expanded[key] = closure(rules)
	}
	g.ntToNT = expanded
}

func (g *Grammar) buildRightPairs() {
	g.rightPair = make([]*Bitfield, g.nextFree)
	for key := range g.ntToNT {
		if key <= mask {
			continue
		}
		left := key >> shift
		if g.rightPair[left] == nil {
			g.rightPair[left] = NewBitfield(int(g.nextFree))
		}
		g.rightPair[left].Add(int(key & mask))
	}
}
