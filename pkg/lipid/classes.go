package lipid

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ChrisMcGann/goslin/pkg/core"
	"github.com/ChrisMcGann/goslin/pkg/formula"
)

//go:embed data/lipid-classes.csv
var classData []byte

// ClassMeta describes a lipid class: its headgroup formula without chains
// and how many chains it carries.
type ClassMeta struct {
	Name         string
	Category     Category
	Description  string
	MaxFA        int // chain slots, including hydrogen placeholders
	PossibleFA   int // slots that carry a chain
	SpecialCases []string
	Elements     core.Table
	Synonyms     []string
	FewerChains  []string // classes for one, two, ... fewer chains
}

// Has reports whether the class carries a special case tag.
func (m *ClassMeta) Has(tag string) bool {
	return slices.Contains(m.SpecialCases, tag)
}

// ClassTable resolves class names and synonyms.
type ClassTable struct {
	classes []*ClassMeta
	byName  map[string]*ClassMeta
}

// LoadClassTable reads a class table (format: class,category,description,
// max_fa,possible_fa,special_cases,formula,synonyms,fewer_chains with '|'
// separated lists).
func LoadClassTable(r io.Reader) (*ClassTable, error) {
	scanner := bufio.NewScanner(r)

	// Skip header line
	scanner.Scan()

	ct := &ClassTable{byName: map[string]*ClassMeta{}}
	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 9 {
			return nil, fmt.Errorf("line %d: invalid format, expected 9 comma-separated fields", lineNum)
		}
		meta, err := parseClassRow(parts)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		ct.classes = append(ct.classes, meta)
		for _, name := range append([]string{meta.Name}, meta.Synonyms...) {
			if _, dup := ct.byName[name]; dup {
				return nil, fmt.Errorf("line %d: duplicate class name '%s'", lineNum, name)
			}
			ct.byName[name] = meta
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading class table: %w", err)
	}
	return ct, nil
}

func parseClassRow(parts []string) (*ClassMeta, error) {
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	category, ok := ParseCategory(parts[1])
	if !ok {
		return nil, fmt.Errorf("unknown category '%s'", parts[1])
	}
	maxFA, err := strconv.Atoi(parts[3])
	if err != nil {
		return nil, fmt.Errorf("invalid max_fa '%s': %w", parts[3], err)
	}
	possibleFA, err := strconv.Atoi(parts[4])
	if err != nil {
		return nil, fmt.Errorf("invalid possible_fa '%s': %w", parts[4], err)
	}
	if possibleFA > maxFA {
		return nil, fmt.Errorf("class '%s' has more possible than maximal chains", parts[0])
	}
	elements := core.NewTable()
	if parts[6] != "" {
		if elements, err = formula.Parse(parts[6]); err != nil {
			return nil, err
		}
	}
	return &ClassMeta{
		Name:         parts[0],
		Category:     category,
		Description:  parts[2],
		MaxFA:        maxFA,
		PossibleFA:   possibleFA,
		SpecialCases: splitList(parts[5]),
		Elements:     elements,
		Synonyms:     splitList(parts[7]),
		FewerChains:  splitList(parts[8]),
	}, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}

// Lookup returns the class for a name or synonym.
func (ct *ClassTable) Lookup(name string) (*ClassMeta, bool) {
	m, ok := ct.byName[name]
	return m, ok
}

// Classes returns all classes in table order.
func (ct *ClassTable) Classes() []*ClassMeta {
	return slices.Clone(ct.classes)
}

var defaultClasses = sync.OnceValues(func() (*ClassTable, error) {
	return LoadClassTable(bytes.NewReader(classData))
})

// Classes returns the built-in class table. It panics if the embedded table
// is broken.
func Classes() *ClassTable {
	ct, err := defaultClasses()
	if err != nil {
		panic(fmt.Sprintf("lipid: embedded class table: %v", err))
	}
	return ct
}

// LookupClass resolves a class name or synonym in the built-in table.
func LookupClass(name string) (*ClassMeta, bool) {
	return Classes().Lookup(name)
}
