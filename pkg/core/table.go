package core

import (
	"strconv"
	"strings"
)

// Table counts atoms per element. Counts may go negative while composing
// deltas but a finished formula only holds non-negative counts.
type Table map[Element]int

// NewTable returns an empty table.
func NewTable() Table {
	return make(Table)
}

// Add adds every count of o to t.
func (t Table) Add(o Table) {
	t.AddScaled(o, 1)
}

// AddScaled adds n times every count of o to t.
func (t Table) AddScaled(o Table, n int) {
	for e, c := range o {
		if c == 0 {
			continue
		}
		t[e] += c * n
	}
}

// Copy returns an independent copy of t.
func (t Table) Copy() Table {
	c := make(Table, len(t))
	for e, n := range t {
		c[e] = n
	}
	return c
}

// Equal reports whether both tables hold the same counts, ignoring zeros.
func (t Table) Equal(o Table) bool {
	for e, n := range t {
		if o[e] != n {
			return false
		}
	}
	for e, n := range o {
		if t[e] != n {
			return false
		}
	}
	return true
}

// SumFormula renders the table in element order, skipping empty counts.
func (t Table) SumFormula() string {
	var sb strings.Builder
	for _, e := range ElementOrder {
		n := t[e]
		if n > 0 {
			sb.WriteString(ElementShortcut[e])
		}
		if n > 1 {
			sb.WriteString(strconv.Itoa(n))
		}
	}
	return sb.String()
}

// Mass returns the monoisotopic mass of the table.
func (t Table) Mass() float64 {
	mass := 0.0
	for e, n := range t {
		mass += ElementMasses[e] * float64(n)
	}
	return mass
}

func (t Table) String() string {
	return t.SumFormula()
}
