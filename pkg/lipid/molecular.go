package lipid

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

// CompareFattyAcids is the canonical chain order: placeholders first, then
// bond type, carbon count, double bond count and monoisotopic mass.
func CompareFattyAcids(a, b *FattyAcid) int {
	if ap, bp := a.IsPlaceholder(), b.IsPlaceholder(); ap != bp {
		if ap {
			return -1
		}
		return 1
	}
	ea, eb := a.Elements(), b.Elements()
	return cmp.Or(
		cmp.Compare(a.BondType, b.BondType),
		cmp.Compare(ea[core.C], eb[core.C]),
		cmp.Compare(a.DoubleBondCount(), b.DoubleBondCount()),
		cmp.Compare(ea.Mass(), eb.Mass()),
	)
}

// SortFattyAcids returns the chains in canonical order. The sort is stable
// and the input is left untouched.
func SortFattyAcids(fas []*FattyAcid) []*FattyAcid {
	sorted := slices.Clone(fas)
	slices.SortStableFunc(sorted, CompareFattyAcids)
	return sorted
}

// LipidMolecularSpecies knows every chain but not their sn positions.
type LipidMolecularSpecies struct {
	*LipidSpecies
}

// NewLipidMolecularSpecies checks that chain names are unique and fills the
// remaining chain slots of the class with "0:0" placeholders.
func NewLipidMolecularSpecies(hg *Headgroup, fas []*FattyAcid) (*LipidMolecularSpecies, error) {
	names := make(map[string]bool, len(fas))
	for _, fa := range fas {
		if names[fa.Name] {
			return nil, constraintf("fatty acyl names must be unique, '%s' was already added", fa.Name)
		}
		names[fa.Name] = true
	}
	for i := len(fas); i < hg.Class.MaxFA; i++ {
		name := "FA" + strconv.Itoa(i+1)
		for names[name] {
			name += "'"
		}
		names[name] = true
		fa, err := NewFattyAcid(name, 0, NewDoubleBonds(0), Ester, -1)
		if err != nil {
			return nil, err
		}
		fas = append(fas, fa)
	}
	return &LipidMolecularSpecies{NewLipidSpecies(hg, fas)}, nil
}

func (m *LipidMolecularSpecies) Level() Level { return MolecularSpecies }

// Elements sums the headgroup and every chain.
func (m *LipidMolecularSpecies) Elements() core.Table {
	t := m.headgroup.Elements()
	for _, fa := range m.fattyAcids {
		t.Add(fa.Elements())
	}
	return t
}

func (m *LipidMolecularSpecies) LipidString(level Level) (string, error) {
	switch {
	case level == MolecularSpecies:
		return m.chainString(level), nil
	case level > MolecularSpecies:
		return "", illegalLevel(MolecularSpecies, level)
	}
	return m.LipidSpecies.LipidString(level)
}

// chainString renders headgroup and chains. Molecular species list chains
// canonically sorted and "_" separated, except sphingolipids whose long chain
// base stays first; sn levels keep the order and use "/".
func (m *LipidMolecularSpecies) chainString(level Level) string {
	fas := m.fattyAcids
	sep := "/"
	if level == MolecularSpecies && m.headgroup.Category() != SP {
		fas = SortFattyAcids(fas)
		sep = "_"
	}
	parts := make([]string, 0, len(fas))
	for _, fa := range fas {
		if s := fa.ToString(level); s != "" {
			parts = append(parts, s)
		}
	}
	name := m.headgroup.String(level)
	if len(parts) > 0 {
		name += " " + strings.Join(parts, sep)
	}
	return name
}
