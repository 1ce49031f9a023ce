package lipid

import (
	"strconv"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

// AcylAlkylGroup links a nested chain through an oxygen or nitrogen, as in
// ";12O(FA 16:0)" (acyl) or ";12O(16:0)" (alkyl).
type AcylAlkylGroup struct {
	FunctionalGroup
	Alkyl bool
	NBond bool
}

// NewAcylAlkylGroup wraps fa, which becomes owned by the group.
func NewAcylAlkylGroup(fa *FattyAcid, position, count int, alkyl, nBond bool) *AcylAlkylGroup {
	name := "acyl"
	if alkyl {
		name = "alkyl"
	}
	g := &AcylAlkylGroup{
		FunctionalGroup: *NewFunctionalGroup(name, position, count, nil),
		Alkyl:           alkyl,
		NBond:           nBond,
	}
	if !alkyl {
		g.DoubleBonds.Count = 1
	}
	g.AddGroup(renamed(fa, name))
	return g
}

// renamed stores the chain under the group name so lookups find it. Nested
// chains are counted as acyl residues; the group's own atoms correct for the
// actual linkage.
func renamed(fa *FattyAcid, name string) *FattyAcid {
	fa.Name = name
	fa.BondType = Ester
	return fa
}

// Chain returns the nested chain.
func (g *AcylAlkylGroup) Chain() *FattyAcid {
	return nestedChain(&g.FunctionalGroup, g.Name)
}

func nestedChain(fg *FunctionalGroup, name string) *FattyAcid {
	if list := fg.Groups[name]; len(list) > 0 {
		if fa, ok := list[0].(*FattyAcid); ok {
			return fa
		}
	}
	return nil
}

func (g *AcylAlkylGroup) Copy() Group {
	return &AcylAlkylGroup{FunctionalGroup: g.copyBase(), Alkyl: g.Alkyl, NBond: g.NBond}
}

func (g *AcylAlkylGroup) ComputeElements() core.Table {
	t := core.NewTable()
	switch {
	case g.NBond && g.Alkyl:
		t[core.H], t[core.O] = 2, -1
	case g.NBond:
		t[core.H] = 0
	case g.Alkyl:
		t[core.H] = 1
	default:
		t[core.H], t[core.O] = -1, 1
	}
	if g.NBond {
		t[core.N] = 1
	}
	return t
}

func (g *AcylAlkylGroup) Elements() core.Table {
	return sumElements(g)
}

func (g *AcylAlkylGroup) ToString(level Level) string {
	s := ""
	if level.Is(CompleteStructure|FullStructure) && g.Position > -1 {
		s = strconv.Itoa(g.Position)
	}
	if g.NBond {
		s += "N("
	} else {
		s += "O("
	}
	if !g.Alkyl {
		s += "FA "
	}
	if fa := g.Chain(); fa != nil {
		s += fa.ToString(level)
	}
	s += ")"
	if level == CompleteStructure && g.Stereo != "" {
		s += "[" + g.Stereo + "]"
	}
	return s
}

// CarbonChain is a plain carbon side chain such as ";12(3:0)".
type CarbonChain struct {
	FunctionalGroup
}

// NewCarbonChain wraps fa, which becomes owned by the group.
func NewCarbonChain(fa *FattyAcid, position, count int) *CarbonChain {
	g := &CarbonChain{FunctionalGroup: *NewFunctionalGroup("cc", position, count, nil)}
	g.AddGroup(renamed(fa, "cc"))
	return g
}

// Chain returns the nested chain.
func (g *CarbonChain) Chain() *FattyAcid {
	return nestedChain(&g.FunctionalGroup, "cc")
}

func (g *CarbonChain) Copy() Group {
	return &CarbonChain{FunctionalGroup: g.copyBase()}
}

func (g *CarbonChain) ComputeElements() core.Table {
	return core.Table{core.H: 1, core.O: -1}
}

func (g *CarbonChain) Elements() core.Table {
	return sumElements(g)
}

func (g *CarbonChain) ToString(level Level) string {
	s := ""
	if level.Is(CompleteStructure|FullStructure) && g.Position > -1 {
		s = strconv.Itoa(g.Position)
	}
	s += "("
	if fa := g.Chain(); fa != nil {
		s += fa.ToString(level)
	}
	return s + ")"
}
