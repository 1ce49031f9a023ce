package lipid

import (
	"strconv"
	"strings"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

// structureExpanded lists group names rendered in full even at structure
// level, because their content is itself a structure.
var structureExpanded = map[string]bool{
	"acyl": true, "alkyl": true, "cy": true, "cc": true, "acetoxy": true,
}

// FattyAcid is an acyl, alkyl or long chain base residue.
type FattyAcid struct {
	FunctionalGroup
	NumCarbon int
	BondType  BondType
}

// NewFattyAcid creates a chain. position is -1 when the sn position is not
// known.
func NewFattyAcid(name string, numCarbon int, db DoubleBonds, bond BondType, position int) (*FattyAcid, error) {
	if numCarbon < 0 || numCarbon == 1 {
		return nil, constraintf("fatty acyl chain '%s' must have 0 or at least 2 carbons, got %d", name, numCarbon)
	}
	if position < -1 {
		return nil, constraintf("fatty acyl chain '%s' has invalid position %d", name, position)
	}
	if bond == UndefinedBond || bond == NoFA {
		return nil, constraintf("fatty acyl chain '%s' has no bond type", name)
	}
	if err := db.Validate(); err != nil {
		return nil, err
	}
	fg := NewFunctionalGroup(name, position, 1, nil)
	fg.DoubleBonds = db.Copy()
	return &FattyAcid{FunctionalGroup: *fg, NumCarbon: numCarbon, BondType: bond}, nil
}

func (fa *FattyAcid) Copy() Group {
	return fa.CopyFattyAcid()
}

// CopyFattyAcid is Copy with the concrete type.
func (fa *FattyAcid) CopyFattyAcid() *FattyAcid {
	return &FattyAcid{FunctionalGroup: fa.copyBase(), NumCarbon: fa.NumCarbon, BondType: fa.BondType}
}

// SetBondType changes the linkage of the chain.
func (fa *FattyAcid) SetBondType(bond BondType) {
	fa.BondType = bond
}

func (fa *FattyAcid) plasmenyl() int {
	if fa.BondType == EtherPlasmenyl {
		return 1
	}
	return 0
}

// IsPlaceholder reports a "0:0" chain.
func (fa *FattyAcid) IsPlaceholder() bool {
	return fa.NumCarbon == 0 && fa.DoubleBonds.Count == 0
}

func (fa *FattyAcid) ComputeElements() core.Table {
	t := core.NewTable()
	n := fa.NumCarbon
	db := fa.DoubleBonds.Count + fa.plasmenyl()
	if n == 0 && db == 0 {
		t[core.H] = 1
		return t
	}
	t[core.C] = n
	switch {
	case fa.BondType.IsLCB():
		t[core.H] = 2*(n-db) + 1
		t[core.N] = 1
	case fa.BondType == Ester:
		t[core.H] = 2*n - 1 - 2*db
		t[core.O] = 1
	default:
		t[core.H] = 2*n + 1 - 2*db
	}
	return t
}

func (fa *FattyAcid) Elements() core.Table {
	return sumElements(fa)
}

func (fa *FattyAcid) DoubleBondCount() int {
	return fa.FunctionalGroup.DoubleBondCount() + fa.plasmenyl()
}

// SummaryElements are the substituent elements shown as ";O2" style
// summaries. The long chain base of a sphingolipid exception class carries
// its 1-hydroxyl in the headgroup and gets it back here.
func (fa *FattyAcid) SummaryElements() core.Table {
	t := fa.GroupElements()
	if fa.BondType == LCBException {
		t[core.O]++
	}
	return t
}

func (fa *FattyAcid) ToString(level Level) string {
	var sb strings.Builder
	sb.WriteString(fa.BondType.Prefix())

	carbons, dbs := fa.NumCarbon, fa.DoubleBonds.Count
	if carbons == 0 && dbs == 0 && !level.Is(CompleteStructure|FullStructure|StructureDefined|SnPosition) {
		return ""
	}
	if level.Is(MolecularSpecies | SnPosition) {
		carbons = fa.Elements()[core.C]
		dbs = fa.DoubleBondCount() - fa.plasmenyl()
	}
	sb.WriteString(strconv.Itoa(carbons))
	sb.WriteString(":")
	sb.WriteString(strconv.Itoa(dbs))

	switch {
	case level.Is(MolecularSpecies | SnPosition):
		sb.WriteString(elementSummary(fa.SummaryElements()))
	default:
		sb.WriteString(fa.DoubleBonds.positionString(level.Is(CompleteStructure | FullStructure)))
		if level == CompleteStructure && fa.Stereo != "" {
			sb.WriteString("[" + fa.Stereo + "]")
		}
		sb.WriteString(fa.groupString(level, structureExpanded))
	}
	return sb.String()
}

// elementSummary renders ";O2;N" for every element after C and H.
func elementSummary(t core.Table) string {
	var sb strings.Builder
	for _, e := range core.ElementOrder[2:] {
		n := t[e]
		if n <= 0 {
			continue
		}
		sb.WriteString(";")
		sb.WriteString(core.ElementShortcut[e])
		if n > 1 {
			sb.WriteString(strconv.Itoa(n))
		}
	}
	return sb.String()
}
