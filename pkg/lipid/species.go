package lipid

import (
	"strconv"
	"strings"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

// Lipid is a lipid known at one of the structural levels from Species to
// CompleteStructure. LipidString fails with ErrIllegalLevel for levels finer
// than Level.
type Lipid interface {
	Level() Level
	Headgroup() *Headgroup
	Info() *SpeciesInfo
	FattyAcids() []*FattyAcid
	Elements() core.Table
	LipidString(level Level) (string, error)
}

var etherPrefixes = []string{"", "O-", "dO-", "tO-", "eO-"}

// EtherPrefixCount returns the number of ether chains a species prefix such
// as "dO-" stands for.
func EtherPrefixCount(prefix string) (int, bool) {
	for i, p := range etherPrefixes {
		if p == prefix {
			return i, true
		}
	}
	return 0, false
}

// SpeciesInfo is the species-level summary of all chains: total carbons,
// double bonds and substituent elements.
type SpeciesInfo struct {
	NumCarbon      int
	DoubleBonds    int
	NumEthers      int
	NumSpecifiedFA int
	Plasmenyl      bool
	Groups         core.Table

	groupDoubleBonds int
	category         Category
	maxFA            int
	possibleFA       int
}

func newSpeciesInfo(hg *Headgroup) *SpeciesInfo {
	return &SpeciesInfo{
		Groups:     core.NewTable(),
		category:   hg.Category(),
		maxFA:      hg.Class.MaxFA,
		possibleFA: hg.Class.PossibleFA,
	}
}

// Add folds a backbone chain into the summary.
func (si *SpeciesInfo) Add(fa *FattyAcid) {
	if fa.BondType.IsEther() {
		si.NumEthers++
		si.Plasmenyl = si.Plasmenyl || fa.BondType == EtherPlasmenyl
	}
	if !fa.IsPlaceholder() {
		si.NumSpecifiedFA++
	}
	si.NumCarbon += fa.Elements()[core.C]
	si.DoubleBonds += fa.DoubleBondCount()
	si.groupDoubleBonds += fa.groupDoubleBonds()
	si.Groups.Add(fa.SummaryElements())
}

// addDecorator folds a chain linked to the headgroup into the totals.
func (si *SpeciesInfo) addDecorator(fa *FattyAcid) {
	si.NumCarbon += fa.Elements()[core.C]
	si.DoubleBonds += fa.DoubleBondCount()
	si.groupDoubleBonds += fa.groupDoubleBonds()
	si.Groups.Add(fa.GroupElements())
}

func (si *SpeciesInfo) numLCB() int {
	if si.category == SP && si.possibleFA > 0 {
		return 1
	}
	return 0
}

// Elements computes the chain atoms from the summary alone: each ester adds
// an oxygen and loses a hydrogen, each ether and long chain base gains one
// and every empty chain slot holds a hydrogen.
func (si *SpeciesInfo) Elements() core.Table {
	nLCB := si.numLCB()
	nEster := si.possibleFA - si.NumEthers - nLCB
	nDummy := si.maxFA - si.possibleFA
	chainC := si.NumCarbon - si.Groups[core.C]
	chainDB := si.DoubleBonds - si.groupDoubleBonds

	t := si.Groups.Copy()
	t[core.C] += chainC
	t[core.H] += 2*chainC - 2*chainDB - nEster + si.NumEthers + nLCB + nDummy
	t[core.O] += nEster
	t[core.N] += nLCB
	return t
}

// String renders "O-34:2;O2".
func (si *SpeciesInfo) String() string {
	var sb strings.Builder
	if si.NumEthers < len(etherPrefixes) {
		sb.WriteString(etherPrefixes[si.NumEthers])
	}
	sb.WriteString(strconv.Itoa(si.NumCarbon))
	sb.WriteString(":")
	sb.WriteString(strconv.Itoa(si.DoubleBonds))
	sb.WriteString(elementSummary(si.Groups))
	return sb.String()
}

// LipidSpecies is a lipid known by its headgroup and chain totals only.
type LipidSpecies struct {
	headgroup  *Headgroup
	info       *SpeciesInfo
	fattyAcids []*FattyAcid
}

// NewLipidSpecies takes ownership of hg and fas.
func NewLipidSpecies(hg *Headgroup, fas []*FattyAcid) *LipidSpecies {
	ls := &LipidSpecies{headgroup: hg, fattyAcids: fas, info: newSpeciesInfo(hg)}
	for _, fa := range fas {
		ls.info.Add(fa)
	}
	for _, fa := range hg.chainDecorators() {
		ls.info.addDecorator(fa)
	}
	return ls
}

func (ls *LipidSpecies) Level() Level             { return Species }
func (ls *LipidSpecies) Headgroup() *Headgroup    { return ls.headgroup }
func (ls *LipidSpecies) Info() *SpeciesInfo       { return ls.info }
func (ls *LipidSpecies) FattyAcids() []*FattyAcid { return ls.fattyAcids }

// Elements is computed from the species summary so it is identical for every
// level of the same lipid.
func (ls *LipidSpecies) Elements() core.Table {
	t := ls.info.Elements()
	t.Add(ls.headgroup.SpeciesElements())
	if ls.headgroup.SPException {
		t[core.O]--
	}
	return t
}

func (ls *LipidSpecies) LipidString(level Level) (string, error) {
	switch level {
	case CategoryLevel, ClassLevel:
		return ls.headgroup.String(level), nil
	case Species:
		s := ls.headgroup.String(level)
		if ls.info.NumCarbon > 0 || ls.info.DoubleBonds > 0 {
			s += " " + ls.info.String()
		}
		return s, nil
	}
	return "", illegalLevel(ls.Level(), level)
}
