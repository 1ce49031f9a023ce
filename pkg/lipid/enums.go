// Package lipid holds the structural model of a parsed lipid name: functional
// groups, fatty acyl chains, cycles, headgroups and the level hierarchy that
// renders a lipid at any depth of structural detail.
package lipid

import (
	"fmt"
	"strings"
)

// Category is the top level of the lipid classification.
type Category int

const (
	NoCategory Category = iota
	UndefinedCategory
	GL // glycerolipids
	GP // glycerophospholipids
	SP // sphingolipids
	ST // sterol lipids
	FA // fatty acyls
	SL // saccharolipids
)

var categoryNames = map[Category]string{
	NoCategory:        "NO_CATEGORY",
	UndefinedCategory: "UNDEFINED",
	GL:                "GL",
	GP:                "GP",
	SP:                "SP",
	ST:                "ST",
	FA:                "FA",
	SL:                "SL",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "UNDEFINED"
}

// ParseCategory resolves a category abbreviation such as "GP".
func ParseCategory(s string) (Category, bool) {
	for c, name := range categoryNames {
		if strings.EqualFold(name, s) {
			return c, true
		}
	}
	return UndefinedCategory, false
}

// Level is the depth of structural detail a lipid is known or rendered at.
// Levels are bit flags so a set of levels can be tested with Is.
type Level int

const (
	NoLevel Level = 1 << iota
	UndefinedLevel
	CategoryLevel
	ClassLevel
	Species
	MolecularSpecies
	SnPosition
	StructureDefined
	FullStructure
	CompleteStructure
)

var levelNames = []struct {
	level Level
	name  string
}{
	{NoLevel, "NO_LEVEL"},
	{UndefinedLevel, "UNDEFINED_LEVEL"},
	{CategoryLevel, "CATEGORY"},
	{ClassLevel, "CLASS"},
	{Species, "SPECIES"},
	{MolecularSpecies, "MOLECULAR_SPECIES"},
	{SnPosition, "SN_POSITION"},
	{StructureDefined, "STRUCTURE_DEFINED"},
	{FullStructure, "FULL_STRUCTURE"},
	{CompleteStructure, "COMPLETE_STRUCTURE"},
}

func (l Level) String() string {
	for _, ln := range levelNames {
		if ln.level == l {
			return ln.name
		}
	}
	return "UNDEFINED_LEVEL"
}

// Is reports whether l is one of the levels in mask.
func (l Level) Is(mask Level) bool {
	return l&mask != 0
}

// ParseLevel accepts a level name case-insensitively, with '-' or '_' as
// separator, plus the short forms "category", "class", "molecular", "sn",
// "structure", "full" and "complete".
func ParseLevel(s string) (Level, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, ln := range levelNames {
		if ln.name == key {
			return ln.level, nil
		}
	}
	switch key {
	case "MOLECULAR":
		return MolecularSpecies, nil
	case "SN":
		return SnPosition, nil
	case "STRUCTURE":
		return StructureDefined, nil
	case "FULL":
		return FullStructure, nil
	case "COMPLETE":
		return CompleteStructure, nil
	}
	return NoLevel, fmt.Errorf("%w: unknown level '%s'", ErrIllegalLevel, s)
}

// BondType describes how a chain is linked to the backbone. The declaration
// order is the first key of the canonical chain order.
type BondType int

const (
	LCBRegular BondType = iota
	LCBException
	EtherPlasmanyl
	EtherPlasmenyl
	Ether
	EtherUnspecified
	Ester
	Amine
	UndefinedBond
	NoFA
)

var bondNames = map[BondType]string{
	LCBRegular:       "LCB_REGULAR",
	LCBException:     "LCB_EXCEPTION",
	EtherPlasmanyl:   "ETHER_PLASMANYL",
	EtherPlasmenyl:   "ETHER_PLASMENYL",
	Ether:            "ETHER",
	EtherUnspecified: "ETHER_UNSPECIFIED",
	Ester:            "ESTER",
	Amine:            "AMINE",
	UndefinedBond:    "UNDEFINED_FA",
	NoFA:             "NO_FA",
}

func (b BondType) String() string {
	return bondNames[b]
}

// IsLCB reports whether the chain is a long chain base.
func (b BondType) IsLCB() bool {
	return b == LCBRegular || b == LCBException
}

// IsEther reports whether the chain is ether linked.
func (b BondType) IsEther() bool {
	switch b {
	case EtherPlasmanyl, EtherPlasmenyl, Ether, EtherUnspecified:
		return true
	}
	return false
}

// Prefix is the chain prefix used in names.
func (b BondType) Prefix() string {
	switch b {
	case EtherPlasmanyl, EtherUnspecified:
		return "O-"
	case EtherPlasmenyl:
		return "P-"
	}
	return ""
}
