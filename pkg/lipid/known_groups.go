package lipid

import (
	"github.com/ChrisMcGann/goslin/pkg/core"
)

type knownGroup struct {
	atoms       core.Table
	doubleBonds int
	atomic      bool
}

var knownGroups = map[string]knownGroup{
	"OH":   {atoms: core.Table{core.O: 1}},
	"oxo":  {atoms: core.Table{core.O: 1, core.H: -2}, doubleBonds: 1},
	"oxy":  {atoms: core.Table{core.O: 1}},
	"Me":   {atoms: core.Table{core.C: 1, core.H: 2}},
	"Et":   {atoms: core.Table{core.C: 2, core.H: 4}},
	"OOH":  {atoms: core.Table{core.O: 2}},
	"Ep":   {atoms: core.Table{core.O: 1, core.H: -2}, doubleBonds: 1},
	"OMe":  {atoms: core.Table{core.C: 1, core.H: 2, core.O: 1}},
	"COOH": {atoms: core.Table{core.C: 1, core.O: 2}, doubleBonds: 1},
	"Ac":   {atoms: core.Table{core.C: 2, core.H: 2, core.O: 2}, doubleBonds: 1},
	"NH2":  {atoms: core.Table{core.N: 1, core.H: 1}},
	"SH":   {atoms: core.Table{core.S: 1}},
	"F":    {atoms: core.Table{core.F: 1, core.H: -1}, atomic: true},
	"Cl":   {atoms: core.Table{core.Cl: 1, core.H: -1}, atomic: true},
	"Br":   {atoms: core.Table{core.Br: 1, core.H: -1}, atomic: true},
	"I":    {atoms: core.Table{core.I: 1, core.H: -1}, atomic: true},
}

// summaryGroups back element summaries such as ";O2" where only the element
// count of the substituents is known.
var summaryGroups = map[string]core.Table{
	"O":  {core.O: 1},
	"N":  {core.N: 1, core.H: 1},
	"S":  {core.S: 1},
	"F":  {core.F: 1, core.H: -1},
	"Cl": {core.Cl: 1, core.H: -1},
	"Br": {core.Br: 1, core.H: -1},
	"I":  {core.I: 1, core.H: -1},
}

// sugars are the free carbohydrate baselines; a glycosidic residue loses one
// oxygen.
var sugars = map[string]core.Table{
	"Glc":    {core.C: 6, core.H: 10, core.O: 6},
	"Gal":    {core.C: 6, core.H: 10, core.O: 6},
	"Man":    {core.C: 6, core.H: 10, core.O: 6},
	"Hex":    {core.C: 6, core.H: 10, core.O: 6},
	"GlcNAc": {core.C: 8, core.H: 13, core.N: 1, core.O: 6},
	"GalNAc": {core.C: 8, core.H: 13, core.N: 1, core.O: 6},
	"HexNAc": {core.C: 8, core.H: 13, core.N: 1, core.O: 6},
	"NeuAc":  {core.C: 11, core.H: 17, core.N: 1, core.O: 9},
	"NeuGc":  {core.C: 11, core.H: 17, core.N: 1, core.O: 10},
	"Fuc":    {core.C: 6, core.H: 10, core.O: 5},
}

// NewKnownGroup returns a fresh group for a known substituent name.
func NewKnownGroup(name string, position, count int) (*FunctionalGroup, error) {
	kg, ok := knownGroups[name]
	if !ok {
		return nil, constraintf("unknown functional group '%s'", name)
	}
	fg := NewFunctionalGroup(name, position, count, kg.atoms.Copy())
	fg.DoubleBonds.Count = kg.doubleBonds
	fg.Atomic = kg.atomic
	return fg, nil
}

// IsKnownGroup reports whether name is a known substituent.
func IsKnownGroup(name string) bool {
	_, ok := knownGroups[name]
	return ok
}

// NewSummaryGroup returns the group for an element summary like ";O2".
func NewSummaryGroup(element string, count int) (*FunctionalGroup, error) {
	atoms, ok := summaryGroups[element]
	if !ok {
		return nil, constraintf("unknown element summary '%s'", element)
	}
	return NewFunctionalGroup(element, -1, count, atoms.Copy()), nil
}

// IsSugar reports whether name is a known carbohydrate residue.
func IsSugar(name string) bool {
	_, ok := sugars[name]
	return ok
}
