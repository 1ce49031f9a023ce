// Package core provides the element tables, sum formulas and spectrum records
// shared by the lipid parsers and the library converters.
package core

// Element is a chemical element or a stable heavy isotope.
type Element int

// Recognized elements and isotopes.
const (
	C Element = iota
	C13
	H
	H2
	N
	N15
	O
	O17
	O18
	P
	P32
	S
	S34
	S33
	F
	Cl
	Br
	I
	As
	B
	Na
	K
	Li
)

// ElectronRestMass is used to correct the mass of charged species.
const ElectronRestMass = 0.00054857990946

// ElementMasses holds monoisotopic masses.
var ElementMasses = map[Element]float64{
	C:   12.0,
	H:   1.007825035,
	N:   14.0030740,
	O:   15.99491463,
	P:   30.973762,
	S:   31.9720707,
	H2:  2.014101779,
	C13: 13.0033548378,
	N15: 15.0001088984,
	O17: 16.9991315,
	O18: 17.9991604,
	P32: 31.973907274,
	S33: 32.97145876,
	S34: 33.96786690,
	F:   18.9984031,
	Cl:  34.968853,
	Br:  78.918327,
	I:   126.904473,
	As:  74.921595,
	B:   11.0093052,
	Na:  22.98976928,
	K:   38.96370649,
	Li:  7.01600344,
}

// ElementShortcut is the printable symbol used in sum formulas.
var ElementShortcut = map[Element]string{
	C: "C", H: "H", N: "N", O: "O", P: "P", S: "S", F: "F", Cl: "Cl", Br: "Br",
	B: "B", I: "I", As: "As", Na: "Na", K: "K", Li: "Li",
	H2: "H'", C13: "C'", N15: "N'", O17: "O'", O18: "O''", P32: "P'", S33: "S'", S34: "S''",
}

// HeavyShortcut renders isotopes in bracket notation.
var HeavyShortcut = map[Element]string{
	H2: "[2]H", C13: "[13]C", N15: "[15]N", O17: "[17]O", O18: "[18]O",
	P32: "[32]P", S33: "[33]S", S34: "[34]S",
}

// ElementOrder is the Hill-like order used when rendering sum formulas.
var ElementOrder = []Element{
	C, H, B, As, Br, Cl, F, I, K, Li, N, Na, O, P, S,
	H2, C13, N15, O17, O18, P32, S33, S34,
}

// HeavyToRegular maps an isotope to its natural element.
var HeavyToRegular = map[Element]Element{
	H2: H, C13: C, N15: N, O17: O, O18: O, P32: P, S33: S, S34: S,
}

var elementNames = map[string]Element{
	"C": C, "H": H, "N": N, "O": O, "P": P, "P'": P32, "S": S, "F": F, "Cl": Cl,
	"Br": Br, "B": B, "I": I, "As": As, "Na": Na, "K": K, "Li": Li,
	"S'": S33, "S''": S34, "H'": H2, "C'": C13, "N'": N15, "O'": O17, "O''": O18,
	"2H": H2, "13C": C13, "15N": N15, "17O": O17, "18O": O18, "32P": P32, "34S": S34, "33S": S33,
	"H2": H2, "C13": C13, "N15": N15, "O17": O17, "O18": O18, "P32": P32, "S34": S34, "S33": S33,
	"[2]H": H2, "[13]C": C13, "[15]N": N15, "[17]O": O17, "[18]O": O18, "[32]P": P32, "[33]S": S33, "[34]S": S34,
}

// ParseElement resolves an element symbol in any of the accepted spellings.
func ParseElement(name string) (Element, bool) {
	e, ok := elementNames[name]
	return e, ok
}

// String returns the element's formula symbol.
func (e Element) String() string {
	if s, ok := ElementShortcut[e]; ok {
		return s
	}
	return "?"
}

// Mass returns the monoisotopic mass of the element.
func (e Element) Mass() float64 {
	return ElementMasses[e]
}
