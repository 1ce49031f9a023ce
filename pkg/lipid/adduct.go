package lipid

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/ChrisMcGann/goslin/pkg/core"
	"github.com/ChrisMcGann/goslin/pkg/formula"
)

// Adduct is the ionization of a lipid, e.g. "[M+2H]2+".
type Adduct struct {
	SumFormula   string
	AdductString string
	Charge       int // magnitude
	Sign         int // +1 or -1
	Heavy        core.Table // isotope labels, e.g. C13: 2 for "[M[13]C2+H]"

	elements core.Table
}

// NewAdduct parses the formula parts of an adduct. sumFormula is an optional
// neutral formula written after "M".
func NewAdduct(sumFormula, adduct string, charge, sign int) (*Adduct, error) {
	if sign != 1 && sign != -1 {
		return nil, constraintf("adduct charge sign must be +1 or -1, got %d", sign)
	}
	if charge < 0 {
		return nil, constraintf("negative adduct charge %d", charge)
	}
	t := core.NewTable()
	if sumFormula != "" {
		f, err := formula.Parse(sumFormula)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConstraintViolation, err)
		}
		t.Add(f)
	}
	if adduct != "" {
		f, err := formula.ParseAdduct(adduct)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConstraintViolation, err)
		}
		t.Add(f)
	}
	return &Adduct{
		SumFormula:   sumFormula,
		AdductString: adduct,
		Charge:       charge,
		Sign:         sign,
		Heavy:        core.NewTable(),
		elements:     t,
	}, nil
}

// SignedCharge returns the charge including its sign.
func (a *Adduct) SignedCharge() int {
	return a.Charge * a.Sign
}

// AddHeavy labels n atoms with isotope e.
func (a *Adduct) AddHeavy(e core.Element, n int) error {
	if _, ok := core.HeavyToRegular[e]; !ok {
		return constraintf("'%s' is not a heavy isotope", e)
	}
	if n < 1 {
		return constraintf("heavy label count %d", n)
	}
	a.Heavy[e] += n
	return nil
}

// Elements returns the element delta of the adduct with heavy isotopes
// replacing their natural counterparts.
func (a *Adduct) Elements() core.Table {
	t := a.elements.Copy()
	for e, n := range a.Heavy {
		if n == 0 {
			continue
		}
		t[core.HeavyToRegular[e]] -= n
		t[e] += n
	}
	return t
}

func (a *Adduct) heavyString() string {
	var sb strings.Builder
	for _, e := range core.ElementOrder {
		n := a.Heavy[e]
		if n <= 0 {
			continue
		}
		sb.WriteString(core.HeavyShortcut[e])
		if n > 1 {
			sb.WriteString(strconv.Itoa(n))
		}
	}
	return sb.String()
}

func (a *Adduct) String() string {
	s := "[M" + a.heavyString() + a.SumFormula + a.AdductString + "]"
	if a.Charge == 0 {
		return s
	}
	s += strconv.Itoa(a.Charge)
	if a.Sign > 0 {
		return s + "+"
	}
	return s + "-"
}

// AdductRegistry maps known adduct deltas to their intrinsic charge.
type AdductRegistry struct {
	mu      sync.RWMutex
	charges map[string]int
}

// NewAdductRegistry creates an empty registry.
func NewAdductRegistry() *AdductRegistry {
	return &AdductRegistry{charges: make(map[string]int)}
}

// DefaultAdductRegistry returns a registry pre-loaded with common adducts.
func DefaultAdductRegistry() *AdductRegistry {
	r := NewAdductRegistry()
	r.Add("+H", 1)
	r.Add("+2H", 2)
	r.Add("+3H", 3)
	r.Add("+4H", 4)
	r.Add("-H", -1)
	r.Add("-2H", -2)
	r.Add("-3H", -3)
	r.Add("-4H", -4)
	r.Add("+H-H2O", 1)
	r.Add("+NH4", 1)
	r.Add("+Na", 1)
	r.Add("+K", 1)
	r.Add("+Li", 1)
	r.Add("+Cl", -1)
	r.Add("+HCOO", -1)
	r.Add("+CH3COO", -1)
	r.Add("+2Na-H", 1)
	return r
}

// Add adds or updates an adduct.
func (r *AdductRegistry) Add(adduct string, charge int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charges[adduct] = charge
}

// Charge returns the intrinsic charge of an adduct.
func (r *AdductRegistry) Charge(adduct string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.charges[adduct]
	return c, ok
}

// LoadFromCSV loads adducts from a CSV file (format: adduct,charge).
func (r *AdductRegistry) LoadFromCSV(rd io.Reader) error {
	scanner := bufio.NewScanner(rd)

	// Skip header line
	scanner.Scan()

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			return fmt.Errorf("line %d: invalid format, expected at least 2 comma-separated fields", lineNum)
		}
		adduct := strings.TrimSpace(parts[0])
		chargeStr := strings.TrimSpace(parts[1])
		charge, err := strconv.Atoi(chargeStr)
		if err != nil {
			return fmt.Errorf("line %d: invalid charge value '%s': %w", lineNum, chargeStr, err)
		}
		if _, err := formula.ParseAdduct(adduct); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		r.Add(adduct, charge)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}
	return nil
}

// Validate checks that the declared charge of a matches its adduct delta.
func (r *AdductRegistry) Validate(a *Adduct) error {
	if a == nil || a.AdductString == "" {
		return nil
	}
	known, ok := r.Charge(a.AdductString)
	if !ok {
		return constraintf("unknown adduct '%s'", a.AdductString)
	}
	if known != a.SignedCharge() {
		return constraintf("provided charge %d does not match adduct '%s' with charge %d", a.SignedCharge(), a.AdductString, known)
	}
	return nil
}

// LipidAdduct is a parsed lipid with its optional adduct.
type LipidAdduct struct {
	Lipid  Lipid
	Adduct *Adduct
}

// Level returns the level the lipid is known at.
func (la *LipidAdduct) Level() Level {
	return la.Lipid.Level()
}

// LipidString renders the lipid at level, or at its own level for NoLevel.
// The adduct is left out at class and category level.
func (la *LipidAdduct) LipidString(level Level) (string, error) {
	if level == NoLevel {
		level = la.Lipid.Level()
	}
	s, err := la.Lipid.LipidString(level)
	if err != nil {
		return "", err
	}
	if la.Adduct != nil && !level.Is(ClassLevel|CategoryLevel) {
		s += la.Adduct.String()
	}
	return s, nil
}

func (la *LipidAdduct) String() string {
	s, _ := la.LipidString(NoLevel)
	return s
}

// Elements returns the lipid plus adduct atoms.
func (la *LipidAdduct) Elements() core.Table {
	t := la.Lipid.Elements()
	if la.Adduct != nil {
		t.Add(la.Adduct.Elements())
	}
	return t
}

// SumFormula returns the formula of lipid and adduct.
func (la *LipidAdduct) SumFormula() string {
	return la.Elements().SumFormula()
}

// Charge returns the signed charge, 0 when neutral.
func (la *LipidAdduct) Charge() int {
	if la.Adduct == nil {
		return 0
	}
	return la.Adduct.SignedCharge()
}

// Mass returns the neutral monoisotopic mass, or the m/z of a charged adduct.
func (la *LipidAdduct) Mass() float64 {
	return core.MZ(la.Elements().Mass(), la.Charge())
}

// Category returns the lipid category.
func (la *LipidAdduct) Category() Category {
	return la.Lipid.Headgroup().Category()
}

// ClassName returns the class with its sugar prefixes, e.g. "GalCer".
func (la *LipidAdduct) ClassName() string {
	return la.Lipid.Headgroup().String(ClassLevel)
}

// ExtendedClass appends "-O" or "-P" to ether glycerophospholipids.
func (la *LipidAdduct) ExtendedClass() string {
	class := la.ClassName()
	info := la.Lipid.Info()
	if la.Category() != GP || info.NumCarbon == 0 || info.NumEthers == 0 {
		return class
	}
	if info.Plasmenyl {
		return class + "-P"
	}
	return class + "-O"
}

// IsLyso reports a class with a free chain slot, e.g. LPC.
func (la *LipidAdduct) IsLyso() bool {
	return la.Lipid.Headgroup().Class.Has("Lyso")
}

// IsCardiolipin reports CL and its lyso forms.
func (la *LipidAdduct) IsCardiolipin() bool {
	return la.Lipid.Headgroup().Class.Has("Cardio")
}

// ContainsSugar reports a carbohydrate in the headgroup.
func (la *LipidAdduct) ContainsSugar() bool {
	return la.Lipid.Headgroup().ContainsSugar()
}

// ContainsEster reports at least one ester linked chain.
func (la *LipidAdduct) ContainsEster() bool {
	info := la.Lipid.Info()
	return info.NumCarbon > 0 && info.possibleFA-info.NumEthers-info.numLCB() > 0
}

// IsSPException reports a sphingolipid whose 1-hydroxyl belongs to the
// headgroup.
func (la *LipidAdduct) IsSPException() bool {
	return la.Lipid.Headgroup().SPException
}

// Annotation summarizes the lipid for library records.
func (la *LipidAdduct) Annotation() *core.Annotation {
	ann, _ := la.AnnotationAt(NoLevel)
	return ann
}

// AnnotationAt is Annotation with the name rendered at level. Levels finer
// than the lipid's own level are capped at it.
func (la *LipidAdduct) AnnotationAt(level Level) (*core.Annotation, error) {
	if level == NoLevel || level > la.Level() {
		level = la.Level()
	}
	name, err := la.LipidString(level)
	if err != nil {
		return nil, err
	}
	return &core.Annotation{
		Name:          name,
		Level:         level.String(),
		Category:      la.Category().String(),
		Class:         la.ClassName(),
		ExtendedClass: la.ExtendedClass(),
		SumFormula:    la.SumFormula(),
		Mass:          la.Mass(),
		NeutralMass:   la.Lipid.Elements().Mass(),
		Charge:        la.Charge(),
	}, nil
}
