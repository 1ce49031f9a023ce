package lipid

import (
	"slices"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

// glycoClasses expands ganglioside and globoside shorthands into their sugar
// chain on a ceramide, outermost residue first.
var glycoClasses = map[string]struct {
	name   string
	sugars []string
}{
	"gm3": {"GM3", []string{"NeuAc", "Gal", "Glc"}},
	"gm2": {"GM2", []string{"GalNAc", "NeuAc", "Gal", "Glc"}},
	"gm1": {"GM1", []string{"Gal", "GalNAc", "NeuAc", "Gal", "Glc"}},
	"gd3": {"GD3", []string{"NeuAc", "NeuAc", "Gal", "Glc"}},
	"gd2": {"GD2", []string{"GalNAc", "NeuAc", "NeuAc", "Gal", "Glc"}},
	"gd1": {"GD1", []string{"Gal", "GalNAc", "NeuAc", "NeuAc", "Gal", "Glc"}},
	"gt3": {"GT3", []string{"NeuAc", "NeuAc", "NeuAc", "Gal", "Glc"}},
	"gb3": {"Gb3", []string{"Gal", "Gal", "Glc"}},
	"gb4": {"Gb4", []string{"GalNAc", "Gal", "Gal", "Glc"}},
	"ga1": {"GA1", []string{"Gal", "GalNAc", "Gal", "Glc"}},
	"ga2": {"GA2", []string{"GalNAc", "Gal", "Glc"}},
}

// IsGlycoClass reports whether name is a glycosphingolipid shorthand such as
// "GM3".
func IsGlycoClass(name string) bool {
	_, ok := glycoClasses[strings.ToLower(name)]
	return ok
}

// GlycoClassNames returns the glycosphingolipid shorthands in sorted order.
func GlycoClassNames() []string {
	names := make([]string, 0, len(glycoClasses))
	for _, g := range glycoClasses {
		names = append(names, g.name)
	}
	slices.Sort(names)
	return names
}

// HeadgroupDecorator is an affix of the headgroup: a sugar prefix, a
// positional suffix such as "(3')", or an N-linked chain "-N(FA 8:0)".
type HeadgroupDecorator struct {
	FunctionalGroup
	Suffix             bool
	LowestVisibleLevel Level
}

// NewSugarDecorator returns a glycosidic residue of a known carbohydrate.
func NewSugarDecorator(name string, count int) (*HeadgroupDecorator, error) {
	base, ok := sugars[name]
	if !ok {
		return nil, constraintf("unknown carbohydrate '%s'", name)
	}
	atoms := base.Copy()
	atoms[core.O]--
	return &HeadgroupDecorator{
		FunctionalGroup:    *NewFunctionalGroup(name, -1, count, atoms),
		LowestVisibleLevel: CategoryLevel,
	}, nil
}

// NewSuffixDecorator returns an annotation-only suffix, e.g. the phosphate
// positions of "PIP(3')", shown from lowest upward.
func NewSuffixDecorator(name string, lowest Level) *HeadgroupDecorator {
	return &HeadgroupDecorator{
		FunctionalGroup:    *NewFunctionalGroup(name, -1, 1, nil),
		Suffix:             true,
		LowestVisibleLevel: lowest,
	}
}

// NewChainDecorator links a chain to the headgroup nitrogen, as in
// "PE-N(FA 8:0)" or "PS-N(6:0)". fa may be nil when only the chain kind is
// known.
func NewChainDecorator(fa *FattyAcid, alkyl bool) *HeadgroupDecorator {
	name := "decorator_acyl"
	if alkyl {
		name = "decorator_alkyl"
	}
	d := &HeadgroupDecorator{
		FunctionalGroup:    *NewFunctionalGroup(name, -1, 1, nil),
		Suffix:             true,
		LowestVisibleLevel: Species,
	}
	if fa != nil {
		d.AddGroup(renamed(fa, name))
	}
	return d
}

func (d *HeadgroupDecorator) Copy() Group {
	return &HeadgroupDecorator{
		FunctionalGroup:    d.copyBase(),
		Suffix:             d.Suffix,
		LowestVisibleLevel: d.LowestVisibleLevel,
	}
}

func (d *HeadgroupDecorator) isChain() bool {
	return d.Name == "decorator_acyl" || d.Name == "decorator_alkyl"
}

// Chain returns the linked chain of a chain decorator.
func (d *HeadgroupDecorator) Chain() *FattyAcid {
	if !d.isChain() {
		return nil
	}
	return nestedChain(&d.FunctionalGroup, d.Name)
}

// residue is what a chain decorator adds beyond the 2n-2db hydrogens that a
// species summary already counts for its carbons.
func (d *HeadgroupDecorator) residue() core.Table {
	if d.Name == "decorator_acyl" {
		return core.Table{core.H: -2, core.O: 1}
	}
	return core.NewTable()
}

func (d *HeadgroupDecorator) ComputeElements() core.Table {
	if !d.isChain() {
		return d.Atoms.Copy()
	}
	if d.Chain() == nil {
		return d.residue()
	}
	if d.Name == "decorator_acyl" {
		return core.Table{core.H: -1}
	}
	return core.Table{core.H: 1, core.O: -1}
}

func (d *HeadgroupDecorator) Elements() core.Table {
	return sumElements(d)
}

// speciesElements are the decorator atoms not covered by the species
// carbon and double bond summary.
func (d *HeadgroupDecorator) speciesElements() core.Table {
	if d.isChain() {
		return d.residue()
	}
	return d.Elements()
}

func (d *HeadgroupDecorator) ToString(level Level) string {
	if !d.Suffix {
		if d.Count > 1 {
			return d.Name + strconv.Itoa(d.Count)
		}
		return d.Name
	}
	if level < d.LowestVisibleLevel {
		return ""
	}
	if !d.isChain() {
		return "(" + d.Name + ")"
	}
	fa := d.Chain()
	switch {
	case level.Is(CategoryLevel|ClassLevel|Species) || fa == nil:
		if d.Name == "decorator_acyl" {
			return "-N(FA)"
		}
		return "-N(Alk)"
	case d.Name == "decorator_acyl":
		return "-N(FA " + fa.ToString(level) + ")"
	default:
		return "-N(" + fa.ToString(level) + ")"
	}
}

// Headgroup is the resolved class of a lipid plus its decorators.
type Headgroup struct {
	Name        string // canonical class name
	Class       *ClassMeta
	Decorators  []*HeadgroupDecorator
	SPException bool
	Glyco       string // shorthand such as "GM3", rendered instead of its sugars

	glycoSugars int
}

// NewHeadgroup resolves name, which may be a synonym or a glycosphingolipid
// shorthand, and attaches the decorators.
func NewHeadgroup(name string, decorators []*HeadgroupDecorator) (*Headgroup, error) {
	var (
		decs  []*HeadgroupDecorator
		alias string
	)
	if glyco, ok := glycoClasses[strings.ToLower(name)]; ok {
		alias = glyco.name
		for _, sugar := range glyco.sugars {
			d, err := NewSugarDecorator(sugar, 1)
			if err != nil {
				return nil, err
			}
			decs = append(decs, d)
		}
		name = "Cer"
	}
	decs = append(decs, decorators...)

	meta, ok := LookupClass(name)
	if !ok {
		return nil, unsupportedf("unknown lipid class '%s'", name)
	}
	h := &Headgroup{Name: meta.Name, Class: meta, Decorators: decs, Glyco: alias}
	if alias != "" {
		h.glycoSugars = len(decs) - len(decorators)
	}
	h.SPException = meta.Category == SP && (!h.plainSphingoid() || len(decs) > 0)
	return h, nil
}

func (h *Headgroup) plainSphingoid() bool {
	return h.Name == "Cer" || h.Name == "SPB"
}

// Category returns the lipid category of the class.
func (h *Headgroup) Category() Category {
	return h.Class.Category
}

// Copy returns an independent copy.
func (h *Headgroup) Copy() *Headgroup {
	c := *h
	c.Decorators = make([]*HeadgroupDecorator, len(h.Decorators))
	for i, d := range h.Decorators {
		c.Decorators[i] = d.Copy().(*HeadgroupDecorator)
	}
	return &c
}

// Elements returns the headgroup atoms including every decorator.
func (h *Headgroup) Elements() core.Table {
	return h.elements(func(d *HeadgroupDecorator) core.Table { return d.Elements() })
}

// SpeciesElements is Elements with chain decorators reduced to what a
// species summary does not count.
func (h *Headgroup) SpeciesElements() core.Table {
	return h.elements(func(d *HeadgroupDecorator) core.Table { return d.speciesElements() })
}

func (h *Headgroup) elements(of func(*HeadgroupDecorator) core.Table) core.Table {
	t := h.Class.Elements.Copy()
	for _, d := range h.Decorators {
		t.AddScaled(of(d), d.Count)
	}
	if h.plainSphingoid() && len(h.Decorators) == 0 {
		t[core.O]--
	}
	return t
}

// chainDecorators returns the chains linked to the headgroup.
func (h *Headgroup) chainDecorators() []*FattyAcid {
	var fas []*FattyAcid
	for _, d := range h.Decorators {
		if fa := d.Chain(); fa != nil {
			fas = append(fas, fa)
		}
	}
	return fas
}

// ContainsSugar reports a carbohydrate in the class or its decorators.
func (h *Headgroup) ContainsSugar() bool {
	if h.Class.Has("Sugar") {
		return true
	}
	return slices.ContainsFunc(h.Decorators, func(d *HeadgroupDecorator) bool {
		return IsSugar(d.Name)
	})
}

// String renders the headgroup at level. Sugar prefixes are listed in order
// with dashes from structure level on and sorted and concatenated below.
func (h *Headgroup) String(level Level) string {
	if level == CategoryLevel {
		return h.Category().String()
	}
	var prefixes []string
	for _, d := range h.Decorators[h.glycoSugars:] {
		if !d.Suffix {
			prefixes = append(prefixes, d.ToString(level))
		}
	}
	var sb strings.Builder
	if level.Is(CompleteStructure | FullStructure | StructureDefined) {
		for _, p := range prefixes {
			sb.WriteString(p + "-")
		}
	} else {
		slices.Sort(prefixes)
		sb.WriteString(strings.Join(prefixes, ""))
	}
	if h.Glyco != "" {
		sb.WriteString(h.Glyco)
	} else {
		sb.WriteString(h.Name)
	}
	if h.SPException && h.Glyco == "" && level.Is(CompleteStructure|FullStructure) {
		sb.WriteString("(1)")
	}
	for _, d := range h.Decorators {
		if d.Suffix {
			sb.WriteString(d.ToString(level))
		}
	}
	return sb.String()
}
