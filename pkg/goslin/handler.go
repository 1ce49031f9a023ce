package goslin

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/goslin/pkg/core"
	"github.com/ChrisMcGann/goslin/pkg/lipid"
	"github.com/ChrisMcGann/goslin/pkg/parser"
)

// frame is a chain or cycle under construction. Frames stack up while
// nested chains (acyl substituents, N-linked headgroup chains) and cycles
// are parsed.
type frame struct {
	cycle bool

	// chain
	carbon   int
	bond     lipid.BondType
	ethers   int
	hydroxyl int
	summary  bool

	// cycle
	size, start, end int
	bridge           []core.Element

	db     lipid.DoubleBonds
	dbPos  int
	dbGeom string
	groups []lipid.Group

	// functional group being read
	fgPos    int
	fgName   string
	fgCount  int
	fgStereo string
	fgChain  *lipid.FattyAcid
	fgAlkyl  bool
	fgNBond  bool
	fgCarbon bool
}

func newFrame(cycle bool) *frame {
	return &frame{
		cycle: cycle,
		bond:  lipid.Ester,
		start: -1,
		end:   -1,
		db:    lipid.NewDoubleBonds(0),
	}
}

func (f *frame) resetGroup() {
	f.fgPos, f.fgName, f.fgCount, f.fgStereo = -1, "", 1, ""
	f.fgChain, f.fgAlkyl, f.fgNBond, f.fgCarbon = nil, false, false, false
}

// scratch is the state of one parse.
type scratch struct {
	level         lipid.Level
	hgName        string
	sugars        []*lipid.HeadgroupDecorator
	suffixes      []*lipid.HeadgroupDecorator
	fas           []*lipid.FattyAcid
	frames        []*frame
	last          *lipid.FattyAcid
	lastSummary   bool
	lcbSummary    bool
	stereo        bool
	speciesEthers int

	adduct     string
	charge     int
	chargeSign int
	hasAdduct  bool

	heavy      map[core.Element]int
	heavyElem  core.Element
	heavyCount int
}

// lower caps the parse level at l.
func (s *scratch) lower(l lipid.Level) {
	s.level = min(s.level, l)
}

func (s *scratch) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func (s *scratch) push(f *frame) {
	s.frames = append(s.frames, f)
}

func (s *scratch) pop() *frame {
	f := s.top()
	s.frames = s.frames[:len(s.frames)-1]
	return f
}

type handler struct {
	registry *lipid.AdductRegistry
	s        *scratch
}

func newHandler(registry *lipid.AdductRegistry) *handler {
	return &handler{registry: registry, s: &scratch{}}
}

func (h *handler) Events() map[string]parser.EventFunc {
	return map[string]parser.EventFunc{
		"hg_class_pre_event":          h.hgClassPre,
		"sugar_pre_event":             h.sugarPre,
		"phospho_positions_pre_event": h.phosphoPositionsPre,
		"n_acyl_unknown_pre_event":    h.nAcylUnknownPre,
		"n_alkyl_unknown_pre_event":   h.nAlkylUnknownPre,
		"n_acyl_fa_post_event":        h.nAcylFAPost,
		"n_alkyl_fa_post_event":       h.nAlkylFAPost,

		"fa_separator_pre_event":    h.faSeparatorPre,
		"lipid_fa_post_event":       h.lipidFAPost,
		"fa_pre_event":              h.faPre,
		"fa_post_event":             h.faPost,
		"ether_pre_event":           h.etherPre,
		"hydroxyl_prefix_pre_event": h.hydroxylPrefixPre,
		"carbon_pre_event":          h.carbonPre,
		"db_count_pre_event":        h.dbCountPre,
		"db_post_event":             h.dbPost,
		"db_pos_pre_event":          h.dbPosPre,
		"cistrans_pre_event":        h.cistransPre,
		"db_position_post_event":    h.dbPositionPost,

		"element_summary_post_event": h.elementSummaryPost,
		"summary_count_pre_event":    h.summaryCountPre,
		"hydroxyl_count_pre_event":   h.hydroxylCountPre,
		"fg_pre_event":               h.fgPre,
		"fg_post_event":              h.fgPost,
		"fg_pos_pre_event":           h.fgPosPre,
		"fg_name_pre_event":          h.fgNamePre,
		"fg_count_pre_event":         h.fgCountPre,
		"stereo_pre_event":           h.stereoPre,
		"acyl_link_pre_event":        h.acylLinkPre,
		"acyl_fa_post_event":         h.acylFAPost,
		"alkyl_fa_post_event":        h.alkylFAPost,
		"carbon_chain_fa_post_event": h.carbonChainFAPost,

		"cycle_pre_event":          h.cyclePre,
		"cycle_post_event":         h.cyclePost,
		"cycle_start_pre_event":    h.cycleStartPre,
		"cycle_end_pre_event":      h.cycleEndPre,
		"cycle_size_pre_event":     h.cycleSizePre,
		"bridge_element_pre_event": h.bridgeElementPre,

		"adduct_pre_event":         h.adductPre,
		"heavy_element_pre_event":  h.heavyElementPre,
		"heavy_element_post_event": h.heavyElementPost,
		"heavy_isotope_pre_event":  h.heavyIsotopePre,
		"heavy_count_pre_event":    h.heavyCountPre,
		"charge_pre_event":         h.chargePre,
		"charge_sign_pre_event":    h.chargeSignPre,
	}
}

func (h *handler) Reset() {
	h.s = &scratch{level: lipid.FullStructure, chargeSign: 1}
}

func (h *handler) Result() (*lipid.LipidAdduct, error) {
	s := h.s
	level := s.level
	if s.stereo && level == lipid.FullStructure {
		level = lipid.CompleteStructure
	}
	if s.speciesEthers > 1 {
		level = lipid.Species
	}

	var adduct *lipid.Adduct
	if s.hasAdduct {
		charge := s.charge
		if charge == 0 {
			charge = 1
		}
		a, err := lipid.NewAdduct("", s.adduct, charge, s.chargeSign)
		if err != nil {
			return nil, err
		}
		for e, n := range s.heavy {
			if err := a.AddHeavy(e, n); err != nil {
				return nil, err
			}
		}
		if err := h.registry.Validate(a); err != nil {
			return nil, err
		}
		adduct = a
	}

	asm := &lipid.Assembly{
		HeadgroupName: s.hgName,
		Decorators:    append(s.sugars, s.suffixes...),
		FattyAcids:    s.fas,
		Level:         level,
		Adduct:        adduct,
		LCBSummary:    s.lcbSummary,
	}
	if s.speciesEthers > 1 {
		asm.SpeciesEthers = s.speciesEthers
	}
	return asm.Assemble()
}

// headgroup

func (h *handler) hgClassPre(node *parser.TreeNode) error {
	h.s.hgName = node.Text()
	return nil
}

func (h *handler) sugarPre(node *parser.TreeNode) error {
	d, err := lipid.NewSugarDecorator(node.Text(), 1)
	if err != nil {
		return err
	}
	h.s.sugars = append(h.s.sugars, d)
	return nil
}

func (h *handler) phosphoPositionsPre(node *parser.TreeNode) error {
	name := strings.TrimSuffix(strings.TrimPrefix(node.Text(), "("), ")")
	h.s.suffixes = append(h.s.suffixes, lipid.NewSuffixDecorator(name, lipid.MolecularSpecies))
	return nil
}

func (h *handler) nAcylUnknownPre(*parser.TreeNode) error {
	h.s.suffixes = append(h.s.suffixes, lipid.NewChainDecorator(nil, false))
	return nil
}

func (h *handler) nAlkylUnknownPre(*parser.TreeNode) error {
	h.s.suffixes = append(h.s.suffixes, lipid.NewChainDecorator(nil, true))
	return nil
}

func (h *handler) nAcylFAPost(*parser.TreeNode) error {
	h.s.suffixes = append(h.s.suffixes, lipid.NewChainDecorator(h.s.last, false))
	return nil
}

func (h *handler) nAlkylFAPost(*parser.TreeNode) error {
	h.s.suffixes = append(h.s.suffixes, lipid.NewChainDecorator(h.s.last, true))
	return nil
}

// chains

func (h *handler) faSeparatorPre(node *parser.TreeNode) error {
	if node.Text() == "_" {
		h.s.lower(lipid.MolecularSpecies)
	}
	return nil
}

func (h *handler) lipidFAPost(*parser.TreeNode) error {
	s := h.s
	if len(s.fas) == 0 {
		s.lcbSummary = s.lastSummary
	}
	s.last.Name = fmt.Sprintf("FA%d", len(s.fas)+1)
	s.fas = append(s.fas, s.last)
	return nil
}

func (h *handler) faPre(*parser.TreeNode) error {
	f := newFrame(false)
	f.resetGroup()
	h.s.push(f)
	return nil
}

func (h *handler) faPost(*parser.TreeNode) error {
	s := h.s
	f := s.pop()
	fa, err := lipid.NewFattyAcid("FA", f.carbon, f.db, f.bond, -1)
	if err != nil {
		return err
	}
	if f.hydroxyl > 0 {
		o, err := lipid.NewSummaryGroup("O", f.hydroxyl)
		if err != nil {
			return err
		}
		fa.AddGroup(o)
	}
	for _, g := range f.groups {
		fa.AddGroup(g)
	}
	if f.ethers > 1 && len(s.frames) == 0 {
		s.speciesEthers = f.ethers
	}
	s.last = fa
	s.lastSummary = f.summary
	return nil
}

func (h *handler) etherPre(node *parser.TreeNode) error {
	f := h.s.top()
	switch node.Text() {
	case "O-":
		f.bond, f.ethers = lipid.EtherPlasmanyl, 1
	case "P-":
		f.bond, f.ethers = lipid.EtherPlasmenyl, 1
	default:
		n, _ := lipid.EtherPrefixCount(node.Text())
		f.bond, f.ethers = lipid.EtherUnspecified, n
	}
	return nil
}

func (h *handler) hydroxylPrefixPre(node *parser.TreeNode) error {
	f := h.s.top()
	switch node.Text() {
	case "m":
		f.hydroxyl = 1
	case "d":
		f.hydroxyl = 2
	case "t":
		f.hydroxyl = 3
	}
	f.summary = true
	h.s.lower(lipid.SnPosition)
	return nil
}

func (h *handler) carbonPre(node *parser.TreeNode) error {
	n, err := node.Int()
	h.s.top().carbon = n
	return err
}

func (h *handler) dbCountPre(node *parser.TreeNode) error {
	n, err := node.Int()
	h.s.top().db.Count = n
	return err
}

func (h *handler) dbPost(*parser.TreeNode) error {
	db := h.s.top().db
	switch {
	case db.Count > 0 && !db.HasPositions():
		h.s.lower(lipid.SnPosition)
	case db.HasPositions() && !db.HasGeometry():
		h.s.lower(lipid.StructureDefined)
	}
	return nil
}

func (h *handler) dbPosPre(node *parser.TreeNode) error {
	n, err := node.Int()
	f := h.s.top()
	f.dbPos, f.dbGeom = n, ""
	return err
}

func (h *handler) cistransPre(node *parser.TreeNode) error {
	h.s.top().dbGeom = node.Text()
	return nil
}

func (h *handler) dbPositionPost(*parser.TreeNode) error {
	f := h.s.top()
	f.db.Add(f.dbPos, f.dbGeom)
	return nil
}

// substituents

func (h *handler) elementSummaryPost(node *parser.TreeNode) error {
	f := h.s.top()
	element := node.Text()[:1]
	count := f.fgCount
	g, err := lipid.NewSummaryGroup(element, count)
	if err != nil {
		return err
	}
	f.groups = append(f.groups, g)
	f.summary = true
	f.fgCount = 1
	h.s.lower(lipid.SnPosition)
	return nil
}

func (h *handler) summaryCountPre(node *parser.TreeNode) error {
	n, err := node.Int()
	h.s.top().fgCount = n
	return err
}

func (h *handler) hydroxylCountPre(node *parser.TreeNode) error {
	n, err := node.Int()
	if err != nil {
		return err
	}
	f := h.s.top()
	if n > 0 {
		g, err := lipid.NewSummaryGroup("O", n)
		if err != nil {
			return err
		}
		f.groups = append(f.groups, g)
	}
	f.summary = true
	h.s.lower(lipid.SnPosition)
	return nil
}

func (h *handler) fgPre(*parser.TreeNode) error {
	h.s.top().resetGroup()
	return nil
}

func (h *handler) fgPost(*parser.TreeNode) error {
	f := h.s.top()
	defer f.resetGroup()

	if f.fgPos < 0 {
		h.s.lower(lipid.StructureDefined)
	}
	var g lipid.Group
	switch {
	case f.fgChain != nil && f.fgCarbon:
		g = lipid.NewCarbonChain(f.fgChain, f.fgPos, 1)
	case f.fgChain != nil:
		g = lipid.NewAcylAlkylGroup(f.fgChain, f.fgPos, 1, f.fgAlkyl, f.fgNBond)
	default:
		fg, err := lipid.NewKnownGroup(f.fgName, f.fgPos, f.fgCount)
		if err != nil {
			return err
		}
		g = fg
	}
	g.Base().Stereo = f.fgStereo
	f.groups = append(f.groups, g)
	return nil
}

func (h *handler) fgPosPre(node *parser.TreeNode) error {
	n, err := node.Int()
	h.s.top().fgPos = n
	return err
}

func (h *handler) fgNamePre(node *parser.TreeNode) error {
	h.s.top().fgName = node.Text()
	return nil
}

func (h *handler) fgCountPre(node *parser.TreeNode) error {
	n, err := node.Int()
	h.s.top().fgCount = n
	return err
}

func (h *handler) stereoPre(node *parser.TreeNode) error {
	h.s.top().fgStereo = node.Text()
	h.s.stereo = true
	return nil
}

func (h *handler) acylLinkPre(node *parser.TreeNode) error {
	h.s.top().fgNBond = node.Text() == "N"
	return nil
}

func (h *handler) acylFAPost(*parser.TreeNode) error {
	f := h.s.top()
	f.fgChain, f.fgAlkyl = h.s.last, false
	return nil
}

func (h *handler) alkylFAPost(*parser.TreeNode) error {
	f := h.s.top()
	f.fgChain, f.fgAlkyl = h.s.last, true
	return nil
}

func (h *handler) carbonChainFAPost(*parser.TreeNode) error {
	f := h.s.top()
	f.fgChain, f.fgCarbon = h.s.last, true
	return nil
}

// cycles

func (h *handler) cyclePre(*parser.TreeNode) error {
	f := newFrame(true)
	f.resetGroup()
	h.s.push(f)
	return nil
}

func (h *handler) cyclePost(*parser.TreeNode) error {
	s := h.s
	f := s.pop()
	if f.start < 0 {
		s.lower(lipid.StructureDefined)
	}
	c, err := lipid.NewCycle(f.size, f.start, f.end, f.db, f.bridge)
	if err != nil {
		return err
	}
	for _, g := range f.groups {
		c.AddGroup(g)
	}
	parent := s.top()
	parent.groups = append(parent.groups, c)
	return nil
}

func (h *handler) cycleStartPre(node *parser.TreeNode) error {
	n, err := node.Int()
	h.s.top().start = n
	return err
}

func (h *handler) cycleEndPre(node *parser.TreeNode) error {
	n, err := node.Int()
	h.s.top().end = n
	return err
}

func (h *handler) cycleSizePre(node *parser.TreeNode) error {
	n, err := node.Int()
	h.s.top().size = n
	return err
}

func (h *handler) bridgeElementPre(node *parser.TreeNode) error {
	e, ok := core.ParseElement(node.Text())
	if !ok {
		return fmt.Errorf("%w: unknown bridge element '%s'", lipid.ErrConstraintViolation, node.Text())
	}
	f := h.s.top()
	f.bridge = append(f.bridge, e)
	return nil
}

// adduct

func (h *handler) adductPre(node *parser.TreeNode) error {
	h.s.adduct = node.Text()
	h.s.hasAdduct = true
	return nil
}

func (h *handler) heavyElementPre(*parser.TreeNode) error {
	h.s.heavyCount = 1
	return nil
}

func (h *handler) heavyIsotopePre(node *parser.TreeNode) error {
	e, ok := core.ParseElement(node.Text())
	if !ok {
		return fmt.Errorf("%w: unknown isotope '%s'", lipid.ErrConstraintViolation, node.Text())
	}
	h.s.heavyElem = e
	return nil
}

func (h *handler) heavyCountPre(node *parser.TreeNode) error {
	n, err := node.Int()
	h.s.heavyCount = n
	return err
}

func (h *handler) heavyElementPost(*parser.TreeNode) error {
	if h.s.heavy == nil {
		h.s.heavy = map[core.Element]int{}
	}
	h.s.heavy[h.s.heavyElem] += h.s.heavyCount
	return nil
}

func (h *handler) chargePre(node *parser.TreeNode) error {
	n, err := node.Int()
	h.s.charge = n
	return err
}

func (h *handler) chargeSignPre(node *parser.TreeNode) error {
	if node.Text() == "-" {
		h.s.chargeSign = -1
	}
	return nil
}
