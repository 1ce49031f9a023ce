package lipid

import (
	"cmp"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

// Group is implemented by every substituent in the structure tree. Each group
// exclusively owns the groups nested in it; sharing goes through Copy.
type Group interface {
	// Base exposes the common group fields.
	Base() *FunctionalGroup
	// Copy returns a deep copy.
	Copy() Group
	// ComputeElements returns the group's own atoms without nested groups.
	ComputeElements() core.Table
	// Elements returns the own atoms plus every nested group times its count.
	Elements() core.Table
	// DoubleBondCount includes double bonds of nested groups.
	DoubleBondCount() int
	// ShiftPositions renumbers the group and its nested groups by shift.
	ShiftPositions(shift int)
	// AddPosition increments every position that is >= pos.
	AddPosition(pos int)
	// ToString renders the group at level.
	ToString(level Level) string
}

// FunctionalGroup is a named substituent such as "OH" or "Me".
type FunctionalGroup struct {
	Name        string
	Position    int // -1 when unknown
	Count       int
	Stereo      string
	RingStereo  string
	DoubleBonds DoubleBonds
	Atomic      bool
	Atoms       core.Table
	Groups      map[string][]Group
}

// NewFunctionalGroup creates a group at position (-1 for none) with the given
// own atoms.
func NewFunctionalGroup(name string, position, count int, atoms core.Table) *FunctionalGroup {
	if atoms == nil {
		atoms = core.NewTable()
	}
	return &FunctionalGroup{
		Name:        name,
		Position:    position,
		Count:       count,
		DoubleBonds: NewDoubleBonds(0),
		Atoms:       atoms,
		Groups:      map[string][]Group{},
	}
}

func (fg *FunctionalGroup) Base() *FunctionalGroup { return fg }

func (fg *FunctionalGroup) Copy() Group {
	c := fg.copyBase()
	return &c
}

// copyBase deep-copies the common fields for the specialized Copy methods.
func (fg *FunctionalGroup) copyBase() FunctionalGroup {
	c := *fg
	c.DoubleBonds = fg.DoubleBonds.Copy()
	c.Atoms = fg.Atoms.Copy()
	c.Groups = make(map[string][]Group, len(fg.Groups))
	for name, list := range fg.Groups {
		cl := make([]Group, len(list))
		for i, g := range list {
			cl[i] = g.Copy()
		}
		c.Groups[name] = cl
	}
	return c
}

func (fg *FunctionalGroup) ComputeElements() core.Table {
	return fg.Atoms.Copy()
}

func (fg *FunctionalGroup) Elements() core.Table {
	return sumElements(fg)
}

// sumElements is the shared body of every Elements method. It must receive
// the outermost group so the specialized ComputeElements is used.
func sumElements(g Group) core.Table {
	t := g.ComputeElements()
	t.Add(g.Base().GroupElements())
	return t
}

// GroupElements sums the elements of all nested groups times their count.
func (fg *FunctionalGroup) GroupElements() core.Table {
	t := core.NewTable()
	for _, list := range fg.Groups {
		for _, g := range list {
			t.AddScaled(g.Elements(), g.Base().Count)
		}
	}
	return t
}

func (fg *FunctionalGroup) DoubleBondCount() int {
	return fg.Count*fg.DoubleBonds.Count + fg.groupDoubleBonds()
}

func (fg *FunctionalGroup) groupDoubleBonds() int {
	db := 0
	for _, list := range fg.Groups {
		for _, g := range list {
			db += g.DoubleBondCount()
		}
	}
	return db
}

func (fg *FunctionalGroup) ShiftPositions(shift int) {
	fg.Position += shift
	for _, list := range fg.Groups {
		for _, g := range list {
			g.ShiftPositions(shift)
		}
	}
}

func (fg *FunctionalGroup) AddPosition(pos int) {
	if fg.Position >= pos {
		fg.Position++
	}
	for _, list := range fg.Groups {
		for _, g := range list {
			g.AddPosition(pos)
		}
	}
}

// AddGroup nests g under its name.
func (fg *FunctionalGroup) AddGroup(g Group) {
	if fg.Groups == nil {
		fg.Groups = map[string][]Group{}
	}
	name := g.Base().Name
	fg.Groups[name] = append(fg.Groups[name], g)
}

// GroupNames returns the names of nested groups sorted case-insensitively.
func (fg *FunctionalGroup) GroupNames() []string {
	names := slices.Collect(maps.Keys(fg.Groups))
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return names
}

func (fg *FunctionalGroup) ToString(level Level) string {
	var s string
	if level.Is(CompleteStructure | FullStructure) {
		switch {
		case fg.Position < 0:
			s = fg.Name
		case fg.Name != "" && fg.Name[0] >= '0' && fg.Name[0] <= '9':
			s = strconv.Itoa(fg.Position) + fg.RingStereo + "(" + fg.Name + ")"
		default:
			s = strconv.Itoa(fg.Position) + fg.RingStereo + fg.Name
		}
	} else if fg.Count > 1 {
		s = "(" + fg.Name + ")" + strconv.Itoa(fg.Count)
	} else {
		s = fg.Name
	}
	if fg.Stereo != "" && level == CompleteStructure {
		s += "[" + fg.Stereo + "]"
	}
	return s
}

// groupString renders the nested groups the way chains and cycles list them:
// every name in its own ";" block, positions at full detail, counts at
// structure level. Names in expand are always rendered group by group.
func (fg *FunctionalGroup) groupString(level Level, expand map[string]bool) string {
	var sb strings.Builder
	for _, name := range fg.GroupNames() {
		list := fg.Groups[name]
		if len(list) == 0 {
			continue
		}
		if level.Is(CompleteStructure|FullStructure) || expand[name] {
			sorted := slices.Clone(list)
			slices.SortStableFunc(sorted, func(a, b Group) int {
				return cmp.Compare(a.Base().Position, b.Base().Position)
			})
			sb.WriteString(";")
			for i, g := range sorted {
				if i > 0 {
					sb.WriteString(",")
				}
				sb.WriteString(g.ToString(level))
			}
			continue
		}
		count := 0
		for _, g := range list {
			count += g.Base().Count
		}
		sb.WriteString(";")
		switch {
		case count <= 1:
			sb.WriteString(name)
		case list[0].Base().Atomic:
			sb.WriteString(name + strconv.Itoa(count))
		default:
			sb.WriteString("(" + name + ")" + strconv.Itoa(count))
		}
	}
	return sb.String()
}
