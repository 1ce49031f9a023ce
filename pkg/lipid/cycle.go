package lipid

import (
	"strconv"
	"strings"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

// Cycle is a ring closed over the backbone atoms Start..End, optionally
// bridged by heteroatoms, e.g. "[8-12cy5:0;11OH]".
type Cycle struct {
	FunctionalGroup
	Size   int
	Start  int // -1 when unknown
	End    int // -1 when unknown
	Bridge []core.Element
}

// NewCycle creates a ring of size atoms.
func NewCycle(size, start, end int, db DoubleBonds, bridge []core.Element) (*Cycle, error) {
	for _, e := range bridge {
		switch e {
		case core.C, core.N, core.P, core.As, core.O, core.S:
		default:
			return nil, constraintf("element '%s' cannot bridge a cycle", e)
		}
	}
	if size < 3 {
		return nil, constraintf("cycle of size %d", size)
	}
	if (start < 0) != (end < 0) || (start >= 0 && end < start) {
		return nil, constraintf("invalid cycle range %d-%d", start, end)
	}
	if err := db.Validate(); err != nil {
		return nil, err
	}
	c := &Cycle{
		FunctionalGroup: *NewFunctionalGroup("cy", -1, 1, nil),
		Size:            size,
		Start:           start,
		End:             end,
		Bridge:          append([]core.Element(nil), bridge...),
	}
	c.DoubleBonds = db.Copy()
	return c, nil
}

func (c *Cycle) Copy() Group {
	return &Cycle{
		FunctionalGroup: c.copyBase(),
		Size:            c.Size,
		Start:           c.Start,
		End:             c.End,
		Bridge:          append([]core.Element(nil), c.Bridge...),
	}
}

// implicitCarbons are ring carbons not covered by the backbone range or the
// bridge.
func (c *Cycle) implicitCarbons() int {
	if c.Start < 0 {
		return 0
	}
	return max(0, c.Size-(c.End-c.Start+1+len(c.Bridge)))
}

func (c *Cycle) ComputeElements() core.Table {
	t := core.Table{core.H: -2 - 2*c.DoubleBonds.Count}
	for _, e := range c.Bridge {
		t[e]++
		switch e {
		case core.C:
			t[core.H] += 2
		case core.N, core.P, core.As:
			t[core.H]++
		}
	}
	if n := c.implicitCarbons(); n > 0 {
		t[core.C] += n
		t[core.H] += 2 * n
	}
	return t
}

func (c *Cycle) Elements() core.Table {
	return sumElements(c)
}

// DoubleBondCount adds the ring closure to the bonds inside the ring.
func (c *Cycle) DoubleBondCount() int {
	return c.FunctionalGroup.DoubleBondCount() + 1
}

func (c *Cycle) ShiftPositions(shift int) {
	c.FunctionalGroup.ShiftPositions(shift)
	if c.Start >= 0 {
		c.Start += shift
		c.End += shift
	}
	shiftDoubleBonds(&c.DoubleBonds, func(pos int) int { return pos + shift })
}

func (c *Cycle) AddPosition(pos int) {
	c.FunctionalGroup.AddPosition(pos)
	if c.Start >= pos {
		c.Start++
	}
	if c.End >= pos {
		c.End++
	}
	shiftDoubleBonds(&c.DoubleBonds, func(p int) int {
		if p >= pos {
			return p + 1
		}
		return p
	})
}

func shiftDoubleBonds(db *DoubleBonds, move func(int) int) {
	shifted := make(map[int]string, len(db.Positions))
	for pos, g := range db.Positions {
		shifted[move(pos)] = g
	}
	db.Positions = shifted
}

func (c *Cycle) contains(pos int) bool {
	return c.Start <= pos && pos <= c.End
}

// RearrangeFunctionalGroups moves the ring range by shift and takes the
// double bonds and substituents of parent that lie within the new range.
// Positions of parent and of the ring's own contents are left as they are.
func (c *Cycle) RearrangeFunctionalGroups(parent *FunctionalGroup, shift int) {
	if c.Start < 0 {
		return
	}
	c.Start += shift
	c.End += shift

	moved := 0
	for pos, g := range parent.DoubleBonds.Positions {
		if c.contains(pos) {
			c.DoubleBonds.Add(pos, g)
			delete(parent.DoubleBonds.Positions, pos)
			moved++
		}
	}
	c.DoubleBonds.Count += moved
	parent.DoubleBonds.Count -= moved

	for name, list := range parent.Groups {
		keep := list[:0:0]
		for _, g := range list {
			if g != Group(c) && c.contains(g.Base().Position) {
				c.AddGroup(g)
			} else {
				keep = append(keep, g)
			}
		}
		if len(keep) == 0 {
			delete(parent.Groups, name)
		} else {
			parent.Groups[name] = keep
		}
	}
}

func (c *Cycle) ToString(level Level) string {
	var sb strings.Builder
	sb.WriteString("[")
	full := level.Is(CompleteStructure | FullStructure)
	if full && c.Start >= 0 {
		sb.WriteString(strconv.Itoa(c.Start) + "-" + strconv.Itoa(c.End))
	}
	if level.Is(CompleteStructure | FullStructure | StructureDefined) {
		for _, e := range c.Bridge {
			sb.WriteString(core.ElementShortcut[e])
		}
	}
	sb.WriteString("cy" + strconv.Itoa(c.Size) + ":" + strconv.Itoa(c.DoubleBonds.Count))
	if level.Is(CompleteStructure | FullStructure | StructureDefined) {
		sb.WriteString(c.DoubleBonds.positionString(full))
		sb.WriteString(c.groupString(level, nil))
	}
	sb.WriteString("]")
	if level == CompleteStructure && c.Stereo != "" {
		sb.WriteString("[" + c.Stereo + "]")
	}
	return sb.String()
}
