package lipid

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// DoubleBonds is a double bond count with optional positions. A position maps
// to its geometry, "E", "Z" or "" when unknown.
type DoubleBonds struct {
	Count     int
	Positions map[int]string
}

// NewDoubleBonds returns n double bonds without positions.
func NewDoubleBonds(n int) DoubleBonds {
	return DoubleBonds{Count: n, Positions: map[int]string{}}
}

// Copy returns an independent copy.
func (d DoubleBonds) Copy() DoubleBonds {
	c := DoubleBonds{Count: d.Count, Positions: maps.Clone(d.Positions)}
	if c.Positions == nil {
		c.Positions = map[int]string{}
	}
	return c
}

// Add records a double bond at pos.
func (d *DoubleBonds) Add(pos int, geometry string) {
	if d.Positions == nil {
		d.Positions = map[int]string{}
	}
	d.Positions[pos] = geometry
}

// Validate checks that recorded positions match the declared count.
func (d DoubleBonds) Validate() error {
	if d.Count < 0 {
		return constraintf("negative double bond count %d", d.Count)
	}
	if len(d.Positions) > 0 && len(d.Positions) != d.Count {
		return constraintf("double bond count %d does not match %d positions", d.Count, len(d.Positions))
	}
	return nil
}

// HasPositions reports whether any position is recorded.
func (d DoubleBonds) HasPositions() bool {
	return len(d.Positions) > 0
}

// HasGeometry reports whether every recorded position carries E or Z.
func (d DoubleBonds) HasGeometry() bool {
	for _, g := range d.Positions {
		if g == "" {
			return false
		}
	}
	return len(d.Positions) > 0
}

// SortedPositions returns the recorded positions in ascending order.
func (d DoubleBonds) SortedPositions() []int {
	return slices.Sorted(maps.Keys(d.Positions))
}

// positionString renders "(5Z,9E)", with geometry only when asked.
func (d DoubleBonds) positionString(geometry bool) string {
	if len(d.Positions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(d.Positions))
	for _, pos := range d.SortedPositions() {
		p := strconv.Itoa(pos)
		if geometry {
			p += d.Positions[pos]
		}
		parts = append(parts, p)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
