package parser

import (
	"iter"
	"math/bits"
)

// Bitfield is a fixed-size set of small non-negative integers. A second
// level of bits marks the non-empty words so sparse sets iterate quickly.
type Bitfield struct {
	field      []uint64
	superfield []uint64
}

// NewBitfield returns a set able to hold values in [0, length).
func NewBitfield(length int) *Bitfield {
	l := 1 + ((length + 1) >> 6)
	s := 1 + ((l + 1) >> 6)
	return &Bitfield{
		field:      make([]uint64, l),
		superfield: make([]uint64, s),
	}
}

// Add inserts pos.
func (b *Bitfield) Add(pos int) {
	b.field[pos>>6] |= 1 << (pos & 63)
	b.superfield[pos>>12] |= 1 << ((pos >> 6) & 63)
}

// Has reports whether pos is in the set. A nil set is empty.
func (b *Bitfield) Has(pos int) bool {
	if b == nil || pos>>6 >= len(b.field) {
		return false
	}
	return (b.field[pos>>6]>>(pos&63))&1 == 1
}

// Positions yields the members in ascending order.
func (b *Bitfield) Positions() iter.Seq[int] {
	return func(yield func(int) bool) {
		if b == nil {
			return
		}
		for si, sv := range b.superfield {
			for sv != 0 {
				word := si<<6 + bits.TrailingZeros64(sv)
				v := b.field[word]
				for v != 0 {
					if !yield(word<<6 + bits.TrailingZeros64(v)) {
						return
					}
					v &= v - 1
				}
				sv &= sv - 1
			}
		}
	}
}
