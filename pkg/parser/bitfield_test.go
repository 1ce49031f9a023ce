package parser

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitfield(t *testing.T) {
	b := NewBitfield(10001)
	values := []int{10000, 0, 64, 63, 4096, 4095}
	for _, v := range values {
		b.Add(v)
	}

	assert.Equal(t, []int{0, 63, 64, 4095, 4096, 10000}, slices.Collect(b.Positions()))
	assert.True(t, b.Has(4096))
	assert.False(t, b.Has(1))
	assert.False(t, b.Has(1<<20), "out of range")

	var first []int
	for p := range b.Positions() {
		if p > 63 {
			break
		}
		first = append(first, p)
	}
	assert.Equal(t, []int{0, 63}, first)
}

func TestNilBitfield(t *testing.T) {
	var b *Bitfield
	assert.False(t, b.Has(3))
	assert.Empty(t, slices.Collect(b.Positions()))
}
