package core

import (
	"math"
	"testing"
)

func TestTableMass(t *testing.T) {
	tests := []struct {
		name      string
		table     Table
		wantMass  float64
		tolerance float64
	}{
		{
			name:      "water",
			table:     Table{H: 2, O: 1},
			wantMass:  18.010565,
			tolerance: 0.00001,
		},
		{
			name:      "PC 34:1",
			table:     Table{C: 42, H: 82, N: 1, O: 8, P: 1},
			wantMass:  759.577806,
			tolerance: 0.00001,
		},
		{
			name:      "heavy carbon",
			table:     Table{C13: 1},
			wantMass:  13.003355,
			tolerance: 0.00001,
		},
		{
			name:      "empty",
			table:     NewTable(),
			wantMass:  0,
			tolerance: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.table.Mass()
			if math.Abs(got-tt.wantMass) > tt.tolerance {
				t.Errorf("Mass() = %.6f, want %.6f (within %.6f)", got, tt.wantMass, tt.tolerance)
			}
		})
	}
}

func TestMZ(t *testing.T) {
	tests := []struct {
		name      string
		mass      float64
		charge    int
		wantMZ    float64
		tolerance float64
	}{
		{"neutral", 500.0, 0, 500.0, 0},
		{"singly charged", 500.0, 1, 500.0 - ElectronRestMass, 1e-9},
		{"doubly charged", 721.5610, 2, 360.7800, 0.001},
		{"negative", 500.0, -1, 500.0 + ElectronRestMass, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MZ(tt.mass, tt.charge)
			if math.Abs(got-tt.wantMZ) > tt.tolerance {
				t.Errorf("MZ() = %.6f, want %.6f (within %.6f)", got, tt.wantMZ, tt.tolerance)
			}
		})
	}
}

func TestParseElement(t *testing.T) {
	tests := []struct {
		in     string
		want   Element
		wantOK bool
	}{
		{"C", C, true},
		{"13C", C13, true},
		{"C13", C13, true},
		{"C'", C13, true},
		{"[2]H", H2, true},
		{"Na", Na, true},
		{"Xx", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseElement(tt.in)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("ParseElement(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
