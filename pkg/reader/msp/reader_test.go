package msp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

const library = `NAME: PC 16:0_18:1
PRECURSORMZ: 760.5851
PRECURSORTYPE: [M+H]+
IONMODE: Positive
FORMULA: C42H82NO8P
RETENTIONTIME: 12.5
COLLISIONENERGY: 35 eV
Num Peaks: 3
184.0733	1000	"HG(PC,184)"
478.3292	12
577.5190	40	"NL(183) loss"

Name: Cer 18:1;O2/24:0
Comment: Parent=650.6449 Collision_energy=40 iRT=20.1
Num peaks: 2
264.2686 100; 282.2791 50

# name-only entries
Name: PE 34:1[M-H]1-
Name: FA 18:1
`

func readAll(t *testing.T, text string) []*core.Spectrum {
	t.Helper()
	r := NewReader(strings.NewReader(text))
	var specs []*core.Spectrum
	for r.Next() {
		specs = append(specs, r.Spectrum())
	}
	require.NoError(t, r.Err())
	return specs
}

func TestReader(t *testing.T) {
	specs := readAll(t, library)
	require.Len(t, specs, 4)

	pc := specs[0]
	assert.Equal(t, "PC 16:0_18:1", pc.Name)
	assert.Equal(t, 760.5851, pc.PrecursorMZ)
	assert.Equal(t, "[M+H]+", pc.Adduct)
	assert.Equal(t, 1, pc.Charge)
	assert.Equal(t, "Positive", pc.IonMode)
	assert.Equal(t, "C42H82NO8P", pc.Formula)
	require.NotNil(t, pc.RetentionTime)
	assert.Equal(t, 12.5, *pc.RetentionTime)
	require.NotNil(t, pc.CollisionEnergy)
	assert.Equal(t, 35.0, *pc.CollisionEnergy)
	assert.Equal(t, 1, pc.SourceLine)
	require.Len(t, pc.Peaks, 3)
	assert.Equal(t, "HG(PC,184)", pc.Peaks[0].Annotation)
	assert.Equal(t, "", pc.Peaks[1].Annotation)
	assert.Equal(t, "NL(183) loss", pc.Peaks[2].Annotation)
	assert.Equal(t, "PC 16:0_18:1[M+H]+", pc.ParseName())

	cer := specs[1]
	assert.Equal(t, "Cer 18:1;O2/24:0", cer.Name)
	assert.Equal(t, 650.6449, cer.PrecursorMZ)
	require.NotNil(t, cer.CollisionEnergy)
	assert.Equal(t, 40.0, *cer.CollisionEnergy)
	require.NotNil(t, cer.RetentionTime)
	assert.Equal(t, 20.1, *cer.RetentionTime)
	assert.Equal(t, []core.Peak{{MZ: 264.2686, Intensity: 100}, {MZ: 282.2791, Intensity: 50}}, cer.Peaks)

	assert.Equal(t, "PE 34:1[M-H]1-", specs[2].Name)
	assert.Empty(t, specs[2].Peaks)
	assert.Equal(t, "FA 18:1", specs[3].Name)
	assert.Equal(t, 20, specs[3].SourceLine)
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"bad peak count", "Name: PC 34:1\nNum Peaks: x\n"},
		{"bad peak", "Name: PC 34:1\nNum Peaks: 1\n184.07 abc\n"},
		{"bad precursor", "Name: PC 34:1\nPrecursorMZ: high\n"},
		{"missing name", "PrecursorMZ: 760.5\nName: PC 34:1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.text))
			for r.Next() {
			}
			require.Error(t, r.Err())
			assert.Contains(t, r.Err().Error(), "line ")
		})
	}
}

func TestChargeFromPrecursorType(t *testing.T) {
	tests := []struct {
		in     string
		charge int
		ok     bool
	}{
		{"[M+H]+", 1, true},
		{"[M+2H]2+", 2, true},
		{"[M-H]-", -1, true},
		{"[M+HCOO]1-", -1, true},
		{"M+H", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			charge, ok := ChargeFromPrecursorType(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.charge, charge)
		})
	}
}
