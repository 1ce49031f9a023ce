package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/goslin/pkg/core"
	"github.com/ChrisMcGann/goslin/pkg/goslin"
	"github.com/ChrisMcGann/goslin/pkg/lipid"
)

func testSpectrum() *core.Spectrum {
	return &core.Spectrum{
		Name:        "PC 16:0_18:1",
		PrecursorMZ: 760.5851,
		Peaks: []core.Peak{
			{MZ: 184.0733, Intensity: 1000, Annotation: "HG(PC,184)"},
			{MZ: 255.2330, Intensity: 40, Annotation: "FA 16:0"},
			{MZ: 281.2486, Intensity: 60, Annotation: "FA 18:1"},
			{MZ: 478.3292, Intensity: 5},
			{MZ: 577.5190, Intensity: 0, Annotation: "NL(183)"},
		},
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		wantMZ []float64
	}{
		{"no filters", Config{}, []float64{184.0733, 255.2330, 281.2486, 478.3292, 577.5190}},
		{"top 2", Config{TopN: 2}, []float64{184.0733, 281.2486}},
		{"cutoff 5%", Config{IntensityCutoff: 5}, []float64{184.0733, 281.2486}},
		{"cutoff 4%", Config{IntensityCutoff: 4}, []float64{184.0733, 255.2330, 281.2486}},
		{"annotations", Config{Annotations: []string{"FA", "NL"}}, []float64{255.2330, 281.2486, 577.5190}},
		{"annotations then top 1", Config{Annotations: []string{"FA"}, TopN: 1}, []float64{281.2486}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpectrum()
			require.NoError(t, tt.config.Apply(spec))

			var got []float64
			for _, p := range spec.Peaks {
				got = append(got, p.MZ)
			}
			assert.Equal(t, tt.wantMZ, got)
			assert.True(t, spec.ArePeaksSorted())
		})
	}
}

func TestApplyRejectsCutoff(t *testing.T) {
	c := Config{IntensityCutoff: 150}
	assert.Error(t, c.Apply(testSpectrum()))
}

func TestRemoveZeroIntensityPeaks(t *testing.T) {
	spec := testSpectrum()
	RemoveZeroIntensityPeaks(spec)
	assert.Len(t, spec.Peaks, 4)
	for _, p := range spec.Peaks {
		assert.Positive(t, p.Intensity)
	}
}

func TestNewSelector(t *testing.T) {
	s, err := NewSelector([]string{"gp"}, []string{"LacCer"}, "molecular", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []lipid.Category{lipid.GP}, s.Categories)
	assert.Equal(t, []string{"Hex2Cer"}, s.Classes)
	assert.Equal(t, lipid.MolecularSpecies, s.MinLevel)

	_, err = NewSelector([]string{"XX"}, nil, "", 0, 0)
	assert.Error(t, err)
	_, err = NewSelector(nil, []string{"NotAClass"}, "", 0, 0)
	assert.Error(t, err)
	_, err = NewSelector(nil, nil, "atomic", 0, 0)
	assert.Error(t, err)
}

func TestSelectorMatch(t *testing.T) {
	parse := func(name string) *lipid.LipidAdduct {
		la, err := goslin.Parse(name)
		require.NoError(t, err)
		return la
	}
	pc := parse("PC 16:0/18:1(9Z)")
	peo := parse("PE O-16:0/18:1(9Z)")
	cer := parse("Cer 18:1;O2/24:0")
	adduct := parse("PC 34:1[M+H]1+")

	tests := []struct {
		name     string
		selector Selector
		lipid    *lipid.LipidAdduct
		want     bool
	}{
		{"empty selects all", Selector{}, cer, true},
		{"category", Selector{Categories: []lipid.Category{lipid.GP}}, pc, true},
		{"other category", Selector{Categories: []lipid.Category{lipid.GP}}, cer, false},
		{"class", Selector{Classes: []string{"PC"}}, pc, true},
		{"extended class", Selector{Classes: []string{"PE-O"}}, peo, true},
		{"class mismatch", Selector{Classes: []string{"PE"}}, pc, false},
		{"min level met", Selector{MinLevel: lipid.SnPosition}, cer, true},
		{"min level missed", Selector{MinLevel: lipid.FullStructure}, cer, false},
		{"neutral mass in window", Selector{MinMZ: 759, MaxMZ: 760}, pc, true},
		{"neutral mass outside window", Selector{MaxMZ: 700}, pc, false},
		{"adduct m/z in window", Selector{MinMZ: 760, MaxMZ: 761}, adduct, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.selector.Match(tt.lipid))
		})
	}
}
