package goslin

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/goslin/pkg/core"
	"github.com/ChrisMcGann/goslin/pkg/lipid"
	"github.com/ChrisMcGann/goslin/pkg/parser"
)

func newParser(t *testing.T, opts ...Option) *Parser {
	t.Helper()
	p, err := New(opts...)
	require.NoError(t, err)
	return p
}

func TestGrammarCompiles(t *testing.T) {
	g, err := grammar()
	require.NoError(t, err)
	assert.Equal(t, "Goslin", g.Name())
	assert.True(t, g.HasRule("hg_class"))
}

func TestParseFormula(t *testing.T) {
	tests := []struct {
		name    string
		formula string
	}{
		{"PC 18:1(11Z)/16:0", "C42H82NO8P"},
		{"Cer 18:1(8Z);1OH,3OH/24:0", "C42H83NO3"},
		{"Gal-Cer(1) 18:1(5Z);3OH/24:0", "C48H93NO8"},
		{"SPB 18:1(4Z);1OH,3OH", "C18H37NO2"},
		{"LSM(1) 17:1(4E);3OH", "C22H47N2O5P"},
		{"EPC(1) 14:1(4E);3OH/20:1(11Z)", "C36H71N2O6P"},
		{"PE O-16:0/18:2(9Z,12Z)", "C39H76NO7P"},
		{"FA 22:0;4O(FA 10:0),5O(FA 10:0)", "C42H80O6"},
		{"FA 18:0;12(3:0)", "C21H42O2"},
		{"FA 8:0;[6-8SScy5:0]", "C8H14O2S2"},
		{"FA 20:0;[12-15Ocy5:2(12E,13E);13Me,14Me]", "C22H38O3"},
		{"FA 20:2(5Z,13E);[8-13cy6;9OH,11OH;11oxy];15OH", "C20H34O6"},
		{"FA 22:4(4Z,7Z,10Z,18E);[13-17cy5;14OH,16OH];20OH", "C22H34O5"},
		{"PE-N(FA 8:0) 30:5(12Z,15Z,18Z,21Z,24Z)/18:0", "C61H110NO9P"},
		{"PIP2(3',5') 17:0/20:4(5Z,8Z,11Z,14Z)", "C46H83O19P3"},
		{"LPC 20:1(11Z)/0:0", "C28H56NO7P"},
		{"MG 0:0/O-6:0/0:0", "C9H20O3"},
		{"MG 18:0/0:0/0:0", "C21H42O4"},
		{"DG 20:1(11Z)/22:2(13Z,16Z)/0:0", "C45H82O5"},
		{"LCL 18:2(9Z,12Z)/18:2(9Z,12Z)/18:2(9Z,12Z)/0:0", "C63H112O16P2"},
		{"CerP(1) 18:1(4E);3OH/16:0;2OH", "C34H68NO7P"},
		{"MIPC(1) 20:0;3OH,4OH/20:0;2OH", "C52H102NO18P"},
		{"Hex2Cer(1) 17:1(5E);15Me;3OH,4OH/22:0;2OH", "C52H99NO15"},
		{"Gal-Gal-Glc-Cer(1) 18:1(4E);3OH/26:1(17Z)", "C62H115NO18"},
		{"GM3 d18:1/18:0", "C59H108N2O21"},
		{"PC(16:0/18:1(9Z))", "C42H82NO8P"},
		{"Chol", "C27H46O"},
		{"CE 18:1(9Z)", "C45H78O2"},
	}

	p := newParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			la, err := p.Parse(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.formula, la.SumFormula())
		})
	}
}

func TestParseLevels(t *testing.T) {
	tests := []struct {
		name  string
		level lipid.Level
	}{
		{"PC 18:1(11Z)/16:0", lipid.FullStructure},
		{"PC 18:1(11Z)/16:0;15OH[R]", lipid.CompleteStructure},
		{"PE 18:1(8);(OH)2/24:0", lipid.StructureDefined},
		{"PE 18:1;O2/24:0", lipid.SnPosition},
		{"Cer d18:1/24:0", lipid.SnPosition},
		{"Cer 18:1;2/18:0", lipid.SnPosition},
		{"PC 16:0_18:1", lipid.MolecularSpecies},
		{"PE 34:1", lipid.Species},
		{"PC dO-34:1", lipid.Species},
		{"LPC 16:0", lipid.MolecularSpecies},
		{"FA 20:0;[Ocy5:2(12,13);(Me)2]", lipid.StructureDefined},
		{"FA 18:0;12(3:0)", lipid.FullStructure},
		{"FA 18:0;(3:0)", lipid.StructureDefined},
	}

	p := newParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			la, err := p.Parse(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.level, la.Level())
		})
	}
}

func TestLipidStrings(t *testing.T) {
	tests := []struct {
		name string
		want map[lipid.Level]string
	}{
		{"PE 18:1(8Z);1OH,3OH/24:0", map[lipid.Level]string{
			lipid.FullStructure:    "PE 18:1(8Z);1OH,3OH/24:0",
			lipid.StructureDefined: "PE 18:1(8);(OH)2/24:0",
			lipid.SnPosition:       "PE 18:1;O2/24:0",
			lipid.MolecularSpecies: "PE 18:1;O2_24:0",
			lipid.Species:          "PE 42:1;O2",
		}},
		{"Gal-Cer(1) 18:1(5Z);3OH/24:0", map[lipid.Level]string{
			lipid.FullStructure:    "Gal-Cer(1) 18:1(5Z);3OH/24:0",
			lipid.StructureDefined: "Gal-Cer 18:1(5);OH/24:0",
			lipid.SnPosition:       "GalCer 18:1;O2/24:0",
			lipid.Species:          "GalCer 42:1;O2",
			lipid.ClassLevel:       "GalCer",
			lipid.CategoryLevel:    "SP",
		}},
		{"SPB 18:1(4Z);1OH,3OH", map[lipid.Level]string{
			lipid.StructureDefined: "SPB 18:1(4);(OH)2",
			lipid.SnPosition:       "SPB 18:1;O2",
		}},
		{"LSM(1) 17:1(4E);3OH", map[lipid.Level]string{
			lipid.StructureDefined: "LSM 17:1(4);OH",
			lipid.SnPosition:       "LSM 17:1;O2",
		}},
		{"EPC(1) 14:1(4E);3OH/20:1(11Z)", map[lipid.Level]string{
			lipid.StructureDefined: "EPC 14:1(4);OH/20:1(11)",
			lipid.SnPosition:       "EPC 14:1;O2/20:1",
			lipid.Species:          "EPC 34:2;O2",
		}},
		{"PC 18:1(11Z)/16:0", map[lipid.Level]string{
			lipid.MolecularSpecies: "PC 16:0_18:1",
			lipid.Species:          "PC 34:1",
		}},
		{"PE P-16:0/18:1(9Z)", map[lipid.Level]string{
			lipid.MolecularSpecies: "PE P-16:0_18:1",
			lipid.Species:          "PE O-34:2",
		}},
		{"PC O-16:0/O-18:1(9Z)", map[lipid.Level]string{
			lipid.Species: "PC dO-34:1",
		}},
		{"CL O-16:0;3Me,7Me,11Me,15Me/O-16:0;3Me,7Me,11Me,15Me/O-16:0;3Me,7Me,11Me,15Me/O-16:0;3Me,7Me,11Me,15Me", map[lipid.Level]string{
			lipid.Species: "CL eO-80:0",
		}},
		{"TG 16:0;5O(FA 16:0)/18:1(9Z)/18:1(9Z)", map[lipid.Level]string{
			lipid.Species: "TG 68:3;O2",
		}},
		{"FA 22:0;4O(FA 10:0),5O(FA 10:0)", map[lipid.Level]string{
			lipid.Species: "FA 42:2;O4",
		}},
		{"FA 18:0;12(3:0)", map[lipid.Level]string{
			lipid.FullStructure: "FA 18:0;12(3:0)",
		}},
		{"FA 8:0;[6-8SScy5:0]", map[lipid.Level]string{
			lipid.FullStructure:    "FA 8:0;[6-8SScy5:0]",
			lipid.StructureDefined: "FA 8:0;[SScy5:0]",
			lipid.Species:          "FA 8:1;S2",
		}},
		{"FA 20:0;[12-15Ocy5:2(12E,13E);13Me,14Me]", map[lipid.Level]string{
			lipid.StructureDefined: "FA 20:0;[Ocy5:2(12,13);(Me)2]",
			lipid.Species:          "FA 22:3;O",
		}},
		{"FA 20:2(5Z,13E);[8-13cy6;9OH,11OH;11oxy];15OH", map[lipid.Level]string{
			lipid.Species: "FA 20:3;O4",
		}},
		{"FA 22:4(4Z,7Z,10Z,18E);[13-17cy5;14OH,16OH];20OH", map[lipid.Level]string{
			lipid.Species: "FA 22:5;O3",
		}},
		{"PC 16:0/20:2(5Z,13E);[8-12cy5;11OH;9oxo];15OH", map[lipid.Level]string{
			lipid.FullStructure:    "PC 16:0/20:2(5Z,13E);[8-12cy5:0;11OH;9oxo];15OH",
			lipid.StructureDefined: "PC 16:0/20:2(5,13);[cy5:0;OH;oxo];OH",
			lipid.Species:          "PC 36:4;O3",
		}},
		{"PE-N(FA 8:0) 30:5(12Z,15Z,18Z,21Z,24Z)/18:0", map[lipid.Level]string{
			lipid.MolecularSpecies: "PE-N(FA 8:0) 18:0_30:5",
			lipid.Species:          "PE-N(FA) 56:5",
		}},
		{"PS-N(6:0) 16:0/18:3(6Z,9Z,12Z)", map[lipid.Level]string{
			lipid.Species: "PS-N(Alk) 40:3",
		}},
		{"PIP(3') 16:0/18:1(9Z)", map[lipid.Level]string{
			lipid.MolecularSpecies: "PIP(3') 16:0_18:1",
			lipid.Species:          "PIP 34:1",
		}},
		{"LPC O-16:1(11Z)/0:0", map[lipid.Level]string{
			lipid.MolecularSpecies: "LPC O-16:1",
		}},
		{"Hex2Cer(1) 17:1(5E);15Me;3OH,4OH/22:0;2OH", map[lipid.Level]string{
			lipid.Species: "Hex2Cer 40:1;O4",
		}},
		{"GM3 d18:1/18:0", map[lipid.Level]string{
			lipid.SnPosition: "GM3 18:1;O2/18:0",
			lipid.Species:    "GM3 36:1;O2",
		}},
	}

	p := newParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			la, err := p.Parse(tt.name)
			require.NoError(t, err)
			for level, want := range tt.want {
				got, err := la.LipidString(level)
				require.NoError(t, err, level.String())
				assert.Equal(t, want, got, level.String())
			}
		})
	}
}

func TestOldHydroxylNotation(t *testing.T) {
	p := newParser(t)
	la, err := p.Parse("Cer 18:1;2/18:0")
	require.NoError(t, err)

	lcb := la.Lipid.FattyAcids()[0]
	require.Len(t, lcb.Groups["O"], 1)
	assert.Equal(t, 2, lcb.Groups["O"][0].Base().Count)
	assert.Equal(t, lipid.LCBRegular, lcb.BondType)
}

func TestRoundTrip(t *testing.T) {
	names := []string{
		"PC 18:1(11Z)/16:0",
		"PE 18:1(8Z);1OH,3OH/24:0",
		"Gal-Cer(1) 18:1(5Z);3OH/24:0",
		"LSM(1) 17:1(4E);3OH",
		"PE P-16:0/18:1(9Z)",
		"FA 8:0;[6-8SScy5:0]",
		"FA 20:0;[12-15Ocy5:2(12E,13E);13Me,14Me]",
		"PC 16:0/20:2(5Z,13E);[8-12cy5;11OH;9oxo];15OH",
		"TG 16:0;5O(FA 16:0)/18:1(9Z)/18:1(9Z)",
		"PE-N(FA 8:0) 30:5(12Z,15Z,18Z,21Z,24Z)/18:0",
		"LPC 20:1(11Z)/0:0",
		"GM3 d18:1/18:0",
	}
	levels := []lipid.Level{
		lipid.FullStructure, lipid.StructureDefined, lipid.SnPosition,
		lipid.MolecularSpecies, lipid.Species,
	}

	p := newParser(t)
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			la, err := p.Parse(name)
			require.NoError(t, err)
			formula := la.SumFormula()

			for _, level := range levels {
				if level > la.Level() {
					continue
				}
				s, err := la.LipidString(level)
				require.NoError(t, err)

				again, err := p.Parse(s)
				require.NoError(t, err, s)
				assert.Equal(t, formula, again.SumFormula(), s)

				same, err := again.LipidString(level)
				require.NoError(t, err, s)
				assert.Equal(t, s, same)
			}
		})
	}
}

func TestAdduct(t *testing.T) {
	p := newParser(t)
	la, err := p.Parse("PE(16:0/18:0)[M+2H]2+")
	require.NoError(t, err)

	assert.Equal(t, 2, la.Charge())
	assert.InDelta(t, 360.7805, la.Mass(), 1e-4)
	assert.Equal(t, "PE 16:0/18:0[M+2H]2+", la.String())

	neg, err := p.Parse("PC 16:0_18:1 [M+HCOO]1-")
	require.NoError(t, err)
	assert.Equal(t, -1, neg.Charge())
	assert.Equal(t, "PC 16:0_18:1[M+HCOO]1-", neg.String())
}

func TestAdductHeavyLabels(t *testing.T) {
	p := newParser(t)
	plain, err := p.Parse("PE 16:0/18:0[M+H]1+")
	require.NoError(t, err)

	m := core.ElementMasses
	tests := []struct {
		name  string
		want  string
		shift float64
	}{
		{"PE 16:0/18:0[M[13]C2+H]1+", "PE 16:0/18:0[M[13]C2+H]1+", 2 * (m[core.C13] - m[core.C])},
		{"PE 16:0/18:0[M[2]H[15]N+H]1+", "PE 16:0/18:0[M[2]H[15]N+H]1+", m[core.H2] - m[core.H] + m[core.N15] - m[core.N]},
		{"PE 16:0/18:0[M[13]C[13]C+H]1+", "PE 16:0/18:0[M[13]C2+H]1+", 2 * (m[core.C13] - m[core.C])},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			la, err := p.Parse(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, la.String())
			assert.Equal(t, 1, la.Charge())
			assert.InDelta(t, plain.Mass()+tt.shift, la.Mass(), 1e-6)
		})
	}
}

func TestAdductRegistry(t *testing.T) {
	_, err := newParser(t).Parse("PE(16:0/18:0)[M+H]2+")
	assert.ErrorIs(t, err, lipid.ErrConstraintViolation)

	r := lipid.NewAdductRegistry()
	r.Add("+NH4", 1)
	p := newParser(t, WithAdductRegistry(r))
	_, err = p.Parse("PC 34:1[M+NH4]1+")
	assert.NoError(t, err)
	_, err = p.Parse("PC 34:1[M+H]1+")
	assert.ErrorIs(t, err, lipid.ErrConstraintViolation)
}

func TestParseErrors(t *testing.T) {
	p := newParser(t)

	for _, name := range []string{"", "PE 16:0/", "XYZ 16:0", "PC 16:0//18:1", "PC 16:0/18:1(9Q)"} {
		t.Run("unparsable "+name, func(t *testing.T) {
			_, ok, err := p.TryParse(name)
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = p.Parse(name)
			var perr *parser.ParsingError
			assert.True(t, errors.As(err, &perr))
		})
	}

	constraint := []string{
		"PC 16:0/18:1(9Z,12Z)",
		"PC 1:0/16:0",
		"PC 16:0/18:1/20:4",
		"PC",
	}
	for _, name := range constraint {
		t.Run("constraint "+name, func(t *testing.T) {
			_, err := p.Parse(name)
			assert.ErrorIs(t, err, lipid.ErrConstraintViolation)
		})
	}
}

func TestMaxLength(t *testing.T) {
	p := newParser(t, WithMaxLength(10))
	_, err := p.Parse("PC 18:1(11Z)/16:0")
	assert.ErrorIs(t, err, ErrNameTooLong)

	_, err = p.Parse("PC 34:1")
	assert.NoError(t, err)
}

func TestParseConcurrent(t *testing.T) {
	names := []string{"PC 34:1", "PE 16:0_18:1", "Cer d18:1/24:0", "FA 8:0;[6-8SScy5:0]"}
	var wg sync.WaitGroup
	errs := make(chan error, 4*len(names))
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, n := range names {
				if _, err := Parse(n); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestGrammarText(t *testing.T) {
	text := grammarText()
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), ";"))
	assert.Contains(t, text, "'GM3'")
	assert.Contains(t, text, "'LacCer'")
}
