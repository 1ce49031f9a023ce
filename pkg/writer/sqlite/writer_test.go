package sqlite

import (
	"database/sql"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

func testEntry(name string) *core.Spectrum {
	return &core.Spectrum{
		Name:        name,
		PrecursorMZ: 760.5851,
		Adduct:      "[M+H]+",
		Peaks: []core.Peak{
			{MZ: 478.3292, Intensity: 12},
			{MZ: 184.0733, Intensity: 1000},
		},
		SourceFile: "lib.msp",
		SourceLine: 7,
		Normalized: &core.Annotation{
			Name:          "PC 16:0_18:1[M+H]1+",
			Level:         "MOLECULAR_SPECIES",
			Category:      "GP",
			Class:         "PC",
			ExtendedClass: "PC",
			SumFormula:    "C42H83NO8P",
			Mass:          760.5851,
			NeutralMass:   759.5778,
			Charge:        1,
		},
	}
}

func TestWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	id := uuid.New()

	w, err := NewWriter(path, WithLibraryID(id), WithDescription("test library"))
	require.NoError(t, err)
	assert.Equal(t, id, w.LibraryID())

	require.NoError(t, w.WriteSpectrum(testEntry("PC 16:0_18:1")))
	require.NoError(t, w.WriteBatch([]*core.Spectrum{testEntry("PC 34:1"), testEntry("PC(34:1)")}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Error(t, w.WriteSpectrum(testEntry("late")))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM CompoundTable`).Scan(&count))
	assert.Equal(t, 3, count)

	var name, synonym, formula, tag string
	require.NoError(t, db.QueryRow(`SELECT Name, Synonyms, Formula, Tag FROM CompoundTable WHERE CompoundId = 3`).
		Scan(&name, &synonym, &formula, &tag))
	assert.Equal(t, "PC 16:0_18:1[M+H]1+", name)
	assert.Equal(t, "PC(34:1)", synonym)
	assert.Equal(t, "C42H83NO8P", formula)
	assert.Equal(t, "level:MOLECULAR_SPECIES category:GP", tag)

	var class, level string
	var charge int
	require.NoError(t, db.QueryRow(`SELECT Class, Level, Charge FROM LipidTable WHERE CompoundId = 1`).
		Scan(&class, &level, &charge))
	assert.Equal(t, "PC", class)
	assert.Equal(t, "MOLECULAR_SPECIES", level)
	assert.Equal(t, 1, charge)

	var blob []byte
	var polarity string
	var neutral float64
	var line int
	require.NoError(t, db.QueryRow(`SELECT blobMass, Polarity, NeutralMass, SourceLine FROM SpectrumTable WHERE SpectrumId = 1`).
		Scan(&blob, &polarity, &neutral, &line))
	require.Len(t, blob, 16)
	assert.Equal(t, 184.0733, math.Float64frombits(binary.LittleEndian.Uint64(blob[:8])))
	assert.Equal(t, "+", polarity)
	assert.Equal(t, 759.5778, neutral)
	assert.Equal(t, 7, line)

	var libraryID, description string
	var modified int
	require.NoError(t, db.QueryRow(`SELECT LibraryId, Description FROM HeaderTable`).Scan(&libraryID, &description))
	assert.Equal(t, id.String(), libraryID)
	assert.Equal(t, "test library", description)
	require.NoError(t, db.QueryRow(`SELECT NoofCompoundsModified FROM MaintenanceTable`).Scan(&modified))
	assert.Equal(t, 3, modified)
}

func TestWriteBatchRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	w, err := NewWriter(path)
	require.NoError(t, err)

	bad := testEntry("unparsed")
	bad.Normalized = nil
	assert.Error(t, w.WriteBatch([]*core.Spectrum{testEntry("PC 34:1"), bad}))
	require.NoError(t, w.WriteSpectrum(testEntry("PC 34:1")))
	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count, first int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*), MIN(CompoundId) FROM CompoundTable`).Scan(&count, &first))
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, first)
}

func TestEncodePeaks(t *testing.T) {
	peaks := []core.Peak{{MZ: 100.5, Intensity: 10}, {MZ: 200.25, Intensity: 20}}
	mz := encodePeaksFloat64(peaks, true)
	intensity := encodePeaksFloat64(peaks, false)

	require.Len(t, mz, 16)
	assert.Equal(t, 200.25, math.Float64frombits(binary.LittleEndian.Uint64(mz[8:])))
	assert.Equal(t, 10.0, math.Float64frombits(binary.LittleEndian.Uint64(intensity[:8])))
	assert.Empty(t, encodePeaksFloat64(nil, true))
}
