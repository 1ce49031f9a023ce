// Package sqlite provides SQLite database writing for lipid libraries
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Date format for MaintenanceTable (space-separated)
	maintenanceDateFormat = "2006 01 02"
)

// Writer handles writing normalized lipid entries to SQLite database files.
// A Writer is not safe for concurrent use.
type Writer struct {
	db          *sql.DB
	outputPath  string
	libraryID   uuid.UUID
	description string
	compoundID  int
	finalized   bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithDescription sets the library description stored in the HeaderTable.
func WithDescription(d string) Option {
	return func(w *Writer) {
		w.description = d
	}
}

// WithLibraryID sets the library id instead of a random one.
func WithLibraryID(id uuid.UUID) Option {
	return func(w *Writer) {
		w.libraryID = id
	}
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath string, opts ...Option) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		libraryID:  uuid.New(),
		compoundID: 1,
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// LibraryID returns the id stamped into the HeaderTable.
func (w *Writer) LibraryID() uuid.UUID {
	return w.libraryID
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS CompoundTable (
		CompoundId INTEGER PRIMARY KEY,
		Formula TEXT,
		Name TEXT,
		Synonyms BLOB_TEXT,
		Tag TEXT,
		CompoundClass TEXT,
		InChiKey TEXT
	);

	CREATE TABLE IF NOT EXISTS LipidTable (
		CompoundId INTEGER PRIMARY KEY REFERENCES CompoundTable(CompoundId),
		Category TEXT,
		Class TEXT,
		ExtendedClass TEXT,
		Level TEXT,
		Charge INTEGER,
		Mass DOUBLE
	);

	CREATE TABLE IF NOT EXISTS SpectrumTable (
		SpectrumId INTEGER PRIMARY KEY,
		CompoundId INTEGER REFERENCES CompoundTable(CompoundId),
		RetentionTime DOUBLE,
		PrecursorMass DOUBLE,
		NeutralMass DOUBLE,
		CollisionEnergy DOUBLE,
		Polarity TEXT,
		InstrumentName TEXT,
		blobMass BLOB,
		blobIntensity BLOB,
		PrecursorIonType TEXT,
		SourceFile TEXT,
		SourceLine INTEGER
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		LibraryId TEXT,
		CreationDate TEXT,
		LastModifiedDate TEXT,
		Description TEXT,
		ReadOnly BOOL
	);

	CREATE TABLE IF NOT EXISTS MaintenanceTable (
		CreationDate TEXT,
		NoofCompoundsModified INTEGER,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// WriteSpectrum writes a single entry to the database
func (w *Writer) WriteSpectrum(spec *core.Spectrum) error {
	return w.WriteBatch([]*core.Spectrum{spec})
}

// WriteBatch writes entries in one transaction. Entries without a
// normalized annotation are rejected.
func (w *Writer) WriteBatch(specs []*core.Spectrum) error {
	if w.finalized {
		return fmt.Errorf("write to finalized database %s", w.outputPath)
	}
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	id := w.compoundID
	for _, spec := range specs {
		if err := insertEntry(tx, id, spec); err != nil {
			tx.Rollback()
			return err
		}
		id++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	w.compoundID = id
	return nil
}

func insertEntry(tx *sql.Tx, id int, spec *core.Spectrum) error {
	ann := spec.Normalized
	if ann == nil {
		return fmt.Errorf("entry '%s' has no normalized annotation", spec.Name)
	}

	// Ensure peaks are sorted
	if !spec.ArePeaksSorted() {
		spec.SortPeaks()
	}

	tag := fmt.Sprintf("level:%s category:%s", ann.Level, ann.Category)
	_, err := tx.Exec(`
		INSERT INTO CompoundTable (CompoundId, Formula, Name, Synonyms, Tag, CompoundClass, InChiKey)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, ann.SumFormula, ann.Name, spec.Name, tag, ann.Class, "")
	if err != nil {
		return fmt.Errorf("failed to insert compound %s: %w", ann.Name, err)
	}

	_, err = tx.Exec(`
		INSERT INTO LipidTable (CompoundId, Category, Class, ExtendedClass, Level, Charge, Mass)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, ann.Category, ann.Class, ann.ExtendedClass, ann.Level, ann.Charge, ann.Mass)
	if err != nil {
		return fmt.Errorf("failed to insert lipid %s: %w", ann.Name, err)
	}

	// Handle optional retention time
	var rt any
	if spec.RetentionTime != nil {
		rt = *spec.RetentionTime
	}

	// Handle optional collision energy
	var ce any
	if spec.CollisionEnergy != nil {
		ce = *spec.CollisionEnergy
	}

	precursor := spec.PrecursorMZ
	if precursor == 0 && ann.Charge != 0 {
		precursor = ann.Mass
	}

	_, err = tx.Exec(`
		INSERT INTO SpectrumTable (
			SpectrumId, CompoundId, RetentionTime, PrecursorMass, NeutralMass,
			CollisionEnergy, Polarity, InstrumentName, blobMass, blobIntensity,
			PrecursorIonType, SourceFile, SourceLine
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,                                    // SpectrumId (same as CompoundId for 1:1 mapping)
		id,                                    // CompoundId
		rt,                                    // RetentionTime
		precursor,                             // PrecursorMass
		ann.NeutralMass,                       // NeutralMass
		ce,                                    // CollisionEnergy
		polarity(ann.Charge),                  // Polarity
		spec.Instrument,                       // InstrumentName
		encodePeaksFloat64(spec.Peaks, true),  // blobMass
		encodePeaksFloat64(spec.Peaks, false), // blobIntensity
		spec.Adduct,                           // PrecursorIonType
		spec.SourceFile,                       // SourceFile
		spec.SourceLine,                       // SourceLine
	)
	if err != nil {
		return fmt.Errorf("failed to insert spectrum %s: %w", ann.Name, err)
	}
	return nil
}

func polarity(charge int) string {
	switch {
	case charge > 0:
		return "+"
	case charge < 0:
		return "-"
	}
	return ""
}

// encodePeaksFloat64 encodes peak data as little-endian float64 blob
func encodePeaksFloat64(peaks []core.Peak, useMZ bool) []byte {
	buf := make([]byte, len(peaks)*8)
	for i, peak := range peaks {
		var value float64
		if useMZ {
			value = peak.MZ
		} else {
			value = peak.Intensity
		}
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(value))
	}
	return buf
}

// Finalize writes the header and maintenance tables and closes the database
func (w *Writer) Finalize() error {
	if w.finalized {
		return nil
	}
	w.finalized = true

	now := time.Now()
	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (version, LibraryId, CreationDate, LastModifiedDate, Description, ReadOnly)
		VALUES (?, ?, ?, ?, ?, ?)
	`, 5, w.libraryID.String(), now.Format(headerDateFormat), now.Format(headerDateFormat), w.description, false)
	if err != nil {
		w.db.Close()
		return fmt.Errorf("failed to insert header: %w", err)
	}

	_, err = w.db.Exec(`
		INSERT INTO MaintenanceTable (CreationDate, NoofCompoundsModified, Description)
		VALUES (?, ?, ?)
	`, now.Format(maintenanceDateFormat), w.compoundID-1, w.description)
	if err != nil {
		w.db.Close()
		return fmt.Errorf("failed to insert maintenance: %w", err)
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
