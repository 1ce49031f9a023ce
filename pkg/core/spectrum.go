package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Spectrum is a single lipid library entry: the name as written by the
// source, its normalized annotation and an optional fragment spectrum.
type Spectrum struct {
	// Required fields
	Name        string // Lipid name as found in the source, including adduct if any
	PrecursorMZ float64
	Peaks       []Peak

	// Source metadata
	Adduct          string // Precursor type, e.g. "[M+H]+"
	Charge          int    // Signed precursor charge
	IonMode         string // Positive, Negative
	Instrument      string
	CollisionEnergy *float64
	RetentionTime   *float64
	Formula         string // Formula reported by the source
	Comment         string

	// Normalized annotation, filled once the name has been parsed
	Normalized *Annotation

	// Internal tracking
	SourceFile   string
	SourceFormat string // msp, names
	SourceLine   int
}

// Annotation holds the normalized view of a parsed lipid name.
type Annotation struct {
	Name          string // Normalized name at Level
	Level         string
	Category      string
	Class         string
	ExtendedClass string
	SumFormula    string
	Mass          float64 // Neutral mass, or m/z when an adduct is present
	NeutralMass   float64 // Mass of the lipid without adduct
	Charge        int
}

// Peak represents a single m/z, intensity pair with optional metadata.
type Peak struct {
	MZ         float64
	Intensity  float64
	Annotation string // Fragment annotation (e.g., "HG(PC,184)")
}

// ValidationError represents an error found during spectrum validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that an entry meets all requirements for processing.
// Name-only entries without peaks are valid.
func (s *Spectrum) Validate() error {
	var errs []string

	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name is required")
	}
	if s.PrecursorMZ < 0 || math.IsNaN(s.PrecursorMZ) || math.IsInf(s.PrecursorMZ, 0) {
		errs = append(errs, "precursor m/z must be a non-negative number")
	}
	if len(s.Peaks) > 0 && s.PrecursorMZ == 0 {
		errs = append(errs, "precursor m/z is required for spectra")
	}
	switch strings.ToLower(s.IonMode) {
	case "positive":
		if s.Charge < 0 {
			errs = append(errs, "negative charge in positive ion mode")
		}
	case "negative":
		if s.Charge > 0 {
			errs = append(errs, "positive charge in negative ion mode")
		}
	}

	for i, peak := range s.Peaks {
		if math.IsNaN(peak.MZ) || math.IsInf(peak.MZ, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid m/z", i))
		}
		if math.IsNaN(peak.Intensity) || math.IsInf(peak.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid intensity", i))
		}
		if peak.MZ <= 0 {
			errs = append(errs, fmt.Sprintf("peak %d m/z must be positive", i))
		}
		if peak.Intensity < 0 {
			errs = append(errs, fmt.Sprintf("peak %d intensity must be non-negative", i))
		}
	}

	if !s.ArePeaksSorted() {
		errs = append(errs, "peaks must be sorted by m/z")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Spectrum",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// ArePeaksSorted checks if peaks are sorted by m/z in ascending order.
func (s *Spectrum) ArePeaksSorted() bool {
	for i := 1; i < len(s.Peaks); i++ {
		if s.Peaks[i].MZ < s.Peaks[i-1].MZ {
			return false
		}
	}
	return true
}

// SortPeaks sorts peaks by m/z in ascending order.
func (s *Spectrum) SortPeaks() {
	sort.Slice(s.Peaks, func(i, j int) bool {
		return s.Peaks[i].MZ < s.Peaks[j].MZ
	})
}

// BasePeak returns the most intense peak, or false for an empty spectrum.
func (s *Spectrum) BasePeak() (Peak, bool) {
	if len(s.Peaks) == 0 {
		return Peak{}, false
	}
	best := s.Peaks[0]
	for _, p := range s.Peaks[1:] {
		if p.Intensity > best.Intensity {
			best = p
		}
	}
	return best, true
}

// ParseName returns the name handed to the lipid parser: the source name,
// with the precursor type appended when the name carries none.
func (s *Spectrum) ParseName() string {
	name := strings.TrimSpace(s.Name)
	if s.Adduct == "" || strings.Contains(name, "[M") {
		return name
	}
	return name + s.Adduct
}

// Key returns the entry key in format "Name/Charge"
func (s *Spectrum) Key() string {
	if s.Normalized != nil {
		return fmt.Sprintf("%s/%d", s.Normalized.Name, s.Charge)
	}
	return fmt.Sprintf("%s/%d", s.Name, s.Charge)
}
