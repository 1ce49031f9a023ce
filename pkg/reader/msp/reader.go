// Package msp provides streaming readers for MSP format lipid spectral libraries
package msp

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

// Reader provides streaming access to MSP format files. Both NIST style
// ("Name:", "Comment: Parent=...") and MS-DIAL style ("NAME:",
// "PRECURSORMZ:", "PRECURSORTYPE:") headers are understood.
type Reader struct {
	scanner     *bufio.Scanner
	lineNum     int
	currentSpec *core.Spectrum
	pending     string // header line that started the next entry
	pendingLine int
	err         error
}

// NewReader creates a new MSP reader
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Next advances to the next spectrum. Returns false when no more spectra or error.
func (r *Reader) Next() bool {
	r.currentSpec = nil

	spec, err := r.readSpectrum()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.currentSpec = spec
	return true
}

// Spectrum returns the current spectrum
func (r *Reader) Spectrum() *core.Spectrum {
	return r.currentSpec
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) nextLine() (string, bool) {
	if r.pending != "" {
		line := r.pending
		r.lineNum = r.pendingLine
		r.pending = ""
		return line, true
	}
	if !r.scanner.Scan() {
		return "", false
	}
	r.lineNum++
	return strings.TrimSpace(r.scanner.Text()), true
}

// readSpectrum reads a single entry. Entries end at a blank line after the
// peaks, after the announced number of peaks, or at the next name header.
func (r *Reader) readSpectrum() (*core.Spectrum, error) {
	spec := &core.Spectrum{
		SourceFormat: "msp",
		Peaks:        []core.Peak{},
	}

	numPeaks := -1
	peaksRead := 0

	for {
		line, ok := r.nextLine()
		if !ok {
			break
		}

		if line == "" || strings.HasPrefix(line, "#") {
			if spec.Name != "" && numPeaks >= 0 {
				return spec, nil
			}
			continue
		}

		key, value, isHeader := splitHeader(line)
		if isHeader && strings.EqualFold(key, "name") && spec.Name != "" {
			// entry without a terminating blank line
			r.pending, r.pendingLine = line, r.lineNum
			return spec, nil
		}

		if numPeaks >= 0 && !isHeader {
			peaks, err := parsePeaks(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
			spec.Peaks = append(spec.Peaks, peaks...)
			peaksRead += len(peaks)
			if peaksRead >= numPeaks {
				return spec, nil
			}
			continue
		}

		if !isHeader {
			return nil, fmt.Errorf("line %d: unexpected line '%s'", r.lineNum, line)
		}
		if spec.Name == "" && !strings.EqualFold(key, "name") {
			return nil, fmt.Errorf("line %d: entry does not start with a name", r.lineNum)
		}
		if spec.SourceLine == 0 {
			spec.SourceLine = r.lineNum
		}

		n, err := r.parseHeader(spec, key, value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
		}
		if n >= 0 {
			numPeaks = n
			if n == 0 {
				return spec, nil
			}
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// If we have a partially read spectrum, return it
	if spec.Name != "" {
		return spec, nil
	}

	return nil, io.EOF
}

var headerPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z _/]*?)\s*:\s*(.*)$`)

// splitHeader splits "Key: value". Peak lines never start with a letter.
func splitHeader(line string) (key, value string, ok bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// parseHeader stores a header field. It returns the number of peaks for the
// peak count header and -1 otherwise.
func (r *Reader) parseHeader(spec *core.Spectrum, key, value string) (int, error) {
	switch strings.ToLower(strings.ReplaceAll(key, " ", "")) {
	case "name":
		spec.Name = value
	case "precursormz", "precursor_mz":
		mz, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return -1, fmt.Errorf("invalid precursor m/z '%s': %w", value, err)
		}
		spec.PrecursorMZ = mz
	case "precursortype", "precursor_type":
		spec.Adduct = value
		if charge, ok := ChargeFromPrecursorType(value); ok {
			spec.Charge = charge
		}
	case "ionmode", "ion_mode":
		spec.IonMode = value
	case "formula":
		spec.Formula = value
	case "retentiontime", "rt":
		if rt, err := strconv.ParseFloat(value, 64); err == nil {
			spec.RetentionTime = &rt
		}
	case "collisionenergy":
		if ce, err := parseEnergy(value); err == nil {
			spec.CollisionEnergy = &ce
		}
	case "instrumenttype", "instrument":
		spec.Instrument = value
	case "comment":
		spec.Comment = value
		r.parseComment(spec, value)
	case "numpeaks":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return -1, fmt.Errorf("invalid num peaks '%s'", value)
		}
		return n, nil
	}
	return -1, nil
}

// parseComment extracts metadata from a NIST style Comment field
// (format: key=value key=value...)
func (r *Reader) parseComment(spec *core.Spectrum, comment string) {
	for _, field := range strings.Fields(comment) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "Parent":
			if mz, err := strconv.ParseFloat(value, 64); err == nil && spec.PrecursorMZ == 0 {
				spec.PrecursorMZ = mz
			}
		case "Collision_energy", "CollisionEnergy":
			if ce, err := parseEnergy(value); err == nil {
				spec.CollisionEnergy = &ce
			}
		case "iRT", "RetentionTime":
			if rt, err := strconv.ParseFloat(value, 64); err == nil {
				spec.RetentionTime = &rt
			}
		}
	}
}

// parseEnergy accepts "35", "35eV" and "35 eV".
func parseEnergy(value string) (float64, error) {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "eV"))
	return strconv.ParseFloat(value, 64)
}

var precursorTypePattern = regexp.MustCompile(`\](\d*)([+-])$`)

// ChargeFromPrecursorType returns the signed charge of a precursor type such
// as "[M+H]+", "[M+2H]2+" or "[M-H]-".
func ChargeFromPrecursorType(pt string) (int, bool) {
	m := precursorTypePattern.FindStringSubmatch(strings.TrimSpace(pt))
	if m == nil {
		return 0, false
	}
	charge := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		charge = n
	}
	if m[2] == "-" {
		charge = -charge
	}
	return charge, true
}

// parsePeaks parses a peak line: "mz intensity [\"annotation\"]", or several
// "mz intensity" pairs separated by ';'.
func parsePeaks(line string) ([]core.Peak, error) {
	var peaks []core.Peak
	for _, part := range strings.Split(line, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		peak, err := parsePeak(part)
		if err != nil {
			return nil, err
		}
		peaks = append(peaks, peak)
	}
	if len(peaks) == 0 {
		return nil, fmt.Errorf("empty peak line")
	}
	return peaks, nil
}

func parsePeak(text string) (core.Peak, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return core.Peak{}, fmt.Errorf("invalid peak format, expected at least 2 fields")
	}

	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid m/z value: %w", err)
	}

	intensity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid intensity value: %w", err)
	}

	peak := core.Peak{
		MZ:        mz,
		Intensity: intensity,
	}

	// Annotation is the rest of the line, usually quoted
	if len(fields) >= 3 {
		annotation := strings.Join(fields[2:], " ")
		peak.Annotation = strings.Trim(annotation, "\"")
	}

	return peak, nil
}
