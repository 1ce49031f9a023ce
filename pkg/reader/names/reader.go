// Package names provides a streaming reader for plain lipid name lists
package names

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

// Reader reads one lipid name per line. Lines may carry tab separated
// columns: name, precursor type and precursor m/z. Blank lines and lines
// starting with '#' are skipped, as is a header row whose first column is
// "name". Column values may be double quoted.
type Reader struct {
	scanner     *bufio.Scanner
	lineNum     int
	currentSpec *core.Spectrum
	err         error
}

// NewReader creates a new names reader
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next advances to the next name. Returns false when no more names or error.
func (r *Reader) Next() bool {
	r.currentSpec = nil

	for r.scanner.Scan() {
		r.lineNum++
		raw := r.scanner.Text()
		if line := strings.TrimSpace(raw); line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		spec, err := r.parseLine(strings.TrimRight(raw, "\r"))
		if err != nil {
			r.err = fmt.Errorf("line %d: %w", r.lineNum, err)
			return false
		}
		if spec == nil {
			continue
		}
		r.currentSpec = spec
		return true
	}

	if err := r.scanner.Err(); err != nil {
		r.err = err
	}
	return false
}

// Spectrum returns the current entry
func (r *Reader) Spectrum() *core.Spectrum {
	return r.currentSpec
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// parseLine returns nil for a header row.
func (r *Reader) parseLine(line string) (*core.Spectrum, error) {
	cols, err := core.SplitString(line, '\t', '"', true)
	if err != nil {
		return nil, err
	}
	for i := range cols {
		cols[i] = strings.Trim(strings.TrimSpace(cols[i]), "\"")
	}
	if len(cols) == 0 || cols[0] == "" {
		return nil, fmt.Errorf("missing lipid name")
	}
	if r.lineNum == 1 && strings.EqualFold(cols[0], "name") {
		return nil, nil
	}

	spec := &core.Spectrum{
		Name:         cols[0],
		SourceFormat: "names",
		SourceLine:   r.lineNum,
	}
	if len(cols) > 1 {
		spec.Adduct = cols[1]
	}
	if len(cols) > 2 && cols[2] != "" {
		mz, err := strconv.ParseFloat(cols[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid precursor m/z '%s': %w", cols[2], err)
		}
		spec.PrecursorMZ = mz
	}
	return spec, nil
}
