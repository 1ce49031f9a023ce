package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ChrisMcGann/goslin/pkg/core"
	"github.com/ChrisMcGann/goslin/pkg/reader/msp"
	"github.com/ChrisMcGann/goslin/pkg/reader/names"
)

// entryReader is implemented by the msp and names readers.
type entryReader interface {
	Next() bool
	Spectrum() *core.Spectrum
	Err() error
}

// detectFormat picks the input format from the file extension.
func detectFormat(path, format string) (string, error) {
	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".msp":
			format = "msp"
		case ".txt", ".tsv", ".list", ".names":
			format = "names"
		default:
			return "", fmt.Errorf("cannot auto-detect format from extension '%s', please specify --from", ext)
		}
	}

	format = strings.ToLower(format)
	if format != "msp" && format != "names" {
		return "", fmt.Errorf("invalid input format '%s', must be msp or names", format)
	}
	return format, nil
}

func newEntryReader(r io.Reader, format string) entryReader {
	if format == "msp" {
		return msp.NewReader(r)
	}
	return names.NewReader(r)
}

// expandInputs resolves input paths and doublestar patterns
// ("libs/**/*.msp") into a sorted list of distinct files.
func expandInputs(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			if _, err := os.Stat(pattern); err != nil {
				return nil, fmt.Errorf("input file does not exist: %s", pattern)
			}
			files = append(files, pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid input pattern '%s': %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no input files match '%s'", pattern)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// forEachEntry streams the entries of one file. fn returning an error stops
// the iteration.
func forEachEntry(path, format string, fn func(*core.Spectrum) error) error {
	format, err := detectFormat(path, format)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	reader := newEntryReader(f, format)
	for reader.Next() {
		spec := reader.Spectrum()
		spec.SourceFile = path
		if err := fn(spec); err != nil {
			return err
		}
	}
	if err := reader.Err(); err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}
