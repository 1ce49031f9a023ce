package cmd

import (
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/goslin/pkg/core"
	"github.com/ChrisMcGann/goslin/pkg/lipid"
)

var summarizeFormat string

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeFormat, "from", "f", "", "Input format: msp, names (auto-detect if not specified)")
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize lipid library contents",
	Long: `Print summary statistics about a names list or MSP library: entry and
spectrum counts, lipids per category and class, the structural level
histogram and the m/z range.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}

	s := newSummary()
	err = forEachEntry(args[0], summarizeFormat, func(spec *core.Spectrum) error {
		la, err := p.Parse(spec.ParseName())
		if err != nil {
			logger.Debug("unparsable entry", "name", spec.Name, "error", err)
		}
		s.add(spec, la)
		return nil
	})
	if err != nil {
		return err
	}
	return s.write(cmd.OutOrStdout())
}

// summary accumulates library statistics. la is nil for unparsable entries.
type summary struct {
	entries    int
	spectra    int
	peaks      int
	unparsable int
	categories map[string]int
	classes    map[string]int
	levels     map[lipid.Level]int
	minMZ      float64
	maxMZ      float64
}

func newSummary() *summary {
	return &summary{
		categories: make(map[string]int),
		classes:    make(map[string]int),
		levels:     make(map[lipid.Level]int),
		minMZ:      math.Inf(1),
		maxMZ:      math.Inf(-1),
	}
}

func (s *summary) add(spec *core.Spectrum, la *lipid.LipidAdduct) {
	s.entries++
	if len(spec.Peaks) > 0 {
		s.spectra++
		s.peaks += len(spec.Peaks)
	}
	if la == nil {
		s.unparsable++
		return
	}

	s.categories[la.Category().String()]++
	s.classes[la.ExtendedClass()]++
	s.levels[la.Level()]++

	mz := spec.PrecursorMZ
	if mz == 0 {
		mz = la.Mass()
	}
	s.minMZ = min(s.minMZ, mz)
	s.maxMZ = max(s.maxMZ, mz)
}

func (s *summary) write(w io.Writer) error {
	fmt.Fprintf(w, "Entries:     %d\n", s.entries)
	fmt.Fprintf(w, "Spectra:     %d (%d peaks)\n", s.spectra, s.peaks)
	fmt.Fprintf(w, "Unparsable:  %d\n", s.unparsable)
	if s.entries == s.unparsable {
		return nil
	}
	fmt.Fprintf(w, "m/z range:   %.4f - %.4f\n", s.minMZ, s.maxMZ)

	fmt.Fprintln(w, "\nCategories:")
	writeCounts(w, s.categories)
	fmt.Fprintln(w, "\nClasses:")
	writeCounts(w, s.classes)

	fmt.Fprintln(w, "\nLevels:")
	for _, level := range slices.Sorted(maps.Keys(s.levels)) {
		fmt.Fprintf(w, "  %-20s %d\n", level, s.levels[level])
	}
	return nil
}

// writeCounts prints counts by decreasing frequency, then by name.
func writeCounts(w io.Writer, counts map[string]int) {
	keys := slices.Collect(maps.Keys(counts))
	slices.SortFunc(keys, func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return strings.Compare(a, b)
	})
	for _, k := range keys {
		fmt.Fprintf(w, "  %-20s %d\n", k, counts[k])
	}
}
