// Package filter provides peak filtering and lipid selection for library entries
package filter

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/ChrisMcGann/goslin/pkg/core"
	"github.com/ChrisMcGann/goslin/pkg/lipid"
)

// Config holds peak filtering configuration
type Config struct {
	TopN            int      // Keep only top N most intense peaks (0 = no limit)
	IntensityCutoff float64  // Keep only peaks above this % of base peak (0 = no cutoff)
	Annotations     []string // Keep only peaks whose annotation starts with one of these (nil = all)
}

// Apply applies all configured filters to a spectrum
func (c *Config) Apply(spec *core.Spectrum) error {
	if c.IntensityCutoff < 0 || c.IntensityCutoff > 100 {
		return fmt.Errorf("intensity cutoff %.1f%% out of range", c.IntensityCutoff)
	}

	// Filter by annotation first
	if len(c.Annotations) > 0 {
		c.filterByAnnotation(spec)
	}

	// Apply intensity filters
	if c.IntensityCutoff > 0 {
		c.filterByIntensity(spec)
	}

	// Apply top-N filter
	if c.TopN > 0 {
		c.filterTopN(spec)
	}

	// Ensure peaks are sorted after all filtering
	spec.SortPeaks()

	return nil
}

// filterByAnnotation keeps only peaks matching the configured annotations
func (c *Config) filterByAnnotation(spec *core.Spectrum) {
	var filtered []core.Peak
	for _, peak := range spec.Peaks {
		if matchesAnnotation(peak.Annotation, c.Annotations) {
			filtered = append(filtered, peak)
		}
	}
	spec.Peaks = filtered
}

// matchesAnnotation checks if an annotation starts with any allowed prefix,
// e.g. "HG" matches "HG(PC,184)" and "NL" matches "NL(141)"
func matchesAnnotation(annotation string, prefixes []string) bool {
	if annotation == "" {
		return false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(annotation, p) {
			return true
		}
	}
	return false
}

// filterByIntensity removes peaks below the intensity cutoff percentage
func (c *Config) filterByIntensity(spec *core.Spectrum) {
	base, ok := spec.BasePeak()
	if !ok {
		return
	}

	threshold := (c.IntensityCutoff / 100.0) * base.Intensity

	var filtered []core.Peak
	for _, peak := range spec.Peaks {
		if peak.Intensity >= threshold {
			filtered = append(filtered, peak)
		}
	}

	spec.Peaks = filtered
}

// filterTopN keeps only the N most intense peaks
func (c *Config) filterTopN(spec *core.Spectrum) {
	if len(spec.Peaks) <= c.TopN {
		return
	}

	// Create a copy and sort by intensity descending
	peaks := make([]core.Peak, len(spec.Peaks))
	copy(peaks, spec.Peaks)

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Intensity > peaks[j].Intensity
	})

	spec.Peaks = peaks[:c.TopN]
}

// RemoveZeroIntensityPeaks removes peaks with zero or negative intensity
func RemoveZeroIntensityPeaks(spec *core.Spectrum) {
	var filtered []core.Peak
	for _, peak := range spec.Peaks {
		if peak.Intensity > 0 {
			filtered = append(filtered, peak)
		}
	}
	spec.Peaks = filtered
}

// Selector decides which parsed lipids are kept. Zero fields select
// everything.
type Selector struct {
	Categories []lipid.Category
	Classes    []string // class names, matched against class and extended class
	MinLevel   lipid.Level
	MinMZ      float64
	MaxMZ      float64 // 0 = no upper bound
}

// NewSelector builds a selector from category names, class names and a
// level name as found in configuration files.
func NewSelector(categories, classes []string, minLevel string, minMZ, maxMZ float64) (*Selector, error) {
	s := &Selector{MinMZ: minMZ, MaxMZ: maxMZ}
	for _, name := range categories {
		c, ok := lipid.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown lipid category '%s'", name)
		}
		s.Categories = append(s.Categories, c)
	}
	for _, name := range classes {
		meta, ok := lipid.LookupClass(name)
		if !ok {
			return nil, fmt.Errorf("unknown lipid class '%s'", name)
		}
		s.Classes = append(s.Classes, meta.Name)
	}
	if minLevel != "" {
		l, err := lipid.ParseLevel(minLevel)
		if err != nil {
			return nil, err
		}
		s.MinLevel = l
	}
	return s, nil
}

// Match reports whether la passes every configured criterion.
func (s *Selector) Match(la *lipid.LipidAdduct) bool {
	if len(s.Categories) > 0 && !slices.Contains(s.Categories, la.Category()) {
		return false
	}
	if len(s.Classes) > 0 {
		class := la.Lipid.Headgroup().Class.Name
		if !slices.Contains(s.Classes, class) && !slices.Contains(s.Classes, la.ExtendedClass()) {
			return false
		}
	}
	if s.MinLevel != 0 && la.Level() < s.MinLevel {
		return false
	}
	if s.MinMZ > 0 || s.MaxMZ > 0 {
		mz := la.Mass()
		if mz < s.MinMZ || (s.MaxMZ > 0 && mz > s.MaxMZ) {
			return false
		}
	}
	return true
}
