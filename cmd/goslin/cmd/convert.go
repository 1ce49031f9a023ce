package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ChrisMcGann/goslin/pkg/core"
	"github.com/ChrisMcGann/goslin/pkg/filter"
	"github.com/ChrisMcGann/goslin/pkg/goslin"
	"github.com/ChrisMcGann/goslin/pkg/lipid"
	"github.com/ChrisMcGann/goslin/pkg/writer/sqlite"
)

var (
	// Flags for convert command
	inputFiles    []string
	inputFormat   string
	outputFile    string
	description   string
	libraryID     string
	level         string
	topN          int
	cutoffPercent float64
	annotations   string
	categories    []string
	classes       []string
	minLevel      string
	minMZ         float64
	maxMZ         float64
	workers       int
	chunkSize     int
	strict        bool
)

func init() {
	convertCmd.Flags().StringSliceVarP(&inputFiles, "in", "i", nil, "Input files or patterns such as 'libs/**/*.msp' (required)")
	convertCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: msp, names (auto-detect if not specified)")
	convertCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output database file (required)")
	convertCmd.Flags().StringVar(&description, "description", "", "Library description stored in the database header")
	convertCmd.Flags().StringVar(&libraryID, "library-id", "", "Library UUID stored in the database header (default: random)")
	convertCmd.Flags().StringVarP(&level, "level", "l", "", "Normalize names to this level (default: as parsed)")
	convertCmd.Flags().IntVar(&topN, "top-n", 0, "Keep only top N most intense peaks (0 = no limit)")
	convertCmd.Flags().Float64Var(&cutoffPercent, "cutoff", 0, "Intensity cutoff as % of base peak (0 = no cutoff)")
	convertCmd.Flags().StringVar(&annotations, "annotations", "", "Comma-separated peak annotation prefixes to keep (e.g., 'HG,NL')")
	convertCmd.Flags().StringSliceVar(&categories, "category", nil, "Keep only these lipid categories (e.g., GP,SP)")
	convertCmd.Flags().StringSliceVar(&classes, "class", nil, "Keep only these lipid classes (e.g., PC,PE-O)")
	convertCmd.Flags().StringVar(&minLevel, "min-level", "", "Drop lipids annotated below this level")
	convertCmd.Flags().Float64Var(&minMZ, "min-mz", 0, "Drop lipids below this m/z")
	convertCmd.Flags().Float64Var(&maxMZ, "max-mz", 0, "Drop lipids above this m/z (0 = no limit)")
	convertCmd.Flags().IntVar(&workers, "workers", 0, "Number of parser workers")
	convertCmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Entries parsed and written per batch")
	convertCmd.Flags().BoolVar(&strict, "strict", false, "Fail on the first unparsable name instead of skipping it")

	convertCmd.MarkFlagRequired("in")
	convertCmd.MarkFlagRequired("out")
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert lipid libraries to a SQLite database",
	Long: `Convert MSP libraries or lipid name lists to a SQLite database. Every name
is parsed, normalized and annotated with category, class, sum formula and
mass. Entries that cannot be parsed are skipped unless --strict is set.

Examples:
  # Convert one MSP file with default settings
  goslin convert --in library.msp --out library.db

  # Convert several libraries, keep glycerophospholipids at species level
  goslin convert --in 'libs/**/*.msp' --out gp.db --category GP --level species

  # Peak filtering and a name list
  goslin convert --in library.msp --out library.db --top-n 50 --cutoff 1
  goslin convert --in names.txt --out names.db --workers 8`,
	RunE: runConvert,
}

var (
	// errFiltered marks entries dropped by the lipid selector
	errFiltered = errors.New("filtered")
	// errUnparsable marks names rejected by the parser
	errUnparsable = errors.New("unparsable name")
)

// converter normalizes entries and writes them in batches.
type converter struct {
	level    lipid.Level
	selector *filter.Selector
	peaks    *filter.Config
	strict   bool
	workers  int
	parsers  []*goslin.Parser
	logger   *slog.Logger

	seen       map[string]int
	written    int
	filtered   int
	skipped    int
	duplicates int
}

func runConvert(cmd *cobra.Command, args []string) error {
	applyConvertFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	files, err := expandInputs(inputFiles)
	if err != nil {
		return err
	}

	c, err := newConverter()
	if err != nil {
		return err
	}

	opts, err := writerOptions()
	if err != nil {
		return err
	}
	writer, err := sqlite.NewWriter(outputFile, opts...)
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}
	defer writer.Close()

	logger.Info("converting",
		slog.Int("files", len(files)),
		slog.String("out", outputFile),
		slog.Int("workers", c.workers),
		slog.String("library_id", writer.LibraryID().String()))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for _, path := range files {
		if err := c.convertFile(ctx, path, writer); err != nil {
			return err
		}
	}

	if err := writer.Finalize(); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}

	logger.Info("conversion complete",
		slog.Int("written", c.written),
		slog.Int("filtered", c.filtered),
		slog.Int("skipped", c.skipped),
		slog.Int("duplicates", c.duplicates),
		slog.String("out", outputFile))
	return nil
}

// applyConvertFlags lets explicitly set flags override the configuration.
func applyConvertFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("level") {
		cfg.Parser.OutputLevel = level
	}
	if flags.Changed("strict") {
		cfg.Parser.Strict = &strict
	}
	if flags.Changed("workers") {
		cfg.Convert.Workers = workers
	}
	if flags.Changed("chunk-size") {
		cfg.Convert.ChunkSize = chunkSize
	}
	if flags.Changed("top-n") {
		cfg.Convert.TopN = topN
	}
	if flags.Changed("cutoff") {
		cfg.Convert.Cutoff = cutoffPercent
	}
	if flags.Changed("category") {
		cfg.Filter.Categories = categories
	}
	if flags.Changed("class") {
		cfg.Filter.Classes = classes
	}
	if flags.Changed("min-level") {
		cfg.Filter.MinLevel = minLevel
	}
	if flags.Changed("min-mz") {
		cfg.Filter.MinMZ = minMZ
	}
	if flags.Changed("max-mz") {
		cfg.Filter.MaxMZ = maxMZ
	}
}

// writerOptions builds the database header options from the flags.
func writerOptions() ([]sqlite.Option, error) {
	opts := []sqlite.Option{sqlite.WithDescription(description)}
	if libraryID != "" {
		id, err := uuid.Parse(libraryID)
		if err != nil {
			return nil, fmt.Errorf("invalid --library-id: %w", err)
		}
		opts = append(opts, sqlite.WithLibraryID(id))
	}
	return opts, nil
}

func newConverter() (*converter, error) {
	lvl, err := outputLevel("")
	if err != nil {
		return nil, err
	}
	f := cfg.Filter
	selector, err := filter.NewSelector(f.Categories, f.Classes, f.MinLevel, f.MinMZ, f.MaxMZ)
	if err != nil {
		return nil, err
	}

	peaks := &filter.Config{
		TopN:            cfg.Convert.TopN,
		IntensityCutoff: cfg.Convert.Cutoff,
	}
	if annotations != "" {
		for _, a := range strings.Split(annotations, ",") {
			peaks.Annotations = append(peaks.Annotations, strings.TrimSpace(a))
		}
	}

	c := &converter{
		level:    lvl,
		selector: selector,
		peaks:    peaks,
		strict:   cfg.Parser.IsStrict(),
		workers:  cfg.Convert.Workers,
		logger:   logger,
		seen:     make(map[string]int),
	}
	// one parser per worker, parsers are not safe for concurrent use
	for range c.workers {
		p, err := newParser()
		if err != nil {
			return nil, err
		}
		c.parsers = append(c.parsers, p)
	}
	return c, nil
}

// batchWriter is implemented by *sqlite.Writer.
type batchWriter interface {
	WriteBatch([]*core.Spectrum) error
}

func (c *converter) convertFile(ctx context.Context, path string, w batchWriter) error {
	c.logger.Info("reading", slog.String("file", path))

	chunk := make([]*core.Spectrum, 0, cfg.Convert.ChunkSize)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		err := c.processChunk(ctx, chunk, w)
		chunk = chunk[:0]
		return err
	}

	err := forEachEntry(path, inputFormat, func(spec *core.Spectrum) error {
		chunk = append(chunk, spec)
		if len(chunk) < cfg.Convert.ChunkSize {
			return nil
		}
		return flush()
	})
	if err != nil {
		return err
	}
	return flush()
}

// processChunk normalizes a chunk on the worker pool and writes the
// accepted entries in one transaction.
func (c *converter) processChunk(ctx context.Context, chunk []*core.Spectrum, w batchWriter) error {
	results := make([]error, len(chunk))

	g, ctx := errgroup.WithContext(ctx)
	per := (len(chunk) + len(c.parsers) - 1) / len(c.parsers)
	for i, p := range c.parsers {
		lo := i * per
		if lo >= len(chunk) {
			break
		}
		hi := min(lo+per, len(chunk))
		g.Go(func() error {
			for j := lo; j < hi; j++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[j] = c.normalize(p, chunk[j])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	kept := make([]*core.Spectrum, 0, len(chunk))
	for i, spec := range chunk {
		switch err := results[i]; {
		case err == nil:
			kept = append(kept, spec)
			if n := c.seen[spec.Key()]; n > 0 {
				c.duplicates++
				c.logger.Debug("duplicate lipid",
					slog.String("key", spec.Key()),
					slog.String("name", spec.Name),
					slog.Int("line", spec.SourceLine))
			}
			c.seen[spec.Key()]++
		case errors.Is(err, errFiltered):
			c.filtered++
		default:
			if c.strict && errors.Is(err, errUnparsable) {
				return fmt.Errorf("%s line %d: %w", spec.SourceFile, spec.SourceLine, err)
			}
			c.logger.Warn("skipping entry",
				slog.String("name", spec.Name),
				slog.String("file", spec.SourceFile),
				slog.Int("line", spec.SourceLine),
				slog.String("error", err.Error()))
			c.skipped++
		}
	}

	if err := w.WriteBatch(kept); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}

	before := c.written / 1000
	c.written += len(kept)
	if c.written/1000 > before {
		c.logger.Info("progress", slog.Int("written", c.written))
	}
	return nil
}

// normalize parses the entry name, applies the lipid selector and peak
// filters and attaches the normalized annotation.
func (c *converter) normalize(p *goslin.Parser, spec *core.Spectrum) error {
	la, err := p.Parse(spec.ParseName())
	if err != nil {
		return fmt.Errorf("%w: %w", errUnparsable, err)
	}
	if !c.selector.Match(la) {
		return errFiltered
	}

	ann, err := la.AnnotationAt(c.level)
	if err != nil {
		return err
	}
	spec.Normalized = ann
	if spec.Charge == 0 {
		spec.Charge = ann.Charge
	}
	if spec.PrecursorMZ == 0 && ann.Charge != 0 {
		spec.PrecursorMZ = ann.Mass
	}

	filter.RemoveZeroIntensityPeaks(spec)
	if err := c.peaks.Apply(spec); err != nil {
		return err
	}
	return spec.Validate()
}
