// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/goslin/pkg/config"
	"github.com/ChrisMcGann/goslin/pkg/goslin"
	"github.com/ChrisMcGann/goslin/pkg/lipid"
)

var (
	// Persistent flags
	configPath string
	logLevel   string

	// Loaded in PersistentPreRunE
	cfg      *config.Config
	logger   *slog.Logger
	registry *lipid.AdductRegistry
)

var rootCmd = &cobra.Command{
	Use:   "goslin",
	Short: "goslin - lipid name normalization tool",
	Long: `goslin parses lipid shorthand names (Goslin dialect), normalizes them to a
requested structural level and computes sum formulas and masses.

Supported workflows:
- Parsing single names or name lists
- Validating and summarizing MSP libraries and name lists
- Converting libraries to SQLite databases with lipid filters
- Serving a JSON parse endpoint with Prometheus metrics`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default: goslin.yaml in the project, then ~/.config/goslin/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads the configuration, installs the logger and the adduct
// registry shared by all parsers.
func setup(cmd *cobra.Command, args []string) error {
	bootstrap := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	loaded, err := config.NewLoader(bootstrap).Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		if _, err := config.ParseLogLevel(logLevel); err != nil {
			return err
		}
		loaded.Log.Level = logLevel
	}

	l, err := config.NewLogger(loaded.Log, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(l)

	reg := lipid.DefaultAdductRegistry()
	if loaded.AdductsFile != "" {
		f, err := os.Open(loaded.AdductsFile)
		if err != nil {
			return fmt.Errorf("failed to open adducts file: %w", err)
		}
		defer f.Close()
		if err := reg.LoadFromCSV(f); err != nil {
			return fmt.Errorf("failed to load adducts file %s: %w", loaded.AdductsFile, err)
		}
		l.Debug("loaded adducts", slog.String("file", loaded.AdductsFile))
	}

	cfg, logger, registry = loaded, l, reg
	return nil
}

// parserOptions returns the options every parser of this run is built with.
func parserOptions() []goslin.Option {
	return []goslin.Option{
		goslin.WithMaxLength(cfg.Parser.MaxNameLength),
		goslin.WithAdductRegistry(registry),
		goslin.WithLogger(logger),
	}
}

// newParser creates a parser configured from the loaded configuration.
func newParser() (*goslin.Parser, error) {
	return goslin.New(parserOptions()...)
}

// outputLevel resolves a --level flag, falling back to parser.output_level.
func outputLevel(flag string) (lipid.Level, error) {
	if flag == "" {
		flag = cfg.Parser.OutputLevel
	}
	if flag == "" {
		return lipid.NoLevel, nil
	}
	return lipid.ParseLevel(flag)
}
