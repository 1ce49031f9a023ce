package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/goslin/pkg/core"
)

var validateFormat string

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "from", "f", "", "Input format: msp, names (auto-detect if not specified)")
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate lipid names in a names list or MSP library",
	Long: `Parse every lipid name of the input and report the entries that fail with
their line numbers. Entries of MSP libraries are also checked for consistent
precursor, charge and peak data. Exits non-zero when any entry fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	total, failed := 0, 0
	err = forEachEntry(args[0], validateFormat, func(spec *core.Spectrum) error {
		total++
		fail := func(err error) {
			failed++
			fmt.Fprintf(out, "line %d: %s: %v\n", spec.SourceLine, spec.Name, err)
		}
		if err := spec.Validate(); err != nil {
			fail(err)
			return nil
		}
		if _, err := p.Parse(spec.ParseName()); err != nil {
			fail(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d entries, %d valid, %d invalid\n", total, total-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d entries failed validation", failed, total)
	}
	return nil
}
