package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/goslin/pkg/core"
	"github.com/ChrisMcGann/goslin/pkg/goslin"
	"github.com/ChrisMcGann/goslin/pkg/lipid"
	"github.com/ChrisMcGann/goslin/pkg/server"
)

var (
	parseIn     string
	parseFormat string
	parseLevel  string
	parseJSON   bool
)

func init() {
	parseCmd.Flags().StringVarP(&parseIn, "in", "i", "", "Read names from a names list or MSP file")
	parseCmd.Flags().StringVarP(&parseFormat, "from", "f", "", "Input format: msp, names (auto-detect if not specified)")
	parseCmd.Flags().StringVarP(&parseLevel, "level", "l", "", "Output level, e.g. species, molecular, sn (default: as parsed)")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print results as JSON")
}

var parseCmd = &cobra.Command{
	Use:   "parse [names...]",
	Short: "Parse lipid names and print their normalized form",
	Long: `Parse lipid names given as arguments or read from a file and print the
normalized name, category, class, sum formula, mass and charge.

Examples:
  goslin parse "PC 16:0/18:1(9Z)" "Cer 18:1;O2/24:0"
  goslin parse --level species "PE(16:0/18:0)[M+2H]2+"
  goslin parse --in names.txt --json`,
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && parseIn == "" {
		return fmt.Errorf("no names given, pass names as arguments or use --in")
	}
	level, err := outputLevel(parseLevel)
	if err != nil {
		return err
	}
	p, err := newParser()
	if err != nil {
		return err
	}

	var results []server.ParseResult
	add := func(name string) {
		results = append(results, parseResult(p, name, level))
	}
	for _, name := range args {
		add(name)
	}
	if parseIn != "" {
		err := forEachEntry(parseIn, parseFormat, func(spec *core.Spectrum) error {
			add(spec.ParseName())
			return nil
		})
		if err != nil {
			return err
		}
	}

	if parseJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return writeResults(cmd.OutOrStdout(), results)
}

func parseResult(p *goslin.Parser, name string, level lipid.Level) server.ParseResult {
	res := server.ParseResult{Input: name}
	la, err := p.Parse(name)
	if err == nil {
		res.Annotation, err = la.AnnotationAt(level)
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func writeResults(w io.Writer, results []server.ParseResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tNAME\tLEVEL\tCATEGORY\tCLASS\tFORMULA\tMASS\tCHARGE")
	for _, r := range results {
		if r.Annotation == nil {
			fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\t\t\t\n", r.Input, r.Error)
			continue
		}
		a := r.Annotation
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.4f\t%d\n",
			r.Input, a.Name, a.Level, a.Category, a.Class, a.SumFormula, a.Mass, a.Charge)
	}
	return tw.Flush()
}
