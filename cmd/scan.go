package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/gdl-match-report/internal/builder"
	"github.com/pable/gdl-match-report/internal/report"
)

var scanCmd = &cobra.Command{
	Use:   "scan <output_dir> <file_prefix>",
	Short: "List run directories and suggest a build range",
	Long: `Find {file_prefix}{N} and {file_prefix}{N}-{PERSPECTIVE} directories in
output_dir, show which contain a finalstate.xml, and print the smallest
[start, end) range that covers them.`,
	Args: cobra.ExactArgs(2),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	outputDir, prefix := args[0], args[1]

	dirs, err := builder.Discover(outputDir, prefix)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		fmt.Fprintf(os.Stdout, "No %s<N> run directories in %s\n", prefix, outputDir)
		return nil
	}

	report.PrintRunDirTable(os.Stdout, dirs)

	start, end, ok := builder.SuggestRange(dirs)
	if !ok {
		cWarn.Fprintln(os.Stdout, "\nNo run directory contains a finalstate.xml yet.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "\nRange: start=%d end=%d\n", start, end)
	if p := builder.Perspectives(dirs); len(p) > 0 {
		fmt.Fprintf(os.Stdout, "Perspectives: %s\n", strings.Join(p, ", "))
	}
	return nil
}
