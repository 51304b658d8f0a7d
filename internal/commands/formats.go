package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/intake/internal/cli"
	"github.com/cleared-dev/intake/internal/importer"
)

func newFormatsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the bank formats the detector knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := importer.NewRegistryFromConfig(e.cfg.Formats)
			if err != nil {
				return fmt.Errorf("loading formats: %w", err)
			}
			printFormats(cmd.OutOrStdout(), registry.All())
			return nil
		},
	}
	cmd.AddCommand(newFormatsClassifyCommand())
	return cmd
}

func printFormats(w io.Writer, formats []importer.FormatDescriptor) {
	fmt.Fprintln(w, cli.TitleStyle.Render(fmt.Sprintf("%d formats", len(formats))))
	for _, f := range formats {
		amount := f.AmountColumn
		if f.SplitAmount() {
			amount = f.WithdrawalColumn + " / " + f.DepositColumn
		}
		detail := fmt.Sprintf("%s | %s | %s", f.DateColumn, f.DescriptionColumn, amount)
		if f.DateNotation != "" {
			detail += cli.SubtleStyle.Render("  " + string(f.DateNotation))
		}
		fmt.Fprintln(w, cli.LabelStyle.Render(string(f.Name))+detail)
	}
}

func newFormatsClassifyCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <header>...",
		Short: "Show how header labels are classified",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			results := importer.ClassifyHeaders(args)
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			for _, c := range results {
				line := fmt.Sprintf("%s %.2f", c.Field, c.Confidence)
				if len(c.Alternatives) > 0 {
					line += cli.SubtleStyle.Render("  also: " + strings.Join(c.Alternatives, ", "))
				}
				if c.Accepted() {
					line = cli.FormatSuccess(line)
				} else {
					line = cli.FormatWarning(line)
				}
				fmt.Fprintln(out, cli.LabelStyle.Render(c.Header)+line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print classifications as JSON")
	return cmd
}
