package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/intake/internal/accounts"
	"github.com/cleared-dev/intake/internal/canonical"
	"github.com/cleared-dev/intake/internal/cli"
	"github.com/cleared-dev/intake/internal/dedupe"
)

func newDedupeCommand(e *env) *cobra.Command {
	var output, workspace string

	cmd := &cobra.Command{
		Use:   "dedupe <canonical.csv>",
		Short: "Collapse exact duplicate transactions in a canonical CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runDedupe(cmd, args[0], output, workspace)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&workspace, "dir", ".", "workspace holding the chart of accounts")

	return cmd
}

func (e *env) runDedupe(cmd *cobra.Command, path, output, workspace string) error {
	stderr := cmd.ErrOrStderr()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	txns, err := canonical.ReadTransactions(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	chart, err := accounts.LoadOrDefault(workspace)
	if err != nil {
		return err
	}
	if errs := canonical.Validate(txns, chart); len(errs) > 0 {
		for _, ve := range errs {
			fmt.Fprintln(stderr, cli.FormatError(ve.Error()))
		}
		return fmt.Errorf("%d validation error(s) in %s", len(errs), path)
	}

	res := dedupe.Detect(txns)
	e.log.Debug().Int("groups", len(res.Groups)).Int("duplicates", res.DuplicateCount).Msg("dedupe finished")

	if output == "" {
		if err := canonical.WriteTransactions(cmd.OutOrStdout(), res.Clean); err != nil {
			return err
		}
	} else if err := writeCanonical(output, res.Clean); err != nil {
		return err
	}

	fmt.Fprintln(stderr, cli.FormatSuccess(fmt.Sprintf("Removed %d duplicate(s), kept %d transaction(s)", res.DuplicateCount, len(res.Clean))))
	return nil
}
