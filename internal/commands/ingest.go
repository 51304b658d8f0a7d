package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/intake/internal/canonical"
	"github.com/cleared-dev/intake/internal/cli"
	"github.com/cleared-dev/intake/internal/importer"
	"github.com/cleared-dev/intake/internal/model"
	"github.com/cleared-dev/intake/internal/pipeline"
	"github.com/cleared-dev/intake/internal/runlog"
)

type ingestOptions struct {
	dir          string
	output       string
	rules        string
	asJSON       bool
	noDedupe     bool
	noCategorize bool
	keep         bool
}

func newIngestCommand(e *env) *cobra.Command {
	var o ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Detect, normalize and categorize bank CSV files",
		Long: `Ingest bank statement CSV files.

With --dir, every CSV in <dir>/import/ is ingested, accepted files are moved
to <dir>/import/processed/, and one row per file is appended to
<dir>/logs/ingest-log.csv.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.dir == "" && len(args) == 0 {
				return errors.New("no input: pass CSV files or --dir")
			}
			return e.runIngest(cmd, args, o)
		},
	}

	cmd.Flags().StringVar(&o.dir, "dir", "", "workspace whose import/ directory is scanned")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write accepted transactions as canonical CSV")
	cmd.Flags().StringVar(&o.rules, "rules", "", "categorization rules file (default from config)")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&o.noDedupe, "no-dedupe", false, "keep duplicate transactions")
	cmd.Flags().BoolVar(&o.noCategorize, "no-categorize", false, "skip categorization")
	cmd.Flags().BoolVar(&o.keep, "keep", false, "leave ingested files in import/")

	return cmd
}

func (e *env) runIngest(cmd *cobra.Command, args []string, o ingestOptions) error {
	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	workspace := o.dir
	if workspace == "" {
		workspace = "."
	}

	paths := append([]string{}, args...)
	if o.dir != "" {
		files, err := importer.Scan(o.dir)
		if err != nil {
			return err
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}
	if len(paths) == 0 {
		fmt.Fprintln(stderr, cli.FormatWarning("No CSV files in "+filepath.Join(o.dir, importer.ImportDir)))
		return nil
	}

	in, err := e.newIngester()
	if err != nil {
		return err
	}

	opts := pipeline.OptionsFromConfig(e.cfg)
	opts.Dedupe = !o.noDedupe
	if !o.noCategorize {
		opts.Categorizer, err = e.loadCategorizer(workspace, o.rules)
		if err != nil {
			return err
		}
	}

	var (
		outcomes []*pipeline.Outcome
		entries  []runlog.Entry
		accepted []model.Transaction
		rejected int
	)
	for _, path := range paths {
		res, err := in.IngestFile(ctx, path)
		if err != nil {
			return err
		}

		fileOpts := opts
		if opts.Categorizer != nil && !o.asJSON {
			fileOpts.Categorize.Progress = cli.LazyProgress(stderr, "Categorizing "+res.FileName)
		}
		out, err := pipeline.Process(ctx, res, fileOpts)
		if err != nil {
			return err
		}

		outcomes = append(outcomes, out)
		entries = append(entries, out.LogEntry(time.Now()))
		if !out.Validation.IsValid {
			rejected++
		} else {
			accepted = append(accepted, out.Transactions...)
		}

		if !o.asJSON {
			fmt.Fprint(stdout, cli.RenderSummary(cli.FileSummary{
				Result:     out.Result,
				Duplicates: out.DuplicateCount(),
				Stats:      out.Stats,
			}))
		}

		if o.dir != "" && out.Validation.IsValid && !o.keep {
			dst, err := importer.MarkProcessed(o.dir, res.FileName)
			if err != nil {
				return err
			}
			e.log.Debug().Str("file", res.FileName).Str("path", dst).Msg("moved to processed")
		}
	}

	if o.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcomes); err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
	}

	if o.output != "" {
		if err := writeCanonical(o.output, accepted); err != nil {
			return err
		}
		e.log.Info().Str("path", o.output).Int("transactions", len(accepted)).Msg("wrote canonical CSV")
	}

	if o.dir != "" {
		if err := runlog.Append(o.dir, entries); err != nil {
			return err
		}
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d file(s) rejected", rejected, len(paths))
	}
	return nil
}

func writeCanonical(path string, txns []model.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := canonical.WriteTransactions(f, txns); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
