// Package pipeline chains ingestion, duplicate collapsing and categorization
// for one statement file. The CLI and the HTTP API both run files through it.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cleared-dev/intake/internal/categorize"
	"github.com/cleared-dev/intake/internal/config"
	"github.com/cleared-dev/intake/internal/dedupe"
	"github.com/cleared-dev/intake/internal/importer"
	"github.com/cleared-dev/intake/internal/runlog"
	"github.com/cleared-dev/intake/internal/stats"
)

// Options selects the optional stages.
type Options struct {
	Dedupe bool
	// Categorizer is optional; when nil categorization and stats are skipped.
	Categorizer categorize.Categorizer
	Categorize  categorize.Options
	Thresholds  stats.Thresholds
}

// OptionsFromConfig returns options with dedupe on and no categorizer.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Dedupe:     true,
		Categorize: categorize.OptionsFromConfig(cfg),
		Thresholds: stats.ThresholdsFromConfig(cfg.Thresholds),
	}
}

// Outcome is the result bundle for one file. Result.Transactions holds the
// final list: duplicates removed and categorization applied when enabled.
type Outcome struct {
	*importer.Result
	Duplicates *dedupe.Result `json:"duplicates,omitempty"`
	Stats      *stats.Stats   `json:"stats,omitempty"`
}

// DuplicateCount is zero when dedupe was skipped.
func (o *Outcome) DuplicateCount() int {
	if o.Duplicates == nil {
		return 0
	}
	return o.Duplicates.DuplicateCount
}

// LogEntry summarizes the outcome as an ingest log row.
func (o *Outcome) LogEntry(at time.Time) runlog.Entry {
	return runlog.Entry{
		Timestamp:    at,
		File:         o.FileName,
		Format:       string(o.Format),
		Transactions: len(o.Transactions),
		Duplicates:   o.DuplicateCount(),
		Warnings:     len(o.Validation.Warnings),
		Status:       runlog.StatusOf(o.Validation.IsValid, len(o.Validation.Warnings)),
	}
}

// Run ingests r and applies the enabled stages. A rejected file is returned
// as-is with no further stages run.
func Run(ctx context.Context, in *importer.Ingester, r io.Reader, fileName string, opts Options) (*Outcome, error) {
	res, err := in.Ingest(ctx, r, fileName)
	if err != nil {
		return nil, err
	}
	return Process(ctx, res, opts)
}

// Process applies the enabled stages to an ingest result.
func Process(ctx context.Context, res *importer.Result, opts Options) (*Outcome, error) {
	out := &Outcome{Result: res}
	if !res.Validation.IsValid {
		return out, nil
	}

	if opts.Dedupe {
		d := dedupe.Detect(res.Transactions)
		out.Duplicates = &d
		res.Transactions = d.Clean
	}

	if opts.Categorizer != nil {
		txns, err := categorize.Run(ctx, res.Transactions, opts.Categorizer, opts.Categorize)
		if err != nil {
			return nil, fmt.Errorf("processing %s: %w", res.FileName, err)
		}
		res.Transactions = txns
		st := stats.Calculate(txns, opts.Thresholds)
		out.Stats = &st
	}
	return out, nil
}
