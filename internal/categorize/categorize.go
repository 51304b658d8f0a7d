// Package categorize assigns account codes to normalized transactions through
// a pluggable Categorizer.
package categorize

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/cleared-dev/intake/internal/config"
	"github.com/cleared-dev/intake/internal/logger"
	"github.com/cleared-dev/intake/internal/model"
)

// ErrNoMatch is returned by a Categorizer that has no opinion on a transaction.
var ErrNoMatch = errors.New("no categorization match")

// Assignment is a categorizer's answer for one transaction.
type Assignment struct {
	AccountCode string
	Category    string
	Merchant    string
	Confidence  float64
	// AI marks assignments produced by a model rather than a fixed rule.
	AI bool
}

// Categorizer categorizes a single transaction.
type Categorizer interface {
	Categorize(ctx context.Context, txn model.Transaction) (Assignment, error)
}

// Options tunes Run.
type Options struct {
	// Timeout bounds each Categorize call. Zero means no per-call limit.
	Timeout time.Duration
	// YieldEvery hands the processor back to the scheduler after this many
	// transactions. Zero disables yielding.
	YieldEvery int
	// Progress, when set, is called after each transaction.
	Progress func(done, total int)
}

// OptionsFromConfig converts the categorize section of the config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{Timeout: cfg.CategorizeTimeout(), YieldEvery: cfg.Categorize.YieldEvery}
}

// Run categorizes txns one at a time and returns annotated copies; the input
// slice is not modified. A failed call leaves the placeholder account code
// with zero confidence and the run continues. Only cancellation of ctx stops
// the run early.
func Run(ctx context.Context, txns []model.Transaction, c Categorizer, opts Options) ([]model.Transaction, error) {
	log := logger.FromContext(ctx)

	out := make([]model.Transaction, len(txns))
	copy(out, txns)

	failed := 0
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("categorizing: %w", err)
		}

		a, err := categorizeOne(ctx, c, out[i], opts.Timeout)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("categorizing: %w", ctxErr)
			}
			failed++
			if !errors.Is(err, ErrNoMatch) {
				log.Debug().Str("txn", out[i].ID).Err(err).Msg("categorizer failed")
			}
			a = Assignment{AccountCode: model.PlaceholderAccountCode}
		}
		apply(&out[i], a)

		if opts.Progress != nil {
			opts.Progress(i+1, len(out))
		}
		if opts.YieldEvery > 0 && (i+1)%opts.YieldEvery == 0 {
			runtime.Gosched()
		}
	}

	log.Debug().Int("transactions", len(out)).Int("uncategorized", failed).Msg("categorization finished")
	return out, nil
}

func categorizeOne(ctx context.Context, c Categorizer, txn model.Transaction, timeout time.Duration) (Assignment, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return c.Categorize(ctx, txn)
}

func apply(t *model.Transaction, a Assignment) {
	t.AccountCode = a.AccountCode
	t.Category = a.Category
	t.Merchant = a.Merchant
	t.Confidence = a.Confidence
	t.AICategorized = a.AI
}
