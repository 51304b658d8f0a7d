package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cleared-dev/intake/internal/accounts"
	"github.com/cleared-dev/intake/internal/categorize"
	"github.com/cleared-dev/intake/internal/importer"
)

// newIngester builds an ingester over the built-in formats plus any custom
// formats from the config.
func (e *env) newIngester() (*importer.Ingester, error) {
	registry, err := importer.NewRegistryFromConfig(e.cfg.Formats)
	if err != nil {
		return nil, fmt.Errorf("loading formats: %w", err)
	}
	return importer.NewIngester(registry, importer.OptionsFromConfig(e.cfg.Ingest)), nil
}

// loadCategorizer loads the rule categorizer for a workspace. rulesPath
// overrides the configured rules file. A missing configured file disables
// categorization; a missing explicit file is an error.
func (e *env) loadCategorizer(workspace, rulesPath string) (categorize.Categorizer, error) {
	explicit := rulesPath != ""
	if !explicit {
		rulesPath = e.cfg.Categorize.RulesFile
		if !filepath.IsAbs(rulesPath) {
			rulesPath = filepath.Join(workspace, rulesPath)
		}
	}

	if _, err := os.Stat(rulesPath); errors.Is(err, os.ErrNotExist) && !explicit {
		e.log.Debug().Str("path", rulesPath).Msg("no rules file, skipping categorization")
		return nil, nil
	}

	chart, err := accounts.LoadOrDefault(workspace)
	if err != nil {
		return nil, err
	}
	rc, err := categorize.LoadRules(rulesPath, chart)
	if err != nil {
		return nil, err
	}
	e.log.Debug().Str("path", rulesPath).Int("rules", rc.Len()).Msg("loaded categorization rules")
	return rc, nil
}
