package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Formats = []FormatConfig{
		{
			Name:              "CreditUnion",
			Headers:           []string{"Trans Date", "Narration", "Value"},
			DateColumn:        "Trans Date",
			DescriptionColumn: "Narration",
			AmountColumn:      "Value",
			DateNotation:      "DD/MM/YYYY",
			ContentPatterns:   []string{"(?i)credit union"},
		},
	}

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Ingest, got.Ingest)
	assert.InDelta(t, cfg.Thresholds.AutoConfirm, got.Thresholds.AutoConfirm, 0.001)
	assert.InDelta(t, cfg.Thresholds.ReviewFlag, got.Thresholds.ReviewFlag, 0.001)
	assert.Equal(t, cfg.Categorize, got.Categorize)
	assert.Equal(t, cfg.Server, got.Server)
	assert.Equal(t, cfg.Logging, got.Logging)
	require.Len(t, got.Formats, 1)
	assert.Equal(t, "CreditUnion", got.Formats[0].Name)
	assert.Equal(t, []string{"Trans Date", "Narration", "Value"}, got.Formats[0].Headers)
	assert.Empty(t, got.Formats[0].WithdrawalColumn)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 5, cfg.Ingest.SampleRows)
	assert.Equal(t, 5000, cfg.Ingest.LargeFileWarning)
	assert.InDelta(t, 0.95, cfg.Thresholds.AutoConfirm, 0.001)
	assert.InDelta(t, 0.70, cfg.Thresholds.ReviewFlag, 0.001)
	assert.Equal(t, "rules/categorization-rules.yaml", cfg.Categorize.RulesFile)
	assert.Equal(t, 10*time.Second, cfg.CategorizeTimeout())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Formats)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  auto_confirm: 0.9\n  review_flag: 0.6\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, got.Thresholds.AutoConfirm, 0.001)
	assert.InDelta(t, 0.6, got.Thresholds.ReviewFlag, 0.001)
	assert.Equal(t, 5, got.Ingest.SampleRows)
	assert.Equal(t, "console", got.Logging.Format)
}

func TestCategorizeTimeout(t *testing.T) {
	cfg := Default()
	cfg.Categorize.Timeout = "250ms"
	assert.Equal(t, 250*time.Millisecond, cfg.CategorizeTimeout())

	cfg.Categorize.Timeout = "soon"
	assert.Equal(t, 10*time.Second, cfg.CategorizeTimeout())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default()
	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "sample_rows: 5")
	assert.Contains(t, contents, "auto_confirm: 0.95")
	assert.Contains(t, contents, "rules_file: rules/categorization-rules.yaml")
	assert.Contains(t, contents, "format: console")
	assert.NotContains(t, contents, "formats:")
}
