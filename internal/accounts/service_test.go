package accounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/intake/internal/model"
)

func TestNewService(t *testing.T) {
	chart := DefaultChart()
	svc := NewService(chart)

	assert.Len(t, svc.All(), len(chart))
}

func TestGetExists(t *testing.T) {
	svc := NewService(DefaultChart())

	acct, ok := svc.Get("1010")
	assert.True(t, ok)
	assert.Equal(t, "Business Checking", acct.Name)

	_, ok = svc.Get(model.PlaceholderAccountCode)
	assert.False(t, ok)

	assert.True(t, svc.Exists("1010"))
	assert.False(t, svc.Exists("0000"))
}

func TestByType(t *testing.T) {
	svc := NewService(DefaultChart())

	assets := svc.ByType(model.AccountTypeAsset)
	assert.Len(t, assets, 2, "expected Business Checking + Business Savings")
	for _, a := range assets {
		assert.Equal(t, model.AccountTypeAsset, a.Type)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(DefaultChart())
	require.NoError(t, svc.Save(dir))

	_, err := os.Stat(filepath.Join(dir, "rules", "chart-of-accounts.csv"))
	require.NoError(t, err)

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, svc.All(), loaded.All())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault(t *testing.T) {
	svc, err := LoadOrDefault(t.TempDir())
	require.NoError(t, err)
	assert.Len(t, svc.All(), len(DefaultChart()))

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "rules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ChartFile), []byte("account_code,account_name,account_type,description\n1010,Checking,cash,\n"), 0o644))
	_, err = LoadOrDefault(dir)
	assert.Error(t, err)
}
