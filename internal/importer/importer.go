// Package importer detects bank CSV layouts and normalizes their rows into
// transactions.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileInfo describes a CSV file waiting in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

const (
	// ImportDir is the workspace subdirectory scanned for statements.
	ImportDir = "import"
	// ProcessedDir receives statements once ingested.
	ProcessedDir = "import/processed"
)

// IngestFile opens path and ingests it, naming the result after the file.
func (in *Ingester) IngestFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	return in.Ingest(ctx, f, filepath.Base(path))
}

// Scan lists the statements waiting in <workspace>/import/, ordered by name
// without regard to case. Hidden files such as "._bank.csv" are skipped. A
// workspace without an import directory has nothing waiting.
func Scan(workspace string) ([]FileInfo, error) {
	dir := filepath.Join(workspace, ImportDir)
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		files = append(files, FileInfo{Name: name, Path: filepath.Join(dir, name), Size: info.Size()})
	}
	slices.SortFunc(files, func(a, b FileInfo) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return files, nil
}

// MarkProcessed moves an ingested statement into import/processed/ and
// returns its new path. Banks reuse export names, so an earlier file of the
// same name is kept and the new one becomes "name (2).csv".
func MarkProcessed(workspace, fileName string) (string, error) {
	fileName = filepath.Base(fileName)
	dstDir := filepath.Join(workspace, ProcessedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("creating processed dir: %w", err)
	}

	dst, err := freeName(dstDir, fileName)
	if err != nil {
		return "", err
	}
	if err := os.Rename(filepath.Join(workspace, ImportDir, fileName), dst); err != nil {
		return "", fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return dst, nil
}

func freeName(dir, fileName string) (string, error) {
	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)
	for n := 1; ; n++ {
		name := fileName
		if n > 1 {
			name = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		path := filepath.Join(dir, name)
		_, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}
	}
}
