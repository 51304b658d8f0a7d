// Package runlog records one row per ingested file in logs/ingest-log.csv.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Status is the outcome of ingesting one file.
type Status string

const (
	StatusOK       Status = "ok"
	StatusWarnings Status = "warnings"
	StatusRejected Status = "rejected"
)

// StatusOf derives a file's status from its validation outcome.
func StatusOf(valid bool, warnings int) Status {
	switch {
	case !valid:
		return StatusRejected
	case warnings > 0:
		return StatusWarnings
	}
	return StatusOK
}

// Entry is one row in the ingest log.
type Entry struct {
	Timestamp    time.Time
	File         string
	Format       string
	Transactions int
	Duplicates   int
	Warnings     int
	Status       Status
}

// Header is the CSV header for ingest-log.csv.
const Header = "timestamp,file,format,transactions,duplicates,warnings,status"

const (
	numFields       = 7
	logDir          = "logs"
	logFile         = "logs/ingest-log.csv"
	colTimestamp    = 0
	colFile         = 1
	colFormat       = 2
	colTransactions = 3
	colDuplicates   = 4
	colWarnings     = 5
	colStatus       = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colFile] = e.File
	row[colFormat] = e.Format
	row[colTransactions] = strconv.Itoa(e.Transactions)
	row[colDuplicates] = strconv.Itoa(e.Duplicates)
	row[colWarnings] = strconv.Itoa(e.Warnings)
	row[colStatus] = string(e.Status)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	var counts [3]int
	for i, col := range []int{colTransactions, colDuplicates, colWarnings} {
		counts[i], err = strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
	}

	return Entry{
		Timestamp:    ts,
		File:         record[colFile],
		Format:       record[colFormat],
		Transactions: counts[0],
		Duplicates:   counts[1],
		Warnings:     counts[2],
		Status:       Status(record[colStatus]),
	}, nil
}

// Append writes entries to <workspace>/logs/ingest-log.csv, creating the file and header if needed.
func Append(workspace string, entries []Entry) error {
	dir := filepath.Join(workspace, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(workspace, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ingest log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <workspace>/logs/ingest-log.csv.
// Returns an empty slice if the file does not exist.
func Read(workspace string) ([]Entry, error) {
	path := filepath.Join(workspace, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ingest log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ingest log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
