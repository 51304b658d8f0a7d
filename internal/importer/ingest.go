package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/cleared-dev/intake/internal/config"
	"github.com/cleared-dev/intake/internal/id"
	"github.com/cleared-dev/intake/internal/logger"
	"github.com/cleared-dev/intake/internal/model"
)

// earliestPlausibleYear bounds the data-quality check on dates.
const earliestPlausibleYear = 1970

// Options tunes an Ingester.
type Options struct {
	SampleRows       int
	LargeFileWarning int
}

// DefaultOptions mirrors config.Default().
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Ingest)
}

// OptionsFromConfig converts the ingest section of the config.
func OptionsFromConfig(cfg config.IngestConfig) Options {
	opts := Options{SampleRows: cfg.SampleRows, LargeFileWarning: cfg.LargeFileWarning}
	if opts.SampleRows <= 0 {
		opts.SampleRows = 5
	}
	return opts
}

// Result is the outcome of ingesting one file.
type Result struct {
	FileName     string                 `json:"fileName"`
	Format       model.BankFormat       `json:"format"`
	Strategy     Strategy               `json:"strategy"`
	Headerless   bool                   `json:"headerless"`
	Transactions []model.Transaction    `json:"transactions"`
	Validation   model.ValidationResult `json:"validation"`
	RowsRead     int                    `json:"rowsRead"`
	RowsSkipped  int                    `json:"rowsSkipped"`

	Detection Detection `json:"-"`
}

// Ingester runs detection and normalization over CSV payloads. It holds no
// per-file state and is safe for concurrent use.
type Ingester struct {
	detector *Detector
	opts     Options
	newID    func() string
	now      func() time.Time
}

// NewIngester returns an ingester over the given format registry.
func NewIngester(registry *Registry, opts Options) *Ingester {
	if opts.SampleRows <= 0 {
		opts.SampleRows = 5
	}
	return &Ingester{
		detector: NewDetector(registry),
		opts:     opts,
		newID:    id.NewTransactionID,
		now:      time.Now,
	}
}

// record is one CSV record with its 1-based line number in the file.
type record struct {
	line  int
	cells []string
}

// Ingest parses a CSV payload into transactions. Problems with the file's
// contents are reported in Result.Validation; the returned error is reserved
// for failures reading r or a cancelled context.
func (in *Ingester) Ingest(ctx context.Context, r io.Reader, fileName string) (*Result, error) {
	log := logger.FromContext(ctx).With().Str("file", fileName).Logger()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fileName, err)
	}

	res := &Result{
		FileName:     fileName,
		Format:       model.FormatUnknown,
		Strategy:     StrategyNone,
		Transactions: []model.Transaction{},
		Validation:   model.NewValidationResult(),
	}

	records, err := readRecords(data)
	if err != nil {
		res.Validation.AddError("Could not read CSV: %v", err)
		return res, nil
	}
	if len(records) == 0 {
		res.Validation.AddError("File is empty")
		return res, nil
	}

	header, rest := records[0], records[1:]
	det := in.detector.Detect(header.cells, sampleCells(rest, in.opts.SampleRows), fileName)
	res.Detection = det
	if !det.Detected() {
		res.Validation.AddError("%s", det.Message())
		log.Warn().Strs("headers", header.cells).Msg("bank format not detected")
		return res, nil
	}

	res.Format, res.Strategy, res.Headerless = det.Format.Name, det.Strategy, det.Headerless
	log.Debug().
		Str("format", string(det.Format.Name)).
		Str("strategy", string(det.Strategy)).
		Bool("headerless", det.Headerless).
		Msg("detected bank format")

	dataRows := rest
	if det.Headerless {
		dataRows = records
	}

	norm := &Normalizer{format: det.Format, newID: in.newID, now: in.now}
	for i, rec := range dataRows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row := NewRow(det.Labels, rec.cells)
		if row.Blank() {
			continue
		}
		res.RowsRead++

		rr := norm.NormalizeRow(rec.line, row)
		if !rr.OK() {
			res.RowsSkipped++
			res.Validation.AddWarning("Row %d: %v", rr.Line, rr.Err)
			log.Debug().Int("line", rr.Line).Err(rr.Err).Msg("skipped row")
			continue
		}
		res.Transactions = append(res.Transactions, rr.Transaction)
	}

	if len(res.Transactions) == 0 {
		res.Validation.AddError("No valid transactions found in %s", displayName(fileName))
		return res, nil
	}

	in.checkQuality(res)

	log.Info().
		Str("format", string(res.Format)).
		Int("transactions", len(res.Transactions)).
		Int("skipped", res.RowsSkipped).
		Int("warnings", len(res.Validation.Warnings)).
		Msg("ingested file")
	return res, nil
}

// checkQuality adds file-level warnings about suspicious but accepted data.
func (in *Ingester) checkQuality(res *Result) {
	latest := civil.DateOf(in.now()).AddDays(365)

	var oddDates, noDesc, zero int
	for _, t := range res.Transactions {
		if t.Date.Year < earliestPlausibleYear || t.Date.After(latest) {
			oddDates++
		}
		if t.Description == "" {
			noDesc++
		}
		if t.Amount.IsZero() {
			zero++
		}
	}

	if oddDates > 0 {
		res.Validation.AddWarning("%d transaction(s) have dates before %d or more than a year ahead", oddDates, earliestPlausibleYear)
	}
	if noDesc > 0 {
		res.Validation.AddWarning("%d transaction(s) have no usable description", noDesc)
	}
	if zero > 0 {
		res.Validation.AddWarning("%d transaction(s) have a zero amount", zero)
	}
	if in.opts.LargeFileWarning > 0 && len(res.Transactions) > in.opts.LargeFileWarning {
		res.Validation.AddWarning("Large file: %d transactions; categorization may take a while", len(res.Transactions))
	}
}

// readRecords parses the payload leniently: ragged rows, stray quotes and a
// leading byte-order mark are tolerated. Blank lines are skipped.
func readRecords(data []byte) ([]record, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var records []record
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if blankCells(cells) {
			continue
		}
		line, _ := cr.FieldPos(0)
		records = append(records, record{line: line, cells: cells})
	}
	return records, nil
}

func sampleCells(records []record, n int) [][]string {
	var out [][]string
	for _, r := range records {
		if len(out) == n {
			break
		}
		out = append(out, r.cells)
	}
	return out
}

func blankCells(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func displayName(fileName string) string {
	if fileName == "" {
		return "file"
	}
	return fileName
}
