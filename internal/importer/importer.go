// Package importer parses batch upload files (xlsx, csv) into receivable
// records and loads them through the service, skipping rows that collide
// with records already in the store.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Vivianhuwz/cobrancayb/internal/caldate"
	"github.com/Vivianhuwz/cobrancayb/internal/identity"
	"github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported import format")
	// ErrMissingColumns is returned when the header row lacks the two
	// columns every template variant must carry: customer and amount.
	ErrMissingColumns = errors.New("missing required columns: cliente, valor final")
	ErrEmptyFile      = errors.New("file has no data rows")
)

// Row is one parsed data line from the upload, pre-coercion into the
// domain types but not yet validated by the service.
type Row struct {
	Line          int
	OrderNumber   string
	InvoiceNumber string
	CustomerName  string
	Amount        decimal.Decimal
	OrderDate     caldate.Date
}

// RowError reports a data line the parser or loader had to skip.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result summarizes one import run for the UI.
type Result struct {
	Imported   int        `json:"imported"`
	Duplicates []string   `json:"duplicates,omitempty"`
	Errors     []RowError `json:"errors,omitempty"`
}

// columnMap holds the indexes resolved from the header row. A value of
// -1 means the column is absent from this file.
type columnMap struct {
	invoice  int
	order    int
	date     int
	customer int
	amount   int
}

var accentFold = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ã", "a", "ä", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ò", "o", "ó", "o", "ô", "o", "õ", "o", "ö", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ç", "c",
)

// normalizeHeader folds a header cell to the canonical form used for
// column matching: lowercase, no whitespace, no accents, no BOM.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(strings.TrimSpace(h), "\uFEFF")
	h = strings.TrimPrefix(h, "*")
	h = strings.ToLower(h)
	h = strings.Join(strings.Fields(h), "")
	return accentFold.Replace(h)
}

func resolveColumns(headers []string) (columnMap, error) {
	cols := columnMap{invoice: -1, order: -1, date: -1, customer: -1, amount: -1}
	for i, h := range headers {
		switch normalizeHeader(h) {
		case "nf", "invoice", "invoice_number":
			cols.invoice = i
		case "pedido", "order", "order_number":
			cols.order = i
		case "datadeemissao", "order_date", "date":
			cols.date = i
		case "cliente", "customer", "customer_name":
			cols.customer = i
		case "valorfinal", "amount", "valor":
			cols.amount = i
		}
	}
	if cols.customer < 0 || cols.amount < 0 {
		return cols, ErrMissingColumns
	}
	return cols, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRows converts the raw sheet into rows, collecting per-line errors
// instead of failing the whole file on one bad cell.
func parseRows(raw [][]string) ([]Row, []RowError, error) {
	if len(raw) < 2 {
		return nil, nil, ErrEmptyFile
	}

	cols, err := resolveColumns(raw[0])
	if err != nil {
		return nil, nil, err
	}

	var (
		rows    []Row
		rowErrs []RowError
	)
	for i, line := range raw[1:] {
		lineNo := i + 2
		customer := cell(line, cols.customer)
		rawAmount := cell(line, cols.amount)
		if customer == "" && rawAmount == "" {
			continue
		}
		if customer == "" {
			rowErrs = append(rowErrs, RowError{Line: lineNo, Reason: "empty customer name"})
			continue
		}

		amount, err := parseAmount(rawAmount)
		if err != nil || amount.Sign() <= 0 {
			rowErrs = append(rowErrs, RowError{Line: lineNo, Reason: fmt.Sprintf("invalid amount %q", rawAmount)})
			continue
		}

		rows = append(rows, Row{
			Line:          lineNo,
			OrderNumber:   cell(line, cols.order),
			InvoiceNumber: cell(line, cols.invoice),
			CustomerName:  customer,
			Amount:        amount,
			OrderDate:     parseCellDate(cell(line, cols.date)),
		})
	}
	return rows, rowErrs, nil
}

// Parse reads an upload in the given format and returns the data rows
// plus any per-line problems. Header detection follows the original
// spreadsheet template (NF, Pedido, Data de Emissão, Cliente, Valor
// Final) and also accepts the english column names the API exports.
func Parse(r io.Reader, format Format) ([]Row, []RowError, error) {
	switch format {
	case FormatXLSX:
		return parseXLSX(r)
	case FormatCSV:
		return parseCSV(r)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func parseXLSX(r io.Reader) ([]Row, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrEmptyFile
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return parseRows(raw)
}

func parseCSV(r io.Reader) ([]Row, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	return parseRows(raw)
}

// Importer loads parsed rows through the receivable service, deduplicating
// against the records already present. Existing records always win.
type Importer struct {
	svc domain.Service
	log *zap.Logger
}

func New(svc domain.Service, log *zap.Logger) *Importer {
	return &Importer{svc: svc, log: log}
}

// Import inserts the batch, skipping rows whose identity key matches a
// record already in the store or an earlier row in the same batch.
func (im *Importer) Import(ctx context.Context, rows []Row, rowErrs []RowError) (Result, error) {
	existing, err := im.svc.Snapshot(ctx)
	if err != nil {
		return Result{}, err
	}

	seen := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		seen[identity.RecordKey(rec)] = struct{}{}
	}

	res := Result{Errors: rowErrs}
	for _, row := range rows {
		key := identity.RecordKey(&domain.Record{
			OrderNumber:   row.OrderNumber,
			InvoiceNumber: row.InvoiceNumber,
			CustomerName:  row.CustomerName,
			Amount:        row.Amount,
			OrderDate:     row.OrderDate,
		})
		if _, dup := seen[key]; dup {
			res.Duplicates = append(res.Duplicates, key)
			continue
		}

		_, err := im.svc.Create(ctx, domain.CreateRecordRequest{
			OrderNumber:   row.OrderNumber,
			InvoiceNumber: row.InvoiceNumber,
			CustomerName:  row.CustomerName,
			Amount:        row.Amount,
			// The spreadsheet template carries no credit terms column.
			CreditDays: 30,
			OrderDate:  row.OrderDate,
		})
		if err != nil {
			im.log.Warn("import row rejected",
				zap.Int("line", row.Line),
				zap.Error(err),
			)
			res.Errors = append(res.Errors, RowError{Line: row.Line, Reason: err.Error()})
			continue
		}

		seen[key] = struct{}{}
		res.Imported++
	}

	im.log.Info("import finished",
		zap.Int("imported", res.Imported),
		zap.Int("duplicates", len(res.Duplicates)),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}
