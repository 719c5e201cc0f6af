package importer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/Vivianhuwz/cobrancayb/internal/caldate"
)

// parseAmount accepts both decimal-point and Brazilian comma-decimal
// notation, with optional currency prefixes and thousands separators.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)

	if strings.Contains(s, ",") {
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// "1.234,56": dots are thousands separators.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// "1,234.56": commas are thousands separators.
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	if d, err := decimal.NewFromString(s); err == nil {
		return d, nil
	}

	f, err := cast.ToFloat64E(s)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(f), nil
}

// excelEpoch is day zero of the 1900 date system, adjusted for the
// fictitious 1900 leap day spreadsheets carry for Lotus compatibility.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// parseCellDate reads dd/mm/yyyy and ISO strings, falling back to Excel
// serial numbers for cells the sheet left unformatted. Unparseable cells
// yield the zero date; the repairer fills due dates downstream.
func parseCellDate(s string) caldate.Date {
	if s == "" {
		return caldate.Date{}
	}

	if d, err := caldate.Parse(s); err == nil {
		return d
	}

	if serial, err := cast.ToFloat64E(s); err == nil && serial > 59 {
		t := excelEpoch.AddDate(0, 0, int(serial))
		return caldate.Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
	}

	return caldate.Date{}
}
