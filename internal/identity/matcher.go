// Package identity derives the deterministic fingerprints used to
// recognize the same record or payment across local and remote copies.
// Matching on customer and document numbers is inherently heuristic in
// this domain; keeping it in one place keeps the heuristic testable.
package identity

import (
	"strings"

	"github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RecordKey fingerprints a record by customer plus the strongest
// identifier available: order number, then invoice number, then the
// amount/order-date pair for records carrying neither.
func RecordKey(rec *domain.Record) string {
	customer := normalize(rec.CustomerName)
	if n := strings.TrimSpace(rec.OrderNumber); n != "" {
		return customer + "/" + n
	}
	if n := strings.TrimSpace(rec.InvoiceNumber); n != "" {
		return customer + "/" + n
	}
	return customer + "/" + rec.Amount.StringFixed(2) + "/" + rec.OrderDate.ISO()
}

// PaymentKey fingerprints a payment by date, amount, method and remark.
// Deliberately coarse: two payments only collapse when all four fields
// match exactly, preferring a possible duplicate over silently dropping
// a real payment whose fields legitimately differ.
func PaymentKey(p domain.Payment) string {
	return p.Date.ISO() + "/" + p.Amount.StringFixed(2) + "/" + string(p.Method) + "/" + p.Remark
}
