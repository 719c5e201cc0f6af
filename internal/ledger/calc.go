// Package ledger holds the pure receivable calculators: due dates,
// paid/remaining amounts, and display status. Nothing here mutates a
// record or touches storage; repairs belong to the integrity package.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/Vivianhuwz/cobrancayb/internal/caldate"
	"github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

// DisplayStatus is the derived, display-only label for a record. It is
// never persisted; the stored status only knows pending/paid/archived.
type DisplayStatus string

const (
	DisplayPending DisplayStatus = "pending"
	DisplayPaid    DisplayStatus = "paid"
	DisplayOverdue DisplayStatus = "overdue"
	DisplayDueSoon DisplayStatus = "due-soon"
)

// DueSoonWindowDays is how close a due date has to be before the record
// is flagged as due-soon.
const DueSoonWindowDays = 3

// DueDate adds creditDays calendar days to the order date and then
// advances day by day past any weekend. Zero order dates yield a zero
// due date; creditDays below one is treated as one.
func DueDate(orderDate caldate.Date, creditDays int) caldate.Date {
	if orderDate.IsZero() {
		return caldate.Date{}
	}
	if creditDays < 1 {
		creditDays = 1
	}
	due := orderDate.AddDays(creditDays)
	for due.IsWeekend() {
		due = due.AddDays(1)
	}
	return due
}

// PaidAmount sums the payment amounts. Non-positive entries contribute
// nothing; they are reported by the validator, not dropped here.
func PaidAmount(payments []domain.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Amount.IsPositive() {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// Remaining is principal minus the payment sum, floored at zero.
func Remaining(rec *domain.Record) decimal.Decimal {
	rem := rec.Amount.Sub(PaidAmount(rec.Payments))
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// DisplayStatusOf derives the label for a record as of a given date.
// A stored paid status always displays paid; a fully covered principal
// displays paid without the stored status being touched (promotion is
// the repairer's decision, not the calculator's).
func DisplayStatusOf(rec *domain.Record, asOf caldate.Date) DisplayStatus {
	if rec.Status == domain.StatusPaid {
		return DisplayPaid
	}
	if !Remaining(rec).IsPositive() {
		return DisplayPaid
	}
	if rec.DueDate.IsZero() {
		return DisplayPending
	}
	if rec.DueDate.Before(asOf) {
		return DisplayOverdue
	}
	if asOf.DaysUntil(rec.DueDate) <= DueSoonWindowDays {
		return DisplayDueSoon
	}
	return DisplayPending
}
