// Package integrity validates and repairs the record set invariants.
// It runs on every load, so everything here is pure in-memory work:
// no I/O, no panics, and a second pass over repaired data is a no-op.
package integrity

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Vivianhuwz/cobrancayb/internal/identity"
	"github.com/Vivianhuwz/cobrancayb/internal/ledger"
	"github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

// Tolerance is the maximum drift allowed between the paid-amount cache
// and the payment sum before it counts as a violation.
var Tolerance = decimal.NewFromFloat(0.01)

// WithinTolerance reports |a-b| <= Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// Rule names the invariant a violation broke.
type Rule string

const (
	RuleAmountInvalid      Rule = "amount_invalid"
	RuleCustomerEmpty      Rule = "customer_name_empty"
	RulePaidMismatch       Rule = "paid_amount_mismatch"
	RulePaymentsExceed     Rule = "payments_exceed_principal"
	RulePaidWithoutHistory Rule = "paid_amount_without_payments"
)

// Violation names one broken invariant on one record. Violations are
// reported to the UI, never thrown; the load continues regardless.
type Violation struct {
	RecordKey string `json:"record_key"`
	Rule      Rule   `json:"rule"`
	Detail    string `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (%s)", v.RecordKey, v.Rule, v.Detail)
}

// Validate scans a record set and reports every invariant violation.
// It never mutates the records.
func Validate(records []*domain.Record) []Violation {
	var out []Violation
	report := func(rec *domain.Record, rule Rule, detail string) {
		out = append(out, Violation{RecordKey: identity.RecordKey(rec), Rule: rule, Detail: detail})
	}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		if !rec.Amount.IsPositive() {
			report(rec, RuleAmountInvalid, fmt.Sprintf("principal %s is not positive", rec.Amount.StringFixed(2)))
		}
		if rec.CustomerName == "" {
			report(rec, RuleCustomerEmpty, "customer name is required")
		}

		paid := ledger.PaidAmount(rec.Payments)
		if len(rec.Payments) == 0 && rec.PaidAmount.IsPositive() {
			report(rec, RulePaidWithoutHistory,
				fmt.Sprintf("paid amount %s has no payment entries", rec.PaidAmount.StringFixed(2)))
		} else if !WithinTolerance(rec.PaidAmount, paid) {
			report(rec, RulePaidMismatch,
				fmt.Sprintf("cached %s vs payment sum %s", rec.PaidAmount.StringFixed(2), paid.StringFixed(2)))
		}
		if paid.Sub(rec.Amount).GreaterThan(Tolerance) {
			report(rec, RulePaymentsExceed,
				fmt.Sprintf("payments %s exceed principal %s", paid.StringFixed(2), rec.Amount.StringFixed(2)))
		}
	}
	return out
}
