package integrity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Vivianhuwz/cobrancayb/internal/caldate"
	"github.com/Vivianhuwz/cobrancayb/internal/ledger"
	"github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

// Repair deterministically fixes what is safe to fix in place and
// returns the number of records touched. Safe means: synthesizing the
// missing payment history behind a legacy paid-amount cache, recomputing
// the cache from payments, and filling a missing due date. Principal
// amounts, statuses and existing payments are never changed here.
//
// Repair is idempotent: a second pass returns zero.
func Repair(records []*domain.Record, now time.Time) int {
	fixed := 0
	today := caldate.FromTime(now)

	for _, rec := range records {
		if rec == nil {
			continue
		}
		changed := false

		if rec.Payments == nil {
			rec.Payments = []domain.Payment{}
		}

		// Records written before payment-level tracking carry a paid
		// amount with no entries behind it; recover the history as one
		// synthesized transfer dated now.
		if len(rec.Payments) == 0 && rec.PaidAmount.IsPositive() {
			rec.Payments = append(rec.Payments, domain.Payment{
				RecordID: rec.ID,
				Token:    uuid.NewString(),
				Amount:   rec.PaidAmount,
				Date:     today,
				Method:   domain.MethodTransfer,
				Metadata: datatypes.JSONMap{domain.MetadataKeyAutoGenerated: true},
			})
			changed = true
		}

		if paid := ledger.PaidAmount(rec.Payments); !WithinTolerance(rec.PaidAmount, paid) {
			rec.PaidAmount = paid
			changed = true
		}

		if rec.DueDate.IsZero() && !rec.OrderDate.IsZero() {
			rec.DueDate = ledger.DueDate(rec.OrderDate, rec.CreditDays)
			changed = true
		}

		if changed {
			fixed++
		}
	}
	return fixed
}
