package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Vivianhuwz/cobrancayb/internal/caldate"
	"github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

func TestDueDateSkipsWeekend(t *testing.T) {
	// 2025-08-01 is a Friday; one credit day lands on Saturday and must
	// advance to Monday 2025-08-04.
	due := DueDate(caldate.MustParse("01/08/2025"), 1)
	assert.Equal(t, caldate.MustParse("04/08/2025"), due)
	assert.Equal(t, time.Monday, due.Weekday())

	// Two credit days land on Sunday, same Monday result.
	assert.Equal(t, caldate.MustParse("04/08/2025"), DueDate(caldate.MustParse("01/08/2025"), 2))
}

func TestDueDateNeverWeekend(t *testing.T) {
	start := caldate.MustParse("01/08/2025")
	for days := 1; days <= 45; days++ {
		due := DueDate(start, days)
		assert.False(t, due.IsWeekend(), "creditDays=%d landed on %s", days, due.Weekday())
	}
}

func TestDueDateWeekdayUnadjusted(t *testing.T) {
	// 2025-08-04 is a Monday; 30 days later is Wednesday 2025-09-03.
	due := DueDate(caldate.MustParse("04/08/2025"), 30)
	assert.Equal(t, caldate.MustParse("03/09/2025"), due)
}

func TestDueDateDefensiveInputs(t *testing.T) {
	assert.True(t, DueDate(caldate.Date{}, 30).IsZero())
	// Non-positive credit terms coerce to one day.
	assert.Equal(t, DueDate(caldate.MustParse("04/08/2025"), 1), DueDate(caldate.MustParse("04/08/2025"), 0))
}

func TestPaidAmountIgnoresMalformedEntries(t *testing.T) {
	payments := []domain.Payment{
		{Amount: decimal.NewFromInt(100)},
		{Amount: decimal.Zero},
		{Amount: decimal.NewFromInt(-5)},
		{Amount: decimal.NewFromFloat(49.5)},
	}
	assert.True(t, PaidAmount(payments).Equal(decimal.NewFromFloat(149.5)))
	assert.True(t, PaidAmount(nil).IsZero())
}

func TestRemainingFlooredAtZero(t *testing.T) {
	rec := &domain.Record{
		Amount: decimal.NewFromInt(100),
		Payments: []domain.Payment{
			{Amount: decimal.NewFromInt(150)},
		},
	}
	assert.True(t, Remaining(rec).IsZero())

	rec.Payments[0].Amount = decimal.NewFromInt(40)
	assert.True(t, Remaining(rec).Equal(decimal.NewFromInt(60)))
}

func TestDisplayStatus(t *testing.T) {
	asOf := caldate.MustParse("01/09/2025")
	base := domain.Record{
		Amount:     decimal.NewFromInt(1000),
		Status:     domain.StatusPending,
		PaidAmount: decimal.Zero,
	}

	t.Run("stored paid wins", func(t *testing.T) {
		rec := base
		rec.Status = domain.StatusPaid
		assert.Equal(t, DisplayPaid, DisplayStatusOf(&rec, asOf))
	})

	t.Run("overdue", func(t *testing.T) {
		rec := base
		rec.DueDate = caldate.MustParse("29/08/2025")
		assert.Equal(t, DisplayOverdue, DisplayStatusOf(&rec, asOf))
	})

	t.Run("due soon within three days", func(t *testing.T) {
		rec := base
		rec.DueDate = caldate.MustParse("04/09/2025")
		assert.Equal(t, DisplayDueSoon, DisplayStatusOf(&rec, asOf))
	})

	t.Run("pending beyond window", func(t *testing.T) {
		rec := base
		rec.DueDate = caldate.MustParse("05/09/2025")
		assert.Equal(t, DisplayPending, DisplayStatusOf(&rec, asOf))
	})

	t.Run("fully covered displays paid without mutation", func(t *testing.T) {
		// Principal 1000, one payment of 1000: remaining is zero and the
		// label is paid even though the stored status stays pending.
		rec := base
		rec.DueDate = caldate.MustParse("03/09/2025")
		rec.Payments = []domain.Payment{{Amount: decimal.NewFromInt(1000)}}
		assert.Equal(t, DisplayPaid, DisplayStatusOf(&rec, asOf))
		assert.Equal(t, domain.StatusPending, rec.Status)
		assert.True(t, Remaining(&rec).IsZero())
	})
}
