package merge

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Vivianhuwz/cobrancayb/internal/caldate"
	"github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

var node, _ = snowflake.NewNode(1)

func rec(customer, orderNumber string, amount int64, opts func(*domain.Record)) *domain.Record {
	r := &domain.Record{
		ID:           node.Generate(),
		CustomerName: customer,
		OrderNumber:  orderNumber,
		Amount:       decimal.NewFromInt(amount),
		CreditDays:   30,
		OrderDate:    caldate.MustParse("04/08/2025"),
		DueDate:      caldate.MustParse("03/09/2025"),
		Status:       domain.StatusPending,
		UpdatedAt:    time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC),
	}
	if opts != nil {
		opts(r)
	}
	return r
}

func pay(date string, amount float64, method domain.PaymentMethod, remark string) domain.Payment {
	return domain.Payment{
		ID:     node.Generate(),
		Amount: decimal.NewFromFloat(amount),
		Date:   caldate.MustParse(date),
		Method: method,
		Remark: remark,
	}
}

func engine() *Engine { return NewEngine(zap.NewNop()) }

func TestMergeDisjointSetsKeepsEverything(t *testing.T) {
	local := []*domain.Record{
		rec("Acme", "A-1", 100, nil),
		rec("Beta", "B-1", 200, func(r *domain.Record) {
			r.Payments = []domain.Payment{pay("01/09/2025", 50, domain.MethodCash, "")}
			r.PaidAmount = decimal.NewFromInt(50)
		}),
	}
	remote := []*domain.Record{
		rec("Gamma", "G-1", 300, nil),
	}

	res := engine().Merge(local, remote)
	assert.Len(t, res.Records, 3)
	assert.Equal(t, 2, res.Report.LocalOnly)
	assert.Equal(t, 1, res.Report.AddedFromRemote)
	assert.Equal(t, 0, res.Report.Matched)

	// No payment loss.
	total := 0
	for _, r := range res.Records {
		total += len(r.Payments)
	}
	assert.Equal(t, 1, total)
}

func TestMergePaymentUnion(t *testing.T) {
	local := []*domain.Record{
		rec("Acme", "A-1", 1000, func(r *domain.Record) {
			r.Payments = []domain.Payment{pay("01/09/2025", 100, domain.MethodTransfer, "")}
			r.PaidAmount = decimal.NewFromInt(100)
		}),
	}
	remote := []*domain.Record{
		rec("Acme", "A-1", 1000, func(r *domain.Record) {
			r.Payments = []domain.Payment{pay("05/09/2025", 50, domain.MethodCash, "")}
			r.PaidAmount = decimal.NewFromInt(50)
		}),
	}

	res := engine().Merge(local, remote)
	assert.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Report.Matched)

	merged := res.Records[0]
	assert.Len(t, merged.Payments, 2)
	assert.True(t, merged.PaidAmount.Equal(decimal.NewFromInt(150)))
}

func TestMergeDeduplicatesIdenticalPayments(t *testing.T) {
	p := pay("01/09/2025", 100, domain.MethodTransfer, "sinal")
	local := []*domain.Record{
		rec("Acme", "A-1", 1000, func(r *domain.Record) {
			r.Payments = []domain.Payment{p}
			r.PaidAmount = p.Amount
		}),
	}
	// Same economic payment under a different row ID on the remote.
	q := pay("01/09/2025", 100, domain.MethodTransfer, "sinal")
	remote := []*domain.Record{
		rec("Acme", "A-1", 1000, func(r *domain.Record) {
			r.Payments = []domain.Payment{q}
			r.PaidAmount = q.Amount
		}),
	}

	res := engine().Merge(local, remote)
	merged := res.Records[0]
	assert.Len(t, merged.Payments, 1)
	assert.True(t, merged.PaidAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, res.Report.PaymentsDeduped)
}

func TestMergeScalarFieldsFollowNewerEdit(t *testing.T) {
	older := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	local := []*domain.Record{
		rec("Acme", "A-1", 1000, func(r *domain.Record) {
			r.Notes = "local note"
			r.UpdatedAt = newer
		}),
	}
	remote := []*domain.Record{
		rec("Acme", "A-1", 1000, func(r *domain.Record) {
			r.Notes = "remote note"
			r.UpdatedAt = older
		}),
	}

	res := engine().Merge(local, remote)
	assert.Equal(t, "local note", res.Records[0].Notes)

	// Equal timestamps default to the remote copy.
	local[0].UpdatedAt = older
	res = engine().Merge(local, remote)
	assert.Equal(t, "remote note", res.Records[0].Notes)
}

func TestMergeNeverDemotesPaid(t *testing.T) {
	older := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

	local := []*domain.Record{
		rec("Acme", "A-1", 1000, func(r *domain.Record) {
			r.Status = domain.StatusPaid
			r.UpdatedAt = older
		}),
	}
	remote := []*domain.Record{
		rec("Acme", "A-1", 1000, func(r *domain.Record) {
			r.Status = domain.StatusPending
			r.UpdatedAt = older.Add(time.Hour) // remote is newer but unpaid
		}),
	}

	res := engine().Merge(local, remote)
	assert.Equal(t, domain.StatusPaid, res.Records[0].Status)
}

func TestMergeReportsWithinSideDuplicates(t *testing.T) {
	first := rec("Acme", "A-1", 1000, nil)
	second := rec("Acme", "A-1", 1000, func(r *domain.Record) { r.Notes = "duplicate" })

	res := engine().Merge([]*domain.Record{first, second}, nil)
	assert.Len(t, res.Records, 1)
	assert.Equal(t, "", res.Records[0].Notes) // first occurrence kept

	assert.Len(t, res.Report.DuplicateKeys, 1)
	dup := res.Report.DuplicateKeys[0]
	assert.Equal(t, "local", dup.Side)
	assert.Equal(t, first.ID.String(), dup.KeptID)
	assert.Equal(t, second.ID.String(), dup.DropID)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	local := []*domain.Record{
		rec("Acme", "A-1", 1000, func(r *domain.Record) {
			r.Payments = []domain.Payment{pay("01/09/2025", 100, domain.MethodTransfer, "")}
			r.PaidAmount = decimal.NewFromInt(100)
		}),
	}
	remote := []*domain.Record{
		rec("Acme", "A-1", 1000, func(r *domain.Record) {
			r.Payments = []domain.Payment{pay("05/09/2025", 50, domain.MethodCash, "")}
			r.PaidAmount = decimal.NewFromInt(50)
		}),
	}

	engine().Merge(local, remote)
	assert.Len(t, local[0].Payments, 1)
	assert.Len(t, remote[0].Payments, 1)
	assert.True(t, local[0].PaidAmount.Equal(decimal.NewFromInt(100)))
}
