package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	"github.com/Vivianhuwz/cobrancayb/internal/caldate"
)

var (
	ErrInvalidCustomer   = errors.New("invalid_customer_name")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidCreditDays = errors.New("invalid_credit_days")
	ErrInvalidPayment    = errors.New("invalid_payment")
	ErrRecordPaid        = errors.New("record_already_paid")
	ErrNotFound          = errors.New("not_found")
)

type CreateRecordRequest struct {
	OrderNumber   string
	InvoiceNumber string
	CustomerName  string
	Amount        decimal.Decimal
	CreditDays    int
	OrderDate     caldate.Date
	Status        Status
	Notes         string
}

// UpdateRecordRequest edits the scalar fields of an existing record.
// Payment history is append-only and never travels through here.
type UpdateRecordRequest struct {
	ID            snowflake.ID
	OrderNumber   string
	InvoiceNumber string
	CustomerName  string
	Amount        decimal.Decimal
	CreditDays    int
	OrderDate     caldate.Date
	Notes         string
}

type AddPaymentRequest struct {
	RecordID snowflake.ID
	Amount   decimal.Decimal
	Date     caldate.Date
	Method   PaymentMethod
	Remark   string
}

type ListRecordsRequest struct {
	CustomerName    string
	Status          Status
	IncludeArchived bool
}

// RecordView pairs a record with the calculator's derived fields so the
// UI never re-derives them.
type RecordView struct {
	Record        *Record         `json:"record"`
	DisplayStatus string          `json:"display_status"`
	Remaining     decimal.Decimal `json:"remaining"`
}

type ListRecordsResponse struct {
	Records    []RecordView `json:"records"`
	Violations []string     `json:"violations,omitempty"`
	Repaired   int          `json:"repaired,omitempty"`
}

// Summary aggregates the set for the dashboard header.
type Summary struct {
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	OverdueCount  int             `json:"overdue_count"`
	RecordCount   int             `json:"record_count"`
}

// Service is the single writer of the record set. Every mutation funnels
// a repair pass before persisting; readers receive invariant-holding data.
type Service interface {
	List(ctx context.Context, req ListRecordsRequest) (ListRecordsResponse, error)
	Summary(ctx context.Context) (Summary, error)
	Create(ctx context.Context, req CreateRecordRequest) (*Record, error)
	Update(ctx context.Context, req UpdateRecordRequest) (*Record, error)
	AddPayment(ctx context.Context, req AddPaymentRequest) (*Record, error)
	SetArchived(ctx context.Context, id snowflake.ID, archived bool) error
	Delete(ctx context.Context, id snowflake.ID) error

	// Snapshot returns the full repaired set; Restore atomically replaces
	// it. Both exist for the sync scheduler and the importer.
	Snapshot(ctx context.Context) ([]*Record, error)
	Restore(ctx context.Context, records []*Record) error
}
