// Package domain contains the receivable record model and its invariants.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/Vivianhuwz/cobrancayb/internal/caldate"
)

// Status represents stored record lifecycle states. Overdue and due-soon
// are display-only labels derived by the ledger calculator, never stored.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusArchived Status = "archived"
)

// PaymentMethod enumerates how a payment was received.
type PaymentMethod string

const (
	MethodTransfer PaymentMethod = "transfer"
	MethodCash     PaymentMethod = "cash"
	MethodAlipay   PaymentMethod = "alipay"
	MethodWechat   PaymentMethod = "wechat"
	MethodPix      PaymentMethod = "pix"
	MethodOther    PaymentMethod = "other"
)

// MetadataKeyAutoGenerated marks payments synthesized by the repairer for
// records whose paid amount predates payment-level tracking.
const MetadataKeyAutoGenerated = "auto_generated"

// Record is one receivable: an amount a customer owes, with credit terms
// and an append-only payment history. PaidAmount is a derived cache and
// must always equal the sum of the payment amounts; the integrity
// repairer enforces that on every load.
type Record struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrderNumber   string          `gorm:"index" json:"order_number,omitempty"`
	InvoiceNumber string          `gorm:"index" json:"invoice_number,omitempty"`
	CustomerName  string          `gorm:"not null;index" json:"customer_name"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	CreditDays    int             `gorm:"not null;default:30" json:"credit_days"`
	OrderDate     caldate.Date    `gorm:"type:text" json:"order_date"`
	DueDate       caldate.Date    `gorm:"type:text" json:"due_date"`
	Status        Status          `gorm:"type:text;not null;default:'pending'" json:"status"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"paid_amount"`
	Payments      []Payment       `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"payments"`
	Archived      bool            `gorm:"not null;default:false" json:"archived"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "records" }

// Payment is one recorded cash inflow against a record's principal.
// Payments are append-only: corrections happen by adding entries, never
// by mutating or deleting history. Token identifies the economic event
// at its source and may differ between local and remote copies of the
// same payment; cross-source dedup uses the identity matcher instead.
type Payment struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	RecordID  snowflake.ID      `gorm:"not null;index" json:"record_id"`
	Token     string            `gorm:"type:text" json:"token,omitempty"`
	Amount    decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date      caldate.Date      `gorm:"type:text" json:"date"`
	Method    PaymentMethod     `gorm:"type:text;not null;default:'transfer'" json:"method"`
	Remark    string            `gorm:"type:text" json:"remark,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// AutoGenerated reports whether the payment was synthesized by the
// repairer rather than entered by an operator.
func (p Payment) AutoGenerated() bool {
	v, ok := p.Metadata[MetadataKeyAutoGenerated]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Clone returns a deep copy so merge passes can build a new set without
// aliasing the caller's records.
func (r *Record) Clone() *Record {
	out := *r
	out.Payments = make([]Payment, len(r.Payments))
	copy(out.Payments, r.Payments)
	return &out
}
