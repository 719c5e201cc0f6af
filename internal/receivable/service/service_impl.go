package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Vivianhuwz/cobrancayb/internal/caldate"
	"github.com/Vivianhuwz/cobrancayb/internal/clock"
	"github.com/Vivianhuwz/cobrancayb/internal/integrity"
	"github.com/Vivianhuwz/cobrancayb/internal/ledger"
	"github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

// Service is the single writer of the record set: every mutation runs a
// repair pass before persisting, and every read goes out repaired.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("receivable.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

// loadRepaired reads the full set, repairs it in memory, and writes the
// repaired snapshot back when anything changed.
func (s *Service) loadRepaired(ctx context.Context) ([]*domain.Record, []integrity.Violation, int, error) {
	records, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return nil, nil, 0, err
	}

	fixed := integrity.Repair(records, s.clock.Now())
	if fixed > 0 {
		s.log.Info("repaired records on load", zap.Int("fixed", fixed))
		s.assignIDs(records)
		if err := s.persistSnapshot(ctx, records); err != nil {
			return nil, nil, 0, err
		}
	}
	return records, integrity.Validate(records), fixed, nil
}

// assignIDs gives database identities to rows the repairer or the merge
// introduced without one.
func (s *Service) assignIDs(records []*domain.Record) {
	now := s.clock.Now().UTC()
	for _, rec := range records {
		if rec.ID == 0 {
			rec.ID = s.genID.Generate()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = now
		}
		for i := range rec.Payments {
			p := &rec.Payments[i]
			if p.ID == 0 {
				p.ID = s.genID.Generate()
			}
			p.RecordID = rec.ID
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
			}
		}
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRecordsRequest) (domain.ListRecordsResponse, error) {
	records, violations, fixed, err := s.loadRepaired(ctx)
	if err != nil {
		return domain.ListRecordsResponse{}, err
	}

	today := caldate.FromTime(s.clock.Now())
	views := make([]domain.RecordView, 0, len(records))
	for _, rec := range records {
		if !req.IncludeArchived && rec.Archived {
			continue
		}
		if req.Status != "" && rec.Status != req.Status {
			continue
		}
		if req.CustomerName != "" &&
			!strings.Contains(strings.ToLower(rec.CustomerName), strings.ToLower(req.CustomerName)) {
			continue
		}
		views = append(views, domain.RecordView{
			Record:        rec,
			DisplayStatus: string(ledger.DisplayStatusOf(rec, today)),
			Remaining:     ledger.Remaining(rec),
		})
	}

	resp := domain.ListRecordsResponse{Records: views, Repaired: fixed}
	for _, v := range violations {
		resp.Violations = append(resp.Violations, v.String())
	}
	return resp, nil
}

func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	records, _, _, err := s.loadRepaired(ctx)
	if err != nil {
		return domain.Summary{}, err
	}

	today := caldate.FromTime(s.clock.Now())
	sum := domain.Summary{
		TotalAmount:   decimal.Zero,
		PaidAmount:    decimal.Zero,
		PendingAmount: decimal.Zero,
	}
	for _, rec := range records {
		if rec.Archived {
			continue
		}
		sum.RecordCount++
		sum.TotalAmount = sum.TotalAmount.Add(rec.Amount)
		sum.PaidAmount = sum.PaidAmount.Add(rec.PaidAmount)
		sum.PendingAmount = sum.PendingAmount.Add(ledger.Remaining(rec))
		if ledger.DisplayStatusOf(rec, today) == ledger.DisplayOverdue {
			sum.OverdueCount++
		}
	}
	return sum, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRecordRequest) (*domain.Record, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, domain.ErrInvalidCustomer
	}
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	creditDays := req.CreditDays
	if creditDays < 1 {
		return nil, domain.ErrInvalidCreditDays
	}

	// Settle any legacy rows before the set changes.
	if _, _, _, err := s.loadRepaired(ctx); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.StatusPending
	}

	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = caldate.FromTime(s.clock.Now())
	}

	now := s.clock.Now().UTC()
	record := &domain.Record{
		ID:            s.genID.Generate(),
		OrderNumber:   strings.TrimSpace(req.OrderNumber),
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		CustomerName:  name,
		Amount:        req.Amount,
		CreditDays:    creditDays,
		OrderDate:     orderDate,
		DueDate:       ledger.DueDate(orderDate, creditDays),
		Status:        status,
		Notes:         req.Notes,
		PaidAmount:    decimal.Zero,
		Payments:      []domain.Payment{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Update edits scalar fields on an existing record. The due date is
// recomputed from the new terms; a principal now fully covered by the
// existing payments promotes the status, never the reverse.
func (s *Service) Update(ctx context.Context, req domain.UpdateRecordRequest) (*domain.Record, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, domain.ErrInvalidCustomer
	}
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if req.CreditDays < 1 {
		return nil, domain.ErrInvalidCreditDays
	}

	record, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return nil, err
	}

	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = record.OrderDate
	}

	record.OrderNumber = strings.TrimSpace(req.OrderNumber)
	record.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
	record.CustomerName = name
	record.Amount = req.Amount
	record.CreditDays = req.CreditDays
	record.OrderDate = orderDate
	record.DueDate = ledger.DueDate(orderDate, req.CreditDays)
	record.Notes = req.Notes
	if record.Status != domain.StatusPaid &&
		record.PaidAmount.GreaterThanOrEqual(record.Amount) {
		record.Status = domain.StatusPaid
	}
	record.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) AddPayment(ctx context.Context, req domain.AddPaymentRequest) (*domain.Record, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidPayment
	}

	record, err := s.repo.FindByID(ctx, s.db, req.RecordID)
	if err != nil {
		return nil, err
	}
	if record.Status == domain.StatusPaid {
		return nil, domain.ErrRecordPaid
	}

	// Repair may synthesize the history behind a legacy paid amount;
	// anything it adds must land in the store with the new payment, or
	// the next load would recompute the cache without it.
	pre := len(record.Payments)
	integrity.Repair([]*domain.Record{record}, s.clock.Now())

	remaining := ledger.Remaining(record)
	if req.Amount.Sub(remaining).GreaterThan(integrity.Tolerance) {
		return nil, domain.ErrInvalidPayment
	}

	method := req.Method
	if method == "" {
		method = domain.MethodTransfer
	}
	date := req.Date
	if date.IsZero() {
		date = caldate.FromTime(s.clock.Now())
	}

	payment := domain.Payment{
		ID:        s.genID.Generate(),
		RecordID:  record.ID,
		Token:     uuid.NewString(),
		Amount:    req.Amount,
		Date:      date,
		Method:    method,
		Remark:    req.Remark,
		CreatedAt: s.clock.Now().UTC(),
	}

	record.Payments = append(record.Payments, payment)
	record.PaidAmount = ledger.PaidAmount(record.Payments)
	// Full coverage promotes the stored status; nothing ever demotes it.
	if record.PaidAmount.GreaterThanOrEqual(record.Amount) {
		record.Status = domain.StatusPaid
	}
	record.UpdatedAt = s.clock.Now().UTC()
	s.assignIDs([]*domain.Record{record})

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := pre; i < len(record.Payments); i++ {
			if err := s.repo.InsertPayment(ctx, tx, &record.Payments[i]); err != nil {
				return err
			}
		}
		return tx.Model(&domain.Record{}).
			Where("id = ?", record.ID).
			Updates(map[string]any{
				"paid_amount": record.PaidAmount,
				"status":      record.Status,
				"updated_at":  record.UpdatedAt,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) SetArchived(ctx context.Context, id snowflake.ID, archived bool) error {
	if _, _, _, err := s.loadRepaired(ctx); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, s.db, id, archived)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, _, _, err := s.loadRepaired(ctx); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, id)
}

// Snapshot returns the full repaired set for the sync scheduler.
func (s *Service) Snapshot(ctx context.Context) ([]*domain.Record, error) {
	records, _, _, err := s.loadRepaired(ctx)
	return records, err
}

// Restore atomically replaces the local set with a merged snapshot.
// Records arriving from the remote without IDs get fresh ones here.
func (s *Service) Restore(ctx context.Context, records []*domain.Record) error {
	s.assignIDs(records)
	return s.persistSnapshot(ctx, records)
}

func (s *Service) persistSnapshot(ctx context.Context, records []*domain.Record) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.ReplaceAll(ctx, tx, records)
	})
}
