package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Vivianhuwz/cobrancayb/internal/caldate"
	"github.com/Vivianhuwz/cobrancayb/internal/clock"
	"github.com/Vivianhuwz/cobrancayb/internal/merge"
	remotedomain "github.com/Vivianhuwz/cobrancayb/internal/remote/domain"
	receivabledomain "github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

// svcStub implements the parts of the record service the scheduler uses.
type svcStub struct {
	receivabledomain.Service

	mu       sync.Mutex
	records  []*receivabledomain.Record
	restored [][]*receivabledomain.Record
	snapErr  error
}

func (s *svcStub) Snapshot(ctx context.Context) ([]*receivabledomain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records, s.snapErr
}

func (s *svcStub) Restore(ctx context.Context, records []*receivabledomain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restored = append(s.restored, records)
	s.records = records
	return nil
}

type transportStub struct {
	mu         sync.Mutex
	remote     []*receivabledomain.Record
	fetchErrs  []error
	replaceErr error
	replaced   [][]*receivabledomain.Record
	fetchCalls int
	block      chan struct{}
}

func (t *transportStub) FetchAll(ctx context.Context) ([]*receivabledomain.Record, error) {
	t.mu.Lock()
	t.fetchCalls++
	var err error
	if len(t.fetchErrs) > 0 {
		err = t.fetchErrs[0]
		t.fetchErrs = t.fetchErrs[1:]
	}
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return t.remote, nil
}

func (t *transportStub) ReplaceAll(ctx context.Context, records []*receivabledomain.Record) error {
	if t.block != nil {
		<-t.block
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.replaceErr != nil {
		return t.replaceErr
	}
	t.replaced = append(t.replaced, records)
	return nil
}

func record(customer, orderNumber string, amount int64) *receivabledomain.Record {
	return &receivabledomain.Record{
		CustomerName: customer,
		OrderNumber:  orderNumber,
		Amount:       decimal.NewFromInt(amount),
		CreditDays:   30,
		OrderDate:    caldate.MustParse("04/08/2025"),
		DueDate:      caldate.MustParse("03/09/2025"),
		Status:       receivabledomain.StatusPending,
		Payments:     []receivabledomain.Payment{},
	}
}

func newScheduler(t *testing.T, svc *svcStub, transport *transportStub, cfg Config) *Scheduler {
	t.Helper()
	s, err := New(Params{
		Log:       zap.NewNop(),
		Svc:       svc,
		Transport: transport,
		Merge:     merge.NewEngine(zap.NewNop()),
		Clock:     clock.NewFakeClock(time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)),
		Config:    cfg,
	})
	assert.NoError(t, err)
	s.sleep = func(context.Context, time.Duration) {} // no real delays in tests
	return s
}

func TestPushReportsCount(t *testing.T) {
	svc := &svcStub{records: []*receivabledomain.Record{
		record("Acme", "A-1", 100),
		record("Beta", "B-1", 200),
	}}
	transport := &transportStub{}
	s := newScheduler(t, svc, transport, Config{})

	count, err := s.Push(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, transport.replaced, 1)

	st := s.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, 2, st.LastCount)
	assert.Empty(t, st.LastError)
	assert.False(t, st.LastSyncAt.IsZero())
}

func TestSecondSyncRejectedWhileInFlight(t *testing.T) {
	svc := &svcStub{records: []*receivabledomain.Record{record("Acme", "A-1", 100)}}
	transport := &transportStub{block: make(chan struct{})}
	s := newScheduler(t, svc, transport, Config{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Push(context.Background())
	}()

	// Wait for the first push to take the syncing state.
	assert.Eventually(t, func() bool {
		return s.Status().State == StateSyncing
	}, time.Second, time.Millisecond)

	_, err := s.Push(context.Background())
	assert.ErrorIs(t, err, ErrSyncInFlight)
	_, err = s.Pull(context.Background())
	assert.ErrorIs(t, err, ErrSyncInFlight)

	close(transport.block)
	<-done
	assert.Equal(t, StateIdle, s.Status().State)
}

func TestPullMergesAndRestores(t *testing.T) {
	local := record("Acme", "A-1", 1000)
	local.Payments = []receivabledomain.Payment{{
		Amount: decimal.NewFromInt(100),
		Date:   caldate.MustParse("01/09/2025"),
		Method: receivabledomain.MethodTransfer,
	}}
	local.PaidAmount = decimal.NewFromInt(100)

	remote := record("Acme", "A-1", 1000)
	remote.Payments = []receivabledomain.Payment{{
		Amount: decimal.NewFromInt(50),
		Date:   caldate.MustParse("05/09/2025"),
		Method: receivabledomain.MethodCash,
	}}
	remote.PaidAmount = decimal.NewFromInt(50)

	svc := &svcStub{records: []*receivabledomain.Record{local}}
	transport := &transportStub{remote: []*receivabledomain.Record{remote}}
	s := newScheduler(t, svc, transport, Config{})

	report, err := s.Pull(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Matched)
	assert.Len(t, svc.restored, 1)

	merged := svc.restored[0][0]
	assert.Len(t, merged.Payments, 2)
	assert.True(t, merged.PaidAmount.Equal(decimal.NewFromInt(150)))
}

func TestPullTransientFailureRetriesThenFails(t *testing.T) {
	transient := &remotedomain.TransportError{Message: "connection reset"}
	svc := &svcStub{}
	transport := &transportStub{fetchErrs: []error{transient, transient, transient}}
	s := newScheduler(t, svc, transport, Config{RetryAttempts: 3})

	_, err := s.Pull(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 3, transport.fetchCalls)
	// Local store untouched on a failed pull.
	assert.Empty(t, svc.restored)

	st := s.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.True(t, st.Enabled)
	assert.NotEmpty(t, st.LastError)
}

func TestPullRecoversOnRetry(t *testing.T) {
	transient := &remotedomain.TransportError{Message: "timeout"}
	svc := &svcStub{}
	transport := &transportStub{
		remote:    []*receivabledomain.Record{record("Acme", "A-1", 100)},
		fetchErrs: []error{transient, transient},
	}
	s := newScheduler(t, svc, transport, Config{RetryAttempts: 3})

	report, err := s.Pull(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, report.AddedFromRemote)
	assert.Equal(t, 3, transport.fetchCalls)
}

func TestStructuralFailureDisablesSync(t *testing.T) {
	structural := &remotedomain.TransportError{Code: "PGRST205", Message: "could not find the table", Structural: true}
	svc := &svcStub{}
	transport := &transportStub{fetchErrs: []error{structural, structural, structural}}
	s := newScheduler(t, svc, transport, Config{RetryAttempts: 3})

	_, err := s.Pull(context.Background())
	assert.Error(t, err)
	// No retry on structural failures.
	assert.Equal(t, 1, transport.fetchCalls)

	st := s.Status()
	assert.False(t, st.Enabled)

	_, err = s.Push(context.Background())
	assert.ErrorIs(t, err, ErrSyncDisabled)

	s.Enable()
	assert.True(t, s.Status().Enabled)
	_, err = s.Push(context.Background())
	assert.NoError(t, err)
}

func TestAutoTickSkipsSilentlyWhenBusy(t *testing.T) {
	svc := &svcStub{records: []*receivabledomain.Record{record("Acme", "A-1", 100)}}
	transport := &transportStub{block: make(chan struct{})}
	s := newScheduler(t, svc, transport, Config{AutoSync: true})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Push(context.Background())
	}()
	assert.Eventually(t, func() bool {
		return s.Status().State == StateSyncing
	}, time.Second, time.Millisecond)

	// A tick during an in-flight sync must neither queue nor error.
	s.autoTick(context.Background())
	assert.Equal(t, StateSyncing, s.Status().State)

	close(transport.block)
	<-done
	assert.Len(t, transport.replaced, 1)
}

func TestAutoTickDisabled(t *testing.T) {
	svc := &svcStub{records: []*receivabledomain.Record{record("Acme", "A-1", 100)}}
	transport := &transportStub{}
	s := newScheduler(t, svc, transport, Config{AutoSync: false, Interval: time.Minute})

	s.autoTick(context.Background())
	assert.Empty(t, transport.replaced)
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSnapshotErrorSurfacesAsPushFailure(t *testing.T) {
	svc := &svcStub{snapErr: errors.New("db locked")}
	s := newScheduler(t, svc, &transportStub{}, Config{})

	_, err := s.Push(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateIdle, s.Status().State)
	assert.True(t, s.Status().Enabled)
}
