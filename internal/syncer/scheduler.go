// Package syncer drives periodic and on-demand synchronization of the
// local record set against the remote transport.
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Vivianhuwz/cobrancayb/internal/clock"
	"github.com/Vivianhuwz/cobrancayb/internal/integrity"
	"github.com/Vivianhuwz/cobrancayb/internal/merge"
	obsmetrics "github.com/Vivianhuwz/cobrancayb/internal/observability/metrics"
	remotedomain "github.com/Vivianhuwz/cobrancayb/internal/remote/domain"
	receivabledomain "github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

// State is the scheduler's coarse lifecycle. idle/syncing act as a
// non-reentrant lock: no two syncs ever run concurrently.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
)

var (
	// ErrSyncInFlight reports a sync request while one is running. It
	// is a rejection, not a failure: the caller retries later.
	ErrSyncInFlight = errors.New("sync_already_in_progress")
	// ErrSyncDisabled reports that a structural remote failure turned
	// syncing off until the operator re-enables it.
	ErrSyncDisabled = errors.New("sync_disabled")

	ErrInvalidConfig = errors.New("syncer: invalid configuration")
)

// Status is a point-in-time snapshot for the UI's sync indicator.
type Status struct {
	State      State     `json:"state"`
	Enabled    bool      `json:"enabled"`
	AutoSync   bool      `json:"auto_sync"`
	LastSyncAt time.Time `json:"last_sync_at,omitzero"`
	LastError  string    `json:"last_error,omitempty"`
	LastCount  int       `json:"last_count"`
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Svc       receivabledomain.Service
	Transport remotedomain.Transport
	Merge     *merge.Engine
	Clock     clock.Clock
	Config    Config `optional:"true"`
}

type Scheduler struct {
	log       *zap.Logger
	cfg       Config
	svc       receivabledomain.Service
	transport remotedomain.Transport
	merge     *merge.Engine
	clock     clock.Clock

	// sleep is swapped out by tests to avoid real retry delays.
	sleep func(ctx context.Context, d time.Duration)

	mu         sync.Mutex
	state      State
	enabled    bool
	lastSyncAt time.Time
	lastError  string
	lastCount  int
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Svc == nil || p.Transport == nil || p.Merge == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:       p.Log.Named("syncer").With(zap.String("component", "syncer")),
		cfg:       p.Config.withDefaults(),
		svc:       p.Svc,
		transport: p.Transport,
		merge:     p.Merge,
		clock:     p.Clock,
		sleep:     sleepCtx,
		state:     StateIdle,
		enabled:   true,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// begin transitions idle->syncing or rejects the request.
func (s *Scheduler) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return ErrSyncDisabled
	}
	if s.state == StateSyncing {
		return ErrSyncInFlight
	}
	s.state = StateSyncing
	return nil
}

// finish records the terminal outcome and returns to idle. Structural
// transport failures disable further syncs until Enable is called.
func (s *Scheduler) finish(count int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	if err == nil {
		s.lastSyncAt = s.clock.Now()
		s.lastError = ""
		s.lastCount = count
		return
	}
	s.lastError = err.Error()
	if remotedomain.IsStructural(err) {
		s.enabled = false
		s.log.Error("structural remote failure, sync disabled until operator intervenes", zap.Error(err))
	}
}

// Status returns the current sync indicator snapshot.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:      s.state,
		Enabled:    s.enabled,
		AutoSync:   s.cfg.AutoSync,
		LastSyncAt: s.lastSyncAt,
		LastError:  s.lastError,
		LastCount:  s.lastCount,
	}
}

// Enable re-arms the scheduler after a structural failure.
func (s *Scheduler) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
	s.lastError = ""
}

// withRetry runs fn up to the configured attempt count with a fixed
// delay between attempts. Structural failures surface immediately.
func (s *Scheduler) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= s.cfg.RetryAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if remotedomain.IsStructural(err) {
			return err
		}
		if attempt < s.cfg.RetryAttempts {
			s.log.Warn("transient transport failure, retrying",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Duration("delay", s.cfg.RetryDelay),
				zap.Error(err),
			)
			s.sleep(ctx, s.cfg.RetryDelay)
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

// Push replaces the remote set with the local snapshot (delete-then-
// insert replication) and returns the number of records synced.
func (s *Scheduler) Push(ctx context.Context) (int, error) {
	if err := s.begin(); err != nil {
		return 0, err
	}
	start := s.clock.Now()
	m := obsmetrics.Sync()

	count, err := s.push(ctx)
	m.ObserveDuration("push", time.Since(start))
	m.IncRun("push", outcome(err))
	s.finish(count, err)
	if err != nil {
		return 0, err
	}
	s.log.Info("pushed records to remote", zap.Int("count", count))
	return count, nil
}

func (s *Scheduler) push(ctx context.Context) (int, error) {
	records, err := s.svc.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	err = s.withRetry(ctx, "replace_all", func(ctx context.Context) error {
		return s.transport.ReplaceAll(ctx, records)
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Pull fetches the remote set, merges it with the local one, repairs
// the result and atomically replaces the local store. A failed fetch
// leaves the local set untouched.
func (s *Scheduler) Pull(ctx context.Context) (merge.Report, error) {
	if err := s.begin(); err != nil {
		return merge.Report{}, err
	}
	start := s.clock.Now()
	m := obsmetrics.Sync()

	report, count, err := s.pull(ctx)
	m.ObserveDuration("pull", time.Since(start))
	m.IncRun("pull", outcome(err))
	s.finish(count, err)
	if err != nil {
		return merge.Report{}, err
	}
	s.log.Info("pulled and merged remote records",
		zap.Int("matched", report.Matched),
		zap.Int("added_from_remote", report.AddedFromRemote),
		zap.Int("payments_deduped", report.PaymentsDeduped),
		zap.Int("duplicate_keys", len(report.DuplicateKeys)),
	)
	return report, nil
}

func (s *Scheduler) pull(ctx context.Context) (merge.Report, int, error) {
	var remote []*receivabledomain.Record
	err := s.withRetry(ctx, "fetch_all", func(ctx context.Context) error {
		var ferr error
		remote, ferr = s.transport.FetchAll(ctx)
		return ferr
	})
	if err != nil {
		return merge.Report{}, 0, err
	}

	local, err := s.svc.Snapshot(ctx)
	if err != nil {
		return merge.Report{}, 0, err
	}

	result := s.merge.Merge(local, remote)
	m := obsmetrics.Sync()
	m.AddDeduped(result.Report.PaymentsDeduped)

	fixed := integrity.Repair(result.Records, s.clock.Now())
	m.AddRepairs(fixed)

	if err := s.svc.Restore(ctx, result.Records); err != nil {
		return merge.Report{}, 0, err
	}
	return result.Report, len(result.Records), nil
}

// autoTick runs one auto-sync beat: push when idle and enabled, skip
// silently otherwise (no queueing).
func (s *Scheduler) autoTick(ctx context.Context) {
	if !s.cfg.AutoSync {
		return
	}
	_, err := s.Push(ctx)
	if err != nil && !errors.Is(err, ErrSyncInFlight) && !errors.Is(err, ErrSyncDisabled) {
		s.log.Warn("auto-sync failed", zap.Error(err))
	}
}

// RunForever drives auto-sync on a fixed interval until ctx ends.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.autoTick(ctx)
		}
	}
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return "failure"
}
