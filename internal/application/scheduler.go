package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/ports"
	"github.com/bnema/fireteam-cli/internal/slogx"
	"github.com/google/uuid"
)

const DefaultRefreshInterval = 90 * time.Second

var errSuperseded = errors.New("aggregation pass superseded by a newer one")

type PassFunc func(ctx context.Context) (domain.Snapshot, error)

type SchedulerState int

const (
	// StateLoading means no pass has succeeded yet.
	StateLoading SchedulerState = iota
	// StateRefreshing means a pass is in flight while older data is shown.
	StateRefreshing
	StateIdle
)

func (s SchedulerState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRefreshing:
		return "refreshing"
	default:
		return "idle"
	}
}

// Scheduler owns the refresh timer for one session. Each trigger starts a pass;
// a pass publishes only if it is newer than the published snapshot and its
// context is still live, so a slow pass never overwrites a faster newer one.
type Scheduler struct {
	pass     PassFunc
	interval time.Duration
	clock    ports.Clock

	trigger    chan struct{}
	latest     atomic.Pointer[domain.Snapshot]
	generation atomic.Uint64
	inFlight   atomic.Int32

	mu      sync.Mutex
	lastErr error
	subs    []chan *domain.Snapshot
}

func NewScheduler(pass PassFunc, interval time.Duration, clock ports.Clock) *Scheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Scheduler{
		pass:     pass,
		interval: interval,
		clock:    clock,
		trigger:  make(chan struct{}, 1),
	}
}

// Run executes a pass immediately and then on every tick or Trigger until ctx
// ends. In-flight passes are awaited and discarded before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	start := func() {
		gen := s.generation.Add(1)
		s.inFlight.Add(1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.inFlight.Add(-1)
			_, _ = s.execute(ctx, gen)
		}()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	start()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start()
		case <-s.trigger:
			start()
		}
	}
}

// RunOnce executes one pass synchronously and returns its snapshot.
func (s *Scheduler) RunOnce(ctx context.Context) (*domain.Snapshot, error) {
	gen := s.generation.Add(1)
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	return s.execute(ctx, gen)
}

// Trigger requests an immediate pass, for manual retry. Extra triggers while
// one is pending are dropped.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Latest() *domain.Snapshot {
	return s.latest.Load()
}

func (s *Scheduler) State() SchedulerState {
	if s.latest.Load() == nil {
		return StateLoading
	}
	if s.inFlight.Load() > 0 {
		return StateRefreshing
	}
	return StateIdle
}

func (s *Scheduler) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Subscribe returns a channel receiving every published snapshot. Slow readers
// only see the most recent one.
func (s *Scheduler) Subscribe() <-chan *domain.Snapshot {
	ch := make(chan *domain.Snapshot, 1)

	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()

	return ch
}

func (s *Scheduler) execute(ctx context.Context, gen uint64) (*domain.Snapshot, error) {
	passID := uuid.NewString()
	ctx = slogx.With(ctx, "pass_id", passID, "generation", gen)
	logger := slogx.FromContext(ctx)
	started := time.Now()

	snapshot, err := s.pass(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		aggregationPasses.WithLabelValues("cancelled").Inc()
		logger.Debug("discarding pass for cancelled context")
		return nil, ctxErr
	}
	if err != nil {
		aggregationPasses.WithLabelValues("failed").Inc()
		logger.Warn("aggregation pass failed", "error", err)
		if current := s.latest.Load(); current == nil || current.Generation < gen {
			s.setLastError(err)
		}
		return nil, err
	}

	snapshot.PassID = passID
	snapshot.Generation = gen
	snapshot.CompletedAt = s.clock.Now()

	if !s.publish(&snapshot) {
		aggregationPasses.WithLabelValues("superseded").Inc()
		logger.Debug("discarding superseded pass")
		return &snapshot, errSuperseded
	}

	aggregationPasses.WithLabelValues("ok").Inc()
	aggregationPassDuration.Observe(time.Since(started).Seconds())
	s.setLastError(nil)
	return &snapshot, nil
}

// IsSuperseded reports whether a pass completed but lost to a newer one.
func IsSuperseded(err error) bool {
	return errors.Is(err, errSuperseded)
}

// publish stores snapshot and fans it out under mu, so subscribers observe
// generations in increasing order.
func (s *Scheduler) publish(snapshot *domain.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current := s.latest.Load(); current != nil && current.Generation >= snapshot.Generation {
		return false
	}
	s.latest.Store(snapshot)

	for _, ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
			// The buffered snapshot is older; replace it.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
	return true
}

func (s *Scheduler) setLastError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}
