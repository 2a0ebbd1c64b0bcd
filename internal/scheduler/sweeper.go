package scheduler

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/repo"
)

// CheckRunner is the slice of the engine the sweeper drives.
type CheckRunner interface {
	RunCheck(ctx context.Context, id domain.MonitorID) (*domain.CheckResult, error)
}

// Sweeper periodically runs a check for every active monitor. Monitors
// are checked concurrently up to Concurrency; one monitor's slow probe
// set never delays another monitor's check. Within one monitor, each
// sweep waits for the previous pass to finish, so scheduled invocation
// start times are serialized per monitor.
type Sweeper struct {
	Logger      *zap.Logger
	Monitors    repo.MonitorStore
	Runner      CheckRunner
	Interval    time.Duration
	Jitter      time.Duration
	Concurrency int
}

func NewSweeper(
	logger *zap.Logger,
	ms repo.MonitorStore,
	runner CheckRunner,
	interval time.Duration,
	jitter time.Duration,
	concurrency int,
) *Sweeper {
	if concurrency < 1 {
		concurrency = 1
	}
	if interval < 0 {
		interval = 0
	}
	return &Sweeper{
		Logger:      logger,
		Monitors:    ms,
		Runner:      runner,
		Interval:    interval,
		Jitter:      jitter,
		Concurrency: concurrency,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if s.Interval == 0 {
		// disabled
		s.Logger.Info("sweeper_disabled")
		return
	}
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	s.sweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("sweeper_stopped")
			return
		case <-t.C:
			if s.Jitter > 0 {
				select {
				case <-ctx.Done():
					s.Logger.Info("sweeper_stopped")
					return
				case <-time.After(time.Duration(rand.Int63n(int64(s.Jitter)))):
				}
			}
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	monitors, err := s.Monitors.ListActive(ctx)
	if err != nil {
		s.Logger.Warn("sweeper_list_error", zap.Error(err))
		return
	}
	if len(monitors) == 0 {
		return
	}

	sem := make(chan struct{}, s.Concurrency)
	var wg sync.WaitGroup

	for _, mon := range monitors {
		m := mon
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()

			cr, err := s.Runner.RunCheck(ctx, m.ID)
			if err != nil {
				s.Logger.Warn("sweeper_check_error",
					zap.String("monitor_id", string(m.ID)),
					zap.String("url", m.URL),
					zap.Error(err),
				)
				return
			}
			s.Logger.Debug("sweeper_checked",
				zap.String("monitor_id", string(m.ID)),
				zap.String("url", m.URL),
				zap.String("verdict", string(cr.OverallStatus)),
			)
		}()
	}

	wg.Wait()
}
