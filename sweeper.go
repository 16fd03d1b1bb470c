package goOTP

import (
	"context"
	"strconv"
	"sync"
	"time"
)

const defaultSweepInterval = 60 * time.Second

// sweeper evicts expired records from stores that do not self-expire.
type sweeper struct {
	engine   *Engine
	interval time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newSweeper(e *Engine, interval time.Duration) *sweeper {
	s := &sweeper{
		engine:   e,
		interval: interval,
		done:     make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *sweeper) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			_, _ = s.engine.SweepNow(context.Background())
		}
	}
}

func (s *sweeper) stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

// StartSweeper describes the startsweeper operation and its observable behavior.
//
// StartSweeper may return an error when input validation, dependency calls, or security checks fail.
// StartSweeper does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) StartSweeper() error {
	if err := e.ready(); err != nil {
		return err
	}

	e.sweepMu.Lock()
	defer e.sweepMu.Unlock()
	if e.sweeper != nil {
		return nil
	}
	interval := e.config.Sweep.Interval
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	e.sweeper = newSweeper(e, interval)
	return nil
}

// StopSweeper describes the stopsweeper operation and its observable behavior.
//
// StopSweeper may return an error when input validation, dependency calls, or security checks fail.
// StopSweeper does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) StopSweeper() {
	if e == nil {
		return
	}
	e.sweepMu.Lock()
	s := e.sweeper
	e.sweeper = nil
	e.sweepMu.Unlock()
	s.stop()
}

// SweepNow describes the sweepnow operation and its observable behavior.
//
// SweepNow may return an error when input validation, dependency calls, or security checks fail.
// SweepNow does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SweepNow(ctx context.Context) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}

	evicted, err := e.store.SweepExpired(ctx, e.now())
	if err != nil {
		return evicted, ErrStoreUnavailable
	}

	e.metricInc(MetricSweepRuns)
	if evicted > 0 {
		e.metricAdd(MetricSweepEvicted, uint64(evicted))
	}
	e.emitAudit(ctx, auditEventSweepCompleted, true, "", "", nil, func() map[string]string {
		return map[string]string{
			"evicted": strconv.Itoa(evicted),
		}
	})
	return evicted, nil
}
