package goOTP

import (
	"context"
	"testing"
	"time"
)

func TestSweepNowEvictsExpiredRecords(t *testing.T) {
	cfg := fastTestConfig()
	clock := newFakeClock(time.Unix(1700000000, 0))

	engine := newMemoryEngine(t, cfg, func(b *Builder) {
		b.WithClock(clock)
	})
	ctx := context.Background()

	if _, err := engine.IssueWithTTL(ctx, "short@example.com", 10*time.Second); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := engine.IssueWithTTL(ctx, "long@example.com", time.Hour); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	clock.Advance(time.Minute)

	evicted, err := engine.SweepNow(ctx)
	if err != nil {
		t.Fatalf("SweepNow failed: %v", err)
	}
	if evicted != 1 {
		t.Fatalf("expected one eviction, got %d", evicted)
	}

	if _, ok, err := engine.Inspect(ctx, "short@example.com"); err != nil || ok {
		t.Fatalf("expired record should be gone, ok=%v err=%v", ok, err)
	}
	if _, ok, err := engine.Inspect(ctx, "long@example.com"); err != nil || !ok {
		t.Fatalf("live record should survive, ok=%v err=%v", ok, err)
	}
}

func TestSweepNowIsNoOpWithoutExpiredRecords(t *testing.T) {
	engine := newMemoryEngine(t, fastTestConfig())
	ctx := context.Background()

	if _, err := engine.Issue(ctx, "alice@example.com"); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	evicted, err := engine.SweepNow(ctx)
	if err != nil {
		t.Fatalf("SweepNow failed: %v", err)
	}
	if evicted != 0 {
		t.Fatalf("expected no evictions, got %d", evicted)
	}
}

func TestSweeperBackgroundLoop(t *testing.T) {
	cfg := fastTestConfig()
	cfg.Sweep.Enabled = true
	cfg.Sweep.Interval = 5 * time.Millisecond
	clock := newFakeClock(time.Unix(1700000000, 0))

	engine := newMemoryEngine(t, cfg, func(b *Builder) {
		b.WithClock(clock)
	})
	ctx := context.Background()

	if _, err := engine.IssueWithTTL(ctx, "alice@example.com", 10*time.Second); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	clock.Advance(time.Minute)

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, ok, err := engine.Inspect(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("Inspect failed: %v", err)
		}
		if !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sweeper did not evict expired record in time")
		}
		time.Sleep(5 * time.Millisecond)
	}

	engine.StopSweeper()
}

func TestStartSweeperIsIdempotent(t *testing.T) {
	engine := newMemoryEngine(t, fastTestConfig())

	if err := engine.StartSweeper(); err != nil {
		t.Fatalf("StartSweeper failed: %v", err)
	}
	if err := engine.StartSweeper(); err != nil {
		t.Fatalf("second StartSweeper failed: %v", err)
	}

	engine.StopSweeper()
	engine.StopSweeper()
}

func TestSweepMetricsAccumulate(t *testing.T) {
	cfg := fastTestConfig()
	cfg.Metrics.Enabled = true
	clock := newFakeClock(time.Unix(1700000000, 0))

	engine := newMemoryEngine(t, cfg, func(b *Builder) {
		b.WithClock(clock)
	})
	ctx := context.Background()

	if _, err := engine.IssueWithTTL(ctx, "a@example.com", time.Second); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := engine.IssueWithTTL(ctx, "b@example.com", time.Second); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	clock.Advance(time.Minute)

	if _, err := engine.SweepNow(ctx); err != nil {
		t.Fatalf("SweepNow failed: %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricSweepRuns] != 1 {
		t.Fatalf("expected one sweep run, got %d", snap.Counters[MetricSweepRuns])
	}
	if snap.Counters[MetricSweepEvicted] != 2 {
		t.Fatalf("expected two evictions counted, got %d", snap.Counters[MetricSweepEvicted])
	}
}
