package stores

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func testRecord(now time.Time, ttl time.Duration) *Record {
	return &Record{
		CodeHash:  []byte("not-a-real-hash"),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemoryPutAndMetadata(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	if err := m.Put(ctx, "0:alice", testRecord(now, time.Minute), time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rec, err := m.Metadata(ctx, "0:alice", now)
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if !rec.ExpiresAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected expiry %v", rec.ExpiresAt)
	}

	if _, err := m.Metadata(ctx, "0:missing", now); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestMemoryMetadataCopiesHash(t *testing.T) {
	m := NewMemory(4)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	if err := m.Put(ctx, "0:alice", testRecord(now, time.Minute), time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rec, err := m.Metadata(ctx, "0:alice", now)
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	rec.CodeHash[0] = 'X'

	again, err := m.Metadata(ctx, "0:alice", now)
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if again.CodeHash[0] == 'X' {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestMemoryMetadataEvictsExpired(t *testing.T) {
	m := NewMemory(4)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	if err := m.Put(ctx, "0:alice", testRecord(now, time.Minute), time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Expired records surface as not-found and are evicted on observation.
	later := now.Add(2 * time.Minute)
	if _, err := m.Metadata(ctx, "0:alice", later); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("expected expired record to be evicted, got %d records", m.Len())
	}
}

func TestMemoryBeginAttemptLifecycle(t *testing.T) {
	m := NewMemory(4)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	const maxAttempts = 3

	if err := m.Put(ctx, "0:alice", testRecord(now, time.Minute), time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	for i := 1; i <= maxAttempts; i++ {
		state, err := m.BeginAttempt(ctx, "0:alice", now, maxAttempts)
		if err != nil {
			t.Fatalf("BeginAttempt %d failed: %v", i, err)
		}
		if state.Attempts != i {
			t.Fatalf("attempt %d: counter = %d", i, state.Attempts)
		}
		if len(state.CodeHash) == 0 {
			t.Fatal("expected hash in attempt state")
		}
	}

	// Budget spent: the next attempt reports exhaustion and deletes.
	if _, err := m.BeginAttempt(ctx, "0:alice", now, maxAttempts); !errors.Is(err, ErrRecordExhausted) {
		t.Fatalf("expected ErrRecordExhausted, got %v", err)
	}
	if _, err := m.BeginAttempt(ctx, "0:alice", now, maxAttempts); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound after exhaustion delete, got %v", err)
	}
}

func TestMemoryBeginAttemptExpired(t *testing.T) {
	m := NewMemory(4)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	if err := m.Put(ctx, "0:alice", testRecord(now, time.Minute), time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	later := now.Add(time.Hour)
	if _, err := m.BeginAttempt(ctx, "0:alice", later, 3); !errors.Is(err, ErrRecordExpired) {
		t.Fatalf("expected ErrRecordExpired, got %v", err)
	}
	if _, err := m.BeginAttempt(ctx, "0:alice", later, 3); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound after expiry delete, got %v", err)
	}
}

func TestMemoryDeleteAndConsume(t *testing.T) {
	m := NewMemory(4)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	if err := m.Put(ctx, "0:alice", testRecord(now, time.Minute), time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	removed, err := m.Delete(ctx, "0:alice")
	if err != nil || !removed {
		t.Fatalf("Delete: removed=%v err=%v", removed, err)
	}
	removed, err = m.Delete(ctx, "0:alice")
	if err != nil || removed {
		t.Fatalf("second Delete: removed=%v err=%v", removed, err)
	}

	if err := m.Put(ctx, "0:bob", testRecord(now, time.Minute), time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := m.Consume(ctx, "0:bob"); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if _, err := m.Metadata(ctx, "0:bob", now); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected consumed record gone, got %v", err)
	}
}

func TestMemorySweepExpired(t *testing.T) {
	m := NewMemory(8)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	for i, key := range []string{"0:a", "0:b", "0:c"} {
		ttl := time.Minute
		if i < 2 {
			ttl = time.Second
		}
		if err := m.Put(ctx, key, testRecord(now, ttl), ttl); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	evicted, err := m.SweepExpired(ctx, now.Add(10*time.Second))
	if err != nil {
		t.Fatalf("SweepExpired failed: %v", err)
	}
	if evicted != 2 {
		t.Fatalf("expected 2 evictions, got %d", evicted)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 surviving record, got %d", m.Len())
	}
}

func TestMemorySweepHonorsContextCancel(t *testing.T) {
	m := NewMemory(8)
	now := time.Unix(1700000000, 0)

	if err := m.Put(context.Background(), "0:a", testRecord(now, time.Second), time.Second); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.SweepExpired(ctx, now.Add(time.Minute)); err == nil {
		t.Fatal("expected context error from cancelled sweep")
	}
}

func TestMemoryConcurrentAttemptsSerialize(t *testing.T) {
	m := NewMemory(16)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	const maxAttempts = 5

	if err := m.Put(ctx, "0:alice", testRecord(now, time.Minute), time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.BeginAttempt(ctx, "0:alice", now, maxAttempts); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != maxAttempts {
		t.Fatalf("expected exactly %d granted attempts, got %d", maxAttempts, granted)
	}
}
