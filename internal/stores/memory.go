package stores

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const defaultShardCount = 16

type memoryShard struct {
	mu      sync.Mutex
	records map[string]*Record
}

// Memory is the in-process store backend. Records are spread across shards so
// operations on different identities rarely contend; all mutations for one key
// happen under its shard mutex.
type Memory struct {
	shards []*memoryShard
	mask   uint32
}

// NewMemory creates a memory store with the given shard count, rounded up to
// a power of two. A non-positive count selects the default.
func NewMemory(shardCount int) *Memory {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	n := 1
	for n < shardCount {
		n <<= 1
	}

	shards := make([]*memoryShard, n)
	for i := range shards {
		shards[i] = &memoryShard{records: make(map[string]*Record)}
	}

	return &Memory{
		shards: shards,
		mask:   uint32(n - 1),
	}
}

func (m *Memory) shard(key string) *memoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return m.shards[h.Sum32()&m.mask]
}

// Put stores a fresh record, overwriting any prior record for the key.
// Expiry is judged against rec.ExpiresAt; ttl is unused here.
func (m *Memory) Put(_ context.Context, key string, rec *Record, _ time.Duration) error {
	stored := *rec
	stored.CodeHash = append([]byte(nil), rec.CodeHash...)

	s := m.shard(key)
	s.mu.Lock()
	s.records[key] = &stored
	s.mu.Unlock()

	return nil
}

// Metadata returns a copy of the record. Expired records are deleted and
// reported as ErrRecordNotFound.
func (m *Memory) Metadata(_ context.Context, key string, now time.Time) (*Record, error) {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, ErrRecordNotFound
	}
	if !now.Before(rec.ExpiresAt) {
		delete(s.records, key)
		return nil, ErrRecordNotFound
	}

	out := *rec
	out.CodeHash = append([]byte(nil), rec.CodeHash...)
	return &out, nil
}

// Delete removes a record if present.
func (m *Memory) Delete(_ context.Context, key string) (bool, error) {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[key]; !ok {
		return false, nil
	}
	delete(s.records, key)
	return true, nil
}

// BeginAttempt checks expiry and budget, then increments and persists the
// attempt counter before returning the stored hash. The increment is applied
// under the shard mutex, so concurrent callers spend distinct attempts.
func (m *Memory) BeginAttempt(_ context.Context, key string, now time.Time, maxAttempts int) (*AttemptState, error) {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, ErrRecordNotFound
	}
	if !now.Before(rec.ExpiresAt) {
		delete(s.records, key)
		return nil, ErrRecordExpired
	}
	if rec.Attempts >= maxAttempts {
		delete(s.records, key)
		return nil, ErrRecordExhausted
	}

	rec.Attempts++
	rec.LastAttemptAt = now

	return &AttemptState{
		CodeHash: append([]byte(nil), rec.CodeHash...),
		Attempts: rec.Attempts,
	}, nil
}

// Consume removes the record after a successful match.
func (m *Memory) Consume(ctx context.Context, key string) error {
	_, err := m.Delete(ctx, key)
	return err
}

// SweepExpired evicts expired records shard by shard. Each shard mutex is
// held only for that shard's pass, never for the whole scan.
func (m *Memory) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	evicted := 0
	for _, s := range m.shards {
		if ctx != nil && ctx.Err() != nil {
			return evicted, ctx.Err()
		}

		s.mu.Lock()
		for key, rec := range s.records {
			if !now.Before(rec.ExpiresAt) {
				delete(s.records, key)
				evicted++
			}
		}
		s.mu.Unlock()
	}
	return evicted, nil
}

// Len reports the number of live records across all shards.
func (m *Memory) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.Lock()
		total += len(s.records)
		s.mu.Unlock()
	}
	return total
}
