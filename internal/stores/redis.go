package stores

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	recordVersionV1 = 1
	defaultPrefix   = "otp"
)

// beginAttemptLua atomically performs the expiry check, the budget check, and
// the attempt increment on a stored record.
//
// KEYS[1] = record key
// ARGV[1] = max attempts (int string)
// ARGV[2] = current unix time in milliseconds (int string)
//
// Returns:
//
//	{attempts, hash bytes} on success (attempts is post-increment)
//	error string: "not_found", "expired", "exhausted"
//
// Record layout (all integers big-endian, offsets 1-based for Lua):
//
//	version(1) attempts(2-3) expiresAt(4-11) createdAt(12-19)
//	lastAttemptAt(20-27) hashLen(28-29) hash(30-)
var beginAttemptLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='not_found'}
end

local maxAttempts = tonumber(ARGV[1])
local nowMs = tonumber(ARGV[2])

local version = string.byte(data, 1)
if version ~= 1 then
  redis.call('DEL', KEYS[1])
  return {err='not_found'}
end

local a0 = string.byte(data, 2)
local a1 = string.byte(data, 3)
local attempts = a0 * 256 + a1

local e0,e1,e2,e3,e4,e5,e6,e7 = string.byte(data, 4, 11)
local expiresAt = e0
for _, b in ipairs({e1,e2,e3,e4,e5,e6,e7}) do
  expiresAt = expiresAt * 256 + b
end

if nowMs >= expiresAt then
  redis.call('DEL', KEYS[1])
  return {err='expired'}
end

if attempts >= maxAttempts then
  redis.call('DEL', KEYS[1])
  return {err='exhausted'}
end

attempts = attempts + 1

-- Rewrite the attempts and lastAttemptAt bytes in the record.
local newA0 = math.floor(attempts / 256)
local newA1 = attempts % 256

local la = nowMs
local laBytes = {}
for i = 8, 1, -1 do
  laBytes[i] = la % 256
  la = math.floor(la / 256)
end

local newData = string.sub(data, 1, 1)
  .. string.char(newA0, newA1)
  .. string.sub(data, 4, 19)
  .. string.char(laBytes[1], laBytes[2], laBytes[3], laBytes[4], laBytes[5], laBytes[6], laBytes[7], laBytes[8])
  .. string.sub(data, 28)

local ttlMs = redis.call('PTTL', KEYS[1])
if ttlMs <= 0 then
  redis.call('DEL', KEYS[1])
  return {err='expired'}
end
redis.call('SET', KEYS[1], newData, 'PX', ttlMs)

return {attempts, string.sub(data, 30)}
`)

// Redis is the store backend over a shared Redis instance. The record TTL is
// mirrored into the Redis key TTL, so passive eviction needs no sweeper.
type Redis struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis store with the given key prefix.
func NewRedis(redisClient redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Redis{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Redis) key(key string) string {
	return s.prefix + ":" + key
}

// Put stores a fresh record, overwriting any prior record for the key. ttl
// becomes the Redis key TTL, so server-side eviction tracks the record expiry.
func (s *Redis) Put(ctx context.Context, key string, rec *Record, ttl time.Duration) error {
	encoded, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if ttl <= 0 {
		return fmt.Errorf("%w: non-positive record ttl", ErrStoreUnavailable)
	}

	if err := s.redis.Set(ctx, s.key(key), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Metadata returns the decoded record. Expired records are deleted and
// reported as ErrRecordNotFound.
func (s *Redis) Metadata(ctx context.Context, key string, now time.Time) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !now.Before(rec.ExpiresAt) {
		_ = s.redis.Del(ctx, s.key(key)).Err()
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

// Delete removes a record if present.
func (s *Redis) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

// BeginAttempt runs the begin-attempt script: expiry check, budget check, and
// attempt increment execute as one atomic step on the Redis side.
func (s *Redis) BeginAttempt(ctx context.Context, key string, now time.Time, maxAttempts int) (*AttemptState, error) {
	result, err := beginAttemptLua.Run(ctx, s.redis,
		[]string{s.key(key)},
		maxAttempts,
		now.UnixMilli(),
	).Result()

	if err != nil {
		switch err.Error() {
		case "not_found":
			return nil, ErrRecordNotFound
		case "expired":
			return nil, ErrRecordExpired
		case "exhausted":
			return nil, ErrRecordExhausted
		default:
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	parts, ok := result.([]interface{})
	if !ok || len(parts) != 2 {
		return nil, fmt.Errorf("%w: unexpected lua result shape", ErrStoreUnavailable)
	}

	attempts, ok := parts[0].(int64)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected lua attempts type", ErrStoreUnavailable)
	}
	hash, ok := parts[1].(string)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected lua hash type", ErrStoreUnavailable)
	}

	return &AttemptState{
		CodeHash: []byte(hash),
		Attempts: int(attempts),
	}, nil
}

// Consume removes the record after a successful match.
func (s *Redis) Consume(ctx context.Context, key string) error {
	_, err := s.Delete(ctx, key)
	return err
}

// SweepExpired is a no-op: the Redis key TTL set by Put already evicts
// expired records server-side.
func (s *Redis) SweepExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

func encodeRecord(rec *Record) ([]byte, error) {
	if rec.Attempts < 0 || rec.Attempts > 65535 {
		return nil, errors.New("record attempts out of range")
	}
	if len(rec.CodeHash) == 0 || len(rec.CodeHash) > 65535 {
		return nil, errors.New("record code hash length out of range")
	}

	var buf bytes.Buffer

	// Timestamps are stored as unix milliseconds, matching the expiry
	// granularity of the attempt script and the memory backend's clock
	// comparisons to within a millisecond.
	buf.WriteByte(recordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, uint16(rec.Attempts)); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, rec.ExpiresAt.UnixMilli()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, rec.CreatedAt.UnixMilli()); err != nil {
		return nil, err
	}
	lastAttempt := int64(0)
	if !rec.LastAttemptAt.IsZero() {
		lastAttempt = rec.LastAttemptAt.UnixMilli()
	}
	if err := binary.Write(&buf, binary.BigEndian, lastAttempt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(rec.CodeHash))); err != nil {
		return nil, err
	}
	buf.Write(rec.CodeHash)

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordVersionV1 {
		return nil, errors.New("invalid record version")
	}

	var attempts uint16
	if err := binary.Read(reader, binary.BigEndian, &attempts); err != nil {
		return nil, err
	}

	var expiresAt, createdAt, lastAttemptAt int64
	if err := binary.Read(reader, binary.BigEndian, &expiresAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &createdAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &lastAttemptAt); err != nil {
		return nil, err
	}

	var hashLen uint16
	if err := binary.Read(reader, binary.BigEndian, &hashLen); err != nil {
		return nil, err
	}
	hash := make([]byte, hashLen)
	if _, err := io.ReadFull(reader, hash); err != nil {
		return nil, err
	}

	rec := &Record{
		CodeHash:  hash,
		CreatedAt: time.UnixMilli(createdAt),
		ExpiresAt: time.UnixMilli(expiresAt),
		Attempts:  int(attempts),
	}
	if lastAttemptAt > 0 {
		rec.LastAttemptAt = time.UnixMilli(lastAttemptAt)
	}
	return rec, nil
}
