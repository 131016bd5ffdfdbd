package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "kitchen:session:"

// Hash fields of a session key. last_seen is unix milliseconds, kept apart
// from data so a touch never rewrites the record.
const (
	redisFieldData     = "data"
	redisFieldLastSeen = "last_seen"
)

// saveScript writes data, raises last_seen when newer and refreshes the TTL.
var saveScript = redis.NewScript(`
redis.call('HSET', KEYS[1], 'data', ARGV[1])
local prev = tonumber(redis.call('HGET', KEYS[1], 'last_seen') or '0')
if tonumber(ARGV[2]) > prev then
  redis.call('HSET', KEYS[1], 'last_seen', ARGV[2])
end
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// touchScript raises last_seen and refreshes the TTL of an existing session.
var touchScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
local prev = tonumber(redis.call('HGET', KEYS[1], 'last_seen') or '0')
if tonumber(ARGV[1]) > prev then
  redis.call('HSET', KEYS[1], 'last_seen', ARGV[1])
end
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// RedisStore keeps sessions in Redis with a TTL equal to the idle timeout,
// so Redis itself drops sessions nobody touches.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	err = saveScript.Run(ctx, s.client, []string{redisKey(rec.ID)},
		string(data), rec.LastSeen.UnixMilli(), s.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("saving session %s: %w", rec.ID, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Record, error) {
	fields, err := s.client.HMGet(ctx, redisKey(id), redisFieldData, redisFieldLastSeen).Result()
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	data, ok := fields[0].(string)
	if !ok {
		return nil, ErrSessionNotFound
	}
	rec, err := decodeRecord(id, []byte(data))
	if err != nil {
		return nil, err
	}
	if raw, ok := fields[1].(string); ok {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && ms > 0 {
			rec.LastSeen = time.UnixMilli(ms).UTC()
		}
	}
	return rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	n, err := touchScript.Run(ctx, s.client, []string{redisKey(id)}, at.UnixMilli(), s.ttl.Milliseconds()).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("touching session %s: %w", id, err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
