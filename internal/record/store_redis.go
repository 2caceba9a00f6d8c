package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"gfde/pkg/platform/sentinel"
)

var redisOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "gfde_record_store_redis_duration_seconds",
	Help:    "Latency of Redis record store operations",
	Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
}, []string{"op"})

const defaultRedisKeyPrefix = "gfde"

// putScript bumps the version, replaces the payload and, on first write,
// appends the id to the type's insertion index. Running it as one script keeps
// version assignment and payload publication atomic.
var putScript = redis.NewScript(`
local v = redis.call('HINCRBY', KEYS[1], 'ver', 1)
redis.call('HSET', KEYS[1], 'payload', ARGV[1])
if v == 1 then
  redis.call('RPUSH', KEYS[2], ARGV[2])
end
return v
`)

// RedisStore is a Store shared by every process pointed at the same Redis.
// A record lives in hash <prefix>:rec:<type>:<id> (fields payload, ver); the
// list <prefix>:idx:<type> keeps ids in first-write order for scans.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix namespaces all keys, e.g. per test or per environment.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore constructs a Redis-backed record store.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultRedisKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) Get(ctx context.Context, domainType, id string) (Record, bool, error) {
	defer observe("get", time.Now())

	vals, err := s.client.HMGet(ctx, s.recordKey(domainType, id), "payload", "ver").Result()
	if err != nil {
		return Record{}, false, fmt.Errorf("get %s/%s: %w", domainType, id, err)
	}
	rec, err := decodeRedisRecord(domainType, id, vals)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *RedisStore) Put(ctx context.Context, domainType, id string, payload Document) (uint64, error) {
	if err := validateKey(domainType, id); err != nil {
		return 0, err
	}
	defer observe("put", time.Now())

	// The version lives in its own hash field; a caller-supplied one is dropped
	// here and re-attached on read.
	stored := payload.Clone()
	if stored.Has(VersionField) {
		stored = stored.Without(VersionField)
	}
	body, err := json.Marshal(stored)
	if err != nil {
		return 0, fmt.Errorf("encode payload: %w", err)
	}

	keys := []string{s.recordKey(domainType, id), s.indexKey(domainType)}
	v, err := putScript.Run(ctx, s.client, keys, body, id).Int64()
	if err != nil {
		return 0, fmt.Errorf("put %s/%s: %w", domainType, id, err)
	}
	return uint64(v), nil
}

func (s *RedisStore) Scan(ctx context.Context, domainType, field string, value Value, limit int) ([]Record, error) {
	out := []Record{}
	if limit <= 0 {
		return out, nil
	}
	defer observe("scan", time.Now())

	ids, err := s.client.LRange(ctx, s.indexKey(domainType), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("scan %s index: %w", domainType, err)
	}
	if len(ids) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HMGet(ctx, s.recordKey(domainType, id), "payload", "ver")
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("scan %s: %w", domainType, err)
	}

	for i, cmd := range cmds {
		rec, err := decodeRedisRecord(domainType, ids[i], cmd.Val())
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		fv, ok := rec.Payload.fields[field]
		if !ok || !fv.Equal(value) {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *RedisStore) recordKey(domainType, id string) string {
	return s.prefix + ":rec:" + domainType + ":" + id
}

func (s *RedisStore) indexKey(domainType string) string {
	return s.prefix + ":idx:" + domainType
}

func decodeRedisRecord(domainType, id string, vals []any) (Record, error) {
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return Record{}, sentinel.ErrNotFound
	}
	body, ok := vals[0].(string)
	if !ok {
		return Record{}, fmt.Errorf("%s/%s payload: %w", domainType, id, sentinel.ErrCorrupt)
	}
	verStr, ok := vals[1].(string)
	if !ok {
		return Record{}, fmt.Errorf("%s/%s version: %w", domainType, id, sentinel.ErrCorrupt)
	}
	version, err := strconv.ParseUint(verStr, 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%s/%s version %q: %w", domainType, id, verStr, sentinel.ErrCorrupt)
	}
	var payload Document
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return Record{}, fmt.Errorf("%s/%s payload: %w: %v", domainType, id, sentinel.ErrCorrupt, err)
	}
	return Record{
		Type:    domainType,
		ID:      id,
		Version: version,
		Payload: WithVersion(payload, version),
	}, nil
}

func observe(op string, start time.Time) {
	redisOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

var _ Store = (*RedisStore)(nil)
