package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/racane123/schoolboard/internal/config"
	"github.com/racane123/schoolboard/internal/domain/models"
	"github.com/racane123/schoolboard/pkg/clients/backend"
)

const keyPrefix = "schoolboard"

// errMiss is returned by a Store when the key is absent.
var errMiss = errors.New("cache miss")

// Store is the byte-level key/value store behind the cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore adapts a go-redis client to Store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and checks the connection.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Get returns the stored bytes, or errMiss when the key does not exist.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errMiss
	}
	return data, err
}

// Set stores value under key for ttl.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Source is a read-through cache in front of a backend.Source. Cache
// failures never fail a request; they are logged and the backend answers.
type Source struct {
	next   backend.Source
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewSource wraps next with a cache held in store.
func NewSource(next backend.Source, store Store, ttl time.Duration, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{next: next, store: store, ttl: ttl, logger: logger}
}

// ListMarks implements backend.Source.
func (s *Source) ListMarks(ctx context.Context, q backend.MarkQuery) ([]models.MarkRecord, error) {
	return readThrough(ctx, s, Key("marks", q.ClassID, q.ExamID), func() ([]models.MarkRecord, error) {
		return s.next.ListMarks(ctx, q)
	})
}

// ListAttendance implements backend.Source.
func (s *Source) ListAttendance(ctx context.Context, q backend.AttendanceQuery) ([]models.AttendanceDayRecord, error) {
	key := Key("attendance", q.ClassID, q.StudentID, dateKey(q.From), dateKey(q.To))
	return readThrough(ctx, s, key, func() ([]models.AttendanceDayRecord, error) {
		return s.next.ListAttendance(ctx, q)
	})
}

// ListFees implements backend.Source.
func (s *Source) ListFees(ctx context.Context, q backend.FeeQuery) ([]models.FeeRecord, error) {
	return readThrough(ctx, s, Key("fees", q.ClassID, q.StudentID, string(q.FeeType)), func() ([]models.FeeRecord, error) {
		return s.next.ListFees(ctx, q)
	})
}

// ListExams implements backend.Source.
func (s *Source) ListExams(ctx context.Context, classID string) ([]models.ExamRecord, error) {
	return readThrough(ctx, s, Key("exams", classID), func() ([]models.ExamRecord, error) {
		return s.next.ListExams(ctx, classID)
	})
}

// Key builds the cache key for a kind of list and its filter values.
// Empty values are kept so that positional filters never collide.
func Key(kind string, parts ...string) string {
	return keyPrefix + ":" + kind + ":" + strings.Join(parts, "|")
}

func readThrough[T any](ctx context.Context, s *Source, key string, fetch func() ([]T, error)) ([]T, error) {
	if data, err := s.store.Get(ctx, key); err == nil {
		var cached []T
		if err := json.Unmarshal(data, &cached); err == nil {
			s.logger.Debug("cache hit", zap.String("key", key))
			return cached, nil
		}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	} else if !errors.Is(err, errMiss) {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	items, err := fetch()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return items, nil
	}
	if err := s.store.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return items, nil
}

func dateKey(d *models.Date) string {
	if !d.IsSet() {
		return ""
	}
	return d.String()
}
