package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/ignite-backend/internal/calendar"
	"github.com/stemsi/ignite-backend/internal/config"
	"github.com/stemsi/ignite-backend/internal/model"
	"github.com/stemsi/ignite-backend/internal/repository"
)

// ClassStore is the persistence contract the class and booking services need.
type ClassStore interface {
	CreateWithInstances(ctx context.Context, c *model.Class, dates []time.Time) error
	GetByID(ctx context.Context, id uuid.UUID, withInstances bool) (*model.Class, error)
	List(ctx context.Context, withInstances bool) ([]model.Class, error)
}

// NewClassInput carries an already-validated class creation request.
type NewClassInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	StartTime string
	Duration  int
	Capacity  int
}

var errStaleCacheEntry = errors.New("cache entry invalidated during load")

// ClassService handles class business logic and the Redis read cache.
// A nil Redis client disables caching.
type ClassService struct {
	classRepo ClassStore
	rdb       *redis.Client
	cacheTTL  time.Duration
	log       zerolog.Logger
}

// NewClassService creates a new ClassService.
func NewClassService(classRepo ClassStore, rdb *redis.Client, cacheTTL time.Duration, log zerolog.Logger) *ClassService {
	return &ClassService{
		classRepo: classRepo,
		rdb:       rdb,
		cacheTTL:  cacheTTL,
		log:       log.With().Str("component", "class_service").Logger(),
	}
}

// Create persists a class together with one instance per calendar day of its
// date range. The write is atomic; the returned class carries its instances
// in date order, each with no bookings.
func (s *ClassService) Create(ctx context.Context, in NewClassInput) (*model.Class, error) {
	startTime, err := normalizeStartTime(in.StartTime)
	if err != nil {
		return nil, err
	}

	start, end := calendar.Truncate(in.StartDate), calendar.Truncate(in.EndDate)
	switch {
	case in.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidClass)
	case end.Before(start):
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidClass)
	case in.Duration < 1:
		return nil, fmt.Errorf("%w: duration must be at least 1 minute", ErrInvalidClass)
	case in.Capacity < 1:
		return nil, fmt.Errorf("%w: capacity must be at least 1", ErrInvalidClass)
	}

	class := &model.Class{
		Name:      in.Name,
		StartDate: start,
		EndDate:   end,
		StartTime: startTime,
		Duration:  in.Duration,
		Capacity:  in.Capacity,
	}

	dates := calendar.Expand(start, end)
	if err := s.classRepo.CreateWithInstances(ctx, class, dates); err != nil {
		s.log.Error().Err(err).Str("name", in.Name).Msg("failed to create class")
		return nil, fmt.Errorf("create class: %w", err)
	}

	s.invalidate(ctx, config.CacheKey.ClassListKey())

	s.log.Info().
		Str("class_id", class.ID.String()).
		Str("start_date", calendar.Format(start)).
		Str("end_date", calendar.Format(end)).
		Int("instances", len(class.Instances)).
		Msg("Class created")

	return class, nil
}

// GetByID retrieves a class with its instances and bookings.
func (s *ClassService) GetByID(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	key := config.CacheKey.ClassDetailKey(id.String())

	var cached model.Class
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}
	version, versionOK := s.cacheVersion(ctx, key)

	class, err := s.classRepo.GetByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("get class: %w", err)
	}

	if versionOK {
		s.writeCache(ctx, key, version, class)
	}
	return class, nil
}

// List retrieves all classes with instances and bookings, ordered by start date.
func (s *ClassService) List(ctx context.Context) ([]model.Class, error) {
	key := config.CacheKey.ClassListKey()

	var cached []model.Class
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}
	version, versionOK := s.cacheVersion(ctx, key)

	classes, err := s.classRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	if versionOK {
		s.writeCache(ctx, key, version, classes)
	}
	return classes, nil
}

// InvalidateClass drops every cached view that embeds the class.
func (s *ClassService) InvalidateClass(ctx context.Context, id uuid.UUID) {
	s.invalidate(ctx, config.CacheKey.ClassDetailKey(id.String()), config.CacheKey.ClassListKey())
}

// ────────────────────────────────────────────────────────────────────────────
// Cache helpers
// ────────────────────────────────────────────────────────────────────────────

func (s *ClassService) readCache(ctx context.Context, key string, dst interface{}) bool {
	if s.rdb == nil {
		return false
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return false
	}
	return true
}

// cacheVersion reads the invalidation counter of key. It must be read before
// the database load whose result is later handed to writeCache.
func (s *ClassService) cacheVersion(ctx context.Context, key string) (int64, bool) {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return 0, false
	}
	v, err := s.rdb.Get(ctx, config.CacheKey.CacheVersionKey(key)).Int64()
	switch {
	case err == redis.Nil:
		return 0, true
	case err != nil:
		s.log.Warn().Err(err).Str("key", key).Msg("cache version read failed")
		return 0, false
	}
	return v, true
}

// writeCache stores v under key only if no invalidation happened since
// version was read, so a slow reader cannot put back a view that predates
// a booking.
func (s *ClassService) writeCache(ctx context.Context, key string, version int64, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}

	versionKey := config.CacheKey.CacheVersionKey(key)
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != version {
			return errStaleCacheEntry
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, s.cacheTTL)
			return nil
		})
		return err
	}, versionKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleCacheEntry), errors.Is(err, redis.TxFailedErr):
		s.log.Debug().Str("key", key).Msg("skipping cache write, entry invalidated during load")
	default:
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// invalidate bumps the version of every key before deleting it.
func (s *ClassService) invalidate(ctx context.Context, keys ...string) {
	if s.rdb == nil {
		return
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, config.CacheKey.CacheVersionKey(key))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

// normalizeStartTime zero-pads an H:MM or HH:MM time to HH:MM.
func normalizeStartTime(raw string) (string, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return "", fmt.Errorf("%w: start time must be HH:MM", ErrInvalidClass)
	}
	return t.Format("15:04"), nil
}
