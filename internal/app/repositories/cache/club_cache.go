package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/repositories"
)

// ErrMiss is returned by a Store when the key is absent
var ErrMiss = errors.New("cache miss")

const (
	clubIDPrefix   = "clubportal:club:id"
	clubSlugPrefix = "clubportal:club:slug"
)

// Store is the key/value surface the club cache needs
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisStore adapts a go-redis client to Store
type RedisStore struct {
	client *redis.Client
}

// RedisConfig holds the connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects and pings once
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return value, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Close releases the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// ClubRepository is a read-through cache in front of another club repository.
// Single-club lookups are cached; listings always go to the underlying store.
// Cache failures are logged and never fail the request.
type ClubRepository struct {
	next   repositories.ClubRepository
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
}

// NewClubRepository wraps next with store
func NewClubRepository(next repositories.ClubRepository, store Store, ttl time.Duration, logger zerolog.Logger) *ClubRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ClubRepository{next: next, store: store, ttl: ttl, logger: logger}
}

func idKey(id int64) string {
	return fmt.Sprintf("%s:%d", clubIDPrefix, id)
}

func slugKey(slug string) string {
	return fmt.Sprintf("%s:%s", clubSlugPrefix, slug)
}

func (r *ClubRepository) lookup(ctx context.Context, key string, load func() (*models.Club, error)) (*models.Club, error) {
	raw, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		club := &models.Club{}
		if err := json.Unmarshal(raw, club); err == nil {
			return club, nil
		}
		r.logger.Warn().Str("key", key).Msg("Discarding undecodable cached club")
	case !errors.Is(err, ErrMiss):
		r.logger.Warn().Err(err).Str("key", key).Msg("Club cache read failed")
	}

	club, err := load()
	if err != nil {
		return nil, err
	}
	r.fill(ctx, club)
	return club, nil
}

func (r *ClubRepository) fill(ctx context.Context, club *models.Club) {
	raw, err := json.Marshal(club)
	if err != nil {
		return
	}
	for _, key := range []string{idKey(club.ID), slugKey(club.Slug)} {
		if err := r.store.Set(ctx, key, raw, r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("Club cache write failed")
			return
		}
	}
}

func (r *ClubRepository) evict(ctx context.Context, keys ...string) {
	if err := r.store.Del(ctx, keys...); err != nil {
		r.logger.Warn().Err(err).Strs("keys", keys).Msg("Club cache eviction failed")
	}
}

func (r *ClubRepository) Create(ctx context.Context, club *models.Club) error {
	return r.next.Create(ctx, club)
}

func (r *ClubRepository) GetByID(ctx context.Context, id int64) (*models.Club, error) {
	return r.lookup(ctx, idKey(id), func() (*models.Club, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *ClubRepository) GetBySlug(ctx context.Context, slug string) (*models.Club, error) {
	return r.lookup(ctx, slugKey(slug), func() (*models.Club, error) {
		return r.next.GetBySlug(ctx, slug)
	})
}

func (r *ClubRepository) List(ctx context.Context, category string) ([]*models.Club, error) {
	return r.next.List(ctx, category)
}

// Update evicts the old and new slug keys as well as the id key
func (r *ClubRepository) Update(ctx context.Context, club *models.Club) error {
	keys := []string{idKey(club.ID), slugKey(club.Slug)}
	if previous, err := r.next.GetByID(ctx, club.ID); err == nil && previous.Slug != club.Slug {
		keys = append(keys, slugKey(previous.Slug))
	}

	if err := r.next.Update(ctx, club); err != nil {
		return err
	}
	r.evict(ctx, keys...)
	return nil
}

func (r *ClubRepository) Delete(ctx context.Context, id int64) error {
	keys := []string{idKey(id)}
	if previous, err := r.next.GetByID(ctx, id); err == nil {
		keys = append(keys, slugKey(previous.Slug))
	}

	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, keys...)
	return nil
}
