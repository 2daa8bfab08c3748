package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/repositories"
	"github.com/denokazs/thku-sub000/internal/app/repositories/memstore"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
)

type mapStore struct {
	mu      sync.Mutex
	values  map[string][]byte
	failGet bool
}

func newMapStore() *mapStore {
	return &mapStore{values: map[string][]byte{}}
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, errors.New("connection refused")
	}
	v, ok := s.values[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *mapStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *mapStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

// countingRepo records how often lookups reach the underlying store
type countingRepo struct {
	repositories.ClubRepository
	lookups int
}

func (r *countingRepo) GetBySlug(ctx context.Context, slug string) (*models.Club, error) {
	r.lookups++
	return r.ClubRepository.GetBySlug(ctx, slug)
}

func setup(t *testing.T) (*ClubRepository, *countingRepo, *mapStore, *models.Club) {
	t.Helper()
	next := &countingRepo{ClubRepository: memstore.New().Repositories().ClubRepository}
	store := newMapStore()
	repo := NewClubRepository(next, store, time.Minute, zerolog.Nop())

	club := &models.Club{Slug: "robotics", Name: "Robotics Club"}
	require.NoError(t, repo.Create(context.Background(), club))
	return repo, next, store, club
}

func TestReadThrough(t *testing.T) {
	ctx := context.Background()
	repo, next, store, club := setup(t)

	first, err := repo.GetBySlug(ctx, "robotics")
	require.NoError(t, err)
	assert.Equal(t, club.ID, first.ID)
	assert.True(t, store.has(idKey(club.ID)))
	assert.True(t, store.has(slugKey("robotics")))

	second, err := repo.GetBySlug(ctx, "robotics")
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, 1, next.lookups)

	byID, err := repo.GetByID(ctx, club.ID)
	require.NoError(t, err)
	assert.Equal(t, "robotics", byID.Slug)
}

func TestMissesAreNotCached(t *testing.T) {
	repo, _, store, _ := setup(t)

	_, err := repo.GetBySlug(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.False(t, store.has(slugKey("ghost")))
}

func TestUpdateEvictsOldSlug(t *testing.T) {
	ctx := context.Background()
	repo, _, store, club := setup(t)

	_, err := repo.GetByID(ctx, club.ID)
	require.NoError(t, err)

	renamed := *club
	renamed.Slug = "robots"
	require.NoError(t, repo.Update(ctx, &renamed))
	assert.False(t, store.has(idKey(club.ID)))
	assert.False(t, store.has(slugKey("robotics")))

	_, err = repo.GetBySlug(ctx, "robotics")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	got, err := repo.GetBySlug(ctx, "robots")
	require.NoError(t, err)
	assert.Equal(t, club.ID, got.ID)
}

func TestDeleteEvicts(t *testing.T) {
	ctx := context.Background()
	repo, _, _, club := setup(t)

	_, err := repo.GetBySlug(ctx, "robotics")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, club.ID))

	_, err = repo.GetByID(ctx, club.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestStoreFailureFallsThrough(t *testing.T) {
	repo, next, store, club := setup(t)
	store.failGet = true

	got, err := repo.GetBySlug(context.Background(), "robotics")
	require.NoError(t, err)
	assert.Equal(t, club.ID, got.ID)
	assert.Equal(t, 1, next.lookups)
}
