package redis

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"dreamwriter-api/internal/config"
	"dreamwriter-api/internal/domain/entity"
	apperrors "dreamwriter-api/pkg/errors"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewClient(&config.RedisConfig{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

type stubNovelRepo struct {
	novels map[string]*entity.Novel
	gets   atomic.Int32
}

func (s *stubNovelRepo) Create(_ context.Context, n *entity.Novel) error {
	s.novels[n.ID] = n
	return nil
}

func (s *stubNovelRepo) GetByID(_ context.Context, id string) (*entity.Novel, error) {
	s.gets.Add(1)
	n, ok := s.novels[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (s *stubNovelRepo) List(context.Context) ([]*entity.Novel, error) { return nil, nil }

func (s *stubNovelRepo) Update(_ context.Context, n *entity.Novel) error {
	s.novels[n.ID] = n
	return nil
}

func (s *stubNovelRepo) Delete(_ context.Context, id string) error {
	if _, ok := s.novels[id]; !ok {
		return apperrors.ErrNovelNotFound
	}
	delete(s.novels, id)
	return nil
}

func TestCachedNovelRepositoryReadThrough(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	inner := &stubNovelRepo{novels: map[string]*entity.Novel{
		"n-1": {ID: "n-1", Title: "长夜", Outline: "大纲"},
	}}
	repo := NewCachedNovelRepository(inner, NewCache(client), time.Minute)

	first, err := repo.GetByID(ctx, "n-1")
	require.NoError(t, err)
	require.Equal(t, "长夜", first.Title)
	require.True(t, mr.Exists(NovelKey("n-1")))

	second, err := repo.GetByID(ctx, "n-1")
	require.NoError(t, err)
	require.Equal(t, "大纲", second.Outline)
	require.EqualValues(t, 1, inner.gets.Load())
}

func TestCachedNovelRepositoryMissIsNotCached(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	inner := &stubNovelRepo{novels: map[string]*entity.Novel{}}
	repo := NewCachedNovelRepository(inner, NewCache(client), time.Minute)

	got, err := repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, got)
	require.False(t, mr.Exists(NovelKey("missing")))
}

func TestCachedNovelRepositoryInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	inner := &stubNovelRepo{novels: map[string]*entity.Novel{
		"n-1": {ID: "n-1", Title: "旧"},
	}}
	repo := NewCachedNovelRepository(inner, NewCache(client), time.Minute)

	_, err := repo.GetByID(ctx, "n-1")
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, &entity.Novel{ID: "n-1", Title: "新"}))
	require.False(t, mr.Exists(NovelKey("n-1")))

	got, err := repo.GetByID(ctx, "n-1")
	require.NoError(t, err)
	require.Equal(t, "新", got.Title)

	require.NoError(t, repo.Delete(ctx, "n-1"))
	require.False(t, mr.Exists(NovelKey("n-1")))
	require.ErrorIs(t, repo.Delete(ctx, "n-1"), apperrors.ErrNovelNotFound)
}

func TestCachedNovelRepositoryFallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	inner := &stubNovelRepo{novels: map[string]*entity.Novel{"n-1": {ID: "n-1", Title: "t"}}}
	repo := NewCachedNovelRepository(inner, NewCache(client), time.Minute)

	mr.Close()

	got, err := repo.GetByID(ctx, "n-1")
	require.NoError(t, err)
	require.Equal(t, "t", got.Title)
}

func TestRateLimiterAllow(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client)
	key := BuildRateLimitKey("127.0.0.1", "/api/generate/chapter")

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := limiter.Allow(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	remaining, err := limiter.Remaining(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	require.Zero(t, remaining)
}

func TestCacheSetStoresBytesVerbatimAndStructsAsJSON(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	cache := NewCache(client)

	require.NoError(t, cache.Set(ctx, "raw", []byte(`{"id":"n-1"}`), time.Minute))
	require.NoError(t, cache.Set(ctx, "obj", entity.Novel{ID: "n-2", Title: "边城"}, time.Minute))

	raw, err := cache.Get(ctx, "raw")
	require.NoError(t, err)
	require.Equal(t, `{"id":"n-1"}`, string(raw))

	obj, err := cache.Get(ctx, "obj")
	require.NoError(t, err)
	require.Contains(t, string(obj), `"title":"边城"`)
	require.Equal(t, time.Minute, mr.TTL("obj"))

	_, err = cache.Get(ctx, "missing")
	require.True(t, IsNil(err))
}
