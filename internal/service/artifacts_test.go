package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/campaignforge/research-api/internal/domain/model"
	"github.com/campaignforge/research-api/internal/mocks"
)

func TestNewArtifactService(t *testing.T) {
	t.Run("missing repo", func(t *testing.T) {
		_, err := NewArtifactService(ArtifactServiceOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ArtifactRepository is required")
	})

	t.Run("default TTL applied", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, err := NewArtifactService(ArtifactServiceOptions{
			Repo: mocks.NewMockArtifactRepository(ctrl),
		})
		require.NoError(t, err)
		assert.Equal(t, defaultArtifactCacheTTL, svc.cacheTTL)
	})
}

func TestArtifactLoadWithoutCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	want := artifactsWithBrief("sess-1")
	repo := mocks.NewMockArtifactRepository(ctrl)
	repo.EXPECT().GetSessionArtifacts(gomock.Any(), "sess-1").Return(want, nil)

	svc := MustNewArtifactService(ArtifactServiceOptions{Repo: repo})

	got, err := svc.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestArtifactLoadCacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cached := artifactsWithBrief("sess-1")
	payload, err := json.Marshal(cached)
	require.NoError(t, err)

	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().Get(gomock.Any(), "session_artifacts:sess-1").Return(payload, true, nil)

	// The repo carries no expectations: a cache hit must not touch it.
	svc := MustNewArtifactService(ArtifactServiceOptions{
		Repo:  mocks.NewMockArtifactRepository(ctrl),
		Cache: cache,
	})

	got, err := svc.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, cached, got)
}

func TestArtifactLoadCacheMissPopulates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	want := artifactsWithBrief("sess-1")
	ttl := 90 * time.Second

	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().Get(gomock.Any(), "session_artifacts:sess-1").Return(nil, false, nil)
	cache.EXPECT().
		Set(gomock.Any(), "session_artifacts:sess-1", gomock.Any(), ttl).
		DoAndReturn(func(_ context.Context, _ string, payload []byte, _ time.Duration) error {
			var stored model.SessionArtifacts
			require.NoError(t, json.Unmarshal(payload, &stored))
			assert.Equal(t, *want, stored)
			return nil
		})

	repo := mocks.NewMockArtifactRepository(ctrl)
	repo.EXPECT().GetSessionArtifacts(gomock.Any(), "sess-1").Return(want, nil)

	svc := MustNewArtifactService(ArtifactServiceOptions{
		Repo:     repo,
		Cache:    cache,
		CacheTTL: ttl,
	})

	got, err := svc.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestArtifactLoadCacheFailureDegrades(t *testing.T) {
	t.Run("read error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cache := mocks.NewMockCacheRepository(ctrl)
		cache.EXPECT().
			Get(gomock.Any(), "session_artifacts:sess-1").
			Return(nil, false, errors.New("redis down"))
		cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		want := artifactsWithBrief("sess-1")
		repo := mocks.NewMockArtifactRepository(ctrl)
		repo.EXPECT().GetSessionArtifacts(gomock.Any(), "sess-1").Return(want, nil)

		svc := MustNewArtifactService(ArtifactServiceOptions{Repo: repo, Cache: cache})

		got, err := svc.Load(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("corrupt entry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cache := mocks.NewMockCacheRepository(ctrl)
		cache.EXPECT().
			Get(gomock.Any(), "session_artifacts:sess-1").
			Return([]byte("{not json"), true, nil)
		cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		want := artifactsWithBrief("sess-1")
		repo := mocks.NewMockArtifactRepository(ctrl)
		repo.EXPECT().GetSessionArtifacts(gomock.Any(), "sess-1").Return(want, nil)

		svc := MustNewArtifactService(ArtifactServiceOptions{Repo: repo, Cache: cache})

		got, err := svc.Load(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestArtifactLoadEmptySessionID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := MustNewArtifactService(ArtifactServiceOptions{
		Repo: mocks.NewMockArtifactRepository(ctrl),
	})

	_, err := svc.Load(context.Background(), "")
	require.Error(t, err)
}

func TestArtifactInvalidate(t *testing.T) {
	t.Run("deletes the cache key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cache := mocks.NewMockCacheRepository(ctrl)
		cache.EXPECT().Delete(gomock.Any(), "session_artifacts:sess-1").Return(nil)

		svc := MustNewArtifactService(ArtifactServiceOptions{
			Repo:  mocks.NewMockArtifactRepository(ctrl),
			Cache: cache,
		})

		require.NoError(t, svc.Invalidate(context.Background(), "sess-1"))
	})

	t.Run("no-op without cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := MustNewArtifactService(ArtifactServiceOptions{
			Repo: mocks.NewMockArtifactRepository(ctrl),
		})

		require.NoError(t, svc.Invalidate(context.Background(), "sess-1"))
	})
}
