package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campaignforge/research-api/internal/core"
	"github.com/campaignforge/research-api/internal/domain/model"
)

const defaultArtifactCacheTTL = 5 * time.Minute

// ArtifactServiceOptions groups dependencies for ArtifactService.
type ArtifactServiceOptions struct {
	Repo     core.ArtifactRepository // Required: artifact repository
	Cache    core.CacheRepository    // Optional: read-through cache
	CacheTTL time.Duration           // Optional: cache entry TTL
	Logger   *slog.Logger            // Optional: structured logger
}

// ArtifactService loads a session's upstream artifacts through one shared
// path, with an optional Redis read-through cache. Cache failures degrade to
// direct reads; they never fail a load.
type ArtifactService struct {
	repo     core.ArtifactRepository
	cache    core.CacheRepository
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewArtifactService constructs a new ArtifactService.
func NewArtifactService(opts ArtifactServiceOptions) (*ArtifactService, error) {
	if opts.Repo == nil {
		return nil, errors.New("ArtifactRepository is required")
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultArtifactCacheTTL
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "artifact_service")
	}

	return &ArtifactService{
		repo:     opts.Repo,
		cache:    opts.Cache,
		cacheTTL: ttl,
		logger:   logger,
	}, nil
}

// MustNewArtifactService constructs a new ArtifactService and panics on error.
func MustNewArtifactService(opts ArtifactServiceOptions) *ArtifactService {
	svc, err := NewArtifactService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create ArtifactService: %v", err))
	}
	return svc
}

func artifactCacheKey(sessionID string) string {
	return "session_artifacts:" + sessionID
}

// Load returns the session's artifacts as one optional-field struct.
func (s *ArtifactService) Load(ctx context.Context, sessionID string) (*model.SessionArtifacts, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}

	if cached := s.fromCache(ctx, sessionID); cached != nil {
		return cached, nil
	}

	artifacts, err := s.repo.GetSessionArtifacts(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session artifacts: %w", err)
	}

	s.toCache(ctx, sessionID, artifacts)
	return artifacts, nil
}

// Invalidate drops the cached artifacts for a session. Upstream wizard steps
// call this after rewriting an artifact.
func (s *ArtifactService) Invalidate(ctx context.Context, sessionID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, artifactCacheKey(sessionID))
}

func (s *ArtifactService) fromCache(ctx context.Context, sessionID string) *model.SessionArtifacts {
	if s.cache == nil {
		return nil
	}

	payload, ok, err := s.cache.Get(ctx, artifactCacheKey(sessionID))
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "artifact cache read failed", "session_id", sessionID, "error", err)
		}
		return nil
	}
	if !ok {
		return nil
	}

	var artifacts model.SessionArtifacts
	if err := json.Unmarshal(payload, &artifacts); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "artifact cache entry is corrupt", "session_id", sessionID, "error", err)
		}
		return nil
	}
	return &artifacts
}

func (s *ArtifactService) toCache(ctx context.Context, sessionID string, artifacts *model.SessionArtifacts) {
	if s.cache == nil || artifacts == nil {
		return
	}

	payload, err := json.Marshal(artifacts)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, artifactCacheKey(sessionID), payload, s.cacheTTL); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "artifact cache write failed", "session_id", sessionID, "error", err)
	}
}
