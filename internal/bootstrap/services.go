package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/campaignforge/research-api/config"
	"github.com/campaignforge/research-api/internal/adapters/deepresearch"
	"github.com/campaignforge/research-api/internal/adapters/gemini"
	"github.com/campaignforge/research-api/internal/core"
	"github.com/campaignforge/research-api/internal/data"
	"github.com/campaignforge/research-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Launcher   *service.LauncherService
	Reconciler *service.ReconcilerService
	Extractor  *service.ExtractorService
	Artifacts  *service.ArtifactService
	Reaper     *service.ReaperService

	// Client is the shared research provider port, exposed for the poller.
	Client core.ResearchTaskClient
	// Jobs is the shared job repository, exposed for the HTTP read paths.
	Jobs core.JobRepository
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	JobRepo      *data.JobRepo
	ArtifactRepo *data.ArtifactRepo
	CacheRepo    *data.RedisCacheRepo
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(deps *ServiceDeps) *serviceRepositories {
	repos := &serviceRepositories{
		JobRepo:      data.NewJobRepo(deps.DB, data.RepoConfig{Logger: deps.Logger}),
		ArtifactRepo: data.NewArtifactRepo(deps.DB, data.RepoConfig{Logger: deps.Logger}),
	}
	if deps.RedisClient != nil {
		repos.CacheRepo = data.NewRedisCacheRepo(deps.RedisClient)
	}
	return repos
}

// buildTransformer selects the structuring transformer: Gemini when enabled,
// otherwise the deep research provider's synchronous transform endpoint.
//
//nolint:ireturn // callers only care about the TextTransformer port.
func buildTransformer(
	ctx context.Context,
	cfg *config.AppConfig,
	client *deepresearch.Client,
	logger *slog.Logger,
) (core.TextTransformer, error) {
	if !cfg.Provider.UseGemini {
		return client, nil
	}

	transformer, err := gemini.NewTransformer(ctx, gemini.TransformerOptions{
		APIKey: cfg.Provider.GeminiAPIKey,
		Model:  cfg.Provider.GeminiModel,
	})
	if err != nil {
		return nil, fmt.Errorf("wire Gemini transformer: %w", err)
	}
	if logger != nil {
		logger.Info("structuring transformer routed to Gemini", "model", cfg.Provider.GeminiModel)
	}
	return transformer, nil
}

// NewServices wires repositories, the provider client, and the orchestration
// services into a container.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	repos := buildRepositories(deps)

	client, err := deepresearch.NewClient(deepresearch.ClientOptions{
		Config: deps.Config.Provider,
		Logger: deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire provider client: %w", err)
	}

	transformer, err := buildTransformer(ctx, deps.Config, client, deps.Logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	var cache core.CacheRepository
	if repos.CacheRepo != nil {
		cache = repos.CacheRepo
	}
	artifacts := service.MustNewArtifactService(service.ArtifactServiceOptions{
		Repo:     repos.ArtifactRepo,
		Cache:    cache,
		CacheTTL: deps.Config.Cache.ArtifactTTL,
		Logger:   deps.Logger,
	})

	launcher := service.MustNewLauncherService(service.LauncherServiceOptions{
		Repo:      repos.JobRepo,
		Client:    client,
		Artifacts: artifacts,
		Logger:    deps.Logger,
	})

	reconciler := service.MustNewReconcilerService(service.ReconcilerServiceOptions{
		Repo:   repos.JobRepo,
		Client: client,
		Logger: deps.Logger,
	})

	extractor := service.MustNewExtractorService(service.ExtractorServiceOptions{
		Repo:        repos.JobRepo,
		Transformer: transformer,
		Logger:      deps.Logger,
	})

	reaper := service.MustNewReaperService(service.ReaperServiceOptions{
		Repo:   repos.JobRepo,
		Config: deps.Config.Reaper,
		Logger: deps.Logger,
	})

	return ServiceContainer{
		Launcher:   launcher,
		Reconciler: reconciler,
		Extractor:  extractor,
		Artifacts:  artifacts,
		Reaper:     reaper,
		Client:     client,
		Jobs:       repos.JobRepo,
	}, nil
}
