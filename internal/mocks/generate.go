// Package mocks provides mock implementations for testing the research job system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the
// ports defined in internal/core.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

// Generate mock for JobRepository interface from internal/core package:
// Create, GetByID, AdvanceStatus, Complete, Fail, SetStructuredResult, ListBySession, ListActive, FailStale
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_repository_mock.go github.com/campaignforge/research-api/internal/core JobRepository

// Generate mock for ArtifactRepository interface from internal/core package:
// GetSessionArtifacts
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=artifact_repository_mock.go github.com/campaignforge/research-api/internal/core ArtifactRepository

// Generate mock for CacheRepository interface from internal/core package:
// Get, Set, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/campaignforge/research-api/internal/core CacheRepository

// Generate mock for ResearchTaskClient interface from internal/core package:
// CreateResearchTask, GetResearchTask
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=research_task_client_mock.go github.com/campaignforge/research-api/internal/core ResearchTaskClient

// Generate mock for TextTransformer interface from internal/core package:
// TransformText
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=text_transformer_mock.go github.com/campaignforge/research-api/internal/core TextTransformer
