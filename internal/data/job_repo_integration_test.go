package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campaignforge/research-api/internal/core"
	"github.com/campaignforge/research-api/internal/domain/model"
	apperrors "github.com/campaignforge/research-api/internal/errors"
	"github.com/campaignforge/research-api/internal/testutil"
)

func setupJobRepo(t *testing.T) (*JobRepo, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	return NewJobRepo(db, RepoConfig{}), db
}

func createIntegrationJob(t *testing.T, repo *JobRepo, status model.JobStatus) *model.ResearchJob {
	t.Helper()
	job, err := repo.Create(context.Background(), model.CreateJobRecord{
		SessionID:       "sess-" + uuid.NewString(),
		ExternalTaskRef: "resp_" + uuid.NewString(),
		Status:          status,
		TemplateKind:    model.TemplateStrategy,
		PromptSnapshot:  "assembled prompt",
	})
	require.NoError(t, err)
	return job
}

func TestJobRepoCreateAndGet(t *testing.T) {
	repo, _ := setupJobRepo(t)
	ctx := context.Background()

	job := createIntegrationJob(t, repo, model.JobStatusQueued)
	require.NotEmpty(t, job.ID)
	assert.Equal(t, model.JobStatusQueued, job.Status)
	assert.Equal(t, model.TemplateStrategy, job.TemplateKind)
	assert.Nil(t, job.RawResult)
	assert.Nil(t, job.CompletedAt)

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, job.ExternalTaskRef, got.ExternalTaskRef)
	assert.Equal(t, "assembled prompt", got.PromptSnapshot)

	t.Run("missing job", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		require.ErrorIs(t, err, model.ErrJobNotFound)
	})

	t.Run("duplicate task ref maps to conflict", func(t *testing.T) {
		_, err := repo.Create(ctx, model.CreateJobRecord{
			SessionID:       "sess-other",
			ExternalTaskRef: job.ExternalTaskRef,
			Status:          model.JobStatusQueued,
			TemplateKind:    model.TemplateStrategy,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err), "expected conflict, got %v", err)
	})
}

func TestJobRepoAdvanceStatusIsMonotonic(t *testing.T) {
	repo, _ := setupJobRepo(t)
	ctx := context.Background()

	job := createIntegrationJob(t, repo, model.JobStatusPending)

	applied, err := repo.AdvanceStatus(ctx, job.ID, model.JobStatusQueued)
	require.NoError(t, err)
	assert.True(t, applied)

	// Same status again is not a forward move.
	applied, err = repo.AdvanceStatus(ctx, job.ID, model.JobStatusQueued)
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = repo.AdvanceStatus(ctx, job.ID, model.JobStatusInProgress)
	require.NoError(t, err)
	assert.True(t, applied)

	// Backward move never applies.
	applied, err = repo.AdvanceStatus(ctx, job.ID, model.JobStatusQueued)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusInProgress, got.Status)

	t.Run("terminal target rejected", func(t *testing.T) {
		_, err := repo.AdvanceStatus(ctx, job.ID, model.JobStatusCompleted)
		require.Error(t, err)
	})
}

func TestJobRepoCompleteWritesExactlyOnce(t *testing.T) {
	repo, _ := setupJobRepo(t)
	ctx := context.Background()

	job := createIntegrationJob(t, repo, model.JobStatusQueued)
	result := model.RawResult{
		OutputText: "the research prose",
		ToolTrace:  []model.ToolInvocation{{Kind: "web_search_call", Query: "competitor pricing"}},
		ReceivedAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}

	applied, err := repo.Complete(ctx, core.CompleteJobParams{ID: job.ID, Result: result})
	require.NoError(t, err)
	assert.True(t, applied)

	// The second terminal write is a no-op, not an error.
	applied, err = repo.Complete(ctx, core.CompleteJobParams{ID: job.ID, Result: result})
	require.NoError(t, err)
	assert.False(t, applied)

	// A racing fail loses against the completed row.
	applied, err = repo.Fail(ctx, job.ID, "too late")
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	require.NotNil(t, got.RawResult)
	assert.Equal(t, result, *got.RawResult)
	assert.Nil(t, got.Error)
	require.NotNil(t, got.CompletedAt)
}

func TestJobRepoFailWritesExactlyOnce(t *testing.T) {
	repo, _ := setupJobRepo(t)
	ctx := context.Background()

	job := createIntegrationJob(t, repo, model.JobStatusQueued)

	applied, err := repo.Fail(ctx, job.ID, "model refused")
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.Fail(ctx, job.ID, "again")
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = repo.Complete(ctx, core.CompleteJobParams{ID: job.ID, Result: model.RawResult{OutputText: "late"}})
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, "model refused", *got.Error)
	assert.Nil(t, got.RawResult)
}

func TestJobRepoSetStructuredResultGuard(t *testing.T) {
	repo, _ := setupJobRepo(t)
	ctx := context.Background()

	job := createIntegrationJob(t, repo, model.JobStatusQueued)
	doc := []byte(`{"title":"Trailblazers"}`)

	// Not completed yet: the guarded write must not apply.
	applied, err := repo.SetStructuredResult(ctx, job.ID, doc)
	require.NoError(t, err)
	assert.False(t, applied)

	_, err = repo.Complete(ctx, core.CompleteJobParams{ID: job.ID, Result: model.RawResult{OutputText: "prose"}})
	require.NoError(t, err)

	applied, err = repo.SetStructuredResult(ctx, job.ID, doc)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(got.StructuredResult))
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	require.NotNil(t, got.RawResult)
	assert.Equal(t, "prose", got.RawResult.OutputText)
}

func TestJobRepoListing(t *testing.T) {
	repo, _ := setupJobRepo(t)
	ctx := context.Background()

	active := createIntegrationJob(t, repo, model.JobStatusQueued)
	done := createIntegrationJob(t, repo, model.JobStatusQueued)
	_, err := repo.Fail(ctx, done.ID, "stopped")
	require.NoError(t, err)

	jobs, err := repo.ListActive(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, active.ID, jobs[0].ID)

	bySession, err := repo.ListBySession(ctx, active.SessionID)
	require.NoError(t, err)
	require.Len(t, bySession, 1)
	assert.Equal(t, active.ID, bySession[0].ID)
}

func TestJobRepoFailStale(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	past := time.Now().Add(-3 * time.Hour)
	oldRepo := NewJobRepo(db, RepoConfig{TimeProvider: NewFixedTimeProvider(past)})
	repo := NewJobRepo(db, RepoConfig{})
	ctx := context.Background()

	stale := createIntegrationJob(t, oldRepo, model.JobStatusQueued)
	fresh := createIntegrationJob(t, repo, model.JobStatusQueued)
	finished := createIntegrationJob(t, oldRepo, model.JobStatusQueued)
	_, err := repo.Complete(ctx, core.CompleteJobParams{ID: finished.ID, Result: model.RawResult{OutputText: "done"}})
	require.NoError(t, err)

	count, err := repo.FailStale(ctx, 2*time.Hour, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := repo.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	require.NotNil(t, got.Error)

	got, err = repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusQueued, got.Status)

	got, err = repo.GetByID(ctx, finished.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
}

func TestJobRepoNotifyOnInsertWakesWaiter(t *testing.T) {
	repo, _ := setupJobRepo(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	waited := make(chan error, 1)
	go func() { waited <- repo.WaitForNewJob(ctx) }()

	// The waiter needs a moment to LISTEN before the insert fires; keep
	// inserting until the notification lands.
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-waited:
			require.NoError(t, err)
			return
		case <-ticker.C:
			createIntegrationJob(t, repo, model.JobStatusQueued)
		case <-ctx.Done():
			t.Fatal("insert notification never woke the waiter")
		}
	}
}
