package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatusValid(t *testing.T) {
	for _, s := range []JobStatus{
		JobStatusPending, JobStatusQueued, JobStatusInProgress,
		JobStatusCompleted, JobStatusFailed,
	} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, JobStatus("cancelled").Valid())
	assert.False(t, JobStatus("").Valid())
}

func TestJobStatusTerminal(t *testing.T) {
	assert.True(t, JobStatusCompleted.Terminal())
	assert.True(t, JobStatusFailed.Terminal())
	assert.False(t, JobStatusPending.Terminal())
	assert.False(t, JobStatusQueued.Terminal())
	assert.False(t, JobStatusInProgress.Terminal())
}

func TestJobStatusRankMonotonic(t *testing.T) {
	order := []JobStatus{JobStatusPending, JobStatusQueued, JobStatusInProgress, JobStatusCompleted}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i].Rank(), order[i-1].Rank())
	}
	assert.Equal(t, JobStatusCompleted.Rank(), JobStatusFailed.Rank())
	assert.Equal(t, -1, JobStatus("bogus").Rank())
}

func TestTemplateKindUnmarshalText(t *testing.T) {
	var k TemplateKind
	require.NoError(t, k.UnmarshalText([]byte(" Strategy ")))
	assert.Equal(t, TemplateStrategy, k)

	require.NoError(t, k.UnmarshalText([]byte("big-idea")))
	assert.Equal(t, TemplateBigIdea, k)

	assert.Error(t, k.UnmarshalText([]byte("novel")))
}

func TestLaunchJobRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     LaunchJobRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  LaunchJobRequest{SessionID: "sess-1", TemplateKind: TemplateStrategy},
		},
		{
			name:    "missing session",
			req:     LaunchJobRequest{TemplateKind: TemplateStrategy},
			wantErr: true,
		},
		{
			name:    "blank session",
			req:     LaunchJobRequest{SessionID: "   ", TemplateKind: TemplateBigIdea},
			wantErr: true,
		},
		{
			name:    "invalid template kind",
			req:     LaunchJobRequest{SessionID: "sess-1", TemplateKind: "poem"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResearchJobStructured(t *testing.T) {
	j := &ResearchJob{}
	assert.False(t, j.Structured())
	j.StructuredResult = []byte(`{"title":"x"}`)
	assert.True(t, j.Structured())
}
