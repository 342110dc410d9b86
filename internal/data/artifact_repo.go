package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/campaignforge/research-api/internal/domain/model"
	apperrors "github.com/campaignforge/research-api/internal/errors"
)

// Artifact kinds stored in session_artifacts. One row per kind per session,
// written by the upstream wizard steps.
const (
	artifactKindBrandContext        = "brand_context"
	artifactKindParsedBrief         = "parsed_brief"
	artifactKindExplorationChoices  = "exploration_choices"
	artifactKindConsultationSummary = "consultation_summary"
)

// ArtifactRepo reads upstream session artifacts from Postgres.
type ArtifactRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewArtifactRepo creates a new ArtifactRepo.
func NewArtifactRepo(db *sql.DB, cfg RepoConfig) *ArtifactRepo {
	return &ArtifactRepo{DB: db, logger: cfg.Logger}
}

// GetSessionArtifacts loads every artifact the session has produced into one
// optional-field struct. Missing rows leave the corresponding field nil.
func (r *ArtifactRepo) GetSessionArtifacts(ctx context.Context, sessionID string) (*model.SessionArtifacts, error) {
	rows, err := r.DB.QueryContext(ctx, `
      SELECT kind, content
      FROM session_artifacts
      WHERE session_id = $1
    `, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session artifacts: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	artifacts := &model.SessionArtifacts{SessionID: sessionID}
	for rows.Next() {
		var kind, content string
		if err := rows.Scan(&kind, &content); err != nil {
			return nil, fmt.Errorf("scan session artifact: %w", err)
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		c := content
		switch kind {
		case artifactKindBrandContext:
			artifacts.BrandContext = &c
		case artifactKindParsedBrief:
			artifacts.ParsedBrief = &c
		case artifactKindExplorationChoices:
			artifacts.ExplorationChoices = &c
		case artifactKindConsultationSummary:
			artifacts.ConsultationSummary = &c
		default:
			if r.logger != nil {
				r.logger.WarnContext(ctx, "skipping unknown artifact kind",
					"session_id", sessionID,
					"kind", kind,
				)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return artifacts, nil
}
