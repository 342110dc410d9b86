package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/campaignforge/research-api/internal/core"
	"github.com/campaignforge/research-api/internal/domain/extract"
	"github.com/campaignforge/research-api/internal/domain/model"
	apperrors "github.com/campaignforge/research-api/internal/errors"
	"github.com/campaignforge/research-api/internal/service"
)

// ResearchJobHandlers provides HTTP handlers for research job operations.
type ResearchJobHandlers struct {
	Launcher   *service.LauncherService
	Reconciler *service.ReconcilerService
	Extractor  *service.ExtractorService
	Repo       core.JobRepository
	Logger     *slog.Logger
}

// LaunchJob handles HTTP requests to start a new research job.
func (h *ResearchJobHandlers) LaunchJob(w http.ResponseWriter, r *http.Request) {
	var req model.LaunchJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Launcher.Launch(r.Context(), &req)
	if err != nil {
		writeResearchError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, job)
}

// GetJob handles HTTP requests to read one job, reconciling its status with
// the remote provider first. A transient provider failure degrades to the
// stored record rather than failing the read.
func (h *ResearchJobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	job, err := h.Reconciler.Reconcile(r.Context(), id)
	if err != nil {
		var transient *service.PollTransientError
		if !errors.As(err, &transient) {
			writeResearchError(w, err)
			return
		}
		if h.Logger != nil {
			h.Logger.WarnContext(r.Context(), "reconcile on read degraded to stored record",
				"job_id", id, "error", err)
		}
		if job, err = h.Repo.GetByID(r.Context(), id); err != nil {
			writeResearchError(w, err)
			return
		}
	}

	WriteJSON(w, http.StatusOK, job)
}

// GetJobStatus handles HTTP requests for the narrow status projection used by
// UI pollers. Reconciles first, with the same degraded-read fallback as GetJob.
func (h *ResearchJobHandlers) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	job, err := h.Reconciler.Reconcile(r.Context(), id)
	if err != nil {
		var transient *service.PollTransientError
		if !errors.As(err, &transient) {
			writeResearchError(w, err)
			return
		}
		if job, err = h.Repo.GetByID(r.Context(), id); err != nil {
			writeResearchError(w, err)
			return
		}
	}

	WriteJSON(w, http.StatusOK, model.JobStatusResponse{
		Status:      job.Status,
		Structured:  job.Structured(),
		CompletedAt: job.CompletedAt,
		Error:       job.Error,
	})
}

// StructureJob handles HTTP requests to run the structuring pass on a
// completed job.
func (h *ResearchJobHandlers) StructureJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	job, err := h.Extractor.Structure(r.Context(), id)
	if err != nil {
		writeResearchError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// ListSessionJobs handles HTTP requests to list all research jobs for a
// session, newest first.
func (h *ResearchJobHandlers) ListSessionJobs(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	if sessionID == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_path",
			Err:     errors.New("session id is required"),
		})
		return
	}

	jobs, err := h.Repo.ListBySession(r.Context(), sessionID)
	if err != nil {
		writeResearchError(w, err)
		return
	}
	if jobs == nil {
		jobs = []*model.ResearchJob{}
	}

	WriteJSON(w, http.StatusOK, jobs)
}

// jobIDFromPath extracts and validates the job id path value. Writes a 400
// response and returns false when the value is not a UUID.
func jobIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.PathValue("id")
	parsed, err := uuid.Parse(raw)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_path",
			Err:     errors.New("job id must be a UUID"),
		})
		return "", false
	}
	return parsed.String(), true
}

// writeResearchError translates service and domain errors into the JSON error
// envelope with an appropriate status code.
func writeResearchError(w http.ResponseWriter, err error) {
	var (
		startErr     *service.StartError
		transientErr *service.PollTransientError
		parseErr     *extract.ParseError
		schemaErr    *model.SchemaError
	)

	switch {
	case errors.Is(err, model.ErrJobNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
	case errors.As(err, &startErr):
		WriteError(w, ErrorParams{Code: http.StatusUnprocessableEntity, ErrCode: "launch_failed", Err: err})
	case errors.As(err, &transientErr):
		WriteError(w, ErrorParams{Code: http.StatusBadGateway, ErrCode: "provider_unavailable", Err: err})
	case errors.As(err, &parseErr):
		WriteError(w, ErrorParams{Code: http.StatusUnprocessableEntity, ErrCode: "extraction_failed", Err: err})
	case errors.As(err, &schemaErr):
		WriteError(w, ErrorParams{Code: http.StatusUnprocessableEntity, ErrCode: "schema_rejected", Err: err})
	default:
		writeAppError(w, err)
	}
}

// writeAppError maps the data-layer error taxonomy onto status codes.
func writeAppError(w http.ResponseWriter, err error) {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound:
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
	case apperrors.ErrCodeConflict:
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "conflict", Err: err})
	case apperrors.ErrCodeValidation, apperrors.ErrCodeForeignKey:
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: err})
	case apperrors.ErrCodeTimeout:
		WriteError(w, ErrorParams{Code: http.StatusGatewayTimeout, ErrCode: "timeout", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal", Err: err})
	}
}
