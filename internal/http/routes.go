package httpx

import (
	"log/slog"
	"net/http"

	"github.com/campaignforge/research-api/internal/core"
	"github.com/campaignforge/research-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Launcher   *service.LauncherService
	Reconciler *service.ReconcilerService
	Extractor  *service.ExtractorService
	Jobs       core.JobRepository
	Logger     *slog.Logger
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	handlers := &ResearchJobHandlers{
		Launcher:   services.Launcher,
		Reconciler: services.Reconciler,
		Extractor:  services.Extractor,
		Repo:       services.Jobs,
		Logger:     services.Logger,
	}
	registerResearchJobRoutes(mux, handlers)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

func registerResearchJobRoutes(mux *http.ServeMux, h *ResearchJobHandlers) {
	mux.Handle("POST /api/research-jobs", http.HandlerFunc(h.LaunchJob))
	mux.Handle("GET /api/research-jobs/{id}", http.HandlerFunc(h.GetJob))
	mux.Handle("GET /api/research-jobs/{id}/status", http.HandlerFunc(h.GetJobStatus))
	mux.Handle("POST /api/research-jobs/{id}/structure", http.HandlerFunc(h.StructureJob))
	mux.Handle("GET /api/sessions/{session_id}/research-jobs", http.HandlerFunc(h.ListSessionJobs))
}
