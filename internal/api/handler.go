// internal/api/handler.go
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	custom_errors "package-pulse/internal/errors"
	"package-pulse/internal/model"
)

const (
	msgPackageRequired = "Package name is required"
	msgCheckFailed     = "Failed to check package. Please try again."
)

// Checker resolves package health reports.
type Checker interface {
	Check(ctx context.Context, name string) (*model.HealthReport, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	checker Checker
	logger  *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
// metrics is mounted at /metrics when non-nil.
func NewRouter(checker Checker, metrics http.Handler, logger *slog.Logger, timeout time.Duration) http.Handler {
	h := &Handler{
		checker: checker,
		logger:  logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", h.healthCheck)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	r.Route("/api", func(r chi.Router) {
		r.Get("/check", h.checkPackage)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// checkPackage handles the request for a package health report.
// GET /api/check?package=<name>
func (h *Handler) checkPackage(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("package")

	report, err := h.checker.Check(r.Context(), name)
	if err != nil {
		var (
			validation *custom_errors.ValidationError
			notFound   *custom_errors.NotFoundError
		)
		switch {
		case errors.As(err, &validation):
			h.respondWithError(w, http.StatusBadRequest, msgPackageRequired)
		case errors.As(err, &notFound):
			h.respondWithError(w, http.StatusNotFound, `Package "`+notFound.Package+`" not found on npm`)
		default:
			h.logger.Error("Failed to check package", "package", name, "request_id", middleware.GetReqID(r.Context()), "error", err)
			h.respondWithError(w, http.StatusInternalServerError, msgCheckFailed)
		}
		return
	}

	h.respondWithJSON(w, http.StatusOK, report)
}
