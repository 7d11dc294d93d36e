package http

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/mpgamer75/code-altice/internal/errors"
	"github.com/mpgamer75/code-altice/internal/operations"
)

// ListJobsQuery holds the query parameters of GET /api/jobs
type ListJobsQuery struct {
	Status string `validate:"omitempty,oneof=pending running completed failed cancelled"`
	Kind   string `validate:"omitempty,oneof=extract finalize run"`
	Limit  int    `validate:"min=0,max=1000"`
}

// JobsHandler starts batch phases and reports on their jobs
type JobsHandler struct {
	service      JobService
	errorHandler *apperrors.ErrorHandler
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(service JobService, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *JobsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobsHandler{
		service:      service,
		errorHandler: errorHandler,
		validate:     validator.New(),
		logger:       logger.With(slog.String("handler", "jobs")),
	}
}

// PhaseRoutes returns the router mounted at /api/phases
func (h *JobsHandler) PhaseRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{kind}", h.StartPhase)
	return r
}

// Routes returns the router mounted at /api/jobs
func (h *JobsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListJobs)
	r.Get("/{id}", h.GetJob)
	r.Delete("/{id}", h.CancelJob)
	return r
}

// StartPhase handles POST /api/phases/{kind}. The phase runs on the job
// queue; the response carries the pending job.
func (h *JobsHandler) StartPhase(w http.ResponseWriter, r *http.Request) {
	kind, err := operations.ParseJobKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	job, err := h.service.Enqueue(r.Context(), kind)
	if err != nil {
		if stderrors.Is(err, operations.ErrQueueFull) {
			w.Header().Set("Retry-After", "5")
			problem := apperrors.NewProblemDetails(http.StatusServiceUnavailable,
				apperrors.TypeConflict, "Queue Full", err.Error(), r.URL.Path)
			render.Render(w, r, problem)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "phase requested",
		slog.String("kind", string(kind)),
		slog.String("job_id", job.ID))

	w.Header().Set("Location", "/api/jobs/"+job.ID)
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, job)
}

// ListJobs handles GET /api/jobs?status=&kind=&limit=
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := ListJobsQuery{
		Status: r.URL.Query().Get("status"),
		Kind:   r.URL.Query().Get("kind"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apperrors.NewValidationError(fmt.Sprintf("invalid limit: %q", raw)))
			return
		}
		q.Limit = n
	}
	if err := h.validate.Struct(q); err != nil {
		h.errorHandler.HandleError(w, r, validationError(err))
		return
	}

	jobs, err := h.service.ListJobs(operations.JobFilter{
		Status: operations.JobStatus(q.Status),
		Kind:   operations.JobKind(q.Kind),
		Limit:  q.Limit,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []*operations.Job{}
	}

	render.JSON(w, r, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.GetJob(chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, job)
}

// CancelJob handles DELETE /api/jobs/{id}
func (h *JobsHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.Cancel(chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, job)
}

// validationError flattens validator errors into one validation AppError
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return apperrors.NewValidationError(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return apperrors.NewValidationError(strings.Join(msgs, "; "))
}
