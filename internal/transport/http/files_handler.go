package http

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "github.com/mpgamer75/code-altice/internal/errors"
)

// uploadField is the multipart form field holding the files
const uploadField = "files"

// FilesHandler serves the input-directory management endpoints
type FilesHandler struct {
	service      FileService
	errorHandler *apperrors.ErrorHandler
	maxUpload    int64
	logger       *slog.Logger
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(service FileService, errorHandler *apperrors.ErrorHandler, maxUpload int64, logger *slog.Logger) *FilesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	return &FilesHandler{
		service:      service,
		errorHandler: errorHandler,
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("handler", "files")),
	}
}

// Routes returns a chi router for the files endpoints
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Upload)
	r.Delete("/{name}", h.Remove)
	r.Get("/{name}/report", h.Report)
	return r
}

// List handles GET /api/files
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	table, err := h.service.Status()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"files": table,
		"count": len(table),
	})
}

// Upload handles POST /api/files with one or more multipart files
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			problem := apperrors.NewProblemDetails(http.StatusRequestEntityTooLarge,
				apperrors.TypePayloadTooLarge, "Payload Too Large",
				fmt.Sprintf("upload exceeds %d bytes", h.maxUpload), r.URL.Path).
				WithExtension("max_size", h.maxUpload)
			render.Render(w, r, problem)
			return
		}
		h.errorHandler.HandleError(w, r, apperrors.NewValidationError("invalid multipart form: "+err.Error()))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		h.errorHandler.HandleError(w, r, apperrors.NewValidationError(
			fmt.Sprintf("no files in form field %q", uploadField)))
		return
	}

	saved := make([]string, 0, len(headers))
	for _, fh := range headers {
		name, err := h.save(fh)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		saved = append(saved, name)
	}

	h.logger.InfoContext(r.Context(), "files uploaded", slog.Int("count", len(saved)))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{"imported": saved})
}

func (h *FilesHandler) save(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	name := filepath.Base(fh.Filename)
	if _, err := h.service.Save(name, f); err != nil {
		return "", err
	}
	return name, nil
}

// Remove handles DELETE /api/files/{name}
func (h *FilesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(chi.URLParam(r, "name")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Report handles GET /api/files/{name}/report. It returns the final report
// when present, else the intermediate one.
func (h *FilesHandler) Report(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.Preview(chi.URLParam(r, "name"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.PlainText(w, r, content)
}
