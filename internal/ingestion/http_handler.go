package ingestion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/liftdesk/internal/domain"
)

const defaultMaxUploadBytes = 32 << 20

// Handler exposes the import service over HTTP.
type Handler struct {
	service        *Service
	maxUploadBytes int64
	logger         logrus.FieldLogger
}

// NewHTTPHandler wraps the service. maxUploadBytes <= 0 selects 32 MiB.
func NewHTTPHandler(service *Service, maxUploadBytes int64, logger logrus.FieldLogger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{service: service, maxUploadBytes: maxUploadBytes, logger: logger}
}

// Routes returns the import routes, meant to be mounted at /api/tenants/{tenantID}/imports.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listRuns)
	r.Get("/{kind}/template", h.template)
	r.Post("/{kind}/preview", h.preview)
	r.Post("/{kind}", h.importFile)
	r.Post("/{kind}/previews/{token}/commit", h.commitPreview)
	return r
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	runs, err := h.service.ListImportRuns(r.Context(), tenantID, limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) template(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	file, err := h.service.Template(r.Context(), tenantID, domain.ImportKind(chi.URLParam(r, "kind")), r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Body)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	req, ok := h.uploadRequest(w, r)
	if !ok {
		return
	}
	result, err := h.service.Preview(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	req, ok := h.uploadRequest(w, r)
	if !ok {
		return
	}
	result, err := h.service.Import(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) commitPreview(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	kind := domain.ImportKind(chi.URLParam(r, "kind"))
	result, err := h.service.CommitPreview(r.Context(), tenantID, kind, chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) uploadRequest(w http.ResponseWriter, r *http.Request) (Request, bool) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return Request{}, false
	}

	if r.ContentLength > h.maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes)))
		return Request{}, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes)))
			return Request{}, false
		}
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("invalid form data: %v", err)))
		return Request{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("file required: %v", err)))
		return Request{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("failed to read file: %v", err)))
		return Request{}, false
	}

	return Request{
		TenantID: tenantID,
		Kind:     domain.ImportKind(chi.URLParam(r, "kind")),
		FileName: header.Filename,
		Data:     bytes.NewReader(data),
	}, true
}

func (h *Handler) tenantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "tenantID")))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("invalid tenant id: %v", err)))
		return uuid.Nil, false
	}
	if id == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorBody(ErrTenantRequired.Error()))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, errorBody(ErrPermissionDenied.Error()))
	case errors.Is(err, ErrUnknownKind), errors.Is(err, ErrPreviewNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrTenantRequired):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, ErrNoValidRows):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, ErrCommitFailed):
		writeJSON(w, http.StatusInternalServerError, errorBody(ErrCommitFailed.Error()))
	default:
		h.logger.WithError(err).Error("import request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
