// Package handler exposes document upload and download over HTTP.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"onboard/internal/files/models"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/httputil"
	"onboard/pkg/requestcontext"
)

// multipartOverhead allows for part headers and boundaries around the file.
const multipartOverhead = 64 << 10

// Service is the files service as the handler uses it.
type Service interface {
	Upload(ctx context.Context, owner id.UserID, fileName string, content io.Reader) (*models.StoredFile, error)
	Open(ctx context.Context, callerID id.UserID, isHR bool, owner, name string) (io.ReadCloser, string, error)
	MaxBytes() int64
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the routes. The router must already require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/files/upload", h.HandleUpload)
	r.Get("/files/{owner}/{name}", h.HandleDownload)
}

// UploadResponse is the document reference a client lists in its application.
type UploadResponse struct {
	FileName    string    `json:"fileName"`
	FileURL     string    `json:"fileUrl"`
	UploadDate  time.Time `json:"uploadDate"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
}

// HandleUpload stores the multipart part named "file".
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.service.MaxBytes()+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart/form-data body required"))
		return
	}

	stored, err := h.uploadFilePart(ctx, mr, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "file upload failed", "error", err, "user_id", userID, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, &UploadResponse{
		FileName:    stored.FileName,
		FileURL:     stored.URL,
		UploadDate:  stored.UploadDate,
		ContentType: stored.ContentType,
		Size:        stored.Size,
	})
}

func (h *Handler) uploadFilePart(ctx context.Context, mr *multipart.Reader, owner id.UserID) (*models.StoredFile, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, dErrors.NewValidation("file part required",
				dErrors.FieldError{Field: "file", Message: "is required"})
		}
		if err != nil {
			return nil, bodyError(err)
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}
		stored, err := h.service.Upload(ctx, owner, part.FileName(), part)
		_ = part.Close()
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, bodyError(err)
			}
			return nil, err
		}
		return stored, nil
	}
}

// HandleDownload streams a stored file to its owner or to HR.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rc, contentType, err := h.service.Open(ctx, userID, requestcontext.IsHR(ctx), chi.URLParam(r, "owner"), chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(ctx, "file download interrupted",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return dErrors.NewValidation("request body too large",
			dErrors.FieldError{Field: "file", Message: "file is too large"})
	}
	return dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed multipart body")
}
