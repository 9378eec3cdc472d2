// Package handler serves the onboarding application to employees and the
// review screens to HR.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboard/internal/audit"
	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/httputil"
	limits "onboard/pkg/platform/validation"
	"onboard/pkg/requestcontext"
)

// Service is the onboarding workflow as the handler uses it.
// It returns domain objects; response DTOs are built here.
type Service interface {
	Submit(ctx context.Context, userID id.UserID, form *models.ApplicationForm, staged models.StagedDocuments) (*models.Application, error)
	GetForUser(ctx context.Context, userID id.UserID) (*models.Application, error)
	VisaStatus(ctx context.Context, userID id.UserID) (models.VisaStatus, error)
	Get(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.Application, error)
	Approve(ctx context.Context, actorID id.UserID, appID id.ApplicationID) (*models.Application, error)
	Reject(ctx context.Context, actorID id.UserID, appID id.ApplicationID, feedback string) (*models.Application, error)
	History(ctx context.Context, appID id.ApplicationID) ([]audit.Event, error)
	ListEmployees(ctx context.Context) ([]*models.Application, error)
	ListVisaHolders(ctx context.Context) ([]models.VisaStatus, error)
}

type Handler struct {
	service      Service
	logger       *slog.Logger
	maxFileBytes int64
}

type Option func(*Handler)

// WithMaxFileBytes caps each file part of a multipart submission.
func WithMaxFileBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxFileBytes = n
		}
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger, maxFileBytes: limits.DefaultMaxUploadSize}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the employee routes. The router must require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/onboarding/application", h.HandleGetOwn)
	r.Post("/onboarding/application", h.HandleSubmit)
	r.Get("/onboarding/visa", h.HandleVisaStatus)
}

// RegisterHR mounts the review routes. The router must require the HR role.
func (h *Handler) RegisterHR(r chi.Router) {
	r.Get("/hr/applications", h.HandleList)
	r.Get("/hr/applications/{id}", h.HandleGet)
	r.Post("/hr/applications/{id}/approve", h.HandleApprove)
	r.Post("/hr/applications/{id}/reject", h.HandleReject)
	r.Get("/hr/applications/{id}/history", h.HandleHistory)
	r.Get("/hr/employees", h.HandleEmployees)
	r.Get("/hr/visa", h.HandleVisaHolders)
}

// HandleGetOwn returns the caller's application, or never_submitted.
func (h *Handler) HandleGetOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.GetForUser(ctx, userID)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		httputil.WriteJSON(w, http.StatusOK, NeverSubmittedResponse{Status: string(models.StatusNeverSubmitted)})
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "get application failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

// HandleSubmit accepts a JSON form, or a multipart body with an "application"
// JSON part and one file part per document type. A first submission answers
// 201, a resubmission 200.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	form, staged, err := h.readSubmission(w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "unreadable submission", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Submit(ctx, userID, form, staged)
	if err != nil {
		h.logger.WarnContext(ctx, "submit application failed", "error", err, "user_id", userID, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if app.Version == 1 {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, toApplicationResponse(app))
}

func (h *Handler) HandleVisaStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	vs, err := h.service.VisaStatus(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVisaResponse(vs))
}

// HandleList lists applications in one status, pending when unspecified.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw := r.URL.Query().Get("status")
	if raw == "" {
		raw = string(models.StatusPending)
	}
	status, err := models.ParseStatus(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	apps, err := h.service.ListByStatus(ctx, status)
	if err != nil {
		h.logger.ErrorContext(ctx, "list applications failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSummaries(apps))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, ok := parseApplicationID(w, r)
	if !ok {
		return
	}

	app, err := h.service.Get(ctx, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDetailResponse(app))
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	appID, ok := parseApplicationID(w, r)
	if !ok {
		return
	}

	app, err := h.service.Approve(ctx, actorID, appID)
	if err != nil {
		h.logger.WarnContext(ctx, "approve failed", "error", err, "application_id", appID, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDetailResponse(app))
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	appID, ok := parseApplicationID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBodySize)
	req, ok := httputil.DecodeAndPrepare[models.RejectRequest](w, r, h.logger)
	if !ok {
		return
	}

	app, err := h.service.Reject(ctx, actorID, appID, req.Feedback)
	if err != nil {
		h.logger.WarnContext(ctx, "reject failed", "error", err, "application_id", appID, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDetailResponse(app))
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, ok := parseApplicationID(w, r)
	if !ok {
		return
	}

	events, err := h.service.History(ctx, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toHistory(events))
}

func (h *Handler) HandleEmployees(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.ListEmployees(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEmployeeProfiles(apps))
}

func (h *Handler) HandleVisaHolders(w http.ResponseWriter, r *http.Request) {
	holders, err := h.service.ListVisaHolders(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVisaResponses(holders))
}

func parseApplicationID(w http.ResponseWriter, r *http.Request) (id.ApplicationID, bool) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid application id"))
		return id.ApplicationID{}, false
	}
	return appID, true
}
