// Package handler serves account registration and login.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboard/internal/identity/models"
	"onboard/pkg/platform/httputil"
	"onboard/pkg/requestcontext"
)

type Service interface {
	Register(ctx context.Context, creds *models.Credentials) (*models.User, error)
	Login(ctx context.Context, creds *models.Credentials) (*models.TokenResponse, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

// HandleRegister creates an employee account. HR accounts are only seeded
// through configuration.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.Credentials](w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.service.Register(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "register failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.ToUserResponse(user))
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.Credentials](w, r, h.logger)
	if !ok {
		return
	}

	resp, err := h.service.Login(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, http.StatusOK, resp)
}
