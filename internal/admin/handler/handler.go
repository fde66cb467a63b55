// Package handler exposes the admin surface.
//
// This is the only place internal score bundles serialize to a client.
// Every route sits behind the admin token middleware.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	dogmodels "pawport/internal/dog/models"
	"pawport/internal/platform/middleware"
	"pawport/internal/transport/http/shared"
	vermodels "pawport/internal/verification/models"
	id "pawport/pkg/domain"
	dErrors "pawport/pkg/domain-errors"
	"pawport/pkg/platform/audit"
	"pawport/pkg/requestcontext"
)

const defaultAuditLimit = 50

// Service is the verification surface the admin handler needs.
type Service interface {
	BundleForDog(ctx context.Context, dogID id.DogID) (*vermodels.InternalScoreBundle, error)
	Recompute(ctx context.Context, dogID id.DogID) error
	ReviewQueue(ctx context.Context) ([]*vermodels.InternalScoreBundle, error)
	OverrideLevel(ctx context.Context, dogID id.DogID, level dogmodels.VerificationLevel, adminActor string) error
}

// Handler handles admin endpoints.
type Handler struct {
	logger         *slog.Logger
	verification   Service
	auditLog       audit.Store
	adminTokenHash string
}

func New(verification Service, auditLog audit.Store, adminTokenHash string, logger *slog.Logger) *Handler {
	return &Handler{
		logger:         logger,
		verification:   verification,
		auditLog:       auditLog,
		adminTokenHash: adminTokenHash,
	}
}

// Register registers the admin routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	adminRouter := chi.NewRouter()
	adminRouter.Use(middleware.RequireAdminToken(h.adminTokenHash, h.logger))
	adminRouter.Get("/dogs/{dogID}/scores", h.handleGetScores)
	adminRouter.Post("/dogs/{dogID}/recompute", h.handleRecompute)
	adminRouter.Put("/dogs/{dogID}/verification-level", h.handleOverrideLevel)
	adminRouter.Get("/review-queue", h.handleReviewQueue)
	adminRouter.Get("/dogs/{dogID}/audit", h.handleDogAudit)
	adminRouter.Get("/audit/recent", h.handleRecentAudit)

	r.Mount("/admin", adminRouter)
}

func (h *Handler) handleGetScores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dogID, err := id.ParseDogID(chi.URLParam(r, "dogID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	bundle, err := h.verification.BundleForDog(ctx, dogID)
	if err != nil {
		h.writeServiceError(ctx, w, "get scores", dogID, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, bundle)
}

func (h *Handler) handleRecompute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dogID, err := id.ParseDogID(chi.URLParam(r, "dogID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.verification.Recompute(ctx, dogID); err != nil {
		h.writeServiceError(ctx, w, "recompute", dogID, err)
		return
	}
	bundle, err := h.verification.BundleForDog(ctx, dogID)
	if err != nil {
		h.writeServiceError(ctx, w, "get scores after recompute", dogID, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, bundle)
}

type overrideLevelRequest struct {
	Level string `json:"level"`
	Actor string `json:"actor"`
}

func (req overrideLevelRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Level, validation.Required),
		validation.Field(&req.Actor, validation.Required, validation.Length(1, 128)),
	)
}

func (h *Handler) handleOverrideLevel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dogID, err := id.ParseDogID(chi.URLParam(r, "dogID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req overrideLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid override request"))
		return
	}
	level, err := dogmodels.ParseVerificationLevel(req.Level)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.verification.OverrideLevel(ctx, dogID, level, req.Actor); err != nil {
		h.writeServiceError(ctx, w, "override level", dogID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReviewQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	queue, err := h.verification.ReviewQueue(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list review queue failed",
			"request_id", requestcontext.RequestID(ctx), "error", err.Error())
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "list review queue failed"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"queue": queue})
}

func (h *Handler) handleDogAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dogID, err := id.ParseDogID(chi.URLParam(r, "dogID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	events, err := h.auditLog.ListByDog(ctx, dogID)
	if err != nil {
		h.writeServiceError(ctx, w, "list audit trail", dogID, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) handleRecentAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	events, err := h.auditLog.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list recent audit failed",
			"request_id", requestcontext.RequestID(ctx), "error", err.Error())
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "list audit failed"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, dogID id.DogID, err error) {
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		shared.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, op+" failed",
		"request_id", requestcontext.RequestID(ctx), "dog_id", dogID.String(), "error", err.Error())
	shared.WriteError(w, dErrors.New(dErrors.CodeInternal, op+" failed"))
}
