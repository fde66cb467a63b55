// Package handler exposes the business scan route.
//
// The response body is exactly the public summary. No score, flag, or
// breed datum has a path into this handler.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pawport/internal/platform/middleware"
	"pawport/internal/publicstatus"
	"pawport/internal/transport/http/shared"
	id "pawport/pkg/domain"
	dErrors "pawport/pkg/domain-errors"
	"pawport/pkg/requestcontext"
)

// Service is the scan surface the handler needs.
type Service interface {
	Scan(ctx context.Context, dogID id.DogID) (publicstatus.Summary, error)
}

// Handler handles business scan endpoints.
type Handler struct {
	logger   *slog.Logger
	scans    Service
	verifier *middleware.Verifier
}

func New(scans Service, verifier *middleware.Verifier, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, scans: scans, verifier: verifier}
}

// Register registers the scan routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	scanRouter := chi.NewRouter()
	scanRouter.Use(middleware.RequireBusinessAuth(h.verifier, h.logger))
	scanRouter.Get("/dogs/{dogID}", h.handleScan)

	r.Mount("/scan", scanRouter)
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dogID, err := id.ParseDogID(chi.URLParam(r, "dogID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	summary, err := h.scans.Scan(ctx, dogID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "scan failed",
			"request_id", requestcontext.RequestID(ctx), "dog_id", dogID.String(), "error", err.Error())
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "scan failed"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, summary)
}
