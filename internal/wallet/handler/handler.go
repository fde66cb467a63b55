// Package handler exposes the handler-facing wallet routes.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"pawport/internal/platform/middleware"
	recmodels "pawport/internal/record/models"
	"pawport/internal/transport/http/shared"
	"pawport/internal/wallet/service"
	id "pawport/pkg/domain"
	dErrors "pawport/pkg/domain-errors"
	"pawport/pkg/requestcontext"
)

// Uploads are capped well above any realistic certificate scan.
const maxUploadBytes = 10 << 20

// Service is the wallet surface the handler needs.
type Service interface {
	UploadDocument(ctx context.Context, in service.UploadInput) (*service.UploadResult, error)
	ListRecords(ctx context.Context, handlerID id.HandlerID, dogID id.DogID) ([]*recmodels.NormalizedRecord, error)
}

// Handler handles wallet endpoints.
type Handler struct {
	logger   *slog.Logger
	wallet   Service
	verifier *middleware.Verifier
}

func New(wallet Service, verifier *middleware.Verifier, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, wallet: wallet, verifier: verifier}
}

// Register registers the wallet routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	walletRouter := chi.NewRouter()
	walletRouter.Use(middleware.RequireHandlerAuth(h.verifier, h.logger))
	walletRouter.Post("/dogs/{dogID}/documents", h.handleUpload)
	walletRouter.Get("/dogs/{dogID}/records", h.handleListRecords)

	r.Mount("/wallet", walletRouter)
}

type uploadMeta struct {
	Filename string
	MimeType string
}

func (m uploadMeta) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Filename, validation.Required, validation.Length(1, 255)),
	)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	handlerID := requestcontext.HandlerID(ctx)
	if handlerID.IsNil() {
		h.logger.ErrorContext(ctx, "handler ID missing from context despite auth middleware",
			"request_id", requestID)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	dogID, err := id.ParseDogID(chi.URLParam(r, "dogID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart request"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "missing file field"))
		return
	}
	defer file.Close()

	meta := uploadMeta{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
	}
	if err := meta.Validate(); err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid upload"))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unreadable file"))
		return
	}

	result, err := h.wallet.UploadDocument(ctx, service.UploadInput{
		DogID:     dogID,
		HandlerID: handlerID,
		Filename:  meta.Filename,
		MimeType:  meta.MimeType,
		Content:   content,
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "document upload failed",
			"request_id", requestID, "dog_id", dogID.String(), "error", err.Error())
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "upload failed"))
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"document": result.Document,
		"record":   result.Record,
	})
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	handlerID := requestcontext.HandlerID(ctx)
	if handlerID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	dogID, err := id.ParseDogID(chi.URLParam(r, "dogID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	records, err := h.wallet.ListRecords(ctx, handlerID, dogID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "list records failed",
			"request_id", requestcontext.RequestID(ctx), "dog_id", dogID.String(), "error", err.Error())
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "list records failed"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}
