package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authModel "assettrack/internal/auth/models"
	issuanceModel "assettrack/internal/issuance/models"
	issuanceService "assettrack/internal/issuance/service"
	"assettrack/internal/platform/middleware"
	"assettrack/internal/transport/http/shared"
	dErrors "assettrack/pkg/domain-errors"
	"assettrack/pkg/requestcontext"
)

// Reader defines the read side of the issuance ledger.
type Reader interface {
	GetIssuance(ctx context.Context, id string) (*issuanceService.View, error)
	ListIssuances(ctx context.Context, filter issuanceModel.Filter) ([]*issuanceService.View, error)
}

// Lifecycle is the slice of the coordinator this handler needs. Every
// mutation goes through it; the ledger store is never written directly.
type Lifecycle interface {
	IssueAsset(ctx context.Context, req *issuanceModel.OpenIssuanceRequest) (*issuanceModel.Issuance, error)
	ReturnAsset(ctx context.Context, issuanceID string) (*issuanceModel.Issuance, error)
	FlagIssuance(ctx context.Context, issuanceID string, status issuanceModel.IssuanceStatus) (*issuanceModel.Issuance, error)
}

// Handler handles issuance ledger endpoints.
type Handler struct {
	logger    *slog.Logger
	reader    Reader
	lifecycle Lifecycle
}

// New creates a new issuance Handler.
func New(reader Reader, lifecycle Lifecycle, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		reader:    reader,
		lifecycle: lifecycle,
	}
}

// Register registers the issuance routes. The caller mounts this behind the
// authenticated middleware chain.
func (h *Handler) Register(r chi.Router) {
	r.Route("/issuances", func(r chi.Router) {
		r.With(middleware.RequireCapability(authModel.CapRead, h.logger)).
			Get("/", h.handleList)
		r.With(middleware.RequireCapability(authModel.CapIssue, h.logger)).
			Post("/", h.handleIssue)
		r.With(middleware.RequireCapability(authModel.CapRead, h.logger)).
			Get("/{id}", h.handleGet)
		r.With(middleware.RequireCapability(authModel.CapReturn, h.logger)).
			Post("/{id}/return", h.handleReturn)
		r.With(middleware.RequireCapability(authModel.CapFlag, h.logger)).
			Post("/{id}/flag", h.handleFlag)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	filter := issuanceModel.Filter{
		Search: q.Get("search"),
		Status: issuanceModel.IssuanceStatus(q.Get("status")),
	}

	views, err := h.reader.ListIssuances(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list issuances",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.reader.GetIssuance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req issuanceModel.OpenIssuanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	issuance, err := h.lifecycle.IssueAsset(ctx, &req)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to issue asset",
				"request_id", requestcontext.RequestID(ctx),
				"asset_id", req.AssetID,
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, issuance)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issuanceID := chi.URLParam(r, "id")

	issuance, err := h.lifecycle.ReturnAsset(ctx, issuanceID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to return asset",
				"request_id", requestcontext.RequestID(ctx),
				"issuance_id", issuanceID,
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, issuance)
}

// flagRequest is the lost/damaged transition payload.
type flagRequest struct {
	Status issuanceModel.IssuanceStatus `json:"status"`
}

func (h *Handler) handleFlag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issuanceID := chi.URLParam(r, "id")

	var req flagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	issuance, err := h.lifecycle.FlagIssuance(ctx, issuanceID, req.Status)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to flag issuance",
				"request_id", requestcontext.RequestID(ctx),
				"issuance_id", issuanceID,
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, issuance)
}
