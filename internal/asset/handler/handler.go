package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"assettrack/internal/alerts"
	assetModel "assettrack/internal/asset/models"
	authModel "assettrack/internal/auth/models"
	"assettrack/internal/platform/middleware"
	"assettrack/internal/transport/http/shared"
	dErrors "assettrack/pkg/domain-errors"
	"assettrack/pkg/requestcontext"
)

// Service defines the interface for asset registry operations.
type Service interface {
	CreateAsset(ctx context.Context, req *assetModel.CreateAssetRequest) (*assetModel.Asset, error)
	UpdateAsset(ctx context.Context, id string, req *assetModel.UpdateAssetRequest) (*assetModel.Asset, error)
	GetAsset(ctx context.Context, id string) (*assetModel.Asset, error)
	ListAssets(ctx context.Context, filter assetModel.Filter) ([]*assetModel.Asset, error)
}

// Lifecycle is the slice of the coordinator this handler needs. Deletion
// crosses into the issuance ledger, so it cannot go through the registry
// service.
type Lifecycle interface {
	DeleteAsset(ctx context.Context, assetID string) error
}

// View is the read-side shape of an asset: the stored record plus its
// warranty alert evaluated against the request clock.
type View struct {
	*assetModel.Asset
	Warranty alerts.WarrantyAlert `json:"warranty"`
}

// Handler handles asset registry endpoints.
type Handler struct {
	logger    *slog.Logger
	assets    Service
	lifecycle Lifecycle
}

// New creates a new asset Handler.
func New(assets Service, lifecycle Lifecycle, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		assets:    assets,
		lifecycle: lifecycle,
	}
}

// Register registers the asset routes. The caller mounts this behind the
// authenticated middleware chain; per-route capability gates are applied
// here.
func (h *Handler) Register(r chi.Router) {
	r.Route("/assets", func(r chi.Router) {
		r.With(middleware.RequireCapability(authModel.CapRead, h.logger)).
			Get("/", h.handleList)
		r.With(middleware.RequireCapability(authModel.CapCreate, h.logger)).
			Post("/", h.handleCreate)
		r.With(middleware.RequireCapability(authModel.CapRead, h.logger)).
			Get("/{id}", h.handleGet)
		r.With(middleware.RequireCapability(authModel.CapUpdate, h.logger)).
			Put("/{id}", h.handleUpdate)
		r.With(middleware.RequireCapability(authModel.CapDelete, h.logger)).
			Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	filter := assetModel.Filter{
		Search: q.Get("search"),
		Status: assetModel.AssetStatus(q.Get("status")),
		Type:   assetModel.AssetType(q.Get("type")),
	}

	assets, err := h.assets.ListAssets(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list assets",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	now := requestcontext.Now(ctx)
	views := make([]*View, 0, len(assets))
	for _, asset := range assets {
		views = append(views, &View{Asset: asset, Warranty: alerts.Warranty(asset, now)})
	}
	shared.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req assetModel.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	asset, err := h.assets.CreateAsset(ctx, &req)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeValidation) {
			h.logger.ErrorContext(ctx, "failed to create asset",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, asset)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	asset, err := h.assets.GetAsset(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, &View{
		Asset:    asset,
		Warranty: alerts.Warranty(asset, requestcontext.Now(ctx)),
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req assetModel.UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	asset, err := h.assets.UpdateAsset(ctx, chi.URLParam(r, "id"), &req)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeValidation) && !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to update asset",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, asset)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.lifecycle.DeleteAsset(ctx, chi.URLParam(r, "id")); err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) && !dErrors.Is(err, dErrors.CodePreconditionFailed) {
			h.logger.ErrorContext(ctx, "failed to delete asset",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
