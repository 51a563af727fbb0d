package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"assettrack/internal/asset/models"
	"assettrack/internal/audit"
	"assettrack/internal/platform/metrics"
	dErrors "assettrack/pkg/domain-errors"
	"assettrack/pkg/platform/sentinel"
	"assettrack/pkg/requestcontext"
)

// AssetStore is the registry persistence contract. SetAssignedTo and Delete
// are absent on purpose: assignment and deletion are cross-entity operations
// owned by the lifecycle coordinator.
type AssetStore interface {
	Create(ctx context.Context, asset *models.Asset) error
	Update(ctx context.Context, asset *models.Asset) error
	FindByID(ctx context.Context, id string) (*models.Asset, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Asset, error)
}

// AuditPublisher records domain actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the canonical set of asset records: creation, edits, and
// reads. It never touches the issuance ledger.
type Service struct {
	assets  AssetStore
	logger  *slog.Logger
	auditor AuditPublisher
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(assets AssetStore, opts ...Option) *Service {
	s := &Service{assets: assets}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAsset validates the form payload, assigns a fresh id, and stores the
// asset with LastUpdated stamped from the request clock.
func (s *Service) CreateAsset(ctx context.Context, req *models.CreateAssetRequest) (*models.Asset, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	price, err := models.ParsePrice(req.PurchasePrice)
	if err != nil {
		return nil, err
	}
	purchaseDate, err := models.ParseDate(req.PurchaseDate)
	if err != nil {
		return nil, err
	}
	warrantyExpiry, err := models.ParseDate(req.WarrantyExpiry)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	asset := &models.Asset{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Type:           req.Type,
		Category:       req.Category,
		SerialNumber:   req.SerialNumber,
		Model:          req.Model,
		Manufacturer:   req.Manufacturer,
		PurchaseDate:   purchaseDate,
		PurchasePrice:  price,
		WarrantyExpiry: warrantyExpiry,
		Status:         req.Status,
		Location:       req.Location,
		AssignedTo:     req.AssignedTo,
		Description:    req.Description,
		LastUpdated:    now,
	}

	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create asset")
	}

	s.emitAudit(ctx, audit.ActionAssetCreated, asset.ID, asset.Name)
	if s.metrics != nil {
		s.metrics.AssetsCreated.Inc()
	}
	return asset, nil
}

// UpdateAsset merges the supplied fields over the existing record, re-parsing
// the price when present, and restamps LastUpdated.
func (s *Service) UpdateAsset(ctx context.Context, id string, req *models.UpdateAssetRequest) (*models.Asset, error) {
	asset, err := s.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Name != nil {
		asset.Name = *req.Name
	}
	if req.Type != nil {
		asset.Type = *req.Type
	}
	if req.Category != nil {
		asset.Category = *req.Category
	}
	if req.SerialNumber != nil {
		asset.SerialNumber = *req.SerialNumber
	}
	if req.Model != nil {
		asset.Model = *req.Model
	}
	if req.Manufacturer != nil {
		asset.Manufacturer = *req.Manufacturer
	}
	if req.PurchaseDate != nil {
		asset.PurchaseDate, err = models.ParseDate(*req.PurchaseDate)
		if err != nil {
			return nil, err
		}
	}
	if req.PurchasePrice != nil {
		asset.PurchasePrice, err = models.ParsePrice(*req.PurchasePrice)
		if err != nil {
			return nil, err
		}
	}
	if req.WarrantyExpiry != nil {
		asset.WarrantyExpiry, err = models.ParseDate(*req.WarrantyExpiry)
		if err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		asset.Status = *req.Status
	}
	if req.Location != nil {
		asset.Location = *req.Location
	}
	if req.Description != nil {
		asset.Description = *req.Description
	}

	asset.LastUpdated = requestcontext.Now(ctx)
	if err := s.assets.Update(ctx, asset); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "asset not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update asset")
	}

	s.emitAudit(ctx, audit.ActionAssetUpdated, asset.ID, asset.Name)
	if s.metrics != nil {
		s.metrics.AssetsUpdated.Inc()
	}
	return asset, nil
}

// GetAsset returns the asset with the given id.
func (s *Service) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	asset, err := s.assets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "asset not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load asset")
	}
	return asset, nil
}

// ListAssets returns assets matching the filter.
func (s *Service) ListAssets(ctx context.Context, filter models.Filter) ([]*models.Asset, error) {
	assets, err := s.assets.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assets")
	}
	return assets, nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, entityID, detail string) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		Action:   action,
		Actor:    requestcontext.UserName(ctx),
		EntityID: entityID,
		Detail:   detail,
	})
}
