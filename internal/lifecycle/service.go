// Package lifecycle coordinates the asset registry and the issuance ledger.
//
// It is the only component that mutates both stores for a single logical
// action, which is what keeps the cross-entity invariant provable: per asset
// there is at most one stored-issued issuance, and the asset's holder field
// mirrors it exactly (Unassigned when none).
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	assetModel "assettrack/internal/asset/models"
	"assettrack/internal/audit"
	issuanceModel "assettrack/internal/issuance/models"
	"assettrack/internal/platform/metrics"
	dErrors "assettrack/pkg/domain-errors"
	"assettrack/pkg/platform/sentinel"
	"assettrack/pkg/requestcontext"
)

// Registry is the slice of the asset store the coordinator needs. It is the
// sole caller of SetAssignedTo and Delete.
type Registry interface {
	FindByID(ctx context.Context, id string) (*assetModel.Asset, error)
	SetAssignedTo(ctx context.Context, id, holder string, now time.Time) error
	Delete(ctx context.Context, id string) error
}

// Ledger is the slice of the issuance store the coordinator needs. Reopen and
// Delete exist only for the rollback paths below.
type Ledger interface {
	Open(ctx context.Context, issuance *issuanceModel.Issuance) error
	Close(ctx context.Context, id string, now time.Time) (*issuanceModel.Issuance, error)
	MarkLostOrDamaged(ctx context.Context, id string, status issuanceModel.IssuanceStatus, now time.Time) (*issuanceModel.Issuance, error)
	Reopen(ctx context.Context, id string, now time.Time) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*issuanceModel.Issuance, error)
	FindOpenByAsset(ctx context.Context, assetID string) (*issuanceModel.Issuance, error)
}

// AuditPublisher records domain actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Coordinator serializes issue/return/delete per asset so two concurrent
// issue calls for the same asset cannot both pass the availability gate.
type Coordinator struct {
	registry Registry
	ledger   Ledger
	logger   *slog.Logger
	auditor  AuditPublisher
	metrics  *metrics.Metrics
	tracer   trace.Tracer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(c *Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(c *Coordinator) { c.auditor = auditor }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// New constructs a Coordinator.
func New(registry Registry, ledger Ledger, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry: registry,
		ledger:   ledger,
		tracer:   otel.Tracer("assettrack/lifecycle"),
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// lockAsset acquires the per-asset mutex and returns its release func.
// Lock entries are kept for the life of the process; the working set is the
// asset population, which is small.
func (c *Coordinator) lockAsset(assetID string) func() {
	c.mu.Lock()
	l, ok := c.locks[assetID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[assetID] = l
	}
	c.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// IssueAsset opens an issuance and assigns the asset to the holder as a
// single unit. The availability gate here is authoritative; the ledger's own
// conflict check is a defensive backstop. If the registry write fails after
// the ledger write succeeded, the freshly opened issuance is deleted so the
// invariant is never left broken.
func (c *Coordinator) IssueAsset(ctx context.Context, req *issuanceModel.OpenIssuanceRequest) (*issuanceModel.Issuance, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "lifecycle.IssueAsset",
		trace.WithAttributes(attribute.String("asset.id", req.AssetID)))
	defer span.End()

	unlock := c.lockAsset(req.AssetID)
	defer unlock()

	asset, err := c.registry.FindByID(ctx, req.AssetID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "asset not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load asset")
	}
	if !asset.IsAvailableForIssuance() {
		return nil, dErrors.Newf(dErrors.CodePreconditionFailed,
			"asset %q is not available for issuance (status %s, assigned to %s)",
			asset.Name, asset.Status, asset.AssignedTo)
	}

	expectedReturn, err := req.ParsedReturnDate()
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	issuance := &issuanceModel.Issuance{
		ID:                 uuid.NewString(),
		AssetID:            asset.ID,
		AssetName:          asset.Name,
		IssuedTo:           req.IssuedTo,
		IssuedBy:           requestcontext.UserName(ctx),
		IssuedDate:         now,
		ExpectedReturnDate: expectedReturn,
		Status:             issuanceModel.StatusIssued,
		Purpose:            req.Purpose,
		Conditions:         req.Conditions,
		Notes:              req.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := c.ledger.Open(ctx, issuance); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "asset already has an open issuance")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to open issuance")
	}

	if err := c.registry.SetAssignedTo(ctx, asset.ID, req.IssuedTo, now); err != nil {
		c.rollbackOpen(ctx, issuance.ID)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to assign asset")
	}

	c.emitAudit(ctx, audit.ActionIssuanceOpened, issuance.ID, asset.Name+" -> "+req.IssuedTo)
	if c.metrics != nil {
		c.metrics.IssuancesOpened.Inc()
	}
	return issuance, nil
}

// ReturnAsset closes an issuance and releases the asset as a single unit.
// If releasing the asset fails after the close succeeded, the close is
// reverted.
func (c *Coordinator) ReturnAsset(ctx context.Context, issuanceID string) (*issuanceModel.Issuance, error) {
	issuance, err := c.ledger.FindByID(ctx, issuanceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "issuance not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load issuance")
	}

	ctx, span := c.tracer.Start(ctx, "lifecycle.ReturnAsset",
		trace.WithAttributes(
			attribute.String("issuance.id", issuanceID),
			attribute.String("asset.id", issuance.AssetID),
		))
	defer span.End()

	unlock := c.lockAsset(issuance.AssetID)
	defer unlock()

	now := requestcontext.Now(ctx)
	closed, err := c.ledger.Close(ctx, issuanceID, now)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "issuance not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.Newf(dErrors.CodeInvalidState,
				"issuance is %s, only issued items can be returned", issuance.Status)
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to close issuance")
		}
	}

	if err := c.registry.SetAssignedTo(ctx, closed.AssetID, assetModel.Unassigned, now); err != nil {
		if rbErr := c.ledger.Reopen(ctx, issuanceID, now); rbErr != nil && c.logger != nil {
			c.logger.ErrorContext(ctx, "rollback of issuance close failed",
				"issuance_id", issuanceID,
				"error", rbErr,
			)
		}
		if c.metrics != nil {
			c.metrics.IssueRollbacks.Inc()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to release asset")
	}

	c.emitAudit(ctx, audit.ActionIssuanceClosed, closed.ID, closed.AssetName+" <- "+closed.IssuedTo)
	if c.metrics != nil {
		c.metrics.IssuancesReturned.Inc()
	}
	return closed, nil
}

// FlagIssuance applies the administrative lost/damaged transition. It sits
// outside the issue/return happy path but still crosses both stores: closing
// the issuance releases the asset's holder slot.
func (c *Coordinator) FlagIssuance(ctx context.Context, issuanceID string, status issuanceModel.IssuanceStatus) (*issuanceModel.Issuance, error) {
	if status != issuanceModel.StatusLost && status != issuanceModel.StatusDamaged {
		return nil, dErrors.Newf(dErrors.CodeValidation, "status must be lost or damaged, got %q", status)
	}

	issuance, err := c.ledger.FindByID(ctx, issuanceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "issuance not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load issuance")
	}

	unlock := c.lockAsset(issuance.AssetID)
	defer unlock()

	now := requestcontext.Now(ctx)
	flagged, err := c.ledger.MarkLostOrDamaged(ctx, issuanceID, status, now)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "issuance not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.Newf(dErrors.CodeInvalidState,
				"issuance is %s, only issued items can be flagged", issuance.Status)
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to flag issuance")
		}
	}

	if err := c.registry.SetAssignedTo(ctx, flagged.AssetID, assetModel.Unassigned, now); err != nil {
		if rbErr := c.ledger.Reopen(ctx, issuanceID, now); rbErr != nil && c.logger != nil {
			c.logger.ErrorContext(ctx, "rollback of issuance flag failed",
				"issuance_id", issuanceID,
				"error", rbErr,
			)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to release asset")
	}

	c.emitAudit(ctx, audit.ActionIssuanceClosed, flagged.ID, string(status))
	return flagged, nil
}

// DeleteAsset removes an asset from the registry. Deleting an asset that
// still has an open issuance is forbidden: the caller must return the asset
// first. (The alternative, cascade-closing the issuance, would silently
// falsify the return record.)
func (c *Coordinator) DeleteAsset(ctx context.Context, assetID string) error {
	ctx, span := c.tracer.Start(ctx, "lifecycle.DeleteAsset",
		trace.WithAttributes(attribute.String("asset.id", assetID)))
	defer span.End()

	unlock := c.lockAsset(assetID)
	defer unlock()

	asset, err := c.registry.FindByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "asset not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load asset")
	}

	if open, err := c.ledger.FindOpenByAsset(ctx, assetID); err == nil {
		return dErrors.Newf(dErrors.CodePreconditionFailed,
			"asset %q is issued to %s; return it before deleting", asset.Name, open.IssuedTo)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check open issuances")
	}

	if err := c.registry.Delete(ctx, assetID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "asset not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete asset")
	}

	c.emitAudit(ctx, audit.ActionAssetDeleted, assetID, asset.Name)
	if c.metrics != nil {
		c.metrics.AssetsDeleted.Inc()
	}
	return nil
}

// rollbackOpen deletes an issuance created by a half-applied issue
// operation.
func (c *Coordinator) rollbackOpen(ctx context.Context, issuanceID string) {
	if err := c.ledger.Delete(ctx, issuanceID); err != nil && c.logger != nil {
		c.logger.ErrorContext(ctx, "rollback of opened issuance failed",
			"issuance_id", issuanceID,
			"error", err,
		)
	}
	c.emitAudit(ctx, audit.ActionIssueRolledBack, issuanceID, "")
	if c.metrics != nil {
		c.metrics.IssueRollbacks.Inc()
	}
}

func (c *Coordinator) emitAudit(ctx context.Context, action audit.Action, entityID, detail string) {
	if c.auditor == nil {
		return
	}
	_ = c.auditor.Emit(ctx, audit.Event{
		Action:   action,
		Actor:    requestcontext.UserName(ctx),
		EntityID: entityID,
		Detail:   detail,
	})
}
