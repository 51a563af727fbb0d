// Package stats aggregates registry and ledger state into the dashboard
// summary. It is a pure read-side consumer: both stores are listed through
// their read interfaces and every derived figure is computed against the
// request clock.
package stats

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"assettrack/internal/alerts"
	assetModel "assettrack/internal/asset/models"
	issuanceModel "assettrack/internal/issuance/models"
	dErrors "assettrack/pkg/domain-errors"
	"assettrack/pkg/requestcontext"
)

// AssetLister is the read slice of the asset store.
type AssetLister interface {
	List(ctx context.Context, filter assetModel.Filter) ([]*assetModel.Asset, error)
}

// IssuanceLister is the read slice of the issuance store.
type IssuanceLister interface {
	List(ctx context.Context, filter issuanceModel.Filter) ([]*issuanceModel.Issuance, error)
}

// Summary is the dashboard payload.
type Summary struct {
	TotalAssets      int                           `json:"total_assets"`
	TotalValue       float64                       `json:"total_value"`
	ByStatus         map[assetModel.AssetStatus]int `json:"by_status"`
	ByType           map[assetModel.AssetType]int   `json:"by_type"`
	WarrantyExpired  int                           `json:"warranty_expired"`
	WarrantyExpiring int                           `json:"warranty_expiring"`
	OpenIssuances    int                           `json:"open_issuances"`
	OverdueIssuances int                           `json:"overdue_issuances"`
}

// Service computes dashboard summaries.
type Service struct {
	assets    AssetLister
	issuances IssuanceLister
	logger    *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService constructs a stats Service.
func NewService(assets AssetLister, issuances IssuanceLister, opts ...Option) *Service {
	s := &Service{assets: assets, issuances: issuances}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize lists both stores concurrently and folds the results into one
// Summary.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	var (
		assets    []*assetModel.Asset
		issuances []*issuanceModel.Issuance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assets, err = s.assets.List(gctx, assetModel.Filter{})
		return err
	})
	g.Go(func() error {
		var err error
		issuances, err = s.issuances.List(gctx, issuanceModel.Filter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to gather dashboard data")
	}

	now := requestcontext.Now(ctx)
	summary := &Summary{
		ByStatus: make(map[assetModel.AssetStatus]int),
		ByType:   make(map[assetModel.AssetType]int),
	}

	for _, asset := range assets {
		summary.TotalAssets++
		summary.TotalValue += asset.PurchasePrice
		summary.ByStatus[asset.Status]++
		summary.ByType[asset.Type]++

		warranty := alerts.Warranty(asset, now)
		if warranty.Expired {
			summary.WarrantyExpired++
		}
		if warranty.ExpiringSoon {
			summary.WarrantyExpiring++
		}
	}

	for _, issuance := range issuances {
		if issuance.IsOpen() {
			summary.OpenIssuances++
		}
		if alerts.Overdue(issuance, now).Overdue {
			summary.OverdueIssuances++
		}
	}

	return summary, nil
}
