package service

import (
	"context"
	"errors"
	"log/slog"

	"assettrack/internal/alerts"
	"assettrack/internal/issuance/models"
	dErrors "assettrack/pkg/domain-errors"
	"assettrack/pkg/platform/sentinel"
	"assettrack/pkg/requestcontext"
)

// LedgerReader is the read-only slice of the issuance store this service
// needs. All mutations go through the lifecycle coordinator.
type LedgerReader interface {
	FindByID(ctx context.Context, id string) (*models.Issuance, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Issuance, error)
}

// View decorates a stored issuance with its derived overdue state. The
// stored status stays issued while Overdue reports the display condition.
type View struct {
	*models.Issuance
	alerts.OverdueInfo
}

// Service serves the issuance read side: lookups and filtered listings with
// overdue info computed at request time.
type Service struct {
	ledger LedgerReader
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New constructs a Service.
func New(ledger LedgerReader, opts ...Option) *Service {
	s := &Service{ledger: ledger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetIssuance returns one issuance decorated with overdue info.
func (s *Service) GetIssuance(ctx context.Context, id string) (*View, error) {
	issuance, err := s.ledger.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "issuance not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load issuance")
	}
	return &View{
		Issuance:    issuance,
		OverdueInfo: alerts.Overdue(issuance, requestcontext.Now(ctx)),
	}, nil
}

// ListIssuances returns issuances matching the filter, each decorated with
// overdue info evaluated against the request clock.
func (s *Service) ListIssuances(ctx context.Context, filter models.Filter) ([]*View, error) {
	issuances, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list issuances")
	}
	now := requestcontext.Now(ctx)
	views := make([]*View, 0, len(issuances))
	for _, issuance := range issuances {
		views = append(views, &View{
			Issuance:    issuance,
			OverdueInfo: alerts.Overdue(issuance, now),
		})
	}
	return views, nil
}
