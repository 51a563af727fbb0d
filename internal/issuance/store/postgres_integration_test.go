//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"assettrack/internal/issuance/models"
	"assettrack/pkg/platform/sentinel"
	"assettrack/pkg/testutil/containers"
)

type PostgresIssuanceStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Postgres
	ctx   context.Context
}

func (s *PostgresIssuanceStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	_, err := s.pg.DB.ExecContext(s.ctx, Schema)
	s.Require().NoError(err)
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresIssuanceStoreSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(s.ctx, `TRUNCATE TABLE issuances`)
	s.Require().NoError(err)
}

func TestPostgresIssuanceStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresIssuanceStoreSuite))
}

func (s *PostgresIssuanceStoreSuite) newIssuance(assetID string) *models.Issuance {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Issuance{
		ID:         uuid.NewString(),
		AssetID:    assetID,
		AssetName:  "Laptop",
		IssuedTo:   "Dana",
		IssuedBy:   "Admin",
		IssuedDate: now,
		Status:     models.StatusIssued,
		Purpose:    "Field work",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *PostgresIssuanceStoreSuite) TestOpenIsExclusivePerAsset() {
	assetID := uuid.NewString()
	s.Require().NoError(s.store.Open(s.ctx, s.newIssuance(assetID)))

	s.Run("the partial unique index rejects a second open issuance", func() {
		err := s.store.Open(s.ctx, s.newIssuance(assetID))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("a different asset is unaffected", func() {
		s.Require().NoError(s.store.Open(s.ctx, s.newIssuance(uuid.NewString())))
	})
}

func (s *PostgresIssuanceStoreSuite) TestTransitions() {
	issuance := s.newIssuance(uuid.NewString())
	s.Require().NoError(s.store.Open(s.ctx, issuance))

	returnedAt := time.Now().UTC().Truncate(time.Microsecond)
	closed, err := s.store.Close(s.ctx, issuance.ID, returnedAt)
	s.Require().NoError(err)
	s.Equal(models.StatusReturned, closed.Status)
	s.Require().NotNil(closed.ActualReturnDate)
	s.True(closed.ActualReturnDate.Equal(returnedAt))

	s.Run("closing twice fails with ErrInvalidState", func() {
		_, err := s.store.Close(s.ctx, issuance.ID, returnedAt)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("closing an unknown id fails with ErrNotFound", func() {
		_, err := s.store.Close(s.ctx, uuid.NewString(), returnedAt)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("reopen restores the issued state", func() {
		s.Require().NoError(s.store.Reopen(s.ctx, issuance.ID, returnedAt))
		found, err := s.store.FindByID(s.ctx, issuance.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusIssued, found.Status)
		s.Nil(found.ActualReturnDate)
	})

	s.Run("once reopened the asset reads as open again", func() {
		open, err := s.store.FindOpenByAsset(s.ctx, issuance.AssetID)
		s.Require().NoError(err)
		s.Equal(issuance.ID, open.ID)
	})

	s.Run("flag transitions to damaged", func() {
		flagged, err := s.store.MarkLostOrDamaged(s.ctx, issuance.ID, models.StatusDamaged, returnedAt)
		s.Require().NoError(err)
		s.Equal(models.StatusDamaged, flagged.Status)
	})
}

func (s *PostgresIssuanceStoreSuite) TestListAndDelete() {
	first := s.newIssuance(uuid.NewString())
	s.Require().NoError(s.store.Open(s.ctx, first))

	second := s.newIssuance(uuid.NewString())
	second.IssuedTo = "Morgan"
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	s.Require().NoError(s.store.Open(s.ctx, second))

	all, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(second.ID, all[0].ID)

	searched, err := s.store.List(s.ctx, models.Filter{Search: "morgan"})
	s.Require().NoError(err)
	s.Require().Len(searched, 1)
	s.Equal(second.ID, searched[0].ID)

	s.Require().NoError(s.store.Delete(s.ctx, first.ID))
	s.Require().ErrorIs(s.store.Delete(s.ctx, first.ID), sentinel.ErrNotFound)
}
