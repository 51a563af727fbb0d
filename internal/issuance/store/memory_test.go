package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"assettrack/internal/issuance/models"
	"assettrack/pkg/platform/sentinel"
)

type IssuanceStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *IssuanceStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestIssuanceStoreSuite(t *testing.T) {
	suite.Run(t, new(IssuanceStoreSuite))
}

func (s *IssuanceStoreSuite) newIssuance(assetID string, createdAt time.Time) *models.Issuance {
	return &models.Issuance{
		ID:         uuid.NewString(),
		AssetID:    assetID,
		AssetName:  "Laptop",
		IssuedTo:   "Dana",
		IssuedBy:   "Admin",
		IssuedDate: createdAt,
		Status:     models.StatusIssued,
		Purpose:    "Field work",
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func (s *IssuanceStoreSuite) TestOpen() {
	assetID := uuid.NewString()
	now := time.Now()

	s.Require().NoError(s.store.Open(s.ctx, s.newIssuance(assetID, now)))

	s.Run("refuses a second open issuance for the same asset", func() {
		err := s.store.Open(s.ctx, s.newIssuance(assetID, now))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("allows a different asset", func() {
		s.Require().NoError(s.store.Open(s.ctx, s.newIssuance(uuid.NewString(), now)))
	})
}

func (s *IssuanceStoreSuite) TestClose() {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	issuance := s.newIssuance(uuid.NewString(), now)
	s.Require().NoError(s.store.Open(s.ctx, issuance))

	returnedAt := now.Add(48 * time.Hour)
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

	s.Run("a closed asset can be issued again", func() {
		s.Require().NoError(s.store.Open(s.ctx, s.newIssuance(issuance.AssetID, returnedAt)))
	})
}

func (s *IssuanceStoreSuite) TestReopen() {
	now := time.Now()
	issuance := s.newIssuance(uuid.NewString(), now)
	s.Require().NoError(s.store.Open(s.ctx, issuance))

	s.Run("reopening an open issuance fails", func() {
		s.Require().ErrorIs(s.store.Reopen(s.ctx, issuance.ID, now), sentinel.ErrInvalidState)
	})

	_, err := s.store.Close(s.ctx, issuance.ID, now)
	s.Require().NoError(err)

	s.Run("restores issued status and clears the return date", func() {
		s.Require().NoError(s.store.Reopen(s.ctx, issuance.ID, now))
		found, err := s.store.FindByID(s.ctx, issuance.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusIssued, found.Status)
		s.Nil(found.ActualReturnDate)
	})

	s.Run("reverts a lost flag as well", func() {
		_, err := s.store.MarkLostOrDamaged(s.ctx, issuance.ID, models.StatusLost, now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.Reopen(s.ctx, issuance.ID, now))
		found, err := s.store.FindByID(s.ctx, issuance.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusIssued, found.Status)
	})
}

func (s *IssuanceStoreSuite) TestMarkLostOrDamaged() {
	now := time.Now()
	issuance := s.newIssuance(uuid.NewString(), now)
	s.Require().NoError(s.store.Open(s.ctx, issuance))

	s.Run("rejects statuses outside lost and damaged", func() {
		_, err := s.store.MarkLostOrDamaged(s.ctx, issuance.ID, models.StatusReturned, now)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	flagged, err := s.store.MarkLostOrDamaged(s.ctx, issuance.ID, models.StatusDamaged, now)
	s.Require().NoError(err)
	s.Equal(models.StatusDamaged, flagged.Status)

	s.Run("flagging a closed issuance fails", func() {
		_, err := s.store.MarkLostOrDamaged(s.ctx, issuance.ID, models.StatusLost, now)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})
}

func (s *IssuanceStoreSuite) TestFindOpenByAsset() {
	now := time.Now()
	assetID := uuid.NewString()
	issuance := s.newIssuance(assetID, now)
	s.Require().NoError(s.store.Open(s.ctx, issuance))

	found, err := s.store.FindOpenByAsset(s.ctx, assetID)
	s.Require().NoError(err)
	s.Equal(issuance.ID, found.ID)

	_, err = s.store.Close(s.ctx, issuance.ID, now)
	s.Require().NoError(err)

	_, err = s.store.FindOpenByAsset(s.ctx, assetID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *IssuanceStoreSuite) TestList() {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	older := s.newIssuance(uuid.NewString(), base)
	newer := s.newIssuance(uuid.NewString(), base.Add(time.Hour))
	newer.IssuedTo = "Morgan"
	s.Require().NoError(s.store.Open(s.ctx, older))
	s.Require().NoError(s.store.Open(s.ctx, newer))
	_, err := s.store.Close(s.ctx, older.ID, base.Add(2*time.Hour))
	s.Require().NoError(err)

	s.Run("orders newest first", func() {
		all, err := s.store.List(s.ctx, models.Filter{})
		s.Require().NoError(err)
		s.Require().Len(all, 2)
		s.Equal(newer.ID, all[0].ID)
	})

	s.Run("filters on the stored status only", func() {
		issued, err := s.store.List(s.ctx, models.Filter{Status: models.StatusIssued})
		s.Require().NoError(err)
		s.Require().Len(issued, 1)
		s.Equal(newer.ID, issued[0].ID)
	})

	s.Run("search matches the holder", func() {
		got, err := s.store.List(s.ctx, models.Filter{Search: "morgan"})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(newer.ID, got[0].ID)
	})
}

func (s *IssuanceStoreSuite) TestDelete() {
	issuance := s.newIssuance(uuid.NewString(), time.Now())
	s.Require().NoError(s.store.Open(s.ctx, issuance))
	s.Require().NoError(s.store.Delete(s.ctx, issuance.ID))
	s.Require().ErrorIs(s.store.Delete(s.ctx, issuance.ID), sentinel.ErrNotFound)
}
