//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"assettrack/internal/asset/models"
	"assettrack/pkg/platform/sentinel"
	"assettrack/pkg/testutil/containers"
)

type PostgresAssetStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Postgres
	ctx   context.Context
}

func (s *PostgresAssetStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	_, err := s.pg.DB.ExecContext(s.ctx, Schema)
	s.Require().NoError(err)
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresAssetStoreSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(s.ctx, `TRUNCATE TABLE assets`)
	s.Require().NoError(err)
}

func TestPostgresAssetStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresAssetStoreSuite))
}

func (s *PostgresAssetStoreSuite) newAsset(name string) *models.Asset {
	return &models.Asset{
		ID:             uuid.NewString(),
		Name:           name,
		Type:           models.TypeHardware,
		SerialNumber:   "SN-" + name,
		Manufacturer:   "Acme",
		PurchasePrice:  999.99,
		WarrantyExpiry: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:         models.StatusActive,
		AssignedTo:     models.Unassigned,
		LastUpdated:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresAssetStoreSuite) TestRoundTrip() {
	asset := s.newAsset("Laptop")
	s.Require().NoError(s.store.Create(s.ctx, asset))

	found, err := s.store.FindByID(s.ctx, asset.ID)
	s.Require().NoError(err)
	s.Equal(asset.Name, found.Name)
	s.Equal(asset.PurchasePrice, found.PurchasePrice)
	s.True(found.WarrantyExpiry.Equal(asset.WarrantyExpiry))

	s.Run("duplicate id conflicts", func() {
		s.Require().ErrorIs(s.store.Create(s.ctx, asset), sentinel.ErrConflict)
	})

	s.Run("zero dates survive as zero", func() {
		bare := s.newAsset("Bare")
		bare.WarrantyExpiry = time.Time{}
		bare.PurchaseDate = time.Time{}
		s.Require().NoError(s.store.Create(s.ctx, bare))
		got, err := s.store.FindByID(s.ctx, bare.ID)
		s.Require().NoError(err)
		s.True(got.WarrantyExpiry.IsZero())
		s.True(got.PurchaseDate.IsZero())
	})
}

func (s *PostgresAssetStoreSuite) TestMutations() {
	asset := s.newAsset("Monitor")
	s.Require().NoError(s.store.Create(s.ctx, asset))

	asset.Location = "Storage B"
	s.Require().NoError(s.store.Update(s.ctx, asset))

	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.SetAssignedTo(s.ctx, asset.ID, "Dana", stamp))

	found, err := s.store.FindByID(s.ctx, asset.ID)
	s.Require().NoError(err)
	s.Equal("Storage B", found.Location)
	s.Equal("Dana", found.AssignedTo)
	s.True(found.LastUpdated.Equal(stamp))

	s.Require().NoError(s.store.Delete(s.ctx, asset.ID))
	s.Require().ErrorIs(s.store.Delete(s.ctx, asset.ID), sentinel.ErrNotFound)

	s.Run("mutating unknown ids yields ErrNotFound", func() {
		s.Require().ErrorIs(s.store.Update(s.ctx, s.newAsset("Ghost")), sentinel.ErrNotFound)
		s.Require().ErrorIs(s.store.SetAssignedTo(s.ctx, uuid.NewString(), "Dana", stamp), sentinel.ErrNotFound)
	})
}

func (s *PostgresAssetStoreSuite) TestList() {
	laptop := s.newAsset("Laptop")
	monitor := s.newAsset("Monitor")
	monitor.Status = models.StatusMaintenance
	for _, a := range []*models.Asset{monitor, laptop} {
		s.Require().NoError(s.store.Create(s.ctx, a))
	}

	all, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("Laptop", all[0].Name)

	filtered, err := s.store.List(s.ctx, models.Filter{Status: models.StatusMaintenance})
	s.Require().NoError(err)
	s.Require().Len(filtered, 1)
	s.Equal(monitor.ID, filtered[0].ID)

	searched, err := s.store.List(s.ctx, models.Filter{Search: "sn-laptop"})
	s.Require().NoError(err)
	s.Require().Len(searched, 1)
	s.Equal(laptop.ID, searched[0].ID)

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}
