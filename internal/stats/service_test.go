package stats

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	assetModel "assettrack/internal/asset/models"
	assetStore "assettrack/internal/asset/store"
	issuanceModel "assettrack/internal/issuance/models"
	issuanceStore "assettrack/internal/issuance/store"
	"assettrack/pkg/requestcontext"
)

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	assets := assetStore.NewInMemory()
	issuances := issuanceStore.NewInMemory()

	seed := []*assetModel.Asset{
		{
			ID: uuid.NewString(), Name: "Laptop", Type: assetModel.TypeHardware,
			Status: assetModel.StatusActive, AssignedTo: assetModel.Unassigned,
			PurchasePrice: 1500, WarrantyExpiry: now.AddDate(0, 0, 10),
		},
		{
			ID: uuid.NewString(), Name: "Switch", Type: assetModel.TypeNetwork,
			Status: assetModel.StatusActive, AssignedTo: assetModel.Unassigned,
			PurchasePrice: 800, WarrantyExpiry: now.AddDate(0, 0, -5),
		},
		{
			ID: uuid.NewString(), Name: "License", Type: assetModel.TypeSoftware,
			Status: assetModel.StatusInactive, AssignedTo: assetModel.Unassigned,
			PurchasePrice: 199.5,
		},
	}
	for _, a := range seed {
		require.NoError(t, assets.Create(ctx, a))
	}

	overdueDate := now.AddDate(0, 0, -3)
	require.NoError(t, issuances.Open(ctx, &issuanceModel.Issuance{
		ID: uuid.NewString(), AssetID: seed[0].ID, AssetName: "Laptop",
		IssuedTo: "Dana", Status: issuanceModel.StatusIssued,
		ExpectedReturnDate: &overdueDate, CreatedAt: now,
	}))
	require.NoError(t, issuances.Open(ctx, &issuanceModel.Issuance{
		ID: uuid.NewString(), AssetID: seed[1].ID, AssetName: "Switch",
		IssuedTo: "Morgan", Status: issuanceModel.StatusIssued, CreatedAt: now,
	}))

	svc := NewService(assets, issuances)
	summary, err := svc.Summarize(ctx)
	require.NoError(t, err)

	require.Equal(t, 3, summary.TotalAssets)
	require.InDelta(t, 2499.5, summary.TotalValue, 0.001)
	require.Equal(t, 2, summary.ByStatus[assetModel.StatusActive])
	require.Equal(t, 1, summary.ByStatus[assetModel.StatusInactive])
	require.Equal(t, 1, summary.ByType[assetModel.TypeHardware])
	require.Equal(t, 1, summary.ByType[assetModel.TypeNetwork])
	require.Equal(t, 1, summary.WarrantyExpired)
	require.Equal(t, 1, summary.WarrantyExpiring)
	require.Equal(t, 2, summary.OpenIssuances)
	require.Equal(t, 1, summary.OverdueIssuances)
}
