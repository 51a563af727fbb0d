package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"assettrack/internal/issuance/models"
	"assettrack/internal/issuance/store"
	dErrors "assettrack/pkg/domain-errors"
	"assettrack/pkg/requestcontext"
)

func TestReadSideDecoration(t *testing.T) {
	now := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	ledger := store.NewInMemory()
	svc := New(ledger)

	overdueDate := now.AddDate(0, 0, -2)
	overdue := &models.Issuance{
		ID: uuid.NewString(), AssetID: uuid.NewString(), AssetName: "Laptop",
		IssuedTo: "Dana", Status: models.StatusIssued,
		ExpectedReturnDate: &overdueDate, CreatedAt: now,
	}
	require.NoError(t, ledger.Open(ctx, overdue))

	onTime := &models.Issuance{
		ID: uuid.NewString(), AssetID: uuid.NewString(), AssetName: "Monitor",
		IssuedTo: "Morgan", Status: models.StatusIssued, CreatedAt: now.Add(time.Minute),
	}
	require.NoError(t, ledger.Open(ctx, onTime))

	t.Run("get decorates with overdue info while status stays issued", func(t *testing.T) {
		view, err := svc.GetIssuance(ctx, overdue.ID)
		require.NoError(t, err)
		require.Equal(t, models.StatusIssued, view.Status)
		require.True(t, view.Overdue)
		require.Equal(t, 2, view.DaysOverdue)
	})

	t.Run("list decorates every row against one clock", func(t *testing.T) {
		views, err := svc.ListIssuances(ctx, models.Filter{})
		require.NoError(t, err)
		require.Len(t, views, 2)
		require.False(t, views[0].Overdue)
		require.True(t, views[1].Overdue)
	})

	t.Run("unknown id yields not found", func(t *testing.T) {
		_, err := svc.GetIssuance(ctx, uuid.NewString())
		require.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})
}
