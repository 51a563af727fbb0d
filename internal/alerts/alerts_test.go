package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	assetModel "assettrack/internal/asset/models"
	issuanceModel "assettrack/internal/issuance/models"
)

var now = time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

func assetExpiring(expiry time.Time) *assetModel.Asset {
	return &assetModel.Asset{WarrantyExpiry: expiry}
}

func TestWarranty(t *testing.T) {
	t.Run("no warranty date raises neither flag", func(t *testing.T) {
		got := Warranty(&assetModel.Asset{}, now)
		assert.False(t, got.Expired)
		assert.False(t, got.ExpiringSoon)
	})

	t.Run("past expiry is expired", func(t *testing.T) {
		got := Warranty(assetExpiring(now.AddDate(0, 0, -1)), now)
		assert.True(t, got.Expired)
		assert.False(t, got.ExpiringSoon)
	})

	t.Run("expiry 15 days out is expiring soon", func(t *testing.T) {
		got := Warranty(assetExpiring(now.AddDate(0, 0, 15)), now)
		assert.False(t, got.Expired)
		assert.True(t, got.ExpiringSoon)
	})

	t.Run("expiry exactly 30 days out is expiring soon", func(t *testing.T) {
		got := Warranty(assetExpiring(now.AddDate(0, 0, 30)), now)
		assert.True(t, got.ExpiringSoon)
	})

	t.Run("expiry 31 days out raises neither flag", func(t *testing.T) {
		got := Warranty(assetExpiring(now.AddDate(0, 0, 31)), now)
		assert.False(t, got.Expired)
		assert.False(t, got.ExpiringSoon)
	})

	t.Run("expiry equal to now is expiring soon, not expired", func(t *testing.T) {
		got := Warranty(assetExpiring(now), now)
		assert.False(t, got.Expired)
		assert.True(t, got.ExpiringSoon)
	})
}

func issuedWithReturnDate(status issuanceModel.IssuanceStatus, expected time.Time) *issuanceModel.Issuance {
	return &issuanceModel.Issuance{Status: status, ExpectedReturnDate: &expected}
}

func TestOverdue(t *testing.T) {
	t.Run("expected return two days ago counts two days overdue", func(t *testing.T) {
		expected := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		got := Overdue(issuedWithReturnDate(issuanceModel.StatusIssued, expected), now)
		assert.True(t, got.Overdue)
		assert.Equal(t, 2, got.DaysOverdue)
	})

	t.Run("partial days round up", func(t *testing.T) {
		expected := now.Add(-36 * time.Hour)
		got := Overdue(issuedWithReturnDate(issuanceModel.StatusIssued, expected), now)
		assert.True(t, got.Overdue)
		assert.Equal(t, 2, got.DaysOverdue)
	})

	t.Run("future expected return is not overdue", func(t *testing.T) {
		got := Overdue(issuedWithReturnDate(issuanceModel.StatusIssued, now.AddDate(0, 0, 5)), now)
		assert.False(t, got.Overdue)
		assert.Zero(t, got.DaysOverdue)
	})

	t.Run("expected return equal to now is not overdue", func(t *testing.T) {
		got := Overdue(issuedWithReturnDate(issuanceModel.StatusIssued, now), now)
		assert.False(t, got.Overdue)
	})

	t.Run("returned issuances are never overdue", func(t *testing.T) {
		expected := now.AddDate(0, 0, -10)
		got := Overdue(issuedWithReturnDate(issuanceModel.StatusReturned, expected), now)
		assert.False(t, got.Overdue)
	})

	t.Run("no expected return date means never overdue", func(t *testing.T) {
		got := Overdue(&issuanceModel.Issuance{Status: issuanceModel.StatusIssued}, now)
		assert.False(t, got.Overdue)
	})
}
