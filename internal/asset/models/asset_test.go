package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "assettrack/pkg/domain-errors"
)

func TestParsePrice(t *testing.T) {
	t.Run("parses a plain number", func(t *testing.T) {
		price, err := ParsePrice("1299.99")
		require.NoError(t, err)
		assert.Equal(t, 1299.99, price)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		price, err := ParsePrice("  42 ")
		require.NoError(t, err)
		assert.Equal(t, 42.0, price)
	})

	for _, raw := range []string{"", "abc", "-5", "NaN", "Inf"} {
		t.Run("rejects "+raw, func(t *testing.T) {
			_, err := ParsePrice(raw)
			require.Error(t, err)
			assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Run("empty input yields zero time", func(t *testing.T) {
		date, err := ParseDate("")
		require.NoError(t, err)
		assert.True(t, date.IsZero())
	})

	t.Run("parses the date-only layout", func(t *testing.T) {
		date, err := ParseDate("2025-06-15")
		require.NoError(t, err)
		assert.Equal(t, 2025, date.Year())
		assert.Equal(t, 15, date.Day())
	})

	t.Run("rejects other layouts", func(t *testing.T) {
		_, err := ParseDate("15/06/2025")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
	})
}

func TestCreateAssetRequestNormalize(t *testing.T) {
	req := &CreateAssetRequest{Name: "  Laptop  ", Type: TypeHardware, PurchasePrice: "100"}
	req.Normalize()
	assert.Equal(t, "Laptop", req.Name)
	assert.Equal(t, Unassigned, req.AssignedTo)
	assert.Equal(t, StatusActive, req.Status)
	require.NoError(t, req.Validate())
}

func TestCreateAssetRequestValidate(t *testing.T) {
	t.Run("requires a name", func(t *testing.T) {
		req := &CreateAssetRequest{Type: TypeHardware, Status: StatusActive, PurchasePrice: "1"}
		assert.True(t, dErrors.Is(req.Validate(), dErrors.CodeValidation))
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		req := &CreateAssetRequest{Name: "X", Type: "furniture", Status: StatusActive, PurchasePrice: "1"}
		assert.True(t, dErrors.Is(req.Validate(), dErrors.CodeValidation))
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		req := &CreateAssetRequest{Name: "X", Type: TypeHardware, Status: "retired", PurchasePrice: "1"}
		assert.True(t, dErrors.Is(req.Validate(), dErrors.CodeValidation))
	})
}

func TestIsAvailableForIssuance(t *testing.T) {
	asset := &Asset{Status: StatusActive, AssignedTo: Unassigned}
	assert.True(t, asset.IsAvailableForIssuance())

	asset.AssignedTo = "Dana"
	assert.False(t, asset.IsAvailableForIssuance())

	asset.AssignedTo = Unassigned
	asset.Status = StatusMaintenance
	assert.False(t, asset.IsAvailableForIssuance())
}

func TestFilterMatches(t *testing.T) {
	asset := &Asset{
		Name:         "ThinkPad X1",
		SerialNumber: "SN123",
		Manufacturer: "Lenovo",
		AssignedTo:   "Dana",
		Status:       StatusActive,
		Type:         TypeHardware,
	}

	assert.True(t, Filter{}.Matches(asset))
	assert.True(t, Filter{Status: "all", Type: "all"}.Matches(asset))
	assert.True(t, Filter{Search: "lenovo"}.Matches(asset))
	assert.True(t, Filter{Search: "dana"}.Matches(asset))
	assert.False(t, Filter{Search: "macbook"}.Matches(asset))
	assert.False(t, Filter{Status: StatusDisposed}.Matches(asset))
	assert.False(t, Filter{Type: TypeSoftware}.Matches(asset))
	assert.True(t, Filter{Search: "sn123", Status: StatusActive, Type: TypeHardware}.Matches(asset))
}
