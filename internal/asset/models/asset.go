package models

import (
	"math"
	"strconv"
	"strings"
	"time"

	dErrors "assettrack/pkg/domain-errors"
)

// Unassigned is the sentinel holder name for assets with no open issuance.
// The lifecycle coordinator keeps AssignedTo in lockstep with the ledger:
// it equals the open issuance's IssuedTo, or Unassigned when none exists.
const Unassigned = "Unassigned"

// AssetType classifies the kind of equipment or license being tracked.
type AssetType string

const (
	TypeHardware   AssetType = "hardware"
	TypeSoftware   AssetType = "software"
	TypeNetwork    AssetType = "network"
	TypeMobile     AssetType = "mobile"
	TypePeripheral AssetType = "peripheral"
)

// AssetTypes lists every valid asset type, in display order.
var AssetTypes = []AssetType{TypeHardware, TypeSoftware, TypeNetwork, TypeMobile, TypePeripheral}

func (t AssetType) IsValid() bool {
	switch t {
	case TypeHardware, TypeSoftware, TypeNetwork, TypeMobile, TypePeripheral:
		return true
	}
	return false
}

// AssetStatus is the operational state of an asset.
type AssetStatus string

const (
	StatusActive      AssetStatus = "active"
	StatusInactive    AssetStatus = "inactive"
	StatusMaintenance AssetStatus = "maintenance"
	StatusDisposed    AssetStatus = "disposed"
	StatusLost        AssetStatus = "lost"
)

func (s AssetStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance, StatusDisposed, StatusLost:
		return true
	}
	return false
}

// Asset is a tracked piece of equipment or license.
//
// Invariants:
//   - ID is assigned at creation and immutable
//   - PurchasePrice is a non-negative finite number
//   - AssignedTo is either Unassigned or the IssuedTo of the single open
//     issuance referencing this asset (enforced by the lifecycle coordinator)
//   - LastUpdated is rewritten on every mutation
type Asset struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Type           AssetType   `json:"type"`
	Category       string      `json:"category"`
	SerialNumber   string      `json:"serial_number"`
	Model          string      `json:"model"`
	Manufacturer   string      `json:"manufacturer"`
	PurchaseDate   time.Time   `json:"purchase_date"`
	PurchasePrice  float64     `json:"purchase_price"`
	WarrantyExpiry time.Time   `json:"warranty_expiry"`
	Status         AssetStatus `json:"status"`
	Location       string      `json:"location"`
	AssignedTo     string      `json:"assigned_to"`
	Description    string      `json:"description"`
	LastUpdated    time.Time   `json:"last_updated"`
}

// IsAvailableForIssuance reports whether the coordinator may open an issuance
// against this asset: it must be active and currently unassigned.
func (a *Asset) IsAvailableForIssuance() bool {
	return a.Status == StatusActive && a.AssignedTo == Unassigned
}

// dateLayout is the wire format for the date-only fields coming from forms.
const dateLayout = "2006-01-02"

// CreateAssetRequest is the asset creation payload from the form layer. All
// fields arrive as strings except the enums; PurchasePrice is parsed before
// storage.
type CreateAssetRequest struct {
	Name           string      `json:"name"`
	Type           AssetType   `json:"type"`
	Category       string      `json:"category"`
	SerialNumber   string      `json:"serial_number"`
	Model          string      `json:"model"`
	Manufacturer   string      `json:"manufacturer"`
	PurchaseDate   string      `json:"purchase_date"`
	PurchasePrice  string      `json:"purchase_price"`
	WarrantyExpiry string      `json:"warranty_expiry"`
	Status         AssetStatus `json:"status"`
	Location       string      `json:"location"`
	AssignedTo     string      `json:"assigned_to"`
	Description    string      `json:"description"`
}

// Normalize trims whitespace and defaults the holder to Unassigned.
func (r *CreateAssetRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.SerialNumber = strings.TrimSpace(r.SerialNumber)
	r.Manufacturer = strings.TrimSpace(r.Manufacturer)
	r.AssignedTo = strings.TrimSpace(r.AssignedTo)
	if r.AssignedTo == "" {
		r.AssignedTo = Unassigned
	}
	if r.Status == "" {
		r.Status = StatusActive
	}
}

// Validate checks enum membership and the price format.
func (r *CreateAssetRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "asset name is required")
	}
	if !r.Type.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown asset type %q", r.Type)
	}
	if !r.Status.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown asset status %q", r.Status)
	}
	if _, err := ParsePrice(r.PurchasePrice); err != nil {
		return err
	}
	return nil
}

// UpdateAssetRequest merges supplied fields over an existing asset. Absent
// fields are modeled as nil pointers so partial updates are explicit.
type UpdateAssetRequest struct {
	Name           *string      `json:"name,omitempty"`
	Type           *AssetType   `json:"type,omitempty"`
	Category       *string      `json:"category,omitempty"`
	SerialNumber   *string      `json:"serial_number,omitempty"`
	Model          *string      `json:"model,omitempty"`
	Manufacturer   *string      `json:"manufacturer,omitempty"`
	PurchaseDate   *string      `json:"purchase_date,omitempty"`
	PurchasePrice  *string      `json:"purchase_price,omitempty"`
	WarrantyExpiry *string      `json:"warranty_expiry,omitempty"`
	Status         *AssetStatus `json:"status,omitempty"`
	Location       *string      `json:"location,omitempty"`
	Description    *string      `json:"description,omitempty"`
}

// Validate checks the fields that are present.
func (r *UpdateAssetRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "asset name cannot be empty")
	}
	if r.Type != nil && !r.Type.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown asset type %q", *r.Type)
	}
	if r.Status != nil && !r.Status.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown asset status %q", *r.Status)
	}
	if r.PurchasePrice != nil {
		if _, err := ParsePrice(*r.PurchasePrice); err != nil {
			return err
		}
	}
	return nil
}

// ParsePrice parses a form-supplied price string into a non-negative finite
// number. Fails with CodeValidation otherwise.
func ParsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "purchase price is required")
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeValidation, "purchase price %q is not a number", raw)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, dErrors.Newf(dErrors.CodeValidation, "purchase price must be a non-negative number, got %q", raw)
	}
	return price, nil
}

// ParseDate parses an optional date-only form field. Empty input yields a
// zero time.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "invalid date %q, want YYYY-MM-DD", raw)
	}
	return t, nil
}

// Filter narrows List results. Zero-valued axes match everything; the literal
// status "all" is treated the same as an absent status.
type Filter struct {
	Search string
	Status AssetStatus
	Type   AssetType
}

// Matches reports whether the asset satisfies every constrained axis.
// Search is a case-insensitive substring match over name, serial number,
// manufacturer, and holder.
func (f Filter) Matches(a *Asset) bool {
	if f.Status != "" && f.Status != "all" && a.Status != f.Status {
		return false
	}
	if f.Type != "" && f.Type != "all" && a.Type != f.Type {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(a.Name), needle) &&
			!strings.Contains(strings.ToLower(a.SerialNumber), needle) &&
			!strings.Contains(strings.ToLower(a.Manufacturer), needle) &&
			!strings.Contains(strings.ToLower(a.AssignedTo), needle) {
			return false
		}
	}
	return true
}
