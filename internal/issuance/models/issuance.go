package models

import (
	"strings"
	"time"

	dErrors "assettrack/pkg/domain-errors"
)

// IssuanceStatus is the stored lifecycle state of an issuance.
//
// "overdue" is deliberately absent: it is a derived display state computed at
// read time from ExpectedReturnDate while the stored status is still
// StatusIssued. Lost and damaged are reachable only through the
// administrative transition, never through the issue/return happy path.
type IssuanceStatus string

const (
	StatusIssued   IssuanceStatus = "issued"
	StatusReturned IssuanceStatus = "returned"
	StatusLost     IssuanceStatus = "lost"
	StatusDamaged  IssuanceStatus = "damaged"
)

func (s IssuanceStatus) IsValid() bool {
	switch s {
	case StatusIssued, StatusReturned, StatusLost, StatusDamaged:
		return true
	}
	return false
}

// Issuance records an asset being lent to a person for a period.
//
// Invariants:
//   - AssetID references exactly one asset; the asset outlives the issuance
//   - AssetName is an immutable snapshot taken when the issuance was opened;
//     live reads join on AssetID for the current name
//   - ActualReturnDate is set only when the issuance is closed
//   - Issuances are never deleted, only transitioned (the single exception is
//     the coordinator rolling back a half-applied issue operation)
type Issuance struct {
	ID                 string         `json:"id"`
	AssetID            string         `json:"asset_id"`
	AssetName          string         `json:"asset_name"`
	IssuedTo           string         `json:"issued_to"`
	IssuedBy           string         `json:"issued_by"`
	IssuedDate         time.Time      `json:"issued_date"`
	ExpectedReturnDate *time.Time     `json:"expected_return_date,omitempty"`
	ActualReturnDate   *time.Time     `json:"actual_return_date,omitempty"`
	Status             IssuanceStatus `json:"status"`
	Purpose            string         `json:"purpose"`
	Conditions         string         `json:"conditions"`
	Notes              string         `json:"notes,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// IsOpen reports whether the issuance still holds its asset.
func (i *Issuance) IsOpen() bool {
	return i.Status == StatusIssued
}

// OpenIssuanceRequest is the issuance creation payload. IssuedBy is supplied
// by the calling context (current user identity), not by the form.
type OpenIssuanceRequest struct {
	AssetID            string `json:"asset_id"`
	IssuedTo           string `json:"issued_to"`
	ExpectedReturnDate string `json:"expected_return_date,omitempty"`
	Purpose            string `json:"purpose"`
	Conditions         string `json:"conditions"`
	Notes              string `json:"notes,omitempty"`
}

// Normalize trims whitespace on the free-text fields.
func (r *OpenIssuanceRequest) Normalize() {
	r.AssetID = strings.TrimSpace(r.AssetID)
	r.IssuedTo = strings.TrimSpace(r.IssuedTo)
	r.Purpose = strings.TrimSpace(r.Purpose)
	r.Conditions = strings.TrimSpace(r.Conditions)
	r.Notes = strings.TrimSpace(r.Notes)
}

// Validate checks required fields and the optional return date format.
func (r *OpenIssuanceRequest) Validate() error {
	if r.AssetID == "" {
		return dErrors.New(dErrors.CodeValidation, "asset_id is required")
	}
	if r.IssuedTo == "" {
		return dErrors.New(dErrors.CodeValidation, "issued_to is required")
	}
	if r.Purpose == "" {
		return dErrors.New(dErrors.CodeValidation, "purpose is required")
	}
	if _, err := r.ParsedReturnDate(); err != nil {
		return err
	}
	return nil
}

// ParsedReturnDate parses the optional expected return date. Nil when absent.
func (r *OpenIssuanceRequest) ParsedReturnDate() (*time.Time, error) {
	raw := strings.TrimSpace(r.ExpectedReturnDate)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeValidation, "invalid expected_return_date %q, want YYYY-MM-DD", raw)
	}
	return &t, nil
}

// Filter narrows List results. The status axis matches the stored status
// only, never the derived overdue state; "all" or empty means unconstrained.
type Filter struct {
	Search string
	Status IssuanceStatus
}

// Matches reports whether the issuance satisfies every constrained axis.
// Search is a case-insensitive substring match over asset name, holder,
// and purpose.
func (f Filter) Matches(i *Issuance) bool {
	if f.Status != "" && f.Status != "all" && i.Status != f.Status {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(i.AssetName), needle) &&
			!strings.Contains(strings.ToLower(i.IssuedTo), needle) &&
			!strings.Contains(strings.ToLower(i.Purpose), needle) {
			return false
		}
	}
	return true
}
