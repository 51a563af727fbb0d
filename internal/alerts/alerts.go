// Package alerts derives display-time warning flags from stored dates.
//
// Every function here is a pure function of (record, now): the clock is
// always an explicit input, never read implicitly, so derivations are
// reproducible in tests and consistent within a request (callers pass
// requestcontext.Now).
package alerts

import (
	"math"
	"time"

	assetModel "assettrack/internal/asset/models"
	issuanceModel "assettrack/internal/issuance/models"
)

// warrantyWindow is how far ahead an approaching warranty expiry is surfaced.
const warrantyWindow = 30 * 24 * time.Hour

// WarrantyAlert flags a warranty that has lapsed or is about to.
// The two flags are mutually exclusive.
type WarrantyAlert struct {
	Expired      bool `json:"expired"`
	ExpiringSoon bool `json:"expiring_soon"`
}

// Warranty evaluates an asset's warranty against now. Expired when the
// expiry date is strictly in the past; expiring soon when it falls within
// the next 30 days, inclusive at both ends. Assets without a warranty date
// raise neither flag.
func Warranty(asset *assetModel.Asset, now time.Time) WarrantyAlert {
	expiry := asset.WarrantyExpiry
	if expiry.IsZero() {
		return WarrantyAlert{}
	}
	if expiry.Before(now) {
		return WarrantyAlert{Expired: true}
	}
	if !expiry.After(now.Add(warrantyWindow)) {
		return WarrantyAlert{ExpiringSoon: true}
	}
	return WarrantyAlert{}
}

// OverdueInfo flags an open issuance whose expected return date has passed.
// Overdue is never persisted; the stored status stays issued.
type OverdueInfo struct {
	Overdue     bool `json:"overdue"`
	DaysOverdue int  `json:"days_overdue"`
}

// Overdue evaluates an issuance against now. Only stored-issued records with
// an expected return date in the past are overdue. DaysOverdue is the
// ceiling of the elapsed time in whole days: 36 elapsed hours counts as 2.
func Overdue(issuance *issuanceModel.Issuance, now time.Time) OverdueInfo {
	if issuance.Status != issuanceModel.StatusIssued || issuance.ExpectedReturnDate == nil {
		return OverdueInfo{}
	}
	expected := *issuance.ExpectedReturnDate
	if !expected.Before(now) {
		return OverdueInfo{}
	}
	days := int(math.Ceil(now.Sub(expected).Hours() / 24))
	return OverdueInfo{Overdue: true, DaysOverdue: days}
}
