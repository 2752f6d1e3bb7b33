package finance

import (
	"github.com/shopspring/decimal"

	"github.com/jobh/imoveis/internal/domain/models"
)

// Summary aggregates a set of rentals, usually one period, for the dashboard.
type Summary struct {
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	TotalAdminFee    decimal.Decimal `json:"totalAdminFee"`
	TotalTransferred decimal.Decimal `json:"totalTransferred"`
	Rentals          int             `json:"rentals"`
	Paid             int             `json:"paid"`
	Transferred      int             `json:"transferred"`
}

// Summarize adds up paid receipts and admin fees over paid rentals, and net transfers
// over transferred rentals. The two flags are evaluated independently.
func Summarize(rentals []models.Rental, owners []models.Owner) Summary {
	idx := IndexOwners(owners)

	var s Summary
	for _, r := range rentals {
		s.Rentals++
		b := Compute(r, idx.Rate(r))
		if r.IsPaid {
			s.Paid++
			s.TotalPaid = s.TotalPaid.Add(b.GrossTotal)
			s.TotalAdminFee = s.TotalAdminFee.Add(b.AdministrativeFee)
		}
		if r.IsTransferred {
			s.Transferred++
			s.TotalTransferred = s.TotalTransferred.Add(b.NetTransfer)
		}
	}
	return s
}

// OwnerIndex resolves rates without scanning the owner list for every rental.
type OwnerIndex map[string]models.Owner

// IndexOwners builds an OwnerIndex keyed by owner id.
func IndexOwners(owners []models.Owner) OwnerIndex {
	idx := make(OwnerIndex, len(owners))
	for _, o := range owners {
		idx[o.ID] = o
	}
	return idx
}

// Rate resolves the admin fee percentage of a rental like ResolveRate.
func (idx OwnerIndex) Rate(r models.Rental) decimal.Decimal {
	if r.OwnerAdminFeePercentage != nil {
		return *r.OwnerAdminFeePercentage
	}
	if o, ok := idx[r.OwnerID]; ok {
		return ownerRate(o)
	}
	return DefaultAdminFeePercentage
}
