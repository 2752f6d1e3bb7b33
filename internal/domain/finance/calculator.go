// Package finance derives the money figures of a rental: gross total, administrative fee,
// bank fee and the net amount transferred to the owner. Every screen, report and message
// that shows money goes through Compute so the figures never disagree.
package finance

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jobh/imoveis/internal/domain/models"
)

// BankFeeMarker flags a tenant item as a bank fee when found in its description.
const BankFeeMarker = "tarifa"

// DefaultAdminFeePercentage applies when neither the rental nor its owner sets a rate.
var DefaultAdminFeePercentage = decimal.NewFromInt(10)

// Breakdown is the derived ledger of one rental.
type Breakdown struct {
	AdminFeeRate      decimal.Decimal `json:"adminFeeRate"`
	BankFee           decimal.Decimal `json:"bankFee"`
	BankFeeItemID     string          `json:"bankFeeItemId,omitempty"`
	SurchargeBase     decimal.Decimal `json:"surchargeBase"`
	AdminFeeBase      decimal.Decimal `json:"adminFeeBase"`
	AdministrativeFee decimal.Decimal `json:"administrativeFee"`
	ChargesTotal      decimal.Decimal `json:"chargesTotal"`
	OtherItemsTotal   decimal.Decimal `json:"otherItemsTotal"`
	GrossTotal        decimal.Decimal `json:"grossTotal"`
	OwnerItemsTotal   decimal.Decimal `json:"ownerItemsTotal"`
	NetTransfer       decimal.Decimal `json:"netTransfer"`
}

// IsBankFee reports whether the item is a bank fee ("tarifa", any case).
func IsBankFee(item models.LineItem) bool {
	return strings.Contains(strings.ToLower(item.Description), BankFeeMarker)
}

// ResolveRate returns the admin fee percentage for a rental: its own override, else the
// owner's configured rate, else DefaultAdminFeePercentage. An owner rate of zero counts as
// not configured; a zero override on the rental is honoured.
func ResolveRate(rental models.Rental, owners []models.Owner) decimal.Decimal {
	return IndexOwners(owners).Rate(rental)
}

func ownerRate(o models.Owner) decimal.Decimal {
	if o.AdminFeePercentage.IsZero() {
		return DefaultAdminFeePercentage
	}
	return o.AdminFeePercentage
}

// ComputeFor resolves the rental's rate against owners and computes its breakdown.
func ComputeFor(rental models.Rental, owners []models.Owner) Breakdown {
	return Compute(rental, ResolveRate(rental, owners))
}

// Compute derives the breakdown of a rental for an already resolved admin fee rate.
// Only rent plus positive non-tariff tenant items form the admin fee base; the first
// tariff item is the bank fee and stays inside the gross total.
func Compute(rental models.Rental, rate decimal.Decimal) Breakdown {
	b := Breakdown{AdminFeeRate: rate}

	bankFeeFound := false
	for _, item := range rental.OtherItems {
		b.OtherItemsTotal = b.OtherItemsTotal.Add(item.Amount)
		if IsBankFee(item) {
			if !bankFeeFound {
				b.BankFee = item.Amount
				b.BankFeeItemID = item.ID
				bankFeeFound = true
			}
			continue
		}
		if item.Amount.IsPositive() {
			b.SurchargeBase = b.SurchargeBase.Add(item.Amount)
		}
	}

	b.AdminFeeBase = rental.RentAmount.Add(b.SurchargeBase)
	b.AdministrativeFee = b.AdminFeeBase.Mul(rate.Shift(-2))

	b.ChargesTotal = rental.WaterBill.Add(rental.CondoFee).Add(rental.IPTU).Add(rental.GasBill)
	b.GrossTotal = rental.RentAmount.Add(b.ChargesTotal).Add(b.OtherItemsTotal)

	for _, item := range rental.OwnerItems {
		b.OwnerItemsTotal = b.OwnerItemsTotal.Add(item.Amount)
	}

	b.NetTransfer = b.GrossTotal.Sub(b.AdministrativeFee).Sub(b.BankFee).Add(b.OwnerItemsTotal)
	return b
}
