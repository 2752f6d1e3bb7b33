package models

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// LineItem is a signed monetary adjustment attached to a rental.
type LineItem struct {
	ID          string          `bson:"id" json:"id"`
	Description string          `bson:"description" json:"description"`
	Amount      decimal.Decimal `bson:"amount" json:"amount"`
}

// ItemSide selects which item list of a rental is addressed.
type ItemSide string

const (
	ItemSideTenant ItemSide = "tenant"
	ItemSideOwner  ItemSide = "owner"
)

// Owner is a property owner receiving transfers.
type Owner struct {
	ID                 string          `bson:"_id" json:"id"`
	Name               string          `bson:"name" json:"name"`
	CPF                string          `bson:"cpf" json:"cpf"`
	RgCnh              string          `bson:"rg_cnh,omitempty" json:"rgCnh,omitempty"`
	AdminFeePercentage decimal.Decimal `bson:"admin_fee_percentage" json:"adminFeePercentage"`
	PixKey             string          `bson:"pix_key,omitempty" json:"pixKey,omitempty"`
	BankDetails        string          `bson:"bank_details,omitempty" json:"bankDetails,omitempty"`
	Phone              string          `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Rental is a tenancy record for one property, tenant and month.
type Rental struct {
	ID                      string           `bson:"_id" json:"id"`
	OwnerID                 string           `bson:"owner_id" json:"ownerId"`
	OwnerName               string           `bson:"owner_name" json:"owner"`
	OwnerAdminFeePercentage *decimal.Decimal `bson:"owner_admin_fee_percentage,omitempty" json:"ownerAdminFeePercentage,omitempty"`
	RefNumber               string           `bson:"ref_number" json:"refNumber"`
	TenantName              string           `bson:"tenant_name" json:"tenantName"`
	TenantCPF               string           `bson:"tenant_cpf,omitempty" json:"tenantCpf,omitempty"`
	TenantRgCnh             string           `bson:"tenant_rg_cnh,omitempty" json:"tenantRgCnh,omitempty"`
	PropertyName            string           `bson:"property_name" json:"propertyName"`
	DueDay                  int              `bson:"due_day" json:"dueDay"`
	Month                   string           `bson:"month" json:"month"`
	Year                    int              `bson:"year" json:"year"`
	IsPaid                  bool             `bson:"is_paid" json:"isPaid"`
	IsTransferred           bool             `bson:"is_transferred" json:"isTransferred"`
	RentAmount              decimal.Decimal  `bson:"rent_amount" json:"rentAmount"`
	WaterBill               decimal.Decimal  `bson:"water_bill" json:"waterBill"`
	CondoFee                decimal.Decimal  `bson:"condo_fee" json:"condoFee"`
	IPTU                    decimal.Decimal  `bson:"iptu" json:"iptu"`
	GasBill                 decimal.Decimal  `bson:"gas_bill" json:"gasBill"`
	OtherItems              []LineItem       `bson:"other_items" json:"otherItems"`
	OwnerItems              []LineItem       `bson:"owner_items" json:"ownerItems"`
	ContractDate            string           `bson:"contract_date,omitempty" json:"contractDate,omitempty"`
	LastAdjustmentYear      *int             `bson:"last_adjustment_year,omitempty" json:"lastAdjustmentYear,omitempty"`
	RentDescription         string           `bson:"rent_description,omitempty" json:"rentDescription,omitempty"`
	Phone                   string           `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Period returns the month/year the rental belongs to.
func (r Rental) Period() Period {
	return Period{Month: r.Month, Year: r.Year}
}

// Items returns the item list for the given side.
func (r Rental) Items(side ItemSide) []LineItem {
	if side == ItemSideOwner {
		return r.OwnerItems
	}
	return r.OtherItems
}

// RentalFilter narrows rental listings. Zero values match everything.
type RentalFilter struct {
	Month   string
	Year    int
	OwnerID string
}

// Matches reports whether the rental satisfies the filter.
func (f RentalFilter) Matches(r Rental) bool {
	if f.Month != "" && r.Month != f.Month {
		return false
	}
	if f.Year != 0 && r.Year != f.Year {
		return false
	}
	if f.OwnerID != "" && r.OwnerID != f.OwnerID {
		return false
	}
	return true
}

// SortByRef orders rentals by reference number, numerically when both references parse.
func SortByRef(rentals []Rental) {
	sort.SliceStable(rentals, func(i, j int) bool {
		a, errA := strconv.ParseFloat(rentals[i].RefNumber, 64)
		b, errB := strconv.ParseFloat(rentals[j].RefNumber, 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return rentals[i].RefNumber < rentals[j].RefNumber
		}
	})
}
