package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jobh/imoveis/internal/domain/models"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func baseRental() models.Rental {
	return models.Rental{
		ID:         "r1",
		OwnerID:    "o1",
		RefNumber:  "101",
		RentAmount: d("2000"),
		CondoFee:   d("300"),
		OtherItems: []models.LineItem{
			{ID: "i1", Description: "Tarifa bancária", Amount: d("10")},
		},
	}
}

func TestCompute_ReferenceExample(t *testing.T) {
	b := Compute(baseRental(), d("10"))

	assertAmount(t, "2000", b.AdminFeeBase, "adminFeeBase")
	assertAmount(t, "200", b.AdministrativeFee, "administrativeFee")
	assertAmount(t, "10", b.BankFee, "bankFee")
	assertAmount(t, "300", b.ChargesTotal, "chargesTotal")
	assertAmount(t, "10", b.OtherItemsTotal, "otherItemsTotal")
	assertAmount(t, "2310", b.GrossTotal, "grossTotal")
	assertAmount(t, "2100", b.NetTransfer, "netTransfer")
	assert.Equal(t, "i1", b.BankFeeItemID)
}

func TestCompute_OwnerItemAdjustsOnlyNetTransfer(t *testing.T) {
	r := baseRental()
	r.OwnerItems = []models.LineItem{{ID: "o1", Description: "Reparo", Amount: d("-150")}}

	b := Compute(r, d("10"))

	assertAmount(t, "1950", b.NetTransfer, "netTransfer")
	assertAmount(t, "2310", b.GrossTotal, "grossTotal")
	assertAmount(t, "200", b.AdministrativeFee, "administrativeFee")
	assertAmount(t, "-150", b.OwnerItemsTotal, "ownerItemsTotal")
}

func TestCompute_RentOnly(t *testing.T) {
	r := models.Rental{RentAmount: d("1234.56")}

	b := Compute(r, d("7.5"))

	assertAmount(t, "92.592", b.AdministrativeFee, "administrativeFee")
	assert.True(t, b.GrossTotal.Equal(b.NetTransfer.Add(b.AdministrativeFee)))
	assertAmount(t, "0", b.BankFee, "bankFee")
	assertAmount(t, "0", b.OwnerItemsTotal, "ownerItemsTotal")
}

func TestCompute_TariffItem(t *testing.T) {
	r := models.Rental{RentAmount: d("1500"), WaterBill: d("80")}
	before := Compute(r, d("10"))

	r.OtherItems = []models.LineItem{{ID: "t", Description: "TARIFA DOC", Amount: d("8.5")}}
	after := Compute(r, d("10"))

	assertAmount(t, "8.5", after.BankFee, "bankFee")
	assert.True(t, before.AdministrativeFee.Equal(after.AdministrativeFee))
	assert.True(t, after.GrossTotal.Sub(before.GrossTotal).Equal(d("8.5")))
	// charged to the tenant, withheld from the owner
	assert.True(t, after.NetTransfer.Equal(after.GrossTotal.Sub(after.AdministrativeFee).Sub(d("8.5"))))
	assert.True(t, after.NetTransfer.Equal(before.NetTransfer))
}

func TestCompute_PositiveSurcharge(t *testing.T) {
	r := models.Rental{RentAmount: d("1000")}
	before := Compute(r, d("12"))

	r.OtherItems = []models.LineItem{{Description: "Multa 10% (Aluguel)", Amount: d("100")}}
	after := Compute(r, d("12"))

	assertAmount(t, "100", after.AdminFeeBase.Sub(before.AdminFeeBase), "adminFeeBase delta")
	assertAmount(t, "12", after.AdministrativeFee.Sub(before.AdministrativeFee), "administrativeFee delta")
	assertAmount(t, "100", after.GrossTotal.Sub(before.GrossTotal), "grossTotal delta")
	assertAmount(t, "88", after.NetTransfer.Sub(before.NetTransfer), "netTransfer delta")
}

func TestCompute_NegativeItemDoesNotReduceFeeBase(t *testing.T) {
	r := models.Rental{RentAmount: d("1000")}
	before := Compute(r, d("10"))

	r.OtherItems = []models.LineItem{{Description: "Desconto pontualidade", Amount: d("-50")}}
	after := Compute(r, d("10"))

	assert.True(t, before.AdminFeeBase.Equal(after.AdminFeeBase))
	assert.True(t, before.AdministrativeFee.Equal(after.AdministrativeFee))
	assertAmount(t, "-50", after.GrossTotal.Sub(before.GrossTotal), "grossTotal delta")
	assertAmount(t, "-50", after.NetTransfer.Sub(before.NetTransfer), "netTransfer delta")
}

func TestCompute_OnlyFirstTariffIsBankFee(t *testing.T) {
	r := models.Rental{
		RentAmount: d("1000"),
		OtherItems: []models.LineItem{
			{ID: "a", Description: "tarifa boleto", Amount: d("5")},
			{ID: "b", Description: "Tarifa PIX", Amount: d("3")},
		},
	}

	b := Compute(r, d("10"))

	assertAmount(t, "5", b.BankFee, "bankFee")
	assert.Equal(t, "a", b.BankFeeItemID)
	assertAmount(t, "8", b.OtherItemsTotal, "otherItemsTotal")
	assertAmount(t, "1000", b.AdminFeeBase, "adminFeeBase")
	assertAmount(t, "1008", b.GrossTotal, "grossTotal")
	assertAmount(t, "903", b.NetTransfer, "netTransfer")
}

func TestCompute_ZeroRate(t *testing.T) {
	b := Compute(models.Rental{RentAmount: d("900")}, decimal.Zero)

	assert.True(t, b.AdministrativeFee.IsZero())
	assertAmount(t, "900", b.NetTransfer, "netTransfer")
}

func TestCompute_EmptyRental(t *testing.T) {
	var b Breakdown
	assert.NotPanics(t, func() { b = Compute(models.Rental{}, DefaultAdminFeePercentage) })

	assert.True(t, b.GrossTotal.IsZero())
	assert.True(t, b.NetTransfer.IsZero())
	assert.Empty(t, b.BankFeeItemID)
}

func TestCompute_IsIdempotentAndDoesNotMutate(t *testing.T) {
	r := baseRental()
	r.OwnerItems = []models.LineItem{{Description: "Reparo", Amount: d("-150")}}
	snapshot := r.OtherItems[0]

	first := Compute(r, d("10"))
	second := Compute(r, d("10"))

	assert.Equal(t, first.NetTransfer.String(), second.NetTransfer.String())
	assert.Equal(t, first.GrossTotal.String(), second.GrossTotal.String())
	assert.Equal(t, snapshot, r.OtherItems[0])
}

func TestCompute_KeepsPrecisionUntilFormatting(t *testing.T) {
	r := models.Rental{RentAmount: d("0.1")}
	var total decimal.Decimal
	for i := 0; i < 1000; i++ {
		total = total.Add(Compute(r, d("3.333")).AdministrativeFee)
	}

	assertAmount(t, "3.333", total, "accumulated fee")
}

func TestResolveRate(t *testing.T) {
	owners := []models.Owner{
		{ID: "o15", AdminFeePercentage: d("15")},
		{ID: "o0"},
	}
	override := d("8")
	zero := decimal.Zero

	tests := []struct {
		name   string
		rental models.Rental
		owners []models.Owner
		want   string
	}{
		{name: "override wins", rental: models.Rental{OwnerID: "o15", OwnerAdminFeePercentage: &override}, owners: owners, want: "8"},
		{name: "zero override honoured", rental: models.Rental{OwnerID: "o15", OwnerAdminFeePercentage: &zero}, owners: owners, want: "0"},
		{name: "owner rate", rental: models.Rental{OwnerID: "o15"}, owners: owners, want: "15"},
		{name: "owner without rate", rental: models.Rental{OwnerID: "o0"}, owners: owners, want: "10"},
		{name: "unknown owner", rental: models.Rental{OwnerID: "missing"}, owners: owners, want: "10"},
		{name: "no owners supplied", rental: models.Rental{OwnerID: "o15"}, want: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAmount(t, tt.want, ResolveRate(tt.rental, tt.owners), "rate")
		})
	}
}

func TestComputeFor_UsesOwnerRate(t *testing.T) {
	r := models.Rental{OwnerID: "o1", RentAmount: d("1000")}

	b := ComputeFor(r, []models.Owner{{ID: "o1", AdminFeePercentage: d("15")}})

	assertAmount(t, "150", b.AdministrativeFee, "administrativeFee")
	assertAmount(t, "15", b.AdminFeeRate, "rate")
}

func TestIsBankFee(t *testing.T) {
	assert.True(t, IsBankFee(models.LineItem{Description: "Tarifa bancária"}))
	assert.True(t, IsBankFee(models.LineItem{Description: "cobrança TARIFA"}))
	assert.False(t, IsBankFee(models.LineItem{Description: "Taxa extra"}))
	assert.False(t, IsBankFee(models.LineItem{}))
}
