package commands

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobh/imoveis/internal/config"
	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/repository"
	"github.com/jobh/imoveis/internal/repository/memory"
	"github.com/jobh/imoveis/internal/service/rentals"
	"github.com/jobh/imoveis/internal/service/reporting"
)

func setup(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.SaveOwner(ctx, models.Owner{ID: "o1", Name: "Ana", AdminFeePercentage: decimal.NewFromInt(10)}))

	seed := []models.Rental{
		{ID: "r1", RefNumber: "101", TenantName: "Carlos", DueDay: 10, IsPaid: true, RentAmount: decimal.NewFromInt(2000), CondoFee: decimal.NewFromInt(300),
			OtherItems: []models.LineItem{{ID: "i1", Description: "Tarifa bancária", Amount: decimal.NewFromInt(10)}}},
		{ID: "r2", RefNumber: "102", TenantName: "Bruna", DueDay: 5, RentAmount: decimal.NewFromInt(1000)},
		{ID: "r3", RefNumber: "103", TenantName: "Davi", DueDay: 20, RentAmount: decimal.NewFromInt(1500)},
	}
	for _, r := range seed {
		r.OwnerID, r.OwnerName, r.Month, r.Year = "o1", "Ana", "Março", 2025
		require.NoError(t, store.SaveRental(ctx, r))
	}
	require.NoError(t, store.SaveRental(ctx, models.Rental{ID: "r4", OwnerID: "o1", RefNumber: "101", Month: "Abril", Year: 2025, DueDay: 10}))

	reports := reporting.NewService(store, nil, config.CompanyConfig{}, time.UTC, nil)
	svc := NewService(rentals.NewService(store, nil), reports, time.UTC, nil)
	svc.now = func() time.Time { return time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC) }
	return svc, store
}

func run(t *testing.T, svc *Service, text string) (string, error) {
	t.Helper()
	return svc.HandleCommand(context.Background(), models.ParseCommand(text), "5521999999999")
}

func TestSummary(t *testing.T) {
	svc, _ := setup(t)

	reply, err := run(t, svc, "/resumo")
	require.NoError(t, err)
	assert.Equal(t, "*Resumo Março/2025*\nAluguéis: 3 (1 pagos, 0 repassados)\nRecebido: R$ 2.310,00\nTaxas de administração: R$ 200,00\nRepassado: R$ 0,00", reply)

	reply, err = run(t, svc, "/resumo fevereiro 2025")
	require.NoError(t, err)
	assert.Equal(t, "Nenhum aluguel em Fevereiro/2025.", reply)

	reply, err = run(t, svc, "/resumo 4")
	require.NoError(t, err)
	assert.Contains(t, reply, "*Resumo Abril/2025*")
}

func TestSummary_InvalidArguments(t *testing.T) {
	svc, _ := setup(t)

	for _, text := range []string{"/resumo xyz", "/resumo março abc", "/resumo março 2025 extra"} {
		_, err := run(t, svc, text)
		assert.ErrorIs(t, err, ErrInvalidArguments, text)
	}
}

func TestRepasse(t *testing.T) {
	svc, _ := setup(t)

	reply, err := run(t, svc, "/repasse março")
	require.NoError(t, err)
	assert.Equal(t, "*Repasse Março/2025*\nAna: R$ 4.350,00 (3 imóveis)\nTotal: R$ 4.350,00", reply)

	reply, err = run(t, svc, "/repasse maio")
	require.NoError(t, err)
	assert.Equal(t, "Nenhum aluguel em Maio/2025.", reply)
}

func TestPending(t *testing.T) {
	svc, _ := setup(t)

	reply, err := run(t, svc, "/pendentes")
	require.NoError(t, err)
	assert.Equal(t, "*Pendências Março/2025*\nA repassar: 1\nEm atraso: 1\nA vencer: 1\nAtrasado: LF 102 - Bruna (dia 5)", reply)
}

func TestFlags(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	reply, err := run(t, svc, "/pago 102")
	require.NoError(t, err)
	assert.Equal(t, "LF 102 (Bruna) marcado como pago em Março/2025.", reply)
	r, err := store.GetRental(ctx, "r2")
	require.NoError(t, err)
	assert.True(t, r.IsPaid)

	reply, err = run(t, svc, "/repassado LF101")
	require.NoError(t, err)
	assert.Contains(t, reply, "marcado como repassado")
	r, err = store.GetRental(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, r.IsTransferred)
	untouched, err := store.GetRental(ctx, "r4")
	require.NoError(t, err)
	assert.False(t, untouched.IsTransferred)

	_, err = run(t, svc, "/pago 999")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = run(t, svc, "/pago")
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestHelpAndUnknown(t *testing.T) {
	svc, _ := setup(t)

	reply, err := run(t, svc, "/ajuda")
	require.NoError(t, err)
	assert.Equal(t, HelpText, reply)

	_, err = run(t, svc, "/ovos 10")
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
}
