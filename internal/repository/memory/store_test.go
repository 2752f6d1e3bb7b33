package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/repository"
)

func TestStore_RentalsAreIsolatedCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	r := models.Rental{ID: "r1", Month: "Março", Year: 2025, OtherItems: []models.LineItem{{ID: "a", Amount: decimal.NewFromInt(5)}}}
	require.NoError(t, s.SaveRental(ctx, r))

	r.OtherItems[0].Amount = decimal.NewFromInt(99)

	got, err := s.GetRental(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, got.OtherItems[0].Amount.Equal(decimal.NewFromInt(5)))

	got.OtherItems[0].Amount = decimal.NewFromInt(42)
	again, err := s.GetRental(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, again.OtherItems[0].Amount.Equal(decimal.NewFromInt(5)))
}

func TestStore_ListRentalsFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, r := range []models.Rental{
		{ID: "a", RefNumber: "10", Month: "Março", Year: 2025, OwnerID: "o1"},
		{ID: "b", RefNumber: "9", Month: "Março", Year: 2025, OwnerID: "o2"},
		{ID: "c", RefNumber: "1", Month: "Abril", Year: 2025, OwnerID: "o1"},
	} {
		require.NoError(t, s.SaveRental(ctx, r))
	}

	march, err := s.ListRentals(ctx, models.RentalFilter{Month: "Março", Year: 2025})
	require.NoError(t, err)
	require.Len(t, march, 2)
	assert.Equal(t, "b", march[0].ID)
	assert.Equal(t, "a", march[1].ID)

	byOwner, err := s.ListRentals(ctx, models.RentalFilter{OwnerID: "o1"})
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)
}

func TestStore_DeleteRentals(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveRental(ctx, models.Rental{ID: "a", Month: "Março", Year: 2025}))
	require.NoError(t, s.SaveRental(ctx, models.Rental{ID: "b", Month: "Abril", Year: 2025}))

	n, err := s.DeleteRentals(ctx, models.RentalFilter{Month: "Março", Year: 2025})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.GetRental(ctx, "a")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveOwner(ctx, models.Owner{ID: "old"}))

	err := s.ReplaceAll(ctx, models.Snapshot{
		Owners:    []models.Owner{{ID: "o1", Name: "Ana"}},
		Rentals:   []models.Rental{{ID: "r1"}},
		PixConfig: &models.PixConfig{PixKey: "chave"},
	})
	require.NoError(t, err)

	_, err = s.GetOwner(ctx, "old")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	owners, err := s.ListOwners(ctx)
	require.NoError(t, err)
	assert.Len(t, owners, 1)

	pix, err := s.GetPixConfig(ctx)
	require.NoError(t, err)
	require.NotNil(t, pix)
	assert.Equal(t, "chave", pix.PixKey)
}

func TestNewStoreFromSnapshot(t *testing.T) {
	ctx := context.Background()
	pix := &models.PixConfig{PixPayload: "chave"}

	s, err := NewStoreFromSnapshot(models.Snapshot{
		Owners:    []models.Owner{{ID: "o1", Name: "Ana"}},
		Rentals:   []models.Rental{{ID: "r1", OwnerID: "o1", Month: "Março", Year: 2025}},
		PixConfig: pix,
	})
	require.NoError(t, err)

	owner, err := s.GetOwner(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", owner.Name)

	_, err = s.GetRental(ctx, "r1")
	require.NoError(t, err)

	got, err := s.GetPixConfig(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "chave", got.PixPayload)
}
