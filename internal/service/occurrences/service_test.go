package occurrences

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/repository"
	"github.com/jobh/imoveis/internal/repository/memory"
)

func TestCreate_Defaults(t *testing.T) {
	svc := NewService(memory.NewStore(), nil)
	svc.now = func() time.Time { return time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC) }

	occ, err := svc.Create(context.Background(), models.Occurrence{Description: " Vazamento na pia "})
	require.NoError(t, err)

	assert.Equal(t, "Vazamento na pia", occ.Description)
	assert.Equal(t, "medium", occ.Urgency)
	assert.Equal(t, "maintenance", occ.Type)
	assert.Equal(t, "tenant", occ.SenderType)
	assert.Equal(t, models.OccurrencePending, occ.Status)
	assert.Equal(t, "05/03/2025", occ.Date)
	assert.NotEmpty(t, occ.ID)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(memory.NewStore(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.Occurrence{})
	assert.ErrorIs(t, err, ErrInvalidOccurrence)

	_, err = svc.Create(ctx, models.Occurrence{Description: "x", Urgency: "critical"})
	assert.ErrorIs(t, err, ErrInvalidOccurrence)
}

func TestListNewestFirstAndUpdateStatus(t *testing.T) {
	svc := NewService(memory.NewStore(), nil)
	ctx := context.Background()
	clock := time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	first, err := svc.Create(ctx, models.Occurrence{Description: "primeira"})
	require.NoError(t, err)
	clock = clock.Add(time.Hour)
	second, err := svc.Create(ctx, models.Occurrence{Description: "segunda", Type: "financial"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	updated, err := svc.UpdateStatus(ctx, first.ID, models.OccurrenceResolved)
	require.NoError(t, err)
	assert.Equal(t, models.OccurrenceResolved, updated.Status)

	_, err = svc.UpdateStatus(ctx, first.ID, "closed")
	assert.ErrorIs(t, err, ErrInvalidOccurrence)
	_, err = svc.UpdateStatus(ctx, "missing", models.OccurrenceResolved)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
