package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobh/imoveis/internal/domain/models"
)

func writeBackup(t *testing.T) string {
	t.Helper()
	snapshot := models.Snapshot{
		Owners: []models.Owner{{ID: "o1", Name: "Ana", AdminFeePercentage: decimal.NewFromInt(10)}},
		Rentals: []models.Rental{{
			ID:         "r1",
			OwnerID:    "o1",
			OwnerName:  "Ana",
			RefNumber:  "101",
			TenantName: "Carlos",
			DueDay:     10,
			Month:      "Março",
			Year:       2025,
			IsPaid:     true,
			RentAmount: decimal.NewFromInt(2000),
			CondoFee:   decimal.NewFromInt(300),
			OtherItems: []models.LineItem{{ID: "i1", Description: "Tarifa bancária", Amount: decimal.NewFromInt(10)}},
		}},
		Version: "1.0",
	}
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func TestSummaryCmd(t *testing.T) {
	path := writeBackup(t)
	cmd := SummaryCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--file", path, "--month", "3", "--year", "2025"})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Aluguéis:      1 (1 pagos, 0 repassados)")
	assert.Contains(t, out.String(), "Recebido:      R$ 2.310,00")
	assert.Contains(t, out.String(), "Taxas adm.:    R$ 200,00")
}

func TestRepasseCmd(t *testing.T) {
	path := writeBackup(t)
	cmd := RepasseCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--file", path, "--month", "Março", "--year", "2025"})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "<html")
	assert.Contains(t, out.String(), "Ana")
}

func TestSummaryCmd_RequiresFile(t *testing.T) {
	cmd := SummaryCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--month", "3"})

	assert.Error(t, cmd.Execute())
}

func TestPeriodFlagsDefaultToCurrentMonth(t *testing.T) {
	flags := periodFlags{}
	now := time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC)

	p, err := flags.period(now)
	require.NoError(t, err)
	assert.Equal(t, models.Period{Month: "Julho", Year: 2025}, p)

	flags.month = "13"
	_, err = flags.period(now)
	assert.Error(t, err)
}
