package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobh/imoveis/internal/config"
	"github.com/jobh/imoveis/internal/domain/finance"
	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/repository/memory"
	"github.com/jobh/imoveis/internal/repository/mongodb"
	"github.com/jobh/imoveis/internal/service/backup"
	"github.com/jobh/imoveis/internal/service/reporting"
	"github.com/jobh/imoveis/pkg/logger"
)

type periodFlags struct {
	file  string
	month string
	year  int
}

func (f *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "backup JSON file")
	cmd.Flags().StringVarP(&f.month, "month", "m", "", "month name or number (default: current month)")
	cmd.Flags().IntVarP(&f.year, "year", "y", 0, "year (default: current year)")
	_ = cmd.MarkFlagRequired("file")
}

func (f *periodFlags) period(now time.Time) (models.Period, error) {
	current := models.PeriodOf(now)
	month, year := f.month, f.year
	if month == "" {
		month = current.Month
	}
	if year == 0 {
		year = current.Year
	}
	return models.ParsePeriod(month, year)
}

// loadReporting builds a reporting service over the backup file kept in memory.
func loadReporting(path string) (*reporting.Service, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	snapshot, err := backup.Decode(content)
	if err != nil {
		return nil, err
	}
	store, err := memory.NewStoreFromSnapshot(snapshot)
	if err != nil {
		return nil, fmt.Errorf("load backup: %w", err)
	}
	company := config.CompanyConfig{Name: "Jobh Imóveis", Doc: "CRECI-RJ: 31.387"}
	return reporting.NewService(store, nil, company, nil, nil), nil
}

func SummaryCmd() *cobra.Command {
	var flags periodFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the totals of a period from a backup file",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.period(time.Now())
			if err != nil {
				return err
			}
			svc, err := loadReporting(flags.file)
			if err != nil {
				return err
			}
			d, err := svc.Dashboard(cmd.Context(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Período:       %s\n", p)
			fmt.Fprintf(out, "Aluguéis:      %d (%d pagos, %d repassados)\n", d.Rentals, d.Paid, d.Transferred)
			fmt.Fprintf(out, "Recebido:      %s\n", finance.FormatBRL(d.TotalPaid))
			fmt.Fprintf(out, "Taxas adm.:    %s\n", finance.FormatBRL(d.TotalAdminFee))
			fmt.Fprintf(out, "Repassado:     %s\n", finance.FormatBRL(d.TotalTransferred))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func RepasseCmd() *cobra.Command {
	var flags periodFlags
	cmd := &cobra.Command{
		Use:   "repasse",
		Short: "Render the transfer list of a period as HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.period(time.Now())
			if err != nil {
				return err
			}
			svc, err := loadReporting(flags.file)
			if err != nil {
				return err
			}
			list, err := svc.RepasseList(cmd.Context(), p, nil)
			if err != nil {
				return err
			}
			return reporting.RenderRepasse(cmd.OutOrStdout(), list)
		},
	}
	flags.register(cmd)
	return cmd
}

func RestoreCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the MongoDB state with a backup file",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			snapshot, err := backup.Decode(content)
			if err != nil {
				return err
			}

			cfg, err := config.Load("")
			if err != nil {
				return err
			}
			if cfg.MongoDB.URI == "" {
				return fmt.Errorf("MONGODB_URI must be provided")
			}
			log, err := logger.New(cfg.Server.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close(context.Background()) }()

			svc := backup.NewService(repo, nil, cfg.Google.DriveFileName, log.Named("svc.backup"))
			if err := svc.Import(ctx, snapshot); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Restaurado: %d proprietários, %d aluguéis, %d ocorrências\n",
				len(snapshot.Owners), len(snapshot.Rentals), len(snapshot.Occurrences))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "backup JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
