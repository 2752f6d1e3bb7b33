package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/domain/finance"
	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/repository"
	"github.com/jobh/imoveis/internal/service/rentals"
	"github.com/jobh/imoveis/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// HelpText lists the commands understood over WhatsApp.
const HelpText = `*Comandos disponíveis*
/resumo [mês] [ano] - totais do período
/repasse [mês] [ano] - repasse por proprietário
/pendentes - aluguéis a receber e a repassar
/pago <ref> - marca o aluguel como pago
/repassado <ref> - marca o aluguel como repassado
/ajuda - esta mensagem`

// RentalsAdapter is the part of the rentals service the dispatcher drives.
type RentalsAdapter interface {
	ListRentals(ctx context.Context, filter models.RentalFilter) ([]models.Rental, error)
	MarkPaid(ctx context.Context, id string, paid bool) (models.Rental, error)
	MarkTransferred(ctx context.Context, id string, transferred bool) (models.Rental, error)
	Status(ctx context.Context, p models.Period, today time.Time) (rentals.PeriodStatus, error)
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	Dashboard(ctx context.Context, p models.Period) (reporting.Dashboard, error)
	RepasseList(ctx context.Context, p models.Period, rentalIDs []string) (reporting.RepasseList, error)
}

// Dispatcher executes parsed commands and returns the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	rentals   RentalsAdapter
	reporting ReportingAdapter
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(rentals RentalsAdapter, reporting ReportingAdapter, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		rentals:   rentals,
		reporting: reporting,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand runs the command and builds its reply.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	now := s.now().In(s.loc)

	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Any("args", cmd.Args))

	switch cmd.Type {
	case models.CommandSummary:
		p, err := periodArgs(cmd.Args, now)
		if err != nil {
			return "", err
		}
		return s.summary(ctx, p)
	case models.CommandRepasse:
		p, err := periodArgs(cmd.Args, now)
		if err != nil {
			return "", err
		}
		return s.repasse(ctx, p)
	case models.CommandPending:
		return s.pending(ctx, models.PeriodOf(now), now)
	case models.CommandPaid:
		return s.flag(ctx, cmd, models.PeriodOf(now), "pago", s.rentals.MarkPaid)
	case models.CommandTransferred:
		return s.flag(ctx, cmd, models.PeriodOf(now), "repassado", s.rentals.MarkTransferred)
	case models.CommandHelp:
		return HelpText, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) summary(ctx context.Context, p models.Period) (string, error) {
	dash, err := s.reporting.Dashboard(ctx, p)
	if err != nil {
		return "", err
	}
	if dash.Rentals == 0 {
		return fmt.Sprintf("Nenhum aluguel em %s.", p), nil
	}
	return fmt.Sprintf("*Resumo %s*\nAluguéis: %d (%d pagos, %d repassados)\nRecebido: %s\nTaxas de administração: %s\nRepassado: %s",
		p, dash.Rentals, dash.Paid, dash.Transferred,
		finance.FormatBRL(dash.TotalPaid), finance.FormatBRL(dash.TotalAdminFee), finance.FormatBRL(dash.TotalTransferred)), nil
}

func (s *Service) repasse(ctx context.Context, p models.Period) (string, error) {
	list, err := s.reporting.RepasseList(ctx, p, nil)
	if errors.Is(err, reporting.ErrNoRentals) {
		return fmt.Sprintf("Nenhum aluguel em %s.", p), nil
	}
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Repasse %s*", p)
	for _, g := range list.Groups {
		fmt.Fprintf(&b, "\n%s: %s (%d imóve%s)", g.OwnerName, finance.FormatBRL(g.Totals.Net), len(g.Rows), plural(len(g.Rows), "l", "is"))
	}
	fmt.Fprintf(&b, "\nTotal: %s", finance.FormatBRL(list.Totals.Net))
	return b.String(), nil
}

func (s *Service) pending(ctx context.Context, p models.Period, today time.Time) (string, error) {
	status, err := s.rentals.Status(ctx, p, today)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Pendências %s*\nA repassar: %d\nEm atraso: %d\nA vencer: %d",
		p, len(status.PaidNotTransferred), len(status.Overdue), len(status.Pending))
	for _, r := range status.Overdue {
		fmt.Fprintf(&b, "\nAtrasado: LF %s - %s (dia %d)", r.RefNumber, r.TenantName, r.DueDay)
	}
	return b.String(), nil
}

type flagFunc func(ctx context.Context, id string, value bool) (models.Rental, error)

func (s *Service) flag(ctx context.Context, cmd models.Command, p models.Period, label string, set flagFunc) (string, error) {
	if len(cmd.Args) != 1 {
		return "", fmt.Errorf("%w: informe a referência do imóvel", ErrInvalidArguments)
	}
	ref := strings.TrimPrefix(cmd.Args[0], "lf")

	list, err := s.rentals.ListRentals(ctx, p.Filter())
	if err != nil {
		return "", err
	}
	for _, r := range list {
		if !strings.EqualFold(r.RefNumber, ref) {
			continue
		}
		updated, err := set(ctx, r.ID, true)
		if err != nil {
			return "", err
		}
		s.logger.Info("rental flag set by command", zap.String("rental_id", updated.ID), zap.String("flag", label))
		return fmt.Sprintf("LF %s (%s) marcado como %s em %s.", updated.RefNumber, updated.TenantName, label, p), nil
	}
	return "", fmt.Errorf("%w: LF %s em %s", repository.ErrNotFound, ref, p)
}

// periodArgs reads an optional month and year, defaulting to the current period.
func periodArgs(args []string, now time.Time) (models.Period, error) {
	current := models.PeriodOf(now)
	switch len(args) {
	case 0:
		return current, nil
	case 1, 2:
		year := current.Year
		if len(args) == 2 {
			y, err := strconv.Atoi(args[1])
			if err != nil {
				return models.Period{}, fmt.Errorf("%w: ano %q", ErrInvalidArguments, args[1])
			}
			year = y
		}
		p, err := models.ParsePeriod(args[0], year)
		if err != nil {
			return models.Period{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		return p, nil
	default:
		return models.Period{}, fmt.Errorf("%w: use [mês] [ano]", ErrInvalidArguments)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
