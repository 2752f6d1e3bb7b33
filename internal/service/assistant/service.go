// Package assistant answers back-office questions with a language model that sees the
// period's computed figures and the recent WhatsApp traffic.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/domain/finance"
	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/service/reporting"
	"github.com/jobh/imoveis/pkg/clients/openrouter"
)

// ErrDisabled is returned when no language model is configured.
var ErrDisabled = errors.New("assistant is not configured")

const botSenderID = "whatsapp_bot"

// Reports provides the figures shown to the model.
type Reports interface {
	Dashboard(ctx context.Context, p models.Period) (reporting.Dashboard, error)
	Ledger(ctx context.Context, p models.Period) ([]reporting.LedgerRow, error)
}

// OccurrenceCreator opens service tickets requested by the model.
type OccurrenceCreator interface {
	Create(ctx context.Context, occ models.Occurrence) (models.Occurrence, error)
}

// Service runs assistant conversations.
type Service struct {
	ai          openrouter.Client
	reports     Reports
	occurrences OccurrenceCreator
	sessions    *SessionManager
	logger      *zap.Logger
	now         func() time.Time
}

// NewService wires the assistant. A nil ai client disables it.
func NewService(ai openrouter.Client, reports Reports, occurrences OccurrenceCreator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ai:          ai,
		reports:     reports,
		occurrences: occurrences,
		sessions:    NewSessionManager(),
		logger:      logger,
		now:         time.Now,
	}
}

// Enabled reports whether a model is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.ai != nil
}

// Ask sends the query with the period context and the session history. CREATE_OCCURRENCE
// actions are executed here; the remaining actions are returned for the caller.
func (s *Service) Ask(ctx context.Context, req models.AssistantRequest) (models.AssistantReply, error) {
	if !s.Enabled() {
		return models.AssistantReply{}, ErrDisabled
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return models.AssistantReply{}, errors.New("query must not be empty")
	}

	period := req.Period
	if !period.Valid() {
		period = models.PeriodOf(s.now())
	}
	figures, err := s.periodContext(ctx, period)
	if err != nil {
		return models.AssistantReply{}, err
	}

	userMsg := openrouter.Message{Role: "user", Content: query}
	messages := []openrouter.Message{{Role: "system", Content: systemPrompt(period, figures, req.Recent)}}
	messages = append(messages, s.sessions.History(req.SessionID)...)
	messages = append(messages, userMsg)

	raw, err := s.ai.Complete(ctx, messages)
	if err != nil {
		return models.AssistantReply{}, fmt.Errorf("assistant completion: %w", err)
	}

	reply := ParseReply(raw)
	s.sessions.Append(req.SessionID, userMsg, openrouter.Message{Role: "assistant", Content: reply.Text})

	reply.Actions = s.execute(ctx, reply.Actions)
	return reply, nil
}

// ParseReply reads the {"text", "actions"} object between the first "{" and the last "}"
// of the model output. Anything else is treated as plain text.
func ParseReply(raw string) models.AssistantReply {
	raw = strings.TrimSpace(raw)
	first, last := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if first >= 0 && last > first {
		var reply models.AssistantReply
		if err := json.Unmarshal([]byte(raw[first:last+1]), &reply); err == nil && (reply.Text != "" || len(reply.Actions) > 0) {
			return reply
		}
	}
	return models.AssistantReply{Text: raw}
}

func (s *Service) execute(ctx context.Context, actions []models.AssistantAction) []models.AssistantAction {
	pending := make([]models.AssistantAction, 0, len(actions))
	for _, action := range actions {
		switch strings.ToUpper(action.Name) {
		case models.ActionCreateOccurrence:
			if s.occurrences == nil {
				continue
			}
			occ, err := s.occurrences.Create(ctx, models.Occurrence{
				Description: action.Param("description"),
				Urgency:     action.Param("urgency"),
				Type:        action.Param("type"),
				SenderID:    botSenderID,
				SenderType:  "tenant",
			})
			if err != nil {
				s.logger.Warn("assistant occurrence rejected", zap.Error(err))
				continue
			}
			s.logger.Info("assistant opened occurrence", zap.String("occurrence_id", occ.ID))
		case models.ActionSendWhatsApp:
			action.Name = models.ActionSendWhatsApp
			pending = append(pending, action)
		default:
			s.logger.Debug("ignoring assistant action", zap.String("action", action.Name))
		}
	}
	return pending
}

func (s *Service) periodContext(ctx context.Context, p models.Period) (string, error) {
	if s.reports == nil {
		return "", nil
	}
	dash, err := s.reports.Dashboard(ctx, p)
	if err != nil {
		return "", fmt.Errorf("load dashboard: %w", err)
	}
	rows, err := s.reports.Ledger(ctx, p)
	if err != nil {
		return "", fmt.Errorf("load ledger: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total recebido: %s | Taxas de administração: %s | Total repassado: %s\n",
		finance.FormatBRL(dash.TotalPaid), finance.FormatBRL(dash.TotalAdminFee), finance.FormatBRL(dash.TotalTransferred))
	for _, row := range rows {
		r := row.Rental
		fmt.Fprintf(&b, "LF %s | %s | inquilino %s | proprietário %s | vence dia %d | total %s | tx adm %s | repasse %s | pago: %s | repassado: %s\n",
			r.RefNumber, r.PropertyName, r.TenantName, r.OwnerName, r.DueDay,
			finance.FormatBRL(row.Breakdown.GrossTotal), finance.FormatBRL(row.Breakdown.AdministrativeFee),
			finance.FormatBRL(row.Breakdown.NetTransfer), yesNo(r.IsPaid), yesNo(r.IsTransferred))
	}
	return b.String(), nil
}

func systemPrompt(p models.Period, figures string, recent []models.ChatLogEntry) string {
	var wa strings.Builder
	for _, e := range recent {
		fmt.Fprintf(&wa, "%s - %s: %s\n", e.Time.Format("15:04"), e.Contact, e.Text)
	}

	return fmt.Sprintf(`Você é a Jobh IA, o assistente inteligente da Jobh Imóveis.
Sua missão é ajudar na gestão de aluguéis, inquilinos, proprietários e WhatsApp.

REGRAS:
1. Idioma: sempre Português (Brasil).
2. Formato: SEMPRE JSON válido: {"text": "sua resposta", "actions": []}.
3. Ações disponíveis:
   - CREATE_OCCURRENCE com params {"description", "urgency" (low|medium|high), "type" (maintenance|financial|general)}
   - SEND_WHATSAPP com params {"message", "to" (opcional)}
4. Responda com os dados abaixo imediatamente. Nunca diga "vou verificar" ou "aguarde".
5. Use apenas os valores calculados abaixo. Não recalcule taxas ou repasses.

Período: %s
Dados do período:
%s
Histórico recente do WhatsApp:
%s`, p, figures, wa.String())
}

func yesNo(v bool) string {
	if v {
		return "sim"
	}
	return "não"
}
