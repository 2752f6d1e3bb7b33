package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/config"
	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/repository"
	"github.com/jobh/imoveis/internal/service/commands"
	client "github.com/jobh/imoveis/pkg/clients/whatsapp"
)

// ErrMessagingDisabled is returned when sending without a WhatsApp access token.
var ErrMessagingDisabled = errors.New("whatsapp messaging is not configured")

const (
	sendTimeout      = 10 * time.Second
	greetingReply    = "Olá! Recebemos sua mensagem e a administração da Jobh Imóveis responderá em breve."
	managerOnlyReply = "Comandos disponíveis apenas para a administração."
)

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	RecentMessages() []models.ChatLogEntry
}

// Assistant answers free-text messages when autopilot is on.
type Assistant interface {
	Enabled() bool
	Ask(ctx context.Context, req models.AssistantRequest) (models.AssistantReply, error)
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	assistant  Assistant
	monitor    *Monitor
	logger     *zap.Logger
	now        func() time.Time
}

// NewMetaWhatsAppService wires a new service instance. assistant may be nil.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, assistant Assistant, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		assistant:  assistant,
		monitor:    NewMonitor(MonitorSize),
		logger:     logger,
		now:        time.Now,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if s.cfg.VerifyToken == "" || verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads. Delivery statuses are ignored.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, change.Value, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

// RecentMessages returns the monitor log, newest first.
func (s *MetaWhatsAppService) RecentMessages() []models.ChatLogEntry {
	return s.monitor.Entries()
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, value models.WebhookValue, msg models.InboundMessage) error {
	text := strings.TrimSpace(msg.Body())
	if text == "" {
		s.logger.Debug("skipping message without text", zap.String("type", msg.Type), zap.String("message_id", msg.ID))
		return nil
	}

	sentAt := msg.SentAt()
	if sentAt.IsZero() {
		sentAt = s.now()
	}
	contact := value.ContactName(msg.From)
	s.monitor.Record(models.ChatLogEntry{Contact: contact, From: msg.From, Text: text, Time: sentAt})
	s.markRead(ctx, msg.ID)

	switch {
	case models.IsCommand(text):
		return s.send(ctx, msg.From, s.runCommand(ctx, msg.From, text), false)
	case s.cfg.Autopilot && s.assistant != nil && s.assistant.Enabled():
		return s.autopilot(ctx, msg.From, contact, text)
	default:
		return s.send(ctx, msg.From, greetingReply, false)
	}
}

func (s *MetaWhatsAppService) runCommand(ctx context.Context, from, text string) string {
	if s.cfg.ManagerID != "" && !s.isManager(from) {
		return managerOnlyReply
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", from),
		zap.String("command", string(cmd.Type)),
		zap.Any("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, from)
	switch {
	case err == nil:
		return reply
	case errors.Is(err, commands.ErrUnsupportedCommand):
		return "Comando não reconhecido.\n\n" + commands.HelpText
	case errors.Is(err, commands.ErrInvalidArguments), errors.Is(err, repository.ErrNotFound):
		return "Não foi possível executar: " + err.Error()
	default:
		s.logger.Error("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		return "Erro ao executar o comando. Tente novamente mais tarde."
	}
}

func (s *MetaWhatsAppService) autopilot(ctx context.Context, from, contact, text string) error {
	reply, err := s.assistant.Ask(ctx, models.AssistantRequest{
		SessionID: from,
		Query:     fmt.Sprintf("MENSAGEM RECEBIDA de %s: %q. RESPONDA DIRETAMENTE AGORA.", contact, text),
		Recent:    s.monitor.Entries(),
	})
	if err != nil {
		return fmt.Errorf("autopilot: %w", err)
	}

	if len(reply.Actions) == 0 {
		if reply.Text == "" {
			return nil
		}
		return s.send(ctx, from, reply.Text, false)
	}

	var firstErr error
	for _, action := range reply.Actions {
		message := action.Param("message")
		if message == "" {
			continue
		}
		to := from
		if s.isManager(from) && action.Param("to") != "" {
			to = action.Param("to")
		} else if other := action.Param("to"); other != "" && other != from {
			s.logger.Warn("ignoring assistant recipient outside manager chat",
				zap.String("from", from), zap.String("to", other))
		}
		if err := s.send(ctx, to, message, false); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// markRead is best effort; a failed read receipt never blocks the reply.
func (s *MetaWhatsAppService) markRead(ctx context.Context, messageID string) {
	if !s.cfg.Enabled() || s.client == nil || messageID == "" {
		return
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := s.client.MarkRead(ctxWithTimeout, messageID); err != nil {
		s.logger.Warn("failed to mark message read", zap.String("message_id", messageID), zap.Error(err))
	}
}

// isManager reports whether the sender is the configured manager. Only the manager may
// have assistant replies delivered to another chat.
func (s *MetaWhatsAppService) isManager(from string) bool {
	return s.cfg.ManagerID != "" && from == s.cfg.ManagerID
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, previewURL bool) error {
	if !s.cfg.Enabled() || s.client == nil {
		return ErrMessagingDisabled
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: previewURL,
	})
	return err
}
