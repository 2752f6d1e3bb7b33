package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobh/imoveis/internal/config"
	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/service/commands"
	client "github.com/jobh/imoveis/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent []client.SendTextMessageRequest
	read []string
	err  error
}

func (f *fakeClient) MarkRead(_ context.Context, messageID string) error {
	f.read = append(f.read, messageID)
	return f.err
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, req)
	return &client.SendTextMessageResponse{}, nil
}

type fakeDispatcher struct {
	reply string
	err   error
	got   []models.Command
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	f.got = append(f.got, cmd)
	return f.reply, f.err
}

type fakeAssistant struct {
	reply models.AssistantReply
	req   models.AssistantRequest
}

func (f *fakeAssistant) Enabled() bool { return true }

func (f *fakeAssistant) Ask(_ context.Context, req models.AssistantRequest) (models.AssistantReply, error) {
	f.req = req
	return f.reply, nil
}

var testConfig = config.WhatsAppConfig{AccessToken: "token", PhoneNumberID: "123", VerifyToken: "verify"}

func textPayload(from, name, body string) models.WebhookPayload {
	return models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{Value: models.WebhookValue{
		Contacts: []models.Contact{{WaID: from, Profile: models.ContactProfile{Name: name}}},
		Messages: []models.InboundMessage{{From: from, ID: "wamid.1", Timestamp: "1741000000", Type: "text", Text: &models.TextContent{Body: body}}},
	}}}}}}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewMetaWhatsAppService(testConfig, &fakeClient{}, &fakeDispatcher{}, nil, nil)

	challenge, err := svc.VerifyWebhookToken("subscribe", "verify", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "verify", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "42")
	assert.Error(t, err)
}

func TestHandleWebhook_Command(t *testing.T) {
	wa := &fakeClient{}
	dispatcher := &fakeDispatcher{reply: "*Resumo*"}
	svc := NewMetaWhatsAppService(testConfig, wa, dispatcher, nil, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("5521", "Jobh", "/resumo março")))

	require.Len(t, dispatcher.got, 1)
	assert.Equal(t, models.CommandSummary, dispatcher.got[0].Type)
	require.Len(t, wa.sent, 1)
	assert.Equal(t, "5521", wa.sent[0].To)
	assert.Equal(t, "*Resumo*", wa.sent[0].Body)
	assert.Equal(t, []string{"wamid.1"}, wa.read)
}

func TestHandleWebhook_CommandErrors(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: commands.ErrUnsupportedCommand, want: "Comando não reconhecido."},
		{err: fmt.Errorf("%w: informe a referência", commands.ErrInvalidArguments), want: "Não foi possível executar: invalid command arguments: informe a referência"},
		{err: errors.New("boom"), want: "Erro ao executar o comando."},
	}
	for _, tt := range tests {
		wa := &fakeClient{}
		svc := NewMetaWhatsAppService(testConfig, wa, &fakeDispatcher{err: tt.err}, nil, nil)
		require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("5521", "Jobh", "/pago")))
		require.Len(t, wa.sent, 1)
		assert.Contains(t, wa.sent[0].Body, tt.want)
	}
}

func TestHandleWebhook_ManagerOnlyCommands(t *testing.T) {
	cfg := testConfig
	cfg.ManagerID = "5521"
	wa := &fakeClient{}
	dispatcher := &fakeDispatcher{reply: "ok"}
	svc := NewMetaWhatsAppService(cfg, wa, dispatcher, nil, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("5599", "Inquilino", "/pago 101")))
	assert.Empty(t, dispatcher.got)
	require.Len(t, wa.sent, 1)
	assert.Equal(t, managerOnlyReply, wa.sent[0].Body)
}

func TestHandleWebhook_FreeTextWithoutAutopilot(t *testing.T) {
	wa := &fakeClient{}
	ai := &fakeAssistant{}
	svc := NewMetaWhatsAppService(testConfig, wa, &fakeDispatcher{}, ai, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("5599", "Carlos", "bom dia")))
	require.Len(t, wa.sent, 1)
	assert.Equal(t, greetingReply, wa.sent[0].Body)
	assert.Empty(t, ai.req.Query)

	log := svc.RecentMessages()
	require.Len(t, log, 1)
	assert.Equal(t, "Carlos", log[0].Contact)
	assert.Equal(t, "bom dia", log[0].Text)
	assert.Equal(t, int64(1741000000), log[0].Time.Unix())
}

func TestHandleWebhook_Autopilot(t *testing.T) {
	cfg := testConfig
	cfg.Autopilot = true

	t.Run("text reply", func(t *testing.T) {
		wa := &fakeClient{}
		ai := &fakeAssistant{reply: models.AssistantReply{Text: "Seu boleto vence dia 10."}}
		svc := NewMetaWhatsAppService(cfg, wa, &fakeDispatcher{}, ai, nil)

		require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("5599", "Carlos", "quando vence?")))
		assert.Equal(t, "5599", ai.req.SessionID)
		assert.Contains(t, ai.req.Query, `MENSAGEM RECEBIDA de Carlos: "quando vence?"`)
		require.Len(t, ai.req.Recent, 1)
		require.Len(t, wa.sent, 1)
		assert.Equal(t, "Seu boleto vence dia 10.", wa.sent[0].Body)
	})

	t.Run("send actions", func(t *testing.T) {
		wa := &fakeClient{}
		ai := &fakeAssistant{reply: models.AssistantReply{Text: "ignored", Actions: []models.AssistantAction{
			{Name: models.ActionSendWhatsApp, Params: map[string]any{"message": "Técnico a caminho"}},
			{Name: models.ActionSendWhatsApp, Params: map[string]any{"message": "Vazamento LF 101", "to": "5521"}},
		}}}
		svc := NewMetaWhatsAppService(cfg, wa, &fakeDispatcher{}, ai, nil)

		require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("5599", "Carlos", "vazamento")))
		require.Len(t, wa.sent, 2)
		assert.Equal(t, "5599", wa.sent[0].To)
		assert.Equal(t, "5599", wa.sent[1].To)
		assert.Equal(t, "Vazamento LF 101", wa.sent[1].Body)
	})

	t.Run("tenant cannot redirect replies", func(t *testing.T) {
		managed := cfg
		managed.ManagerID = "5521000000000"
		wa := &fakeClient{}
		ai := &fakeAssistant{reply: models.AssistantReply{Actions: []models.AssistantAction{
			{Name: models.ActionSendWhatsApp, Params: map[string]any{"message": "oi", "to": "5599999999999"}},
		}}}
		svc := NewMetaWhatsAppService(managed, wa, &fakeDispatcher{}, ai, nil)

		require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("5521987654321", "Carlos", "oi")))
		require.Len(t, wa.sent, 1)
		assert.Equal(t, "5521987654321", wa.sent[0].To)
	})

	t.Run("manager may address another chat", func(t *testing.T) {
		managed := cfg
		managed.ManagerID = "5521000000000"
		wa := &fakeClient{}
		ai := &fakeAssistant{reply: models.AssistantReply{Actions: []models.AssistantAction{
			{Name: models.ActionSendWhatsApp, Params: map[string]any{"message": "Técnico amanhã às 9h", "to": "5599"}},
		}}}
		svc := NewMetaWhatsAppService(managed, wa, &fakeDispatcher{}, ai, nil)

		require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("5521000000000", "Jobh", "avise o inquilino")))
		require.Len(t, wa.sent, 1)
		assert.Equal(t, "5599", wa.sent[0].To)
	})
}

func TestHandleWebhook_IgnoresStatusesAndMedia(t *testing.T) {
	wa := &fakeClient{}
	svc := NewMetaWhatsAppService(testConfig, wa, &fakeDispatcher{}, nil, nil)

	payload := models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{Value: models.WebhookValue{
		Statuses: []models.MessageStatus{{ID: "wamid.9", Status: "read"}},
		Messages: []models.InboundMessage{{From: "5599", Type: "image"}},
	}}}}}}
	require.NoError(t, svc.HandleWebhook(context.Background(), payload))
	assert.Empty(t, wa.sent)
	assert.Empty(t, svc.RecentMessages())
}

func TestSendOutbound(t *testing.T) {
	wa := &fakeClient{}
	svc := NewMetaWhatsAppService(testConfig, wa, &fakeDispatcher{}, nil, nil)

	require.NoError(t, svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "5521", Message: "Olá", PreviewURL: true}))
	require.Len(t, wa.sent, 1)
	assert.True(t, wa.sent[0].PreviewURL)

	disabled := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, &fakeDispatcher{}, nil, nil)
	assert.ErrorIs(t, disabled.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "1", Message: "x"}), ErrMessagingDisabled)

	failing := NewMetaWhatsAppService(testConfig, &fakeClient{err: errors.New("down")}, &fakeDispatcher{}, nil, nil)
	assert.Error(t, failing.HandleWebhook(context.Background(), textPayload("5599", "Carlos", "oi")))
}

func TestMonitorKeepsNewestTwenty(t *testing.T) {
	m := NewMonitor(MonitorSize)
	for i := 0; i < 25; i++ {
		m.Record(models.ChatLogEntry{Text: fmt.Sprint(i)})
	}
	entries := m.Entries()
	require.Len(t, entries, MonitorSize)
	assert.Equal(t, "24", entries[0].Text)
	assert.Equal(t, "5", entries[MonitorSize-1].Text)
}
