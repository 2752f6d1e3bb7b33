package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/jobh/imoveis/internal/config"
)

// DefaultRateLimit keeps bursts of replies under the Cloud API throughput limits.
const DefaultRateLimit = 10 // requests per second

const messagingProduct = "whatsapp"

// Client exposes WhatsApp Cloud API operations used by the application.
type Client interface {
	SendTextMessage(ctx context.Context, req SendTextMessageRequest) (*SendTextMessageResponse, error)
	MarkRead(ctx context.Context, messageID string) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient    *resty.Client
	limiter       *rate.Limiter
	phoneNumberID string
}

// NewClient builds a WhatsApp API client using the provided configuration values.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New().
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient:    restyClient,
		limiter:       rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		phoneNumberID: cfg.PhoneNumberID,
	}
}

// SendTextMessageRequest is a plain text message to one recipient.
type SendTextMessageRequest struct {
	To         string
	Body       string
	PreviewURL bool
}

// SendTextMessageResponse carries the ids Meta assigned to the sent messages.
type SendTextMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type readPayload struct {
	MessagingProduct string `json:"messaging_product"`
	Status           string `json:"status"`
	MessageID        string `json:"message_id"`
}

// apiError is the Graph API error envelope.
type apiError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// SendTextMessage sends a text message, waiting for the rate limiter first.
func (c *APIClient) SendTextMessage(ctx context.Context, req SendTextMessageRequest) (*SendTextMessageResponse, error) {
	result := new(SendTextMessageResponse)
	err := c.postMessages(ctx, textPayload{
		MessagingProduct: messagingProduct,
		RecipientType:    "individual",
		To:               req.To,
		Type:             "text",
		Text:             textBody{Body: req.Body, PreviewURL: req.PreviewURL},
	}, result)
	if err != nil {
		return nil, fmt.Errorf("send whatsapp message: %w", err)
	}
	return result, nil
}

// MarkRead shows the inbound message as read (blue ticks) to the sender.
func (c *APIClient) MarkRead(ctx context.Context, messageID string) error {
	if messageID == "" {
		return fmt.Errorf("message id must not be empty")
	}
	err := c.postMessages(ctx, readPayload{
		MessagingProduct: messagingProduct,
		Status:           "read",
		MessageID:        messageID,
	}, nil)
	if err != nil {
		return fmt.Errorf("mark whatsapp message read: %w", err)
	}
	return nil
}

func (c *APIClient) postMessages(ctx context.Context, payload, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	apiErr := new(apiError)
	req := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(apiErr)
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Post(fmt.Sprintf("%s/messages", c.phoneNumberID))
	if err != nil {
		return err
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := resp.StatusCode()
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
		return fmt.Errorf("whatsapp api error: code=%d, message=%s", code, apiErr.Error.Message)
	}
	return nil
}
