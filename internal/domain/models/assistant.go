package models

import "fmt"

// Assistant action names understood by the back office.
const (
	ActionCreateOccurrence = "CREATE_OCCURRENCE"
	ActionSendWhatsApp     = "SEND_WHATSAPP"
)

// AssistantAction is a tool call proposed by the language model.
type AssistantAction struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// Param returns a parameter rendered as text, or "" when absent.
func (a AssistantAction) Param(key string) string {
	v, ok := a.Params[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// AssistantReply is the parsed answer of the language model.
type AssistantReply struct {
	Text    string            `json:"text"`
	Actions []AssistantAction `json:"actions,omitempty"`
}

// AssistantRequest is a question addressed to the assistant.
type AssistantRequest struct {
	SessionID string         `json:"session_id"`
	Query     string         `json:"query" binding:"required"`
	Period    Period         `json:"period"`
	Recent    []ChatLogEntry `json:"-"`
}
