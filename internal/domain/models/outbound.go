package models

import "time"

// OutboundMessageRequest is a manual message sent through the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// ChatLogEntry is one inbound WhatsApp message kept by the monitor.
type ChatLogEntry struct {
	Contact string    `json:"contact"`
	From    string    `json:"from"`
	Text    string    `json:"text"`
	Time    time.Time `json:"time"`
}
