package models

import "time"

// PixConfig holds the payee data printed on tenant receipts.
type PixConfig struct {
	Name           string `bson:"name" json:"name"`
	Doc            string `bson:"doc" json:"doc"`
	PixKey         string `bson:"pix_key" json:"pixKey"`
	QRCodeBase64   string `bson:"qr_code_base64,omitempty" json:"qrCodeBase64,omitempty"`
	PixPayload     string `bson:"pix_payload,omitempty" json:"pixPayload,omitempty"`
	StatementNotes string `bson:"statement_notes,omitempty" json:"statementNotes,omitempty"`
}

// Snapshot is the whole application state as exported to backup files and Google Drive.
type Snapshot struct {
	Owners      []Owner      `json:"owners"`
	Rentals     []Rental     `json:"rentals"`
	Occurrences []Occurrence `json:"occurrences"`
	PixConfig   *PixConfig   `json:"pixConfig,omitempty"`
	Version     string       `json:"version,omitempty"`
	LastUpdated time.Time    `json:"lastUpdated"`
}
