package models

// Occurrence is a service ticket opened by a tenant or owner (maintenance, financial, general).
type Occurrence struct {
	ID              string `bson:"_id" json:"id"`
	Date            string `bson:"date" json:"date"`
	SenderID        string `bson:"sender_id" json:"senderId"`
	SenderType      string `bson:"sender_type" json:"senderType"`
	Type            string `bson:"type" json:"type"`
	Description     string `bson:"description" json:"description"`
	Urgency         string `bson:"urgency" json:"urgency"`
	Status          string `bson:"status" json:"status"`
	AIResponseDraft string `bson:"ai_response_draft,omitempty" json:"aiResponseDraft,omitempty"`
}

const (
	OccurrencePending    = "pending"
	OccurrenceInProgress = "in_progress"
	OccurrenceResolved   = "resolved"
)
