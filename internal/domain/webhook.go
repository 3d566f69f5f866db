package domain

import (
	"encoding/json"
	"time"
)

// WebhookDeliveryStatus tracks one outbound delivery attempt sequence.
type WebhookDeliveryStatus string

const (
	WebhookStatusPending   WebhookDeliveryStatus = "pending"
	WebhookStatusDelivered WebhookDeliveryStatus = "delivered"
	WebhookStatusFailed    WebhookDeliveryStatus = "failed"
)

// WebhookDelivery is a queued at-least-once notification of a proposal or
// publication event, per spec.md §4.9.
type WebhookDelivery struct {
	ID             string                `json:"id" db:"id"`
	EventType      string                `json:"event_type" db:"event_type"`
	Payload        json.RawMessage       `json:"payload" db:"payload"`
	URL            string                `json:"url" db:"url"`
	Status         WebhookDeliveryStatus `json:"status" db:"status"`
	Attempts       int                   `json:"attempts" db:"attempts"`
	LastError      string                `json:"last_error,omitempty" db:"last_error"`
	LastStatusCode int                   `json:"last_status_code,omitempty" db:"last_status_code"`
	CreatedAt      time.Time             `json:"created_at" db:"created_at"`
	DeliveredAt    *time.Time            `json:"delivered_at,omitempty" db:"delivered_at"`
}
