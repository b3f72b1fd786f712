package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ticket records one paid booking. StripeSessionID is unique across all
// tickets; it is the deduplication key for retried webhook deliveries.
type Ticket struct {
	ID              uuid.UUID
	EventID         string
	CustomerName    string
	CustomerEmail   string
	StripeSessionID string
	CreatedAt       time.Time
}

func NewTicket(eventID, customerName, customerEmail, sessionID string) Ticket {
	return Ticket{
		ID:              uuid.New(),
		EventID:         eventID,
		CustomerName:    customerName,
		CustomerEmail:   customerEmail,
		StripeSessionID: sessionID,
		CreatedAt:       time.Now(),
	}
}
