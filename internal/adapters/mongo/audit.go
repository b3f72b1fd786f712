package mongo

import (
	"context"
	"time"

	"github.com/benjithedalilama/eat-wild/internal/observability"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuditLogger keeps a record of every acted-on webhook delivery. The trail is
// diagnostic only; idempotency is enforced by the tickets table, not here.
type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("webhook_deliveries"),
		logger: logger,
	}
}

type DeliveryRecord struct {
	ID            uuid.UUID `bson:"_id"`
	StripeEventID string    `bson:"stripe_event_id"`
	EventType     string    `bson:"event_type"`
	SessionID     string    `bson:"session_id"`
	Outcome       string    `bson:"outcome"`
	Timestamp     time.Time `bson:"timestamp"`
}

func (a *AuditLogger) LogDelivery(ctx context.Context, stripeEventID, eventType, sessionID, outcome string) error {
	rec := DeliveryRecord{
		ID:            uuid.New(),
		StripeEventID: stripeEventID,
		EventType:     eventType,
		SessionID:     sessionID,
		Outcome:       outcome,
		Timestamp:     time.Now(),
	}
	_, err := a.coll.InsertOne(ctx, rec)
	if err != nil {
		a.logger.Error("failed to insert delivery record", err)
		return err
	}
	return nil
}
