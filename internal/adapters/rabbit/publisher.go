package rabbit

import (
	"context"
	"encoding/json"

	"github.com/benjithedalilama/eat-wild/internal/domain"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchange = "eatwild.events"

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

// PublishTicketCreated announces a newly recorded ticket to downstream
// consumers. Delivery is best effort; the booking flow never depends on it.
func (p *Publisher) PublishTicketCreated(ctx context.Context, t domain.Ticket) error {
	payload, err := json.Marshal(map[string]interface{}{
		"ticket_id":      t.ID,
		"event_id":       t.EventID,
		"customer_email": t.CustomerEmail,
		"created_at":     t.CreatedAt,
	})
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		MessageId:   uuid.New().String(),
		ContentType: "application/json",
		Body:        payload,
	}
	return p.ch.PublishWithContext(ctx, exchange, "ticket.created", false, false, msg)
}
