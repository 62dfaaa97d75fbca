package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/amoradev/amora-backend/internal/domain"
)

const routingKey = "moderation"

// Publisher pushes moderation events onto a fanout exchange for the review
// tooling. Delivery is best effort: callers treat publish failures as
// non-fatal.
type Publisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

type moderationMessage struct {
	UserID     int64     `json:"user_id"`
	Action     string    `json:"action"`
	Reasons    []string  `json:"reasons"`
	ReporterID *int64    `json:"reporter_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, channel: channel, exchange: exchange}, nil
}

func (p *Publisher) PublishModeration(ctx context.Context, rec *domain.ModerationRecord) error {
	body, err := json.Marshal(moderationMessage{
		UserID:     rec.UserID,
		Action:     string(rec.Action),
		Reasons:    rec.Reasons,
		ReporterID: rec.ReporterID,
		CreatedAt:  rec.CreatedAt,
	})
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey+"."+string(rec.Action),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
