package events

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// PhoneEventsQueue carries observer notifications for automation systems.
const PhoneEventsQueue = "phone_events"

// AMQPBus publishes observer events to RabbitMQ. Each message wraps the
// payload with the event name so a single queue serves every event type.
type AMQPBus struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPBus(url string) (*AMQPBus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		PhoneEventsQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return &AMQPBus{conn: conn, ch: ch}, nil
}

func (b *AMQPBus) Publish(event string, payload any) error {
	body, err := json.Marshal(map[string]any{
		"event":   event,
		"payload": payload,
	})
	if err != nil {
		return err
	}

	return b.ch.Publish(
		"",
		PhoneEventsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (b *AMQPBus) Close() {
	b.ch.Close()
	b.conn.Close()
}
