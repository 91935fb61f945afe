package chat

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/goonthug/sport-kursach/internal/logger"
)

// envelope is the frame routed through the exchange: the group name
// plus the event itself, so every server process can re-deliver to its
// local subscribers.
type envelope struct {
	Group string `json:"group"`
	Event Event  `json:"event"`
}

// amqpBroker routes group events through a RabbitMQ topic exchange so
// several server processes share one chat plane. Each process binds an
// exclusive queue to every routing key and re-delivers incoming events
// through its in-memory broker; locally published events also travel
// through the exchange, which keeps delivery order identical for local
// and remote subscribers.
type amqpBroker struct {
	local    Broker
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	done     chan struct{}
}

func NewAMQPBroker(url, exchange string) (Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}

	queue, err := ch.QueueDeclare(
		"",    // broker-named
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(queue.Name, "#", exchange, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := ch.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to start consumer: %w", err)
	}

	b := &amqpBroker{
		local:    NewMemoryBroker(),
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		done:     make(chan struct{}),
	}
	go b.consume(deliveries)

	logger.Info("chat broker connected", "exchange", exchange, "queue", queue.Name)
	return b, nil
}

func (b *amqpBroker) consume(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		var env envelope
		if err := json.Unmarshal(d.Body, &env); err != nil {
			logger.Warn("dropping unparseable broker frame", "error", err)
			continue
		}
		b.local.Publish(env.Group, env.Event)
	}
	close(b.done)
}

func (b *amqpBroker) Join(group string, sub Subscriber) {
	b.local.Join(group, sub)
}

func (b *amqpBroker) Leave(group string, sub Subscriber) {
	b.local.Leave(group, sub)
}

// Publish sends the event through the exchange; local delivery happens
// when the consumer loop receives it back.
func (b *amqpBroker) Publish(group string, evt Event) {
	body, err := json.Marshal(envelope{Group: group, Event: evt})
	if err != nil {
		logger.Error("failed to encode broker frame", "group", group, "error", err)
		return
	}
	err = b.channel.PublishWithContext(
		context.Background(),
		b.exchange,
		group, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{ContentType: "application/json", Body: body},
	)
	if err != nil {
		logger.Error("failed to publish chat event", "group", group, "error", err)
	}
}

func (b *amqpBroker) Close() error {
	var firstErr error
	if err := b.channel.Close(); err != nil {
		firstErr = err
	}
	if err := b.conn.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	<-b.done
	return firstErr
}
