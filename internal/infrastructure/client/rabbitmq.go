package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/St1cky1/ticket-generator/internal/entity"
	amqp "github.com/rabbitmq/amqp091-go"
)

// TicketIssuedQueue - очередь событий о выпущенных билетах
const TicketIssuedQueue = "ticket_issued"

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	log     *slog.Logger
}

func NewRabbitMQClient(url string, log *slog.Logger) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	queue, err := DeclareTicketQueue(channel)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
		queue:   queue,
		log:     log,
	}, nil
}

// DeclareTicketQueue объявляет durable очередь, общую для publisher и consumer
func DeclareTicketQueue(channel *amqp.Channel) (amqp.Queue, error) {
	queue, err := channel.QueueDeclare(
		TicketIssuedQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue %s: %w", TicketIssuedQueue, err)
	}
	return queue, nil
}

func (c *RabbitMQClient) PublishTicketIssued(ctx context.Context, message *entity.TicketIssuedMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	err = c.channel.PublishWithContext(
		ctx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    message.Timestamp,
		},
	)
	if err != nil {
		return fmt.Errorf("publish ticket %s: %w", message.TicketNumber, err)
	}

	c.log.Info("ticket_issued_published",
		slog.String("ticket_number", message.TicketNumber),
		slog.String("session_id", message.SessionID),
	)
	return nil
}

func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
