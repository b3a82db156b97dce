package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/St1cky1/ticket-generator/internal/entity"
	"github.com/St1cky1/ticket-generator/internal/infrastructure/client"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 5 * time.Second

// AuditWorker читает события о выпущенных билетах и пишет их в журнал.
// Билеты нигде не сохраняются.
type AuditWorker struct {
	url      string
	log      *slog.Logger
	received *prometheus.CounterVec
}

func NewAuditWorker(url string, log *slog.Logger, reg prometheus.Registerer) *AuditWorker {
	received := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticket_audit_messages_total", Help: "Ticket issued messages consumed by outcome."},
		[]string{"outcome"},
	)
	reg.MustRegister(received)

	return &AuditWorker{
		url:      url,
		log:      log,
		received: received,
	}
}

// Start крутится до отмены ctx, переподключаясь при обрыве
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info("audit_worker_started", slog.String("queue", client.TicketIssuedQueue))

	for {
		err := w.run(ctx)
		if ctx.Err() != nil {
			w.log.Info("audit_worker_stopped")
			return
		}
		if err != nil {
			w.log.Error("audit_worker_failed",
				slog.String("err", err.Error()),
				slog.Duration("retry_in", reconnectDelay),
			)
		}

		select {
		case <-ctx.Done():
			w.log.Info("audit_worker_stopped")
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (w *AuditWorker) run(ctx context.Context) error {
	conn, err := amqp.Dial(w.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer channel.Close()

	if _, err := client.DeclareTicketQueue(channel); err != nil {
		return err
	}

	msgs, err := channel.Consume(
		client.TicketIssuedQueue, // queue
		"ticket_audit_worker",    // consumer tag
		false,                    // auto-ack
		false,                    // exclusive
		false,                    // no-local
		false,                    // no-wait
		nil,                      // args
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.processMessage(msg)
		}
	}
}

func (w *AuditWorker) processMessage(msg amqp.Delivery) {
	var issued entity.TicketIssuedMessage
	if err := json.Unmarshal(msg.Body, &issued); err != nil {
		w.log.Warn("ticket_audit_bad_message", slog.String("err", err.Error()))
		w.received.WithLabelValues("malformed").Inc()
		msg.Nack(false, false) // в очередь не возвращаем
		return
	}

	w.log.Info("ticket_issued",
		slog.String("ticket_number", issued.TicketNumber),
		slog.String("session_id", issued.SessionID),
		slog.String("username", issued.Username),
		slog.String("avatar_type", issued.AvatarType),
		slog.Int64("avatar_size", issued.AvatarSize),
		slog.Time("issued_at", issued.Timestamp),
	)
	w.received.WithLabelValues("ok").Inc()

	if err := msg.Ack(false); err != nil {
		w.log.Warn("ticket_audit_ack_failed", slog.String("err", err.Error()))
	}
}
