package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"time"

	"onboarding-service/internal/mail"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueConsumer drains the email queue and delivers over SMTP. It runs
// in-process next to the HTTP server.
type QueueConsumer struct {
	conn            *RabbitMQConnection
	emailService    *mail.EmailService
	queueName       string
	deadLetterQueue string
	prefetchCount   int
}

func NewQueueConsumer(conn *RabbitMQConnection, emailService *mail.EmailService) (*QueueConsumer, error) {
	// Set QoS for controlled processing
	err := conn.Channel.Qos(
		5,     // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	for _, queue := range []string{NotiQueue, DeadLetterQueue} {
		_, err = conn.Channel.QueueDeclare(
			queue,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
		}
	}

	return &QueueConsumer{
		conn:            conn,
		emailService:    emailService,
		queueName:       NotiQueue,
		deadLetterQueue: DeadLetterQueue,
		prefetchCount:   5,
	}, nil
}

func (q *QueueConsumer) StartConsuming(ctx context.Context) error {
	msgs, err := q.conn.Channel.Consume(
		q.queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case msg := <-msgs:
			if err := q.processMessage(msg); err != nil {
				log.Printf("Error processing message: %v", err)

				retryCount := 0
				if val, ok := msg.Headers["x-retry-count"].(int32); ok {
					retryCount = int(val)
				}

				if retryCount < 3 {
					q.requeueMessage(msg, retryCount+1)
					msg.Ack(false)
				} else {
					q.sendToDLQ(msg)
					msg.Ack(false)
					log.Printf("Message sent to DLQ after %d retries", retryCount)
				}
			} else {
				msg.Ack(false)
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *QueueConsumer) processMessage(msg amqp.Delivery) error {
	var notification NotificationMessage
	if err := json.Unmarshal(msg.Body, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal message: %v", err)
	}

	if notification.Type != TypeEmail {
		return fmt.Errorf("unsupported notification type: %s", notification.Type)
	}

	payload := notification.Payload
	slog.Info("Email event received", "kind", payload.Kind, "to", payload.To)

	switch payload.Kind {
	case KindPaymentLink:
		return q.emailService.PaymentLinkEmail(payload.To, payload.Name, payload.QRImageURL, payload.DeepLink)
	case KindOTP:
		return q.emailService.OTPEmail(payload.To, payload.Code)
	default:
		return fmt.Errorf("unsupported email kind: %s", payload.Kind)
	}
}

func (q *QueueConsumer) requeueMessage(msg amqp.Delivery, retryCount int) error {
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retry-count"] = int32(retryCount)

	// Quadratic backoff via per-message TTL
	delay := time.Duration(retryCount*retryCount) * time.Second

	return q.conn.Channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
			Expiration:  fmt.Sprintf("%d", delay.Milliseconds()),
		},
	)
}

func (q *QueueConsumer) sendToDLQ(msg amqp.Delivery) error {
	return q.conn.Channel.Publish(
		"",
		q.deadLetterQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     msg.Headers,
		},
	)
}
