package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"onboarding-service/utils"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationPublisher pushes email events to the notification queue. It
// satisfies services.NotificationPublisher.
type NotificationPublisher struct {
	conn              *RabbitMQConnection
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

func NewNotificationPublisher(conn *RabbitMQConnection) *NotificationPublisher {
	return &NotificationPublisher{
		conn:            conn,
		lastPublishTime: time.Now(),
	}
}

// PublishPaymentLink queues the onboarding email carrying the QR image and
// the portal deep link for the newly created record.
func (p *NotificationPublisher) PublishPaymentLink(ctx context.Context, to, name, qrImageURL, deepLink string) error {
	return p.publish(ctx, EmailEventModel{
		Kind:       KindPaymentLink,
		To:         to,
		Name:       name,
		QRImageURL: qrImageURL,
		DeepLink:   deepLink,
	}, PriorityNormal)
}

// PublishOTP queues a login code email.
func (p *NotificationPublisher) PublishOTP(ctx context.Context, to, code string) error {
	return p.publish(ctx, EmailEventModel{
		Kind: KindOTP,
		To:   to,
		Code: code,
	}, PriorityHigh)
}

func (p *NotificationPublisher) publish(ctx context.Context, payload EmailEventModel, priority NotificationPriority) error {
	// Ensure the queue exists
	_, err := p.conn.Channel.QueueDeclare(
		NotiQueue, // queue name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	message := NotificationMessage{
		ID:         utils.GenerateRandomStringWithLength(6),
		Type:       TypeEmail,
		Priority:   priority,
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 5,
		CreatedAt:  time.Now(),
	}

	body, err := json.Marshal(message)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",        // exchange
		NotiQueue, // routing key (queue name)
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish notification event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	slog.Info("Notification event published",
		"queue", NotiQueue,
		"kind", payload.Kind,
	)

	return nil
}
