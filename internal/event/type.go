package event

import "time"

const (
	NotiQueue       = "onboarding_email_events"
	DeadLetterQueue = "onboarding_email_events_dlq"
)

type NotificationType string

const (
	TypeEmail NotificationType = "email"
)

type NotificationPriority int

const (
	PriorityLow    NotificationPriority = 1
	PriorityNormal NotificationPriority = 5
	PriorityHigh   NotificationPriority = 10
)

type EmailKind string

const (
	KindPaymentLink EmailKind = "payment_link"
	KindOTP         EmailKind = "otp"
)

type NotificationMessage struct {
	ID           string               `json:"id"`
	Type         NotificationType     `json:"type"`
	Priority     NotificationPriority `json:"priority"`
	Payload      EmailEventModel      `json:"payload"`
	RetryCount   int                  `json:"retry_count"`
	MaxRetries   int                  `json:"max_retries"`
	CreatedAt    time.Time            `json:"created_at"`
	ScheduledFor *time.Time           `json:"scheduled_for,omitempty"`
}

type EmailEventModel struct {
	Kind       EmailKind `json:"kind"`
	To         string    `json:"to"`
	Name       string    `json:"name"`
	Code       string    `json:"code,omitempty"`
	QRImageURL string    `json:"qr_image_url,omitempty"`
	DeepLink   string    `json:"deep_link,omitempty"`
}
