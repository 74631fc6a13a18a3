package domain

import (
	"context"
	"encoding/json"

	"github.com/corvusHold/outreach/internal/platform/apperror"
)

// MessageTypeHeader names the delivery kind of an SNS POST.
const MessageTypeHeader = "x-amz-sns-message-type"

const (
	TypeNotification             = "Notification"
	TypeSubscriptionConfirmation = "SubscriptionConfirmation"
)

// Envelope is the SNS HTTP payload. Message carries the provider event as a JSON string.
type Envelope struct {
	Type         string `json:"Type"`
	MessageID    string `json:"MessageId"`
	TopicArn     string `json:"TopicArn"`
	Message      string `json:"Message"`
	SubscribeURL string `json:"SubscribeURL"`
}

// MailEvent is the part of a delivery notification used to find the stats record.
type MailEvent struct {
	EventType string `json:"eventType"`
	Mail      struct {
		Source      string   `json:"source"`
		Destination []string `json:"destination"`
	} `json:"mail"`
}

var (
	ErrInvalidPayload      = apperror.Validation("Invalid notification payload")
	ErrUntrustedSubscribe  = apperror.Validation("SubscribeURL host is not trusted")
	ErrSubscriptionFailure = apperror.BadRequest("Subscription confirmation failed")
)

type Service interface {
	// Handle processes one delivery. Unknown message types are accepted and ignored.
	Handle(ctx context.Context, messageType string, body json.RawMessage) error
}
