package service

import (
	"context"
)

// NotificationService defines the interface for push notification services.
// Dispatch is fire-and-forget from the caller's point of view: a failed send
// is logged and swallowed, never failing the mutation that triggered it.
type NotificationService interface {
	// SendSingleNotification sends a push notification to a single device token.
	SendSingleNotification(ctx context.Context, token, title, body string, data map[string]string) error

	// SendTopicNotification sends a push notification to every device
	// subscribed to the given FCM topic.
	SendTopicNotification(ctx context.Context, topic, title, body string, data map[string]string) error

	// SendBatchNotification sends push notifications to multiple device tokens.
	// Returns success count, failure count, list of invalid tokens, and error.
	SendBatchNotification(ctx context.Context, tokens []string, title, body string, data map[string]string) (successCount, failureCount int, invalidTokens []string, err error)
}
