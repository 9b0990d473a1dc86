package services

import (
	"context"
	"log"
	"time"

	"firebase.google.com/go/messaging"
)

// Notifier sends a best-effort push notification to a device. Failures are
// logged and never surfaced to the chat path.
type Notifier interface {
	Notify(deviceToken, title, body string)
}

type fcmNotifier struct {
	client *messaging.Client
}

// NewFCMNotifier wraps a Firebase Messaging client; a nil client disables
// push notifications.
func NewFCMNotifier(client *messaging.Client) Notifier {
	if client == nil {
		return noopNotifier{}
	}
	return &fcmNotifier{client: client}
}

func (n *fcmNotifier) Notify(deviceToken, title, body string) {
	if deviceToken == "" {
		return
	}
	message := &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := n.client.Send(ctx, message); err != nil {
		log.Printf("push notification failed: %v", err)
	}
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, string, string) {}
