// Package fcm wraps the Firebase Cloud Messaging Admin SDK behind a small
// Notifier interface. The client is constructed explicitly and handed to the
// orchestration layer; its lifetime is the process lifetime.
package fcm

import (
	"context"
	"errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"simpled.xyz/notification-service/pkg/common"
	"simpled.xyz/notification-service/pkg/message"
)

//go:generate mockgen -destination=mocks/mock_notifier.go -package=mocks simpled.xyz/notification-service/pkg/fcm Notifier

// ErrUnregistered reports that the delivery token is stale: the app was
// uninstalled or the token was rotated. Callers should drop the stored token.
var ErrUnregistered = errors.New("fcm: token unregistered")

// Notifier delivers one templated message to one delivery token. A single
// best-effort attempt; no retry or backoff in this layer.
type Notifier interface {
	Send(ctx context.Context, token string, msg message.Message) (messageID string, err error)
}

type Client struct {
	mc *messaging.Client
}

// NewClient builds an FCM client from a service account credentials file.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	if credentialsFile == "" {
		return nil, errors.New("fcm: credentials file path is empty")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}

	mc, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}

	common.GetLoggerWith(common.LoggerNameFcmClient).Info(
		"FCM client initialized", zap.String("credentials", credentialsFile))

	return &Client{mc: mc}, nil
}

func (c *Client) Send(ctx context.Context, token string, msg message.Message) (string, error) {
	if token == "" {
		return "", errors.New("fcm: no delivery token")
	}

	id, err := c.mc.Send(ctx, buildFcmMessage(token, msg))
	if err != nil {
		if messaging.IsRegistrationTokenNotRegistered(err) {
			return "", ErrUnregistered
		}
		return "", err
	}
	return id, nil
}

// ValidateToken checks a token with a dry-run send; nothing is delivered.
func (c *Client) ValidateToken(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	_, err := c.mc.SendDryRun(ctx, &messaging.Message{
		Token: token,
		Data:  map[string]string{"test": "true"},
	})
	return err == nil
}

func buildFcmMessage(token string, msg message.Message) *messaging.Message {
	androidPriority := "normal"
	if msg.Priority == message.PriorityHigh {
		androidPriority = "high"
	}

	return &messaging.Message{
		Token: token,
		Data:  msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: androidPriority,
			Notification: &messaging.AndroidNotification{
				Title:     msg.Title,
				Body:      msg.Body,
				Icon:      "@drawable/ic_notification",
				Sound:     "default",
				ChannelID: "default",
			},
		},
	}
}

// Nop is a no-op Notifier used when push delivery is disabled and in tests.
type Nop struct{}

func (Nop) Send(_ context.Context, _ string, _ message.Message) (string, error) {
	return "", nil
}
