package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

const androidChannelID = "watchdog_alerts"

// FCMPusher sends pushes through Firebase Cloud Messaging.
type FCMPusher struct {
	client *messaging.Client
}

// NewPusher returns an FCM-backed pusher when a credentials file is
// configured, and a noop pusher otherwise.
func NewPusher(ctx context.Context, credentialsFile string) (Pusher, error) {
	if credentialsFile == "" {
		return noopPusher{}, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init fcm client: %w", err)
	}
	return &FCMPusher{client: client}, nil
}

func (p *FCMPusher) SendMulticast(ctx context.Context, tokens []string, title, body string) (int, int, error) {
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID:    androidChannelID,
				DefaultSound: true,
				ClickAction:  "FLUTTER_NOTIFICATION_CLICK",
			},
		},
	}

	resp, err := p.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return 0, 0, fmt.Errorf("send multicast: %w", err)
	}
	return resp.SuccessCount, resp.FailureCount, nil
}

// noopPusher drops all pushes. Used when FCM is not configured.
type noopPusher struct{}

func (noopPusher) SendMulticast(ctx context.Context, tokens []string, title, body string) (int, int, error) {
	return 0, 0, nil
}
