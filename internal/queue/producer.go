package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	CapturesStreamName  = "CAPTURES"
	CapturesSubjectBase = "captures"
)

// Producer publishes analyzed capture events for live consumers (the API
// WebSocket feed). The relational store stays the source of truth; the
// stream is a best-effort fan-out channel.
type Producer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewProducer(natsURL string) (*Producer, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Producer{nc: nc, js: js}, nil
}

// EnsureStream creates the CAPTURES stream if it doesn't exist.
func (p *Producer) EnsureStream(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := p.js.CreateOrUpdateStream(opCtx, jetstream.StreamConfig{
		Name:        CapturesStreamName,
		Subjects:    []string{CapturesSubjectBase + ".>"},
		Retention:   jetstream.InterestPolicy,
		MaxAge:      24 * time.Hour,
		MaxMsgs:     1000000,
		Storage:     jetstream.FileStorage,
		Description: "Analyzed capture events",
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", CapturesStreamName, err)
	}
	return nil
}

// PublishCapture publishes one analyzed capture event.
func (p *Producer) PublishCapture(ctx context.Context, cameraID int64, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal capture event: %w", err)
	}

	subject := fmt.Sprintf("%s.%d", CapturesSubjectBase, cameraID)
	if _, err := p.js.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publish capture: %w", err)
	}
	return nil
}

func (p *Producer) Ping() error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

func (p *Producer) Close() {
	p.nc.Close()
}
