package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// SubjectUserLoggedIn is the NATS subject login events are published on
const SubjectUserLoggedIn = "user.logged_in"

// Publisher is the part of *nats.Conn used by NatsPublisher
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NatsPublisher publishes login events to NATS
type NatsPublisher struct {
	conn   Publisher
	logger *zap.Logger
}

// ConnectNats connects to the NATS server at url
func ConnectNats(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("starterkit-auth"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// NewNatsPublisher creates a publisher over an established connection
func NewNatsPublisher(conn Publisher, logger *zap.Logger) *NatsPublisher {
	return &NatsPublisher{
		conn:   conn,
		logger: logger,
	}
}

type userLoggedInMessage struct {
	EventType string `json:"event_type"`
	LoginEvent
}

// UserLoggedIn publishes the event as JSON on SubjectUserLoggedIn
func (p *NatsPublisher) UserLoggedIn(_ context.Context, event LoginEvent) error {
	payload, err := json.Marshal(userLoggedInMessage{
		EventType:  SubjectUserLoggedIn,
		LoginEvent: event,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal login event: %w", err)
	}

	if err := p.conn.Publish(SubjectUserLoggedIn, payload); err != nil {
		return fmt.Errorf("failed to publish login event: %w", err)
	}

	p.logger.Debug("published login event", zap.String("subject", SubjectUserLoggedIn), zap.Int("userId", event.UserID))
	return nil
}
