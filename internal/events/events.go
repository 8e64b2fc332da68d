// Package events delivers "user logged in" notifications to an explicit list of observers.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoginEvent describes a successful registration or login
type LoginEvent struct {
	UserID     int       `json:"user_id"`
	Email      string    `json:"email"`
	At         time.Time `json:"at"`
	RequestID  string    `json:"request_id,omitempty"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// LoginObserver is the interface that wraps the UserLoggedIn method.
//
// UserLoggedIn is called after credentials were accepted and a token was issued.
// A returned error is logged by the Notifier and does not affect the login.
type LoginObserver interface {
	UserLoggedIn(ctx context.Context, event LoginEvent) error
}

// Notifier fans a login event out to every observer in order
type Notifier struct {
	observers []LoginObserver
	logger    *zap.Logger
}

// NewNotifier creates a notifier for the given observers
func NewNotifier(logger *zap.Logger, observers ...LoginObserver) *Notifier {
	return &Notifier{
		observers: observers,
		logger:    logger,
	}
}

// Notify delivers event to all observers. Observer failures are logged and skipped.
func (n *Notifier) Notify(ctx context.Context, event LoginEvent) {
	for _, o := range n.observers {
		if err := o.UserLoggedIn(ctx, event); err != nil {
			n.logger.Warn("login observer failed",
				zap.Int("userId", event.UserID),
				zap.String("request_id", event.RequestID),
				zap.Error(err),
			)
		}
	}
}
