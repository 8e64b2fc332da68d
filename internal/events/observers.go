package events

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// LastLoginStore is the interface that wraps the UpdateLastLogin method.
type LastLoginStore interface {
	// Method UpdateLastLogin stores the time of the user's latest successful login.
	//
	// If some error occurs during the update, the error will be returned.
	UpdateLastLogin(ctx context.Context, userID int, at time.Time) error
}

// LastLoginRecorder records the login time on the user record
type LastLoginRecorder struct {
	store LastLoginStore
}

// NewLastLoginRecorder creates a new last login recorder
func NewLastLoginRecorder(store LastLoginStore) *LastLoginRecorder {
	return &LastLoginRecorder{store: store}
}

// UserLoggedIn updates the user's last login time
func (r *LastLoginRecorder) UserLoggedIn(ctx context.Context, event LoginEvent) error {
	if err := r.store.UpdateLastLogin(ctx, event.UserID, event.At); err != nil {
		return fmt.Errorf("failed to record last login: %w", err)
	}
	return nil
}

// LogObserver writes a structured line for every login
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver creates a new log observer
func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// UserLoggedIn logs the event
func (o *LogObserver) UserLoggedIn(_ context.Context, event LoginEvent) error {
	o.logger.Info("user logged in",
		zap.Int("userId", event.UserID),
		zap.String("request_id", event.RequestID),
		zap.String("ip", event.RemoteAddr),
		zap.String("user_agent", event.UserAgent),
		zap.Time("at", event.At),
	)
	return nil
}
