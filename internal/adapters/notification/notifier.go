// Package notification provides desktop notifications for session outcomes.
package notification

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/xvierd/forest-cli/internal/config"
	"github.com/xvierd/forest-cli/internal/domain"
	"github.com/xvierd/forest-cli/internal/ports"
)

// SendFunc delivers one notification.
type SendFunc func(title, message string) error

// Notifier turns session events into desktop notifications.
type Notifier struct {
	cfg    *config.NotificationConfig
	send   SendFunc
	logger *slog.Logger
	wg     sync.WaitGroup
}

// Ensure Notifier implements ports.SessionObserver.
var _ ports.SessionObserver = (*Notifier)(nil)

// New creates a new notifier backed by beeep.
func New(cfg *config.NotificationConfig, logger *slog.Logger) *Notifier {
	return NewWithSender(cfg, logger, func(title, message string) error {
		return beeep.Notify(title, message, "")
	})
}

// NewWithSender creates a notifier with a custom delivery function.
func NewWithSender(cfg *config.NotificationConfig, logger *slog.Logger, send SendFunc) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{cfg: cfg, send: send, logger: logger}
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}

// OnSessionEvent notifies on success, failure and leave warnings.
// Delivery happens off the session loop.
func (n *Notifier) OnSessionEvent(event domain.SessionEvent) {
	if !n.IsEnabled() {
		return
	}

	title, message, ok := messageFor(event)
	if !ok {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.send(title, message); err != nil {
			n.logger.Warn("notification failed", "event", event.Kind, "error", err)
		}
	}()
}

// Wait blocks until every pending notification has been delivered.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func messageFor(event domain.SessionEvent) (string, string, bool) {
	switch event.Kind {
	case domain.EventSucceeded:
		minutes := event.FocusedSeconds / 60
		return "🌳 Tree grown!",
			fmt.Sprintf("You stayed focused for %d min. Your forest has %d trees.", minutes, event.Snapshot.ForestSize()),
			true
	case domain.EventFailed:
		return "🥀 Tree withered",
			"You left the app and your tree withered.",
			true
	case domain.EventWarningRaised:
		return "⚠️ Your tree is at risk",
			"Come back to keep growing your tree.",
			true
	default:
		return "", "", false
	}
}
